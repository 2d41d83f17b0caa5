package config

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// loadEnvFiles sets environment variables from .env.local and .env.
// Looks in the current working directory and in the directory of the executable.
// Only sets variables that are empty. Called when DATABASE_URL is missing.
func loadEnvFiles() {
	for _, dir := range envDirs() {
		for _, name := range []string{".env.local", ".env"} {
			vars, err := godotenv.Read(filepath.Join(dir, name))
			if err != nil {
				continue
			}
			for key, value := range vars {
				if os.Getenv(key) == "" {
					_ = os.Setenv(key, value)
				}
			}
		}
	}
}

func envDirs() []string {
	var dirs []string
	if cwd, err := os.Getwd(); err == nil {
		dirs = append(dirs, cwd)
	}
	if exe, err := os.Executable(); err == nil {
		if dir := filepath.Dir(exe); dir != "" && (len(dirs) == 0 || dir != dirs[0]) {
			dirs = append(dirs, dir)
		}
	}
	return dirs
}
