package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"DATABASE_URL", "PORT", "REDIS_URL", "LOG_FORMAT", "STATIC_DIR", "CORS_ORIGIN",
		"MIGRATIONS_DIR", "SEED_DATA_PATH", "COUNTRIES_FILE", "IMPORT_BATCH_SIZE", "CACHE_TTL", "PUSHGATEWAY_URL",
	} {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_URL", "postgres://localhost/radiodir")

	c, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "postgres://localhost/radiodir", c.DatabaseURL)
	assert.Equal(t, DefaultServerPort, c.ServerPort)
	assert.Equal(t, DefaultLogFormat, c.LogFormat)
	assert.Equal(t, DefaultStaticDir, c.StaticDir)
	assert.Equal(t, DefaultCORSOrigin, c.CORSOrigin)
	assert.Equal(t, DefaultCountriesFile, c.CountriesFile)
	assert.Equal(t, DefaultImportBatchSize, c.ImportBatchSize)
	assert.Equal(t, DefaultCacheTTL, c.CacheTTL)
	assert.Empty(t, c.RedisURL)
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_URL", "postgres://db/radiodir")
	t.Setenv("PORT", "9090")
	t.Setenv("REDIS_URL", "redis://cache:6379/0")
	t.Setenv("LOG_FORMAT", "prod")
	t.Setenv("IMPORT_BATCH_SIZE", "10")
	t.Setenv("CACHE_TTL", "30s")
	t.Setenv("PUSHGATEWAY_URL", "http://pushgateway:9091")

	c, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9090", c.ServerPort)
	assert.Equal(t, "redis://cache:6379/0", c.RedisURL)
	assert.Equal(t, "prod", c.LogFormat)
	assert.Equal(t, 10, c.ImportBatchSize)
	assert.Equal(t, 30*time.Second, c.CacheTTL)
	assert.Equal(t, "http://pushgateway:9091", c.PushgatewayURL)
}

func TestLoadInvalidNumbers(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_URL", "postgres://db/radiodir")
	t.Setenv("IMPORT_BATCH_SIZE", "many")
	_, err := Load()
	assert.Error(t, err)
}

func TestLoadFromDotEnv(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"),
		[]byte("# local\nDATABASE_URL=\"postgres://dotenv/radiodir\"\nPORT=7070\n"), 0o600))
	t.Chdir(dir)

	c, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "postgres://dotenv/radiodir", c.DatabaseURL)
	assert.Equal(t, "7070", c.ServerPort)
}

func TestLoadMissingDatabaseURL(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir())
	_, err := Load()
	assert.ErrorIs(t, err, ErrMissingDatabaseURL)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "radiodir.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
database_url: postgres://file/radiodir
server_port: "8181"
cors_origin: https://radios.example
cache_ttl: 2m
pushgateway_url: http://pushgateway:9091
`), 0o600))

	c, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "postgres://file/radiodir", c.DatabaseURL)
	assert.Equal(t, "8181", c.ServerPort)
	assert.Equal(t, "https://radios.example", c.CORSOrigin)
	assert.Equal(t, 2*time.Minute, c.CacheTTL)
	assert.Equal(t, "http://pushgateway:9091", c.PushgatewayURL)
	assert.Equal(t, DefaultImportBatchSize, c.ImportBatchSize)

	require.NoError(t, os.WriteFile(path, []byte("server_port: \"1\"\n"), 0o600))
	_, err = LoadFromFile(path)
	assert.ErrorIs(t, err, ErrMissingDatabaseURL)
}

func TestLoadCountries(t *testing.T) {
	write := func(t *testing.T, body string) string {
		t.Helper()
		path := filepath.Join(t.TempDir(), "countries.yaml")
		require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
		return path
	}

	t.Run("valid", func(t *testing.T) {
		list, err := LoadCountries(write(t, `
countries:
  - {code: co, name: Colombia, flag: /static/flags/colombia.jpg, file: emisoras_colombia.json}
  - {code: AR, name: Argentina, flag: /static/flags/argentina.jpg, file: emisoras_argentinas.json}
`))
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, "CO", list[0].Code)
		assert.Equal(t, "emisoras_argentinas.json", list[1].File)
	})

	invalid := map[string]string{
		"long code":  `countries: [{code: COLO, name: Colombia, file: a.json}]`,
		"empty code": `countries: [{code: "", name: Colombia, file: a.json}]`,
		"no name":    `countries: [{code: CO, file: a.json}]`,
		"no file":    `countries: [{code: CO, name: Colombia}]`,
		"duplicate":  `countries: [{code: CO, name: A, file: a.json}, {code: co, name: B, file: b.json}]`,
	}
	for name, body := range invalid {
		t.Run(name, func(t *testing.T) {
			_, err := LoadCountries(write(t, body))
			assert.Error(t, err)
		})
	}
}

func TestBundledCountries(t *testing.T) {
	list, err := LoadCountries(filepath.Join("..", "..", "config", "countries.yaml"))
	require.NoError(t, err)
	assert.Len(t, list, 27)
	assert.Equal(t, "CO", list[0].Code)
}
