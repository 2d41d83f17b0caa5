package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// CountrySource describes one country the importer loads: its code, display
// name, flag asset path and the seed file holding its stations.
type CountrySource struct {
	Code string `yaml:"code"`
	Name string `yaml:"name"`
	Flag string `yaml:"flag"`
	File string `yaml:"file"`
}

type countriesFile struct {
	Countries []CountrySource `yaml:"countries"`
}

// LoadCountries reads the import country list from a YAML file. Codes are
// uppercased; each must be 1-3 characters and unique.
func LoadCountries(path string) ([]CountrySource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f countriesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := validateCountries(f.Countries); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f.Countries, nil
}

func validateCountries(list []CountrySource) error {
	seen := make(map[string]bool, len(list))
	for i := range list {
		c := &list[i]
		c.Code = strings.ToUpper(strings.TrimSpace(c.Code))
		switch {
		case c.Code == "" || len(c.Code) > 3:
			return fmt.Errorf("country %d: code %q must be 1-3 characters", i, c.Code)
		case c.Name == "":
			return fmt.Errorf("country %s: name is required", c.Code)
		case c.File == "":
			return fmt.Errorf("country %s: file is required", c.Code)
		case seen[c.Code]:
			return fmt.Errorf("country %s: duplicate code", c.Code)
		}
		seen[c.Code] = true
	}
	return nil
}
