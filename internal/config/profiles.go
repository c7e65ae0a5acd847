package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// SelectorProfile maps item fields to CSS selectors for one site. Field
// names ending in _url or _image resolve an attribute (href/src) instead of
// element text.
type SelectorProfile struct {
	Host      string            `yaml:"host"`
	Container string            `yaml:"container"`
	Fields    map[string]string `yaml:"fields"`
}

// selectorFile is the on-disk shape of a selector profile file.
type selectorFile struct {
	Profiles []SelectorProfile `yaml:"profiles"`
}

// LoadSelectorProfiles reads selector profiles from a YAML file. A missing
// path returns no profiles: scraping falls back to default extraction.
func LoadSelectorProfiles(path string) ([]SelectorProfile, error) {
	if path == "" {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read selector profiles: %w", err)
	}

	var file selectorFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse selector profiles: %w", err)
	}

	for i, p := range file.Profiles {
		if p.Host == "" {
			return nil, fmt.Errorf("selector profile %d: missing host", i)
		}
	}
	return file.Profiles, nil
}
