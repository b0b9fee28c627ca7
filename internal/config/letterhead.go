package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/xelth-com/xrfdesk/internal/layout"
)

// LoadLetterhead reads the shop identity from a YAML file. Missing keys keep
// their default; an empty path returns the defaults.
func LoadLetterhead(path string) (layout.Letterhead, error) {
	lh := layout.DefaultLetterhead
	if path == "" {
		return lh, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return lh, fmt.Errorf("read letterhead: %w", err)
	}
	if err := yaml.Unmarshal(data, &lh); err != nil {
		return lh, fmt.Errorf("parse letterhead %s: %w", path, err)
	}
	return lh, nil
}

// LoadLogo reads the header logo, if one is configured.
func LoadLogo(path string) ([]byte, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read logo: %w", err)
	}
	return data, nil
}
