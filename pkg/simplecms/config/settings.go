package config

import (
	"fmt"
	"os"

	"github.com/tendant/simple-cms/pkg/simplecms"
	"gopkg.in/yaml.v3"
)

// Settings is the declarative part of an installation: data types, back-office
// users, content types and the image auto-fill policies.
//
//	autoFillProperties:
//	  - alias: umbracoFile
//	    widthFieldAlias: umbracoWidth
//	    heightFieldAlias: umbracoHeight
//	    lengthFieldAlias: umbracoBytes
//	    extensionFieldAlias: umbracoExtension
type Settings struct {
	AutoFillProperties []simplecms.AutoFillProperty    `yaml:"autoFillProperties"`
	DataTypes          []simplecms.DataTypeDefinition `yaml:"dataTypes"`
	Users              []simplecms.User               `yaml:"users"`
	ContentTypes       []*simplecms.ContentType       `yaml:"contentTypes"`
}

// LoadSettings reads settings from a YAML file.
func LoadSettings(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read settings file: %w", err)
	}
	return ParseSettings(data)
}

// ParseSettings decodes YAML settings.
func ParseSettings(data []byte) (*Settings, error) {
	var s Settings
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse settings: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks the settings for duplicate keys.
func (s *Settings) Validate() error {
	policies := make(map[string]bool, len(s.AutoFillProperties))
	for _, p := range s.AutoFillProperties {
		if p.Alias == "" {
			return fmt.Errorf("auto-fill property without alias")
		}
		if policies[p.Alias] {
			return fmt.Errorf("duplicate auto-fill property %q", p.Alias)
		}
		policies[p.Alias] = true
	}

	types := make(map[string]bool, len(s.ContentTypes))
	for _, ct := range s.ContentTypes {
		if ct == nil || ct.Alias == "" {
			return fmt.Errorf("content type without alias")
		}
		if types[ct.Alias] {
			return fmt.Errorf("duplicate content type %q", ct.Alias)
		}
		types[ct.Alias] = true
	}
	return nil
}
