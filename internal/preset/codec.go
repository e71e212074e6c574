package preset

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// ErrUnknownFormat is returned for a preset file extension that has no codec.
var ErrUnknownFormat = errors.New("unknown preset format")

// Format is a preset file encoding.
type Format string

// Supported formats.
const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// FormatOf picks the format from a file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, filepath.Ext(path))
}

// Decode parses a preset. Fields missing from data keep their defaults and
// numeric fields are clamped into their editable ranges.
func Decode(data []byte, format Format) (*Preset, error) {
	p := Default()
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, p); err != nil {
			return nil, fmt.Errorf("failed to parse yaml preset: %w", err)
		}
	case FormatTOML:
		// go-toml appends array tables to a non-empty slice, so the document
		// is decoded generically and replayed onto the defaults.
		var doc map[string]any
		if err := toml.NewDecoder(bytes.NewReader(data)).Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to parse toml preset: %w", err)
		}
		bridge, err := yaml.Marshal(doc)
		if err != nil {
			return nil, fmt.Errorf("failed to parse toml preset: %w", err)
		}
		if err := yaml.Unmarshal(bridge, p); err != nil {
			return nil, fmt.Errorf("failed to parse toml preset: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	p.Clamp()
	return p, nil
}

// Encode serializes the preset.
func (p *Preset) Encode(format Format) ([]byte, error) {
	switch format {
	case FormatYAML:
		data, err := yaml.Marshal(p)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal preset: %w", err)
		}
		return data, nil
	case FormatTOML:
		data, err := toml.Marshal(p)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal preset: %w", err)
		}
		return data, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}

// Load reads a preset file. An unnamed preset takes the file's base name.
func Load(path string) (*Preset, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read preset: %w", err)
	}

	p, err := Decode(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if p.Name == "" {
		p.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return p, nil
}

// Save writes the preset, creating parent directories as needed.
func (p *Preset) Save(path string) error {
	format, err := FormatOf(path)
	if err != nil {
		return err
	}

	data, err := p.Encode(format)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create preset directory: %w", err)
		}
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write preset: %w", err)
	}
	return nil
}
