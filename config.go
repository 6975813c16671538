package hxbind

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Config describes a component for Registry.New.
type Config struct {
	// ID is the component name and the id of the element it renders into.
	ID string
	// Data is the model. It is used as is, not copied.
	Data map[string]any
	// RefreshInterval is the period of scheduled refreshes; zero disables
	// them.
	RefreshInterval time.Duration
	// Placeholders are render-time fallbacks by property path.
	Placeholders map[string]any
	// Binds run when Registry.Ready is called.
	Binds []BindSpec
}

// BindSpec is a declared bind.
type BindSpec struct {
	ElementID string
	Property  string
	Event     string
}

// Supported configuration file formats.
const (
	FormatYAML = "yaml"
	FormatTOML = "toml"
	FormatJSON = "json"
)

// LoadConfig reads a component configuration file. The format is chosen by
// extension: .yaml, .yml, .toml or .json.
func LoadConfig(path string) (Config, error) {
	format, err := FormatOf(path)
	if err != nil {
		return Config{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	cfg, err := ParseConfig(data, format)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// FormatOf returns the configuration format for a file name.
func FormatOf(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	case ".json":
		return FormatJSON, nil
	}
	return "", fmt.Errorf("%w: unknown config format for %q", ErrArgument, path)
}

// ParseConfig decodes a component configuration:
//
//	id: profile
//	refreshInterval: 30s
//	data:
//	  user: {name: Ada}
//	placeholders:
//	  user.name: Anonymous
//	binds:
//	  name-input: user.name
//	  bio: {property: user.bio, event: change}
//
// binds is either a mapping from element id to property, whose values may
// also be {property, event} objects, or a sequence whose items are either
// a name used as both element id and property or an {element, property,
// event} object. YAML mappings bind in document order; TOML and JSON
// mappings bind in sorted key order. refreshInterval is a duration string
// or a number of milliseconds.
func ParseConfig(data []byte, format string) (Config, error) {
	switch format {
	case FormatYAML:
		return parseYAMLConfig(data)
	case FormatTOML:
		var raw map[string]any
		if err := toml.Unmarshal(data, &raw); err != nil {
			return Config{}, fmt.Errorf("%w: %v", ErrArgument, err)
		}
		return configFromMap(raw)
	case FormatJSON:
		var raw map[string]any
		if err := json.Unmarshal(data, &raw); err != nil {
			return Config{}, fmt.Errorf("%w: %v", ErrArgument, err)
		}
		return configFromMap(raw)
	}
	return Config{}, fmt.Errorf("%w: unknown config format %q", ErrArgument, format)
}

type yamlConfig struct {
	ID              string         `yaml:"id"`
	Data            map[string]any `yaml:"data"`
	RefreshInterval any            `yaml:"refreshInterval"`
	Placeholders    map[string]any `yaml:"placeholders"`
	Binds           yaml.Node      `yaml:"binds"`
}

type bindEntry struct {
	Element  string `yaml:"element"`
	Property string `yaml:"property"`
	Event    string `yaml:"event"`
}

func parseYAMLConfig(data []byte) (Config, error) {
	var raw yamlConfig
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrArgument, err)
	}
	interval, err := parseInterval(raw.RefreshInterval)
	if err != nil {
		return Config{}, err
	}
	binds, err := yamlBinds(&raw.Binds)
	if err != nil {
		return Config{}, err
	}
	cfg := Config{
		ID:              raw.ID,
		Data:            raw.Data,
		RefreshInterval: interval,
		Placeholders:    raw.Placeholders,
		Binds:           binds,
	}
	if cfg.Data == nil {
		cfg.Data = map[string]any{}
	}
	return cfg, nil
}

func yamlBinds(node *yaml.Node) ([]BindSpec, error) {
	var binds []BindSpec
	switch node.Kind {
	case 0:
		return nil, nil
	case yaml.SequenceNode:
		for _, item := range node.Content {
			if item.Kind == yaml.ScalarNode {
				binds = append(binds, BindSpec{ElementID: item.Value, Property: item.Value})
				continue
			}
			var e bindEntry
			if err := item.Decode(&e); err != nil {
				return nil, fmt.Errorf("%w: binds: %v", ErrArgument, err)
			}
			binds = append(binds, BindSpec{ElementID: e.Element, Property: e.Property, Event: e.Event})
		}
	case yaml.MappingNode:
		for i := 0; i+1 < len(node.Content); i += 2 {
			id, value := node.Content[i].Value, node.Content[i+1]
			if value.Kind == yaml.ScalarNode {
				binds = append(binds, BindSpec{ElementID: id, Property: value.Value})
				continue
			}
			var e bindEntry
			if err := value.Decode(&e); err != nil {
				return nil, fmt.Errorf("%w: binds.%s: %v", ErrArgument, id, err)
			}
			binds = append(binds, BindSpec{ElementID: id, Property: e.Property, Event: e.Event})
		}
	default:
		return nil, fmt.Errorf("%w: binds must be a sequence or a mapping", ErrArgument)
	}
	return binds, nil
}

func configFromMap(raw map[string]any) (Config, error) {
	var cfg Config
	if id, ok := raw["id"]; ok {
		s, ok := id.(string)
		if !ok {
			return Config{}, fmt.Errorf("%w: id must be a string", ErrArgument)
		}
		cfg.ID = s
	}

	cfg.Data = map[string]any{}
	if d, ok := raw["data"]; ok {
		m, ok := d.(map[string]any)
		if !ok {
			return Config{}, fmt.Errorf("%w: data must be an object", ErrArgument)
		}
		cfg.Data = m
	}
	if p, ok := raw["placeholders"]; ok {
		m, ok := p.(map[string]any)
		if !ok {
			return Config{}, fmt.Errorf("%w: placeholders must be an object", ErrArgument)
		}
		cfg.Placeholders = m
	}

	interval, err := parseInterval(raw["refreshInterval"])
	if err != nil {
		return Config{}, err
	}
	cfg.RefreshInterval = interval

	binds, err := mapBinds(raw["binds"])
	if err != nil {
		return Config{}, err
	}
	cfg.Binds = binds
	return cfg, nil
}

func mapBinds(v any) ([]BindSpec, error) {
	var binds []BindSpec
	switch t := v.(type) {
	case nil:
		return nil, nil
	case []any:
		for _, item := range t {
			switch e := item.(type) {
			case string:
				binds = append(binds, BindSpec{ElementID: e, Property: e})
			case map[string]any:
				binds = append(binds, BindSpec{
					ElementID: stringField(e, "element"),
					Property:  stringField(e, "property"),
					Event:     stringField(e, "event"),
				})
			default:
				return nil, fmt.Errorf("%w: binds: unexpected %T", ErrArgument, item)
			}
		}
	case map[string]any:
		for _, id := range sortedKeys(t) {
			switch e := t[id].(type) {
			case string:
				binds = append(binds, BindSpec{ElementID: id, Property: e})
			case map[string]any:
				binds = append(binds, BindSpec{
					ElementID: id,
					Property:  stringField(e, "property"),
					Event:     stringField(e, "event"),
				})
			default:
				return nil, fmt.Errorf("%w: binds.%s: unexpected %T", ErrArgument, id, t[id])
			}
		}
	default:
		return nil, fmt.Errorf("%w: binds must be a list or an object", ErrArgument)
	}
	return binds, nil
}

func stringField(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

func parseInterval(v any) (time.Duration, error) {
	switch t := v.(type) {
	case nil:
		return 0, nil
	case string:
		d, err := time.ParseDuration(t)
		if err != nil {
			return 0, fmt.Errorf("%w: refreshInterval: %v", ErrArgument, err)
		}
		return d, nil
	case int:
		return time.Duration(t) * time.Millisecond, nil
	case int64:
		return time.Duration(t) * time.Millisecond, nil
	case float64:
		return time.Duration(t * float64(time.Millisecond)), nil
	}
	return 0, fmt.Errorf("%w: refreshInterval: unexpected %T", ErrArgument, v)
}
