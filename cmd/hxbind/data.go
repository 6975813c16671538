package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/pthm/hxbind"
	"github.com/pthm/hxbind/lib/proppath"
)

func (a *app) getCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get FILE PATH",
		Short: "Print the value at a property path as JSON",
		Long: `Read a YAML, TOML or JSON data file and print the value at PATH as JSON.

  hxbind get profile.yaml 'user.tags[0]'`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, _, err := readData(args[0])
			if err != nil {
				return err
			}
			v, ok := proppath.Get(data, args[1])
			if !ok {
				return fmt.Errorf("%s: %q is undefined", args[0], args[1])
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(v)
		},
	}
}

func (a *app) setCmd() *cobra.Command {
	var write bool
	cmd := &cobra.Command{
		Use:   "set FILE PATH VALUE",
		Short: "Write a value at a property path",
		Long: `Write VALUE at PATH in a YAML, TOML or JSON data file, creating objects and
arrays along the way. VALUE is parsed as JSON, falling back to a plain string.
The result is printed unless --write is given.

  hxbind set profile.yaml 'user.tags[1]' '"editor"' --write`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			data, format, err := readData(path)
			if err != nil {
				return err
			}
			changed, err := proppath.Set(data, args[1], parseValue(args[2]))
			if err != nil {
				return err
			}
			a.log.Debug("set", zap.String("file", path), zap.String("path", args[1]), zap.Bool("changed", changed))

			if !write {
				return writeData(cmd.OutOrStdout(), data, format)
			}
			if !changed {
				return nil
			}
			var buf bytes.Buffer
			if err := writeData(&buf, data, format); err != nil {
				return err
			}
			return os.WriteFile(path, buf.Bytes(), 0o644)
		},
	}
	cmd.Flags().BoolVarP(&write, "write", "w", false, "rewrite FILE in place")
	return cmd
}

// readData decodes a data file into a graph, choosing the format by
// extension.
func readData(path string) (map[string]any, string, error) {
	format, err := hxbind.FormatOf(path)
	if err != nil {
		return nil, "", err
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, "", err
	}

	var data map[string]any
	switch format {
	case hxbind.FormatYAML:
		err = yaml.Unmarshal(raw, &data)
	case hxbind.FormatTOML:
		err = toml.Unmarshal(raw, &data)
	default:
		err = json.Unmarshal(raw, &data)
	}
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", path, err)
	}
	if data == nil {
		data = map[string]any{}
	}
	return data, format, nil
}

func writeData(w io.Writer, data map[string]any, format string) error {
	switch format {
	case hxbind.FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(data); err != nil {
			return err
		}
		return enc.Close()
	case hxbind.FormatTOML:
		return toml.NewEncoder(w).Encode(data)
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(data)
	}
}

func parseValue(s string) any {
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return s
	}
	return v
}
