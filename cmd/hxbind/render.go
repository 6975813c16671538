package main

import (
	"context"
	"fmt"
	"html/template"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pthm/hxbind"
	"github.com/pthm/hxbind/lib/dom"
)

func (a *app) renderCmd() *cobra.Command {
	var (
		page      string
		configs   []string
		templates []string
	)
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Bind and render components against a page",
		Long: `Load PAGE into an in-memory document, construct a component from each
--config file, run their declared binds and render them. The resulting page,
with every bound control showing its model value, is printed.

Templates are html/template files given as ID=FILE:

  hxbind render --page index.html --config profile.yaml --template profile=profile.tmpl`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := loadPage(page)
			if err != nil {
				return err
			}
			views, err := loadTemplates(templates)
			if err != nil {
				return err
			}

			reg := hxbind.NewRegistry(doc, hxbind.WithLogger(a.log))
			defer reg.Close()

			components, err := a.loadComponents(reg, configs, views)
			if err != nil {
				return err
			}
			if err := reg.Ready(); err != nil {
				return err
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			for _, c := range components {
				if _, ok := views[c.ID()]; !ok && c.Clean() {
					continue
				}
				if err := c.Render(ctx); err != nil {
					return err
				}
			}
			return doc.Render(cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&page, "page", "", "HTML page to bind against")
	cmd.Flags().StringSliceVarP(&configs, "config", "c", nil, "component configuration file (repeatable)")
	cmd.Flags().StringArrayVarP(&templates, "template", "t", nil, "component template as ID=FILE (repeatable)")
	_ = cmd.MarkFlagRequired("page")
	return cmd
}

func loadPage(path string) (*dom.Doc, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return dom.Parse(f)
}

// loadTemplates parses ID=FILE pairs into renderers by component id.
func loadTemplates(pairs []string) (map[string]hxbind.Renderer, error) {
	views := make(map[string]hxbind.Renderer, len(pairs))
	for _, pair := range pairs {
		id, file, ok := strings.Cut(pair, "=")
		if !ok || id == "" || file == "" {
			return nil, fmt.Errorf("template %q: want ID=FILE", pair)
		}
		t, err := template.ParseFiles(file)
		if err != nil {
			return nil, err
		}
		views[id] = hxbind.HTMLTemplate(t)
	}
	return views, nil
}

func (a *app) loadComponents(reg *hxbind.Registry, paths []string, views map[string]hxbind.Renderer) ([]*hxbind.Component, error) {
	var components []*hxbind.Component
	for _, path := range paths {
		cfg, err := hxbind.LoadConfig(path)
		if err != nil {
			return nil, err
		}
		var opts []hxbind.Option
		if view, ok := views[cfg.ID]; ok {
			opts = append(opts, hxbind.WithRenderer(view))
		}
		c, err := reg.New(cfg, opts...)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		a.log.Debug("component loaded", zap.String("component", c.ID()), zap.String("file", path))
		components = append(components, c)
	}
	return components, nil
}
