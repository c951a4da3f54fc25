package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/eringen/clinicseo"
	"github.com/eringen/clinicseo/head"
	"github.com/eringen/clinicseo/seo"
)

type resolveOptions struct {
	head      bool
	overrides bool
}

func resolveCMD() *cobra.Command {
	var opts resolveOptions
	resolve := &cobra.Command{
		Use:   "resolve [page-id...]",
		Short: "Print the resolved metadata for pages (all routed pages by default)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResolve(cmd, configFromEnv(), args, opts)
		},
	}
	resolve.Flags().BoolVar(&opts.head, "head", false, "print head tags instead of JSON")
	resolve.Flags().BoolVar(&opts.overrides, "with-overrides", true, "include admin overrides from the database")
	return resolve
}

func runResolve(cmd *cobra.Command, cfg clinicseo.SiteConfig, ids []string, opts resolveOptions) error {
	logger, err := newLogger()
	if err != nil {
		return err
	}
	defer logger.Sync()

	src, _, err := cfg.PrimarySource(logger)
	if err != nil {
		return err
	}
	layered := seo.NewLayered(src)
	if opts.overrides {
		dbPath := cfg.DatabasePath
		if dbPath == "" {
			dbPath = "data/seo.db"
		}
		if _, err := os.Stat(dbPath); err == nil {
			store, err := clinicseo.NewStore(dbPath)
			if err != nil {
				return err
			}
			defer store.Close()
			layered.Overlays = append(layered.Overlays, store)
		}
	}

	if len(ids) == 0 {
		for _, r := range clinicseo.DefaultRoutes() {
			ids = append(ids, r.PageID)
		}
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	loader := seo.NewLoader(layered)
	out := cmd.OutOrStdout()
	results := make([]seo.Metadata, 0, len(ids))
	for _, id := range ids {
		m, err := loader.Resolve(ctx, id)
		if err != nil {
			return fmt.Errorf("resolve %s: %w", id, err)
		}
		if opts.head {
			if err := writeHead(out, m, cfg); err != nil {
				return err
			}
			continue
		}
		results = append(results, m)
	}
	if opts.head {
		return nil
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if len(results) == 1 {
		return enc.Encode(results[0])
	}
	return enc.Encode(results)
}

func writeHead(w io.Writer, m seo.Metadata, cfg clinicseo.SiteConfig) error {
	fmt.Fprintf(w, "<!-- %s -->\n", m.PageID)
	if err := head.Write(w, m, head.Options{SiteName: cfg.Name, Author: cfg.Author, Geo: cfg.Geo}); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}
