package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/eringen/clinicseo/scaffold"
)

func initCMD() *cobra.Command {
	var data scaffold.Data
	initCmd := &cobra.Command{
		Use:   "init [dir]",
		Short: "Write starter SEO settings and an example .env",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			if data.SiteName == "" {
				abs, err := filepath.Abs(dir)
				if err != nil {
					return err
				}
				data.SiteName = scaffold.ToTitle(filepath.Base(abs))
			}
			created, err := scaffold.Write(dir, data)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, p := range created {
				fmt.Fprintf(out, "  created %s\n", p)
			}
			fmt.Fprintln(out)
			fmt.Fprintln(out, "Edit content/seo/*.yaml, copy .env.example to .env, then run 'clinicseo serve'.")
			return nil
		},
	}
	f := initCmd.Flags()
	f.StringVar(&data.SiteName, "name", "", "practice name (default: directory name)")
	f.StringVar(&data.SiteURL, "url", "http://localhost:3000", "public site URL")
	f.StringVar(&data.Physician, "physician", "", "physician name")
	f.StringVar(&data.Region, "region", "", "geo region, e.g. US-MA")
	f.StringVar(&data.City, "city", "", "city")
	return initCmd
}
