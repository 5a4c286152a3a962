package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/tola-rs/tola/internal/validate"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "build the site, then check the compiled output tree for broken links and conflicts",
	RunE: func(cmd *cobra.Command, args []string) error {
		root := workspaceRoot()
		cfg, coord, err := loadSite(root)
		if err != nil {
			return err
		}

		if err := coord.BuildAll(context.Background()); err != nil {
			return fmt.Errorf("build: %w", err)
		}
		if err := coord.Persist(); err != nil {
			return err
		}

		outputDir := filepath.Join(root, cfg.Build.OutputDir)
		report, err := validate.Run(outputDir, coord.Space(), coord.Pages(), cfg.Validate)
		if err != nil {
			return fmt.Errorf("validate: %w", err)
		}

		for _, issue := range report.InternalLinkErrors {
			fmt.Printf("%s: broken internal link %q: %s\n", issue.Source, issue.Link, issue.Message)
		}
		for _, issue := range report.AssetErrors {
			fmt.Printf("%s: missing asset %q: %s\n", issue.Source, issue.Link, issue.Message)
		}
		for permalink, sources := range report.Conflicts {
			fmt.Printf("conflict: %s claimed by %v\n", permalink, sources)
		}
		for _, alias := range report.OrphanAliases {
			fmt.Printf("orphan alias: %s\n", alias)
		}

		if report.HasFailures() {
			return fmt.Errorf("validate found %d internal link error(s), %d asset error(s), %d conflict(s), %d orphan alias(es)",
				len(report.InternalLinkErrors), len(report.AssetErrors), len(report.Conflicts), len(report.OrphanAliases))
		}
		return nil
	},
}
