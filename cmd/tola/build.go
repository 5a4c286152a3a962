package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "compile the site once and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		root := workspaceRoot()
		_, coord, err := loadSite(root)
		if err != nil {
			return err
		}

		if err := coord.BuildAll(context.Background()); err != nil {
			return fmt.Errorf("build: %w", err)
		}

		if err := coord.Persist(); err != nil {
			return err
		}

		if n := coord.Diagnostics().Count(); n > 0 {
			entry, _ := coord.Diagnostics().First()
			return fmt.Errorf("build finished with %d failing page(s); first: %s: %s", n, entry.Source, entry.Error)
		}
		return nil
	},
}
