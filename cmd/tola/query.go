package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tola-rs/tola/internal/query"
)

var (
	queryDrafts bool
	queryPretty bool
)

var queryCmd = &cobra.Command{
	Use:   "query <sql>",
	Short: "build the site, then run an ad hoc SQL query against its page metadata",
	Args:  cobra.ExactArgs(1),
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

		engine, err := query.Open()
		if err != nil {
			return err
		}
		defer engine.Close()

		records := coord.Pages().GetPages()
		if queryDrafts {
			records = coord.Pages().AllPages()
		}
		if err := engine.Load(records); err != nil {
			return fmt.Errorf("load pages: %w", err)
		}

		rows, err := engine.Run(args[0])
		if err != nil {
			return fmt.Errorf("run query: %w", err)
		}

		enc := json.NewEncoder(os.Stdout)
		if queryPretty {
			enc.SetIndent("", "  ")
		}
		return enc.Encode(rows)
	},
}

func init() {
	queryCmd.Flags().BoolVar(&queryDrafts, "drafts", false, "include draft pages in the query table")
	queryCmd.Flags().BoolVar(&queryPretty, "pretty", false, "pretty-print the JSON result")
}
