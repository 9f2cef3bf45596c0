package main

import (
	"context"
	"fmt"
	"os"

	"github.com/Jembe/jembe-sub000"
	"github.com/Jembe/jembe-sub000/internal/presentation/tui"
	httpAdapter "github.com/Jembe/jembe-sub000/pkg/adapters/http"
	"github.com/spf13/cobra"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch [url]",
	Short: "Load a page and print its component tree",
	Long: `Fetches a page, scans it for components, mounts them and prints the
registry. With --document the reconciled document is printed as well.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup(cmd)
		if err != nil {
			return err
		}
		url := cfg.BaseURL
		if len(args) == 1 {
			url = args[0]
		}
		if url == "" {
			return fmt.Errorf("no url given and base_url is not configured")
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Timeout)
		defer cancel()

		transport := httpAdapter.NewTransport(url)
		markup, err := transport.Fetch(ctx, url)
		if err != nil {
			return err
		}

		client := jembe.New(
			jembe.WithLogger(logger),
			jembe.WithBinder(newBinders(logger)),
			jembe.WithTransport(transport),
			jembe.WithRefreshAction(cfg.RefreshAction),
		)
		defer client.Close()
		if err := client.Load(ctx, markup); err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		styled := tui.IsTerminal(os.Stdout)
		table, err := tui.RenderRegistry(client.Registry(), styled)
		if err != nil {
			return err
		}
		fmt.Fprint(out, table)

		if doc, _ := cmd.Flags().GetBool("document"); doc {
			fmt.Fprintln(out)
			fmt.Fprintln(out, tui.PrettyDocument(client.Document()))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(fetchCmd)
	fetchCmd.Flags().Bool("document", false, "Print the reconciled document")
}
