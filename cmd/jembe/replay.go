package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Jembe/jembe-sub000"
	"github.com/Jembe/jembe-sub000/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var replayCmd = &cobra.Command{
	Use:   "replay <page.html> <response.json>...",
	Short: "Apply recorded producer responses to a saved page",
	Long: `Loads a saved page, applies each recorded response in order and prints
what every pass changed: merge outcomes, dropped and removed components, and
a line diff of the document.`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup(cmd)
		if err != nil {
			return err
		}
		page, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read page: %w", err)
		}

		client := jembe.New(
			jembe.WithLogger(logger),
			jembe.WithBinder(newBinders(logger)),
			jembe.WithRefreshAction(cfg.RefreshAction),
		)
		defer client.Close()

		ctx := cmd.Context()
		if err := client.Load(ctx, string(page)); err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		showDiff, _ := cmd.Flags().GetBool("diff")
		for _, path := range args[1:] {
			body, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("failed to read response: %w", err)
			}
			before := client.Document()
			report, err := client.Apply(ctx, body)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}

			fmt.Fprintf(out, "== %s (root %s)\n", path, report.Root)
			for _, name := range report.Order {
				fmt.Fprintf(out, "  %-8s %s\n", report.Outcomes[name], name)
			}
			printList(out, "dropped", report.Dropped)
			printList(out, "removed", report.Removed)
			printList(out, "orphans", report.Orphans)
			if showDiff {
				fmt.Fprint(out, tui.DiffDocuments(before, client.Document()))
			}
		}

		table, err := tui.RenderRegistry(client.Registry(), tui.IsTerminal(os.Stdout))
		if err != nil {
			return err
		}
		fmt.Fprint(out, table)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(replayCmd)
	replayCmd.Flags().Bool("diff", true, "Print a document diff after every pass")
}

func printList(w io.Writer, label string, names []string) {
	if len(names) > 0 {
		fmt.Fprintf(w, "  %s: %s\n", label, strings.Join(names, ", "))
	}
}
