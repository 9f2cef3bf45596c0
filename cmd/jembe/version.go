package main

import (
	"fmt"
	"strings"

	"github.com/Jembe/jembe-sub000"
	"github.com/Jembe/jembe-sub000/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of jembe",
	Run: func(cmd *cobra.Command, args []string) {
		if banner, _ := cmd.Flags().GetBool("banner"); banner {
			tui.PrintBanner(cmd.OutOrStdout(), strings.TrimSpace(jembe.Version))
			return
		}
		fmt.Fprintf(cmd.OutOrStdout(), "jembe version %s\n", strings.TrimSpace(jembe.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
	versionCmd.Flags().Bool("banner", false, "Print the banner")
}
