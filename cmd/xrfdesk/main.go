package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/xelth-com/xrfdesk/internal/buildinfo"
)

var (
	// Global flags
	verbose bool
	envFile string
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "xrfdesk",
	Short: "XRF intake tokens and purity certificates for a jewellery shop",
	Long: `xrfdesk issues numbered intake tokens for items submitted for XRF purity
analysis, turns them into printable certificates once the result is known,
and keeps a searchable, exportable history of committed reports.

Configuration comes from the environment and an optional .env file.`,
	SilenceUsage: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print build information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), buildinfo.Current())
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "Load settings from this file instead of .env")

	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (overrides XRF_ADDR)")

	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "Write the CSV here instead of the export directory")

	printCmd.Flags().BoolVar(&printMasked, "masked", false, "Print only the analysis block for pre-printed letterhead")
	printCmd.Flags().StringVarP(&printOut, "out", "o", "", "Output file (default: generated bill name)")
	printCmd.Flags().BoolVar(&printToken, "token", false, "Print a pending token slip instead of a committed report")

	tagsCmd.Flags().StringVarP(&tagsOut, "out", "o", "", "Output file (default: generated tag sheet name)")

	listCmd.Flags().BoolVar(&listAll, "all", false, "List every pending token, not just today's")
	listCmd.Flags().StringVarP(&listQuery, "query", "q", "", "Filter reports by customer, token number or description")

	seedCmd.Flags().BoolVar(&seedForce, "force", false, "Seed even when the store is not empty")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(printCmd)
	rootCmd.AddCommand(tagsCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
