package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xelth-com/xrfdesk/internal/services/share"
)

var (
	printMasked bool
	printToken  bool
	printOut    string
	tagsOut     string
)

var printCmd = &cobra.Command{
	Use:   "print <id>",
	Short: "Render a report certificate (or token slip) to PDF",
	Example: `  xrfdesk print 5f1c0e1e-... --masked
  xrfdesk print 5f1c0e1e-... --token -o slip.pdf`,
	Args: cobra.ExactArgs(1),
	RunE: runPrint,
}

var tagsCmd = &cobra.Command{
	Use:   "tags",
	Short: "Print bag tags for today's pending tokens",
	Args:  cobra.NoArgs,
	RunE:  runTags,
}

func runPrint(cmd *cobra.Command, args []string) error {
	a, err := bootstrap()
	if err != nil {
		return err
	}
	defer a.Close()

	var art share.Artifact
	if printToken {
		art, err = a.svc.TokenDocument(cmd.Context(), args[0], printMasked)
	} else {
		art, err = a.svc.ReportDocument(cmd.Context(), args[0], printMasked)
	}
	if err != nil {
		return err
	}
	return writeOut(cmd, a, art, printOut)
}

func runTags(cmd *cobra.Command, args []string) error {
	a, err := bootstrap()
	if err != nil {
		return err
	}
	defer a.Close()

	art, err := a.svc.TagSheet(cmd.Context())
	if err != nil {
		return err
	}
	return writeOut(cmd, a, art, tagsOut)
}

func writeOut(cmd *cobra.Command, a *app, art share.Artifact, out string) error {
	if out == "" {
		out = art.Name
	}
	if err := os.WriteFile(out, art.Data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}
	a.log.Debug("Document written", zap.String("file", out), zap.Int("bytes", len(art.Data)))
	fmt.Fprintln(cmd.OutOrStdout(), out)
	return nil
}
