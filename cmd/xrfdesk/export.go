package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var exportOut string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the report history as CSV",
	Args:  cobra.NoArgs,
	RunE:  runExport,
}

func runExport(cmd *cobra.Command, args []string) error {
	a, err := bootstrap()
	if err != nil {
		return err
	}
	defer a.Close()

	art, err := a.svc.ExportHistory(cmd.Context())
	if err != nil {
		return err
	}

	if exportOut != "" {
		if err := os.WriteFile(exportOut, art.Data, 0o644); err != nil {
			return fmt.Errorf("write export: %w", err)
		}
		a.log.Info("History exported", zap.String("file", exportOut))
		fmt.Fprintln(cmd.OutOrStdout(), exportOut)
		return nil
	}

	where, err := a.svc.Deliver(cmd.Context(), art, false)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), where)
	return nil
}
