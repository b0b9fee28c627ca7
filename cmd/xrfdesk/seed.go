package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xelth-com/xrfdesk/internal/services/assay"
)

var seedForce bool

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Fill an empty store with demo tokens and reports",
	Args:  cobra.NoArgs,
	RunE:  runSeed,
}

type demoItem struct {
	token    assay.TokenInput
	analysis *assay.AnalysisInput
}

var demoItems = []demoItem{
	{assay.TokenInput{CustomerName: "Ramesh Kumar", ItemDescription: "Gold chain, 22K hallmark", ItemWeight: "12.5", PhoneNumber: "9849012345"},
		&assay.AnalysisInput{Percentage: "91.6", Element: "gold"}},
	{assay.TokenInput{CustomerName: "Lakshmi Devi", ItemDescription: "Bangles (pair)", ItemWeight: "24.310"},
		&assay.AnalysisInput{Percentage: "87.25", Element: "gold", Remarks: "Solder joints excluded from reading"}},
	{assay.TokenInput{CustomerName: "Syed Anwar", ItemDescription: "Silver anklet", ItemWeight: "41.2"},
		&assay.AnalysisInput{Percentage: "92.5", Element: "silver"}},
	{assay.TokenInput{CustomerName: "Padma", ItemDescription: "Ear studs", ItemWeight: "3.05", PhoneNumber: "8247400000"}, nil},
	{assay.TokenInput{CustomerName: "Venkat Rao", ItemDescription: "Old coin", ItemWeight: "7.98"}, nil},
}

func runSeed(cmd *cobra.Command, args []string) error {
	a, err := bootstrap()
	if err != nil {
		return err
	}
	defer a.Close()
	ctx := cmd.Context()

	pending, err := a.svc.ListTokens(ctx)
	if err != nil {
		return err
	}
	history, err := a.svc.SearchHistory(ctx, "")
	if err != nil {
		return err
	}
	if n := len(pending) + len(history); n > 0 && !seedForce {
		return fmt.Errorf("store already has %d records; use --force to add demo data anyway", n)
	}

	var tokens, reports int
	for _, item := range demoItems {
		rec, err := a.svc.CreateToken(ctx, item.token)
		if err != nil {
			return err
		}
		tokens++
		if item.analysis == nil {
			continue
		}
		if _, err := a.svc.Commit(ctx, rec.ID, item.analysis); err != nil {
			return err
		}
		reports++
	}

	a.log.Info("Demo data seeded", zap.Int("tokens", tokens), zap.Int("reports", reports))
	fmt.Fprintf(cmd.OutOrStdout(), "created %d tokens, committed %d reports\n", tokens, reports)
	return nil
}
