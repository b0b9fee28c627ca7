package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/xelth-com/xrfdesk/internal/models"
)

var (
	listAll   bool
	listQuery string
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Show pending tokens and committed reports",
	Long: `Prints today's pending tokens (all pending with --all) followed by the
report history, optionally filtered by --query on customer, token number
or description.`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func runList(cmd *cobra.Command, args []string) error {
	a, err := bootstrap()
	if err != nil {
		return err
	}
	defer a.Close()
	ctx := cmd.Context()

	var pending []models.Record
	if listAll {
		pending, err = a.svc.ListTokens(ctx)
	} else {
		pending, err = a.svc.ListTodayTokens(ctx)
	}
	if err != nil {
		return err
	}
	history, err := a.svc.SearchHistory(ctx, listQuery)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	scope := "today"
	if listAll {
		scope = "all"
	}
	fmt.Fprintf(out, "PENDING TOKENS (%s): %d\n", scope, len(pending))
	writeTable(out, pending)
	fmt.Fprintf(out, "\nREPORTS: %d\n", len(history))
	writeTable(out, history)
	return nil
}

func writeTable(out io.Writer, recs []models.Record) {
	if len(recs) == 0 {
		return
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TOKEN\tDATE\tTIME\tCUSTOMER\tITEM\tWEIGHT\tRESULT\tID")
	for _, r := range recs {
		result := "-"
		if c, ok := r.AsCompleted(); ok {
			result = fmt.Sprintf("%s%% %s", c.Analysis.Percentage, c.Analysis.Element)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			r.TokenNumber, r.Date, r.Time, r.CustomerName, r.ItemDescription, r.ItemWeight, result, r.ID)
	}
	tw.Flush()
}
