// Package export serializes committed reports to CSV.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/xelth-com/xrfdesk/internal/models"
	"github.com/xelth-com/xrfdesk/internal/utils"
)

// Header is the fixed column order of the history export
var Header = []string{
	"Token Number",
	"Customer Name",
	"Item Description",
	"Phone Number",
	"Weight (gms)",
	"Date",
	"Time",
	"Percentage",
	"Element",
}

// ContentType of WriteCSV output
const ContentType = "text/csv; charset=utf-8"

// WriteCSV writes a header line and one row per record. Fields containing
// commas, quotes or line breaks are quoted.
func WriteCSV(w io.Writer, recs []models.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	for _, r := range recs {
		if err := cw.Write(row(r)); err != nil {
			return fmt.Errorf("export: token %s: %w", r.TokenNumber, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	return nil
}

func row(r models.Record) []string {
	weight, err := utils.FormatWeight(r.ItemWeight)
	if err != nil {
		// keep whatever was entered rather than dropping the row
		weight = r.ItemWeight
	}
	return []string{
		r.TokenNumber,
		r.CustomerName,
		r.ItemDescription,
		r.PhoneNumber,
		weight,
		r.Date,
		r.Time,
		r.Percentage,
		string(r.Element),
	}
}

// Filename names a history export taken at now
func Filename(now time.Time) string {
	return fmt.Sprintf("MDS_History_%s.csv", now.Format("2006-01-02"))
}
