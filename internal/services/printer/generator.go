package printer

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
	"github.com/skip2/go-qrcode"

	"github.com/xelth-com/xrfdesk/internal/models"
)

// VerificationContent is what the certificate QR code encodes
func VerificationContent(rec models.Record) string {
	return fmt.Sprintf("XRF/%s/%s/%s", rec.TokenNumber, rec.Date, rec.ID)
}

// VerificationMark renders the certificate QR code as PNG bytes
func VerificationMark(rec models.Record) ([]byte, error) {
	return qrcode.Encode(VerificationContent(rec), qrcode.Medium, 256)
}

// TagConfig holds the sheet geometry for intake tags
type TagConfig struct {
	Cols       int     `json:"cols"`
	Rows       int     `json:"rows"`
	MarginTop  float64 `json:"marginTop"`
	MarginLeft float64 `json:"marginLeft"`
	GapX       float64 `json:"gapX"`
	GapY       float64 `json:"gapY"`
}

// DefaultTagConfig fits 3x7 tags on A4
var DefaultTagConfig = TagConfig{Cols: 3, Rows: 7, MarginTop: 10, MarginLeft: 8, GapX: 3, GapY: 2}

// GenerateTagsPDF creates an A4 sheet of cut-out tags, one per token, carrying the
// token number, customer name and a QR code of the token for bagging items.
func GenerateTagsPDF(tokens []models.Record, cfg TagConfig) ([]byte, error) {
	if cfg.Cols <= 0 || cfg.Rows <= 0 {
		cfg = DefaultTagConfig
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	// A4 dimensions
	pageWidth, pageHeight := 210.0, 297.0

	totalGapX := float64(cfg.Cols-1) * cfg.GapX
	totalGapY := float64(cfg.Rows-1) * cfg.GapY
	availW := pageWidth - (cfg.MarginLeft * 2)
	availH := pageHeight - (cfg.MarginTop * 2)
	tagW := (availW - totalGapX) / float64(cfg.Cols)
	tagH := (availH - totalGapY) / float64(cfg.Rows)

	perPage := cfg.Cols * cfg.Rows
	if len(tokens) == 0 {
		pdf.AddPage()
	}

	for i, tok := range tokens {
		if i%perPage == 0 {
			pdf.AddPage()
		}

		indexOnPage := i % perPage
		col := indexOnPage % cfg.Cols
		row := indexOnPage / cfg.Cols
		x := cfg.MarginLeft + float64(col)*(tagW+cfg.GapX)
		y := cfg.MarginTop + float64(row)*(tagH+cfg.GapY)

		qrPng, err := qrcode.Encode(tok.TokenNumber, qrcode.Low, 256)
		if err != nil {
			return nil, err
		}
		imgName := fmt.Sprintf("tag_%d", i)
		imgOptions := gofpdf.ImageOptions{ImageType: "PNG", ReadDpi: true}
		pdf.RegisterImageOptionsReader(imgName, imgOptions, bytes.NewReader(qrPng))

		// QR on the left, text on the right
		qrSize := tagH * 0.8
		pdf.ImageOptions(imgName, x+1, y+(tagH-qrSize)/2, qrSize, qrSize, false, imgOptions, 0, "")

		textX := x + qrSize + 3
		textW := tagW - qrSize - 4
		pdf.SetXY(textX, y+tagH/2-7)
		pdf.SetFont(fontFamily, "B", 14)
		pdf.CellFormat(textW, 7, tok.TokenNumber, "", 2, "L", false, 0, "")
		pdf.SetFont(fontFamily, "", 8)
		pdf.SetX(textX)
		pdf.CellFormat(textW, 4, tr(tok.CustomerName), "", 2, "L", false, 0, "")
		pdf.SetX(textX)
		pdf.CellFormat(textW, 4, tok.Date+" "+tok.Time, "", 2, "L", false, 0, "")

		// cutting guide
		pdf.SetDrawColor(200, 200, 200)
		pdf.SetLineWidth(0.1)
		pdf.Rect(x, y, tagW, tagH, "D")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
