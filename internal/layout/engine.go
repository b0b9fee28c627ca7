// Package layout turns a record into the positioned draw operations of the
// XRF certificate. It performs no I/O: glyph widths come from an injected
// Measurer and the printed date/time from Options.Now.
package layout

import (
	"errors"
	"fmt"
	"time"

	"github.com/xelth-com/xrfdesk/internal/models"
	"github.com/xelth-com/xrfdesk/internal/utils"
)

// Mode selects the document kind. Both modes share one certificate layout;
// ModeReport additionally requires the record to carry an analysis.
type Mode int

const (
	ModeToken Mode = iota
	ModeReport
)

func (m Mode) String() string {
	if m == ModeReport {
		return "report"
	}
	return "token"
}

// Letterhead is the shop identity printed in the header band
type Letterhead struct {
	Title            string `yaml:"title" json:"title"`
	Address          string `yaml:"address" json:"address"`
	Phones           string `yaml:"phones" json:"phones"`
	CertificateTitle string `yaml:"certificate_title" json:"certificateTitle"`
}

// DefaultLetterhead is used when no letterhead file is configured
var DefaultLetterhead = Letterhead{
	Title:            "New MDS Jewellers",
	Address:          "Shop no. 29, SKS Complex, Old Bus Stand, Kurnool",
	Phones:           "9849957100 / 8247453580",
	CertificateTitle: "XRF Gold/Silver Test Certificate",
}

// Options carries everything besides the record that influences the layout
type Options struct {
	Mode       Mode
	Masked     bool
	Now        time.Time
	Measurer   Measurer
	Letterhead Letterhead
	// Logo is drawn in the header band when non-empty.
	Logo []byte
	// Verification is an optional QR image drawn at the right of the header band.
	Verification []byte
}

var (
	ErrNoMeasurer = errors.New("layout: no text measurer")
	ErrIncomplete = errors.New("layout: report requires percentage and element")
	ErrBadValue   = errors.New("layout: unprintable value")
)

// Geometry, in millimetres and points.
const (
	borderInset   = 5.0
	bandInset     = 7.0
	bandHeight    = 22.0
	fieldFontSize = 13.0
	labelX        = 15.0
	valueX        = 80.0
	analysisValX  = 60.0
	dateX         = 160.0
	fieldStep     = 9.0
	blockStep     = 7.0
	wrapLineStep  = 6.0
	wrapMargin    = 75.0
	maskedStartY  = 80.0
	photoSize     = 40.0
	photoRight    = 15.0
	photoBottom   = 60.0
	qrSize        = 20.0

	// LeadIn precedes the bold percentage/element segment of the result sentence.
	LeadIn = "Upon XRF analysis, the above sample item has "
)

// Layout produces the ordered draw operations for rec.
func Layout(rec models.Record, opts Options) ([]DrawOp, error) {
	if opts.Measurer == nil {
		return nil, ErrNoMeasurer
	}
	if err := rec.CheckAnalysis(); err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	report, complete := rec.AsCompleted()
	if opts.Mode == ModeReport && !complete {
		return nil, ErrIncomplete
	}

	b := &builder{page: A5Landscape, m: opts.Measurer}
	y := maskedStartY
	if !opts.Masked {
		b.header(opts)
		var err error
		if y, err = b.fields(rec, opts.Now); err != nil {
			return nil, err
		}
	}

	if complete {
		var err error
		if y, err = b.analysis(report, y, opts); err != nil {
			return nil, err
		}
	}

	if !opts.Masked && len(rec.Image) > 0 {
		b.photo(rec.Image)
	}
	return b.ops, nil
}

type builder struct {
	page Page
	m    Measurer
	ops  []DrawOp
}

func (b *builder) text(content string, x, y, size float64, bold bool, c Color) {
	b.ops = append(b.ops, Text{Content: content, X: x, Y: y, FontSize: size, Bold: bold, Color: c})
}

func (b *builder) centered(content string, y, size float64, bold bool, c Color) {
	w := b.m.TextWidth(content, size, bold)
	b.text(content, (b.page.Width-w)/2, y, size, bold, c)
}

// lines draws wrapped lines from y and returns how far the cursor advances.
func (b *builder) lines(content string, x, y float64) float64 {
	wrapped := Wrap(b.m, content, b.page.Width-wrapMargin, fieldFontSize, false)
	for i, line := range wrapped {
		b.text(line, x, y+float64(i)*wrapLineStep, fieldFontSize, false, Black)
	}
	return blockStep + float64(len(wrapped))*wrapLineStep
}

func (b *builder) header(opts Options) {
	w, h := b.page.Width, b.page.Height
	b.ops = append(b.ops,
		Rect{X: borderInset, Y: borderInset, W: w - 2*borderInset, H: h - 2*borderInset, Color: Gold, LineWidth: 1},
		Rect{X: bandInset, Y: bandInset, W: w - 2*bandInset, H: bandHeight, Color: Cream, Filled: true},
	)
	if len(opts.Logo) > 0 {
		b.ops = append(b.ops, Image{Data: opts.Logo, X: 50, Y: 10, W: 15, H: 15})
	}
	if len(opts.Verification) > 0 {
		b.ops = append(b.ops, Image{Data: opts.Verification, X: w - bandInset - qrSize - 2, Y: bandInset + 1, W: qrSize, H: qrSize})
	}

	lh := opts.Letterhead
	b.centered(lh.Title, 15, 14, true, Brown)
	b.centered(lh.Address, 21, 9, false, Brown)
	b.centered(lh.Phones, 27, 9, true, Brown)
	b.centered(lh.CertificateTitle, 35, 15, true, Brown)
}

func (b *builder) fields(rec models.Record, now time.Time) (float64, error) {
	y := 35.0
	b.text("DATE: "+utils.FormatDate(now), dateX, y, 10, true, Black)
	y += 8
	b.text("TIME: "+utils.FormatClock(now), dateX, y, 10, true, Black)
	y += 8

	weight, err := utils.FormatWeight(rec.ItemWeight)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrBadValue, err)
	}

	field := func(label, value string) {
		b.text(label+":", labelX, y, fieldFontSize, true, Black)
		b.text(value, valueX, y, fieldFontSize, false, Black)
		y += fieldStep
	}
	field("TOKEN NUMBER", rec.TokenNumber)
	field("CUSTOMER NAME", rec.CustomerName)
	field("ITEM WEIGHT (GRMS)", weight+" g")

	b.text("ITEM DESCRIPTION:", labelX, y, fieldFontSize, true, Black)
	y += b.lines(rec.ItemDescription, valueX, y)
	return y, nil
}

func (b *builder) analysis(rep models.Completed, y float64, opts Options) (float64, error) {
	pct, err := utils.ParseDecimal(rep.Analysis.Percentage)
	if err != nil {
		return 0, fmt.Errorf("%w: percentage: %v", ErrBadValue, err)
	}

	if opts.Masked {
		stamp := utils.FormatDate(opts.Now) + " " + utils.FormatClock(opts.Now)
		b.text(stamp, labelX, y+2, 7, false, Grey)
		y += 8
	}

	b.text("XRF ANALYSIS RESULT:", labelX, y, fieldFontSize, true, Black)
	y += blockStep

	b.text(LeadIn, labelX, y, fieldFontSize, false, Black)
	offset := labelX + b.m.TextWidth(LeadIn, fieldFontSize, false)
	b.text(fmt.Sprintf(" %s of PURE %s.", utils.FormatPercent(pct), rep.Analysis.Element), offset, y, fieldFontSize, true, Black)
	y += fieldStep

	if rep.Analysis.Element == models.ElementGold {
		b.text("KARAT:", labelX, y, fieldFontSize, true, Black)
		b.text(utils.Karat(pct), analysisValX, y, fieldFontSize, false, Black)
		y += fieldStep
	}

	if rep.Analysis.PercentageInWords != "" {
		b.text("PERCENTAGE IN WORDS:", labelX, y, fieldFontSize, true, Black)
		y += blockStep
		b.text(rep.Analysis.PercentageInWords, labelX, y, fieldFontSize, false, Black)
		y += fieldStep
	}

	if rep.Remarks != "" {
		b.text("REMARKS:", labelX, y, fieldFontSize, true, Black)
		y += b.lines(rep.Remarks, analysisValX, y)
	}
	return y, nil
}

func (b *builder) photo(data []byte) {
	border := Gold
	b.ops = append(b.ops, Image{
		Data:        data,
		X:           b.page.Width - photoSize - photoRight,
		Y:           b.page.Height - photoSize - photoBottom,
		W:           photoSize,
		H:           photoSize,
		BorderColor: &border,
		BorderWidth: 0.5,
	})
}
