package layout

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xelth-com/xrfdesk/internal/models"
)

// fixedWidth treats every glyph as a fifth of the point size wide.
func fixedWidth(text string, fontSize float64, bold bool) float64 {
	return float64(utf8.RuneCountInString(text)) * fontSize * 0.2
}

var (
	measure  = MeasureFunc(fixedWidth)
	printed  = time.Date(2024, time.March, 5, 14, 7, 9, 0, time.UTC)
	baseItem = models.Record{
		ID:              "rec-1",
		TokenNumber:     "0503005",
		CustomerName:    "Lakshmi",
		ItemDescription: "Bangle",
		ItemWeight:      "12.5",
		Date:            "05/03/2024",
		Time:            "10:00:00",
		Timestamp:       printed.UnixMilli(),
	}
	goldAnalysis = models.Analysis{
		Percentage:        "91.6",
		Element:           models.ElementGold,
		PercentageInWords: "NINE ONE / SIX ZERO",
	}
)

func texts(ops []DrawOp) []Text {
	var out []Text
	for _, op := range ops {
		if t, ok := op.(Text); ok {
			out = append(out, t)
		}
	}
	return out
}

func findText(ops []DrawOp, content string) (Text, bool) {
	for _, t := range texts(ops) {
		if t.Content == content {
			return t, true
		}
	}
	return Text{}, false
}

func TestLayout_MaskedReport(t *testing.T) {
	rec := baseItem.WithAnalysis(goldAnalysis, "")
	rec.Image = []byte("photo")

	ops, err := Layout(rec, Options{Mode: ModeReport, Masked: true, Now: printed, Measurer: measure, Letterhead: DefaultLetterhead})
	require.NoError(t, err)

	want := []DrawOp{
		Text{Content: "05/03/2024 14:07:09", X: 15, Y: 82, FontSize: 7, Color: Grey},
		Text{Content: "XRF ANALYSIS RESULT:", X: 15, Y: 88, FontSize: 13, Bold: true, Color: Black},
		Text{Content: LeadIn, X: 15, Y: 95, FontSize: 13, Color: Black},
		Text{Content: " 91.60% of PURE GOLD.", X: 15 + fixedWidth(LeadIn, 13, false), Y: 95, FontSize: 13, Bold: true, Color: Black},
		Text{Content: "KARAT:", X: 15, Y: 104, FontSize: 13, Bold: true, Color: Black},
		Text{Content: "22.00K", X: 60, Y: 104, FontSize: 13, Color: Black},
		Text{Content: "PERCENTAGE IN WORDS:", X: 15, Y: 113, FontSize: 13, Bold: true, Color: Black},
		Text{Content: "NINE ONE / SIX ZERO", X: 15, Y: 120, FontSize: 13, Color: Black},
	}
	if diff := cmp.Diff(want, ops); diff != "" {
		t.Errorf("masked report mismatch (-want +got):\n%s", diff)
	}
}

func TestLayout_MaskedTokenIsEmpty(t *testing.T) {
	ops, err := Layout(baseItem, Options{Masked: true, Now: printed, Measurer: measure})
	require.NoError(t, err)
	assert.Empty(t, ops)
}

func TestLayout_UnmaskedToken(t *testing.T) {
	rec := baseItem
	rec.PhoneNumber = "9999999999"

	ops, err := Layout(rec, Options{Mode: ModeToken, Now: printed, Measurer: measure, Letterhead: DefaultLetterhead})
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(ops), 2)

	assert.Equal(t, Rect{X: 5, Y: 5, W: 200, H: 138, Color: Gold, LineWidth: 1}, ops[0])
	assert.Equal(t, Rect{X: 7, Y: 7, W: 196, H: 22, Color: Cream, Filled: true}, ops[1])

	title, ok := findText(ops, DefaultLetterhead.Title)
	require.True(t, ok)
	assert.InDelta(t, (210-fixedWidth(DefaultLetterhead.Title, 14, true))/2, title.X, 1e-9)
	assert.Equal(t, Brown, title.Color)

	weight, ok := findText(ops, "12.500 g")
	require.True(t, ok)
	assert.Equal(t, 80.0, weight.X)
	assert.Equal(t, 69.0, weight.Y)

	_, ok = findText(ops, "DATE: 05/03/2024")
	assert.True(t, ok)
	_, ok = findText(ops, "TIME: 14:07:09")
	assert.True(t, ok)

	// no analysis, no phone, no photo
	_, ok = findText(ops, "XRF ANALYSIS RESULT:")
	assert.False(t, ok)
	for _, op := range ops {
		assert.NotContains(t, textOf(op), "9999999999")
		_, isImage := op.(Image)
		assert.False(t, isImage)
	}
}

func textOf(op DrawOp) string {
	if t, ok := op.(Text); ok {
		return t.Content
	}
	return ""
}

func TestLayout_UnmaskedReportFlowsDownward(t *testing.T) {
	rec := baseItem.WithAnalysis(goldAnalysis, "Slight solder detected near the clasp, reading taken on the flat face of the bangle.")
	rec.ItemDescription = strings.Repeat("twisted gold bangle ", 6)
	rec.Image = []byte("photo")

	ops, err := Layout(rec, Options{Mode: ModeReport, Now: printed, Measurer: measure, Letterhead: DefaultLetterhead,
		Logo: []byte("logo"), Verification: []byte("qr")})
	require.NoError(t, err)

	ts := texts(ops)
	for i := 1; i < len(ts); i++ {
		assert.GreaterOrEqual(t, ts[i].Y, ts[i-1].Y, "text %q placed above %q", ts[i].Content, ts[i-1].Content)
	}
	for i := range ts {
		for j := i + 1; j < len(ts); j++ {
			if ts[i].Y != ts[j].Y {
				continue
			}
			a0, a1 := ts[i].X, ts[i].X+fixedWidth(ts[i].Content, ts[i].FontSize, ts[i].Bold)
			b0, b1 := ts[j].X, ts[j].X+fixedWidth(ts[j].Content, ts[j].FontSize, ts[j].Bold)
			assert.False(t, a0 < b1 && b0 < a1, "%q overlaps %q", ts[i].Content, ts[j].Content)
		}
	}

	desc, ok := findText(ops, "ITEM DESCRIPTION:")
	require.True(t, ok)
	lines := Wrap(measure, rec.ItemDescription, 135, 13, false)
	require.Greater(t, len(lines), 1)
	header, ok := findText(ops, "XRF ANALYSIS RESULT:")
	require.True(t, ok)
	assert.Equal(t, desc.Y+7+6*float64(len(lines)), header.Y)

	karat, ok := findText(ops, "22.00K")
	require.True(t, ok)
	assert.Equal(t, 60.0, karat.X)
	_, ok = findText(ops, "NINE ONE / SIX ZERO")
	assert.True(t, ok)
	_, ok = findText(ops, "REMARKS:")
	assert.True(t, ok)

	var images []Image
	for _, op := range ops {
		if img, ok := op.(Image); ok {
			images = append(images, img)
		}
	}
	require.Len(t, images, 3)
	assert.Equal(t, Image{Data: []byte("logo"), X: 50, Y: 10, W: 15, H: 15}, images[0])
	assert.Equal(t, []byte("qr"), images[1].Data)
	photo := images[2]
	assert.Equal(t, []byte("photo"), photo.Data)
	assert.Equal(t, 155.0, photo.X)
	assert.Equal(t, 48.0, photo.Y)
	require.NotNil(t, photo.BorderColor)
	assert.Equal(t, Gold, *photo.BorderColor)
	assert.Equal(t, photo, ops[len(ops)-1])
}

func TestLayout_SilverHasNoKarat(t *testing.T) {
	rec := baseItem.WithAnalysis(models.Analysis{Percentage: "92.5", Element: models.ElementSilver}, "")
	ops, err := Layout(rec, Options{Mode: ModeReport, Now: printed, Measurer: measure})
	require.NoError(t, err)

	_, ok := findText(ops, "KARAT:")
	assert.False(t, ok)
	_, ok = findText(ops, " 92.50% of PURE SILVER.")
	assert.True(t, ok)
	_, ok = findText(ops, "PERCENTAGE IN WORDS:")
	assert.False(t, ok)
}

func TestLayout_Errors(t *testing.T) {
	_, err := Layout(baseItem, Options{})
	assert.ErrorIs(t, err, ErrNoMeasurer)

	_, err = Layout(baseItem, Options{Mode: ModeReport, Measurer: measure})
	assert.ErrorIs(t, err, ErrIncomplete)

	bad := baseItem
	bad.ItemWeight = "heavy"
	_, err = Layout(bad, Options{Measurer: measure})
	assert.ErrorIs(t, err, ErrBadValue)

	partial := baseItem
	partial.Percentage = "90"
	_, err = Layout(partial, Options{Measurer: measure})
	assert.ErrorIs(t, err, models.ErrPartialAnalysis)
}

func TestLayout_DoesNotMutateRecord(t *testing.T) {
	rec := baseItem.WithAnalysis(goldAnalysis, "ok")
	rec.Image = []byte{0x89, 'P', 'N', 'G'}
	before := rec
	before.Image = append([]byte(nil), rec.Image...)

	_, err := Layout(rec, Options{Mode: ModeReport, Now: printed, Measurer: measure})
	require.NoError(t, err)
	assert.Equal(t, before, rec)
}

func TestWrap(t *testing.T) {
	// 13pt glyphs are 2.6mm wide: 10 glyphs fit in 26.5mm
	lines := Wrap(measure, "aaaa bbbb cccc", 26.5, 13, false)
	assert.Equal(t, []string{"aaaa bbbb", "cccc"}, lines)

	lines = Wrap(measure, "abcdefghijklmnopqrstuvw", 26.5, 13, false)
	assert.Equal(t, []string{"abcdefghij", "klmnopqrst", "uvw"}, lines)

	lines = Wrap(measure, "first\nsecond", 100, 13, false)
	assert.Equal(t, []string{"first", "second"}, lines)

	assert.Equal(t, []string{""}, Wrap(measure, "", 26, 13, false))
}
