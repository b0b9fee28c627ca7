package printer

import (
	"bytes"
	"image"
	"image/color"
	"image/gif"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xelth-com/xrfdesk/internal/layout"
	"github.com/xelth-com/xrfdesk/internal/models"
)

var sample = models.Record{
	ID:              "5f1c0e1e-0000-4000-8000-000000000001",
	TokenNumber:     "0503005",
	CustomerName:    "Śrī Lakshmi",
	ItemDescription: "Bangle with floral pattern",
	ItemWeight:      "12.5",
	Date:            "05/03/2024",
	Time:            "10:00:00",
}

func TestMeasurer(t *testing.T) {
	m := NewMeasurer()

	normal := m.TextWidth("XRF ANALYSIS RESULT:", 13, false)
	bold := m.TextWidth("XRF ANALYSIS RESULT:", 13, true)
	assert.Greater(t, normal, 0.0)
	assert.Greater(t, bold, normal)
	assert.InDelta(t, normal*2, m.TextWidth("XRF ANALYSIS RESULT:", 26, false), 1e-6)
	assert.Equal(t, 0.0, m.TextWidth("", 13, false))
}

func TestRender_TokenAndReport(t *testing.T) {
	qr, err := VerificationMark(sample)
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(qr, []byte("\x89PNG")))

	rec := sample.WithAnalysis(models.Analysis{Percentage: "91.6", Element: models.ElementGold,
		PercentageInWords: "NINE ONE / SIX ZERO"}, "clean sample")
	rec.Image = qr

	for _, masked := range []bool{false, true} {
		ops, err := layout.Layout(rec, layout.Options{
			Mode:         layout.ModeReport,
			Masked:       masked,
			Now:          time.Date(2024, 3, 5, 11, 0, 0, 0, time.UTC),
			Measurer:     NewMeasurer(),
			Letterhead:   layout.DefaultLetterhead,
			Verification: qr,
		})
		require.NoError(t, err)

		doc, err := NewRenderer().Render(ops, layout.A5Landscape)
		require.NoError(t, err)
		assert.True(t, bytes.HasPrefix(doc, []byte("%PDF-")), "masked=%v", masked)
	}
}

func TestRender_BadImage(t *testing.T) {
	ops := []layout.DrawOp{
		layout.Text{Content: "x", X: 10, Y: 10, FontSize: 10},
		layout.Image{Data: []byte("definitely not an image"), X: 0, Y: 0, W: 10, H: 10},
	}
	_, err := NewRenderer().Render(ops, layout.A5Landscape)
	assert.ErrorIs(t, err, ErrBadImage)

	corrupt := append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0}, 32)...)
	ops[1] = layout.Image{Data: corrupt, W: 10, H: 10}
	_, err = NewRenderer().Render(ops, layout.A5Landscape)
	assert.ErrorIs(t, err, ErrBadImage)
}

func tinyGIF(t *testing.T) []byte {
	t.Helper()
	img := image.NewPaletted(image.Rect(0, 0, 4, 4), color.Palette{color.White, color.Black})
	img.SetColorIndex(1, 1, 1)
	var buf bytes.Buffer
	require.NoError(t, gif.Encode(&buf, img, nil))
	return buf.Bytes()
}

func TestCheckImage(t *testing.T) {
	qr, err := VerificationMark(sample)
	require.NoError(t, err)
	assert.NoError(t, CheckImage(qr))
	assert.NoError(t, CheckImage(tinyGIF(t)))

	webp := append([]byte("RIFF\x1a\x00\x00\x00WEBPVP8 "), bytes.Repeat([]byte{0}, 16)...)
	assert.ErrorIs(t, CheckImage(webp), ErrBadImage)
	assert.ErrorIs(t, CheckImage(append([]byte("\x89PNG\r\n\x1a\n"), 0, 0, 0)), ErrBadImage)
}

func TestRender_GIF(t *testing.T) {
	ops := []layout.DrawOp{layout.Image{Data: tinyGIF(t), X: 10, Y: 10, W: 20, H: 20}}
	doc, err := NewRenderer().Render(ops, layout.A5Landscape)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(doc, []byte("%PDF-")))
}

func TestFilename(t *testing.T) {
	assert.Equal(t, "Bill_0503005_05032024.pdf", Filename(sample))
}

func TestGenerateTagsPDF(t *testing.T) {
	tokens := make([]models.Record, 0, 25)
	for i := 0; i < 25; i++ {
		tok := sample
		tok.TokenNumber = "05030" + string(rune('1'+i%9)) + "0"
		tokens = append(tokens, tok)
	}

	doc, err := GenerateTagsPDF(tokens, TagConfig{})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(doc, []byte("%PDF-")))

	empty, err := GenerateTagsPDF(nil, DefaultTagConfig)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(empty, []byte("%PDF-")))
}
