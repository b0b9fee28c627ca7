package printer

import (
	"sync"

	"github.com/jung-kurt/gofpdf"
)

// Measurer answers text widths with the same core-font metrics Render uses
type Measurer struct {
	mu  sync.Mutex
	pdf *gofpdf.Fpdf
	tr  func(string) string
}

// NewMeasurer creates a measurer. It is safe for concurrent use.
func NewMeasurer() *Measurer {
	pdf := gofpdf.New("L", "mm", "A5", "")
	return &Measurer{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor("")}
}

// TextWidth returns the width in mm of text set at fontSize points.
func (m *Measurer) TextWidth(text string, fontSize float64, bold bool) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pdf.SetFont(fontFamily, style(bold), fontSize)
	return m.pdf.GetStringWidth(m.tr(text))
}
