package printer

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"github.com/xelth-com/xrfdesk/internal/layout"
	"github.com/xelth-com/xrfdesk/internal/models"
)

const fontFamily = "Helvetica"

// ErrBadImage is returned when an embedded image is not PNG, JPEG or GIF or fails to decode
var ErrBadImage = errors.New("printer: unsupported or malformed image")

// Renderer turns draw operations into a PDF document
type Renderer struct{}

// NewRenderer creates a gofpdf-backed renderer
func NewRenderer() *Renderer {
	return &Renderer{}
}

// Render draws ops in order on a single landscape page of the given size.
func (r *Renderer) Render(ops []layout.DrawOp, page layout.Page) ([]byte, error) {
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "L",
		UnitStr:        "mm",
		Size:           gofpdf.SizeType{Wd: page.Height, Ht: page.Width},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	for i, op := range ops {
		switch o := op.(type) {
		case layout.Text:
			pdf.SetFont(fontFamily, style(o.Bold), o.FontSize)
			pdf.SetTextColor(o.Color.R, o.Color.G, o.Color.B)
			pdf.Text(o.X, o.Y, tr(o.Content))

		case layout.Rect:
			if o.Filled {
				pdf.SetFillColor(o.Color.R, o.Color.G, o.Color.B)
				pdf.Rect(o.X, o.Y, o.W, o.H, "F")
				continue
			}
			pdf.SetDrawColor(o.Color.R, o.Color.G, o.Color.B)
			pdf.SetLineWidth(o.LineWidth)
			pdf.Rect(o.X, o.Y, o.W, o.H, "D")

		case layout.Image:
			if err := drawImage(pdf, fmt.Sprintf("img_%d", i), o); err != nil {
				return nil, err
			}

		default:
			return nil, fmt.Errorf("printer: unknown draw op %T", op)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("printer: %w", err)
	}
	return buf.Bytes(), nil
}

func drawImage(pdf *gofpdf.Fpdf, name string, img layout.Image) error {
	imageType, err := ImageType(img.Data)
	if err != nil {
		return err
	}

	opts := gofpdf.ImageOptions{ImageType: imageType, ReadDpi: true}
	pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(img.Data))
	if err := pdf.Error(); err != nil {
		return fmt.Errorf("%w: %v", ErrBadImage, err)
	}

	if img.BorderColor != nil {
		pdf.SetDrawColor(img.BorderColor.R, img.BorderColor.G, img.BorderColor.B)
		pdf.SetLineWidth(img.BorderWidth)
		pdf.Rect(img.X, img.Y, img.W, img.H, "D")
	}
	pdf.ImageOptions(name, img.X, img.Y, img.W, img.H, false, opts, 0, "")
	return nil
}

// ImageType sniffs data and returns the gofpdf image type for it.
func ImageType(data []byte) (string, error) {
	switch http.DetectContentType(data) {
	case "image/png":
		return "PNG", nil
	case "image/jpeg":
		return "JPG", nil
	case "image/gif":
		return "GIF", nil
	}
	return "", ErrBadImage
}

// CheckImage reports whether data can be embedded in a document. It parses
// the image with the same decoder Render uses.
func CheckImage(data []byte) error {
	imageType, err := ImageType(data)
	if err != nil {
		return err
	}
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.RegisterImageOptionsReader("check", gofpdf.ImageOptions{ImageType: imageType}, bytes.NewReader(data))
	if err := pdf.Error(); err != nil {
		return fmt.Errorf("%w: %v", ErrBadImage, err)
	}
	return nil
}

func style(bold bool) string {
	if bold {
		return "B"
	}
	return ""
}

// Filename names a rendered document, e.g. Bill_0503005_05032024.pdf
func Filename(rec models.Record) string {
	return fmt.Sprintf("Bill_%s_%s.pdf", rec.TokenNumber, strings.ReplaceAll(rec.Date, "/", ""))
}
