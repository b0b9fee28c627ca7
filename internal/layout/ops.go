package layout

// Page is the fixed sheet geometry in millimetres
type Page struct {
	Width  float64
	Height float64
}

// A5Landscape is the certificate sheet
var A5Landscape = Page{Width: 210, Height: 148}

// Color is an RGB triple, 0-255
type Color struct {
	R, G, B int
}

var (
	Black = Color{0, 0, 0}
	Gold  = Color{218, 165, 32}
	Brown = Color{139, 69, 19}
	Cream = Color{255, 255, 200}
	Grey  = Color{128, 128, 128}
)

// DrawOp is one positioned primitive. The concrete types are Text, Rect and Image.
type DrawOp interface {
	drawOp()
}

// Text draws Content with its baseline at Y.
type Text struct {
	Content  string
	X, Y     float64
	FontSize float64
	Bold     bool
	Color    Color
}

// Rect strokes (or fills, when Filled) a rectangle. Color is the fill colour for
// filled rectangles and the stroke colour otherwise.
type Rect struct {
	X, Y, W, H float64
	Color      Color
	LineWidth  float64
	Filled     bool
}

// Image places a PNG or JPEG payload. A non-nil BorderColor frames it.
type Image struct {
	Data        []byte
	X, Y, W, H  float64
	BorderColor *Color
	BorderWidth float64
}

func (Text) drawOp()  {}
func (Rect) drawOp()  {}
func (Image) drawOp() {}

// Measurer reports the rendered width in millimetres of text at a point size.
type Measurer interface {
	TextWidth(text string, fontSize float64, bold bool) float64
}

// MeasureFunc adapts a plain function to Measurer.
type MeasureFunc func(text string, fontSize float64, bold bool) float64

// TextWidth calls f.
func (f MeasureFunc) TextWidth(text string, fontSize float64, bold bool) float64 {
	return f(text, fontSize, bold)
}
