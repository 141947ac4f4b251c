package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"time"
	"unicode/utf8"

	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

const (
	// CanvasWidth is the printable width of an 80 mm thermal head
	CanvasWidth = 576

	margin      = 16
	rowGap      = 6
	imageGap    = 12
	ruleHeight  = 2
	titleScale  = 1.4
	defaultSize = 26
)

// Thresholds below which a pixel's luminance prints black
var thresholds = map[Kind]uint8{
	KindReceipt: 160,
	KindLabel:   170,
}

// Options configures a Renderer
type Options struct {
	FontPaths []string
	FontData  []byte
	FontSize  float64
	Logo      image.Image
	Location  *time.Location
	Now       func() time.Time
}

// Renderer turns documents into 1-bit rasters. It is safe for concurrent
// use: font faces are created per call.
type Renderer struct {
	font     *opentype.Font
	fontName string
	size     float64
	logo     image.Image
	location *time.Location
	now      func() time.Time
}

// New loads the first usable font. The error wraps ErrFontUnavailable when
// no candidate could be loaded.
func New(opts Options) (*Renderer, error) {
	f, name, err := loadFont(opts.FontData, opts.FontPaths)
	if err != nil {
		return nil, err
	}

	r := &Renderer{
		font:     f,
		fontName: name,
		size:     opts.FontSize,
		logo:     opts.Logo,
		location: opts.Location,
		now:      opts.Now,
	}
	if r.size <= 0 {
		r.size = defaultSize
	}
	if r.location == nil {
		r.location = time.Local
	}
	if r.now == nil {
		r.now = time.Now
	}

	return r, nil
}

// FontName reports which candidate was loaded
func (r *Renderer) FontName() string {
	return r.fontName
}

type faces struct {
	normal font.Face
	title  font.Face
}

func (f faces) get(style Style) font.Face {
	if style == StyleTitle {
		return f.title
	}
	return f.normal
}

func (f faces) Close() {
	f.normal.Close()
	f.title.Close()
}

func (r *Renderer) newFaces() (faces, error) {
	normal, err := opentype.NewFace(r.font, &opentype.FaceOptions{Size: r.size, DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		return faces{}, fmt.Errorf("failed to create font face: %w", err)
	}
	title, err := opentype.NewFace(r.font, &opentype.FaceOptions{Size: r.size * titleScale, DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		normal.Close()
		return faces{}, fmt.Errorf("failed to create font face: %w", err)
	}
	return faces{normal: normal, title: title}, nil
}

// op is a positioned drawing step produced by placing rows on the canvas
type op struct {
	y     int
	image image.Image
	rule  bool
	face  font.Face
	texts []placedText
}

type placedText struct {
	x    int
	text string
}

// Render lays out and rasterizes doc to a 1-bit image of CanvasWidth
func (r *Renderer) Render(doc Document) (*image.Paletted, error) {
	rows, err := r.Layout(doc)
	if err != nil {
		return nil, err
	}

	fc, err := r.newFaces()
	if err != nil {
		return nil, err
	}
	defer fc.Close()

	ops, height := place(rows, fc)

	canvas := image.NewRGBA(image.Rect(0, 0, CanvasWidth, height))
	draw.Draw(canvas, canvas.Bounds(), image.White, image.Point{}, draw.Src)

	for _, o := range ops {
		switch {
		case o.image != nil:
			b := o.image.Bounds()
			x := (CanvasWidth - b.Dx()) / 2
			draw.Draw(canvas, image.Rect(x, o.y, x+b.Dx(), o.y+b.Dy()), o.image, b.Min, draw.Over)
		case o.rule:
			draw.Draw(canvas, image.Rect(margin, o.y, CanvasWidth-margin, o.y+ruleHeight), image.Black, image.Point{}, draw.Src)
		default:
			ascent := o.face.Metrics().Ascent.Ceil()
			for _, t := range o.texts {
				d := &font.Drawer{
					Dst:  canvas,
					Src:  image.Black,
					Face: o.face,
					Dot:  fixed.P(t.x, o.y+ascent),
				}
				d.DrawString(t.text)
			}
		}
	}

	return threshold(canvas, thresholds[doc.Kind()]), nil
}

// place assigns every row a vertical position and returns the final cursor,
// which becomes the image height.
func place(rows []Row, fc faces) ([]op, int) {
	var ops []op
	cursor := margin
	contentWidth := CanvasWidth - 2*margin

	for _, row := range rows {
		switch {
		case row.Image != nil:
			ops = append(ops, op{y: cursor, image: row.Image})
			cursor += row.Image.Bounds().Dy() + imageGap
		case row.Rule:
			cursor += rowGap / 2
			ops = append(ops, op{y: cursor, rule: true})
			cursor += ruleHeight + rowGap
		default:
			face := fc.get(row.Style)
			lineHeight := face.Metrics().Height.Ceil() + rowGap

			for _, line := range lineTexts(row, face, contentWidth) {
				ops = append(ops, op{y: cursor, face: face, texts: line})
				cursor += lineHeight
			}
		}
	}

	return ops, cursor + margin
}

// lineTexts positions a text row, wrapping centered text and truncating the
// left column of two-column rows so the right column stays visible.
func lineTexts(row Row, face font.Face, width int) [][]placedText {
	if row.Right == "" {
		var lines [][]placedText
		for _, part := range wrap(row.Left, face, width) {
			x := margin
			if row.Centered {
				x = (CanvasWidth - measure(face, part)) / 2
			}
			lines = append(lines, []placedText{{x: x, text: part}})
		}
		return lines
	}

	rightWidth := measure(face, row.Right)
	rightX := CanvasWidth - margin - rightWidth
	left := truncate(row.Left, face, width-rightWidth-measure(face, " "))

	return [][]placedText{{{x: margin, text: left}, {x: rightX, text: row.Right}}}
}

func measure(face font.Face, s string) int {
	return font.MeasureString(face, s).Ceil()
}

// wrap breaks s into lines no wider than width, splitting between runes
func wrap(s string, face font.Face, width int) []string {
	if measure(face, s) <= width {
		return []string{s}
	}

	var lines []string
	start := 0
	for i := range s {
		_, size := utf8.DecodeRuneInString(s[i:])
		end := i + size
		if i > start && measure(face, s[start:end]) > width {
			lines = append(lines, s[start:i])
			start = i
		}
	}
	return append(lines, s[start:])
}

func truncate(s string, face font.Face, width int) string {
	if width <= 0 {
		return ""
	}
	for measure(face, s) > width && s != "" {
		_, size := utf8.DecodeLastRuneInString(s)
		s = s[:len(s)-size]
	}
	return s
}

// Monochrome is the two-color palette of rendered documents. Index 1 is black.
func Monochrome() color.Palette {
	return color.Palette{color.White, color.Black}
}

// threshold converts img to a Monochrome image
func threshold(img image.Image, level uint8) *image.Paletted {
	b := img.Bounds()
	out := image.NewPaletted(b, Monochrome())

	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			gray := color.GrayModel.Convert(img.At(x, y)).(color.Gray)
			if gray.Y < level {
				out.SetColorIndex(x, y, 1)
			}
		}
	}

	return out
}
