package render

import (
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"strings"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font/opentype"
)

// ErrFontUnavailable means none of the candidate fonts could be loaded.
// It is a provisioning problem and should stop the process at startup.
var ErrFontUnavailable = errors.New("no usable font found")

const maxLogoWidth = 320

// loadFont returns the first candidate that parses. Inline data wins over paths.
func loadFont(data []byte, paths []string) (*opentype.Font, string, error) {
	if len(data) > 0 {
		f, err := opentype.Parse(data)
		if err != nil {
			return nil, "", fmt.Errorf("%w: inline font: %v", ErrFontUnavailable, err)
		}
		return f, "inline", nil
	}

	var problems []string
	for _, path := range paths {
		raw, err := os.ReadFile(path)
		if err != nil {
			problems = append(problems, path)
			continue
		}
		f, err := opentype.Parse(raw)
		if err != nil {
			problems = append(problems, path+" (unparsable)")
			continue
		}
		return f, path, nil
	}

	return nil, "", fmt.Errorf("%w: tried %s", ErrFontUnavailable, strings.Join(problems, ", "))
}

// LoadLogo reads a PNG or JPEG logo and scales it down to fit the receipt header
func LoadLogo(path string) (image.Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open logo: %w", err)
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode logo: %w", err)
	}

	return scaleToWidth(img, maxLogoWidth), nil
}

func scaleToWidth(img image.Image, width int) image.Image {
	b := img.Bounds()
	if b.Dx() <= width {
		return img
	}

	height := b.Dy() * width / b.Dx()
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, b, xdraw.Over, nil)
	return dst
}
