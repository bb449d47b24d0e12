package stitch

import (
	"fmt"
	"os"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
)

// Font is a parsed notice-page font. The parsed font is safe to share;
// rendering faces are not, so each concurrent renderer derives its own
// via NewFace.
type Font struct {
	sfnt *sfnt.Font
	size float64
}

// LoadFont parses the notice-page font. With an empty path the embedded
// Go Regular face is used, so the tool works without any font installed.
// A path that cannot be read or parsed is a resource error.
func LoadFont(path string, size float64) (*Font, error) {
	if size <= 0 {
		size = DefaultFontSize
	}

	data := goregular.TTF
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read font %s: %w", path, err)
		}
		data = b
	}

	ft, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse font: %w", err)
	}
	return &Font{sfnt: ft, size: size}, nil
}

// NewFace derives a rendering face. opentype faces carry mutable
// rasterizer state and are not safe for concurrent use; derive one face
// per goroutine.
func (f *Font) NewFace() (font.Face, error) {
	face, err := opentype.NewFace(f.sfnt, &opentype.FaceOptions{
		Size:    f.size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create font face: %w", err)
	}
	return face, nil
}

// LoadFace parses a font and derives one face, for single-goroutine use.
func LoadFace(path string, size float64) (font.Face, error) {
	ft, err := LoadFont(path, size)
	if err != nil {
		return nil, err
	}
	return ft.NewFace()
}
