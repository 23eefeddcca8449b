package dashboard

import (
	"fmt"
	"os"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// Faces are the three text styles of the dashboard.
type Faces struct {
	Measurement font.Face
	Description font.Face
	Toolbar     font.Face
}

// LoadFaces loads the TrueType font at path in the three sizes. An empty path
// uses the built-in Go font.
func LoadFaces(path string, measurement, description, toolbar float64) (*Faces, error) {
	ttf := goregular.TTF
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("dashboard: %w", err)
		}
		ttf = b
	}
	f, err := opentype.Parse(ttf)
	if err != nil {
		return nil, fmt.Errorf("dashboard: parse font %q: %w", path, err)
	}
	face := func(size float64) (font.Face, error) {
		return opentype.NewFace(f, &opentype.FaceOptions{
			Size:    size,
			DPI:     72,
			Hinting: font.HintingFull,
		})
	}
	var fs Faces
	if fs.Measurement, err = face(measurement); err != nil {
		return nil, err
	}
	if fs.Description, err = face(description); err != nil {
		return nil, err
	}
	if fs.Toolbar, err = face(toolbar); err != nil {
		return nil, err
	}
	return &fs, nil
}
