package render

import (
	"os"
	"path/filepath"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/opentype"
)

// fontSet caches faces at the three HUD sizes. Loaded once at
// compositor construction, never per frame.
type fontSet struct {
	small  font.Face
	medium font.Face
	large  font.Face
}

// loadFonts tries a real TTF first and falls back to the builtin
// bitmap face, so HUD text renders on any machine.
func loadFonts() *fontSet {
	fallback := &fontSet{
		small:  basicfont.Face7x13,
		medium: basicfont.Face7x13,
		large:  basicfont.Face7x13,
	}

	path := findFontPath()
	if path == "" {
		return fallback
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fallback
	}
	parsed, err := opentype.Parse(data)
	if err != nil {
		return fallback
	}

	face := func(size float64) font.Face {
		f, err := opentype.NewFace(parsed, &opentype.FaceOptions{
			Size:    size,
			DPI:     72,
			Hinting: font.HintingFull,
		})
		if err != nil {
			return basicfont.Face7x13
		}
		return f
	}

	return &fontSet{
		small:  face(16),
		medium: face(26),
		large:  face(54),
	}
}

func findFontPath() string {
	if p := os.Getenv("DERBY_FONT"); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	// Common font locations.
	paths := []string{
		"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
		"/usr/share/fonts/TTF/DejaVuSans.ttf",
		"/System/Library/Fonts/Helvetica.ttc",
		"C:\\Windows\\Fonts\\arial.ttf",
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	matches, _ := filepath.Glob("*.ttf")
	if len(matches) > 0 {
		return matches[0]
	}
	return ""
}
