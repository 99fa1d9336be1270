package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/gomonobolditalic"
	"golang.org/x/image/font/gofont/gomonoitalic"
	"golang.org/x/image/font/gofont/goregular"
)

// FontBook resolves a style's family, weight and size to a font face. Files
// named <Family>-<Weight>.ttf in dir take precedence over the built in Go
// fonts. Parsed fonts are cached.
type FontBook struct {
	dir string

	mu    sync.Mutex
	fonts map[string]*truetype.Font
}

func NewFontBook(dir string) *FontBook {
	return &FontBook{
		dir:   dir,
		fonts: make(map[string]*truetype.Font),
	}
}

func fontWeight(bold, italic bool) string {
	switch {
	case bold && italic:
		return "BoldItalic"
	case bold:
		return "Bold"
	case italic:
		return "Italic"
	}
	return "Regular"
}

func isMonospace(family string) bool {
	f := strings.ToLower(family)
	return f == "monospace" || strings.Contains(f, "mono") || strings.Contains(f, "courier")
}

func builtinFont(family, weight string) []byte {
	if isMonospace(family) {
		switch weight {
		case "Bold":
			return gomonobold.TTF
		case "Italic":
			return gomonoitalic.TTF
		case "BoldItalic":
			return gomonobolditalic.TTF
		}
		return gomono.TTF
	}
	switch weight {
	case "Bold":
		return gobold.TTF
	case "Italic":
		return goitalic.TTF
	case "BoldItalic":
		return gobolditalic.TTF
	}
	return goregular.TTF
}

func (b *FontBook) load(family, weight string) (*truetype.Font, error) {
	key := family + "-" + weight
	if f, ok := b.fonts[key]; ok {
		return f, nil
	}

	data := builtinFont(family, weight)
	if b.dir != "" && family != "" {
		path := filepath.Join(b.dir, filepath.Base(family+"-"+weight+".ttf"))
		if raw, err := os.ReadFile(path); err == nil {
			data = raw
		}
	}

	f, err := truetype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse font %s: %v", key, err)
	}
	b.fonts[key] = f
	return f, nil
}

// Face returns a new face on every call. A truetype face keeps glyph state
// and must not be shared between goroutines.
func (b *FontBook) Face(family string, bold, italic bool, size float64) (font.Face, error) {
	if size <= 0 {
		size = defaultFontSize
	}
	b.mu.Lock()
	f, err := b.load(family, fontWeight(bold, italic))
	b.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return truetype.NewFace(f, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	}), nil
}

// FontInfo is one entry of the font manifest served at /api/fonts.
type FontInfo struct {
	Family  string   `json:"family"`
	Weights []string `json:"weights"`
	Formats []string `json:"formats"`
}

// Manifest lists the families found in the font directory. Without a
// directory it describes the built in fonts.
func (b *FontBook) Manifest() ([]FontInfo, error) {
	if b.dir == "" {
		all := []string{"Regular", "Bold", "Italic", "BoldItalic"}
		return []FontInfo{
			{Family: defaultFontFamily, Weights: all, Formats: []string{"builtin"}},
			{Family: "monospace", Weights: all, Formats: []string{"builtin"}},
		}, nil
	}

	entries, err := os.ReadDir(b.dir)
	if err != nil {
		return nil, err
	}
	byFamily := make(map[string]*FontInfo)
	var order []string
	for _, entry := range entries {
		name := entry.Name()
		ext := strings.ToLower(filepath.Ext(name))
		if entry.IsDir() || (ext != ".ttf" && ext != ".otf") {
			continue
		}
		stem := strings.TrimSuffix(name, filepath.Ext(name))
		family, weight := stem, "Regular"
		if i := strings.LastIndex(stem, "-"); i > 0 {
			family, weight = stem[:i], stem[i+1:]
		}
		info, seen := byFamily[family]
		if !seen {
			info = &FontInfo{Family: family}
			byFamily[family] = info
			order = append(order, family)
		}
		info.Weights = appendUnique(info.Weights, weight)
		info.Formats = appendUnique(info.Formats, strings.TrimPrefix(ext, "."))
	}

	manifest := make([]FontInfo, 0, len(order))
	for _, family := range order {
		manifest = append(manifest, *byFamily[family])
	}
	return manifest, nil
}

func appendUnique(list []string, v string) []string {
	for _, s := range list {
		if s == v {
			return list
		}
	}
	return append(list, v)
}
