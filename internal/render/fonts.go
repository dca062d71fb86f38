package render

import (
	"fmt"
	"sync"

	"github.com/gogpu/gg/text"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
)

// fontSet holds the label typefaces. Faces are cached per size since label
// fitting asks for many sizes of the same font.
type fontSet struct {
	regular *fontFamily
	bold    *fontFamily
}

type fontFamily struct {
	source *text.FontSource

	mu    sync.Mutex
	faces map[int]text.Face
}

func (f *fontFamily) face(size int) text.Face {
	f.mu.Lock()
	defer f.mu.Unlock()
	if face, ok := f.faces[size]; ok {
		return face
	}
	face := f.source.Face(float64(size))
	f.faces[size] = face
	return face
}

var (
	fontsOnce sync.Once
	fonts     *fontSet
	fontsErr  error
)

// loadFonts parses the embedded Go fonts once per process.
func loadFonts() (*fontSet, error) {
	fontsOnce.Do(func() {
		regular, err := text.NewFontSource(goregular.TTF)
		if err != nil {
			fontsErr = fmt.Errorf("load regular font: %w", err)
			return
		}
		bold, err := text.NewFontSource(gobold.TTF)
		if err != nil {
			fontsErr = fmt.Errorf("load bold font: %w", err)
			return
		}
		fonts = &fontSet{
			regular: &fontFamily{source: regular, faces: make(map[int]text.Face)},
			bold:    &fontFamily{source: bold, faces: make(map[int]text.Face)},
		}
	})
	return fonts, fontsErr
}
