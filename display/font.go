package display

import (
	"fmt"
	"image"
	"image/draw"
	"os"

	"github.com/go-gl/gl/v4.1-core/gl"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/javanhut/termcore/config"
)

// commonFontPaths are searched, in order, for a usable monospace TTF/OTF
// before falling back to the bundled basicfont bitmap face.
var commonFontPaths = []string{
	"/usr/share/fonts/truetype/dejavu/DejaVuSansMono.ttf",
	"/usr/share/fonts/TTF/DejaVuSansMono.ttf",
	"/usr/share/fonts/truetype/liberation/LiberationMono-Regular.ttf",
	"/usr/share/fonts/truetype/ubuntu/UbuntuMono-R.ttf",
	"/usr/share/fonts/noto/NotoSansMono-Regular.ttf",
	"/System/Library/Fonts/Menlo.ttc",
}

const atlasSize = 512

type glyph struct {
	X, Y          float32
	Width, Height float32
	PixelWidth    int
	PixelHeight   int
}

// fontAtlas is the rasterized glyph set for one font.Face, uploaded as a
// single-channel alpha texture.
type fontAtlas struct {
	glyphs     map[rune]glyph
	texture    uint32
	cellWidth  float32
	cellHeight float32
}

// loadFace resolves the font.Face to rasterize: the configured path if set
// and parseable, else the first reachable path in commonFontPaths, else
// the basicfont bitmap fallback. The returned closer releases OS resources
// for faces opened from a TrueType/OpenType file; it is a no-op otherwise.
func loadFace(cfg *config.Config, size float64) (font.Face, func(), error) {
	candidates := commonFontPaths
	if cfg.Font.Path != "" {
		candidates = append([]string{cfg.Font.Path}, candidates...)
	}

	for _, path := range candidates {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		parsed, err := opentype.Parse(data)
		if err != nil {
			continue
		}
		face, err := opentype.NewFace(parsed, &opentype.FaceOptions{
			Size:    size,
			DPI:     96,
			Hinting: font.HintingFull,
		})
		if err != nil {
			continue
		}
		return face, func() { face.Close() }, nil
	}

	return basicfont.Face7x13, func() {}, nil
}

// buildAtlas rasterizes the printable ASCII and Latin-1 ranges of face into
// a square alpha texture, returning per-rune UV coordinates and the cell
// size the grid should use.
func buildAtlas(face font.Face) (*fontAtlas, error) {
	metrics := face.Metrics()
	cellHeight := float32((metrics.Ascent + metrics.Descent).Ceil())
	advance, _ := face.GlyphAdvance('M')
	cellWidth := float32(advance.Ceil())
	if cellWidth == 0 || cellHeight == 0 {
		return nil, fmt.Errorf("display: font face reports zero cell size")
	}

	img := image.NewRGBA(image.Rect(0, 0, atlasSize, atlasSize))
	draw.Draw(img, img.Bounds(), image.Transparent, image.Point{}, draw.Src)

	drawer := &font.Drawer{Dst: img, Src: image.White, Face: face}

	ranges := []struct{ start, end rune }{
		{32, 126},
		{160, 255},
		{0x2500, 0x257F}, // box drawing, used by TUIs over the pty
	}

	glyphs := make(map[rune]glyph)
	x, y := 0, metrics.Ascent.Ceil()
	charWidth, charHeight := int(cellWidth), int(cellHeight)

	for _, r := range ranges {
		for c := r.start; c <= r.end; c++ {
			if x+charWidth > atlasSize {
				x = 0
				y += charHeight
			}
			if y+charHeight > atlasSize {
				break
			}
			if _, ok := face.GlyphAdvance(c); !ok {
				continue
			}
			drawer.Dot = fixed.P(x, y)
			drawer.DrawString(string(c))
			glyphs[c] = glyph{
				X:           float32(x) / atlasSize,
				Y:           float32(y-metrics.Ascent.Ceil()) / atlasSize,
				Width:       float32(charWidth) / atlasSize,
				Height:      float32(charHeight) / atlasSize,
				PixelWidth:  charWidth,
				PixelHeight: charHeight,
			}
			x += charWidth
		}
	}

	alpha := make([]byte, atlasSize*atlasSize)
	for i := 0; i < atlasSize*atlasSize; i++ {
		alpha[i] = img.Pix[i*4+3]
	}

	var texture uint32
	gl.GenTextures(1, &texture)
	gl.BindTexture(gl.TEXTURE_2D, texture)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RED, atlasSize, atlasSize, 0, gl.RED, gl.UNSIGNED_BYTE, gl.Ptr(alpha))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.BindTexture(gl.TEXTURE_2D, 0)

	return &fontAtlas{glyphs: glyphs, texture: texture, cellWidth: cellWidth, cellHeight: cellHeight}, nil
}
