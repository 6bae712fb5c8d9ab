package display

import (
	"image"
	"strings"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
)

// windowIconSVG is a minimal glyph-in-a-rounded-square mark, rasterized at
// startup into the window icon rather than shipped as a binary asset.
const windowIconSVG = `
<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 64 64">
  <rect x="2" y="2" width="60" height="60" rx="12" fill="#10131a"/>
  <rect x="10" y="14" width="44" height="36" rx="4" fill="#0d1117" stroke="#3b82f6" stroke-width="2"/>
  <path d="M16 22 L24 30 L16 38" fill="none" stroke="#a2e0c7" stroke-width="3" stroke-linecap="round" stroke-linejoin="round"/>
  <line x1="28" y1="38" x2="44" y2="38" stroke="#e8edf7" stroke-width="3" stroke-linecap="round"/>
</svg>`

// rasterizeIcon renders windowIconSVG at size x size into an RGBA image
// suitable for glfw.Window.SetIcon.
func rasterizeIcon(size int) (image.Image, error) {
	icon, err := oksvg.ReadIconStream(strings.NewReader(windowIconSVG))
	if err != nil {
		return nil, err
	}
	icon.SetTarget(0, 0, float64(size), float64(size))

	img := image.NewRGBA(image.Rect(0, 0, size, size))
	scanner := rasterx.NewScannerGV(size, size, img, img.Bounds())
	raster := rasterx.NewDasher(size, size, scanner)
	icon.Draw(raster, 1.0)
	return img, nil
}

func windowIcons() []image.Image {
	var icons []image.Image
	for _, size := range []int{16, 32, 48, 64} {
		img, err := rasterizeIcon(size)
		if err != nil {
			continue
		}
		icons = append(icons, img)
	}
	return icons
}
