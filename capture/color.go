package capture

import (
	"image"
	"image/color"
)

// hasGoodBlackLevel rejects frames that are almost entirely dark, which
// is what most sensors deliver while auto exposure settles.
func hasGoodBlackLevel(img image.Image) bool {
	b := img.Bounds()
	if b.Empty() {
		return false
	}

	// every 4th pixel in both directions is plenty
	dark, total := 0, 0
	for y := b.Min.Y; y < b.Max.Y; y += 4 {
		for x := b.Min.X; x < b.Max.X; x += 4 {
			if color.GrayModel.Convert(img.At(x, y)).(color.Gray).Y < 24 {
				dark++
			}
			total++
		}
	}
	darkness := float64(dark) / float64(total)
	return darkness < 0.9
}
