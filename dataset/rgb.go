package dataset

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"
	"sort"

	"github.com/nfnt/resize"
)

// Percentiles used to stretch a band for display.
const (
	LowerPercentile = 2
	UpperPercentile = 98
)

// Sentinel-2 blue, green and red (B2, B3, B4) in an all_bands.tif.
const (
	blueBand  = 1
	greenBand = 2
	redBand   = 3
)

// NormalizeBand clips values to their lower and upper percentiles and scales the
// result to [0, 1].
func NormalizeBand(values []float64, lower, upper float64) []float64 {
	out := make([]float64, len(values))
	if len(values) == 0 {
		return out
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	low := quantile(sorted, lower/100)
	high := quantile(sorted, upper/100)

	for i, v := range values {
		v = math.Min(math.Max(v, low), high)
		out[i] = (v - low) / (high - low + 1e-5)
	}
	return out
}

// quantile interpolates linearly between the closest ranks of sorted.
func quantile(sorted []float64, q float64) float64 {
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	frac := pos - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}

// RGB renders the true-colour composite of a Sentinel-2 image.
func RGB(r *Raster) (*image.RGBA, error) {
	if len(r.Bands) <= redBand {
		return nil, fmt.Errorf("rgb needs at least %d bands, raster has %d", redBand+1, len(r.Bands))
	}
	red := NormalizeBand(r.Bands[redBand], LowerPercentile, UpperPercentile)
	green := NormalizeBand(r.Bands[greenBand], LowerPercentile, UpperPercentile)
	blue := NormalizeBand(r.Bands[blueBand], LowerPercentile, UpperPercentile)

	img := image.NewRGBA(image.Rect(0, 0, r.Width, r.Height))
	for y := 0; y < r.Height; y++ {
		for x := 0; x < r.Width; x++ {
			i := y*r.Width + x
			img.SetRGBA(x, y, color.RGBA{R: toByte(red[i]), G: toByte(green[i]), B: toByte(blue[i]), A: 255})
		}
	}
	return img, nil
}

// MaskImage renders the first band of a mask, forest pixels white.
func MaskImage(r *Raster) (*image.Gray, error) {
	if len(r.Bands) == 0 {
		return nil, fmt.Errorf("mask raster has no bands")
	}
	img := image.NewGray(image.Rect(0, 0, r.Width, r.Height))
	for i, v := range r.Bands[0] {
		if v > 0 {
			img.Pix[i] = 255
		}
	}
	return img, nil
}

// Thumbnail scales img down to fit in a size x size square, keeping its aspect ratio.
func Thumbnail(img image.Image, size uint) image.Image {
	return resize.Thumbnail(size, size, img, resize.Lanczos3)
}

// WritePNG encodes img to w.
func WritePNG(w io.Writer, img image.Image) error {
	return png.Encode(w, img)
}

func toByte(v float64) uint8 {
	return uint8(math.Round(math.Min(math.Max(v, 0), 1) * 255))
}
