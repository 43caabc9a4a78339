// Package rescale fits a source image's height to a tape's usable pin
// count: Lanczos-resample on the way down, repeated 2x-nearest-neighbor
// enlargement on the way up.
//
// The Lanczos kernel and window-sum loop are grounded on the original
// Brother-P-touch-connector's scaling.hpp (normalizedSinc/lanczos/
// lanczosAt/scaleLanczos). That source samples every contribution from
// the single truncated-integer source pixel instead of the window pixel
// actually being visited — a bug that collapses the kernel to a box
// filter. This port instead samples each window pixel as the kernel math
// requires, matching spec.md §4.3's contract rather than the bug.
package rescale

import (
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
)

// DefaultA is the default Lanczos lobe count.
const DefaultA = 3

func sinc(x float64) float64 {
	if x == 0 {
		return 1
	}
	return math.Sin(x*math.Pi) / (x * math.Pi)
}

// lanczos is the normalized Lanczos-a kernel: 1 at 0, sinc(x)/sinc(x/a)
// inside the window, 0 outside.
func lanczos(x float64, a int) float64 {
	if x == 0 {
		return 1
	}
	af := float64(a)
	if x > -af && x < af {
		return sinc(x) / sinc(x/af)
	}
	return 0
}

// Lanczos resamples src to exactly width x height pixels using an
// a-lobe Lanczos kernel, accumulating per channel in floating point,
// dividing by the summed kernel weight, and saturating to 8 bits on
// write-back.
func Lanczos(src image.Image, width, height, a int) *image.RGBA {
	if a <= 0 {
		a = DefaultA
	}
	bounds := src.Bounds()
	srcW, srcH := bounds.Dx(), bounds.Dy()
	out := image.NewRGBA(image.Rect(0, 0, width, height))

	scaleX := float64(width) / float64(srcW)
	scaleY := float64(height) / float64(srcH)

	for y := 0; y < height; y++ {
		sy := float64(y) / scaleY
		for x := 0; x < width; x++ {
			sx := float64(x) / scaleX
			out.SetRGBA(x, y, lanczosAt(src, bounds, sx, sy, a))
		}
	}
	return out
}

// lanczosAt sums the weighted contribution of every source pixel in the
// window [sx-a+1, sx+a] x [sy-a+1, sy+a], clipped to bounds, normalized by
// the total weight so a uniform source stays uniform.
func lanczosAt(src image.Image, b image.Rectangle, sx, sy float64, a int) color.RGBA {
	cx := int(math.Floor(sx))
	cy := int(math.Floor(sy))

	yMin, yMax := maxInt(cy-a+1, b.Min.Y), minInt(cy+a, b.Max.Y-1)
	xMin, xMax := maxInt(cx-a+1, b.Min.X), minInt(cx+a, b.Max.X-1)

	var rAcc, gAcc, bAcc, wSum float64
	for yy := yMin; yy <= yMax; yy++ {
		wy := lanczos(sy-float64(yy), a)
		if wy == 0 {
			continue
		}
		for xx := xMin; xx <= xMax; xx++ {
			wx := lanczos(sx-float64(xx), a)
			if wx == 0 {
				continue
			}
			w := wx * wy
			wSum += w
			r, g, bl, _ := src.At(xx, yy).RGBA()
			rAcc += float64(r>>8) * w
			gAcc += float64(g>>8) * w
			bAcc += float64(bl>>8) * w
		}
	}
	if wSum != 0 {
		rAcc /= wSum
		gAcc /= wSum
		bAcc /= wSum
	}

	return color.RGBA{R: clamp8(rAcc), G: clamp8(gAcc), B: clamp8(bAcc), A: 255}
}

func clamp8(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v + 0.5)
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// ScaleUp repeatedly doubles src with nearest-neighbor interpolation
// while the result would still fit within usableHeight, per spec.md
// §4.3's "--scale-up" path. It never invokes the Lanczos kernel: the
// original reserves that for shrinking only.
func ScaleUp(src image.Image, usableHeight int) image.Image {
	cur := src
	for cur.Bounds().Dy()*2 <= usableHeight {
		b := cur.Bounds()
		cur = imaging.Resize(cur, b.Dx()*2, b.Dy()*2, imaging.NearestNeighbor)
	}
	return cur
}
