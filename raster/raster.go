// Package raster turns a column of source-image intensities into the wire
// format's raster pin-lines: one source column expands to four printer
// pin-lines (§4.5), each routed through the zero-line shortcut and,
// optionally, packbits compression.
//
// It is the generalized successor of ka2n-ptouchgo's LoadRawImage/
// CompressImage pipeline, rebuilt around the dither-mask pin layout the
// original Brother-P-touch-connector's writePng (make_request.cpp) uses
// instead of the teacher's flat 1-bit threshold.
package raster

import (
	"fmt"
	"image"
	"io"

	"ptcbp/dither"
	"ptcbp/rle"
	"ptcbp/tapespec"
)

// TestPatternWidth is the fixed column count for test-pattern emission,
// taken verbatim from the original implementation's TestImageWidth
// (15 * 5 in make_request.cpp).
const TestPatternWidth = 75

// Source provides per-pixel dither intensity for one image, addressed in
// source-pixel coordinates (not wire pins).
type Source interface {
	Width() int
	Height() int
	IntensityAt(x, y int) int
}

// ImageSource adapts a decoded image.Image (already rescaled to the
// tape's usable height) into a Source.
type ImageSource struct {
	Img image.Image
}

func (s ImageSource) Width() int  { return s.Img.Bounds().Dx() }
func (s ImageSource) Height() int { return s.Img.Bounds().Dy() }

func (s ImageSource) IntensityAt(x, y int) int {
	b := s.Img.Bounds()
	r, g, bl, _ := s.Img.At(b.Min.X+x, b.Min.Y+y).RGBA()
	return dither.Intensity(uint8(r>>8), uint8(g>>8), uint8(bl>>8))
}

// TestPatternSource synthesizes the fixed diagnostic pattern in place of
// an image: intensity ramps with column index regardless of row.
type TestPatternSource struct {
	Rows int
}

func (TestPatternSource) Width() int              { return TestPatternWidth }
func (s TestPatternSource) Height() int            { return s.Rows }
func (TestPatternSource) IntensityAt(x, _ int) int { return x/8 + 1 }

// Emitter writes the raster payload for one image against one resolved
// tape geometry. The dither row/column alternation is carried as a field
// (never a package-level global, per spec.md §5 and §9) so two Emitters
// never interfere with each other's parity.
type Emitter struct {
	Geometry tapespec.Geometry
	Compress bool

	parity bool
}

// NewEmitter builds an Emitter for the given geometry. Compression is
// opt-in via the Compress field after construction.
func NewEmitter(geom tapespec.Geometry) *Emitter {
	return &Emitter{Geometry: geom}
}

// Emit writes the full raster payload for src: width source columns, each
// expanding into 4 wire pin-lines.
func (e *Emitter) Emit(w io.Writer, src Source) error {
	height := src.Height()
	if height != e.Geometry.UsableHeight {
		return fmt.Errorf("raster: source height %d does not match usable height %d for tape %q", height, e.Geometry.UsableHeight, e.Geometry.TapeID)
	}

	width := src.Width()
	for x := 0; x < width; x++ {
		var vline [4][rle.LineSize]byte
		var zeroLine [4]bool
		for i := range zeroLine {
			zeroLine[i] = true
		}

		for y := 0; y < height; y++ {
			v := src.IntensityAt(x, y)
			pattern := dither.Mask(v, e.parity)
			e.parity = !e.parity

			for i := 0; i < 4; i++ {
				for j := 0; j < 4; j++ {
					bit := uint(i*4 + j)
					if pattern&(1<<bit) == 0 {
						continue
					}
					pin := e.Geometry.LeftMarginPins + uint(y*4+j)
					vline[i][pin/8] |= 1 << (7 - pin%8)
					zeroLine[i] = false
				}
			}
		}

		for i := 0; i < 4; i++ {
			if err := writeLine(w, vline[i][:], zeroLine[i], e.Compress); err != nil {
				return err
			}
		}
	}

	return nil
}

// writeLine frames and writes a single 70-byte pin-line per §6.2: a
// zero line is the byte 'Z'; otherwise 'G' plus a 2-byte little-endian
// length and either the literal 70 bytes or their packbits encoding.
func writeLine(w io.Writer, line []byte, isZero, compress bool) error {
	if isZero {
		_, err := w.Write([]byte{'Z'})
		return err
	}

	if compress {
		packets := rle.Encode(line)
		n := len(packets)
		if _, err := w.Write([]byte{'G', byte(n), byte(n >> 8)}); err != nil {
			return err
		}
		_, err := w.Write(packets)
		return err
	}

	if _, err := w.Write([]byte{'G', byte(len(line)), 0}); err != nil {
		return err
	}
	_, err := w.Write(line)
	return err
}
