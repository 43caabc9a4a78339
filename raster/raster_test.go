package raster

import (
	"bytes"
	"testing"

	"ptcbp/dither"
	"ptcbp/rle"
	"ptcbp/tapespec"
)

// constSource is a fixed-intensity Source used to exercise the zero-line
// shortcut and the pin placement math without needing a real image.
type constSource struct {
	w, h, v int
}

func (s constSource) Width() int              { return s.w }
func (s constSource) Height() int              { return s.h }
func (s constSource) IntensityAt(_, _ int) int { return s.v }

func TestEmitZeroLineShortcut(t *testing.T) {
	geom, err := tapespec.Resolve("3.5 mm", false, 12)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	e := NewEmitter(geom)
	var buf bytes.Buffer
	if err := e.Emit(&buf, constSource{w: 2, h: geom.UsableHeight, v: 0}); err != nil {
		t.Fatalf("Emit: %v", err)
	}

	// Intensity 0 sets no pins at all: every one of the 4 pin-lines per
	// column must collapse to the single byte 'Z'.
	want := bytes.Repeat([]byte{'Z'}, 2*4)
	if !bytes.Equal(buf.Bytes(), want) {
		t.Fatalf("got %x, want %x", buf.Bytes(), want)
	}
}

func TestEmitLiteralLineFraming(t *testing.T) {
	geom, err := tapespec.Resolve("3.5 mm", false, 12)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	e := NewEmitter(geom)
	var buf bytes.Buffer
	if err := e.Emit(&buf, constSource{w: 1, h: geom.UsableHeight, v: 15}); err != nil {
		t.Fatalf("Emit: %v", err)
	}

	// Full intensity (v=15) sets 15 of the 16 pins of each pixel's 4x4
	// block: order[15] = 14 (row 3, col 2) is never set, and on the
	// transposed odd rows that becomes row 2, col 3. Pins in the margins
	// stay clear. For 3.5 mm the image covers pins 264..311 (bytes
	// 33..38): lines 0 and 1 are ff there, line 2 is fe (pin j=3 of each
	// odd row clear) and line 3 is df (pin j=2 of each even row clear).
	// None of the lines is a zero line, and uncompressed framing is 'G' +
	// len=70 + high=0 + 70 literal bytes, repeated 4 times.
	frame := buf.Bytes()
	const frameLen = 3 + rle.LineSize
	if len(frame) != 4*frameLen {
		t.Fatalf("got %d bytes, want %d", len(frame), 4*frameLen)
	}
	wantInside := [4]byte{0xFF, 0xFF, 0xFE, 0xDF}
	first := int(geom.LeftMarginPins) / 8
	end := (int(geom.LeftMarginPins) + 4*geom.UsableHeight) / 8
	for i := 0; i < 4; i++ {
		start := i * frameLen
		if frame[start] != 'G' || frame[start+1] != rle.LineSize || frame[start+2] != 0 {
			t.Fatalf("line %d header = %x, want G 46 00", i, frame[start:start+3])
		}
		payload := frame[start+3 : start+frameLen]
		for k, b := range payload {
			want := byte(0)
			if k >= first && k < end {
				want = wantInside[i]
			}
			if b != want {
				t.Fatalf("line %d payload byte %d = %x, want %x", i, k, b, want)
			}
		}
	}
}

func TestEmitCompressedFraming(t *testing.T) {
	geom, err := tapespec.Resolve("3.5 mm", false, 12)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	e := NewEmitter(geom)
	e.Compress = true
	var buf bytes.Buffer
	if err := e.Emit(&buf, constSource{w: 1, h: geom.UsableHeight, v: 15}); err != nil {
		t.Fatalf("Emit: %v", err)
	}

	frame := buf.Bytes()
	// The 4 lines hold the pattern TestEmitLiteralLineFraming checks:
	// zero margins around bytes 33..38, which are ff/ff/fe/df for lines
	// 0..3. Each line packbits-encodes to a zero run, a run of its inside
	// byte, and a trailing zero run.
	wantInside := [4]byte{0xFF, 0xFF, 0xFE, 0xDF}
	first := int(geom.LeftMarginPins) / 8
	end := (int(geom.LeftMarginPins) + 4*geom.UsableHeight) / 8
	var packets [4][]byte
	total := 0
	for i := range packets {
		line := make([]byte, rle.LineSize)
		for k := first; k < end; k++ {
			line[k] = wantInside[i]
		}
		packets[i] = rle.Encode(line)
		total += 3 + len(packets[i])
	}
	if len(frame) != total {
		t.Fatalf("got %d bytes, want %d", len(frame), total)
	}
	start := 0
	for i := 0; i < 4; i++ {
		packet := packets[i]
		n := len(packet)
		frameLen := 3 + n
		if frame[start] != 'G' || int(frame[start+1])|int(frame[start+2])<<8 != n {
			t.Fatalf("line %d header = %x, want G with length %d", i, frame[start:start+3], n)
		}
		if !bytes.Equal(frame[start+3:start+frameLen], packet) {
			t.Fatalf("line %d payload = %x, want %x", i, frame[start+3:start+frameLen], packet)
		}
		start += frameLen
	}
}

func TestEmitHeightMismatch(t *testing.T) {
	geom, err := tapespec.Resolve("3.5 mm", false, 12)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	e := NewEmitter(geom)
	if err := e.Emit(&bytes.Buffer{}, constSource{w: 1, h: geom.UsableHeight + 1, v: 0}); err == nil {
		t.Fatal("expected error for mismatched source height")
	}
}

func TestEmitPinPlacementMatchesMask(t *testing.T) {
	geom, err := tapespec.Resolve("3.5 mm", false, 12)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	e := NewEmitter(geom)
	var buf bytes.Buffer
	// intensity 1 sets exactly one pin per source row, per the dither
	// dispersion order's first entry (order[0] = 6 -> row 1, col 2).
	if err := e.Emit(&buf, constSource{w: 1, h: geom.UsableHeight, v: 1}); err != nil {
		t.Fatalf("Emit: %v", err)
	}

	// The dither orientation alternates from pixel to pixel, so even rows
	// use Mask(1, false) (line 1, j=2) and odd rows the transposed
	// Mask(1, true) (line 2, j=1): with v=1, exactly two of the 4 lines
	// per column carry set bits, UsableHeight/2 each (one per row).
	lines := splitLines(t, buf.Bytes())
	if len(lines) != 4 {
		t.Fatalf("got %d lines, want 4", len(lines))
	}
	nonZero := 0
	for _, l := range lines {
		if popcountBytes(l) > 0 {
			nonZero++
			if popcountBytes(l) != geom.UsableHeight/2 {
				t.Fatalf("nonzero line has %d bits set, want %d", popcountBytes(l), geom.UsableHeight/2)
			}
		}
	}
	if nonZero != 2 {
		t.Fatalf("got %d nonzero lines, want 2", nonZero)
	}
}

// splitLines decodes the 4 framed lines Emit wrote for a single column
// back into their raw 70-byte form, for assertions independent of the
// wire framing details.
func splitLines(t *testing.T, raw []byte) [][]byte {
	t.Helper()
	var out [][]byte
	i := 0
	for len(out) < 4 {
		if i >= len(raw) {
			t.Fatalf("ran out of bytes decoding frames")
		}
		switch raw[i] {
		case 'Z':
			out = append(out, make([]byte, rle.LineSize))
			i++
		case 'G':
			n := int(raw[i+1]) | int(raw[i+2])<<8
			out = append(out, raw[i+3:i+3+rle.LineSize])
			i += 3 + n
		default:
			t.Fatalf("unexpected frame tag %x at offset %d", raw[i], i)
		}
	}
	return out
}

func popcountBytes(b []byte) int {
	n := 0
	for _, v := range b {
		for v != 0 {
			n += int(v & 1)
			v >>= 1
		}
	}
	return n
}

func TestIntensityOneUsesFirstDispersionBit(t *testing.T) {
	// Sanity check the assumption TestEmitPinPlacementMatchesMask relies
	// on: Mask(1, false) sets exactly one bit, the first in the
	// dispersion order (order[0] = 6).
	m := dither.Mask(1, false)
	if popcountU16(m) != 1 {
		t.Fatalf("Mask(1,false) popcount = %d, want 1", popcountU16(m))
	}
	if m != 1<<6 {
		t.Fatalf("Mask(1,false) = %#04x, want %#04x", m, 1<<6)
	}
}

func popcountU16(v uint16) int {
	n := 0
	for v != 0 {
		n += int(v & 1)
		v >>= 1
	}
	return n
}
