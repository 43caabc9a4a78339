// Package rle implements the TIFF-style packbits run-length codec used to
// compress each 70-byte raster pin-line. It is a direct, generalized port
// of the original Brother-P-touch-connector's writeEncodedLine
// (make_request.cpp/wr.cpp) — the source material spec.md §9 warns has
// several near-duplicate, subtly different revisions; this port follows
// the single canonical algorithm those revisions converge on once their
// buffer/counter bookkeeping is untangled, matching spec.md §4.4's prose
// rules byte for byte.
package rle

import "fmt"

// LineSize is the fixed width of one raster pin-line in bytes (560 pins / 8).
const LineSize = 70

// Encode packbits-encodes line into a sequence of signed-control-byte
// packets, ready to follow the 'G' length prefix on the wire.
func Encode(line []byte) []byte {
	if len(line) == 0 {
		return nil
	}

	out := make([]byte, 0, len(line)+len(line)/32+2)

	counter := 1
	var last byte
	buf := make([]byte, len(line))
	bufSize := 0

	for y, b := range line {
		if y != 0 && b == last {
			if bufSize > 1 {
				out = append(out, byte(bufSize-2))
				out = append(out, buf[:bufSize-1]...)
				buf[0] = b
				bufSize = 1
			}
			counter++
		} else {
			if counter > 1 {
				out = append(out, byte(int8(-(counter - 1))))
				out = append(out, buf[0])
				buf[0] = b
				counter = 1
				bufSize = 0
			}
			buf[bufSize] = b
			bufSize++
			last = b
		}
	}

	if bufSize > 1 {
		out = append(out, byte(bufSize-1))
		out = append(out, buf[:bufSize]...)
	} else {
		out = append(out, byte(int8(-(counter-1))))
		out = append(out, buf[0])
	}

	return out
}

// Decode reverses Encode: a sequence of signed-control-byte packets back
// into the raw byte stream they represent.
func Decode(packets []byte) ([]byte, error) {
	var out []byte
	for i := 0; i < len(packets); {
		c := int8(packets[i])
		i++
		if c >= 0 {
			n := int(c) + 1
			if i+n > len(packets) {
				return nil, fmt.Errorf("rle: truncated literal run at offset %d: need %d bytes, have %d", i, n, len(packets)-i)
			}
			out = append(out, packets[i:i+n]...)
			i += n
		} else {
			if c == -128 {
				return nil, fmt.Errorf("rle: reserved control byte -128 at offset %d", i-1)
			}
			if i >= len(packets) {
				return nil, fmt.Errorf("rle: truncated repeat packet at offset %d", i)
			}
			n := -int(c) + 1
			b := packets[i]
			i++
			for j := 0; j < n; j++ {
				out = append(out, b)
			}
		}
	}
	return out, nil
}
