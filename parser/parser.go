// Package parser implements the inverse of ptcbp's CommandWriter and
// raster.Emitter: it walks a captured command stream byte by byte,
// classifies each frame, and renders it in human-readable form.
//
// The dispatch table is a direct port of the original
// Brother-P-touch-connector's parse_request.cpp — buf[i] switched on
// 'M'/'G'/'Z'/0x1a/ESC, with ESC's second byte switched again on
// 'S'/'a'/'z'/'M'/'K'/'d'/'A'/'U'/'k'. Where the original calls assert()
// on a malformed stream (a hard abort, since it is debug tooling over a
// char buffer), this port reports a *ptcbp.DecodeError and keeps going,
// per spec.md §4.7's "diagnostic tool, not a gate" directive.
package parser

import (
	"fmt"

	"ptcbp"
	"ptcbp/rle"
)

// Frame is one decoded element of the command stream.
type Frame interface {
	fmt.Stringer
	// Offset is the byte offset this frame started at.
	Offset() int
}

type base struct{ offset int }

func (b base) Offset() int { return b.offset }

// InitializeFrame is the 200-zero-bytes + ESC '@' initialize sequence.
type InitializeFrame struct{ base }

func (f InitializeFrame) String() string { return "initialize" }

// StatusRequestFrame is ESC 'i' 'S'.
type StatusRequestFrame struct{ base }

func (f StatusRequestFrame) String() string { return "status request" }

// DynamicModeFrame is ESC 'i' 'a' <mode>.
type DynamicModeFrame struct {
	base
	Mode byte
}

func (f DynamicModeFrame) String() string {
	return fmt.Sprintf("switch dynamic command mode: %d", f.Mode)
}

// PrintInfoFrame is ESC 'i' 'z' <10 bytes>, decoded field by field.
type PrintInfoFrame struct {
	base
	UsedFlags    byte
	MediaType    byte
	MediaWidth   byte
	MediaLength  byte
	RasterNumber uint32
	PageIndex    byte
}

func (f PrintInfoFrame) String() string {
	mt := ptcbp.Status{MediaTypeByte: f.MediaType}.MediaTypeString()
	mw := ptcbp.Status{MediaWidthByte: f.MediaWidth}.MediaWidthString()
	return fmt.Sprintf(
		"print information: usedFlags=%#02x mediaType=%q mediaWidth=%q mediaLength=%d rasterNumber=%d pageIndex=%d",
		f.UsedFlags, mt, mw, f.MediaLength, f.RasterNumber, f.PageIndex,
	)
}

// VariousModeFrame is ESC 'i' 'M' <flags>.
type VariousModeFrame struct {
	base
	Flags byte
}

func (f VariousModeFrame) String() string {
	return fmt.Sprintf("various mode settings: autoCut=%v mirror=%v", f.Flags&0x40 != 0, f.Flags&0x80 != 0)
}

// AdvancedModeFrame is ESC 'i' 'K' <flags>.
type AdvancedModeFrame struct {
	base
	Flags byte
}

func (f AdvancedModeFrame) String() string {
	return fmt.Sprintf(
		"advanced mode settings: draft=%v halfCut=%v noChain=%v specialTape=%v highRes=%v noBufferClear=%v",
		f.Flags&(1<<0) != 0, f.Flags&(1<<2) != 0, f.Flags&(1<<3) != 0,
		f.Flags&(1<<4) != 0, f.Flags&(1<<6) != 0, f.Flags&(1<<7) != 0,
	)
}

// MarginFrame is ESC 'i' 'd' <low> <high>.
type MarginFrame struct {
	base
	Amount uint16
}

func (f MarginFrame) String() string {
	return fmt.Sprintf("specify margin amount: %d (dots)", f.Amount)
}

// PageNumberFrame is ESC 'i' 'A' <n>.
type PageNumberFrame struct {
	base
	N byte
}

func (f PageNumberFrame) String() string {
	return fmt.Sprintf("page number in cut-each-labels: %d", f.N)
}

// OpaqueFrame is an ESC 'i' command this module does not further decode
// (spec.md §4.7's 'U' and 'k' discriminators, whose payloads the
// original's own parser also prints only as raw bytes).
type OpaqueFrame struct {
	base
	Discriminator byte
	Data          []byte
}

func (f OpaqueFrame) String() string {
	return fmt.Sprintf("opaque '%c': % x", f.Discriminator, f.Data)
}

// CompressionModeFrame is 'M' <mode>.
type CompressionModeFrame struct {
	base
	TIFF bool
}

func (f CompressionModeFrame) String() string {
	if f.TIFF {
		return "select compression mode: tiff"
	}
	return "select compression mode: none"
}

// RasterLineFrame is one decoded 70-byte pin-line, whether it arrived as
// 'Z', a literal 'G' frame, or a compressed 'G' frame.
type RasterLineFrame struct {
	base
	Zero bool
	Data [rle.LineSize]byte
}

func (f RasterLineFrame) String() string {
	if f.Zero {
		return "raster line: zero"
	}
	return fmt.Sprintf("raster line: % x", f.Data[:])
}

// PageTerminatorFrame is 0x0C (more pages follow) or 0x1A (last page).
type PageTerminatorFrame struct {
	base
	Last bool
}

func (f PageTerminatorFrame) String() string {
	if f.Last {
		return "last page marker"
	}
	return "page terminator (more pages follow)"
}

// Parse walks data and returns every frame it could classify plus every
// decode error encountered along the way, stopping after the last-page
// marker (0x1A). It never stops at the first error: parsing continues
// after whatever bytes the failed frame had already consumed (at least
// its opcode), since this is a diagnostic tool, not a protocol gate.
func Parse(data []byte) ([]Frame, []error) {
	p := &parserState{data: data, compressed: false}
	for p.i < len(p.data) {
		f, err := p.next()
		if err != nil {
			p.errs = append(p.errs, err)
			continue
		}
		if f != nil {
			p.frames = append(p.frames, f)
		}
		if _, ok := f.(PageTerminatorFrame); ok && f.(PageTerminatorFrame).Last {
			break
		}
	}
	return p.frames, p.errs
}

type parserState struct {
	data       []byte
	i          int
	compressed bool
	frames     []Frame
	errs       []error
}

func (p *parserState) need(n int) error {
	if p.i+n > len(p.data) {
		return &ptcbp.DecodeError{Offset: p.i, Reason: fmt.Sprintf("need %d more bytes, have %d", n, len(p.data)-p.i)}
	}
	return nil
}

// next decodes exactly one frame starting at p.i, advancing p.i past it.
// On error p.i is advanced by at least one byte so the loop makes
// progress.
func (p *parserState) next() (Frame, error) {
	start := p.i
	tag := p.data[p.i]
	p.i++

	switch tag {
	case 0x00:
		// CommandWriter.Initialize pads with 200 zero bytes before ESC
		// '@', to flush whatever the device's receive buffer already
		// holds. The original parser only ever skips these by having
		// its caller pass an explicit "this stream opens with
		// Initialize" flag; here the padding carries no information of
		// its own, so each zero byte is silently consumed rather than
		// reported as an unknown opcode.
		return nil, nil

	case 'M':
		if err := p.need(1); err != nil {
			return nil, err
		}
		mode := p.data[p.i]
		p.i++
		p.compressed = mode == 0x02
		return CompressionModeFrame{base{start}, p.compressed}, nil

	case 'G':
		if err := p.need(2); err != nil {
			return nil, err
		}
		n := int(p.data[p.i]) | int(p.data[p.i+1])<<8
		p.i += 2
		if err := p.need(n); err != nil {
			return nil, err
		}
		raw := p.data[p.i : p.i+n]
		p.i += n

		var line [rle.LineSize]byte
		if p.compressed {
			decoded, err := rle.Decode(raw)
			if err != nil {
				return nil, &ptcbp.DecodeError{Offset: start, Reason: err.Error()}
			}
			if len(decoded) != rle.LineSize {
				return nil, &ptcbp.DecodeError{Offset: start, Reason: fmt.Sprintf("decoded line is %d bytes, want %d", len(decoded), rle.LineSize)}
			}
			copy(line[:], decoded)
		} else {
			if len(raw) != rle.LineSize {
				return nil, &ptcbp.DecodeError{Offset: start, Reason: fmt.Sprintf("literal line is %d bytes, want %d", len(raw), rle.LineSize)}
			}
			copy(line[:], raw)
		}
		return RasterLineFrame{base{start}, false, line}, nil

	case 'Z':
		return RasterLineFrame{base: base{start}, Zero: true}, nil

	case 0x0C:
		return PageTerminatorFrame{base{start}, false}, nil

	case 0x1A:
		return PageTerminatorFrame{base{start}, true}, nil

	case 0x1B:
		return p.nextEscape(start)

	default:
		return nil, &ptcbp.DecodeError{Offset: start, Reason: fmt.Sprintf("unknown opcode %#02x", tag)}
	}
}

func (p *parserState) nextEscape(start int) (Frame, error) {
	if err := p.need(1); err != nil {
		return nil, err
	}
	disc := p.data[p.i]
	p.i++

	if disc == '@' {
		return InitializeFrame{base{start}}, nil
	}
	if disc != 'i' {
		return nil, &ptcbp.DecodeError{Offset: start, Reason: fmt.Sprintf("unknown ESC discriminator %#02x", disc)}
	}

	if err := p.need(1); err != nil {
		return nil, err
	}
	sub := p.data[p.i]
	p.i++

	switch sub {
	case 'S':
		return StatusRequestFrame{base{start}}, nil

	case 'a':
		if err := p.need(1); err != nil {
			return nil, err
		}
		mode := p.data[p.i]
		p.i++
		return DynamicModeFrame{base{start}, mode}, nil

	case 'z':
		if err := p.need(10); err != nil {
			return nil, err
		}
		b := p.data[p.i : p.i+10]
		p.i += 10
		raster := uint32(b[4]) | uint32(b[5])<<8 | uint32(b[6])<<16 | uint32(b[7])<<24
		return PrintInfoFrame{
			base:         base{start},
			UsedFlags:    b[0],
			MediaType:    b[1],
			MediaWidth:   b[2],
			MediaLength:  b[3],
			RasterNumber: raster,
			PageIndex:    b[8],
		}, nil

	case 'M':
		if err := p.need(1); err != nil {
			return nil, err
		}
		flags := p.data[p.i]
		p.i++
		return VariousModeFrame{base{start}, flags}, nil

	case 'K':
		if err := p.need(1); err != nil {
			return nil, err
		}
		flags := p.data[p.i]
		p.i++
		return AdvancedModeFrame{base{start}, flags}, nil

	case 'd':
		if err := p.need(2); err != nil {
			return nil, err
		}
		amount := uint16(p.data[p.i]) | uint16(p.data[p.i+1])<<8
		p.i += 2
		return MarginFrame{base{start}, amount}, nil

	case 'A':
		if err := p.need(1); err != nil {
			return nil, err
		}
		n := p.data[p.i]
		p.i++
		return PageNumberFrame{base{start}, n}, nil

	case 'U':
		if err := p.need(15); err != nil {
			return nil, err
		}
		data := append([]byte(nil), p.data[p.i:p.i+15]...)
		p.i += 15
		return OpaqueFrame{base{start}, 'U', data}, nil

	case 'k':
		if err := p.need(3); err != nil {
			return nil, err
		}
		data := append([]byte(nil), p.data[p.i:p.i+3]...)
		p.i += 3
		return OpaqueFrame{base{start}, 'k', data}, nil

	default:
		return nil, &ptcbp.DecodeError{Offset: start, Reason: fmt.Sprintf("unknown ESC 'i' discriminator %#02x", sub)}
	}
}
