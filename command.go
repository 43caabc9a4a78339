package ptcbp

import (
	"fmt"
	"io"
)

// printInfoUsedFlags is the fixed PrintInformation used_flags byte:
// media-width validity plus "recovery always on".
const printInfoUsedFlags = 0x84

// PageIndex tags a copy's position within the overall job, governing
// mid-job cutter behavior on the device.
type PageIndex uint8

const (
	PageStarting PageIndex = 0
	PageOther    PageIndex = 1
	PageLast     PageIndex = 2
)

// Compression selects the raster line encoding CommandWriter announces
// to the device via SelectCompression.
type Compression uint8

const (
	CompressionNone Compression = 0x00
	CompressionTIFF Compression = 0x02
)

// ParseCompression maps a CLI token onto a Compression value.
func ParseCompression(token string) (Compression, error) {
	switch token {
	case "no compression":
		return CompressionNone, nil
	case "tiff":
		return CompressionTIFF, nil
	default:
		return 0, &ConfigurationError{Option: "--compression", Reason: fmt.Sprintf("unknown token %q", token)}
	}
}

// VariousModeFlags carries the CLI-controlled bits of the VariousMode
// command.
type VariousModeFlags struct {
	AutoCut        bool
	MirrorPrinting bool
}

func (f VariousModeFlags) encode() byte {
	var b byte
	if f.AutoCut {
		b |= 0x40
	}
	if f.MirrorPrinting {
		b |= 0x80
	}
	return b
}

// AdvancedModeFlags carries the 8 bit-flags of the AdvancedMode command.
// Bit positions are enumerated explicitly per the protocol's own design
// note against relying on implicit struct packing.
type AdvancedModeFlags struct {
	DraftPrinting              bool // bit 0
	HalfCut                    bool // bit 2
	NoChainPrinting            bool // bit 3
	SpecialTapeNoCutting       bool // bit 4
	HighResolution             bool // bit 6
	NoBufferClearWhilePrinting bool // bit 7
}

func (f AdvancedModeFlags) encode() byte {
	var b byte
	if f.DraftPrinting {
		b |= 1 << 0
	}
	if f.HalfCut {
		b |= 1 << 2
	}
	if f.NoChainPrinting {
		b |= 1 << 3
	}
	if f.SpecialTapeNoCutting {
		b |= 1 << 4
	}
	if f.HighResolution {
		b |= 1 << 6
	}
	if f.NoBufferClearWhilePrinting {
		b |= 1 << 7
	}
	return b
}

// CommandWriter emits the framed command stream §4.6 defines, in order,
// directly to an underlying sink. Every method writes exactly the bytes
// its layout calls for; none relies on struct padding or field order.
type CommandWriter struct {
	w io.Writer
}

// NewCommandWriter wraps w for command emission.
func NewCommandWriter(w io.Writer) *CommandWriter {
	return &CommandWriter{w: w}
}

// Writer exposes the underlying sink, for callers (such as the raster
// emitter) that need to interleave raw payload bytes with commands.
func (c *CommandWriter) Writer() io.Writer {
	return c.w
}

func (c *CommandWriter) write(b ...byte) error {
	_, err := c.w.Write(b)
	return err
}

// Initialize emits 200 zero bytes followed by ESC '@'.
func (c *CommandWriter) Initialize() error {
	if _, err := c.w.Write(make([]byte, 200)); err != nil {
		return err
	}
	return c.write(0x1B, '@')
}

// StatusRequest emits ESC 'i' 'S'.
func (c *CommandWriter) StatusRequest() error {
	return c.write(0x1B, 'i', 'S')
}

// SwitchDynamicCommandMode emits ESC 'i' 'a' 0x01 (raster mode).
func (c *CommandWriter) SwitchDynamicCommandMode() error {
	return c.write(0x1B, 'i', 'a', 0x01)
}

// PrintInformation emits ESC 'i' 'z' followed by the 10-byte
// print-information payload.
func (c *CommandWriter) PrintInformation(mediaType, mediaWidth byte, imageWidth int, page PageIndex) error {
	rasterCount := uint32(4 * imageWidth)
	return c.write(
		0x1B, 'i', 'z',
		printInfoUsedFlags,
		mediaType,
		mediaWidth,
		0x00, // media_length
		byte(rasterCount), byte(rasterCount>>8), byte(rasterCount>>16), byte(rasterCount>>24),
		byte(page),
		0x00,
	)
}

// VariousMode emits ESC 'i' 'M' flags.
func (c *CommandWriter) VariousMode(f VariousModeFlags) error {
	return c.write(0x1B, 'i', 'M', f.encode())
}

// PageNumberInCutEachLabels emits ESC 'i' 'A' n.
func (c *CommandWriter) PageNumberInCutEachLabels(n byte) error {
	return c.write(0x1B, 'i', 'A', n)
}

// AdvancedMode emits ESC 'i' 'K' bits.
func (c *CommandWriter) AdvancedMode(f AdvancedModeFlags) error {
	return c.write(0x1B, 'i', 'K', f.encode())
}

// SpecifyMarginAmount emits ESC 'i' 'd' followed by the 16-bit
// little-endian margin amount.
func (c *CommandWriter) SpecifyMarginAmount(amount uint16) error {
	return c.write(0x1B, 'i', 'd', byte(amount), byte(amount>>8))
}

// SelectCompression emits 'M' followed by the compression byte.
func (c *CommandWriter) SelectCompression(comp Compression) error {
	return c.write('M', byte(comp))
}

// PageTerminator emits 0x1A if last is true (end of job), else 0x0C
// (more pages follow).
func (c *CommandWriter) PageTerminator(last bool) error {
	if last {
		return c.write(0x1A)
	}
	return c.write(0x0C)
}
