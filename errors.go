// Package ptcbp implements the PTCBP raster command protocol: framing
// the command stream a PT-P900-family printer expects, and decoding both
// that stream and the device's status replies back out again.
//
// It is the generalized successor of ka2n-ptouchgo's single flat
// ptouchgo package: the command-byte-slice style and Debug-gated logging
// carry over, but PrintInformation/VariousMode/AdvancedMode/etc are now
// written field by field instead of relying on struct layout, per the
// protocol's own design notes.
package ptcbp

import "fmt"

// ConfigurationError reports invalid CLI configuration: missing,
// repeated, or unknown options, unknown tape ids, unknown compression
// tokens. Configuration errors abort the job before any bytes are
// written.
type ConfigurationError struct {
	Option string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("ptcbp: configuration: %s: %s", e.Option, e.Reason)
}

// DecodeError reports a malformed wire-format frame encountered by
// StreamParser or DecodeStatus: an unexpected opcode, a truncated
// stream, or a header constant that doesn't match.
type DecodeError struct {
	Offset int
	Reason string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("ptcbp: decode at offset %d: %s", e.Offset, e.Reason)
}
