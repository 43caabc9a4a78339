package ptcbp

import "fmt"

// StatusFrameSize is the fixed length of a device status reply.
const StatusFrameSize = 32

// Model identifies the device model reporting status.
type Model uint8

const (
	ModelPTP900   Model = 0x71
	ModelPTP900W  Model = 0x69
	ModelPTP950NW Model = 0x70
	ModelPTP910BT Model = 0x78
)

func (m Model) String() string {
	switch m {
	case ModelPTP900:
		return "PT-P900"
	case ModelPTP900W:
		return "PT-P900W"
	case ModelPTP950NW:
		return "PT-P950NW"
	case ModelPTP910BT:
		return "PT-P910BT"
	default:
		return "unrecognised"
	}
}

// BatteryLevel reports the device's battery state.
type BatteryLevel uint8

const (
	BatteryFull            BatteryLevel = 0x00
	BatteryHalf            BatteryLevel = 0x01
	BatteryLow             BatteryLevel = 0x02
	BatteryNeedToBeCharged BatteryLevel = 0x03
	BatteryUsingACAdapter  BatteryLevel = 0x04
	BatteryUnknown         BatteryLevel = 0xFF
)

func (b BatteryLevel) String() string {
	switch b {
	case BatteryFull:
		return "full"
	case BatteryHalf:
		return "half"
	case BatteryLow:
		return "low"
	case BatteryNeedToBeCharged:
		return "needs to be charged"
	case BatteryUsingACAdapter:
		return "using AC adapter"
	case BatteryUnknown:
		return "unknown"
	default:
		return "unrecognised"
	}
}

// ExtendedError carries the single-byte extended error code.
type ExtendedError uint8

const (
	ExtendedErrorNone                           ExtendedError = 0x00
	ExtendedErrorFleTapeEnd                      ExtendedError = 0x10
	ExtendedErrorHighResolutionOrDraftPrinting   ExtendedError = 0x1D
	ExtendedErrorAdapterPullOrInsert             ExtendedError = 0x1E
	ExtendedErrorIncompatibleMedia               ExtendedError = 0x21
)

func (e ExtendedError) String() string {
	switch e {
	case ExtendedErrorNone:
		return "none"
	case ExtendedErrorFleTapeEnd:
		return "Fle tape end"
	case ExtendedErrorHighResolutionOrDraftPrinting:
		return "high-resolution/draft printing error"
	case ExtendedErrorAdapterPullOrInsert:
		return "adapter pull/insert error"
	case ExtendedErrorIncompatibleMedia:
		return "incompatible media error"
	default:
		return "unrecognised"
	}
}

// ErrorFlags decodes the 16-bit status error bitmap.
type ErrorFlags struct {
	NoMedia                 bool
	EndOfMedia              bool
	CutterJam               bool
	WeakBatteries           bool
	PrinterInUse            bool
	HighVoltageAdapter      bool
	ReplaceMedia            bool
	ExpansionBuffer         bool
	Communication           bool
	CommunicationBufferFull bool
	CoverOpen               bool
	Overheating             bool
	BlackMarkingNotDetected bool
	SystemError             bool
}

func decodeErrorFlags(lo, hi byte) ErrorFlags {
	return ErrorFlags{
		NoMedia:                 lo&(1<<0) != 0,
		EndOfMedia:              lo&(1<<1) != 0,
		CutterJam:               lo&(1<<2) != 0,
		WeakBatteries:           lo&(1<<3) != 0,
		PrinterInUse:            lo&(1<<4) != 0,
		HighVoltageAdapter:      lo&(1<<6) != 0,
		ReplaceMedia:            hi&(1<<0) != 0,
		ExpansionBuffer:         hi&(1<<1) != 0,
		Communication:           hi&(1<<2) != 0,
		CommunicationBufferFull: hi&(1<<3) != 0,
		CoverOpen:               hi&(1<<4) != 0,
		Overheating:             hi&(1<<5) != 0,
		BlackMarkingNotDetected: hi&(1<<6) != 0,
		SystemError:             hi&(1<<7) != 0,
	}
}

// Strings renders every set flag as its human label.
func (e ErrorFlags) Strings() []string {
	var out []string
	add := func(set bool, label string) {
		if set {
			out = append(out, label)
		}
	}
	add(e.NoMedia, "no media")
	add(e.EndOfMedia, "end of media")
	add(e.CutterJam, "cutter jam")
	add(e.WeakBatteries, "weak batteries")
	add(e.PrinterInUse, "printer in use")
	add(e.HighVoltageAdapter, "high voltage adapter")
	add(e.ReplaceMedia, "replace media")
	add(e.ExpansionBuffer, "expansion buffer")
	add(e.Communication, "communication")
	add(e.CommunicationBufferFull, "communication buffer full")
	add(e.CoverOpen, "cover open")
	add(e.Overheating, "overheating")
	add(e.BlackMarkingNotDetected, "black marking not detected")
	add(e.SystemError, "system error")
	return out
}

// Any reports whether at least one error flag is set.
func (e ErrorFlags) Any() bool {
	return len(e.Strings()) > 0
}

// StatusType classifies why the device sent this status frame.
type StatusType uint8

const (
	StatusReplyToRequest    StatusType = 0x00
	StatusPrintingCompleted StatusType = 0x01
	StatusErrorOccurred     StatusType = 0x02
	StatusExitIFMode        StatusType = 0x03
	StatusTurnedOff         StatusType = 0x04
	StatusNotification      StatusType = 0x05
	StatusPhaseChange       StatusType = 0x06
)

func (s StatusType) String() string {
	switch s {
	case StatusReplyToRequest:
		return "reply to status request"
	case StatusPrintingCompleted:
		return "printing completed"
	case StatusErrorOccurred:
		return "error occurred"
	case StatusExitIFMode:
		return "exit IF mode"
	case StatusTurnedOff:
		return "turned off"
	case StatusNotification:
		return "notification"
	case StatusPhaseChange:
		return "phase changed"
	default:
		if uint8(s) < 0x21 {
			return "(not used)"
		}
		return "(reserved)"
	}
}

// NotificationNumber reports the device's last notification, valid when
// StatusType is StatusNotification.
type NotificationNumber uint8

const (
	NotificationNotAvailable    NotificationNumber = 0x00
	NotificationCoverOpen       NotificationNumber = 0x01
	NotificationCoverClosed     NotificationNumber = 0x02
	NotificationCoolingStarted  NotificationNumber = 0x03
	NotificationCoolingFinished NotificationNumber = 0x04
)

func (n NotificationNumber) String() string {
	switch n {
	case NotificationNotAvailable:
		return "not available"
	case NotificationCoverOpen:
		return "cover open"
	case NotificationCoverClosed:
		return "cover closed"
	case NotificationCoolingStarted:
		return "cooling (started)"
	case NotificationCoolingFinished:
		return "cooling (finished)"
	default:
		return "unrecognised"
	}
}

// TapeColour is the device's fixed tape-colour palette code.
type TapeColour uint8

func (c TapeColour) String() string {
	switch c {
	case 0x01:
		return "white"
	case 0x02:
		return "other"
	case 0x03:
		return "clear"
	case 0x04:
		return "red"
	case 0x05:
		return "blue"
	case 0x06:
		return "yellow"
	case 0x07:
		return "green"
	case 0x08:
		return "black"
	case 0x09:
		return "clear white text"
	case 0x20:
		return "matte white"
	case 0x21:
		return "matte clear"
	case 0x22:
		return "matte silver"
	case 0x23:
		return "satin gold"
	case 0x24:
		return "satin silver"
	case 0x30:
		return "blue (D)"
	case 0x31:
		return "red (D)"
	case 0x40:
		return "fluorescent orange"
	case 0x41:
		return "fluorescent yellow"
	case 0x50:
		return "berry pink (S)"
	case 0x51:
		return "light gray (S)"
	case 0x60:
		return "yellow (F)"
	case 0x61:
		return "pink (F)"
	case 0x62:
		return "blue (F)"
	case 0x70:
		return "white (Heat-shrink Tube)"
	case 0x90:
		return "white (Flex. ID)"
	case 0x91:
		return "yellow (Flex. ID)"
	case 0xF0:
		return "cleaning"
	case 0xF1:
		return "stencil"
	case 0xFF:
		return "incompatible"
	default:
		return fmt.Sprintf("unrecognised: %#02x", uint8(c))
	}
}

// TextColour is the device's fixed text-colour palette code.
type TextColour uint8

func (c TextColour) String() string {
	switch c {
	case 0x01:
		return "white"
	case 0x02:
		return "other"
	case 0x04:
		return "red"
	case 0x05:
		return "blue"
	case 0x08:
		return "black"
	case 0x0A:
		return "gold"
	case 0x62:
		return "blue (F)"
	case 0xF0:
		return "cleaning"
	case 0xF1:
		return "stencil"
	case 0xFF:
		return "incompatible"
	default:
		return fmt.Sprintf("unrecognised: %#02x", uint8(c))
	}
}

// Status is a fully decoded 32-byte device status frame.
type Status struct {
	PrintHeadMark   byte
	Size            byte
	BrotherCode     byte
	SeriesCode      byte
	ModelCode       Model
	CountryCode     byte
	Battery         BatteryLevel
	ExtendedErr     ExtendedError
	Errors          ErrorFlags
	MediaWidthByte  byte
	MediaTypeByte   byte
	NumberOfColours byte
	Fonts           byte
	JapaneseFonts   byte
	Mode            byte
	Density         byte
	MediaLength     byte
	StatusType      StatusType
	PhaseType       byte
	PhaseNumber0    byte
	PhaseNumber1    byte
	Notification    NotificationNumber
	ExpansionArea   byte
	TapeColour      TapeColour
	TextColour      TextColour
	Reserved        [6]byte
}

// DecodeStatus parses exactly StatusFrameSize bytes into a Status.
func DecodeStatus(b []byte) (Status, error) {
	if len(b) != StatusFrameSize {
		return Status{}, &DecodeError{Offset: 0, Reason: fmt.Sprintf("status frame must be %d bytes, got %d", StatusFrameSize, len(b))}
	}

	s := Status{
		PrintHeadMark:   b[0],
		Size:            b[1],
		BrotherCode:     b[2],
		SeriesCode:      b[3],
		ModelCode:       Model(b[4]),
		CountryCode:     b[5],
		Battery:         BatteryLevel(b[6]),
		ExtendedErr:     ExtendedError(b[7]),
		Errors:          decodeErrorFlags(b[8], b[9]),
		MediaWidthByte:  b[10],
		MediaTypeByte:   b[11],
		NumberOfColours: b[12],
		Fonts:           b[13],
		JapaneseFonts:   b[14],
		Mode:            b[15],
		Density:         b[16],
		MediaLength:     b[17],
		StatusType:      StatusType(b[18]),
		PhaseType:       b[19],
		PhaseNumber0:    b[20],
		PhaseNumber1:    b[21],
		Notification:    NotificationNumber(b[22]),
		ExpansionArea:   b[23],
		TapeColour:      TapeColour(b[24]),
		TextColour:      TextColour(b[25]),
	}
	copy(s.Reserved[:], b[26:32])
	return s, nil
}

// MediaWidthString renders MediaWidthByte using the device's humanized
// width table (several widths share a byte with their HS counterpart).
func (s Status) MediaWidthString() string {
	switch s.MediaWidthByte {
	case 0x00:
		return "no tape"
	case 0x04:
		return "3.5 mm"
	case 0x06:
		return "6 mm / HS 5.8 mm"
	case 0x09:
		return "9 mm / HS 8.8 mm"
	case 0x0C:
		return "12 mm / HS 11.7 mm"
	case 0x12:
		return "18 mm / HS 17.7 mm"
	case 0x18:
		return "24 mm / HS 23.6 mm"
	case 0x24:
		return "36 mm"
	case 0x15:
		return "FLe 21 mm x 45 mm"
	default:
		return fmt.Sprintf("unrecognised tape width: %d", s.MediaWidthByte)
	}
}

// MediaTypeString renders MediaTypeByte using the device's media-type
// table.
func (s Status) MediaTypeString() string {
	switch s.MediaTypeByte {
	case 0x00:
		return "no media"
	case 0x01:
		return "laminated tape"
	case 0x03:
		return "non-laminated tape"
	case 0x04:
		return "fabric tape"
	case 0x11:
		return "heat-shrink tube"
	case 0x13:
		return "Fle tape"
	case 0x14:
		return "Flexible ID table"
	case 0x15:
		return "Satin tape"
	case 0x17:
		return "Heat-Shrink Tube (HS 3:1)"
	case 0xFF:
		return "incompatible tape"
	default:
		return fmt.Sprintf("unrecognised tape type: %d", s.MediaTypeByte)
	}
}

// PhaseString renders the (PhaseType, PhaseNumber1) pair. Implemented
// verbatim from the device firmware's own phase table: phaseType 0 is
// an editing-state phase keyed by PhaseNumber1 0/1, phaseType 1 is a
// printing-state phase keyed by PhaseNumber1 0/0x0a/0x14/0x19.
func (s Status) PhaseString() string {
	switch s.PhaseType {
	case 0x00:
		switch s.PhaseNumber1 {
		case 0x00:
			return "editing state"
		case 0x01:
			return "feed"
		default:
			return "unrecognised editing state"
		}
	case 0x01:
		switch s.PhaseNumber1 {
		case 0x00:
			return "printing"
		case 0x0A, 0x19:
			return "(not used)"
		case 0x14:
			return "cover open while receiving"
		default:
			return "unrecognised printing state"
		}
	default:
		return "unrecognised phase type"
	}
}

// Validate runs the frame's soft diagnostics: fields the device is
// expected to hold constant, reported but never fatal.
func (s Status) Validate() []string {
	var diags []string
	check := func(got, want byte, label string) {
		if got != want {
			diags = append(diags, fmt.Sprintf("%s: got %#02x, want %#02x", label, got, want))
		}
	}

	check(s.PrintHeadMark, 0x80, "print head mark")
	check(s.Size, 0x20, "size")
	check(s.BrotherCode, 0x42, "brother code")
	check(s.SeriesCode, 0x30, "series code")
	check(s.CountryCode, 0x30, "country code")
	check(s.NumberOfColours, 0x00, "number of colours")
	check(s.Fonts, 0x00, "fonts")
	check(s.JapaneseFonts, 0x00, "japanese fonts")
	check(s.Density, 0x00, "density")
	if s.MediaWidthByte != 0x15 {
		check(s.MediaLength, 0x00, "media length")
	} else {
		check(s.MediaLength, 0x2D, "media length")
	}
	check(s.ExpansionArea, 0x00, "expansion area")

	for _, b := range s.Reserved {
		if b != 0 {
			diags = append(diags, "reserved bytes: expected all zero")
			break
		}
	}

	return diags
}

// ParseMediaType maps a CLI --tape-type token onto the print-information
// media-type byte, inverting Status.MediaTypeString's table.
func ParseMediaType(token string) (byte, error) {
	switch token {
	case "no media":
		return 0x00, nil
	case "laminated tape":
		return 0x01, nil
	case "non-laminated tape":
		return 0x03, nil
	case "fabric tape":
		return 0x04, nil
	case "heat-shrink tube":
		return 0x11, nil
	case "Fle tape":
		return 0x13, nil
	case "Flexible ID table":
		return 0x14, nil
	case "Satin tape":
		return 0x15, nil
	case "Heat-Shrink Tube (HS 3:1)":
		return 0x17, nil
	default:
		return 0, &ConfigurationError{Option: "--tape-type", Reason: fmt.Sprintf("unknown media type %q", token)}
	}
}
