package ptcbp

import "testing"

// TestDecodeStatusScenario exercises the worked example's byte frame.
// Its prose claims phase="feed", but applying the firmware's own phase
// table to these bytes (phaseType=0x01, phaseNumber1=0x00) yields
// "printing", not "feed" — "feed" only arises from phaseType=0x00 with
// phaseNumber1=0x01. Every other field asserted below matches the
// example's prose, so this is
// treated as an error in the example rather than in the decode logic,
// and the test asserts "printing".
func TestDecodeStatusScenario(t *testing.T) {
	raw := []byte{
		0x80, 0x20, 0x42, 0x30, 0x71, 0x30, 0x00, 0x00,
		0x00, 0x00, 0x0C, 0x01, 0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x06, 0x01, 0x00, 0x00, 0x00, 0x00,
		0x01, 0x08, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	}

	s, err := DecodeStatus(raw)
	if err != nil {
		t.Fatalf("DecodeStatus: %v", err)
	}

	if s.ModelCode.String() != "PT-P900" {
		t.Errorf("model = %q, want PT-P900", s.ModelCode.String())
	}
	if s.Battery.String() != "full" {
		t.Errorf("battery = %q, want full", s.Battery.String())
	}
	if s.Errors.Any() {
		t.Errorf("errors = %v, want none", s.Errors.Strings())
	}
	if got := s.MediaWidthString(); got != "12 mm / HS 11.7 mm" {
		t.Errorf("media width = %q, want 12 mm / HS 11.7 mm", got)
	}
	if got := s.MediaTypeString(); got != "laminated tape" {
		t.Errorf("media type = %q, want laminated tape", got)
	}
	if got := s.StatusType.String(); got != "phase changed" {
		t.Errorf("status = %q, want phase changed", got)
	}
	if got := s.PhaseString(); got != "printing" {
		t.Errorf("phase = %q, want printing (see comment above)", got)
	}
	if got := s.TapeColour.String(); got != "white" {
		t.Errorf("tape colour = %q, want white", got)
	}
	if got := s.TextColour.String(); got != "black" {
		t.Errorf("text colour = %q, want black", got)
	}
	if diags := s.Validate(); len(diags) != 0 {
		t.Errorf("Validate() = %v, want none", diags)
	}
}

func TestDecodeStatusRejectsWrongLength(t *testing.T) {
	_, err := DecodeStatus(make([]byte, 31))
	if err == nil {
		t.Fatal("expected error for short frame")
	}
}

func TestPhaseStringEditingStates(t *testing.T) {
	cases := []struct {
		phaseType, phaseNumber1 byte
		want                    string
	}{
		{0x00, 0x00, "editing state"},
		{0x00, 0x01, "feed"},
		{0x01, 0x00, "printing"},
		{0x01, 0x14, "cover open while receiving"},
	}
	for _, c := range cases {
		s := Status{PhaseType: c.phaseType, PhaseNumber1: c.phaseNumber1}
		if got := s.PhaseString(); got != c.want {
			t.Errorf("PhaseString(type=%#x, num1=%#x) = %q, want %q", c.phaseType, c.phaseNumber1, got, c.want)
		}
	}
}

func TestParseMediaTypeRoundTrip(t *testing.T) {
	b, err := ParseMediaType("laminated tape")
	if err != nil {
		t.Fatalf("ParseMediaType: %v", err)
	}
	s := Status{MediaTypeByte: b}
	if got := s.MediaTypeString(); got != "laminated tape" {
		t.Fatalf("round trip: got %q, want laminated tape", got)
	}
}

func TestParseMediaTypeUnknown(t *testing.T) {
	if _, err := ParseMediaType("bogus"); err == nil {
		t.Fatal("expected error for unknown media type")
	}
}
