package ptcbp

import (
	"bytes"
	"testing"
)

func TestInitializeIsExactly202Bytes(t *testing.T) {
	var buf bytes.Buffer
	if err := NewCommandWriter(&buf).Initialize(); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	want := append(make([]byte, 200), 0x1B, '@')
	if !bytes.Equal(buf.Bytes(), want) {
		t.Fatalf("got %d bytes, want 202: %x", buf.Len(), buf.Bytes())
	}
}

func TestStatusRequestIsExactly3Bytes(t *testing.T) {
	var buf bytes.Buffer
	if err := NewCommandWriter(&buf).StatusRequest(); err != nil {
		t.Fatalf("StatusRequest: %v", err)
	}
	want := []byte{0x1B, 'i', 'S'}
	if !bytes.Equal(buf.Bytes(), want) {
		t.Fatalf("got %x, want %x", buf.Bytes(), want)
	}
}

func TestParseCompression(t *testing.T) {
	if c, err := ParseCompression("no compression"); err != nil || c != CompressionNone {
		t.Fatalf("got %v, %v, want CompressionNone, nil", c, err)
	}
	if c, err := ParseCompression("tiff"); err != nil || c != CompressionTIFF {
		t.Fatalf("got %v, %v, want CompressionTIFF, nil", c, err)
	}
	if _, err := ParseCompression("bogus"); err == nil {
		t.Fatal("expected error for unknown compression token")
	}
}

func TestPrintInformationLayout(t *testing.T) {
	var buf bytes.Buffer
	cw := NewCommandWriter(&buf)
	if err := cw.PrintInformation(0x01, 0x0C, 48, PageLast); err != nil {
		t.Fatalf("PrintInformation: %v", err)
	}
	want := []byte{
		0x1B, 'i', 'z',
		0x84,       // used flags
		0x01,       // media type
		0x0C,       // media width
		0x00,       // media length
		0xC0, 0x00, 0x00, 0x00, // raster count = 4*48=192 LE
		0x02, // page index = Last
		0x00,
	}
	if !bytes.Equal(buf.Bytes(), want) {
		t.Fatalf("got %x, want %x", buf.Bytes(), want)
	}
}

func TestAdvancedModeFlagBits(t *testing.T) {
	f := AdvancedModeFlags{HalfCut: true, NoChainPrinting: true}
	if got := f.encode(); got != (1<<2)|(1<<3) {
		t.Fatalf("got %#02x, want %#02x", got, (1<<2)|(1<<3))
	}
}

func TestVariousModeFlagBits(t *testing.T) {
	f := VariousModeFlags{AutoCut: true, MirrorPrinting: true}
	if got := f.encode(); got != 0xC0 {
		t.Fatalf("got %#02x, want 0xC0", got)
	}
}
