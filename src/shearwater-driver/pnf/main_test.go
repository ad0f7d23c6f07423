package pnf_test

import (
	"encoding/binary"
	"testing"

	"github.com/nauticore/shearwater-driver/src/shearwater-driver/pnf"
)

func block(kind byte) []byte {
	b := make([]byte, 32)
	b[0] = kind
	return b
}

func putU32(b []byte, offset int, v uint32) {
	binary.BigEndian.PutUint32(b[offset:offset+4], v)
}

func putU16(b []byte, offset int, v uint16) {
	binary.BigEndian.PutUint16(b[offset:offset+2], v)
}

func putI32(b []byte, offset int, v int32) {
	binary.BigEndian.PutUint32(b[offset:offset+4], uint32(v))
}

// baseBlocks returns a minimal opening/closing/final block set sharing the
// fixture values from spec scenario 1, with terigModel overriding Final[13].
func baseBlocks(terigModel byte) map[string][]byte {
	opening0 := block(0x10)
	putU32(opening0, 12, 1_700_000_000)
	opening0[4] = 30 // gf_low
	opening0[5] = 85 // gf_high

	opening4 := block(0x14)
	opening4[1] = 6  // dive_mode = OC-Rec
	opening4[16] = 9 // log_version

	opening5 := block(0x15)
	putI32(opening5, 26, 480) // utc_offset_min
	opening5[30] = 1          // dst_hours

	final := block(0xFF)
	final[13] = terigModel

	sample := block(0x01)
	putU16(sample, 1, 1000) // depth raw 1000 decimeters -> 100.0m at non-imperial scale... arbitrary

	return map[string][]byte{
		"opening0": opening0,
		"opening4": opening4,
		"opening5": opening5,
		"final":    final,
		"sample":   sample,
	}
}

func concatBlocks(blocks map[string][]byte, order []string) []byte {
	var blob []byte
	for _, k := range order {
		blob = append(blob, blocks[k]...)
	}
	return blob
}

// TestTericTimezoneParse implements spec scenario 1.
func TestTericTimezoneParse(t *testing.T) {
	blocks := baseBlocks(8)
	blob := concatBlocks(blocks, []string{"opening0", "opening4", "opening5", "sample", "final"})

	dive, err := pnf.Parse(blob)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dive.TimezoneOffsetSeconds == nil {
		t.Fatal("expected timezone offset to be present")
	}
	if *dive.TimezoneOffsetSeconds != 480*60+3600 {
		t.Fatalf("timezone offset = %d, want %d", *dive.TimezoneOffsetSeconds, 480*60+3600)
	}
}

// TestNonTericTimezoneAbsent implements spec scenario 2.
func TestNonTericTimezoneAbsent(t *testing.T) {
	blocks := baseBlocks(0)
	blob := concatBlocks(blocks, []string{"opening0", "opening4", "opening5", "sample", "final"})

	dive, err := pnf.Parse(blob)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dive.TimezoneOffsetSeconds != nil {
		t.Fatalf("expected no timezone offset, got %v", *dive.TimezoneOffsetSeconds)
	}
}

func TestParseRejectsBlobShorterThan32Bytes(t *testing.T) {
	_, err := pnf.Parse(make([]byte, 16))
	if err != pnf.ErrBlobTooShort {
		t.Fatalf("expected ErrBlobTooShort, got %v", err)
	}
}

func TestParseRejectsEmptyBlob(t *testing.T) {
	_, err := pnf.Parse(nil)
	if err != pnf.ErrBlobTooShort {
		t.Fatalf("expected ErrBlobTooShort, got %v", err)
	}
}

func TestParseFailsWithNoSamples(t *testing.T) {
	blocks := baseBlocks(8)
	blob := concatBlocks(blocks, []string{"opening0", "opening4", "opening5", "final"})

	_, err := pnf.Parse(blob)
	if err != pnf.ErrIncompleteDive {
		t.Fatalf("expected ErrIncompleteDive, got %v", err)
	}
}

func TestGasEventSkippedWhenBothZero(t *testing.T) {
	blocks := baseBlocks(0)
	sample := blocks["sample"]
	sample[8] = 0 // gas_o2
	sample[9] = 0 // gas_he

	blob := concatBlocks(blocks, []string{"opening0", "opening4", "opening5", "sample", "final"})
	dive, err := pnf.Parse(blob)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dive.Samples[0].Event != nil {
		t.Fatalf("expected no event, got %+v", dive.Samples[0].Event)
	}
}

func TestNDLBoundaryAt99Minutes(t *testing.T) {
	blocks := baseBlocks(0)
	sample := blocks["sample"]
	sample[10] = 99 // deco_min
	putU16(sample, 3, 0)

	blob := concatBlocks(blocks, []string{"opening0", "opening4", "opening5", "sample", "final"})
	dive, err := pnf.Parse(blob)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	deco := dive.Samples[0].Deco
	if deco.NDLSeconds == nil || *deco.NDLSeconds != 5940 {
		t.Fatalf("ndl seconds = %v, want 5940", deco.NDLSeconds)
	}
}

func TestImperialDepthConversion(t *testing.T) {
	blocks := baseBlocks(0)
	opening0 := blocks["opening0"]
	opening0[8] = 1 // is_imperial

	sample := blocks["sample"]
	putU16(sample, 1, 328)

	blob := concatBlocks(blocks, []string{"opening0", "opening4", "opening5", "sample", "final"})
	dive, err := pnf.Parse(blob)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := dive.Samples[0].DepthM
	want := 9.9984
	if diff := got - want; diff > 5e-3 || diff < -5e-3 {
		t.Fatalf("depth = %v, want ~%v", got, want)
	}
}
