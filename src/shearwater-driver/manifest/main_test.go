package manifest_test

import (
	"testing"

	"github.com/nauticore/shearwater-driver/src/shearwater-driver/manifest"
)

func buildRecord(header uint16, fingerprint string, address uint32) []byte {
	r := make([]byte, 0x20)
	r[0] = byte(header >> 8)
	r[1] = byte(header)
	copy(r[4:8], fingerprint)
	r[20] = byte(address >> 24)
	r[21] = byte(address >> 16)
	r[22] = byte(address >> 8)
	r[23] = byte(address)
	return r
}

// TestScanManifest implements spec scenario 6.
func TestScanManifest(t *testing.T) {
	var buf []byte
	buf = append(buf, buildRecord(0xA5C4, "AA11BB22", 0x00001000)...)
	buf = append(buf, buildRecord(0x5A23, "", 0)...)
	buf = append(buf, buildRecord(0xA5C4, "CC33DD44", 0x00002000)...)
	buf = append(buf, make([]byte, 0x20)...) // trailing zero record stops the scan

	candidates := manifest.Scan(buf)

	if len(candidates) != 2 {
		t.Fatalf("len(candidates) = %d, want 2", len(candidates))
	}
	if candidates[0].Ordinal != 1 || string(candidates[0].Fingerprint[:]) != "AA11BB22"[:4] || candidates[0].Address != 0x1000 {
		t.Fatalf("candidate 0 = %+v", candidates[0])
	}
	if candidates[1].Ordinal != 2 || string(candidates[1].Fingerprint[:]) != "CC33DD44"[:4] || candidates[1].Address != 0x2000 {
		t.Fatalf("candidate 1 = %+v", candidates[1])
	}
}

func TestScanManifestEmpty(t *testing.T) {
	candidates := manifest.Scan(make([]byte, 0x20))
	if len(candidates) != 0 {
		t.Fatalf("expected no candidates, got %d", len(candidates))
	}
}

func TestScanManifestAllDeleted(t *testing.T) {
	var buf []byte
	buf = append(buf, buildRecord(0x5A23, "", 0)...)
	buf = append(buf, buildRecord(0x5A23, "", 0)...)
	buf = append(buf, make([]byte, 0x20)...)

	candidates := manifest.Scan(buf)
	if len(candidates) != 0 {
		t.Fatalf("expected no candidates, got %d", len(candidates))
	}
}
