// Package manifest scans the downloaded dive-directory block for active
// dive entries (spec §4.6). It only scans a buffer that the caller has
// already fetched with engine.Download (session.DownloadManifest does so),
// using a fixed-stride record loop in the manner of
// flex/sensitronics.readFrame.
package manifest

import "encoding/binary"

// BaseAddress and Size are the fixed location and extent of the manifest
// region on every supported device.
const (
	BaseAddress uint32 = 0xE0000000
	Size        uint32 = 0x600

	recordSize = 0x20

	headerDeleted = 0x5A23
	headerActive  = 0xA5C4
)

// Candidate is one active dive entry found while scanning the manifest
// buffer, in physical (newest-first) scan order.
type Candidate struct {
	Ordinal     int
	Fingerprint [4]byte
	Address     uint32
}

// Scan walks buf in 0x20-byte records, returning active entries in the
// order they're stored on-device. Deleted entries are skipped; any other
// header value stops the scan (spec §4.6).
func Scan(buf []byte) []Candidate {
	var candidates []Candidate
	ordinal := 1

	for offset := 0; offset+recordSize <= len(buf); offset += recordSize {
		record := buf[offset : offset+recordSize]
		header := binary.BigEndian.Uint16(record[0:2])

		switch header {
		case headerDeleted:
			continue
		case headerActive:
			var fp [4]byte
			copy(fp[:], record[4:8])
			candidates = append(candidates, Candidate{
				Ordinal:     ordinal,
				Fingerprint: fp,
				Address:     binary.BigEndian.Uint32(record[20:24]),
			})
			ordinal++
		default:
			return candidates
		}
	}

	return candidates
}
