package pnf

import "errors"

// ErrBlobTooShort is returned when the input isn't a non-empty multiple of
// 32 bytes (spec §4.7 "Input").
var ErrBlobTooShort = errors.New("pnf: blob is not a non-empty multiple of 32 bytes")

// ErrIncompleteDive is returned when start_time can't be determined or no
// samples were found (spec §4.7 "Final assembly").
var ErrIncompleteDive = errors.New("pnf: missing start_time or samples")

// Parse decodes a downloaded, already-decompressed PNF blob into a Dive.
func Parse(blob []byte) (Dive, error) {
	if len(blob) == 0 || len(blob)%blockSize != 0 {
		return Dive{}, ErrBlobTooShort
	}

	records := extractRecords(blob)

	dive, ok := decodeHeader(records)
	if !ok {
		return Dive{}, ErrIncompleteDive
	}

	dive.Samples = decodeSamples(records, dive)
	if len(dive.Samples) == 0 {
		return Dive{}, ErrIncompleteDive
	}

	applySampleFallbacks(&dive, records)

	return dive, nil
}

// applySampleFallbacks fills max_depth/duration from the sample stream
// when Closing0 didn't supply them (spec §4.7 header table "Fallback"
// column).
func applySampleFallbacks(dive *Dive, records recordSet) {
	if _, ok := records.closing(0).u16(4); !ok {
		maxDepth := 0.0
		for _, s := range dive.Samples {
			if s.DepthM > maxDepth {
				maxDepth = s.DepthM
			}
		}
		dive.MaxDepthM = maxDepth
	}

	if _, ok := records.closing(0).u24(6); !ok {
		last := dive.Samples[len(dive.Samples)-1]
		dive.DurationSeconds = uint32(last.TimestampUnix - dive.StartTimeUnix)
	}
}
