package pnf

const blockSize = 32

const (
	blockKindSample = 0x01
	blockKindFinal  = 0xFF
)

const (
	openingKindLow  = 0x10
	openingKindHigh = 0x17
	closingKindLow  = 0x20
	closingKindHigh = 0x27
)

// defaultSampleIntervalMS is used until an Opening5 record supplies an
// explicit interval; Shearwater computers default to a 10-second sample
// rate.
const defaultSampleIntervalMS = 10000

// sampleBlock pairs a raw sample record with its accumulated offset from
// the dive start, in milliseconds (spec §4.7 pass 1: "advance
// current_time += sample_interval").
type sampleBlock struct {
	offsetMS uint64
	block    []byte
}

// recordSet is the result of pass 1: the raw blocks pass 2 and pass 3 key
// off of, indexed by their low nibble (Opening0 == openings[0], Closing0 ==
// closings[0]).
type recordSet struct {
	openings [8][]byte
	closings [8][]byte
	final    []byte
	samples  []sampleBlock
}

func (rs recordSet) opening(n int) reader {
	return newReader(rs.openings[n])
}

func (rs recordSet) closing(n int) reader {
	return newReader(rs.closings[n])
}

// extractRecords runs pass 1 over blob, which must already be validated as
// a non-empty multiple of blockSize.
func extractRecords(blob []byte) recordSet {
	var rs recordSet
	currentTimeMS := uint64(0)
	sampleIntervalMS := uint64(defaultSampleIntervalMS)

	for offset := 0; offset+blockSize <= len(blob); offset += blockSize {
		block := blob[offset : offset+blockSize]
		kind := block[0]

		switch {
		case kind == blockKindSample:
			currentTimeMS += sampleIntervalMS
			rs.samples = append(rs.samples, sampleBlock{offsetMS: currentTimeMS, block: block})
		case kind >= openingKindLow && kind <= openingKindHigh:
			idx := int(kind - openingKindLow)
			rs.openings[idx] = block
			if kind == 0x15 {
				if v, ok := newReader(block).u16(23); ok && v > 0 {
					sampleIntervalMS = uint64(v)
				}
			}
		case kind >= closingKindLow && kind <= closingKindHigh:
			rs.closings[kind-closingKindLow] = block
		case kind == blockKindFinal:
			rs.final = block
		}
	}

	return rs
}
