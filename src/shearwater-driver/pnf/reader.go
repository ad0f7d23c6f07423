// Package pnf decodes Petrel Native Format dive logs: fixed 32-byte
// records produced by the download sub-protocol, grouped into opening,
// sample, closing and final blocks (spec §4.7).
package pnf

import "encoding/binary"

// reader is a bounds-checked big-endian view over one 32-byte block. Every
// accessor returns ok=false instead of panicking on overrun, so the rest of
// the parser never indexes a block directly (spec §9 "Endianness
// discipline").
type reader struct {
	data []byte
}

func newReader(data []byte) reader {
	return reader{data: data}
}

func (r reader) sub(offset, length int) ([]byte, bool) {
	if offset < 0 || length < 0 || offset+length > len(r.data) {
		return nil, false
	}
	return r.data[offset : offset+length], true
}

func (r reader) u8(offset int) (uint8, bool) {
	b, ok := r.sub(offset, 1)
	if !ok {
		return 0, false
	}
	return b[0], true
}

func (r reader) i8(offset int) (int8, bool) {
	u, ok := r.u8(offset)
	if !ok {
		return 0, false
	}
	return int8(u), true
}

func (r reader) u16(offset int) (uint16, bool) {
	b, ok := r.sub(offset, 2)
	if !ok {
		return 0, false
	}
	return binary.BigEndian.Uint16(b), true
}

func (r reader) u24(offset int) (uint32, bool) {
	b, ok := r.sub(offset, 3)
	if !ok {
		return 0, false
	}
	return uint32(b[0])<<16 | uint32(b[1])<<8 | uint32(b[2]), true
}

func (r reader) u32(offset int) (uint32, bool) {
	b, ok := r.sub(offset, 4)
	if !ok {
		return 0, false
	}
	return binary.BigEndian.Uint32(b), true
}

func (r reader) i32(offset int) (int32, bool) {
	u, ok := r.u32(offset)
	if !ok {
		return 0, false
	}
	return int32(u), true
}
