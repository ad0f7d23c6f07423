// Package packet wraps/unwraps the 4-byte Shearwater packet header that
// sits inside a SLIP-decoded frame (spec §4.2).
package packet

import "errors"

// ErrInvalidHeader is returned when the fixed header bytes don't match
// [0x01, 0xFF, L, 0x00].
var ErrInvalidHeader = errors.New("packet: invalid header")

// ErrInvalidLength is returned when the declared payload length doesn't fit
// the bytes actually present, or is zero.
var ErrInvalidLength = errors.New("packet: invalid length")

// Build wraps payload in the packet header: [0xFF, 0x01, len(payload)+1, 0x00, payload...].
func Build(payload []byte) []byte {
	pkt := make([]byte, 0, 4+len(payload))
	pkt = append(pkt, 0xFF, 0x01, byte(len(payload)+1), 0x00)
	pkt = append(pkt, payload...)
	return pkt
}

// Validate checks a received packet's header and length, returning the
// payload slice (pkt[4:4+L-1]).
func Validate(pkt []byte) ([]byte, error) {
	if len(pkt) < 4 {
		return nil, ErrInvalidHeader
	}
	if pkt[0] != 0x01 || pkt[1] != 0xFF || pkt[3] != 0x00 {
		return nil, ErrInvalidHeader
	}

	l := int(pkt[2])
	if l < 1 {
		return nil, ErrInvalidLength
	}
	if 4+(l-1) > len(pkt) {
		return nil, ErrInvalidLength
	}

	return pkt[4 : 4+l-1], nil
}
