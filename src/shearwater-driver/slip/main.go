// Package slip implements the byte-stuffing codec and link-frame splitting
// used to carry Shearwater protocol packets over the BLE write/notify
// characteristics.
//
// A packet is SLIP-encoded, then chopped into frames of at most
// maxFrameContent bytes of encoded content, each frame prefixed on the wire
// by a 2-byte link-frame header: [totalFrames, frameIndex].
package slip

import "errors"

const (
	// END marks the end of a SLIP packet.
	END = 0xC0
	// ESC escapes an END or ESC byte that occurs in the payload.
	ESC = 0xDB
	// ESCEND is the byte that follows ESC when escaping END.
	ESCEND = 0xDC
	// ESCESC is the byte that follows ESC when escaping ESC.
	ESCESC = 0xDD
)

// maxFrameContent is the maximum number of SLIP-encoded bytes carried in a
// single link frame's content, leaving room for the 2-byte link-frame
// header within a 32-byte BLE frame.
const maxFrameContent = 30

// ErrTruncated is returned by Decoder.Feed when a chunk is shorter than the
// 2-byte link-frame header it is expected to carry.
var ErrTruncated = errors.New("slip: chunk shorter than link-frame header")

// Encode escapes payload per SLIP and returns it as a sequence of wire-ready
// link frames (header + encoded content), each at most 2+maxFrameContent
// bytes long. The final frame's content ends with END.
func Encode(payload []byte) [][]byte {
	encoded := make([]byte, 0, len(payload)+2)
	for _, b := range payload {
		switch b {
		case END:
			encoded = append(encoded, ESC, ESCEND)
		case ESC:
			encoded = append(encoded, ESC, ESCESC)
		default:
			encoded = append(encoded, b)
		}
	}
	encoded = append(encoded, END)

	nFrames := (len(encoded) + maxFrameContent - 1) / maxFrameContent
	if nFrames == 0 {
		nFrames = 1
	}

	frames := make([][]byte, 0, nFrames)
	for i := 0; i < nFrames; i++ {
		start := i * maxFrameContent
		end := start + maxFrameContent
		if end > len(encoded) {
			end = len(encoded)
		}
		frame := make([]byte, 0, 2+(end-start))
		frame = append(frame, byte(nFrames), byte(i))
		frame = append(frame, encoded[start:end]...)
		frames = append(frames, frame)
	}
	return frames
}

// Decoder reassembles link frames into SLIP-decoded packets. It is not safe
// for concurrent use; callers serialize access the same way transport
// serializes transfer() calls (spec §4.4).
type Decoder struct {
	buf     []byte
	escaped bool
}

// NewDecoder returns a fresh decoder with no accumulated state.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Feed consumes one inbound chunk (a single link frame including its 2-byte
// header). It returns the decoded packet and complete=true once an END byte
// terminates a non-empty accumulated buffer; otherwise it returns
// complete=false and the decoder keeps its state for the next chunk.
func (d *Decoder) Feed(chunk []byte) (packet []byte, complete bool, err error) {
	if len(chunk) < 2 {
		return nil, false, ErrTruncated
	}
	content := chunk[2:]

	for _, b := range content {
		if d.escaped {
			d.escaped = false
			switch b {
			case ESCEND:
				d.buf = append(d.buf, END)
			case ESCESC:
				d.buf = append(d.buf, ESC)
			default:
				// Not a valid escape sequence; pass the byte through as-is.
				d.buf = append(d.buf, b)
			}
			continue
		}

		switch b {
		case ESC:
			d.escaped = true
		case END:
			if len(d.buf) == 0 {
				// Ignore leading END bytes (stray terminators from a
				// previous transmission).
				continue
			}
			packet = d.buf
			d.buf = nil
			return packet, true, nil
		default:
			d.buf = append(d.buf, b)
		}
	}

	return nil, false, nil
}

// Reset discards any partially accumulated packet and pending escape state,
// so stale bytes do not leak into the next packet.
func (d *Decoder) Reset() {
	d.buf = nil
	d.escaped = false
}
