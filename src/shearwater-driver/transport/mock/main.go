// Package mock provides a scripted transport.Link test double, in the
// spirit of the teacher's flex/enumerator/mockdev registry: a stand-in for
// real hardware that tests can drive deterministically (spec §8 scenario
// 5, NAK-then-OK download init).
package mock

import (
	"context"
	"sync"

	"github.com/nauticore/shearwater-driver/src/shearwater-driver/packet"
	"github.com/nauticore/shearwater-driver/src/shearwater-driver/slip"
	"github.com/nauticore/shearwater-driver/src/shearwater-driver/transport"
)

// Responder produces the response payload for a given request payload. It
// is called once per complete request the mock link observes. Returning
// ok=false means "no response" (the mock still accepts the write but emits
// nothing).
type Responder func(request []byte) (response []byte, ok bool)

// Link is a transport.Link whose writes are answered by a Responder
// function instead of real hardware.
type Link struct {
	mu        sync.Mutex
	connected bool
	notifyCh  chan []byte
	decoder   *slip.Decoder

	Respond Responder

	// Writes records every decoded request payload this link has seen,
	// for assertions like "quit was sent between NAK and retry".
	Writes [][]byte
}

// New returns a connected mock Link.
func New(respond Responder) *Link {
	return &Link{
		connected: true,
		notifyCh:  make(chan []byte, 16),
		Respond:   respond,
	}
}

func (l *Link) Write(ctx context.Context, frame []byte, wt transport.WriteType) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.connected {
		return transport.ErrDisconnected
	}

	// The mock reassembles SLIP frames itself so it can see whole request
	// payloads, the same reassembly a real peripheral performs on-device.
	if l.decoder == nil {
		l.decoder = slip.NewDecoder()
	}
	pkt, complete, err := l.decoder.Feed(frame)
	if err != nil {
		return err
	}
	if !complete {
		return nil
	}
	l.decoder = nil

	// Requests carry the host-to-device header [0xFF, 0x01, L, 0x00] that
	// packet.Build writes, not the order packet.Validate checks.
	if len(pkt) < 4 || pkt[0] != 0xFF || pkt[1] != 0x01 || pkt[3] != 0x00 {
		return packet.ErrInvalidHeader
	}
	n := int(pkt[2])
	if n < 1 || 4+(n-1) > len(pkt) {
		return packet.ErrInvalidLength
	}
	payload := pkt[4 : 4+n-1]
	l.Writes = append(l.Writes, append([]byte(nil), payload...))

	if l.Respond == nil {
		return nil
	}
	response, ok := l.Respond(payload)
	if !ok {
		return nil
	}

	responsePkt := buildResponsePacket(response)
	for _, f := range slip.Encode(responsePkt) {
		l.notifyCh <- f
	}
	return nil
}

// buildResponsePacket builds a packet with the device-to-host header order
// ([0x01, 0xFF, L, 0x00, ...]), the mirror image of packet.Build which
// targets the host-to-device direction (spec §4.2).
func buildResponsePacket(payload []byte) []byte {
	pkt := make([]byte, 0, 4+len(payload))
	pkt = append(pkt, 0x01, 0xFF, byte(len(payload)+1), 0x00)
	pkt = append(pkt, payload...)
	return pkt
}

func (l *Link) Notifications() <-chan []byte {
	return l.notifyCh
}

func (l *Link) IsConnected() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.connected
}

func (l *Link) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.connected {
		l.connected = false
		close(l.notifyCh)
	}
	return nil
}

// Disconnect simulates the link dropping mid-operation without an explicit
// Close call from the session side.
func (l *Link) Disconnect() {
	l.Close()
}
