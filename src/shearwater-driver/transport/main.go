// Package transport owns the BLE link for one connected session and
// serializes request/response exchanges against it (spec §4.4).
//
// The concurrency shape is lifted from the teacher's serial device
// backends (flex/device/sensitronics, flex/device/passthru): a background
// reader goroutine drains inbound data into shared state for as long as
// the link lives, while foreground calls pull from that state on demand.
// Here the shared state is a byte buffer guarded by a mutex plus a
// single-slot wake channel, since only one logical reader (transfer) is
// ever waiting at a time (spec §4.4, Design Notes).
package transport

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/nauticore/shearwater-driver/src/shearwater-driver/packet"
	"github.com/nauticore/shearwater-driver/src/shearwater-driver/slip"
)

// ReadDeadline is the hard deadline for a single transfer's response wait
// (spec §4.4).
const ReadDeadline = 5 * time.Second

// WriteType selects whether a BLE characteristic write expects a
// peripheral response.
type WriteType int

const (
	WriteWithResponse WriteType = iota
	WriteWithoutResponse
)

// ErrDisconnected is returned when the link reports it is no longer
// connected, either before a transfer starts or while one is waiting.
var ErrDisconnected = errors.New("transport: link disconnected")

// ErrTimeout is returned when a transfer's response doesn't complete
// within ReadDeadline.
var ErrTimeout = errors.New("transport: read timeout")

// Link is the BLE collaborator this package depends on (spec §6). It is
// provided by the host; ble.Link in the transport/ble subpackage is
// one concrete implementation, transport/mock another.
type Link interface {
	// Write sends bytes on the write characteristic using the given
	// write type.
	Write(ctx context.Context, data []byte, wt WriteType) error
	// Notifications returns a channel of inbound chunks from the notify
	// characteristic. The channel is closed when the link is closed.
	Notifications() <-chan []byte
	// IsConnected reports whether the link is currently usable.
	IsConnected() bool
	// Close releases the link's resources.
	Close() error
}

// Transport serializes transfer() calls against one Link for the lifetime
// of a connected session (spec §4.4, §5).
type Transport struct {
	log  *logrus.Entry
	link Link

	writeType WriteType

	mu     sync.Mutex
	inbuf  [][]byte
	wakeCh chan struct{}

	cancelReader context.CancelFunc
	readerDone   chan struct{}

	transferMu sync.Mutex
}

// New starts the background notification reader and returns a Transport
// ready for transfer() calls. The reader runs until ctx is done or Shutdown
// is called, mirroring the lifetime of the teacher's per-connection reader
// goroutines (flex/device/sensitronics.Run).
func New(ctx context.Context, log *logrus.Entry, link Link, writeType WriteType) *Transport {
	readerCtx, cancel := context.WithCancel(ctx)

	t := &Transport{
		log:          log,
		link:         link,
		writeType:    writeType,
		wakeCh:       make(chan struct{}, 1),
		cancelReader: cancel,
		readerDone:   make(chan struct{}),
	}

	go t.readLoop(readerCtx)

	return t
}

// readLoop drains notifications into the inbound buffer for as long as the
// link lives. It never itself decides when a packet is complete — that is
// transfer()'s job, run against the same buffer.
func (t *Transport) readLoop(ctx context.Context) {
	defer close(t.readerDone)

	notifications := t.link.Notifications()
	for {
		select {
		case <-ctx.Done():
			return
		case chunk, ok := <-notifications:
			if !ok {
				return
			}
			t.mu.Lock()
			t.inbuf = append(t.inbuf, chunk)
			t.mu.Unlock()
			t.wake()
		}
	}
}

// wake signals a waiting transfer() that more inbound data has arrived,
// without blocking if nobody is currently waiting (single-slot wake).
func (t *Transport) wake() {
	select {
	case t.wakeCh <- struct{}{}:
	default:
	}
}

func (t *Transport) clearInbound() {
	t.mu.Lock()
	t.inbuf = nil
	t.mu.Unlock()
	// drain any stale wake signal from before this transfer started
	select {
	case <-t.wakeCh:
	default:
	}
}

// takeChunk removes and returns the oldest buffered notification, preserving
// its own 2-byte link-frame header for the SLIP decoder to strip. Chunks are
// queued rather than concatenated because each notification carries its own
// header (spec §4.1): merging two chunks before stripping would eat real
// payload bytes from the second one.
func (t *Transport) takeChunk() []byte {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.inbuf) == 0 {
		return nil
	}
	chunk := t.inbuf[0]
	t.inbuf = t.inbuf[1:]
	return chunk
}

// Transfer sends request as a packet/SLIP-framed write and, if
// expectedResponseBytes > 0, waits for and returns the validated response
// payload. Calls are serialized: only one Transfer is ever in flight on a
// given Transport (spec §4.4).
func (t *Transport) Transfer(ctx context.Context, request []byte, expectedResponseBytes int) ([]byte, error) {
	t.transferMu.Lock()
	defer t.transferMu.Unlock()

	if !t.link.IsConnected() {
		return nil, ErrDisconnected
	}

	t.clearInbound()

	pkt := packet.Build(request)
	for _, frame := range slip.Encode(pkt) {
		if err := t.link.Write(ctx, frame, t.writeType); err != nil {
			return nil, err
		}
	}

	if expectedResponseBytes == 0 {
		return nil, nil
	}

	return t.readSLIPPacket(ctx)
}

// readSLIPPacket accumulates inbound notification chunks through the SLIP
// decoder and validates the reassembled packet, enforcing the 5s hard
// deadline (spec §4.4).
func (t *Transport) readSLIPPacket(ctx context.Context) ([]byte, error) {
	decoder := slip.NewDecoder()
	deadline := time.NewTimer(ReadDeadline)
	defer deadline.Stop()

	for {
		if chunk := t.takeChunk(); chunk != nil {
			pkt, complete, err := decoder.Feed(chunk)
			if err != nil {
				return nil, err
			}
			if complete {
				return packet.Validate(pkt)
			}
			continue
		}

		if !t.link.IsConnected() {
			return nil, ErrDisconnected
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-deadline.C:
			return nil, ErrTimeout
		case <-t.wakeCh:
			// loop around to drain the buffer again
		}
	}
}

// IsConnected reports whether the underlying link still considers itself
// connected.
func (t *Transport) IsConnected() bool {
	return t.link.IsConnected()
}

// Shutdown stops the background reader and closes the underlying link. It
// is idempotent-safe to call once per Transport, matching the teacher's
// "reader task lives from construction until shutdown" lifecycle
// (spec §3 Lifecycle).
func (t *Transport) Shutdown() error {
	t.cancelReader()
	<-t.readerDone
	return t.link.Close()
}
