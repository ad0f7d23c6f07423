// Package engine implements the high-level Shearwater protocol operations
// on top of transport: Read-by-Data-Identifier, the block-wise download
// sub-protocol, and end-session (spec §4.5).
package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/sirupsen/logrus"

	"github.com/nauticore/shearwater-driver/src/shearwater-driver/transport"
)

// ErrProtocolViolation covers unexpected opcodes, headers, lengths, or
// block indices (spec §7 ProtocolViolation).
var ErrProtocolViolation = errors.New("engine: protocol violation")

// initRetryDelay is the pause between a NAK'd download-init and the single
// permitted retry (spec §4.5 step 2).
const initRetryDelay = 100 * time.Millisecond

// downloadInitSettleDelay is the pause after a successful download-init
// response, before the block-request loop starts, to let the device
// prepare (spec §4.5 step 4). It applies regardless of whether init
// succeeded on the first try or after a NAK retry, and is distinct from
// initRetryDelay even though both happen to be 100ms.
const downloadInitSettleDelay = 100 * time.Millisecond

// Engine drives one transport through the Shearwater command set. It holds
// no device-specific state beyond the transport itself; the download state
// machine lives on the stack of a single download() call (spec §3
// Lifecycle: "never re-enters Streaming concurrently").
type Engine struct {
	log       *logrus.Entry
	transport *transport.Transport
}

// New returns an Engine driving tr.
func New(log *logrus.Entry, tr *transport.Transport) *Engine {
	return &Engine{log: log, transport: tr}
}

// initRetryBackoff bounds the §4.5 NAK-recovery rule to exactly one retry
// after a 100ms pause, the same constant the teacher's go.mod already
// depends on (cenkalti/backoff) for bounded-retry logic elsewhere in the
// driver family.
func initRetryBackoff() backoff.BackOff {
	return backoff.WithMaxRetries(backoff.NewConstantBackOff(initRetryDelay), 1)
}

func protocolViolation(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrProtocolViolation, fmt.Sprintf(format, args...))
}

// CloseSession sends the end-session command and ignores any error, since
// the device is about to be disconnected regardless (spec §4.5
// "End-session").
func (e *Engine) CloseSession(ctx context.Context) {
	request := []byte{0x2E, 0x90, 0x20, 0x00}
	if _, err := e.transport.Transfer(ctx, request, 0); err != nil {
		e.log.WithError(err).Debug("end-session request failed, ignoring")
	}
}
