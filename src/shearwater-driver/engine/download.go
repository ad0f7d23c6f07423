package engine

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff"

	"github.com/nauticore/shearwater-driver/src/shearwater-driver/compress"
)

// ErrUnexpectedInitResponse is returned when a download-init request fails
// to come back 0x75 even after the single permitted NAK retry.
var ErrUnexpectedInitResponse = errors.New("engine: unexpected download init response")

// errInitNAK marks a 0x7F init response as a transient failure so
// initRetryBackoff knows to retry rather than give up immediately.
var errInitNAK = errors.New("engine: download init NAK")

// ErrUnexpectedBlockResponse is returned when a block response doesn't echo
// the requested block_index, or arrives out of sequence.
var ErrUnexpectedBlockResponse = errors.New("engine: unexpected download block response")

const quitRequestByte = 0x37

// Download runs the block-wise download sub-protocol against address,
// reading size bytes (or until the compressed stream reports completion)
// and returns the fully decompressed, deobfuscated bytes (spec §4.5
// "Download sub-protocol"). onBlock, if non-nil, is called with the number
// of output bytes accumulated so far after every block (spec §4.8 "at
// least once per block").
func (e *Engine) Download(ctx context.Context, address uint32, size uint32, compressed bool, onBlock func(bytesSoFar int)) ([]byte, error) {
	maxBlock, err := e.downloadInit(ctx, address, size, compressed)
	if err != nil {
		return nil, err
	}

	time.Sleep(downloadInitSettleDelay)

	output, err := e.downloadBlocks(ctx, maxBlock, size, compressed, onBlock)
	if err != nil {
		return nil, err
	}

	e.downloadQuit(ctx)

	if compressed {
		compress.XOR32(output)
	}
	return output, nil
}

// downloadInit sends the init request and, on a single 0x7F NAK, quits and
// retries once after initRetryDelay, using the same bounded-backoff shape
// as the rest of the driver family's retry logic. It returns max_block from
// the 0x75 response.
func (e *Engine) downloadInit(ctx context.Context, address, size uint32, compressed bool) (int, error) {
	request := buildInitRequest(address, size, compressed)
	var response []byte

	operation := func() error {
		resp, err := e.transport.Transfer(ctx, request, 3)
		if err != nil {
			return backoff.Permanent(err)
		}
		if len(resp) > 0 && resp[0] == 0x7F {
			e.sendQuitIgnoringResponse(ctx)
			return errInitNAK
		}
		response = resp
		return nil
	}

	if err := backoff.Retry(operation, initRetryBackoff()); err != nil {
		if err == errInitNAK {
			return 0, protocolViolation("download init: %w: device NAK'd after retry", ErrUnexpectedInitResponse)
		}
		return 0, err
	}

	if len(response) != 3 || response[0] != 0x75 {
		return 0, protocolViolation("download init: %w: response=%x", ErrUnexpectedInitResponse, response)
	}
	return int(response[2]), nil
}

func buildInitRequest(address, size uint32, compressed bool) []byte {
	var flags byte
	if compressed {
		flags = 0x10
	}
	return []byte{
		0x35, flags, 0x34,
		byte(address >> 24), byte(address >> 16), byte(address >> 8), byte(address),
		byte(size >> 16), byte(size >> 8), byte(size),
	}
}

// downloadBlocks loops requesting successive blocks with a wrapping
// block_index, appending decompressed (or raw) payload bytes until the
// stream signals completion.
func (e *Engine) downloadBlocks(ctx context.Context, maxBlock int, size uint32, compressed bool, onBlock func(bytesSoFar int)) ([]byte, error) {
	var output []byte
	blockIndex := byte(1)

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !e.transport.IsConnected() {
			return nil, errDownloadDisconnected
		}

		request := []byte{0x36, blockIndex}
		response, err := e.transport.Transfer(ctx, request, maxBlock+2)
		if err != nil {
			return nil, err
		}

		if len(response) < 2 || response[0] != 0x76 || response[1] != blockIndex {
			return nil, protocolViolation("download block: %w: expected index %d, response=%x", ErrUnexpectedBlockResponse, blockIndex, response)
		}

		payload := response[2:]
		isFinal := false
		if compressed {
			var expanded []byte
			expanded, isFinal = compress.DecodeLRE(payload)
			output = append(output, expanded...)
		} else {
			output = append(output, payload...)
			isFinal = uint32(len(output)) >= size
		}

		if onBlock != nil {
			onBlock(len(output))
		}
		if isFinal {
			break
		}

		blockIndex++
	}

	return output, nil
}

// downloadQuit sends the quit request and checks for the expected
// [0x77, 0x00] response, logging but never failing on anything else (spec
// §4.5 step 7, §6 "Quit-confirm responses are logged but never fatal").
func (e *Engine) downloadQuit(ctx context.Context) {
	response, err := e.transport.Transfer(ctx, []byte{quitRequestByte}, 2)
	if err != nil {
		e.log.WithError(err).Debug("download quit request failed, ignoring")
		return
	}
	if len(response) != 2 || response[0] != 0x77 || response[1] != 0x00 {
		e.log.WithField("response", response).Warn("unexpected quit response, ignoring")
	}
}

func (e *Engine) sendQuitIgnoringResponse(ctx context.Context) {
	if _, err := e.transport.Transfer(ctx, []byte{quitRequestByte}, 0); err != nil {
		e.log.WithError(err).Debug("quit-before-retry failed, ignoring")
	}
}

var errDownloadDisconnected = errors.New("engine: transport disconnected during download")
