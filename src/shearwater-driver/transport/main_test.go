package transport_test

import (
	"bytes"
	"context"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/nauticore/shearwater-driver/src/shearwater-driver/transport"
	"github.com/nauticore/shearwater-driver/src/shearwater-driver/transport/mock"
)

func testLog() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

func TestTransferRoundTrip(t *testing.T) {
	link := mock.New(func(req []byte) ([]byte, bool) {
		if bytes.Equal(req, []byte{0x22, 0x80, 0x10}) {
			return []byte{0x62, 0x80, 0x10, 'A', 'B'}, true
		}
		return nil, false
	})

	tr := transport.New(context.Background(), testLog(), link, transport.WriteWithResponse)
	defer tr.Shutdown()

	resp, err := tr.Transfer(context.Background(), []byte{0x22, 0x80, 0x10}, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Equal(resp, []byte{0x62, 0x80, 0x10, 'A', 'B'}) {
		t.Fatalf("response = %x", resp)
	}
}

func TestTransferNoResponseExpected(t *testing.T) {
	link := mock.New(func(req []byte) ([]byte, bool) { return nil, false })
	tr := transport.New(context.Background(), testLog(), link, transport.WriteWithResponse)
	defer tr.Shutdown()

	resp, err := tr.Transfer(context.Background(), []byte{0x2E, 0x90, 0x20, 0x00}, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp != nil {
		t.Fatalf("expected nil response, got %x", resp)
	}
}

func TestTransferDisconnected(t *testing.T) {
	link := mock.New(nil)
	link.Disconnect()

	tr := transport.New(context.Background(), testLog(), link, transport.WriteWithResponse)
	defer tr.Shutdown()

	_, err := tr.Transfer(context.Background(), []byte{0x22, 0x80, 0x10}, 5)
	if err != transport.ErrDisconnected {
		t.Fatalf("expected ErrDisconnected, got %v", err)
	}
}

func TestTransferTimeout(t *testing.T) {
	link := mock.New(func(req []byte) ([]byte, bool) { return nil, false })
	tr := transport.New(context.Background(), testLog(), link, transport.WriteWithResponse)
	defer tr.Shutdown()

	start := time.Now()
	_, err := tr.Transfer(context.Background(), []byte{0x22, 0x80, 0x10}, 5)
	elapsed := time.Since(start)

	if err != transport.ErrTimeout {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
	if elapsed < transport.ReadDeadline {
		t.Fatalf("returned before the read deadline elapsed: %v", elapsed)
	}
}
