package server_test

import (
	"context"
	"io"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/nauticore/shearwater-driver/src/server"
	"github.com/nauticore/shearwater-driver/src/shearwater-driver/session"
	"github.com/nauticore/shearwater-driver/src/shearwater-driver/transport"
	"github.com/nauticore/shearwater-driver/src/shearwater-driver/transport/mock"
)

func testLog() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

func TestRegisterAndUnregister(t *testing.T) {
	srv := server.New(testLog())

	sess := session.New(context.Background(), testLog(), mock.New(nil), transport.WriteWithResponse)
	srv.Register("AA:BB:CC:DD:EE:FF", sess)

	if srv.SessionCount() != 1 {
		t.Fatalf("session count = %d, want 1", srv.SessionCount())
	}

	srv.Unregister("AA:BB:CC:DD:EE:FF")
	if srv.SessionCount() != 0 {
		t.Fatalf("session count = %d, want 0", srv.SessionCount())
	}
}

func TestRegisterReplacesPriorSession(t *testing.T) {
	srv := server.New(testLog())

	first := session.New(context.Background(), testLog(), mock.New(nil), transport.WriteWithResponse)
	srv.Register("addr", first)

	second := session.New(context.Background(), testLog(), mock.New(nil), transport.WriteWithResponse)
	srv.Register("addr", second)

	if srv.SessionCount() != 1 {
		t.Fatalf("session count = %d, want 1", srv.SessionCount())
	}
}
