// Package session is the top-level orchestrator callers drive: one Session
// per connected device, exposing device info, manifest, and dive download
// operations over one transport (spec §4.8). The shape — a backend struct
// wrapping a transport, fanning status out through a pubsub broker — is
// lifted from the teacher's senso.DeviceBackend.
package session

import (
	"context"
	"fmt"
	"time"

	"github.com/cskr/pubsub"
	"github.com/sirupsen/logrus"

	"github.com/nauticore/shearwater-driver/src/shearwater-driver/engine"
	"github.com/nauticore/shearwater-driver/src/shearwater-driver/manifest"
	"github.com/nauticore/shearwater-driver/src/shearwater-driver/pnf"
	"github.com/nauticore/shearwater-driver/src/shearwater-driver/transport"
)

// brokerTopicProgress is the pubsub topic DownloadDives publishes progress
// events on, mirroring the teacher's brokerTopicRx/brokerTopicTx naming.
const brokerTopicProgress = "progress"

// interDivePause is the device-pacing delay between consecutive dive
// downloads (spec §4.8 "sleep 200 ms").
const interDivePause = 200 * time.Millisecond

const downloadSize = 0xFFFFFF

// DeviceInfo is the result of ReadDeviceInfo.
type DeviceInfo struct {
	SerialNumber    string
	FirmwareVersion string
	HardwareCode    uint16
	Model           string
}

// DownloadProgress reports how far DownloadDives has gotten through the
// current dive, published at least once per downloaded block and once at
// completion (spec §4.8).
type DownloadProgress struct {
	CurrentLogIndex int
	TotalLogs       int
	CurrentLogBytes int
}

// Dive pairs a parsed dive with the manifest candidate it came from. If
// parsing failed, Dive is a stub carrying RawData and Err instead (spec
// §4.8 "On parse failure, still return a stub log").
type Dive struct {
	Candidate manifest.Candidate
	Dive      pnf.Dive
	RawData   []byte
	Err       error
}

// Session drives one connected device through device-info, manifest, and
// dive-download operations.
type Session struct {
	log       *logrus.Entry
	transport *transport.Transport
	engine    *engine.Engine

	broker *pubsub.PubSub

	logBaseAddress      uint32
	logBaseAddressKnown bool
}

// New starts the transport's background reader and returns a Session ready
// for use. ctx bounds the transport's lifetime; Close additionally ends
// the device session and shuts transport down.
func New(ctx context.Context, log *logrus.Entry, link transport.Link, writeType transport.WriteType) *Session {
	tr := transport.New(ctx, log, link, writeType)
	return &Session{
		log:       log,
		transport: tr,
		engine:    engine.New(log, tr),
		broker:    pubsub.New(32),
	}
}

// Progress returns a channel of DownloadProgress events published during
// DownloadDives. Callers that don't need the stream can ignore it; it is
// additive to the synchronous progress_cb passed to DownloadDives.
func (s *Session) Progress() chan interface{} {
	return s.broker.Sub(brokerTopicProgress)
}

// ReadDeviceInfo reads the serial number, firmware version and hardware
// code RDBIs and maps the hardware code to a model name (spec §4.8
// "read_device_info").
func (s *Session) ReadDeviceInfo(ctx context.Context) (DeviceInfo, error) {
	serial, err := s.engine.ReadSerialNumber(ctx)
	if err != nil {
		return DeviceInfo{}, fmt.Errorf("session: read serial number: %w", err)
	}
	firmware, err := s.engine.ReadFirmwareVersion(ctx)
	if err != nil {
		return DeviceInfo{}, fmt.Errorf("session: read firmware version: %w", err)
	}
	hardwareCode, err := s.engine.ReadHardwareCode(ctx)
	if err != nil {
		return DeviceInfo{}, fmt.Errorf("session: read hardware code: %w", err)
	}

	return DeviceInfo{
		SerialNumber:    serial,
		FirmwareVersion: firmware,
		HardwareCode:    hardwareCode,
		Model:           pnf.ModelName(byte(hardwareCode)),
	}, nil
}

// ensureLogBaseAddress reads and caches RDBI 0x8021 the first time it's
// needed (spec §4.8 "ensures base address is known").
func (s *Session) ensureLogBaseAddress(ctx context.Context) (uint32, error) {
	if s.logBaseAddressKnown {
		return s.logBaseAddress, nil
	}

	addr, err := s.engine.ReadLogBaseAddress(ctx)
	if err != nil {
		return 0, fmt.Errorf("session: read log base address: %w", err)
	}
	s.logBaseAddress = addr
	s.logBaseAddressKnown = true
	return addr, nil
}

// DownloadManifest ensures the log base address is known, downloads and
// scans the manifest region, and returns candidates in newest-first
// physical scan order (spec §4.8 "download_manifest").
func (s *Session) DownloadManifest(ctx context.Context) ([]manifest.Candidate, error) {
	if _, err := s.ensureLogBaseAddress(ctx); err != nil {
		return nil, err
	}

	raw, err := s.engine.Download(ctx, manifest.BaseAddress, manifest.Size, false, nil)
	if err != nil {
		return nil, fmt.Errorf("session: download manifest: %w", err)
	}

	return manifest.Scan(raw), nil
}

// DownloadDives downloads and parses each candidate in order, pacing
// requests 200ms apart, and reports progress both through progressCb and
// the Progress() broker (spec §4.8 "download_dives").
func (s *Session) DownloadDives(ctx context.Context, candidates []manifest.Candidate, progressCb func(DownloadProgress)) ([]Dive, error) {
	base, err := s.ensureLogBaseAddress(ctx)
	if err != nil {
		return nil, err
	}

	dives := make([]Dive, 0, len(candidates))
	total := len(candidates)

	for i, candidate := range candidates {
		if err := ctx.Err(); err != nil {
			return dives, err
		}

		time.Sleep(interDivePause)

		logIndex := i + 1
		onBlock := func(bytesSoFar int) {
			s.reportProgress(progressCb, DownloadProgress{
				CurrentLogIndex: logIndex,
				TotalLogs:       total,
				CurrentLogBytes: bytesSoFar,
			})
		}

		raw, err := s.engine.Download(ctx, base+candidate.Address, downloadSize, true, onBlock)
		if err != nil {
			return dives, fmt.Errorf("session: download dive %d: %w", logIndex, err)
		}

		dive := parseDive(candidate, raw)
		dives = append(dives, dive)

		s.reportProgress(progressCb, DownloadProgress{
			CurrentLogIndex: logIndex,
			TotalLogs:       total,
			CurrentLogBytes: len(raw),
		})
	}

	return dives, nil
}

// parseDive parses raw into a pnf.Dive, applying the timezone correction,
// and falls back to a stub log on parse failure (spec §4.8 "On success...
// On parse failure, still return a stub log").
func parseDive(candidate manifest.Candidate, raw []byte) Dive {
	parsed, err := pnf.Parse(raw)
	if err != nil {
		return Dive{Candidate: candidate, RawData: raw, Err: err}
	}

	if parsed.TimezoneOffsetSeconds != nil {
		parsed.StartTimeUnix -= int64(*parsed.TimezoneOffsetSeconds)
	}

	return Dive{Candidate: candidate, Dive: parsed, RawData: raw}
}

func (s *Session) reportProgress(progressCb func(DownloadProgress), progress DownloadProgress) {
	if progressCb != nil {
		progressCb(progress)
	}
	s.broker.TryPub(progress, brokerTopicProgress)
}

// Close ends the device session and shuts the transport down (spec §4.8
// "close").
func (s *Session) Close(ctx context.Context) error {
	s.engine.CloseSession(ctx)
	s.broker.Shutdown()
	return s.transport.Shutdown()
}
