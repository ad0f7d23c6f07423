// Package ble implements transport.Link against a real BLE central using
// github.com/currantlabs/ble, the production collaborator behind spec §6's
// BLE interface. This is the concrete analogue of how the teacher wires
// go.bug.st/serial directly into flex/sensitronics.ConnectSerial — here the
// transport is BLE GATT instead of USB serial.
package ble

import (
	"context"
	"fmt"
	"time"

	"github.com/currantlabs/ble"
	"github.com/sirupsen/logrus"

	"github.com/nauticore/shearwater-driver/src/shearwater-driver/transport"
)

// ServiceUUID is the Shearwater transfer service's 128-bit UUID.
var ServiceUUID = ble.MustParse("fe25c237-0ece-443c-b0aa-e02033e7029d")

// WriteCharUUID and NotifyCharUUID identify the write and notify
// characteristics within ServiceUUID.
var (
	WriteCharUUID  = ble.MustParse("fe25c238-0ece-443c-b0aa-e02033e7029d")
	NotifyCharUUID = ble.MustParse("fe25c239-0ece-443c-b0aa-e02033e7029d")
)

// ConnectTimeout bounds how long Dial waits for the central-role connection
// and service discovery to complete.
const ConnectTimeout = 10 * time.Second

// Link wraps a ble.Client, pairing it with the discovered write/notify
// characteristics so it satisfies transport.Link.
type Link struct {
	log    *logrus.Entry
	client ble.Client

	writeChar  *ble.Characteristic
	notifyChar *ble.Characteristic

	notifyCh chan []byte
}

// Dial connects to addr, discovers ServiceUUID and its characteristics,
// and subscribes to notifications. The returned Link is ready to be handed
// to transport.New.
func Dial(ctx context.Context, log *logrus.Entry, addr ble.Addr) (*Link, error) {
	dialCtx, cancel := context.WithTimeout(ctx, ConnectTimeout)
	defer cancel()

	client, err := ble.Dial(dialCtx, addr)
	if err != nil {
		return nil, fmt.Errorf("ble: dial %s: %w", addr, err)
	}

	profile, err := client.DiscoverProfile(true)
	if err != nil {
		client.CancelConnection()
		return nil, fmt.Errorf("ble: discover profile: %w", err)
	}

	writeChar := findCharacteristic(profile, ServiceUUID, WriteCharUUID)
	notifyChar := findCharacteristic(profile, ServiceUUID, NotifyCharUUID)
	if writeChar == nil || notifyChar == nil {
		client.CancelConnection()
		return nil, fmt.Errorf("ble: device %s does not expose the Shearwater transfer service", addr)
	}

	link := &Link{
		log:        log,
		client:     client,
		writeChar:  writeChar,
		notifyChar: notifyChar,
		notifyCh:   make(chan []byte, 32),
	}

	if err := client.Subscribe(notifyChar, false, link.onNotify); err != nil {
		client.CancelConnection()
		return nil, fmt.Errorf("ble: subscribe to notify characteristic: %w", err)
	}

	go func() {
		<-client.Disconnected()
		close(link.notifyCh)
	}()

	return link, nil
}

func findCharacteristic(profile *ble.Profile, svc, ch ble.UUID) *ble.Characteristic {
	for _, s := range profile.Services {
		if !ble.Equal(s.UUID, svc) {
			continue
		}
		for _, c := range s.Characteristics {
			if ble.Equal(c.UUID, ch) {
				return c
			}
		}
	}
	return nil
}

func (l *Link) onNotify(data []byte) {
	chunk := append([]byte(nil), data...)
	select {
	case l.notifyCh <- chunk:
	default:
		l.log.Warn("ble: dropping notification, reader not keeping up")
	}
}

func (l *Link) Write(ctx context.Context, data []byte, wt transport.WriteType) error {
	noRsp := wt == transport.WriteWithoutResponse
	return l.client.WriteCharacteristic(l.writeChar, data, noRsp)
}

func (l *Link) Notifications() <-chan []byte {
	return l.notifyCh
}

func (l *Link) IsConnected() bool {
	select {
	case <-l.client.Disconnected():
		return false
	default:
		return true
	}
}

func (l *Link) Close() error {
	return l.client.CancelConnection()
}
