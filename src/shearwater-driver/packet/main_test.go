package packet

import (
	"bytes"
	"testing"
)

func TestBuild(t *testing.T) {
	payload := []byte{0x22, 0x80, 0x10}
	got := Build(payload)
	want := []byte{0xFF, 0x01, byte(len(payload) + 1), 0x00, 0x22, 0x80, 0x10}
	if !bytes.Equal(got, want) {
		t.Fatalf("Build = %x, want %x", got, want)
	}
}

func TestValidate(t *testing.T) {
	payload := []byte{0x62, 0x80, 0x10, 0x01, 0x02}
	l := byte(len(payload) + 1)
	pkt := []byte{0x01, 0xFF, l, 0x00}
	pkt = append(pkt, payload...)

	got, err := Validate(pkt)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("Validate payload = %x, want %x", got, payload)
	}
}

func TestValidateRejectsBadHeader(t *testing.T) {
	cases := [][]byte{
		{0x02, 0xFF, 0x01, 0x00},
		{0x01, 0xFE, 0x01, 0x00},
		{0x01, 0xFF, 0x01, 0x01},
	}
	for _, pkt := range cases {
		if _, err := Validate(pkt); err != ErrInvalidHeader {
			t.Errorf("Validate(%x) = %v, want ErrInvalidHeader", pkt, err)
		}
	}
}

func TestValidateRejectsBadLength(t *testing.T) {
	cases := [][]byte{
		{0x01, 0xFF, 0x00, 0x00},
		{0x01, 0xFF, 0x05, 0x00, 0x01},
	}
	for _, pkt := range cases {
		if _, err := Validate(pkt); err != ErrInvalidLength {
			t.Errorf("Validate(%x) = %v, want ErrInvalidLength", pkt, err)
		}
	}
}

func TestValidateTooShort(t *testing.T) {
	if _, err := Validate([]byte{0x01, 0xFF}); err != ErrInvalidHeader {
		t.Fatalf("Validate(short) = %v, want ErrInvalidHeader", err)
	}
}
