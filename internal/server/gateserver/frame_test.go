package gateserver

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/tehnewb/admingate/internal/core/domain"
)

func TestFrame_RoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		payload []byte
	}{
		{"small", []byte("hello")},
		{"single byte", []byte{0x00}},
		{"binary", bytes.Repeat([]byte{0xff, 0x00}, 512)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := WriteFrame(&buf, tt.payload, 64*1024); err != nil {
				t.Fatalf("write: %v", err)
			}
			got, err := ReadFrame(&buf, 64*1024)
			if err != nil {
				t.Fatalf("read: %v", err)
			}
			if !bytes.Equal(got, tt.payload) {
				t.Errorf("payload mismatch: got %d bytes, want %d", len(got), len(tt.payload))
			}
		})
	}
}

func TestFrame_ZeroLength(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteFrame(&buf, nil, 1024); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err := ReadFrame(&buf, 1024)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if got != nil {
		t.Errorf("zero frame payload = %v, want nil", got)
	}
}

func TestFrame_WriteOversized(t *testing.T) {
	var buf bytes.Buffer
	err := WriteFrame(&buf, make([]byte, 2048), 1024)
	if !errors.Is(err, domain.ErrFrameTooLarge) {
		t.Fatalf("err = %v, want ErrFrameTooLarge", err)
	}
	if buf.Len() != 0 {
		t.Error("oversized write emitted bytes")
	}
}

func TestFrame_ReadOversizedPrefix(t *testing.T) {
	// Prefix declares 1 MiB against a 1 KiB limit.
	raw := []byte{0x00, 0x10, 0x00, 0x00}
	_, err := ReadFrame(bytes.NewReader(raw), 1024)
	if !errors.Is(err, domain.ErrFrameTooLarge) {
		t.Fatalf("err = %v, want ErrFrameTooLarge", err)
	}
}

func TestFrame_Truncated(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteFrame(&buf, []byte("complete payload"), 1024); err != nil {
		t.Fatalf("write: %v", err)
	}
	raw := buf.Bytes()[:buf.Len()-4]

	_, err := ReadFrame(bytes.NewReader(raw), 1024)
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Fatalf("err = %v, want ErrUnexpectedEOF", err)
	}
}

func TestFrame_ShortPrefix(t *testing.T) {
	_, err := ReadFrame(bytes.NewReader([]byte{0x00, 0x01}), 1024)
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Fatalf("err = %v, want ErrUnexpectedEOF", err)
	}
}
