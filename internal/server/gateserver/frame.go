package gateserver

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/tehnewb/admingate/internal/core/domain"
)

// Frames carry a 4-byte big-endian length prefix followed by the
// payload. A zero-length frame is legal on the wire and is discarded
// by the reader's caller.
const framePrefixLen = 4

// WriteFrame writes one length-prefixed frame.
func WriteFrame(w io.Writer, payload []byte, maxSize int) error {
	if len(payload) > maxSize {
		return domain.ErrFrameTooLarge.WithDetails(
			fmt.Sprintf("%d bytes exceeds limit %d", len(payload), maxSize))
	}
	var prefix [framePrefixLen]byte
	binary.BigEndian.PutUint32(prefix[:], uint32(len(payload)))
	if _, err := w.Write(prefix[:]); err != nil {
		return err
	}
	_, err := w.Write(payload)
	return err
}

// ReadFrame reads one length-prefixed frame. An oversized prefix is a
// protocol violation and poisons the stream, so the caller must close
// the connection on domain.ErrFrameTooLarge.
func ReadFrame(r io.Reader, maxSize int) ([]byte, error) {
	n, err := readFrameLen(r, maxSize)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil
	}
	return readFrameBody(r, n)
}

// readFrameLen reads and validates a frame's length prefix. Splitting
// the prefix read from the body read lets the server apply a separate
// deadline to each phase.
func readFrameLen(r io.Reader, maxSize int) (int, error) {
	var prefix [framePrefixLen]byte
	if _, err := io.ReadFull(r, prefix[:]); err != nil {
		return 0, err
	}
	n := binary.BigEndian.Uint32(prefix[:])
	if n > uint32(maxSize) {
		return 0, domain.ErrFrameTooLarge.WithDetails(
			fmt.Sprintf("%d bytes exceeds limit %d", n, maxSize))
	}
	return int(n), nil
}

func readFrameBody(r io.Reader, n int) ([]byte, error) {
	payload := make([]byte, n)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, err
	}
	return payload, nil
}
