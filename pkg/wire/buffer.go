// Package wire implements the binary buffer for AdminGate frames.
package wire

import (
	"encoding/binary"
	"errors"
	"math"
)

var (
	// ErrShortBuffer indicates a read past the end of the written bytes.
	ErrShortBuffer = errors.New("wire: read past end of buffer")

	// ErrStringTooLong indicates a string exceeding the 16-bit length prefix.
	ErrStringTooLong = errors.New("wire: string exceeds 65535 bytes")
)

// Buffer is a growable byte buffer with a separate read cursor.
//
// Writes append to the end; reads consume from the front. All multi-byte
// integers are big-endian. A Buffer is not safe for concurrent use.
type Buffer struct {
	buf []byte
	off int
}

// NewBuffer returns an empty Buffer.
func NewBuffer() *Buffer {
	return &Buffer{}
}

// Wrap returns a Buffer reading from b. The slice is not copied.
func Wrap(b []byte) *Buffer {
	return &Buffer{buf: b}
}

// Bytes returns the unread portion of the buffer.
func (b *Buffer) Bytes() []byte {
	return b.buf[b.off:]
}

// Len returns the number of unread bytes.
func (b *Buffer) Len() int {
	return len(b.buf) - b.off
}

// Drained reports whether every written byte has been consumed by reads.
// A false result after parsing a complete message indicates trailing
// garbage; a short-buffer error during parsing indicates truncation.
func (b *Buffer) Drained() bool {
	return b.off >= len(b.buf)
}

// Reset discards all written and read state, retaining the backing array.
func (b *Buffer) Reset() {
	b.buf = b.buf[:0]
	b.off = 0
}

// WriteUint8 appends a single byte.
func (b *Buffer) WriteUint8(v byte) {
	b.buf = append(b.buf, v)
}

// WriteUint16 appends a big-endian 16-bit integer.
func (b *Buffer) WriteUint16(v uint16) {
	b.buf = binary.BigEndian.AppendUint16(b.buf, v)
}

// WriteUint32 appends a big-endian 32-bit integer.
func (b *Buffer) WriteUint32(v uint32) {
	b.buf = binary.BigEndian.AppendUint32(b.buf, v)
}

// WriteBytes appends a raw byte span with no length prefix.
func (b *Buffer) WriteBytes(p []byte) {
	b.buf = append(b.buf, p...)
}

// WriteString appends a 16-bit length prefix followed by the UTF-8 bytes
// of s. Strings longer than 65535 bytes are rejected.
func (b *Buffer) WriteString(s string) error {
	if len(s) > math.MaxUint16 {
		return ErrStringTooLong
	}
	b.WriteUint16(uint16(len(s)))
	b.buf = append(b.buf, s...)
	return nil
}

// ReadUint8 consumes and returns a single byte.
func (b *Buffer) ReadUint8() (byte, error) {
	if b.Len() < 1 {
		return 0, ErrShortBuffer
	}
	v := b.buf[b.off]
	b.off++
	return v, nil
}

// ReadUint16 consumes and returns a big-endian 16-bit integer.
func (b *Buffer) ReadUint16() (uint16, error) {
	if b.Len() < 2 {
		return 0, ErrShortBuffer
	}
	v := binary.BigEndian.Uint16(b.buf[b.off:])
	b.off += 2
	return v, nil
}

// ReadUint32 consumes and returns a big-endian 32-bit integer.
func (b *Buffer) ReadUint32() (uint32, error) {
	if b.Len() < 4 {
		return 0, ErrShortBuffer
	}
	v := binary.BigEndian.Uint32(b.buf[b.off:])
	b.off += 4
	return v, nil
}

// ReadBytes consumes and returns exactly n raw bytes. The returned slice
// aliases the buffer and is only valid until the next write.
func (b *Buffer) ReadBytes(n int) ([]byte, error) {
	if n < 0 || b.Len() < n {
		return nil, ErrShortBuffer
	}
	p := b.buf[b.off : b.off+n]
	b.off += n
	return p, nil
}

// ReadString consumes a 16-bit length prefix and that many UTF-8 bytes.
func (b *Buffer) ReadString() (string, error) {
	n, err := b.ReadUint16()
	if err != nil {
		return "", err
	}
	p, err := b.ReadBytes(int(n))
	if err != nil {
		return "", err
	}
	return string(p), nil
}
