// Package wire implements the binary buffer every AdminGate frame is
// built on: big-endian fixed-width integers, 16-bit length-prefixed
// UTF-8 strings, and raw byte spans over a growable backing slice.
package wire
