package util

import (
	"encoding/binary"
	"io"

	"github.com/batchatco/go-thrower"
)

// NativeByteOrder is the byte order of the host machine.
var NativeByteOrder binary.ByteOrder = binary.NativeEndian

// MustWrite wraps binary.Write and throws an error if it fails.
func MustWrite(w io.Writer, order binary.ByteOrder, data any) {
	err := binary.Write(w, order, data)
	thrower.ThrowIfError(err)
}

// MustWriteByte wraps WriteByte and throws an error if it fails.
func MustWriteByte(w io.ByteWriter, c byte) {
	err := w.WriteByte(c)
	thrower.ThrowIfError(err)
}

// MustRead wraps binary.Read and throws an error if it fails.
func MustRead(r io.Reader, order binary.ByteOrder, data any) {
	err := binary.Read(r, order, data)
	thrower.ThrowIfError(err)
}

// MustRead8 reads a single byte and throws an error if it fails.
func MustRead8(r io.Reader) byte {
	var b byte
	MustRead(r, NativeByteOrder, &b)
	return b
}
