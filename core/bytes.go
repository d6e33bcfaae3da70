package core

import (
	"encoding/binary"
	"math"
)

// MaxUint32Length is the largest value a 4-byte length field can carry.
const MaxUint32Length = math.MaxUint32

// Uint32Bytes returns v as 4 bytes in big-endian order, the canonical byte
// order of every multi-byte field in a container.
func Uint32Bytes(v uint32) []byte {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, v)
	return b
}

// LowByte truncates a 16-bit length to its low byte, as used by 1-byte
// name length fields.
func LowByte(v uint16) byte {
	return byte(v & 0xFF)
}
