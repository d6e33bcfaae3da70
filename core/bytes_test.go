package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUint32Bytes(t *testing.T) {
	assert.Equal(t, []byte{0, 0, 0, 0}, Uint32Bytes(0))
	assert.Equal(t, []byte{0, 0, 0, 5}, Uint32Bytes(5))
	assert.Equal(t, []byte{0x01, 0x02, 0x03, 0x04}, Uint32Bytes(0x01020304))
	assert.Equal(t, []byte{0xFF, 0xFF, 0xFF, 0xFF}, Uint32Bytes(MaxUint32Length))
}

func TestLowByte(t *testing.T) {
	assert.Equal(t, byte(4), LowByte(4))
	assert.Equal(t, byte(255), LowByte(255))
	assert.Equal(t, byte(0), LowByte(256))
	assert.Equal(t, byte(0x34), LowByte(0x1234))
}
