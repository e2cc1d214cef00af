package rle

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCRCChecksumKnownVector(t *testing.T) {
	// "123456789" is the standard CRC-32/ISO-HDLC check vector.
	got := crcChecksum([]byte("123456789"))
	assert.Equal(t, uint32(0xCBF43926), got)
}

func TestCRCChecksumEmpty(t *testing.T) {
	assert.Equal(t, uint32(0), crcChecksum(nil))
}

func TestCRCChecksumDiffersOnBitFlip(t *testing.T) {
	a := []byte{0x01, 0x02, 0x03, 0x04}
	b := []byte{0x01, 0x02, 0x03, 0x05}
	assert.NotEqual(t, crcChecksum(a), crcChecksum(b))
}
