package rle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustConfig(t *testing.T, opts ...ConfigOption) *Config {
	t.Helper()
	cfg, err := NewConfig(opts...)
	require.NoError(t, err)
	return cfg
}

func TestResolveProtoTypeRejectsZero(t *testing.T) {
	cfg := mustConfig(t, WithALPDUSequenceNumber(true))
	_, st := resolveProtoType(cfg, 0, []byte{0x00, 0x00})
	require.NotNil(t, st)
	assert.Equal(t, CodeInvalidProtoType, st.Code)
}

func TestResolveProtoTypeOmission(t *testing.T) {
	cfg := mustConfig(t, WithPtypeOmission(true), WithALPDUSequenceNumber(true), WithImplicitProtocolType(0x0d))
	ph, st := resolveProtoType(cfg, ProtoTypeIPv4, []byte{0x45, 0x00})
	require.Nil(t, st)
	assert.Empty(t, ph.bytes)
	assert.True(t, ph.protoTypeSuppr)
	assert.Equal(t, labelOmitted, ph.labelType)
}

func TestResolveProtoTypeCompressedHit(t *testing.T) {
	cfg := mustConfig(t, WithCompressedPtype(true), WithALPDUSequenceNumber(true))
	ph, st := resolveProtoType(cfg, ProtoTypeIPv6, []byte{0x60, 0x00})
	require.Nil(t, st)
	assert.Equal(t, []byte{compIPv6}, ph.bytes)
	assert.Equal(t, labelCompressed, ph.labelType)
}

func TestResolveProtoTypeCompressedFallback(t *testing.T) {
	cfg := mustConfig(t, WithCompressedPtype(true), WithALPDUSequenceNumber(true))
	const unknown = uint16(0x1234)
	ph, st := resolveProtoType(cfg, unknown, []byte{0xAA})
	require.Nil(t, st)
	assert.Equal(t, []byte{compExtensionFallback, 0x12, 0x34}, ph.bytes)
}

func TestResolveProtoTypeUncompressed(t *testing.T) {
	cfg := mustConfig(t, WithALPDUSequenceNumber(true))
	ph, st := resolveProtoType(cfg, ProtoTypeARP, []byte{0x00, 0x01})
	require.Nil(t, st)
	assert.Equal(t, []byte{0x08, 0x06}, ph.bytes)
	assert.Equal(t, labelUncompressed, ph.labelType)
}

func TestResolveProtoTypeVLANWithoutPtype(t *testing.T) {
	cfg := mustConfig(t, WithCompressedPtype(true), WithALPDUSequenceNumber(true))
	sdu := []byte{0x00, 0x0a, 0x08, 0x00, 0x45, 0x00, 0x00, 0x14}
	ph, st := resolveProtoType(cfg, ProtoTypeVLAN, sdu)
	require.Nil(t, st)
	assert.Equal(t, []byte{compVLANWithoutPtypeField}, ph.bytes)
	assert.Equal(t, []byte{0x00, 0x0a, 0x45, 0x00, 0x00, 0x14}, ph.body)
}

func TestResolveProtoTypeVLANNotSpecialCasedWhenCompressionDisabled(t *testing.T) {
	// use_compressed_ptype off: VLAN falls through to uncompressed, no suppression.
	cfg := mustConfig(t, WithALPDUSequenceNumber(true))
	sdu := []byte{0x00, 0x0a, 0x86, 0xdd, 0x60, 0x00}
	ph, st := resolveProtoType(cfg, ProtoTypeVLAN, sdu)
	require.Nil(t, st)
	assert.Equal(t, []byte{0x81, 0x00}, ph.bytes)
	assert.Equal(t, sdu, ph.body)
}

func TestParseProtoTypeRoundTripUncompressed(t *testing.T) {
	cfg := mustConfig(t, WithALPDUSequenceNumber(true))
	body := []byte{0x08, 0x06, 0xDE, 0xAD}
	dp, st := parseProtoType(cfg, labelUncompressed, false, body)
	require.Nil(t, st)
	assert.Equal(t, ProtoTypeARP, dp.ptype)
	assert.Equal(t, 2, dp.headerLen)
}

func TestParseProtoTypeRoundTripCompressedFallback(t *testing.T) {
	cfg := mustConfig(t, WithCompressedPtype(true), WithALPDUSequenceNumber(true))
	body := []byte{compExtensionFallback, 0x12, 0x34, 0xFF}
	dp, st := parseProtoType(cfg, labelCompressed, false, body)
	require.Nil(t, st)
	assert.Equal(t, uint16(0x1234), dp.ptype)
	assert.Equal(t, 3, dp.headerLen)
}

func TestParseProtoTypeAmbiguousImplicit(t *testing.T) {
	cfg := mustConfig(t, WithPtypeOmission(true), WithALPDUSequenceNumber(true), WithImplicitProtocolType(ImplicitIPAmbiguous))
	dp, st := parseProtoType(cfg, labelOmitted, true, []byte{0x60, 0x00})
	require.Nil(t, st)
	assert.Equal(t, ProtoTypeIPv6, dp.ptype)
}

func TestParseProtoTypeAmbiguousImplicitRejectsBadNibble(t *testing.T) {
	cfg := mustConfig(t, WithPtypeOmission(true), WithALPDUSequenceNumber(true), WithImplicitProtocolType(ImplicitIPAmbiguous))
	_, st := parseProtoType(cfg, labelOmitted, true, []byte{0x90, 0x00})
	require.NotNil(t, st)
	assert.Equal(t, CodeUnknownIPVersion, st.Code)
}
