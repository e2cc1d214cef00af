package rle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigRejectsReservedMap(t *testing.T) {
	cfg, err := NewConfig(
		WithALPDUSequenceNumber(true),
		func(c *Config) { c.UseExplicitPayloadHeaderMap = true },
	)
	require.Error(t, err)
	require.Nil(t, cfg)
	code, ok := statusCode(err)
	require.True(t, ok)
	assert.Equal(t, CodeInvalidConfig, code)
}

func TestNewConfigRequiresATrailer(t *testing.T) {
	_, err := NewConfig(WithPtypeOmission(true))
	require.Error(t, err)
}

func TestNewConfigRejectsImplicitPtypeOutOfRange(t *testing.T) {
	_, err := NewConfig(
		WithALPDUSequenceNumber(true),
		WithImplicitProtocolType(0x31),
	)
	require.Error(t, err)
}

func TestNewConfigRejectsOversizedLabel(t *testing.T) {
	_, err := NewConfig(
		WithALPDUSequenceNumber(true),
		WithLabelSizes(16, 0, 0),
	)
	require.Error(t, err)
}

func TestNewConfigAccepts(t *testing.T) {
	cfg, err := NewConfig(
		WithPtypeOmission(true),
		WithCompressedPtype(true),
		WithALPDUSequenceNumber(true),
		WithImplicitProtocolType(0x0d),
		WithLabelSizes(0, 0, 0),
	)
	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.False(t, cfg.useCRCTrailer())
	assert.Equal(t, trailerLenSeqno, cfg.trailerLen())
}

func TestUseCRCTrailerRule(t *testing.T) {
	crcOnly, err := NewConfig(WithALPDUCRC(true))
	require.NoError(t, err)
	assert.True(t, crcOnly.useCRCTrailer())

	both, err := NewConfig(WithALPDUCRC(true), WithALPDUSequenceNumber(true))
	require.NoError(t, err)
	assert.False(t, both.useCRCTrailer(), "seqno must win when both are permitted")
}
