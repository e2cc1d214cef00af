package rle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildAndParseCompleteHeader(t *testing.T) {
	hdr, st := buildCompleteHeader(101, labelCompressed, false)
	require.Nil(t, st)
	require.Len(t, hdr, headerLenComplete)

	parsed, perr := parsePPDUHeader(append(hdr, make([]byte, 101)...))
	require.Nil(t, perr)
	assert.Equal(t, PPDUComplete, parsed.Type)
	assert.Equal(t, 101, parsed.RLEPacketLength)
	assert.Equal(t, uint8(labelCompressed), parsed.LabelType)
	assert.False(t, parsed.ProtoTypeSuppr)
}

func TestBuildAndParseStartHeader(t *testing.T) {
	hdr, st := buildStartHeader(496, 1503, labelUncompressed, false, true, 5)
	require.Nil(t, st)
	require.Len(t, hdr, headerLenStart)

	parsed, perr := parsePPDUHeader(append(hdr, make([]byte, 496)...))
	require.Nil(t, perr)
	assert.Equal(t, PPDUStart, parsed.Type)
	assert.Equal(t, 496, parsed.RLEPacketLength)
	assert.Equal(t, 1503, parsed.TotalALPDULength)
	assert.Equal(t, uint8(labelUncompressed), parsed.LabelType)
	assert.True(t, parsed.UseCRC)
	assert.Equal(t, uint8(5), parsed.FragID)
}

func TestBuildAndParseContEndHeader(t *testing.T) {
	cont, st := buildContEndHeader(false, 498, 2)
	require.Nil(t, st)
	p, perr := parsePPDUHeader(append(cont, make([]byte, 498)...))
	require.Nil(t, perr)
	assert.Equal(t, PPDUContinue, p.Type)
	assert.Equal(t, uint8(2), p.FragID)

	end, st := buildContEndHeader(true, 10, 2)
	require.Nil(t, st)
	p, perr = parsePPDUHeader(append(end, make([]byte, 10)...))
	require.Nil(t, perr)
	assert.Equal(t, PPDUEnd, p.Type)
}

func TestParsePPDUHeaderTruncated(t *testing.T) {
	_, perr := parsePPDUHeader([]byte{0x80})
	require.NotNil(t, perr)
	assert.Equal(t, CodePDUMalformed, perr.Code)
}

func TestBuildStartHeaderRejectsOversizedFragID(t *testing.T) {
	_, st := buildStartHeader(1, 1, 0, false, false, 8)
	require.NotNil(t, st)
}

func TestBuildStartHeaderRejectsOversizedTotalLength(t *testing.T) {
	_, st := buildStartHeader(1, maxTotalALPDULength+1, 0, false, false, 0)
	require.NotNil(t, st)
}

func TestRLEPacketLengthBoundary(t *testing.T) {
	hdr, st := buildCompleteHeader(maxRLEPacketLength, 0, false)
	require.Nil(t, st)
	parsed, perr := parsePPDUHeader(append(hdr, make([]byte, maxRLEPacketLength)...))
	require.Nil(t, perr)
	assert.Equal(t, maxRLEPacketLength, parsed.RLEPacketLength)

	_, st = buildCompleteHeader(maxRLEPacketLength+1, 0, false)
	require.NotNil(t, st)
}
