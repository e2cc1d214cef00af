package rle

import "encoding/binary"

// ppduHeader is the decoded form of a PPDU header, a tagged variant
// over the four PPDU shapes. Per the Design Notes this replaces the
// original union-of-bitfields approach: fields are extracted with
// explicit bit shifts below, never by reinterpreting raw bytes as a
// struct, so the layout stays endian- and alignment-safe.
type ppduHeader struct {
	Type              PPDUType
	HeaderLen         int
	RLEPacketLength   int
	LabelType         uint8
	ProtoTypeSuppr    bool
	TotalALPDULength  int
	UseCRC            bool
	FragID            uint8
}

// buildCompleteHeader packs a 2-byte COMPLETE PPDU header (spec §6).
func buildCompleteHeader(payloadLen int, labelType uint8, suppr bool) ([]byte, *Status) {
	if payloadLen < 0 || payloadLen > maxRLEPacketLength {
		return nil, newStatus(CodePDUMalformed, -1, "rle_packet_length %d out of range", payloadLen)
	}
	buf := make([]byte, headerLenComplete)
	buf[0] = 1<<7 | 1<<6 | byte((payloadLen>>5)&0x3F)
	var supprBit byte
	if suppr {
		supprBit = 1
	}
	buf[1] = byte((payloadLen&0x1F)<<3) | (labelType&0x3)<<1 | supprBit
	return buf, nil
}

// buildStartHeader packs a 4-byte START PPDU header (spec §6).
func buildStartHeader(payloadLen, totalALPDULen int, labelType uint8, suppr, useCRC bool, fragID uint8) ([]byte, *Status) {
	if payloadLen < 0 || payloadLen > maxRLEPacketLength {
		return nil, newStatus(CodePDUMalformed, -1, "rle_packet_length %d out of range", payloadLen)
	}
	if totalALPDULen < 0 || totalALPDULen > maxTotalALPDULength {
		return nil, newStatus(CodePDUMalformed, -1, "total_alpdu_length %d out of range", totalALPDULen)
	}
	if fragID > MaxFragID {
		return nil, newStatus(CodePDUMalformed, -1, "frag_id %d out of range", fragID)
	}
	buf := make([]byte, headerLenStart)
	buf[0] = 1<<7 | 0<<6 | byte((payloadLen>>5)&0x3F)
	buf[1] = byte((payloadLen&0x1F)<<3) | (fragID & 0x7)

	var supprBit, crcBit uint16
	if suppr {
		supprBit = 1
	}
	if useCRC {
		crcBit = 1
	}
	ext := uint16(totalALPDULen&0xFFF)<<4 | uint16(labelType&0x3)<<2 | supprBit<<1 | crcBit
	binary.BigEndian.PutUint16(buf[2:4], ext)
	return buf, nil
}

// buildContEndHeader packs a 2-byte CONTINUE or END PPDU header (spec §6).
func buildContEndHeader(isEnd bool, payloadLen int, fragID uint8) ([]byte, *Status) {
	if payloadLen < 0 || payloadLen > maxRLEPacketLength {
		return nil, newStatus(CodePDUMalformed, -1, "rle_packet_length %d out of range", payloadLen)
	}
	if fragID > MaxFragID {
		return nil, newStatus(CodePDUMalformed, -1, "frag_id %d out of range", fragID)
	}
	buf := make([]byte, headerLenContEnd)
	var endBit byte
	if isEnd {
		endBit = 1
	}
	buf[0] = 0<<7 | endBit<<6 | byte((payloadLen>>5)&0x3F)
	buf[1] = byte((payloadLen&0x1F)<<3) | (fragID & 0x7)
	return buf, nil
}

// parsePPDUHeader reads one PPDU header from the front of data and
// reports the variant found plus its byte length. It never reads past
// the declared header length of the resolved variant.
func parsePPDUHeader(data []byte) (*ppduHeader, *Status) {
	if len(data) < headerLenComplete {
		return nil, newStatus(CodePDUMalformed, -1, "PPDU header truncated: %d bytes available", len(data))
	}

	b0 := data[0]
	startInd := b0 >> 7 & 1
	endInd := b0 >> 6 & 1
	highLen := int(b0 & 0x3F)

	var (
		ptype     PPDUType
		headerLen int
	)
	switch {
	case startInd == 1 && endInd == 1:
		ptype, headerLen = PPDUComplete, headerLenComplete
	case startInd == 1 && endInd == 0:
		ptype, headerLen = PPDUStart, headerLenStart
	case startInd == 0 && endInd == 0:
		ptype, headerLen = PPDUContinue, headerLenContEnd
	default:
		ptype, headerLen = PPDUEnd, headerLenContEnd
	}

	if len(data) < headerLen {
		return nil, newStatus(CodePDUMalformed, -1, "%s PPDU header truncated: need %d bytes, have %d", ptype, headerLen, len(data))
	}

	b1 := data[1]
	lowLen := int(b1>>3) & 0x1F
	length := highLen<<5 | lowLen

	h := &ppduHeader{Type: ptype, HeaderLen: headerLen, RLEPacketLength: length}

	switch ptype {
	case PPDUComplete:
		h.LabelType = (b1 >> 1) & 0x3
		h.ProtoTypeSuppr = b1&0x1 != 0
	case PPDUStart:
		h.FragID = b1 & 0x7
		ext := binary.BigEndian.Uint16(data[2:4])
		h.TotalALPDULength = int(ext>>4) & 0xFFF
		h.LabelType = uint8(ext>>2) & 0x3
		h.ProtoTypeSuppr = ext>>1&0x1 != 0
		h.UseCRC = ext&0x1 != 0
	case PPDUContinue, PPDUEnd:
		h.FragID = b1 & 0x7
	}

	return h, nil
}
