package rle

// reconstructVLANSDU rebuilds a VLAN SDU whose inner EtherType was
// suppressed by the 0x31 encoding (spec §4.2, §4.4). payload is the
// reassembled ALPDU body after the 1-byte protocol-type header:
// TCI(2 bytes) followed directly by the IP packet, with no inner
// EtherType field. The returned SDU is 2 bytes longer than payload.
func reconstructVLANSDU(payload []byte) ([]byte, *Status) {
	if len(payload) < 3 {
		return nil, newStatus(CodeSDUTooShortForVLANReconstruction, -1, "need at least 3 bytes (TCI + 1 IP byte), got %d", len(payload))
	}

	var innerEtherType uint16
	switch payload[2] >> 4 {
	case 4:
		innerEtherType = ProtoTypeIPv4
	case 6:
		innerEtherType = ProtoTypeIPv6
	default:
		return nil, newStatus(CodeUnknownIPVersion, -1, "unexpected IP version nibble %#x", payload[2]>>4)
	}

	sdu := make([]byte, len(payload)+2)
	copy(sdu[0:2], payload[0:2])
	sdu[2] = byte(innerEtherType >> 8)
	sdu[3] = byte(innerEtherType)
	copy(sdu[4:], payload[2:])
	return sdu, nil
}
