package rle

// Protocol-type header label_type values (spec §6). labelOmitted and
// labelUncompressed are self-explanatory; labelCompressed covers both
// the one-byte compressed encoding and its three-byte 0xFF extension
// fallback, since the wire format of that header is self-describing
// from its first byte alone.
const (
	labelOmitted      uint8 = 0
	labelCompressed   uint8 = 1
	labelUncompressed uint8 = 2
)

// compressTable is the encode-direction protocol-type compression
// table of spec §4.2 step 2.
var compressTable = map[uint16]uint8{
	ProtoTypeIPv4:       compIPv4,
	ProtoTypeIPv6:       compIPv6,
	ProtoTypeVLAN:       compVLAN,
	ProtoTypeQinQ:       compQinQ,
	ProtoTypeQinQLegacy: compQinQLegacy,
	ProtoTypeARP:        compARP,
	ProtoTypeSignal:     compSignal,
}

// decompressTable is the decode-direction inverse of compressTable,
// plus the reserved byte 0x31 (VLAN without inner ptype) that
// compressTable never produces directly for a known EtherType. The
// reserved byte 0x30 (ambiguous IP) is not in this table, so a
// compressed header carrying it is rejected by parseProtoType.
var decompressTable = map[uint8]uint16{
	compIPv4:                  ProtoTypeIPv4,
	compIPv6:                  ProtoTypeIPv6,
	compVLAN:                  ProtoTypeVLAN,
	compQinQ:                  ProtoTypeQinQ,
	compQinQLegacy:            ProtoTypeQinQLegacy,
	compARP:                   ProtoTypeARP,
	compSignal:                ProtoTypeSignal,
	compVLANWithoutPtypeField: ProtoTypeVLAN,
}

// isSuppressible implements the exhaustive suppressibility table of
// spec §4.2 step 1.
func isSuppressible(ptype uint16, implicit uint8) bool {
	switch ptype {
	case ProtoTypeSignal:
		return true
	case ProtoTypeVLAN:
		return implicit == 0x0f
	case ProtoTypeQinQ:
		return implicit == 0x19
	case ProtoTypeQinQLegacy:
		return implicit == 0x1a
	case ProtoTypeIPv4:
		return implicit == 0x0d || implicit == ImplicitIPAmbiguous
	case ProtoTypeIPv6:
		return implicit == 0x11 || implicit == ImplicitIPAmbiguous
	case ProtoTypeARP:
		return implicit == 0x0e
	default:
		return false
	}
}

// innerVLANEtherType returns the EtherType carried inside an SDU whose
// outer protocol type is VLAN (the two bytes following the 2-byte TCI),
// and whether the SDU is long enough to contain it.
func innerVLANEtherType(sdu []byte) (uint16, bool) {
	if len(sdu) < 4 {
		return 0, false
	}
	return uint16(sdu[2])<<8 | uint16(sdu[3]), true
}

// protoHeader is the result of resolving the protocol-type encoding for
// one SDU at encapsulation time.
type protoHeader struct {
	bytes          []byte // the 0/1/2/3-byte header to prepend to the ALPDU body
	labelType      uint8
	protoTypeSuppr bool
	// body is the SDU payload to store after the header: identical to
	// the caller's SDU bytes, except in the VLAN-without-ptype case
	// where the inner EtherType is stripped.
	body []byte
}

// resolveProtoType implements spec §4.2 in full, including the
// VLAN-carrying-IP special case. The special case is gated on
// UseCompressedPtype, since byte 0x31 is itself a compressed-table
// value — see DESIGN.md for this resolved Open Question.
func resolveProtoType(cfg *Config, ptype uint16, sdu []byte) (*protoHeader, *Status) {
	if ptype == 0 {
		return nil, newStatus(CodeInvalidProtoType, -1, "protocol_type 0x0000 is not a valid EtherType")
	}

	if cfg.UseCompressedPtype && ptype == ProtoTypeVLAN {
		if inner, ok := innerVLANEtherType(sdu); ok && (inner == ProtoTypeIPv4 || inner == ProtoTypeIPv6) {
			return &protoHeader{
				bytes:          []byte{compVLANWithoutPtypeField},
				labelType:      labelCompressed,
				protoTypeSuppr: false,
				body:           append(append([]byte{}, sdu[:2]...), sdu[4:]...),
			}, nil
		}
	}

	if cfg.AllowPtypeOmission && isSuppressible(ptype, cfg.ImplicitProtocolType) {
		return &protoHeader{
			bytes:          nil,
			labelType:      labelOmitted,
			protoTypeSuppr: true,
			body:           sdu,
		}, nil
	}

	if cfg.UseCompressedPtype {
		if b, ok := compressTable[ptype]; ok {
			return &protoHeader{
				bytes:          []byte{b},
				labelType:      labelCompressed,
				protoTypeSuppr: false,
				body:           sdu,
			}, nil
		}
		hdr := []byte{compExtensionFallback, byte(ptype >> 8), byte(ptype)}
		return &protoHeader{
			bytes:          hdr,
			labelType:      labelCompressed,
			protoTypeSuppr: false,
			body:           sdu,
		}, nil
	}

	hdr := []byte{byte(ptype >> 8), byte(ptype)}
	return &protoHeader{
		bytes:          hdr,
		labelType:      labelUncompressed,
		protoTypeSuppr: false,
		body:           sdu,
	}, nil
}

// decodedProtoType is the outcome of parsing the protocol-type header
// back out of a reassembled ALPDU.
type decodedProtoType struct {
	ptype            uint16
	headerLen        int
	vlanWithoutPtype bool
}

// parseProtoType inverts resolveProtoType given the label_type and
// proto_type_suppr bits carried in the PPDU header, and the ALPDU
// bytes starting at the protocol-type header (or SDU, if omitted).
func parseProtoType(cfg *Config, labelType uint8, protoTypeSuppr bool, body []byte) (*decodedProtoType, *Status) {
	if protoTypeSuppr || labelType == labelOmitted {
		ptype := uint16(cfg.ImplicitProtocolType)
		if cfg.ImplicitProtocolType == ImplicitIPAmbiguous {
			if len(body) < 1 {
				return nil, newStatus(CodeSDUTooShortForVLANReconstruction, -1, "empty body, cannot infer IP version")
			}
			switch body[0] >> 4 {
			case 4:
				ptype = ProtoTypeIPv4
			case 6:
				ptype = ProtoTypeIPv6
			default:
				return nil, newStatus(CodeUnknownIPVersion, -1, "unexpected IP version nibble %#x", body[0]>>4)
			}
		} else {
			ptype = implicitToEtherType(cfg.ImplicitProtocolType)
		}
		return &decodedProtoType{ptype: ptype, headerLen: 0}, nil
	}

	switch labelType {
	case labelUncompressed:
		if len(body) < 2 {
			return nil, newStatus(CodePDUMalformed, -1, "uncompressed protocol-type header truncated")
		}
		return &decodedProtoType{ptype: uint16(body[0])<<8 | uint16(body[1]), headerLen: 2}, nil

	case labelCompressed:
		if len(body) < 1 {
			return nil, newStatus(CodePDUMalformed, -1, "compressed protocol-type header truncated")
		}
		b := body[0]
		if b == compExtensionFallback {
			if len(body) < 3 {
				return nil, newStatus(CodePDUMalformed, -1, "compressed extension header truncated")
			}
			return &decodedProtoType{ptype: uint16(body[1])<<8 | uint16(body[2]), headerLen: 3}, nil
		}
		if b == compVLANWithoutPtypeField {
			return &decodedProtoType{ptype: ProtoTypeVLAN, headerLen: 1, vlanWithoutPtype: true}, nil
		}
		ptype, ok := decompressTable[b]
		if !ok {
			return nil, newStatus(CodePDUMalformed, -1, "unknown compressed protocol type byte %#x", b)
		}
		return &decodedProtoType{ptype: ptype, headerLen: 1}, nil

	default:
		return nil, newStatus(CodePDUMalformed, -1, "unsupported label_type %d", labelType)
	}
}

// implicitToEtherType maps a non-ambiguous implicit_protocol_type value
// back to the EtherType it stands for, mirroring isSuppressible's table.
func implicitToEtherType(implicit uint8) uint16 {
	switch implicit {
	case 0x0f:
		return ProtoTypeVLAN
	case 0x19:
		return ProtoTypeQinQ
	case 0x1a:
		return ProtoTypeQinQLegacy
	case 0x0d:
		return ProtoTypeIPv4
	case 0x11:
		return ProtoTypeIPv6
	case 0x0e:
		return ProtoTypeARP
	default:
		return ProtoTypeSignal
	}
}
