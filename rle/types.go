// Package rle implements the Return Link Encapsulation (RLE) framing
// protocol used on DVB-RCS2 satellite return-link channels: it wraps
// variable-length upper-layer SDUs (Ethernet, IPv4, IPv6, VLAN,
// signalling) into fixed-size link-layer bursts and back.
package rle

import "fmt"

// PPDUType distinguishes the four PPDU framing shapes, selected by the
// start_ind/end_ind bit pair in the PPDU header (spec §3, §6).
type PPDUType uint8

const (
	// PPDUComplete carries a whole, unfragmented ALPDU.
	PPDUComplete PPDUType = iota
	// PPDUStart begins a fragmented ALPDU.
	PPDUStart
	// PPDUContinue carries a middle slice of a fragmented ALPDU.
	PPDUContinue
	// PPDUEnd carries the final slice of a fragmented ALPDU, including
	// the trailer.
	PPDUEnd
)

func (t PPDUType) String() string {
	switch t {
	case PPDUComplete:
		return "COMPLETE"
	case PPDUStart:
		return "START"
	case PPDUContinue:
		return "CONTINUE"
	case PPDUEnd:
		return "END"
	default:
		return fmt.Sprintf("PPDUType(%d)", uint8(t))
	}
}

// ContextState is the lifecycle of a fragmentation or reassembly
// context (spec §3).
type ContextState uint8

const (
	// StateFree means the context holds no in-flight ALPDU.
	StateFree ContextState = iota
	// StateStaged means a transmitter context has an ALPDU queued to
	// be fragmented out.
	StateStaged
	// StateInProgress means a receiver context is mid-reassembly.
	StateInProgress
)

func (s ContextState) String() string {
	switch s {
	case StateFree:
		return "FREE"
	case StateStaged:
		return "STAGED"
	case StateInProgress:
		return "IN_PROGRESS"
	default:
		return fmt.Sprintf("ContextState(%d)", uint8(s))
	}
}

// Protocol-type byte values reserved by the RLE compression table
// (spec §4.2, §6).
const (
	ProtoTypeSignal           uint16 = 0x0082
	ProtoTypeVLAN             uint16 = 0x8100
	ProtoTypeQinQ             uint16 = 0x88a8
	ProtoTypeQinQLegacy       uint16 = 0x9100
	ProtoTypeIPv4             uint16 = 0x0800
	ProtoTypeIPv6             uint16 = 0x86dd
	ProtoTypeARP              uint16 = 0x0806
	compIPv4                  uint8  = 0x0d
	compIPv6                  uint8  = 0x11
	compVLAN                  uint8  = 0x0f
	compQinQ                  uint8  = 0x19
	compQinQLegacy            uint8  = 0x1a
	compARP                   uint8  = 0x0e
	compSignal                uint8  = 0x42
	compIPAmbiguous           uint8  = 0x30
	compVLANWithoutPtypeField uint8  = 0x31
	compExtensionFallback     uint8  = 0xff

	// ImplicitIPAmbiguous is the sentinel implicit protocol type that
	// means "omit for IPv4 or IPv6" (reconstructed on receive from the
	// first nibble of the SDU).
	ImplicitIPAmbiguous uint8 = compIPAmbiguous
	// maxImplicitProtocolType is the highest valid implicit_protocol_type.
	maxImplicitProtocolType uint8 = 0x30
)

// Wire-format and sizing constants (spec §6).
const (
	// MaxSDUSize is the largest SDU payload this library will encapsulate.
	MaxSDUSize = 4088
	// MaxFragID is the highest valid 3-bit fragmentation identifier.
	MaxFragID = 7
	// NumContexts is the number of parallel fragmentation/reassembly
	// contexts (one per 3-bit frag_id).
	NumContexts = MaxFragID + 1
	// MaxALPDUBuffer is the worst-case ALPDU size a context must hold.
	MaxALPDUBuffer = 4096

	headerLenComplete = 2
	headerLenStart    = 4
	headerLenContEnd  = 2

	trailerLenSeqno = 1
	trailerLenCRC   = 4

	maxRLEPacketLength  = (1 << 11) - 1 // 11-bit field
	maxTotalALPDULength = (1 << 12) - 1 // 12-bit field
)

// FPDUKind selects which deterministic-overhead table GetHeaderSize
// consults (spec §6).
type FPDUKind uint8

const (
	FPDUTraffic FPDUKind = iota
	FPDULogon
	FPDUCtrl
	FPDUTrafficCtrl
)
