package rle

import "fmt"

// Code is a taxonomy of user-visible error kinds (spec §7). Callers
// can switch on Code instead of string-matching error text.
type Code uint8

const (
	// CodeOK is never returned as an error; it exists so the zero
	// value of Code is not a valid failure.
	CodeOK Code = iota

	// Configuration
	CodeInvalidConfig

	// Encapsulate
	CodeNullTransmitter
	CodeSDUTooBig
	CodeFragContextBusy
	CodeInvalidProtoType
	// CodeInvalidFragID is returned when a caller passes a frag_id
	// outside [0, MAX_FRAG_ID]; distinct from CodeInvalidProtoType,
	// which is reserved for a protocol-type resolution failure.
	CodeInvalidFragID

	// Fragment
	CodeNullFragBuffer
	CodeFragBufferNotInit
	CodeBurstTooSmall
	CodeContextEmpty

	// Decap
	CodePDUMalformed
	CodeUnexpectedPPDU
	CodeTrailerBadCRC
	CodeSDUTooShortForVLANReconstruction
	CodeUnknownIPVersion
)

func (c Code) String() string {
	switch c {
	case CodeInvalidConfig:
		return "INV_CFG"
	case CodeNullTransmitter:
		return "NULL_TRMT"
	case CodeSDUTooBig:
		return "SDU_TOO_BIG"
	case CodeFragContextBusy:
		return "FRAG_CTX_BUSY"
	case CodeInvalidProtoType:
		return "INV_PTYPE"
	case CodeInvalidFragID:
		return "INV_FRAG_ID"
	case CodeNullFragBuffer:
		return "NULL_FBUF"
	case CodeFragBufferNotInit:
		return "N_INIT_FBUF"
	case CodeBurstTooSmall:
		return "BURST_TOO_SMALL"
	case CodeContextEmpty:
		return "CTX_EMPTY"
	case CodePDUMalformed:
		return "PPDU_MALFORMED"
	case CodeUnexpectedPPDU:
		return "UNEXPECTED_PPDU"
	case CodeTrailerBadCRC:
		return "TRAILER_BAD_CRC"
	case CodeSDUTooShortForVLANReconstruction:
		return "SDU_TOO_SHORT_FOR_VLAN_RECONSTRUCTION"
	case CodeUnknownIPVersion:
		return "UNKNOWN_IP_VERSION"
	default:
		return "OK"
	}
}

// Status is the explicit error type returned across the whole public
// API (spec §7: "No exceptions across API boundary; every operation
// returns an explicit status").
type Status struct {
	Code    Code
	Message string
	// FragID identifies the affected context when relevant. A value
	// of -1 means "not applicable".
	FragID int
}

func (s *Status) Error() string {
	if s.FragID >= 0 {
		return fmt.Sprintf("rle: %s (frag_id=%d): %s", s.Code, s.FragID, s.Message)
	}
	return fmt.Sprintf("rle: %s: %s", s.Code, s.Message)
}

func newStatus(code Code, fragID int, format string, args ...any) *Status {
	return &Status{Code: code, FragID: fragID, Message: fmt.Sprintf(format, args...)}
}

// statusCode extracts the Code carried by err, if any, returning
// false for errors that did not originate from this package.
func statusCode(err error) (Code, bool) {
	s, ok := err.(*Status)
	if !ok {
		return 0, false
	}
	return s.Code, true
}
