package rle

// Config is the validated, per-link policy shared by a Transmitter and
// a Receiver (spec §4.1). It is immutable once constructed by
// NewConfig: any invalid combination of options fails construction
// rather than surfacing later as a runtime error.
type Config struct {
	AllowPtypeOmission        bool
	UseCompressedPtype        bool
	AllowALPDUCRC             bool
	AllowALPDUSequenceNumber  bool
	UseExplicitPayloadHeaderMap bool

	// ImplicitProtocolType is the per-link default protocol type used
	// when the ALPDU header is omitted. 0x30 is the sentinel meaning
	// "omit for IPv4 or IPv6" (reconstructed from the first nibble of
	// the SDU on receive).
	ImplicitProtocolType uint8

	ImplicitPPDULabelSize    uint8
	ImplicitPayloadLabelSize uint8
	Type0ALPDULabelSize      uint8
}

// ConfigOption mutates a Config under construction.
type ConfigOption func(*Config)

// WithPtypeOmission enables suppressing the ALPDU protocol-type header
// when the SDU's protocol matches ImplicitProtocolType.
func WithPtypeOmission(allow bool) ConfigOption {
	return func(c *Config) { c.AllowPtypeOmission = allow }
}

// WithCompressedPtype enables the one-byte (or three-byte fallback)
// protocol-type encoding when the header is not omitted.
func WithCompressedPtype(use bool) ConfigOption {
	return func(c *Config) { c.UseCompressedPtype = use }
}

// WithALPDUCRC permits the 32-bit CRC trailer.
func WithALPDUCRC(allow bool) ConfigOption {
	return func(c *Config) { c.AllowALPDUCRC = allow }
}

// WithALPDUSequenceNumber permits the 1-byte sequence-number trailer.
func WithALPDUSequenceNumber(allow bool) ConfigOption {
	return func(c *Config) { c.AllowALPDUSequenceNumber = allow }
}

// WithImplicitProtocolType sets the per-link default protocol type.
func WithImplicitProtocolType(v uint8) ConfigOption {
	return func(c *Config) { c.ImplicitProtocolType = v }
}

// WithLabelSizes sets the three nibble-sized label-length fields.
func WithLabelSizes(implicitPPDU, implicitPayload, type0ALPDU uint8) ConfigOption {
	return func(c *Config) {
		c.ImplicitPPDULabelSize = implicitPPDU
		c.ImplicitPayloadLabelSize = implicitPayload
		c.Type0ALPDULabelSize = type0ALPDU
	}
}

// NewConfig validates and constructs a Config. On any invalid
// combination it returns a nil Config and a *Status with
// CodeInvalidConfig.
func NewConfig(opts ...ConfigOption) (*Config, error) {
	cfg := &Config{}
	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.UseExplicitPayloadHeaderMap {
		return nil, newStatus(CodeInvalidConfig, -1, "use_explicit_payload_header_map is reserved and must be false")
	}

	if !cfg.AllowALPDUCRC && !cfg.AllowALPDUSequenceNumber {
		return nil, newStatus(CodeInvalidConfig, -1, "at least one of allow_alpdu_crc or allow_alpdu_sequence_number must be set")
	}

	if cfg.ImplicitProtocolType > maxImplicitProtocolType {
		return nil, newStatus(CodeInvalidConfig, -1, "implicit_protocol_type %#x exceeds maximum %#x", cfg.ImplicitProtocolType, maxImplicitProtocolType)
	}

	for name, v := range map[string]uint8{
		"implicit_ppdu_label_size":    cfg.ImplicitPPDULabelSize,
		"implicit_payload_label_size": cfg.ImplicitPayloadLabelSize,
		"type_0_alpdu_label_size":     cfg.Type0ALPDULabelSize,
	} {
		if v > 15 {
			return nil, newStatus(CodeInvalidConfig, -1, "%s %d exceeds nibble range", name, v)
		}
	}

	return cfg, nil
}

// useCRCTrailer applies the trailer-choice rule of spec §4.3: CRC only
// when explicitly configured exclusively; seqno is the default
// whenever both are allowed.
func (c *Config) useCRCTrailer() bool {
	return c.AllowALPDUCRC && !c.AllowALPDUSequenceNumber
}

func (c *Config) trailerLen() int {
	if c.useCRCTrailer() {
		return trailerLenCRC
	}
	return trailerLenSeqno
}
