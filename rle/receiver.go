package rle

// Receiver owns up to NumContexts reassembly contexts and turns FPDU
// bursts back into the SDUs they started from (spec §2, §4.4).
type Receiver struct {
	cfg      *Config
	contexts [NumContexts]reassemblyContext
	counters Counters
	log      Logger
}

// ReceiverOption configures a Receiver at construction.
type ReceiverOption func(*Receiver)

// WithReceiverLogger injects a diagnostics sink.
func WithReceiverLogger(l Logger) ReceiverOption {
	return func(r *Receiver) { r.log = l }
}

// NewReceiver constructs a Receiver for cfg.
func NewReceiver(cfg *Config, opts ...ReceiverOption) *Receiver {
	r := &Receiver{cfg: cfg, log: nopLogger{}}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Counters returns the receiver's aggregate statistics block.
func (r *Receiver) Counters() *Counters { return &r.counters }

// ContextState reports the lifecycle of one reassembly context.
func (r *Receiver) ContextState(fragID uint8) (ContextState, error) {
	if st := validFragID(fragID); st != nil {
		return StateFree, st
	}
	return r.contexts[fragID].state, nil
}

// isPadding reports whether the remaining FPDU bytes are the trailing
// zero padding that fills unused burst space (spec §4.3, §6): it never
// encodes a valid PPDU header, since start_ind=end_ind=0 with a zero
// length byte decodes as an empty CONTINUE PPDU, which no well-formed
// sender ever emits.
func isPadding(data []byte) bool {
	for _, b := range data {
		if b != 0 {
			return false
		}
	}
	return true
}

// Decap walks one FPDU left to right, reassembling as many complete
// ALPDUs as it can find and returning them as SDUs in wire order (spec
// §4.4). A malformed PPDU header aborts the walk immediately, since the
// byte offset of every following PPDU depends on having read the
// current one's length correctly; a malformed trailer or an
// out-of-sequence PPDU, by contrast, is just dropped and the walk
// continues at the next PPDU boundary.
func (r *Receiver) Decap(fpdu []byte) ([]SDU, error) {
	var out []SDU
	data := fpdu

	for len(data) > 0 {
		if isPadding(data) {
			break
		}

		hdr, st := parsePPDUHeader(data)
		if st != nil {
			return out, st
		}
		end := hdr.HeaderLen + hdr.RLEPacketLength
		if end > len(data) {
			return out, newStatus(CodePDUMalformed, -1, "%s PPDU declares %d payload bytes, only %d available", hdr.Type, hdr.RLEPacketLength, len(data)-hdr.HeaderLen)
		}
		payload := data[hdr.HeaderLen:end]
		data = data[end:]

		sdu, st := r.processPPDU(hdr, payload)
		if st != nil {
			r.log.Warnf("dropping PPDU on frag_id %d: %s", hdr.FragID, st)
			continue
		}
		if sdu != nil {
			out = append(out, *sdu)
		}
	}
	return out, nil
}

func (r *Receiver) processPPDU(hdr *ppduHeader, payload []byte) (*SDU, *Status) {
	switch hdr.Type {
	case PPDUComplete:
		return r.decodeComplete(hdr, payload)
	case PPDUStart:
		return nil, r.handleStart(hdr, payload)
	case PPDUContinue:
		return nil, r.handleContinue(hdr, payload)
	case PPDUEnd:
		return r.handleEnd(hdr, payload)
	default:
		return nil, newStatus(CodePDUMalformed, -1, "unknown PPDU type")
	}
}

// decodeComplete decodes a whole unfragmented ALPDU directly out of one
// PPDU. COMPLETE carries no frag_id and never touches a reassembly
// context.
func (r *Receiver) decodeComplete(hdr *ppduHeader, payload []byte) (*SDU, *Status) {
	dp, st := parseProtoType(r.cfg, hdr.LabelType, hdr.ProtoTypeSuppr, payload)
	if st != nil {
		r.counters.incDropped()
		return nil, st
	}
	body := payload[dp.headerLen:]
	sdu, st := r.finishSDU(dp, body)
	if st != nil {
		r.counters.incDropped()
		return nil, st
	}
	r.counters.incOK(uint64(len(payload)))
	return sdu, nil
}

// handleStart begins reassembly on hdr.FragID. A START arriving on a
// context that is already IN_PROGRESS means the previous ALPDU was
// abandoned mid-stream; it is counted as lost before the new one
// begins (spec §4.4, §5).
func (r *Receiver) handleStart(hdr *ppduHeader, payload []byte) *Status {
	if st := validFragID(hdr.FragID); st != nil {
		return st
	}
	ctx := &r.contexts[hdr.FragID]
	if ctx.state == StateInProgress {
		r.counters.incLost(1)
		ctx.reset()
	}

	bufCap := hdr.TotalALPDULength
	if bufCap < len(payload) {
		bufCap = len(payload)
	}
	buf := make([]byte, len(payload), bufCap)
	copy(buf, payload)

	ctx.state = StateInProgress
	ctx.buf = buf
	ctx.expectedALPDULen = hdr.TotalALPDULength
	ctx.receivedLen = len(payload)
	ctx.useCRC = hdr.UseCRC
	ctx.labelType = hdr.LabelType
	ctx.protoSuppr = hdr.ProtoTypeSuppr
	return nil
}

// handleContinue appends a middle slice to an in-progress reassembly.
func (r *Receiver) handleContinue(hdr *ppduHeader, payload []byte) *Status {
	ctx, st := r.inProgressContext(hdr.FragID)
	if st != nil {
		return st
	}
	ctx.buf = append(ctx.buf, payload...)
	ctx.receivedLen += len(payload)
	if ctx.receivedLen > ctx.expectedALPDULen {
		r.counters.incDropped()
		ctx.reset()
		return newStatus(CodePDUMalformed, int(hdr.FragID), "reassembly overran total_alpdu_length (%d > %d)", ctx.receivedLen, ctx.expectedALPDULen)
	}
	return nil
}

// handleEnd appends the final slice, validates the trailer, and
// decodes the completed ALPDU into an SDU.
func (r *Receiver) handleEnd(hdr *ppduHeader, payload []byte) (*SDU, *Status) {
	ctx, st := r.inProgressContext(hdr.FragID)
	if st != nil {
		return nil, st
	}

	ctx.buf = append(ctx.buf, payload...)
	ctx.receivedLen += len(payload)
	if ctx.receivedLen != ctx.expectedALPDULen {
		r.counters.incDropped()
		ctx.reset()
		return nil, newStatus(CodePDUMalformed, int(hdr.FragID), "reassembled length %d does not match total_alpdu_length %d", ctx.receivedLen, ctx.expectedALPDULen)
	}

	trailerLen := trailerLenSeqno
	if ctx.useCRC {
		trailerLen = trailerLenCRC
	}
	if len(ctx.buf) < trailerLen {
		r.counters.incDropped()
		ctx.reset()
		return nil, newStatus(CodePDUMalformed, int(hdr.FragID), "reassembled ALPDU too short for its trailer")
	}
	body := ctx.buf[:len(ctx.buf)-trailerLen]
	trailer := ctx.buf[len(ctx.buf)-trailerLen:]

	if !ctx.useCRC {
		r.checkSeqno(ctx, trailer[0])
	}

	dp, perr := parseProtoType(r.cfg, ctx.labelType, ctx.protoSuppr, body)
	if perr != nil {
		r.counters.incDropped()
		ctx.reset()
		return nil, perr
	}
	sdu, perr := r.finishSDU(dp, body[dp.headerLen:])
	if perr != nil {
		r.counters.incDropped()
		ctx.reset()
		return nil, perr
	}

	// The CRC covers the SDU as the sender presented it: no ALPDU
	// protocol-type header, VLAN EtherType already reconstructed.
	if ctx.useCRC {
		got := crcChecksum(sdu.Bytes)
		want := uint32(trailer[0])<<24 | uint32(trailer[1])<<16 | uint32(trailer[2])<<8 | uint32(trailer[3])
		if got != want {
			r.counters.incDropped()
			fragID := hdr.FragID
			ctx.reset()
			return nil, newStatus(CodeTrailerBadCRC, int(fragID), "CRC mismatch: got %#x want %#x", got, want)
		}
	}

	r.counters.incOK(uint64(ctx.expectedALPDULen))
	ctx.reset()
	return sdu, nil
}

// checkSeqno implements the seqno-gap loss accounting of spec §4.4,
// §5: expectedNextSeqno persists across a context's IN_PROGRESS/FREE
// lifetime the same way the transmitter's nextSeqno does, so a gap can
// be measured between successive CRC-less ALPDUs on this frag_id. The
// first sequence number ever seen on a frag_id only initialises the
// expectation and is never counted as a gap.
func (r *Receiver) checkSeqno(ctx *reassemblyContext, got uint8) {
	if ctx.seqnoInitialised {
		gap := int(got) - int(ctx.expectedNextSeqno)
		if gap < 0 {
			gap += 256
		}
		if gap > 0 {
			r.counters.incLost(uint64(gap))
		}
	}
	ctx.expectedNextSeqno = got + 1
	ctx.seqnoInitialised = true
}

// finishSDU turns a decoded protocol type and ALPDU body into the
// user-facing SDU, reconstructing the VLAN EtherType field when it was
// suppressed by the 0x31 encoding (spec §4.2, §4.4).
func (r *Receiver) finishSDU(dp *decodedProtoType, body []byte) (*SDU, *Status) {
	if dp.vlanWithoutPtype {
		full, st := reconstructVLANSDU(body)
		if st != nil {
			return nil, st
		}
		return &SDU{Bytes: full, ProtocolType: dp.ptype}, nil
	}
	return &SDU{Bytes: append([]byte{}, body...), ProtocolType: dp.ptype}, nil
}

// inProgressContext validates fragID and requires its context to be
// mid-reassembly; a CONTINUE or END arriving on a FREE context is
// unexpected (the matching START was lost or never sent), counted as
// lost rather than dropped (spec §4.4), and discarded without
// disturbing context state.
func (r *Receiver) inProgressContext(fragID uint8) (*reassemblyContext, *Status) {
	if st := validFragID(fragID); st != nil {
		return nil, st
	}
	ctx := &r.contexts[fragID]
	if ctx.state != StateInProgress {
		r.counters.incLost(1)
		return nil, newStatus(CodeUnexpectedPPDU, int(fragID), "PPDU for a context that is not IN_PROGRESS")
	}
	return ctx, nil
}
