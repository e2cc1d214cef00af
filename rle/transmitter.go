package rle

// Transmitter owns up to NumContexts fragmentation contexts and turns
// SDUs into PPDU bursts (spec §2, §4.3).
type Transmitter struct {
	cfg      *Config
	slots    *slotMask
	contexts [NumContexts]fragContext
	counters Counters
	log      Logger
}

// TransmitterOption configures a Transmitter at construction.
type TransmitterOption func(*Transmitter)

// WithTransmitterLogger injects a diagnostics sink.
func WithTransmitterLogger(l Logger) TransmitterOption {
	return func(t *Transmitter) { t.log = l }
}

// NewTransmitter constructs a Transmitter for cfg.
func NewTransmitter(cfg *Config, opts ...TransmitterOption) *Transmitter {
	t := &Transmitter{cfg: cfg, slots: newSlotMask(), log: nopLogger{}}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Counters returns the transmitter's aggregate statistics block.
func (t *Transmitter) Counters() *Counters { return &t.counters }

func validFragID(fragID uint8) *Status {
	if fragID > MaxFragID {
		return newStatus(CodeInvalidFragID, int(fragID), "frag_id %d exceeds MAX_FRAG_ID", fragID)
	}
	return nil
}

// Encapsulate wraps sdu in an ALPDU envelope and stages it in the
// context named by fragID, ready for Fragment. It does not compute the
// trailer yet: that is decided at the first Fragment call, once it is
// known whether the ALPDU will go out as COMPLETE (no trailer) or
// fragmented (spec §4.3).
func (t *Transmitter) Encapsulate(sdu SDU, fragID uint8) error {
	if t == nil {
		return newStatus(CodeNullTransmitter, -1, "nil transmitter")
	}
	if st := validFragID(fragID); st != nil {
		return st
	}
	if len(sdu.Bytes) > MaxSDUSize {
		return newStatus(CodeSDUTooBig, int(fragID), "SDU length %d exceeds MAX_SDU_SIZE %d", len(sdu.Bytes), MaxSDUSize)
	}

	if !t.slots.claim(fragID) {
		return newStatus(CodeFragContextBusy, int(fragID), "context already staged")
	}

	ph, st := resolveProtoType(t.cfg, sdu.ProtocolType, sdu.Bytes)
	if st != nil {
		t.slots.release(fragID)
		return st
	}

	ctx := &t.contexts[fragID]
	prevSeqno := ctx.nextSeqno // persists across the context's lifetime

	buf := make([]byte, 0, len(ph.bytes)+len(ph.body))
	buf = append(buf, ph.bytes...)
	buf = append(buf, ph.body...)

	*ctx = fragContext{
		state:        StateStaged,
		buf:          buf,
		headerLen:    len(ph.bytes),
		sduLen:       len(ph.body),
		fragmenting:  false,
		useCRC:       t.cfg.useCRCTrailer(),
		labelType:    ph.labelType,
		protoSuppr:   ph.protoTypeSuppr,
		protocolType: sdu.ProtocolType,
		nextSeqno:    prevSeqno,
		rawSDU:       append([]byte{}, sdu.Bytes...),
	}

	t.log.Debugf("encapsulated %d bytes on frag_id %d (header=%d)", len(sdu.Bytes), fragID, ctx.headerLen)
	return nil
}

// GetQueueState reports whether fragID is FREE or STAGED.
func (t *Transmitter) GetQueueState(fragID uint8) (ContextState, error) {
	if st := validFragID(fragID); st != nil {
		return StateFree, st
	}
	if t.slots.isFree(fragID) {
		return StateFree, nil
	}
	return StateStaged, nil
}

// GetQueueSize reports the bytes remaining to ship for fragID. Once
// fragmenting has started, this is exact: the trailer has already been
// committed and sized. Before the first Fragment call, whether a
// trailer is appended at all is still undecided — it depends on
// whether the eventual burst budget is large enough to ship the whole
// ALPDU as a single COMPLETE PPDU (spec §4.3: "On COMPLETE: no
// trailer") — so the pre-fragmentation figure is a conservative upper
// bound (header + SDU + trailer), not a prediction of the exact
// COMPLETE-vs-fragmented outcome, which only Fragment's budget can
// decide.
func (t *Transmitter) GetQueueSize(fragID uint8) (int, error) {
	if st := validFragID(fragID); st != nil {
		return 0, st
	}
	if t.slots.isFree(fragID) {
		return 0, nil
	}
	ctx := &t.contexts[fragID]
	if !ctx.fragmenting {
		return ctx.headerLen + ctx.sduLen + t.cfg.trailerLen(), nil
	}
	return ctx.totalLen - ctx.emitted, nil
}

// FreeContext forcibly discards any in-flight ALPDU on fragID,
// counting it as dropped (spec §5).
func (t *Transmitter) FreeContext(fragID uint8) error {
	if st := validFragID(fragID); st != nil {
		return st
	}
	if t.slots.isFree(fragID) {
		return nil
	}
	t.counters.incDropped()
	t.contexts[fragID] = fragContext{nextSeqno: t.contexts[fragID].nextSeqno}
	t.slots.release(fragID)
	return nil
}

// Fragment produces exactly one PPDU for fragID, sized to fit budget
// bytes, and reports the bytes remaining in the context afterward
// (spec §4.3).
func (t *Transmitter) Fragment(fragID uint8, budget int) ([]byte, int, error) {
	if t == nil {
		return nil, 0, newStatus(CodeNullTransmitter, -1, "nil transmitter")
	}
	if st := validFragID(fragID); st != nil {
		return nil, 0, st
	}
	if t.slots.isFree(fragID) {
		return nil, 0, newStatus(CodeContextEmpty, int(fragID), "no ALPDU staged")
	}

	ctx := &t.contexts[fragID]
	switch {
	case !ctx.fragmenting:
		return t.firstFragment(fragID, ctx, budget)
	case ctx.emitted == 0:
		// A previous attempt committed this context to the fragmented
		// path (trailer already computed) but failed with
		// BURST_TOO_SMALL before emitting anything; retry START.
		return t.emitStart(fragID, ctx, budget)
	default:
		return t.subsequentFragment(fragID, ctx, budget)
	}
}

// firstFragment decides between COMPLETE and START for the first
// Fragment call on a freshly staged context.
func (t *Transmitter) firstFragment(fragID uint8, ctx *fragContext, budget int) ([]byte, int, error) {
	completeBody := ctx.buf // header + SDU, no trailer
	if budget >= headerLenComplete+len(completeBody) {
		hdr, st := buildCompleteHeader(len(completeBody), ctx.labelType, ctx.protoSuppr)
		if st != nil {
			t.dropOnError(fragID)
			return nil, 0, st
		}
		ppdu := append(hdr, completeBody...)
		t.counters.incOK(uint64(len(completeBody)))
		t.contexts[fragID] = fragContext{nextSeqno: ctx.nextSeqno} // COMPLETE does not consume a sequence number
		t.slots.release(fragID)
		return ppdu, 0, nil
	}

	// This ALPDU must be fragmented: commit to a trailer now. This
	// commitment is permanent even if this very call then fails with
	// BURST_TOO_SMALL, since COMPLETE can no longer be produced once
	// the trailer has been appended to the buffer.
	trailer := t.buildTrailer(ctx)
	ctx.buf = append(ctx.buf, trailer...)
	ctx.totalLen = len(ctx.buf)
	ctx.fragmenting = true

	return t.emitStart(fragID, ctx, budget)
}

// emitStart produces the START PPDU for a context already committed to
// the fragmented path. It may be called more than once for the same
// ALPDU if an earlier attempt returned BURST_TOO_SMALL without
// emitting anything.
func (t *Transmitter) emitStart(fragID uint8, ctx *fragContext, budget int) ([]byte, int, error) {
	avail := budget - headerLenStart
	if avail < 1 {
		return nil, 0, newStatus(CodeBurstTooSmall, int(fragID), "budget %d too small for START header (%d bytes) plus 1 payload byte", budget, headerLenStart)
	}

	// START never carries the last byte: at least the trailer is left
	// for END, even when a retried budget could hold the whole ALPDU.
	payloadSize := min(avail, ctx.totalLen-1)
	payloadSize = enforceTrailerAtomicity(payloadSize, ctx.totalLen, ctx.trailerLen())
	if payloadSize < 1 {
		return nil, 0, newStatus(CodeBurstTooSmall, int(fragID), "budget %d cannot carry the trailer atomically", budget)
	}

	hdr, st := buildStartHeader(payloadSize, ctx.totalLen, ctx.labelType, ctx.protoSuppr, ctx.useCRC, fragID)
	if st != nil {
		t.dropOnError(fragID)
		return nil, 0, st
	}
	ppdu := append(hdr, ctx.buf[:payloadSize]...)
	ctx.emitted = payloadSize
	return ppdu, ctx.totalLen - ctx.emitted, nil
}

// subsequentFragment emits a CONTINUE or END PPDU for a context already
// mid-fragmentation.
func (t *Transmitter) subsequentFragment(fragID uint8, ctx *fragContext, budget int) ([]byte, int, error) {
	remaining := ctx.totalLen - ctx.emitted
	avail := budget - headerLenContEnd
	if avail < 1 {
		return nil, 0, newStatus(CodeBurstTooSmall, int(fragID), "budget %d too small for a fragment header (%d bytes) plus 1 payload byte", budget, headerLenContEnd)
	}

	payloadSize := min(avail, remaining)
	isLast := payloadSize == remaining
	if !isLast {
		payloadSize = enforceTrailerAtomicity(payloadSize, remaining, ctx.trailerLen())
		isLast = payloadSize == remaining
		if payloadSize < 1 {
			return nil, 0, newStatus(CodeBurstTooSmall, int(fragID), "budget %d cannot carry the trailer atomically", budget)
		}
	}

	hdr, st := buildContEndHeader(isLast, payloadSize, fragID)
	if st != nil {
		t.dropOnError(fragID)
		return nil, 0, st
	}
	ppdu := append(hdr, ctx.buf[ctx.emitted:ctx.emitted+payloadSize]...)
	ctx.emitted += payloadSize

	if isLast {
		t.counters.incOK(uint64(ctx.totalLen))
		if !ctx.useCRC {
			ctx.nextSeqno++
		}
		nextSeqno := ctx.nextSeqno
		t.contexts[fragID] = fragContext{nextSeqno: nextSeqno}
		t.slots.release(fragID)
		return ppdu, 0, nil
	}
	return ppdu, ctx.totalLen - ctx.emitted, nil
}

// enforceTrailerAtomicity shrinks a candidate payload size so the
// trailer never spans two PPDUs: if the remainder after this slice
// would be strictly between 0 and trailerLen bytes, hold back enough
// bytes for the trailer to land entirely inside the next (END) PPDU.
func enforceTrailerAtomicity(payloadSize, totalRemaining, trailerLen int) int {
	after := totalRemaining - payloadSize
	if after > 0 && after < trailerLen {
		payloadSize -= trailerLen - after
	}
	return payloadSize
}

// buildTrailer computes the sequence-number or CRC-32 trailer for a
// context once it has been decided the ALPDU must be fragmented
// (spec §4.3, §6). The sequence number is snapshotted here (the value
// in flight on the wire); it is not incremented until the END PPDU
// ships successfully.
func (t *Transmitter) buildTrailer(ctx *fragContext) []byte {
	if ctx.useCRC {
		crc := crcChecksum(ctx.rawSDU)
		return []byte{byte(crc >> 24), byte(crc >> 16), byte(crc >> 8), byte(crc)}
	}
	return []byte{ctx.nextSeqno}
}

func (t *Transmitter) dropOnError(fragID uint8) {
	t.counters.incDropped()
	t.contexts[fragID] = fragContext{nextSeqno: t.contexts[fragID].nextSeqno}
	t.slots.release(fragID)
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
