package rle

import "sync"

// SDU is the upper-layer Service Data Unit handed to RLE. Bytes is
// copied into internal buffers on Encapsulate; the caller retains
// ownership of the slice it passed in (spec §3).
type SDU struct {
	Bytes        []byte
	ProtocolType uint16
}

// slotMask tracks which of the NumContexts fragmentation/reassembly
// slots are free, guarded by a single mutex (spec §5, Design Notes:
// "[Option<Context>; 8] ... with a single lock guarding the mask").
// Bit i set means slot i is free. Buffer bodies are not shared across
// frag_ids, so once claim succeeds the caller works lock-free on that
// slot until release.
type slotMask struct {
	mu   sync.Mutex
	free uint8
}

func newSlotMask() *slotMask {
	return &slotMask{free: 0xFF}
}

// claim marks frag_id busy, returning false if it was already busy.
func (m *slotMask) claim(fragID uint8) bool {
	bit := uint8(1) << fragID
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.free&bit == 0 {
		return false
	}
	m.free &^= bit
	return true
}

// release marks frag_id free again.
func (m *slotMask) release(fragID uint8) {
	bit := uint8(1) << fragID
	m.mu.Lock()
	defer m.mu.Unlock()
	m.free |= bit
}

// isFree reports whether frag_id is currently free.
func (m *slotMask) isFree(fragID uint8) bool {
	bit := uint8(1) << fragID
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.free&bit != 0
}

// fragContext is one transmitter fragmentation context (spec §3),
// keyed by frag_id. nextSeqno persists across the context's STAGED/FREE
// lifetime — it is never reset when the context is freed.
type fragContext struct {
	state ContextState

	buf       []byte // header bytes + SDU bytes, trailer appended once fragmenting starts
	headerLen int
	sduLen    int
	totalLen  int // valid once the trailer has been appended
	emitted   int
	rawSDU    []byte // the SDU exactly as presented by the caller, for CRC (spec §6)

	fragmenting bool // true once the first fragment() call has committed to START/CONT/END rather than COMPLETE
	useCRC      bool
	labelType   uint8
	protoSuppr  bool

	protocolType uint16
	nextSeqno    uint8
}

func (c *fragContext) trailerLen() int {
	if c.useCRC {
		return trailerLenCRC
	}
	return trailerLenSeqno
}

// reassemblyContext is one receiver reassembly context (spec §3).
// expectedNextSeqno and seqnoInitialised persist across the FREE/
// IN_PROGRESS lifetime for the same reason nextSeqno does on the
// transmitter side.
type reassemblyContext struct {
	state ContextState

	buf               []byte
	expectedALPDULen  int
	receivedLen       int
	useCRC            bool
	labelType         uint8
	protoSuppr        bool
	protocolType      uint16
	compProtocolType  uint8
	vlanWithoutPtype  bool

	seqnoInitialised  bool
	expectedNextSeqno uint8
}

func (c *reassemblyContext) reset() {
	*c = reassemblyContext{
		seqnoInitialised:  c.seqnoInitialised,
		expectedNextSeqno: c.expectedNextSeqno,
	}
}
