package rle

// GetHeaderSize reports the deterministic per-FPDU overhead for kind,
// if one exists (spec §6). LOGON, CTRL and TRAFFIC_CTRL bursts carry a
// fixed-size signalling payload known ahead of encapsulation, so their
// overhead is exact; ordinary TRAFFIC bursts mix COMPLETE, START,
// CONTINUE and END PPDUs whose count and header sizes depend on the
// SDUs presented at runtime, so no single number applies and the
// second return value is false.
func GetHeaderSize(cfg *Config, kind FPDUKind) (size int, deterministic bool) {
	switch kind {
	case FPDULogon, FPDUCtrl, FPDUTrafficCtrl:
		if cfg.AllowPtypeOmission {
			return headerLenComplete, true
		}
		if cfg.UseCompressedPtype {
			return headerLenComplete + 1, true
		}
		return headerLenComplete + 2, true
	default:
		return 0, false
	}
}
