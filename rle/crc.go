package rle

import "hash/crc32"

// crcChecksum computes the CRC-32/ISO-HDLC checksum over b: polynomial
// 0x04C11DB7, initial value 0xFFFFFFFF, input and output reflected,
// final XOR 0xFFFFFFFF (spec §6). That is exactly the IEEE polynomial
// as implemented by the standard library's hash/crc32 package, the
// same primitive ausocean-av's MPEG-TS PSI CRC (container/mts/psi/crc.go)
// reaches for rather than a third-party CRC library.
func crcChecksum(b []byte) uint32 {
	return crc32.ChecksumIEEE(b)
}
