package wire

// crcInit is the X.25 checksum start value.
const crcInit = 0xFFFF

// crcAccumulate folds one byte into an X.25 (CRC-16/MCRF4XX) checksum.
func crcAccumulate(b byte, crc uint16) uint16 {
	tmp := b ^ byte(crc&0xFF)
	tmp ^= tmp << 4
	return (crc >> 8) ^ (uint16(tmp) << 8) ^ (uint16(tmp) << 3) ^ (uint16(tmp) >> 4)
}

// ChecksumFrame computes the frame checksum over the header fields after
// the magic byte and the payload, finished with the per-message seed
// byte from the catalog.
func ChecksumFrame(length, seq, sysID, compID, msgID uint8, payload []byte, seed uint8) uint16 {
	crc := uint16(crcInit)
	crc = crcAccumulate(length, crc)
	crc = crcAccumulate(seq, crc)
	crc = crcAccumulate(sysID, crc)
	crc = crcAccumulate(compID, crc)
	crc = crcAccumulate(msgID, crc)
	for _, b := range payload {
		crc = crcAccumulate(b, crc)
	}
	return crcAccumulate(seed, crc)
}
