package utils

import "encoding/binary"

func Uint32ToBytes(val uint32) []byte {
	return binary.BigEndian.AppendUint32(make([]byte, 0, 4), val)
}

func Uint64ToBytes(val uint64) []byte {
	return binary.BigEndian.AppendUint64(make([]byte, 0, 8), val)
}

// BytesToUint64 returns 0, false when b is not 8 bytes long.
func BytesToUint64(b []byte) (uint64, bool) {
	if len(b) != 8 {
		return 0, false
	}

	return binary.BigEndian.Uint64(b), true
}
