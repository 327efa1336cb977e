package stream

import (
	"hash/crc32"
	"strconv"
	"strings"
)

const digestPrefix = "xxh64:"

// ComputeCRC returns the CRC-32 (IEEE) of data.
func ComputeCRC(data []byte) uint32 {
	return crc32.ChecksumIEEE(data)
}

func formatCRC(crc uint32) string {
	return leftPad(strconv.FormatUint(uint64(crc), 16), 8)
}

// parseCRC accepts 8 hex digits with an optional "crc32:" prefix.
func parseCRC(s string) (uint32, bool) {
	s = strings.TrimPrefix(s, "crc32:")
	if len(s) != 8 {
		return 0, false
	}
	v, err := strconv.ParseUint(s, 16, 32)
	return uint32(v), err == nil
}

// FormatDigest renders a table digest as it appears in a base field.
func FormatDigest(d uint64) string {
	return digestPrefix + leftPad(strconv.FormatUint(d, 16), 16)
}

// ParseDigest parses 16 hex digits with an optional "xxh64:" prefix.
func ParseDigest(s string) (uint64, bool) {
	s = strings.TrimPrefix(s, digestPrefix)
	if len(s) != 16 {
		return 0, false
	}
	d, err := strconv.ParseUint(s, 16, 64)
	return d, err == nil
}

func leftPad(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return strings.Repeat("0", width-len(s)) + s
}
