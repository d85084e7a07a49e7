package bit

// HighNibble returns the upper four bits of a byte.
// Y86 stores the opcode and register A in the high nibble.
func HighNibble(value uint8) uint8 {
	return value >> 4
}

// LowNibble returns the lower four bits of a byte.
func LowNibble(value uint8) uint8 {
	return value & 0x0F
}

// IsSet64 reports whether the bit at index is set in a 64 bit value.
func IsSet64(index uint8, value uint64) bool {
	return ((value >> index) & 1) == 1
}

// ByteAt returns the n-th least significant byte of a 64 bit value.
// ByteAt(0x1122334455667788, 0) -> 0x88
func ByteAt(value uint64, n uint) uint8 {
	return uint8(value >> (8 * n))
}

// PutByteAt returns value with its n-th least significant byte replaced by b.
func PutByteAt(value uint64, n uint, b uint8) uint64 {
	shift := 8 * n
	return value&^(0xFF<<shift) | uint64(b)<<shift
}
