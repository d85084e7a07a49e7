package memory

import (
	"errors"
	"fmt"

	"github.com/valerio/go-y86/y86/bit"
)

// QuadSize is the width in bytes of a Y86 quad word.
const QuadSize = 8

// ErrOutOfBounds is returned by every accessor touching an address outside the image.
var ErrOutOfBounds = errors.New("address out of bounds")

// Memory is the flat, byte addressable memory of the machine.
// It borrows the program image buffer; writes land directly in it.
type Memory struct {
	data []byte
}

// New wraps the given buffer. The buffer is not copied.
func New(data []byte) *Memory {
	return &Memory{data: data}
}

// Size returns the number of addressable bytes.
func (m *Memory) Size() uint64 {
	return uint64(len(m.data))
}

// IsValidAddress reports whether address passes the range check, i.e. address <= size.
// An address equal to the size is accepted here, although reading the byte
// stored there will still fail.
func (m *Memory) IsValidAddress(address uint64) bool {
	return address <= m.Size()
}

func outOfBounds(address uint64) error {
	return fmt.Errorf("%w: 0x%X", ErrOutOfBounds, address)
}

// Read reads the byte at address.
func (m *Memory) Read(address uint64) (byte, error) {
	if !m.IsValidAddress(address) || address >= m.Size() {
		return 0, outOfBounds(address)
	}

	return m.data[address], nil
}

// ReadQuad reads a little-endian quad word starting at address.
// Each byte is fetched on its own, the first one past the end aborts the read.
func (m *Memory) ReadQuad(address uint64) (uint64, error) {
	if !m.IsValidAddress(address) {
		return 0, outOfBounds(address)
	}

	var value uint64
	for offset := uint(0); offset < QuadSize; offset++ {
		b, err := m.Read(address + uint64(offset))
		if err != nil {
			return 0, err
		}
		value = bit.PutByteAt(value, offset, b)
	}

	return value, nil
}

// Write stores value at address.
func (m *Memory) Write(address uint64, value byte) error {
	if !m.IsValidAddress(address) || address >= m.Size() {
		return outOfBounds(address)
	}

	m.data[address] = value
	return nil
}

// WriteQuad stores value at address in little-endian order.
// Nothing is written unless all eight bytes fit.
func (m *Memory) WriteQuad(address uint64, value uint64) error {
	if err := m.CheckRange(address, QuadSize); err != nil {
		return err
	}

	for offset := uint(0); offset < QuadSize; offset++ {
		m.data[address+uint64(offset)] = bit.ByteAt(value, offset)
	}

	return nil
}

// CheckRange verifies that the n bytes starting at address are all accessible.
// The error reports the first offending byte.
func (m *Memory) CheckRange(address uint64, n uint64) error {
	for offset := uint64(0); offset < n; offset++ {
		a := address + offset
		// wrapped around the address space
		if a < address || a >= m.Size() {
			return outOfBounds(a)
		}
	}

	return nil
}

// Slice returns a window of at most n bytes starting at address, clamped to the
// end of memory. The returned slice aliases memory and must not be modified.
func (m *Memory) Slice(address uint64, n uint64) []byte {
	if address >= m.Size() {
		return nil
	}

	end := address + n
	if end > m.Size() || end < address {
		end = m.Size()
	}

	return m.data[address:end]
}
