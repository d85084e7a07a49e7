package memory

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadAfterWrite(t *testing.T) {
	m := New(make([]byte, 32))

	for a := uint64(0); a < m.Size(); a++ {
		_, err := m.Read(a)
		require.NoError(t, err)

		require.NoError(t, m.Write(a, byte(a*7+1)))

		got, err := m.Read(a)
		require.NoError(t, err)
		assert.Equal(t, byte(a*7+1), got, "address 0x%X", a)
	}
}

func TestIsValidAddress(t *testing.T) {
	m := New(make([]byte, 16))

	assert.True(t, m.IsValidAddress(0))
	assert.True(t, m.IsValidAddress(15))
	assert.True(t, m.IsValidAddress(16), "size itself passes the range check")
	assert.False(t, m.IsValidAddress(17))
}

func TestByteAccessAtSizeFails(t *testing.T) {
	m := New(make([]byte, 16))

	_, err := m.Read(16)
	assert.ErrorIs(t, err, ErrOutOfBounds)

	err = m.Write(16, 0xFF)
	assert.ErrorIs(t, err, ErrOutOfBounds)
}

func TestOutOfBoundsLeavesMemoryUntouched(t *testing.T) {
	tests := []struct {
		name  string
		write func(m *Memory) error
	}{
		{"byte past size", func(m *Memory) error { return m.Write(17, 0xAA) }},
		{"byte far past size", func(m *Memory) error { return m.Write(0xFFFFFFFFFFFFFFFF, 0xAA) }},
		{"quad spanning end", func(m *Memory) error { return m.WriteQuad(12, 0xAAAAAAAAAAAAAAAA) }},
		{"quad at size", func(m *Memory) error { return m.WriteQuad(16, 0xAAAAAAAAAAAAAAAA) }},
		{"quad past size", func(m *Memory) error { return m.WriteQuad(40, 0xAAAAAAAAAAAAAAAA) }},
		{"quad wrapping address space", func(m *Memory) error { return m.WriteQuad(0xFFFFFFFFFFFFFFFC, 1) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := make([]byte, 16)
			m := New(data)

			err := tt.write(m)
			assert.ErrorIs(t, err, ErrOutOfBounds)
			assert.Equal(t, make([]byte, 16), data)
		})
	}
}

func TestReadQuad(t *testing.T) {
	data := []byte{0x88, 0x77, 0x66, 0x55, 0x44, 0x33, 0x22, 0x11, 0xFF}
	m := New(data)

	v, err := m.ReadQuad(0)
	require.NoError(t, err)
	assert.Equal(t, uint64(0x1122334455667788), v)

	v, err = m.ReadQuad(1)
	require.NoError(t, err)
	assert.Equal(t, uint64(0xFF11223344556677), v)

	_, err = m.ReadQuad(2)
	assert.ErrorIs(t, err, ErrOutOfBounds, "quad spanning the end fails on its first missing byte")
	assert.ErrorContains(t, err, "0x9")

	_, err = m.ReadQuad(10)
	assert.ErrorIs(t, err, ErrOutOfBounds)
}

func TestWriteQuad(t *testing.T) {
	data := make([]byte, 10)
	m := New(data)

	require.NoError(t, m.WriteQuad(1, 0x1122334455667788))
	assert.Equal(t, []byte{0x00, 0x88, 0x77, 0x66, 0x55, 0x44, 0x33, 0x22, 0x11, 0x00}, data)

	v, err := m.ReadQuad(1)
	require.NoError(t, err)
	assert.Equal(t, uint64(0x1122334455667788), v)
}

func TestSlice(t *testing.T) {
	m := New([]byte{1, 2, 3, 4})

	assert.Equal(t, []byte{2, 3}, m.Slice(1, 2))
	assert.Equal(t, []byte{3, 4}, m.Slice(2, 10))
	assert.Nil(t, m.Slice(4, 1))
	assert.Equal(t, []byte{4}, m.Slice(3, 0xFFFFFFFFFFFFFFFF))
}

func TestEmptyMemory(t *testing.T) {
	m := New(nil)

	assert.Equal(t, uint64(0), m.Size())
	assert.True(t, m.IsValidAddress(0))

	_, err := m.Read(0)
	assert.ErrorIs(t, err, ErrOutOfBounds)
}

func TestAddressedAccessorsAreNotStreamMethods(t *testing.T) {
	var m any = New(make([]byte, 4))

	_, isByteReader := m.(io.ByteReader)
	_, isByteWriter := m.(io.ByteWriter)
	assert.False(t, isByteReader)
	assert.False(t, isByteWriter)
}
