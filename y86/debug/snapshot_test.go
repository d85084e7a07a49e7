package debug

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valerio/go-y86/y86/cpu"
	"github.com/valerio/go-y86/y86/disasm"
	"github.com/valerio/go-y86/y86/memory"
)

func TestExtractMemory(t *testing.T) {
	data := []byte{1, 2, 3, 4, 5, 6}
	mem := memory.New(data)

	snap := ExtractMemory(mem, 2, 3)
	assert.Equal(t, uint64(2), snap.StartAddr)
	assert.Equal(t, []uint8{3, 4, 5}, snap.Bytes)

	snap = ExtractMemory(mem, 4, 10)
	assert.Equal(t, []uint8{5, 6}, snap.Bytes, "clamped to memory")

	snap.Bytes[0] = 0xFF
	assert.Equal(t, byte(5), data[4], "snapshot is a copy")

	assert.Empty(t, ExtractMemory(mem, 6, 1).Bytes)
}

func TestSnapshotWriteTo(t *testing.T) {
	mem := memory.New([]byte{0x00, 0, 0, 0, 0, 0, 0, 0, 0x2A, 0, 0, 0, 0, 0, 0, 0})
	c := cpu.New(mem, 0)
	c.SetRegister(cpu.RSP, 8)
	c.SetRegister(cpu.RAX, 5)

	snap := Snapshot{
		CPU:         ExtractCPUState(c),
		Current:     disasm.At(0, mem),
		Reason:      "halted",
		Breakpoints: []uint64{0x10},
		Stack:       ExtractMemory(mem, 8, StackWindow),
	}

	var sb strings.Builder
	n, err := snap.WriteTo(&sb)
	require.NoError(t, err)
	out := sb.String()
	assert.Equal(t, int64(len(out)), n)

	assert.Contains(t, out, "# stopped: halted\n")
	assert.Contains(t, out, "pc    0x0000000000000000\n")
	assert.Contains(t, out, "0x0000000000000000: 00                    halt\n")
	assert.Contains(t, out, disasm.Register(cpu.RAX, 5)+"\n")
	assert.Contains(t, out, disasm.Register(cpu.RSP, 8)+"\n")
	assert.Contains(t, out, "# breakpoints\n0x0000000000000010\n")
	assert.Contains(t, out, disasm.Quad(8, 0x2A)+"\n")
}

func TestSaveSnapshot(t *testing.T) {
	mem := memory.New([]byte{0x00})
	c := cpu.New(mem, 0)
	path := filepath.Join(t.TempDir(), "state.txt")

	err := SaveSnapshot(Snapshot{CPU: ExtractCPUState(c), Current: disasm.At(0, mem), Reason: "halted"}, path)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "# stopped: halted\n"))

	err = SaveSnapshot(Snapshot{}, filepath.Join(t.TempDir(), "missing", "state.txt"))
	assert.Error(t, err)
}
