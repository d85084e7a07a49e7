package debug

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/valerio/go-y86/y86/cpu"
	"github.com/valerio/go-y86/y86/disasm"
)

// StackWindow is the number of bytes above the stack pointer kept in a snapshot.
const StackWindow = 64

// MemoryReader provides read-only access to a range of memory for debug tools
type MemoryReader interface {
	Slice(address uint64, n uint64) []byte
}

// ExtractMemory copies up to n bytes starting at start. The copy is shorter
// when the range runs past the end of memory.
func ExtractMemory(reader MemoryReader, start uint64, n uint64) MemorySnapshot {
	bytes := reader.Slice(start, n)
	return MemorySnapshot{
		StartAddr: start,
		Bytes:     append([]uint8(nil), bytes...),
	}
}

// Snapshot is a textual dump of the machine at the end of a headless run.
type Snapshot struct {
	CPU         CPUState
	Current     disasm.Line
	Reason      string
	Breakpoints []uint64
	Stack       MemorySnapshot
}

// WriteTo writes the snapshot in a line oriented format.
func (s Snapshot) WriteTo(w io.Writer) (int64, error) {
	cw := &countingWriter{w: bufio.NewWriter(w)}

	fmt.Fprintf(cw, "# stopped: %s\n", s.Reason)
	fmt.Fprintf(cw, "pc    0x%016x\n", s.CPU.PC)
	fmt.Fprintf(cw, "flags %s\n", s.CPU.Flags)
	fmt.Fprintf(cw, "executed %d\n", s.CPU.Executed)
	fmt.Fprintln(cw, s.Current)

	fmt.Fprintln(cw, "# registers")
	for _, r := range cpu.Registers() {
		fmt.Fprintln(cw, disasm.Register(r, s.CPU.Register(r)))
	}

	fmt.Fprintln(cw, "# breakpoints")
	for _, bp := range s.Breakpoints {
		fmt.Fprintf(cw, "0x%016x\n", bp)
	}

	fmt.Fprintln(cw, "# stack")
	for off := 0; off+8 <= len(s.Stack.Bytes); off += 8 {
		value := binary.LittleEndian.Uint64(s.Stack.Bytes[off:])
		fmt.Fprintln(cw, disasm.Quad(s.Stack.StartAddr+uint64(off), value))
	}

	if cw.err != nil {
		return cw.n, cw.err
	}
	return cw.n, cw.w.Flush()
}

// SaveSnapshot writes s to path, replacing any existing file.
func SaveSnapshot(s Snapshot, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file %s: %v", path, err)
	}
	defer file.Close()

	if _, err := s.WriteTo(file); err != nil {
		return fmt.Errorf("failed to write snapshot %s: %w", path, err)
	}

	slog.Info("Snapshot saved", "path", path, "pc", fmt.Sprintf("0x%X", s.CPU.PC))
	return nil
}

type countingWriter struct {
	w   *bufio.Writer
	n   int64
	err error
}

func (c *countingWriter) Write(p []byte) (int, error) {
	if c.err != nil {
		return 0, c.err
	}
	n, err := c.w.Write(p)
	c.n += int64(n)
	c.err = err
	return n, err
}
