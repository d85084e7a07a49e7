//go:build unix

package loader

import (
	"fmt"
	"log/slog"
	"os"

	"golang.org/x/sys/unix"
)

// Open maps the file at path into memory. The mapping is private and
// writable, so the program can modify its own image without touching the file.
func Open(path string) (*Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	// the mapping stays valid after the descriptor is closed
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}

	size := st.Size()
	if size == 0 {
		slog.Warn("Program image is empty", "path", path)
		return &Image{Path: path, data: []byte{}}, nil
	}

	data, err := unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE)
	if err != nil {
		return nil, fmt.Errorf("failed to map %s: %w", path, err)
	}

	slog.Debug("Mapped program image", "path", path, "size", size)

	return &Image{
		Path:    path,
		data:    data,
		release: func() error { return unix.Munmap(data) },
	}, nil
}
