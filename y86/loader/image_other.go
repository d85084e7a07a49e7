//go:build !unix

package loader

import (
	"fmt"
	"os"
)

// Open reads the whole file at path into memory.
func Open(path string) (*Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	return &Image{Path: path, data: data}, nil
}
