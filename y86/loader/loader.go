// Package loader acquires program images and hands them to the debugger as
// plain byte buffers.
package loader

import (
	"errors"
	"log/slog"
)

// ErrClosed is returned when an image is closed twice.
var ErrClosed = errors.New("image already closed")

// Image is a program image. Data is writable: the simulated program may
// store into it, but the changes never reach the underlying file.
type Image struct {
	Path string
	data []byte

	release func() error
	closed  bool
}

// FromBytes wraps an in-memory buffer as an image. The buffer is not copied.
func FromBytes(data []byte) *Image {
	return &Image{
		Path: "<memory>",
		data: data,
	}
}

// Bytes returns the image contents.
func (i *Image) Bytes() []byte {
	return i.data
}

// Size returns the image length in bytes.
func (i *Image) Size() uint64 {
	return uint64(len(i.data))
}

// Close releases the image. The byte slice must not be used afterwards.
func (i *Image) Close() error {
	if i.closed {
		return ErrClosed
	}
	i.closed = true

	var err error
	if i.release != nil {
		err = i.release()
	}
	i.data = nil

	slog.Debug("Image released", "path", i.Path)
	return err
}

// FirstNonZero returns the address of the first nonzero byte at or after from.
// It returns len(data) when there is none.
func FirstNonZero(data []byte, from uint64) uint64 {
	for pc := from; pc < uint64(len(data)); pc++ {
		if data[pc] != 0 {
			return pc
		}
	}
	return uint64(len(data))
}
