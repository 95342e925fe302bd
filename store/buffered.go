package store

import (
	"os"

	"github.com/kevinpetersavage/mrcfile/errs"
)

// Buffered holds a private in-memory copy of a plain uncompressed file.
// Mutations through Bytes touch only the copy; WriteBack rewrites the file.
type Buffered struct {
	path     string
	writable bool
	buf      []byte
}

var _ Backend = (*Buffered)(nil)

// OpenBuffered reads the whole file at path into memory.
func OpenBuffered(path string, writable bool) (*Buffered, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	return &Buffered{path: path, writable: writable, buf: buf}, nil
}

// CreateBuffered creates (or truncates) the file at path and returns an
// empty writable backend over it.
func CreateBuffered(path string) (*Buffered, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	if err := f.Close(); err != nil {
		return nil, err
	}

	return &Buffered{path: path, writable: true}, nil
}

// Bytes returns the in-memory copy of the file contents.
func (b *Buffered) Bytes() []byte { return b.buf }

// InPlaceMutable always reports false: the copy is private.
func (b *Buffered) InPlaceMutable() bool { return false }

// WriteBack rewrites the whole file with contents.
func (b *Buffered) WriteBack(contents []byte) error {
	if !b.writable {
		return errs.ErrReadOnly
	}
	if err := os.WriteFile(b.path, contents, 0o666); err != nil {
		return err
	}
	b.buf = contents

	return nil
}

// Flush is a no-op: nothing reaches the file until WriteBack.
func (b *Buffered) Flush() error { return nil }

// Close releases the buffer.
func (b *Buffered) Close() error {
	b.buf = nil
	return nil
}
