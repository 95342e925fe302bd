//go:build unix

package store

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"

	"github.com/kevinpetersavage/mrcfile/errs"
)

// Mmap serves the file through an OS-shared memory mapping. Ownership of
// the data bytes is shared with the OS: mutations through Bytes are
// immediately visible to other readers of the file and are flushed to
// stable storage by Flush and on Close.
type Mmap struct {
	f        *os.File
	data     []byte
	writable bool
}

var _ Backend = (*Mmap)(nil)

// OpenMmap maps the whole file at path. The mapping cannot grow, so files
// opened this way cannot change size; use a buffered backend for that.
func OpenMmap(path string, writable bool) (*Mmap, error) {
	flag, prot := os.O_RDONLY, unix.PROT_READ
	if writable {
		flag = os.O_RDWR
		prot |= unix.PROT_WRITE
	}

	f, err := os.OpenFile(path, flag, 0)
	if err != nil {
		return nil, err
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	if info.Size() == 0 {
		f.Close()
		return nil, fmt.Errorf("cannot memory-map empty file %s", path)
	}

	data, err := unix.Mmap(int(f.Fd()), 0, int(info.Size()), prot, unix.MAP_SHARED)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("mmap %s: %w", path, err)
	}

	return &Mmap{f: f, data: data, writable: writable}, nil
}

// Bytes returns the mapping itself. The slice becomes invalid after Close.
func (m *Mmap) Bytes() []byte { return m.data }

// InPlaceMutable reports whether the mapping was opened writable.
func (m *Mmap) InPlaceMutable() bool { return m.writable }

// WriteBack copies same-length contents into the mapping. The mapping
// cannot change size.
func (m *Mmap) WriteBack(contents []byte) error {
	if !m.writable {
		return errs.ErrReadOnly
	}
	if len(contents) != len(m.data) {
		return errs.ErrCannotResize
	}
	copy(m.data, contents)

	return nil
}

// Flush synchronously writes dirty pages back to the file.
func (m *Mmap) Flush() error {
	if !m.writable || m.data == nil {
		return nil
	}

	return unix.Msync(m.data, unix.MS_SYNC)
}

// Close flushes a writable mapping, unmaps it and closes the file.
func (m *Mmap) Close() error {
	if m.data == nil {
		return nil
	}

	flushErr := m.Flush()
	unmapErr := unix.Munmap(m.data)
	m.data = nil
	closeErr := m.f.Close()

	if flushErr != nil {
		return flushErr
	}
	if unmapErr != nil {
		return unmapErr
	}

	return closeErr
}
