// Package store implements the storage backends an MRC file session can sit
// on: a private in-memory copy of a plain file, a caller-supplied byte
// slice, an OS memory mapping, and a transparently decompressed transport.
//
// All backends share one contract: they supply the complete decoded file
// contents as a byte slice and define which mutations are possible in
// place. Backends that cannot mutate their storage in place (buffered and
// decompressing backends) only persist changes through WriteBack.
package store

import (
	"os"

	"github.com/kevinpetersavage/mrcfile/compress"
	"github.com/kevinpetersavage/mrcfile/format"
)

// Backend supplies the decoded bytes of an MRC file.
type Backend interface {
	// Bytes returns the complete decoded contents. For memory-mapped
	// backends the returned slice aliases the mapping, so mutations are
	// immediately visible in the underlying file.
	Bytes() []byte

	// InPlaceMutable reports whether mutations through Bytes reach the
	// underlying storage without a WriteBack.
	InPlaceMutable() bool

	// WriteBack replaces the entire file contents, re-encoding through the
	// transport where one applies.
	WriteBack(contents []byte) error

	// Flush forces any in-place mutations out to stable storage.
	Flush() error

	// Close releases all backend resources. It is safe to call more than
	// once.
	Close() error
}

// Open sniffs the transport from the file's leading bytes and opens the
// matching backend: a decompressing stream for recognized transports, a
// buffered backend otherwise.
func Open(path string, writable bool) (Backend, format.Transport, error) {
	prefix := make([]byte, 4)
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	n, _ := f.Read(prefix)
	if err := f.Close(); err != nil {
		return nil, 0, err
	}

	transport := compress.Sniff(prefix[:n])
	if transport == format.TransportNone {
		b, err := OpenBuffered(path, writable)
		return b, transport, err
	}

	s, err := OpenStream(path, transport, writable)
	return s, transport, err
}

// Create prepares a writable backend for a new file, through the given
// transport when one is requested.
func Create(path string, transport format.Transport) (Backend, error) {
	if transport == format.TransportNone {
		return CreateBuffered(path)
	}

	return CreateStream(path, transport)
}
