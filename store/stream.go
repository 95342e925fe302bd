package store

import (
	"fmt"
	"os"

	"github.com/kevinpetersavage/mrcfile/compress"
	"github.com/kevinpetersavage/mrcfile/errs"
	"github.com/kevinpetersavage/mrcfile/format"
)

// Stream is the decompressing-transport backend. It owns a private decoded
// buffer; mutations there are never visible externally until WriteBack
// re-encodes and rewrites the whole file, because the compressed transport
// cannot be updated in place.
type Stream struct {
	path      string
	transport format.Transport
	codec     compress.Codec
	writable  bool
	buf       []byte
}

var _ Backend = (*Stream)(nil)

// OpenStream reads the file at path and decodes it through the given
// transport.
func OpenStream(path string, transport format.Transport, writable bool) (*Stream, error) {
	codec, err := compress.GetCodec(transport)
	if err != nil {
		return nil, err
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	buf, err := codec.Decompress(raw)
	if err != nil {
		return nil, fmt.Errorf("decoding %s transport: %w", transport, err)
	}

	return &Stream{path: path, transport: transport, codec: codec, writable: writable, buf: buf}, nil
}

// CreateStream creates (or truncates) the file at path and returns an empty
// writable backend encoding through the given transport. Transports without
// an encoder (bzip2) are rejected here rather than at close time.
func CreateStream(path string, transport format.Transport) (*Stream, error) {
	if transport == format.TransportBzip2 {
		return nil, fmt.Errorf("%w: %s cannot be written", errs.ErrUnsupportedTransport, transport)
	}

	codec, err := compress.GetCodec(transport)
	if err != nil {
		return nil, err
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	if err := f.Close(); err != nil {
		return nil, err
	}

	return &Stream{path: path, transport: transport, codec: codec, writable: true}, nil
}

// Bytes returns the private decoded buffer.
func (s *Stream) Bytes() []byte { return s.buf }

// InPlaceMutable always reports false: the decoded buffer is private.
func (s *Stream) InPlaceMutable() bool { return false }

// WriteBack re-encodes contents through the transport and rewrites the
// whole file.
func (s *Stream) WriteBack(contents []byte) error {
	if !s.writable {
		return errs.ErrReadOnly
	}

	encoded, err := s.codec.Compress(contents)
	if err != nil {
		return err
	}
	if err := os.WriteFile(s.path, encoded, 0o666); err != nil {
		return err
	}
	s.buf = contents

	return nil
}

// Flush is a no-op: nothing reaches the file until WriteBack.
func (s *Stream) Flush() error { return nil }

// Close releases the decoded buffer.
func (s *Stream) Close() error {
	s.buf = nil
	return nil
}
