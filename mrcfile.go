// Package mrcfile reads, writes and validates volumetric image files in
// the MRC2014 format.
//
// A file is opened into a File session that exposes the decoded header,
// the extended header bytes and the data array:
//
//	f, err := mrcfile.Open("map.mrc")
//	if err != nil {
//		return err
//	}
//	defer f.Close()
//	fmt.Println(f.Header().Nx, f.Data().DType())
//
// Sessions default to read-only; pass WithReadWrite to mutate. New creates
// a fresh file with sensible header defaults, Mmap maps an uncompressed
// file directly into memory, and OpenBytes interprets an in-memory buffer.
// Files compressed with gzip, bzip2, zstd or lz4 are detected from their
// leading bytes and decompressed transparently.
//
// Validate checks a file against the MRC2014 format rules and writes one
// diagnostic line per violated rule.
package mrcfile

import (
	"fmt"

	"github.com/kevinpetersavage/mrcfile/array"
	"github.com/kevinpetersavage/mrcfile/compress"
	"github.com/kevinpetersavage/mrcfile/dtype"
	"github.com/kevinpetersavage/mrcfile/endian"
	"github.com/kevinpetersavage/mrcfile/errs"
	"github.com/kevinpetersavage/mrcfile/format"
	"github.com/kevinpetersavage/mrcfile/header"
	"github.com/kevinpetersavage/mrcfile/store"
)

// Open opens an existing MRC file. The compressed transport, if any, is
// sniffed from the file's leading bytes; the byte order is taken from the
// machine stamp.
func Open(path string, opts ...Option) (*File, error) {
	s, err := newSettings(opts...)
	if err != nil {
		return nil, err
	}

	b, transport, err := store.Open(path, s.writable)
	if err != nil {
		return nil, err
	}

	return fromBackend(b, transport, s)
}

// New creates a new MRC file at path with default header values: float32
// mode, an empty volume, identity axis mapping and undetermined
// statistics. The session is writable; call SetData to give it contents.
func New(path string, opts ...Option) (*File, error) {
	s, err := newSettings(opts...)
	if err != nil {
		return nil, err
	}
	s.writable = true

	b, err := store.Create(path, s.transport)
	if err != nil {
		return nil, err
	}

	hdr := header.New()
	stamp, err := endian.MachineStampFromByteOrder(s.engine)
	if err != nil {
		b.Close()
		return nil, err
	}
	hdr.MachSt = stamp

	f := &File{
		hdr:       hdr,
		engine:    s.engine,
		data:      array.Zeros(dtype.Float32, s.engine, []int{0, 0, 0}),
		backend:   b,
		transport: s.transport,
		writable:  true,
		warn:      s.warn,
	}

	return f, nil
}

// Mmap memory-maps an existing uncompressed MRC file. The returned
// session's data array aliases the mapping, so element mutations reach the
// file without an intervening copy; Flush syncs them to stable storage.
// Compressed files cannot be mapped.
func Mmap(path string, opts ...Option) (*File, error) {
	s, err := newSettings(opts...)
	if err != nil {
		return nil, err
	}

	b, err := store.OpenMmap(path, s.writable)
	if err != nil {
		return nil, err
	}

	raw := b.Bytes()
	prefix := raw
	if len(prefix) > 4 {
		prefix = prefix[:4]
	}
	if t := compress.Sniff(prefix); t != format.TransportNone {
		b.Close()
		return nil, fmt.Errorf("%w: %s", errs.ErrCompressedMmap, t)
	}

	return fromBackend(b, format.TransportNone, s)
}

// OpenBytes interprets buf as a complete MRC file. Uncompressed buffers
// are aliased, not copied, so a writable session mutates buf directly;
// compressed buffers are decompressed into a private copy first.
func OpenBytes(buf []byte, opts ...Option) (*File, error) {
	s, err := newSettings(opts...)
	if err != nil {
		return nil, err
	}

	prefix := buf
	if len(prefix) > 4 {
		prefix = prefix[:4]
	}
	transport := compress.Sniff(prefix)
	if transport != format.TransportNone {
		codec, err := compress.GetCodec(transport)
		if err != nil {
			return nil, err
		}
		decoded, err := codec.Decompress(buf)
		if err != nil {
			return nil, err
		}
		buf = decoded
	}

	return fromBackend(store.NewMemory(buf), transport, s)
}
