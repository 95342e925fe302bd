// Package compress implements the transport layer for MRC files: optional
// whole-file compression wrappers around an unchanged (header, data) byte
// stream.
//
// A transport is pass-through plumbing, not a format feature. Codecs here
// compress or decompress the complete file contents; the format core never
// sees compressed bytes. Transports are usually selected by sniffing the
// file's leading magic bytes with Sniff.
package compress

import (
	"bytes"
	"fmt"

	"github.com/kevinpetersavage/mrcfile/format"
)

// Codec compresses and decompresses complete file contents.
//
// Memory management: returned slices are newly allocated and owned by the
// caller (the no-op codec, which returns its input unchanged, is the one
// exception). Input slices are never modified. Implementations are safe
// for concurrent use.
type Codec interface {
	// Compress compresses the input and returns the transport-encoded bytes.
	Compress(data []byte) ([]byte, error)

	// Decompress decodes transport-encoded bytes back to the original
	// contents, returning an error for corrupted or mismatched input.
	Decompress(data []byte) ([]byte, error)
}

var builtinCodecs = map[format.Transport]Codec{
	format.TransportNone:  NewNoOpCodec(),
	format.TransportGzip:  NewGzipCodec(),
	format.TransportBzip2: NewBzip2Codec(),
	format.TransportZstd:  NewZstdCodec(),
	format.TransportLZ4:   NewLZ4Codec(),
}

// GetCodec retrieves the built-in Codec for the given transport.
func GetCodec(transport format.Transport) (Codec, error) {
	if codec, ok := builtinCodecs[transport]; ok {
		return codec, nil
	}

	return nil, fmt.Errorf("unsupported transport: %s", transport)
}

// Transport magic bytes.
var (
	gzipMagic  = []byte{0x1f, 0x8b}
	bzip2Magic = []byte{'B', 'Z', 'h'}
	zstdMagic  = []byte{0x28, 0xb5, 0x2f, 0xfd}
	lz4Magic   = []byte{0x04, 0x22, 0x4d, 0x18}
)

// Sniff identifies the transport from the leading bytes of a file.
// Unrecognized prefixes (the MRC header itself included) are reported as
// TransportNone.
func Sniff(prefix []byte) format.Transport {
	switch {
	case bytes.HasPrefix(prefix, gzipMagic):
		return format.TransportGzip
	case bytes.HasPrefix(prefix, bzip2Magic):
		return format.TransportBzip2
	case bytes.HasPrefix(prefix, zstdMagic):
		return format.TransportZstd
	case bytes.HasPrefix(prefix, lz4Magic):
		return format.TransportLZ4
	default:
		return format.TransportNone
	}
}
