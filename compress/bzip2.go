package compress

import (
	"bytes"
	"compress/bzip2"
	"fmt"
	"io"

	"github.com/kevinpetersavage/mrcfile/errs"
	"github.com/kevinpetersavage/mrcfile/format"
)

// Bzip2Codec implements the read side of the bzip2 transport. The standard
// library carries no bzip2 encoder, so this transport cannot be written
// back; Compress always fails.
type Bzip2Codec struct{}

var _ Codec = (*Bzip2Codec)(nil)

// NewBzip2Codec creates a new decompress-only bzip2 codec.
func NewBzip2Codec() Bzip2Codec {
	return Bzip2Codec{}
}

// Compress is unsupported for bzip2.
func (c Bzip2Codec) Compress(data []byte) ([]byte, error) {
	return nil, fmt.Errorf("%w: %s cannot be written", errs.ErrUnsupportedTransport, format.TransportBzip2)
}

// Decompress decodes a bzip2 stream back to the original contents.
func (c Bzip2Codec) Decompress(data []byte) ([]byte, error) {
	out, err := io.ReadAll(bzip2.NewReader(bytes.NewReader(data)))
	if err != nil {
		return nil, fmt.Errorf("bzip2 decompression failed: %w", err)
	}

	return out, nil
}
