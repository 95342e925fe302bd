package compress

// ZstdCodec implements the Zstandard transport. The implementation is
// selected at build time: a cgo binding when cgo is available, and a pure
// Go fallback otherwise. Both produce standard zstd frames.
type ZstdCodec struct{}

var _ Codec = (*ZstdCodec)(nil)

// NewZstdCodec creates a new zstd codec with default settings.
func NewZstdCodec() ZstdCodec {
	return ZstdCodec{}
}
