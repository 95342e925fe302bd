package mrcfile

import (
	"github.com/kevinpetersavage/mrcfile/endian"
	"github.com/kevinpetersavage/mrcfile/format"
	"github.com/kevinpetersavage/mrcfile/internal/options"
)

type settings struct {
	writable   bool
	permissive bool
	transport  format.Transport
	engine     endian.EndianEngine
	warn       func(Warning)
}

// Option configures Open, New, Mmap, OpenBytes and the validation entry
// points.
type Option = options.Option[*settings]

func newSettings(opts ...Option) (*settings, error) {
	s := &settings{
		transport: format.TransportNone,
		engine:    endian.GetNativeEngine(),
		warn:      logWarning,
	}
	if err := options.Apply(s, opts...); err != nil {
		return nil, err
	}

	return s, nil
}

// WithReadWrite opens an existing file for mutation. Files are opened
// read-only by default.
func WithReadWrite() Option {
	return options.NoError(func(s *settings) { s.writable = true })
}

// WithPermissive downgrades structural problems found while opening (bad
// mode, unresolvable shape, short data block) from errors to warnings,
// leaving the data array nil. Validation uses this to inspect files that
// would otherwise refuse to open.
func WithPermissive() Option {
	return options.NoError(func(s *settings) { s.permissive = true })
}

// WithTransport selects the compressed transport a new file is written
// through. Ignored when opening existing files, whose transport is sniffed
// from their leading bytes.
func WithTransport(t format.Transport) Option {
	return options.NoError(func(s *settings) { s.transport = t })
}

// WithByteOrder sets the byte order for a new file. New files default to
// the native execution environment's order; existing files always use the
// order declared by their machine stamp.
func WithByteOrder(engine endian.EndianEngine) Option {
	return options.NoError(func(s *settings) { s.engine = engine })
}

// WithWarningHandler replaces the default warning sink. The handler
// receives exactly one Warning per violated dual-signaled condition,
// independently of any diagnostic text written by validation.
func WithWarningHandler(h func(Warning)) Option {
	return options.NoError(func(s *settings) { s.warn = h })
}
