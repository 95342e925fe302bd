// Package errs defines the sentinel error values shared across the module.
//
// Callers match them with errors.Is; functions wrap them with fmt.Errorf
// and %w to attach the offending value.
package errs

import "errors"

// Fatal construction-time errors. These abort an open or decode and
// propagate to the caller.
var (
	// ErrTruncatedHeader is returned when fewer bytes than the fixed header
	// record size are available.
	ErrTruncatedHeader = errors.New("truncated header")

	// ErrUnrecognizedMode is returned for a mode value outside the supported
	// set {0, 1, 2, 4, 6}.
	ErrUnrecognizedMode = errors.New("unrecognised mode")

	// ErrUnsupportedDType is returned when an element type has no
	// corresponding MRC mode.
	ErrUnsupportedDType = errors.New("dtype cannot be converted to an MRC mode")

	// ErrUnrecognizedByteOrder is returned for a byte order outside
	// {native, little, big}.
	ErrUnrecognizedByteOrder = errors.New("unrecognised byte order")

	// ErrInvalidSamplingRate is returned when a volume-stack header declares
	// mz == 0, which would make the stack depth undefined.
	ErrInvalidSamplingRate = errors.New("invalid sampling rate: mz is zero for a volume stack")

	// ErrDataTooSmall is returned when the file cannot supply the number of
	// data bytes the header declares.
	ErrDataTooSmall = errors.New("data block smaller than header declares")
)

// Array and session errors.
var (
	// ErrShapeMismatch is returned when a byte buffer length does not match
	// the element width times the product of the shape.
	ErrShapeMismatch = errors.New("buffer length does not match shape")

	// ErrReadOnly is returned for mutations attempted on a read-only session
	// or backend.
	ErrReadOnly = errors.New("file is read-only")

	// ErrClosed is returned for operations on a closed session.
	ErrClosed = errors.New("file is closed")
)

// Backend and transport errors.
var (
	// ErrUnsupportedTransport is returned for a transport with no codec, or
	// for a codec operation the transport cannot perform (bzip2 encoding).
	ErrUnsupportedTransport = errors.New("unsupported transport")

	// ErrCannotResize is returned when a backend cannot change the length of
	// its backing bytes in place.
	ErrCannotResize = errors.New("backend cannot resize contents in place")

	// ErrMmapUnsupported is returned on platforms without memory-map support.
	ErrMmapUnsupported = errors.New("memory mapping is not supported on this platform")

	// ErrCompressedMmap is returned when a memory map is requested over a
	// compressed transport.
	ErrCompressedMmap = errors.New("cannot memory-map a compressed file")
)
