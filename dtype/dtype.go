// Package dtype maps between MRC mode numbers and concrete element types.
//
// The mapping is a fixed, process-wide table. It is not injective: 8-bit
// unsigned and half-precision float element types share a mode with their
// widened forms, so a round trip through the format widens them. Byte order
// is never part of the table; it always comes from the header's declared
// order.
package dtype

import (
	"fmt"

	"github.com/kevinpetersavage/mrcfile/errs"
	"github.com/kevinpetersavage/mrcfile/format"
)

// Kind classifies the numeric interpretation of an element.
type Kind byte

const (
	Int     Kind = 'i' // signed integer
	Uint    Kind = 'u' // unsigned integer
	Float   Kind = 'f' // IEEE 754 float
	Complex Kind = 'c' // interleaved (real, imaginary) float pair
)

// DType describes an element type as a (kind, byte width) pair.
type DType struct {
	Kind Kind
	Size int // bytes per element
}

// Common element types.
var (
	Int8      = DType{Int, 1}
	Int16     = DType{Int, 2}
	Uint8     = DType{Uint, 1}
	Uint16    = DType{Uint, 2}
	Float16   = DType{Float, 2}
	Float32   = DType{Float, 4}
	Complex64 = DType{Complex, 8}
)

// dtypeToMode is keyed on exact (kind, width) pairs. Types absent from the
// table have no MRC representation.
var dtypeToMode = map[DType]format.Mode{
	Int8:      format.ModeInt8,
	Int16:     format.ModeInt16,
	Float16:   format.ModeFloat32,
	Float32:   format.ModeFloat32,
	Uint8:     format.ModeUint16,
	Uint16:    format.ModeUint16,
	Complex64: format.ModeComplex64,
}

var modeToDType = map[format.Mode]DType{
	format.ModeInt8:      Int8,
	format.ModeInt16:     Int16,
	format.ModeFloat32:   Float32,
	format.ModeComplex64: Complex64,
	format.ModeUint16:    Uint16,
}

// ModeFromDType returns the MRC mode for the given element type.
//
// float16 data maps to mode 2 and uint8 data to mode 6; both are widened
// when written to a file. Mode 3 has no element type and is never produced.
//
// Returns:
//   - format.Mode: The mode number
//   - error: ErrUnsupportedDType for any (kind, width) pair outside the table
func ModeFromDType(dt DType) (format.Mode, error) {
	if mode, ok := dtypeToMode[dt]; ok {
		return mode, nil
	}

	return 0, fmt.Errorf("%w: %c%d", errs.ErrUnsupportedDType, dt.Kind, dt.Size)
}

// FromMode returns the element type stored on disk for the given mode.
//
// Only modes {0, 1, 2, 4, 6} are recognized; mode 3 (complex 16-bit
// integers) has no supported element type.
//
// Returns:
//   - DType: The element type
//   - error: ErrUnrecognizedMode for any other value
func FromMode(mode format.Mode) (DType, error) {
	if dt, ok := modeToDType[mode]; ok {
		return dt, nil
	}

	return DType{}, fmt.Errorf("%w: %d", errs.ErrUnrecognizedMode, int32(mode))
}

func (d DType) String() string {
	return fmt.Sprintf("%c%d", d.Kind, d.Size)
}
