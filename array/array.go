// Package array provides the opaque numeric buffer the rest of the module
// operates on: raw bytes plus an element type, a byte order and a logical
// multi-dimensional shape.
//
// The buffer imposes no storage of its own; it aliases whatever slice it is
// constructed over. When that slice comes from a memory-mapped backend,
// writes through Bytes are immediately visible in the underlying file.
package array

import (
	"fmt"
	"math"

	"github.com/kevinpetersavage/mrcfile/dtype"
	"github.com/kevinpetersavage/mrcfile/endian"
	"github.com/kevinpetersavage/mrcfile/errs"
)

// Array is a logically multi-dimensional numeric buffer.
type Array struct {
	dt     dtype.DType
	engine endian.EndianEngine
	shape  []int
	data   []byte
}

// New wraps data as an array of the given element type and shape.
//
// Returns:
//   - *Array: Array aliasing data
//   - error: ErrShapeMismatch when len(data) != element width * product(shape)
func New(dt dtype.DType, engine endian.EndianEngine, shape []int, data []byte) (*Array, error) {
	want := dt.Size * Elements(shape)
	if len(data) != want {
		return nil, fmt.Errorf("%w: have %d bytes, shape %v of %s requires %d",
			errs.ErrShapeMismatch, len(data), shape, dt, want)
	}

	return &Array{dt: dt, engine: engine, shape: append([]int(nil), shape...), data: data}, nil
}

// Zeros allocates a zero-filled array of the given element type and shape.
func Zeros(dt dtype.DType, engine endian.EndianEngine, shape []int) *Array {
	a, _ := New(dt, engine, shape, make([]byte, dt.Size*Elements(shape)))
	return a
}

// FromFloat32 builds a float32 array from values, encoded in the given byte
// order.
func FromFloat32(engine endian.EndianEngine, shape []int, values []float32) (*Array, error) {
	if len(values) != Elements(shape) {
		return nil, fmt.Errorf("%w: %d values for shape %v", errs.ErrShapeMismatch, len(values), shape)
	}

	data := make([]byte, 0, 4*len(values))
	for _, v := range values {
		data = engine.AppendUint32(data, math.Float32bits(v))
	}

	return New(dtype.Float32, engine, shape, data)
}

// FromInt16 builds an int16 array from values, encoded in the given byte
// order.
func FromInt16(engine endian.EndianEngine, shape []int, values []int16) (*Array, error) {
	if len(values) != Elements(shape) {
		return nil, fmt.Errorf("%w: %d values for shape %v", errs.ErrShapeMismatch, len(values), shape)
	}

	data := make([]byte, 0, 2*len(values))
	for _, v := range values {
		data = engine.AppendUint16(data, uint16(v))
	}

	return New(dtype.Int16, engine, shape, data)
}

// ByteSize returns the byte length dt elements of the given shape occupy.
// Header-derived shapes are untrusted, so the product is computed with an
// overflow check; a shape too large to address fails with
// ErrShapeMismatch instead of wrapping negative.
func ByteSize(dt dtype.DType, shape []int) (int, error) {
	n := dt.Size
	for _, d := range shape {
		if d < 0 {
			return 0, nil
		}
		if d > 0 && n > math.MaxInt/d {
			return 0, fmt.Errorf("%w: shape %v of %s exceeds addressable size",
				errs.ErrShapeMismatch, shape, dt)
		}
		n *= d
	}

	return n, nil
}

// Elements returns the element count implied by shape.
func Elements(shape []int) int {
	n := 1
	for _, d := range shape {
		if d < 0 {
			return 0
		}
		n *= d
	}

	return n
}

// DType returns the element type.
func (a *Array) DType() dtype.DType { return a.dt }

// ByteOrder returns the byte order of the raw bytes.
func (a *Array) ByteOrder() endian.EndianEngine { return a.engine }

// Shape returns the logical shape, slowest axis first. The caller must not
// modify the returned slice.
func (a *Array) Shape() []int { return a.shape }

// Len returns the number of elements.
func (a *Array) Len() int { return len(a.data) / a.dt.Size }

// Bytes returns the raw backing bytes. The slice aliases the array's
// storage; mutations are visible to every other holder of the same bytes.
func (a *Array) Bytes() []byte { return a.data }

// Float64 returns element i converted to float64. Complex elements yield
// their real component.
func (a *Array) Float64(i int) float64 {
	off := i * a.dt.Size
	switch a.dt {
	case dtype.Int8:
		return float64(int8(a.data[off]))
	case dtype.Int16:
		return float64(int16(a.engine.Uint16(a.data[off : off+2])))
	case dtype.Uint8:
		return float64(a.data[off])
	case dtype.Uint16:
		return float64(a.engine.Uint16(a.data[off : off+2]))
	case dtype.Float16:
		return float64(halfToFloat32(a.engine.Uint16(a.data[off : off+2])))
	case dtype.Float32, dtype.Complex64:
		return float64(math.Float32frombits(a.engine.Uint32(a.data[off : off+4])))
	default:
		panic(fmt.Sprintf("array: element access for unsupported dtype %s", a.dt))
	}
}

// Widen converts the array to the element type the format stores for its
// mode: float16 widens to float32 and uint8 to uint16. Arrays already in a
// storable type are returned unchanged.
func (a *Array) Widen() (*Array, error) {
	mode, err := dtype.ModeFromDType(a.dt)
	if err != nil {
		return nil, err
	}

	stored, err := dtype.FromMode(mode)
	if err != nil {
		return nil, err
	}
	if stored == a.dt {
		return a, nil
	}

	out := make([]byte, 0, stored.Size*a.Len())
	switch stored {
	case dtype.Uint16:
		for i := 0; i < a.Len(); i++ {
			out = a.engine.AppendUint16(out, uint16(a.data[i]))
		}
	case dtype.Float32:
		for i := 0; i < a.Len(); i++ {
			v := halfToFloat32(a.engine.Uint16(a.data[2*i : 2*i+2]))
			out = a.engine.AppendUint32(out, math.Float32bits(v))
		}
	default:
		return nil, fmt.Errorf("%w: widen %s to %s", errs.ErrUnsupportedDType, a.dt, stored)
	}

	return New(stored, a.engine, a.shape, out)
}

// WithByteOrder returns the array re-encoded in the given byte order, or
// the receiver itself when the order already matches. Complex elements swap
// their two 4-byte components independently.
func (a *Array) WithByteOrder(engine endian.EndianEngine) *Array {
	if engine == a.engine {
		return a
	}

	word := a.dt.Size
	if a.dt.Kind == dtype.Complex {
		word = a.dt.Size / 2
	}

	out := make([]byte, len(a.data))
	copy(out, a.data)
	// Only two byte orders exist, so a mismatch always means a swap.
	for off := 0; off < len(out); off += word {
		for i, j := off, off+word-1; i < j; i, j = i+1, j-1 {
			out[i], out[j] = out[j], out[i]
		}
	}

	swapped, _ := New(a.dt, engine, a.shape, out)

	return swapped
}

// halfToFloat32 converts an IEEE 754 binary16 bit pattern to float32.
func halfToFloat32(h uint16) float32 {
	sign := uint32(h>>15) << 31
	exp := uint32(h>>10) & 0x1f
	frac := uint32(h & 0x3ff)

	switch exp {
	case 0:
		if frac == 0 {
			return math.Float32frombits(sign)
		}
		// Subnormal half: renormalize into a single-precision exponent.
		e := uint32(127 - 15 + 1)
		for frac&0x400 == 0 {
			frac <<= 1
			e--
		}

		return math.Float32frombits(sign | e<<23 | (frac&0x3ff)<<13)
	case 0x1f:
		return math.Float32frombits(sign | 0xff<<23 | frac<<13)
	default:
		return math.Float32frombits(sign | (exp+127-15)<<23 | frac<<13)
	}
}
