package array

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kevinpetersavage/mrcfile/dtype"
	"github.com/kevinpetersavage/mrcfile/endian"
	"github.com/kevinpetersavage/mrcfile/errs"
)

func TestNew(t *testing.T) {
	engine := endian.GetLittleEndianEngine()

	t.Run("SizeMatch", func(t *testing.T) {
		a, err := New(dtype.Float32, engine, []int{2, 3}, make([]byte, 24))
		require.NoError(t, err)
		require.Equal(t, []int{2, 3}, a.Shape())
		require.Equal(t, 6, a.Len())
	})

	t.Run("SizeMismatch", func(t *testing.T) {
		_, err := New(dtype.Float32, engine, []int{2, 3}, make([]byte, 23))
		require.ErrorIs(t, err, errs.ErrShapeMismatch)
	})

	t.Run("ShapeCopied", func(t *testing.T) {
		shape := []int{2, 3}
		a, err := New(dtype.Int8, engine, shape, make([]byte, 6))
		require.NoError(t, err)
		shape[0] = 99
		require.Equal(t, []int{2, 3}, a.Shape())
	})
}

func TestElements(t *testing.T) {
	require.Equal(t, 1, Elements(nil))
	require.Equal(t, 30, Elements([]int{2, 3, 5}))
	require.Equal(t, 0, Elements([]int{2, 0, 5}))
	require.Equal(t, 0, Elements([]int{-1, 3}))
}

func TestByteSize(t *testing.T) {
	t.Run("Normal", func(t *testing.T) {
		n, err := ByteSize(dtype.Float32, []int{2, 3, 5})
		require.NoError(t, err)
		require.Equal(t, 120, n)
	})

	t.Run("NegativeDimension", func(t *testing.T) {
		n, err := ByteSize(dtype.Float32, []int{2, -1, 5})
		require.NoError(t, err)
		require.Equal(t, 0, n)
	})

	t.Run("Overflow", func(t *testing.T) {
		// These dimensions multiply past the addressable range, which a
		// naive product would silently wrap to a negative count.
		_, err := ByteSize(dtype.Float32, []int{1 << 21, 1 << 20, 1<<20 + 1})
		require.ErrorIs(t, err, errs.ErrShapeMismatch)
	})

	t.Run("MaxIntExact", func(t *testing.T) {
		n, err := ByteSize(dtype.Int8, []int{math.MaxInt})
		require.NoError(t, err)
		require.Equal(t, math.MaxInt, n)
	})
}

func TestFromFloat32(t *testing.T) {
	engine := endian.GetLittleEndianEngine()
	a, err := FromFloat32(engine, []int{2, 2}, []float32{1, -2.5, 3, 4})
	require.NoError(t, err)

	require.Equal(t, dtype.Float32, a.DType())
	require.Equal(t, 1.0, a.Float64(0))
	require.Equal(t, -2.5, a.Float64(1))
	require.Equal(t, 4.0, a.Float64(3))

	_, err = FromFloat32(engine, []int{2, 2}, []float32{1, 2, 3})
	require.ErrorIs(t, err, errs.ErrShapeMismatch)
}

func TestFromInt16(t *testing.T) {
	engine := endian.GetBigEndianEngine()
	a, err := FromInt16(engine, []int{3}, []int16{-300, 0, 300})
	require.NoError(t, err)

	require.Equal(t, dtype.Int16, a.DType())
	require.Equal(t, -300.0, a.Float64(0))
	require.Equal(t, 300.0, a.Float64(2))
}

func TestFloat64(t *testing.T) {
	engine := endian.GetLittleEndianEngine()

	t.Run("Int8", func(t *testing.T) {
		a, err := New(dtype.Int8, engine, []int{2}, []byte{0xff, 0x7f})
		require.NoError(t, err)
		require.Equal(t, -1.0, a.Float64(0))
		require.Equal(t, 127.0, a.Float64(1))
	})

	t.Run("Uint16", func(t *testing.T) {
		a, err := New(dtype.Uint16, engine, []int{1}, []byte{0xff, 0xff})
		require.NoError(t, err)
		require.Equal(t, 65535.0, a.Float64(0))
	})

	t.Run("Complex64RealComponent", func(t *testing.T) {
		data := make([]byte, 0, 8)
		data = engine.AppendUint32(data, math.Float32bits(2.5))
		data = engine.AppendUint32(data, math.Float32bits(-7))
		a, err := New(dtype.Complex64, engine, []int{1}, data)
		require.NoError(t, err)
		require.Equal(t, 2.5, a.Float64(0))
	})
}

func TestWiden(t *testing.T) {
	engine := endian.GetLittleEndianEngine()

	t.Run("Uint8ToUint16", func(t *testing.T) {
		a, err := New(dtype.Uint8, engine, []int{3}, []byte{0, 128, 255})
		require.NoError(t, err)

		w, err := a.Widen()
		require.NoError(t, err)
		require.Equal(t, dtype.Uint16, w.DType())
		require.Equal(t, a.Shape(), w.Shape())
		require.Equal(t, 0.0, w.Float64(0))
		require.Equal(t, 128.0, w.Float64(1))
		require.Equal(t, 255.0, w.Float64(2))
	})

	t.Run("Float16ToFloat32", func(t *testing.T) {
		// 0x3c00 is 1.0, 0xc000 is -2.0, 0x7bff is the largest finite half.
		data := make([]byte, 0, 6)
		for _, h := range []uint16{0x3c00, 0xc000, 0x7bff} {
			data = engine.AppendUint16(data, h)
		}
		a, err := New(dtype.Float16, engine, []int{3}, data)
		require.NoError(t, err)

		w, err := a.Widen()
		require.NoError(t, err)
		require.Equal(t, dtype.Float32, w.DType())
		require.Equal(t, 1.0, w.Float64(0))
		require.Equal(t, -2.0, w.Float64(1))
		require.Equal(t, 65504.0, w.Float64(2))
	})

	t.Run("AlreadyStorable", func(t *testing.T) {
		a, err := FromFloat32(engine, []int{2}, []float32{1, 2})
		require.NoError(t, err)

		w, err := a.Widen()
		require.NoError(t, err)
		require.Same(t, a, w)
	})
}

func TestWithByteOrder(t *testing.T) {
	little := endian.GetLittleEndianEngine()
	big := endian.GetBigEndianEngine()

	t.Run("NoOpWhenMatching", func(t *testing.T) {
		a, err := FromFloat32(little, []int{2}, []float32{1, 2})
		require.NoError(t, err)
		require.Same(t, a, a.WithByteOrder(little))
	})

	t.Run("Float32Swap", func(t *testing.T) {
		a, err := FromFloat32(little, []int{3}, []float32{1.5, -2.25, 1e20})
		require.NoError(t, err)

		b := a.WithByteOrder(big)
		require.Equal(t, big, b.ByteOrder())
		for i := 0; i < a.Len(); i++ {
			require.Equal(t, a.Float64(i), b.Float64(i))
		}

		// Swapping back reproduces the original bytes.
		require.Equal(t, a.Bytes(), b.WithByteOrder(little).Bytes())
	})

	t.Run("ComplexSwapsComponentsIndependently", func(t *testing.T) {
		data := make([]byte, 0, 8)
		data = little.AppendUint32(data, math.Float32bits(3))
		data = little.AppendUint32(data, math.Float32bits(-4))
		a, err := New(dtype.Complex64, little, []int{1}, data)
		require.NoError(t, err)

		b := a.WithByteOrder(big)
		require.Equal(t, 3.0, b.Float64(0))

		imag := math.Float32frombits(big.Uint32(b.Bytes()[4:8]))
		require.Equal(t, float32(-4), imag)
	})
}

func TestHalfToFloat32(t *testing.T) {
	tests := []struct {
		bits uint16
		want float32
	}{
		{0x0000, 0},
		{0x3c00, 1},
		{0xbc00, -1},
		{0x3555, 0.333251953125},
		{0x7bff, 65504},
		{0x0001, 5.960464477539063e-08}, // smallest subnormal
		{0x0400, 6.103515625e-05},       // smallest normal
	}

	for _, tc := range tests {
		require.Equal(t, tc.want, halfToFloat32(tc.bits), "bits %#04x", tc.bits)
	}

	t.Run("Infinity", func(t *testing.T) {
		require.True(t, math.IsInf(float64(halfToFloat32(0x7c00)), 1))
		require.True(t, math.IsInf(float64(halfToFloat32(0xfc00)), -1))
	})

	t.Run("NaN", func(t *testing.T) {
		require.True(t, math.IsNaN(float64(halfToFloat32(0x7e00))))
	})

	t.Run("NegativeZero", func(t *testing.T) {
		require.Equal(t, uint32(0x80000000), math.Float32bits(halfToFloat32(0x8000)))
	})
}
