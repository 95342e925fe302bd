// Package stats computes the data statistics an MRC header carries:
// minimum, maximum, mean and the population RMS deviation from the mean.
//
// The reduction always runs in float64, whatever the element type, to avoid
// overflow and precision loss on integer and reduced-precision inputs. The
// results are reported at header precision (float32).
//
// A writer may decline to compute a statistic by storing the undetermined
// sentinel (format.UndeterminedFloat, the most negative finite header
// float); Undetermined recognizes that convention so validation can skip
// the field structurally instead of comparing it.
package stats

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/kevinpetersavage/mrcfile/array"
	"github.com/kevinpetersavage/mrcfile/format"
	"github.com/kevinpetersavage/mrcfile/internal/pool"
)

// Summary holds computed data statistics at header precision.
type Summary struct {
	Min  float32
	Max  float32
	Mean float32
	RMS  float32
}

// Compute reduces the full data array. Empty or nil arrays yield the zero
// Summary. Complex elements contribute their real components.
func Compute(a *array.Array) Summary {
	if a == nil || a.Len() == 0 {
		return Summary{}
	}

	n := a.Len()
	buf, release := pool.GetFloat64Slice(n)
	defer release()

	for i := 0; i < n; i++ {
		buf[i] = a.Float64(i)
	}

	return Summary{
		Min:  float32(floats.Min(buf)),
		Max:  float32(floats.Max(buf)),
		Mean: float32(stat.Mean(buf, nil)),
		RMS:  float32(stat.PopStdDev(buf, nil)),
	}
}

// Undetermined reports whether a declared header statistic carries the
// undetermined sentinel: a value at or below the most negative finite
// header float (negative infinity included).
func Undetermined(v float32) bool {
	return v <= format.UndeterminedFloat
}
