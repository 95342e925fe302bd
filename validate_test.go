package mrcfile

import (
	"math"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kevinpetersavage/mrcfile/array"
	"github.com/kevinpetersavage/mrcfile/endian"
	"github.com/kevinpetersavage/mrcfile/format"
	"github.com/kevinpetersavage/mrcfile/header"
)

// validateFile builds a test volume, applies mutate and runs Validate over
// the result, discarding warnings so expected-invalid cases stay quiet.
func validateFile(t *testing.T, mutate func(*File)) (bool, string) {
	t.Helper()

	path := tempPath(t, "validate.mrc")
	writeTestFile(t, path, mutate)

	var out strings.Builder
	ok, err := Validate(path, &out, WithWarningHandler(func(Warning) {}))
	require.NoError(t, err)

	return ok, out.String()
}

func TestValidateGoodFile(t *testing.T) {
	ok, out := validateFile(t, nil)
	require.True(t, ok)
	require.Empty(t, out)
}

func TestValidateSingleProblems(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*File)
		want   string
	}{
		{
			"NegativeMx",
			func(f *File) { f.Header().Mx = -10 },
			"Header field 'mx' is negative",
		},
		{
			"NegativeMy",
			func(f *File) { f.Header().My = -3 },
			"Header field 'my' is negative",
		},
		{
			"NegativeMz",
			func(f *File) { f.Header().Mz = -1 },
			"Header field 'mz' is negative",
		},
		{
			"NegativeIspg",
			func(f *File) { f.Header().Ispg = -20 },
			"Header field 'ispg' is negative",
		},
		{
			"NegativeCellX",
			func(f *File) { f.Header().CellA.X = -10 },
			"Cell dimension 'x' is negative",
		},
		{
			"InvalidAxisMapping",
			func(f *File) {
				f.Header().MapC = 3
				f.Header().MapR = 4
				f.Header().MapS = -200
			},
			"Invalid axis mapping: found [-200, 3, 4]",
		},
		{
			"RepeatedAxis",
			func(f *File) {
				f.Header().MapC = 1
				f.Header().MapR = 1
				f.Header().MapS = 3
			},
			"Invalid axis mapping: found [3, 1, 1]",
		},
		{
			"OldFormatVersion",
			func(f *File) { f.Header().NVersion = 0 },
			"File does not declare MRC format version 20140: nversion = 0",
		},
		{
			"MissingExtType",
			func(f *File) {
				require.NoError(t, f.SetExtendedHeader(make([]byte, 40)))
			},
			"Extended header type is undefined or unrecognised: exttyp = ''",
		},
		{
			"UnknownExtType",
			func(f *File) {
				require.NoError(t, f.SetExtendedHeader(make([]byte, 40)))
				f.Header().SetExtType("Fake")
			},
			"Extended header type is undefined or unrecognised: exttyp = 'Fake'",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ok, out := validateFile(t, tc.mutate)
			require.False(t, ok)
			require.Equal(t, tc.want, strings.TrimSpace(out))
		})
	}
}

func TestValidateLabels(t *testing.T) {
	t.Run("NlablTooLarge", func(t *testing.T) {
		ok, out := validateFile(t, func(f *File) {
			f.Header().SetLabel(0, "first")
			f.Header().SetLabel(1, "second")
			f.Header().NLabl = 3
		})
		require.False(t, ok)
		require.Equal(t, "Error in header labels: nlabl is 3 but 2 labels contain text",
			strings.TrimSpace(out))
	})

	t.Run("NlablTooSmall", func(t *testing.T) {
		ok, out := validateFile(t, func(f *File) {
			f.Header().SetLabel(0, "first")
			f.Header().SetLabel(1, "second")
			f.Header().NLabl = 1
		})
		require.False(t, ok)
		require.Equal(t, "Error in header labels: nlabl is 1 but 2 labels contain text",
			strings.TrimSpace(out))
	})

	t.Run("NegativeNlabl", func(t *testing.T) {
		// A negative count trips the field check and also disagrees with
		// the number of text-containing slots, so two lines come out.
		ok, out := validateFile(t, func(f *File) { f.Header().NLabl = -2 })
		require.False(t, ok)
		require.Equal(t, []string{
			"Header field 'nlabl' is negative",
			"Error in header labels: nlabl is -2 but 0 labels contain text",
		}, strings.Split(strings.TrimSpace(out), "\n"))
	})

	t.Run("GapBetweenLabels", func(t *testing.T) {
		ok, out := validateFile(t, func(f *File) {
			f.Header().SetLabel(0, "first")
			f.Header().SetLabel(2, "third")
			f.Header().NLabl = 2
		})
		require.False(t, ok)
		require.Equal(t,
			"Error in header labels: empty labels appear between text-containing labels",
			strings.TrimSpace(out))
	})
}

func TestValidateVolumeStack(t *testing.T) {
	path := tempPath(t, "stack.mrc")
	engine := endian.GetLittleEndianEngine()

	newStack := func(t *testing.T, mutate func(*File)) {
		t.Helper()
		f, err := New(path, WithByteOrder(engine))
		require.NoError(t, err)
		a, err := array.FromFloat32(engine, []int{3, 2, 4, 5}, rangeFloat32(0, 120))
		require.NoError(t, err)
		require.NoError(t, f.SetData(a))
		if mutate != nil {
			mutate(f)
		}
		require.NoError(t, f.Close())
	}

	t.Run("Valid", func(t *testing.T) {
		newStack(t, nil)

		var out strings.Builder
		ok, err := Validate(path, &out)
		require.NoError(t, err)
		require.True(t, ok, out.String())
	})

	t.Run("IndivisibleNz", func(t *testing.T) {
		newStack(t, func(f *File) {
			f.Header().Mz = 5
		})

		// The reinterpreted shape also trips the size and statistics
		// checks, so only assert the divisibility line is present.
		var out strings.Builder
		ok, err := Validate(path, &out)
		require.NoError(t, err)
		require.False(t, ok)
		require.Contains(t, out.String(),
			"Error in dimensions for volume stack: nz should be divisible by mz. Found nz = 6, mz = 5")
	})
}

func TestValidateDualSignaledProblems(t *testing.T) {
	collect := func(t *testing.T, mutate func(*File)) (bool, string, []Warning) {
		t.Helper()
		path := tempPath(t, "warned.mrc")
		writeTestFile(t, path, mutate)

		var warnings []Warning
		var out strings.Builder
		ok, err := Validate(path, &out, WithWarningHandler(func(w Warning) {
			warnings = append(warnings, w)
		}))
		require.NoError(t, err)

		return ok, out.String(), warnings
	}

	codes := func(warnings []Warning) []WarningCode {
		out := make([]WarningCode, 0, len(warnings))
		for _, w := range warnings {
			out = append(out, w.Code)
		}

		return out
	}

	t.Run("MapID", func(t *testing.T) {
		ok, out, warnings := collect(t, func(f *File) {
			copy(f.Header().Map[:], "map ")
		})
		require.False(t, ok)
		require.Equal(t, "Map ID string is incorrect: found 'map ', should be 'MAP '",
			strings.TrimSpace(out))
		require.Equal(t, []WarningCode{WarnMapID}, codes(warnings))
	})

	t.Run("MachineStamp", func(t *testing.T) {
		ok, out, warnings := collect(t, func(f *File) {
			f.Header().MachSt = [4]byte{0x42, 0x42, 0x00, 0x00}
		})
		require.False(t, ok)
		require.Equal(t, "Invalid machine stamp: 0x42 0x42 0x00 0x00", strings.TrimSpace(out))
		require.Equal(t, []WarningCode{WarnMachineStamp}, codes(warnings))
	})

	t.Run("Mode", func(t *testing.T) {
		ok, out, warnings := collect(t, func(f *File) {
			f.Header().Mode = 8
		})
		require.False(t, ok)
		require.Equal(t, "Invalid mode: 8", strings.TrimSpace(out))
		// The permissive open signals the dropped data array first.
		require.Equal(t, []WarningCode{WarnPermissiveOpen, WarnMode}, codes(warnings))
	})

	t.Run("FormatVersion", func(t *testing.T) {
		ok, _, warnings := collect(t, func(f *File) {
			f.Header().NVersion = 20139
		})
		require.False(t, ok)
		require.Equal(t, []WarningCode{WarnFormatVersion}, codes(warnings))
	})
}

func TestValidateDataSize(t *testing.T) {
	t.Run("Truncated", func(t *testing.T) {
		path := tempPath(t, "short.mrc")
		writeTestFile(t, path, nil)
		require.NoError(t, os.Truncate(path, header.Size+100))

		var out strings.Builder
		ok, err := Validate(path, &out, WithWarningHandler(func(Warning) {}))
		require.NoError(t, err)
		require.False(t, ok)
		require.Contains(t, out.String(),
			"Expected 120 bytes in data block but the file can only supply 100")
	})

	t.Run("Oversized", func(t *testing.T) {
		path := tempPath(t, "long.mrc")
		writeTestFile(t, path, nil)

		f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0)
		require.NoError(t, err)
		_, err = f.Write([]byte{1, 2, 3, 4})
		require.NoError(t, err)
		require.NoError(t, f.Close())

		var out strings.Builder
		ok, err := Validate(path, &out)
		require.NoError(t, err)
		require.False(t, ok)
		require.Contains(t, out.String(), "MRC file is 4 bytes larger than expected")
	})
}

func TestValidateStatistics(t *testing.T) {
	t.Run("WrongMin", func(t *testing.T) {
		ok, out := validateFile(t, func(f *File) { f.Header().DMin = -11 })
		require.False(t, ok)
		require.Equal(t,
			"Error in data statistics: minimum is -10 but the value in the header is -11",
			strings.TrimSpace(out))
	})

	t.Run("WrongMax", func(t *testing.T) {
		ok, out := validateFile(t, func(f *File) { f.Header().DMax = 15 })
		require.False(t, ok)
		require.Equal(t,
			"Error in data statistics: maximum is 19 but the value in the header is 15",
			strings.TrimSpace(out))
	})

	t.Run("WrongMean", func(t *testing.T) {
		ok, out := validateFile(t, func(f *File) { f.Header().DMean = -2.5 })
		require.False(t, ok)
		require.Equal(t,
			"Error in data statistics: mean is 4.5 but the value in the header is -2.5",
			strings.TrimSpace(out))
	})

	t.Run("WrongRMS", func(t *testing.T) {
		ok, out := validateFile(t, func(f *File) { f.Header().RMS = 9 })
		require.False(t, ok)
		require.Contains(t, out, "Error in data statistics: RMS deviation is ")
		require.Contains(t, out, "but the value in the header is 9")
	})

	t.Run("EachStatisticChecksIndependently", func(t *testing.T) {
		ok, out := validateFile(t, func(f *File) {
			f.Header().DMin = 10
			f.Header().DMax = 11
			f.Header().DMean = 19
		})
		require.False(t, ok)
		lines := strings.Split(strings.TrimSpace(out), "\n")
		require.Len(t, lines, 3)
	})

	t.Run("UndeterminedExemptions", func(t *testing.T) {
		ok, out := validateFile(t, func(f *File) {
			f.Header().DMin = format.UndeterminedFloat
			f.Header().DMean = float32(math.Inf(-1))
			f.Header().RMS = format.UndeterminedFloat
		})
		require.True(t, ok, out)
	})

	t.Run("UndeterminedMinLeavesMaxChecked", func(t *testing.T) {
		ok, out := validateFile(t, func(f *File) {
			f.Header().DMin = format.UndeterminedFloat
			f.Header().DMax = 100
		})
		require.False(t, ok)
		require.Equal(t,
			"Error in data statistics: maximum is 19 but the value in the header is 100",
			strings.TrimSpace(out))
	})

	t.Run("NegativeRMSStillChecked", func(t *testing.T) {
		// Only the sentinel exempts a statistic; an ordinary negative RMS
		// is a mismatch like any other.
		ok, out := validateFile(t, func(f *File) { f.Header().RMS = -15 })
		require.False(t, ok)
		require.Contains(t, out, "RMS deviation is")
	})
}

func TestValidateManyProblemsSimultaneously(t *testing.T) {
	path := tempPath(t, "broken.mrc")
	engine := endian.GetLittleEndianEngine()

	f, err := New(path, WithByteOrder(engine))
	require.NoError(t, err)

	a, err := array.FromFloat32(engine, []int{3, 2, 5}, rangeFloat32(-10, 20))
	require.NoError(t, err)
	require.NoError(t, f.SetData(a))
	require.NoError(t, f.SetExtendedHeader(make([]byte, 120)))

	h := f.Header()
	h.Nz = 2
	h.My = -1000
	h.Mz = -5
	h.CellA.Y = -12.1
	h.MapC = 5
	h.DMin = 10
	h.DMax = 11
	h.DMean = 19
	h.Ispg = -20
	h.SetExtType("fake")
	h.NVersion = 0
	h.RMS = 0
	h.NLabl = 4
	h.SetLabel(9, "test label")
	require.NoError(t, f.Close())

	var out strings.Builder
	ok, err := Validate(path, &out, WithWarningHandler(func(Warning) {}))
	require.NoError(t, err)
	require.False(t, ok)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 13)

	// Check order is stable: size, then header fields, then data statistics.
	require.Equal(t, "MRC file is 40 bytes larger than expected", lines[0])
	require.Equal(t, "Header field 'my' is negative", lines[1])
	require.Equal(t, "Header field 'mz' is negative", lines[2])
	require.Equal(t, "Header field 'ispg' is negative", lines[3])
	require.Equal(t, "Cell dimension 'y' is negative", lines[4])
	require.Equal(t, "Invalid axis mapping: found [3, 5, 2]", lines[5])
	require.Equal(t,
		"Error in header labels: nlabl is 4 but 1 labels contain text; "+
			"empty labels appear between text-containing labels", lines[6])
	require.Equal(t, "File does not declare MRC format version 20140: nversion = 0", lines[7])
	require.Equal(t, "Extended header type is undefined or unrecognised: exttyp = 'fake'", lines[8])
	require.Contains(t, lines[9], "minimum is")
	require.Contains(t, lines[10], "maximum is")
	require.Contains(t, lines[11], "mean is")
	require.Contains(t, lines[12], "RMS deviation is")
}

func TestValidateBytes(t *testing.T) {
	path := tempPath(t, "volume.mrc")
	writeTestFile(t, path, func(f *File) {
		f.Header().NVersion = 0
	})
	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	var out strings.Builder
	ok, err := ValidateBytes(raw, &out, WithWarningHandler(func(Warning) {}))
	require.NoError(t, err)
	require.False(t, ok)
	require.Equal(t, "File does not declare MRC format version 20140: nversion = 0",
		strings.TrimSpace(out.String()))
}

func TestValidateCompressed(t *testing.T) {
	path := tempPath(t, "volume.mrc.gz")
	engine := endian.GetLittleEndianEngine()

	f, err := New(path, WithTransport(format.TransportGzip), WithByteOrder(engine))
	require.NoError(t, err)
	a, err := array.FromFloat32(engine, []int{2, 3, 5}, rangeFloat32(-10, 20))
	require.NoError(t, err)
	require.NoError(t, f.SetData(a))
	f.Header().NVersion = 0
	require.NoError(t, f.Close())

	var out strings.Builder
	ok, err := Validate(path, &out, WithWarningHandler(func(Warning) {}))
	require.NoError(t, err)
	require.False(t, ok)
	require.Equal(t, "File does not declare MRC format version 20140: nversion = 0",
		strings.TrimSpace(out.String()))
}
