package mrcfile

import (
	"fmt"
	"io"
	"strings"

	"github.com/kevinpetersavage/mrcfile/array"
	"github.com/kevinpetersavage/mrcfile/dtype"
	"github.com/kevinpetersavage/mrcfile/endian"
	"github.com/kevinpetersavage/mrcfile/format"
	"github.com/kevinpetersavage/mrcfile/header"
	"github.com/kevinpetersavage/mrcfile/stats"
)

// Validate opens the file at path permissively and checks it against the
// MRC2014 format rules, writing one line per violated rule to w. It
// returns true when every check passes.
//
// Four conditions with a safety impact (incorrect map ID, unrecognizable
// machine stamp, invalid mode, missing format version declaration) also
// raise a Warning through the configured handler, so callers that discard
// w still observe them.
func Validate(path string, w io.Writer, opts ...Option) (bool, error) {
	f, err := Open(path, append(opts, WithPermissive())...)
	if err != nil {
		return false, err
	}
	defer f.Close()

	return f.Validate(w), nil
}

// ValidateBytes checks an in-memory MRC file the same way Validate checks
// one on disk.
func ValidateBytes(buf []byte, w io.Writer, opts ...Option) (bool, error) {
	f, err := OpenBytes(buf, append(opts, WithPermissive())...)
	if err != nil {
		return false, err
	}
	defer f.Close()

	return f.Validate(w), nil
}

// Validate checks the open session against the format rules, writing one
// diagnostic line per violated rule to w. Checks run in a fixed order;
// checks that depend on the data array are skipped when a permissive open
// could not construct one.
func (f *File) Validate(w io.Writer) bool {
	v := &validator{f: f, w: w, valid: true}

	v.checkMapID()
	v.checkMachineStamp()
	v.checkMode()
	v.checkDataSize()
	v.checkSampling()
	v.checkSpacegroup()
	v.checkLabelCountField()
	v.checkCellDimensions()
	v.checkAxisMapping()
	v.checkVolumeStackDimensions()
	v.checkLabels()
	v.checkFormatVersion()
	v.checkExtType()
	v.checkStatistics()
	v.checkRMS()

	return v.valid
}

type validator struct {
	f     *File
	w     io.Writer
	valid bool

	computed *stats.Summary
}

// computedStats runs the statistics reduction once and shares the result
// between the statistics and RMS checks.
func (v *validator) computedStats() stats.Summary {
	if v.computed == nil {
		s := stats.Compute(v.f.data)
		v.computed = &s
	}

	return *v.computed
}

func (v *validator) fail(format string, args ...any) {
	v.valid = false
	fmt.Fprintf(v.w, format, args...)
	fmt.Fprintln(v.w)
}

func (v *validator) failWarn(code WarningCode, format string, args ...any) {
	v.valid = false
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(v.w, msg)
	v.f.warnf(code, msg)
}

func (v *validator) checkMapID() {
	h := v.f.hdr
	if string(h.Map[:]) != format.MapID {
		v.failWarn(WarnMapID, "Map ID string is incorrect: found '%s', should be '%s'",
			strings.TrimRight(string(h.Map[:]), "\x00"), format.MapID)
	}
}

func (v *validator) checkMachineStamp() {
	if _, err := endian.ByteOrderFromMachineStamp(v.f.hdr.MachSt); err != nil {
		v.failWarn(WarnMachineStamp, "Invalid machine stamp: %s",
			endian.PrettyMachineStamp(v.f.hdr.MachSt))
	}
}

func (v *validator) checkMode() {
	if _, err := dtype.FromMode(v.f.hdr.Mode); err != nil {
		v.failWarn(WarnMode, "Invalid mode: %d", v.f.hdr.Mode)
	}
}

// checkDataSize compares the file size against the size implied by the
// header. It is skipped when the mode or the shape cannot be resolved,
// since no expected size exists then.
func (v *validator) checkDataSize() {
	h := v.f.hdr

	dt, err := dtype.FromMode(h.Mode)
	if err != nil {
		return
	}
	shape, _, err := header.DataShape(h)
	if err != nil {
		return
	}

	want, err := array.ByteSize(dt, shape)
	if err != nil {
		v.fail("Data block size implied by the header overflows: nx = %d, ny = %d, nz = %d, mode = %d",
			h.Nx, h.Ny, h.Nz, h.Mode)
		return
	}
	avail := len(v.f.backend.Bytes()) - header.Size - int(h.Nsymbt)
	switch {
	case avail < want:
		v.fail("Expected %d bytes in data block but the file can only supply %d", want, avail)
	case avail > want:
		v.fail("MRC file is %d bytes larger than expected", avail-want)
	}
}

func (v *validator) checkSampling() {
	h := v.f.hdr
	for _, field := range []struct {
		name  string
		value int32
	}{{"mx", h.Mx}, {"my", h.My}, {"mz", h.Mz}} {
		if field.value < 0 {
			v.fail("Header field '%s' is negative", field.name)
		}
	}
}

func (v *validator) checkSpacegroup() {
	if v.f.hdr.Ispg < 0 {
		v.fail("Header field 'ispg' is negative")
	}
}

func (v *validator) checkLabelCountField() {
	if v.f.hdr.NLabl < 0 {
		v.fail("Header field 'nlabl' is negative")
	}
}

func (v *validator) checkCellDimensions() {
	c := v.f.hdr.CellA
	for _, axis := range []struct {
		name  string
		value float32
	}{{"x", c.X}, {"y", c.Y}, {"z", c.Z}} {
		if axis.value < 0 {
			v.fail("Cell dimension '%s' is negative", axis.name)
		}
	}
}

func (v *validator) checkAxisMapping() {
	h := v.f.hdr
	var seen [4]bool
	ok := true
	for _, m := range []int32{h.MapC, h.MapR, h.MapS} {
		if m < 1 || m > 3 || seen[m] {
			ok = false
			break
		}
		seen[m] = true
	}
	if !ok {
		v.fail("Invalid axis mapping: found [%d, %d, %d]", h.MapS, h.MapC, h.MapR)
	}
}

func (v *validator) checkVolumeStackDimensions() {
	h := v.f.hdr
	if !header.SpacegroupIsVolumeStack(h.Ispg) {
		return
	}
	if h.Mz == 0 || h.Nz%h.Mz != 0 {
		v.fail("Error in dimensions for volume stack: nz should be divisible by mz. Found nz = %d, mz = %d",
			h.Nz, h.Mz)
	}
}

func (v *validator) checkLabels() {
	h := v.f.hdr
	var problems []string

	count := h.TextLabelCount()
	if int(h.NLabl) != count {
		problems = append(problems, fmt.Sprintf("nlabl is %d but %d labels contain text", h.NLabl, count))
	}
	if !h.LabelsContiguous() {
		problems = append(problems, "empty labels appear between text-containing labels")
	}

	if len(problems) > 0 {
		v.fail("Error in header labels: %s", strings.Join(problems, "; "))
	}
}

func (v *validator) checkFormatVersion() {
	if v.f.hdr.NVersion != format.VersionMRC2014 {
		v.failWarn(WarnFormatVersion, "File does not declare MRC format version %d: nversion = %d",
			format.VersionMRC2014, v.f.hdr.NVersion)
	}
}

func (v *validator) checkExtType() {
	h := v.f.hdr
	if h.Nsymbt > 0 && !format.IsExtType(h.ExtType()) {
		v.fail("Extended header type is undefined or unrecognised: exttyp = '%s'", h.ExtType())
	}
}

// checkStatistics verifies dmin, dmax and dmean against the computed
// values. A declared statistic at or below the undetermined sentinel is
// exempt; each remaining statistic is checked independently with exact
// floating equality.
func (v *validator) checkStatistics() {
	if v.f.data == nil || v.f.data.Len() == 0 {
		return
	}
	h := v.f.hdr
	s := v.computedStats()

	if !stats.Undetermined(h.DMin) && h.DMin != s.Min {
		v.fail("Error in data statistics: minimum is %v but the value in the header is %v", s.Min, h.DMin)
	}
	if !stats.Undetermined(h.DMax) && h.DMax != s.Max {
		v.fail("Error in data statistics: maximum is %v but the value in the header is %v", s.Max, h.DMax)
	}
	if !stats.Undetermined(h.DMean) && h.DMean != s.Mean {
		v.fail("Error in data statistics: mean is %v but the value in the header is %v", s.Mean, h.DMean)
	}
}

func (v *validator) checkRMS() {
	if v.f.data == nil || v.f.data.Len() == 0 {
		return
	}
	h := v.f.hdr
	if stats.Undetermined(h.RMS) {
		return
	}
	if s := v.computedStats(); h.RMS != s.RMS {
		v.fail("Error in data statistics: RMS deviation is %v but the value in the header is %v", s.RMS, h.RMS)
	}
}
