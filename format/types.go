// Package format defines the fixed constants and enum types of the MRC2014
// file format: data modes, compressed transports, space-group conventions
// and the reserved header values used for identification and validation.
package format

import (
	"fmt"
	"math"
)

type (
	// Mode is the integer code stored in the header's mode field, selecting
	// the on-disk element encoding of the data block.
	Mode int32

	// Transport identifies the optional whole-file compression wrapper.
	// A transport is a pass-through layer, not a format feature: the decoded
	// (header, data) view is identical for every transport.
	Transport uint8
)

const (
	ModeInt8      Mode = 0 // 8-bit signed integer
	ModeInt16     Mode = 1 // 16-bit signed integer
	ModeFloat32   Mode = 2 // 32-bit IEEE 754 float
	ModeComplex64 Mode = 4 // two 32-bit IEEE 754 floats (real, imaginary)
	ModeUint16    Mode = 6 // 16-bit unsigned integer

	TransportNone  Transport = 0x1 // plain uncompressed file
	TransportGzip  Transport = 0x2 // gzip member stream
	TransportBzip2 Transport = 0x3 // bzip2 stream (read only)
	TransportZstd  Transport = 0x4 // Zstandard frame
	TransportLZ4   Transport = 0x5 // LZ4 frame
)

const (
	// MapID is the required value of the header's map field.
	MapID = "MAP "

	// VersionMRC2014 is the nversion value declared by MRC2014 files:
	// year * 10 + sub-version.
	VersionMRC2014 int32 = 20140

	// ImageStackSpacegroup marks a stack of 2D images when nz == 1.
	ImageStackSpacegroup int32 = 0

	// VolumeSpacegroup is the ordinary single-volume space group.
	VolumeSpacegroup int32 = 1

	// VolumeStackSpacegroupMin and VolumeStackSpacegroupMax bound the
	// space-group range denoting a stack of volumes.
	VolumeStackSpacegroupMin int32 = 401
	VolumeStackSpacegroupMax int32 = 630
)

// UndeterminedFloat is the most negative finite value a header statistic
// field can hold. A statistic at or below this value means the writer
// declined to compute it, and validation skips the corresponding check.
const UndeterminedFloat float32 = -math.MaxFloat32

// ExtTypes lists the recognized extended header type tags.
var ExtTypes = map[string]struct{}{
	"CCP4": {},
	"MRCO": {},
	"SERI": {},
	"AGAR": {},
	"FEI1": {},
	"FEI2": {},
	"HDF5": {},
}

// IsExtType reports whether tag is a recognized extended header type tag.
func IsExtType(tag string) bool {
	_, ok := ExtTypes[tag]
	return ok
}

func (m Mode) String() string {
	switch m {
	case ModeInt8:
		return "Int8"
	case ModeInt16:
		return "Int16"
	case ModeFloat32:
		return "Float32"
	case ModeComplex64:
		return "Complex64"
	case ModeUint16:
		return "Uint16"
	default:
		return fmt.Sprintf("Mode(%d)", int32(m))
	}
}

func (t Transport) String() string {
	switch t {
	case TransportNone:
		return "None"
	case TransportGzip:
		return "Gzip"
	case TransportBzip2:
		return "Bzip2"
	case TransportZstd:
		return "Zstd"
	case TransportLZ4:
		return "LZ4"
	default:
		return "Unknown"
	}
}
