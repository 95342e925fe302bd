// Package header implements the fixed 1024-byte MRC2014 header record: the
// codec between the on-disk byte layout and the Header struct, and the
// shape resolution rules that derive the data array layout from header
// fields.
package header

import (
	"math"
	"strings"

	"github.com/kevinpetersavage/mrcfile/endian"
	"github.com/kevinpetersavage/mrcfile/errs"
	"github.com/kevinpetersavage/mrcfile/format"
)

const (
	// Size is the fixed byte length of the header record.
	Size = 1024

	// LabelCount is the number of label slots in the header.
	LabelCount = 10

	// LabelLength is the fixed byte width of each label slot.
	LabelLength = 80
)

// Vec3 holds a 3-component float field group (cell lengths, cell angles,
// origin).
type Vec3 struct {
	X, Y, Z float32
}

// Header is the decoded fixed-size header record. Field names follow the
// MRC2014 specification. All integer fields are signed 32-bit on disk.
type Header struct {
	Nx, Ny, Nz                int32                         // byte offsets 0-11: grid size
	Mode                      format.Mode                   // 12-15: data element mode
	NxStart, NyStart, NzStart int32                         // 16-27: origin of the grid
	Mx, My, Mz                int32                         // 28-39: sampling along each axis
	CellA                     Vec3                          // 40-51: cell lengths in angstroms
	CellB                     Vec3                          // 52-63: cell angles in degrees
	MapC, MapR, MapS          int32                         // 64-75: axis mapping, permutation of {1,2,3}
	DMin, DMax, DMean         float32                       // 76-87: data statistics
	Ispg                      int32                         // 88-91: space group number
	Nsymbt                    int32                         // 92-95: extended header byte length
	Extra1                    [8]byte                       // 96-103: unassigned
	ExtTyp                    [4]byte                       // 104-107: extended header type tag
	NVersion                  int32                         // 108-111: format version declaration
	Extra2                    [84]byte                      // 112-195: unassigned
	Origin                    Vec3                          // 196-207: phase origin or subvolume origin
	Map                       [4]byte                       // 208-211: magic ID, always "MAP "
	MachSt                    [4]byte                       // 212-215: machine stamp
	RMS                       float32                       // 216-219: RMS deviation from the mean
	NLabl                     int32                         // 220-223: number of labels in use
	Label                     [LabelCount][LabelLength]byte // 224-1023
}

// New creates a header with the default values for a freshly created file:
// float32 mode, identity axis mapping, 90-degree cell angles, native byte
// order and undetermined statistics.
func New() *Header {
	h := &Header{
		Mode:     format.ModeFloat32,
		MapC:     1,
		MapR:     2,
		MapS:     3,
		CellB:    Vec3{90, 90, 90},
		Ispg:     format.VolumeSpacegroup,
		NVersion: format.VersionMRC2014,
		DMin:     format.UndeterminedFloat,
		DMax:     format.UndeterminedFloat,
		DMean:    format.UndeterminedFloat,
		RMS:      format.UndeterminedFloat,
	}
	copy(h.Map[:], format.MapID)
	h.MachSt, _ = endian.MachineStampFromByteOrder(endian.GetNativeEngine())

	return h
}

// Parse decodes the fixed-length header record from data using the given
// byte order for every multi-byte field.
//
// Parameters:
//   - data: Byte slice holding at least Size bytes
//   - engine: Byte order declared by the file's machine stamp
//
// Returns:
//   - error: ErrTruncatedHeader if fewer than Size bytes are available
func (h *Header) Parse(data []byte, engine endian.EndianEngine) error {
	if len(data) < Size {
		return errs.ErrTruncatedHeader
	}

	h.Nx = getInt32(engine, data, 0)
	h.Ny = getInt32(engine, data, 4)
	h.Nz = getInt32(engine, data, 8)
	h.Mode = format.Mode(getInt32(engine, data, 12))
	h.NxStart = getInt32(engine, data, 16)
	h.NyStart = getInt32(engine, data, 20)
	h.NzStart = getInt32(engine, data, 24)
	h.Mx = getInt32(engine, data, 28)
	h.My = getInt32(engine, data, 32)
	h.Mz = getInt32(engine, data, 36)
	h.CellA = getVec3(engine, data, 40)
	h.CellB = getVec3(engine, data, 52)
	h.MapC = getInt32(engine, data, 64)
	h.MapR = getInt32(engine, data, 68)
	h.MapS = getInt32(engine, data, 72)
	h.DMin = getFloat32(engine, data, 76)
	h.DMax = getFloat32(engine, data, 80)
	h.DMean = getFloat32(engine, data, 84)
	h.Ispg = getInt32(engine, data, 88)
	h.Nsymbt = getInt32(engine, data, 92)
	copy(h.Extra1[:], data[96:104])
	copy(h.ExtTyp[:], data[104:108])
	h.NVersion = getInt32(engine, data, 108)
	copy(h.Extra2[:], data[112:196])
	h.Origin = getVec3(engine, data, 196)
	copy(h.Map[:], data[208:212])
	copy(h.MachSt[:], data[212:216])
	h.RMS = getFloat32(engine, data, 216)
	h.NLabl = getInt32(engine, data, 220)
	for i := range h.Label {
		copy(h.Label[i][:], data[224+i*LabelLength:224+(i+1)*LabelLength])
	}

	return nil
}

// Bytes serializes the header into a fresh Size-byte slice using the given
// byte order. It is the exact inverse of Parse: parsing the result yields
// an identical Header, and re-encoding a parsed header reproduces the
// original bytes, padding included.
func (h *Header) Bytes(engine endian.EndianEngine) []byte {
	b := make([]byte, Size)

	putInt32(engine, b, 0, h.Nx)
	putInt32(engine, b, 4, h.Ny)
	putInt32(engine, b, 8, h.Nz)
	putInt32(engine, b, 12, int32(h.Mode))
	putInt32(engine, b, 16, h.NxStart)
	putInt32(engine, b, 20, h.NyStart)
	putInt32(engine, b, 24, h.NzStart)
	putInt32(engine, b, 28, h.Mx)
	putInt32(engine, b, 32, h.My)
	putInt32(engine, b, 36, h.Mz)
	putVec3(engine, b, 40, h.CellA)
	putVec3(engine, b, 52, h.CellB)
	putInt32(engine, b, 64, h.MapC)
	putInt32(engine, b, 68, h.MapR)
	putInt32(engine, b, 72, h.MapS)
	putFloat32(engine, b, 76, h.DMin)
	putFloat32(engine, b, 80, h.DMax)
	putFloat32(engine, b, 84, h.DMean)
	putInt32(engine, b, 88, h.Ispg)
	putInt32(engine, b, 92, h.Nsymbt)
	copy(b[96:104], h.Extra1[:])
	copy(b[104:108], h.ExtTyp[:])
	putInt32(engine, b, 108, h.NVersion)
	copy(b[112:196], h.Extra2[:])
	putVec3(engine, b, 196, h.Origin)
	copy(b[208:212], h.Map[:])
	copy(b[212:216], h.MachSt[:])
	putFloat32(engine, b, 216, h.RMS)
	putInt32(engine, b, 220, h.NLabl)
	for i := range h.Label {
		copy(b[224+i*LabelLength:224+(i+1)*LabelLength], h.Label[i][:])
	}

	return b
}

// ExtType returns the extended header type tag as a string.
func (h *Header) ExtType() string {
	return strings.TrimRight(string(h.ExtTyp[:]), "\x00")
}

// SetExtType sets the extended header type tag, truncating to 4 bytes and
// zero-padding shorter tags.
func (h *Header) SetExtType(tag string) {
	h.ExtTyp = [4]byte{}
	copy(h.ExtTyp[:], tag)
}

// LabelText returns label slot i with trailing padding removed.
func (h *Header) LabelText(i int) string {
	return strings.TrimRight(string(h.Label[i][:]), "\x00 ")
}

// SetLabel writes text into label slot i, truncating to LabelLength bytes.
// NLabl is not adjusted; use AddLabel for ordinary appends.
func (h *Header) SetLabel(i int, text string) {
	h.Label[i] = [LabelLength]byte{}
	copy(h.Label[i][:], text)
}

// AddLabel appends text in the next free label slot and increments NLabl.
// Returns false when all LabelCount slots are in use.
func (h *Header) AddLabel(text string) bool {
	if h.NLabl < 0 || h.NLabl >= LabelCount {
		return false
	}

	h.SetLabel(int(h.NLabl), text)
	h.NLabl++

	return true
}

// TextLabelCount returns the number of label slots containing text.
func (h *Header) TextLabelCount() int {
	count := 0
	for i := range h.Label {
		if h.LabelText(i) != "" {
			count++
		}
	}

	return count
}

// LabelsContiguous reports whether every text label precedes every empty
// slot, i.e. no empty label is interleaved between text labels.
func (h *Header) LabelsContiguous() bool {
	seenEmpty := false
	for i := range h.Label {
		if h.LabelText(i) == "" {
			seenEmpty = true
		} else if seenEmpty {
			return false
		}
	}

	return true
}

func getInt32(engine endian.EndianEngine, b []byte, off int) int32 {
	return int32(engine.Uint32(b[off : off+4]))
}

func getFloat32(engine endian.EndianEngine, b []byte, off int) float32 {
	return math.Float32frombits(engine.Uint32(b[off : off+4]))
}

func getVec3(engine endian.EndianEngine, b []byte, off int) Vec3 {
	return Vec3{
		X: getFloat32(engine, b, off),
		Y: getFloat32(engine, b, off+4),
		Z: getFloat32(engine, b, off+8),
	}
}

func putInt32(engine endian.EndianEngine, b []byte, off int, v int32) {
	engine.PutUint32(b[off:off+4], uint32(v))
}

func putFloat32(engine endian.EndianEngine, b []byte, off int, v float32) {
	engine.PutUint32(b[off:off+4], math.Float32bits(v))
}

func putVec3(engine endian.EndianEngine, b []byte, off int, v Vec3) {
	putFloat32(engine, b, off, v.X)
	putFloat32(engine, b, off+4, v.Y)
	putFloat32(engine, b, off+8, v.Z)
}
