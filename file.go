package mrcfile

import (
	"fmt"

	"github.com/kevinpetersavage/mrcfile/array"
	"github.com/kevinpetersavage/mrcfile/dtype"
	"github.com/kevinpetersavage/mrcfile/endian"
	"github.com/kevinpetersavage/mrcfile/errs"
	"github.com/kevinpetersavage/mrcfile/format"
	"github.com/kevinpetersavage/mrcfile/header"
	"github.com/kevinpetersavage/mrcfile/internal/digest"
	"github.com/kevinpetersavage/mrcfile/stats"
	"github.com/kevinpetersavage/mrcfile/store"
)

// File is an open MRC file session. It co-owns the decoded header, the
// extended header bytes and the data array for the lifetime of the open
// backend; concurrent sessions over the same file are not coordinated and
// are the caller's responsibility.
type File struct {
	hdr       *header.Header
	engine    endian.EndianEngine
	ext       []byte
	data      *array.Array
	backend   store.Backend
	transport format.Transport

	writable   bool
	permissive bool
	warn       func(Warning)

	// openDigest is the content digest taken right after interpreting the
	// backend bytes. Backends that cannot mutate in place are only
	// rewritten on close when the digest has changed.
	openDigest uint64
	closed     bool
}

// fromBackend interprets an already-open backend. The backend is closed on
// every error path.
func fromBackend(b store.Backend, transport format.Transport, s *settings) (*File, error) {
	f := &File{
		backend:    b,
		transport:  transport,
		writable:   s.writable,
		permissive: s.permissive,
		warn:       s.warn,
	}
	if err := f.interpret(); err != nil {
		b.Close()
		return nil, err
	}
	f.openDigest = f.contentDigest()

	return f, nil
}

// interpret decodes the backend bytes into header, extended header and data
// array. In permissive mode, problems below the fixed header downgrade to
// warnings and leave the data array nil.
func (f *File) interpret() error {
	raw := f.backend.Bytes()
	if len(raw) < header.Size {
		return fmt.Errorf("%w: file has %d bytes, header requires %d", errs.ErrTruncatedHeader, len(raw), header.Size)
	}

	// Byte order is determined from the machine stamp before the header
	// decode. An unrecognizable stamp falls back to little-endian; the
	// mismatch is reported by Validate, not here.
	var stamp [4]byte
	copy(stamp[:], raw[212:216])
	engine, err := endian.ByteOrderFromMachineStamp(stamp)
	if err != nil {
		engine = endian.GetLittleEndianEngine()
	}
	f.engine = engine

	f.hdr = new(header.Header)
	if err := f.hdr.Parse(raw, engine); err != nil {
		return err
	}

	nsymbt := int(f.hdr.Nsymbt)
	if nsymbt < 0 || header.Size+nsymbt > len(raw) {
		return f.tolerate(fmt.Errorf("extended header of %d bytes does not fit the file", nsymbt))
	}
	dataStart := header.Size + nsymbt
	f.ext = raw[header.Size:dataStart]

	dt, err := dtype.FromMode(f.hdr.Mode)
	if err != nil {
		return f.tolerate(err)
	}

	shape, _, err := header.DataShape(f.hdr)
	if err != nil {
		return f.tolerate(err)
	}

	want, err := array.ByteSize(dt, shape)
	if err != nil {
		return f.tolerate(fmt.Errorf("%w: %v", errs.ErrDataTooSmall, err))
	}
	if avail := len(raw) - dataStart; avail < want {
		return f.tolerate(fmt.Errorf("%w: expected %d bytes in data block but the file can only supply %d",
			errs.ErrDataTooSmall, want, avail))
	}

	data, err := array.New(dt, engine, shape, raw[dataStart:dataStart+want])
	if err != nil {
		return err
	}
	f.data = data

	return nil
}

// tolerate downgrades err to a warning in permissive mode, leaving the data
// array nil so header-level operations still work.
func (f *File) tolerate(err error) error {
	if !f.permissive {
		return err
	}
	f.warnf(WarnPermissiveOpen, err.Error())
	f.data = nil

	return nil
}

// Header returns the decoded header. Mutations become visible to other
// readers on Flush or Close.
func (f *File) Header() *header.Header { return f.hdr }

// Data returns the data array, or nil when a permissive open could not
// construct one. For memory-mapped sessions the array aliases the mapping,
// so element mutations are visible immediately.
func (f *File) Data() *array.Array { return f.data }

// ExtendedHeader returns the raw extended header bytes.
func (f *File) ExtendedHeader() []byte { return f.ext }

// ByteOrder returns the byte order of every multi-byte field in the file.
func (f *File) ByteOrder() endian.EndianEngine { return f.engine }

// Transport returns the compressed transport the file travels through.
func (f *File) Transport() format.Transport { return f.transport }

// SetData replaces the data array and updates the dimensional fields, mode,
// sampling, space group and statistics accordingly. Arrays in a
// non-storable element type (float16, uint8) are widened first; arrays in
// the opposite byte order are re-encoded.
func (f *File) SetData(a *array.Array) error {
	if f.closed {
		return errs.ErrClosed
	}
	if !f.writable {
		return errs.ErrReadOnly
	}

	ndim := len(a.Shape())
	if ndim < 2 || ndim > 4 {
		return fmt.Errorf("%w: data must have 2, 3 or 4 dimensions, got %d", errs.ErrShapeMismatch, ndim)
	}

	widened, err := a.Widen()
	if err != nil {
		return err
	}
	f.data = widened.WithByteOrder(f.engine)
	f.updateHeaderFromData()

	return nil
}

// SetExtendedHeader replaces the extended header region and keeps nsymbt
// consistent. The type tag is left untouched; set it through the header
// when the region has a defined layout.
func (f *File) SetExtendedHeader(b []byte) error {
	if f.closed {
		return errs.ErrClosed
	}
	if !f.writable {
		return errs.ErrReadOnly
	}

	f.ext = append([]byte(nil), b...)
	f.hdr.Nsymbt = int32(len(b))

	return nil
}

// SetVoxelSize sets the cell dimensions so that each voxel spans the given
// size in angstroms along each axis.
func (f *File) SetVoxelSize(x, y, z float32) {
	f.hdr.CellA = header.Vec3{
		X: x * float32(f.hdr.Mx),
		Y: y * float32(f.hdr.My),
		Z: z * float32(f.hdr.Mz),
	}
}

// UpdateHeaderStats recomputes dmin, dmax, dmean and rms from the data
// array.
func (f *File) UpdateHeaderStats() {
	s := stats.Compute(f.data)
	f.hdr.DMin = s.Min
	f.hdr.DMax = s.Max
	f.hdr.DMean = s.Mean
	f.hdr.RMS = s.RMS
}

func (f *File) updateHeaderFromData() {
	h := f.hdr
	shape := f.data.Shape()

	mode, _ := dtype.ModeFromDType(f.data.DType())
	h.Mode = mode

	switch len(shape) {
	case 2:
		h.Nx, h.Ny, h.Nz = int32(shape[1]), int32(shape[0]), 1
		h.Mx, h.My, h.Mz = h.Nx, h.Ny, 1
		h.Ispg = format.ImageStackSpacegroup
	case 3:
		h.Nx, h.Ny, h.Nz = int32(shape[2]), int32(shape[1]), int32(shape[0])
		h.Mx, h.My, h.Mz = h.Nx, h.Ny, h.Nz
		if h.Ispg == format.ImageStackSpacegroup || header.SpacegroupIsVolumeStack(h.Ispg) {
			h.Ispg = format.VolumeSpacegroup
		}
	case 4:
		h.Nx, h.Ny = int32(shape[3]), int32(shape[2])
		h.Nz = int32(shape[0] * shape[1])
		h.Mx, h.My, h.Mz = h.Nx, h.Ny, int32(shape[1])
		if !header.SpacegroupIsVolumeStack(h.Ispg) {
			h.Ispg = format.VolumeStackSpacegroupMin
		}
	}

	f.UpdateHeaderStats()
}

// assemble lays the session contents back out in file order.
func (f *File) assemble() []byte {
	size := header.Size + len(f.ext)
	if f.data != nil {
		size += len(f.data.Bytes())
	}

	out := make([]byte, 0, size)
	out = append(out, f.hdr.Bytes(f.engine)...)
	out = append(out, f.ext...)
	if f.data != nil {
		out = append(out, f.data.Bytes()...)
	}

	return out
}

func (f *File) contentDigest() uint64 {
	regions := [][]byte{f.hdr.Bytes(f.engine), f.ext}
	if f.data != nil {
		regions = append(regions, f.data.Bytes())
	}

	return digest.Sum(regions...)
}

// Flush pushes the complete session contents (header, extended header and
// data) back to the underlying file and syncs it. Backends that cannot
// change size (memory mappings) reject layout-changing mutations with
// ErrCannotResize.
func (f *File) Flush() error {
	if f.closed {
		return errs.ErrClosed
	}
	if !f.writable {
		return errs.ErrReadOnly
	}

	if err := f.backend.WriteBack(f.assemble()); err != nil {
		return err
	}

	return f.backend.Flush()
}

// Close releases all backend resources. Writable sessions whose contents
// changed since open are written back first, including the data region.
// Close is idempotent.
func (f *File) Close() error {
	if f.closed {
		return nil
	}
	f.closed = true

	var flushErr error
	if f.writable && f.contentDigest() != f.openDigest {
		flushErr = f.backend.WriteBack(f.assemble())
	}

	closeErr := f.backend.Close()
	if flushErr != nil {
		return flushErr
	}

	return closeErr
}
