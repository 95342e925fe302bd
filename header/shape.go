package header

import (
	"github.com/kevinpetersavage/mrcfile/errs"
	"github.com/kevinpetersavage/mrcfile/format"
)

// SpacegroupIsVolumeStack reports whether ispg denotes a stack of volumes
// (space groups 401-630).
func SpacegroupIsVolumeStack(ispg int32) bool {
	return ispg >= format.VolumeStackSpacegroupMin && ispg <= format.VolumeStackSpacegroupMax
}

// DataShape derives the logical data array shape from the header without
// mutating it.
//
// The three cases are:
//   - volume stack (ispg in 401-630): (nz/mz, mz, ny, nx)
//   - image stack (ispg == 0, nz == 1): (ny, nx)
//   - otherwise: (nz, ny, nx)
//
// Returns:
//   - []int: Shape, slowest axis first
//   - bool: Whether the header declares a volume stack
//   - error: ErrInvalidSamplingRate when a volume stack declares mz == 0
func DataShape(h *Header) ([]int, bool, error) {
	if SpacegroupIsVolumeStack(h.Ispg) {
		if h.Mz == 0 {
			return nil, true, errs.ErrInvalidSamplingRate
		}

		return []int{int(h.Nz / h.Mz), int(h.Mz), int(h.Ny), int(h.Nx)}, true, nil
	}

	if h.Ispg == format.ImageStackSpacegroup && h.Nz == 1 {
		return []int{int(h.Ny), int(h.Nx)}, false, nil
	}

	return []int{int(h.Nz), int(h.Ny), int(h.Nx)}, false, nil
}
