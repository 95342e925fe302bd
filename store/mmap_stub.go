//go:build !unix

package store

import "github.com/kevinpetersavage/mrcfile/errs"

// OpenMmap is unavailable on platforms without unix mmap support.
func OpenMmap(path string, writable bool) (Backend, error) {
	return nil, errs.ErrMmapUnsupported
}
