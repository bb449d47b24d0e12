package batch

import (
	"path/filepath"
	"strings"
)

const originalSuffix = "_original"

// OriginalPath returns where a converted input's original is parked:
// <dir>/<stem>_original<ext>.
func OriginalPath(path string) string {
	ext := filepath.Ext(path)
	stem := strings.TrimSuffix(filepath.Base(path), ext)
	return filepath.Join(filepath.Dir(path), stem+originalSuffix+ext)
}

// IsOriginal reports whether a path names a parked original.
func IsOriginal(path string) bool {
	ext := filepath.Ext(path)
	stem := strings.TrimSuffix(filepath.Base(path), ext)
	return strings.HasSuffix(stem, originalSuffix)
}

// VolumePath returns the combined-volume output path, named from the
// first and last inputs: <dir of first>/<first stem>-<last basename>.
func VolumePath(paths []string) string {
	first := paths[0]
	last := paths[len(paths)-1]
	ext := filepath.Ext(first)
	stem := strings.TrimSuffix(filepath.Base(first), ext)
	return filepath.Join(filepath.Dir(first), stem+"-"+filepath.Base(last))
}
