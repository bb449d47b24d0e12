package cbz

import (
	"archive/zip"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
)

// Entry is one output page: a rendered image and its name inside the
// archive. Names are assigned by the caller so per-file and volume
// layouts share this writer.
type Entry struct {
	Name  string
	Image image.Image
}

// Write serializes entries into a page archive at path, PNG-encoded, in
// the given order. The archive is built in a temp file next to the
// destination and renamed into place, so a mid-write failure never
// clobbers an existing file at path.
func Write(path string, entries []Entry) (err error) {
	if len(entries) == 0 {
		return fmt.Errorf("%s: no entries to write", path)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp*")
	if err != nil {
		return fmt.Errorf("failed to create archive %s: %w", path, err)
	}
	tmpPath := tmp.Name()
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmpPath)
		}
	}()

	zw := zip.NewWriter(tmp)
	for _, e := range entries {
		w, werr := zw.Create(e.Name)
		if werr != nil {
			return fmt.Errorf("failed to create entry %q in %s: %w", e.Name, path, werr)
		}
		if werr := png.Encode(w, e.Image); werr != nil {
			return fmt.Errorf("failed to encode entry %q in %s: %w", e.Name, path, werr)
		}
	}
	if cerr := zw.Close(); cerr != nil {
		return fmt.Errorf("failed to finalize archive %s: %w", path, cerr)
	}
	if cerr := tmp.Close(); cerr != nil {
		return fmt.Errorf("failed to close archive %s: %w", path, cerr)
	}

	if rerr := os.Rename(tmpPath, path); rerr != nil {
		return fmt.Errorf("failed to move archive into place at %s: %w", path, rerr)
	}
	return nil
}
