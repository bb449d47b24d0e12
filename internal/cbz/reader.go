// Package cbz reads and writes comic-book page archives: zip files whose
// entries are raster page images in filename order.
package cbz

import (
	"archive/zip"
	"errors"
	"fmt"
	"image"
	"path"
	"sort"
	"strings"

	"github.com/disintegration/imaging"

	// imaging registers only jpeg/png/gif/bmp/tiff; webp needs its own decoder.
	_ "golang.org/x/image/webp"
)

var (
	ErrNotArchive       = errors.New("not a cbz archive: expected .cbz or .zip extension")
	ErrUnsupportedEntry = errors.New("archive contains a non-image entry")
	ErrNoPages          = errors.New("archive contains no page images")
)

// Page is a single decoded page image, ordered by entry name within its
// archive.
type Page struct {
	Name  string
	Image image.Image
}

// Width returns the page's pixel width.
func (p Page) Width() int { return p.Image.Bounds().Dx() }

// Height returns the page's pixel height.
func (p Page) Height() int { return p.Image.Bounds().Dy() }

// Archive provides access to the page images of a cbz file.
type Archive struct {
	path      string
	zipReader *zip.ReadCloser
	entries   []*zip.File
}

var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
	".bmp":  true,
	".tif":  true,
	".tiff": true,
}

// Open opens a page archive and indexes its image entries in filename
// order. Junk entries (__MACOSX, dotfiles, Thumbs.db) are skipped; any
// other non-image entry fails with ErrUnsupportedEntry.
func Open(p string) (*Archive, error) {
	ext := strings.ToLower(path.Ext(p))
	if ext != ".cbz" && ext != ".zip" {
		return nil, fmt.Errorf("%s: %w", p, ErrNotArchive)
	}

	zr, err := zip.OpenReader(p)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive %s: %w", p, err)
	}

	a := &Archive{path: p, zipReader: zr}
	for _, f := range zr.File {
		if f.FileInfo().IsDir() || isJunkEntry(f.Name) {
			continue
		}
		if !imageExtensions[strings.ToLower(path.Ext(f.Name))] {
			zr.Close()
			return nil, fmt.Errorf("%s: entry %q: %w", p, f.Name, ErrUnsupportedEntry)
		}
		a.entries = append(a.entries, f)
	}

	if len(a.entries) == 0 {
		zr.Close()
		return nil, fmt.Errorf("%s: %w", p, ErrNoPages)
	}

	sort.Slice(a.entries, func(i, j int) bool {
		return a.entries[i].Name < a.entries[j].Name
	})

	return a, nil
}

// Close closes the underlying zip reader.
func (a *Archive) Close() error {
	return a.zipReader.Close()
}

// Path returns the archive's file path.
func (a *Archive) Path() string { return a.path }

// PageCount returns the number of page image entries.
func (a *Archive) PageCount() int { return len(a.entries) }

// ReadPages decodes every page image in entry-name order.
func (a *Archive) ReadPages() ([]Page, error) {
	pages := make([]Page, 0, len(a.entries))
	for _, f := range a.entries {
		img, err := decodeEntry(f)
		if err != nil {
			return nil, fmt.Errorf("%s: entry %q: %w", a.path, f.Name, err)
		}
		pages = append(pages, Page{Name: f.Name, Image: img})
	}
	return pages, nil
}

func decodeEntry(f *zip.File) (image.Image, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open entry: %w", err)
	}
	defer rc.Close()

	img, err := imaging.Decode(rc)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return img, nil
}

// isJunkEntry reports whether a zip entry is filesystem noise rather than
// page content.
func isJunkEntry(name string) bool {
	if strings.HasPrefix(name, "__MACOSX/") {
		return true
	}
	base := path.Base(name)
	return strings.HasPrefix(base, ".") || strings.EqualFold(base, "Thumbs.db")
}
