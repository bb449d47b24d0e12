package batch

import (
	"archive/zip"
	"context"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yuito/spreadstitch/internal/cbz"
	"github.com/yuito/spreadstitch/internal/logging"
	"github.com/yuito/spreadstitch/internal/stitch"
)

// writeTestCBZ creates a cbz of n solid white pages, w x h each.
func writeTestCBZ(t *testing.T, path string, n, w, h int) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	zw := zip.NewWriter(f)
	defer zw.Close()

	for i := 1; i <= n; i++ {
		ew, err := zw.Create(fmt.Sprintf("p%02d.png", i))
		require.NoError(t, err)
		img := image.NewNRGBA(image.Rect(0, 0, w, h))
		for j := range img.Pix {
			img.Pix[j] = 0xFF
		}
		require.NoError(t, png.Encode(ew, img))
	}
}

func newTestRunner(t *testing.T, opts Options) *Runner {
	t.Helper()
	log, err := logging.New(true, "")
	require.NoError(t, err)
	r, err := NewRunner(opts, log)
	require.NoError(t, err)
	return r
}

// countEntries opens a written archive and returns its page entry count.
func countEntries(t *testing.T, path string) int {
	t.Helper()
	a, err := cbz.Open(path)
	require.NoError(t, err)
	defer a.Close()
	return a.PageCount()
}

func TestRun_EvenPages(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "ch1.cbz")
	writeTestCBZ(t, input, 4, 10, 10)

	r := newTestRunner(t, Options{})
	require.NoError(t, r.Run(context.Background(), []string{input}))

	// 2 spreads + 1 notice page.
	require.Equal(t, 3, countEntries(t, input))
	// Original parked next to it, untouched.
	require.Equal(t, 4, countEntries(t, OriginalPath(input)))
}

func TestRun_OddPages(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "ch1.cbz")
	writeTestCBZ(t, input, 5, 10, 10)

	r := newTestRunner(t, Options{Stitch: stitch.Options{SkipNotice: true}})
	require.NoError(t, r.Run(context.Background(), []string{input}))

	// (5+1)/2 spreads, no notice.
	require.Equal(t, 3, countEntries(t, input))
}

func TestRun_SingleSpreadGetsNoNotice(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "ch1.cbz")
	writeTestCBZ(t, input, 2, 10, 10)

	r := newTestRunner(t, Options{})
	require.NoError(t, r.Run(context.Background(), []string{input}))

	require.Equal(t, 1, countEntries(t, input))
}

func TestRun_DeleteOriginals(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "ch1.cbz")
	writeTestCBZ(t, input, 4, 10, 10)

	r := newTestRunner(t, Options{DeleteOriginals: true})
	require.NoError(t, r.Run(context.Background(), []string{input}))

	require.Equal(t, 3, countEntries(t, input))
	_, err := os.Stat(OriginalPath(input))
	require.True(t, os.IsNotExist(err), "no _original copy should be parked with -d")
}

func TestRun_RefusesWhenOriginalExists(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "ch1.cbz")
	writeTestCBZ(t, input, 4, 10, 10)
	writeTestCBZ(t, OriginalPath(input), 4, 10, 10)

	r := newTestRunner(t, Options{})
	require.Error(t, r.Run(context.Background(), []string{input}))

	// Input untouched.
	require.Equal(t, 4, countEntries(t, input))
}

func TestRun_RefusesOriginalSuffixInput(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "ch1_original.cbz")
	writeTestCBZ(t, input, 4, 10, 10)

	r := newTestRunner(t, Options{})
	require.Error(t, r.Run(context.Background(), []string{input}))
	require.Equal(t, 4, countEntries(t, input))
}

func TestRun_CorruptInputDoesNotAbortSiblings(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.cbz")
	bad := filepath.Join(dir, "bad.cbz")
	writeTestCBZ(t, good, 4, 10, 10)
	require.NoError(t, os.WriteFile(bad, []byte("not a zip"), 0o644))

	r := newTestRunner(t, Options{})
	err := r.Run(context.Background(), []string{bad, good})
	require.Error(t, err)
	require.Contains(t, err.Error(), "1 of 2")

	// The healthy sibling still converted.
	require.Equal(t, 3, countEntries(t, good))
	require.FileExists(t, OriginalPath(good))
}

func TestRun_Volume(t *testing.T) {
	dir := t.TempDir()
	ch1 := filepath.Join(dir, "ch1.cbz")
	ch2 := filepath.Join(dir, "ch2.cbz")
	writeTestCBZ(t, ch1, 4, 10, 10)
	writeTestCBZ(t, ch2, 6, 10, 10)

	r := newTestRunner(t, Options{Volume: true})
	require.NoError(t, r.Run(context.Background(), []string{ch1, ch2}))

	out := filepath.Join(dir, "ch1-ch2.cbz")
	// 2+3 spreads plus exactly one notice page, not two.
	require.Equal(t, 6, countEntries(t, out))

	// Inputs are kept as-is in volume mode without -d.
	require.Equal(t, 4, countEntries(t, ch1))
	require.Equal(t, 6, countEntries(t, ch2))
}

func TestRun_Volume_SkipNotice(t *testing.T) {
	dir := t.TempDir()
	ch1 := filepath.Join(dir, "ch1.cbz")
	ch2 := filepath.Join(dir, "ch2.cbz")
	writeTestCBZ(t, ch1, 4, 10, 10)
	writeTestCBZ(t, ch2, 6, 10, 10)

	r := newTestRunner(t, Options{Volume: true, Stitch: stitch.Options{SkipNotice: true}})
	require.NoError(t, r.Run(context.Background(), []string{ch1, ch2}))

	require.Equal(t, 5, countEntries(t, filepath.Join(dir, "ch1-ch2.cbz")))
}

func TestRun_Volume_ChapterOrderReversed(t *testing.T) {
	dir := t.TempDir()
	ch1 := filepath.Join(dir, "ch1.cbz")
	ch2 := filepath.Join(dir, "ch2.cbz")
	writeTestCBZ(t, ch1, 2, 10, 10)
	writeTestCBZ(t, ch2, 2, 20, 20)

	r := newTestRunner(t, Options{Volume: true, Stitch: stitch.Options{SkipNotice: true}})
	require.NoError(t, r.Run(context.Background(), []string{ch1, ch2}))

	a, err := cbz.Open(filepath.Join(dir, "ch1-ch2.cbz"))
	require.NoError(t, err)
	defer a.Close()

	pages, err := a.ReadPages()
	require.NoError(t, err)
	require.Len(t, pages, 2)

	// The last input opens the volume: its spread is 40x20, ch1's is 20x10.
	require.Equal(t, 40, pages[0].Width())
	require.Equal(t, 20, pages[0].Height())
	require.Equal(t, 20, pages[1].Width())
	require.Equal(t, 10, pages[1].Height())
}

func TestRun_Volume_RefusesExistingOutput(t *testing.T) {
	dir := t.TempDir()
	ch1 := filepath.Join(dir, "ch1.cbz")
	ch2 := filepath.Join(dir, "ch2.cbz")
	writeTestCBZ(t, ch1, 4, 10, 10)
	writeTestCBZ(t, ch2, 4, 10, 10)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ch1-ch2.cbz"), []byte("existing"), 0o644))

	r := newTestRunner(t, Options{Volume: true})
	err := r.Run(context.Background(), []string{ch1, ch2})
	require.Error(t, err)
	require.Contains(t, err.Error(), "already exists")
}

func TestRun_Volume_AbortsOnFailedChapter(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.cbz")
	bad := filepath.Join(dir, "bad.cbz")
	writeTestCBZ(t, good, 4, 10, 10)
	require.NoError(t, os.WriteFile(bad, []byte("not a zip"), 0o644))

	r := newTestRunner(t, Options{Volume: true})
	err := r.Run(context.Background(), []string{good, bad})
	require.Error(t, err)

	_, statErr := os.Stat(filepath.Join(dir, "good-bad.cbz"))
	require.True(t, os.IsNotExist(statErr), "no volume should be written when a chapter fails")
}

func TestRun_Volume_DeleteOriginals(t *testing.T) {
	dir := t.TempDir()
	ch1 := filepath.Join(dir, "ch1.cbz")
	ch2 := filepath.Join(dir, "ch2.cbz")
	writeTestCBZ(t, ch1, 4, 10, 10)
	writeTestCBZ(t, ch2, 4, 10, 10)

	r := newTestRunner(t, Options{Volume: true, DeleteOriginals: true})
	require.NoError(t, r.Run(context.Background(), []string{ch1, ch2}))

	require.FileExists(t, filepath.Join(dir, "ch1-ch2.cbz"))
	require.NoFileExists(t, ch1)
	require.NoFileExists(t, ch2)
}

func TestRun_Volume_SingleInputFallsBackToPerFile(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "ch1.cbz")
	writeTestCBZ(t, input, 4, 10, 10)

	r := newTestRunner(t, Options{Volume: true})
	require.NoError(t, r.Run(context.Background(), []string{input}))

	require.Equal(t, 3, countEntries(t, input))
	require.FileExists(t, OriginalPath(input))
}

func TestNewRunner_BadFontPath(t *testing.T) {
	log, err := logging.New(true, "")
	require.NoError(t, err)

	_, err = NewRunner(Options{Stitch: stitch.Options{FontPath: "/nonexistent/arial.ttf"}}, log)
	require.Error(t, err)
}

func TestNewRunner_SkipNoticeIgnoresFont(t *testing.T) {
	log, err := logging.New(true, "")
	require.NoError(t, err)

	// Font is never loaded when the notice page is disabled.
	_, err = NewRunner(Options{Stitch: stitch.Options{SkipNotice: true, FontPath: "/nonexistent/arial.ttf"}}, log)
	require.NoError(t, err)
}

func TestRun_ConcurrentBatch(t *testing.T) {
	dir := t.TempDir()
	inputs := make([]string, 8)
	for i := range inputs {
		inputs[i] = filepath.Join(dir, fmt.Sprintf("ch%02d.cbz", i+1))
		writeTestCBZ(t, inputs[i], 6, 10, 10)
	}

	// All workers render their notice page at once.
	r := newTestRunner(t, Options{Workers: 8})
	require.NoError(t, r.Run(context.Background(), inputs))

	for _, input := range inputs {
		// 3 spreads + notice page each.
		require.Equal(t, 4, countEntries(t, input))
		require.FileExists(t, OriginalPath(input))
	}
}
