// Package batch orchestrates per-archive stitching jobs over a bounded
// worker pool, plus the sequential volume merge and original-file
// housekeeping around them.
package batch

import (
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"runtime"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/yuito/spreadstitch/internal/cbz"
	"github.com/yuito/spreadstitch/internal/logging"
	"github.com/yuito/spreadstitch/internal/stitch"
)

// Options configures a batch run.
type Options struct {
	DeleteOriginals bool // overwrite inputs instead of parking _original copies
	Volume          bool // concatenate all inputs into one combined archive
	Workers         int  // worker pool size; NumCPU when <= 0
	Stitch          stitch.Options
}

// Runner executes the read -> pair -> render -> write pipeline per input
// archive. Jobs run independently: one failure never aborts siblings.
type Runner struct {
	opts Options
	font *stitch.Font
	log  *logging.Logger
}

// NewRunner builds a Runner, parsing the notice font up front so a bad
// font path fails the whole run before any archive is touched. Only the
// parsed font is shared; each job derives its own rendering face.
func NewRunner(opts Options, log *logging.Logger) (*Runner, error) {
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}

	r := &Runner{opts: opts, log: log}
	if !opts.Stitch.SkipNotice {
		ft, err := stitch.LoadFont(opts.Stitch.FontPath, opts.Stitch.FontSize)
		if err != nil {
			return nil, err
		}
		r.font = ft
	}
	return r, nil
}

// Run processes the input archives. In volume mode with two or more
// inputs they are merged into one combined archive; otherwise each is
// converted in place. The returned error is non-nil when any job failed,
// so callers can reflect batch health in the exit status.
func (r *Runner) Run(ctx context.Context, paths []string) error {
	if r.opts.Volume && len(paths) > 1 {
		return r.runVolume(ctx, paths)
	}
	return r.runEach(ctx, paths)
}

// runEach converts every archive independently on the worker pool.
func (r *Runner) runEach(ctx context.Context, paths []string) error {
	var failed atomic.Int64

	g := new(errgroup.Group)
	g.SetLimit(r.opts.Workers)
	for _, p := range paths {
		p := p
		g.Go(func() error {
			if ctx.Err() != nil {
				failed.Add(1)
				return nil
			}
			if err := r.convertFile(p); err != nil {
				r.log.Error("[%s] %v", filepath.Base(p), err)
				failed.Add(1)
			}
			return nil
		})
	}
	_ = g.Wait()

	if n := failed.Load(); n > 0 {
		return fmt.Errorf("%d of %d archives failed", n, len(paths))
	}
	return nil
}

// convertFile stitches one archive in place. Without DeleteOriginals the
// input is parked at <stem>_original<ext> first; an existing parked copy
// or an input that is itself a parked copy fails the job.
func (r *Runner) convertFile(path string) error {
	base := filepath.Base(path)

	if !r.opts.DeleteOriginals {
		if IsOriginal(path) {
			return fmt.Errorf("name ends with %s, refusing to convert (was this already converted?)", originalSuffix)
		}
		orig := OriginalPath(path)
		if _, err := os.Stat(orig); err == nil {
			return fmt.Errorf("%s already exists, skipping (was this already converted?)", filepath.Base(orig))
		}
	}

	r.log.Info("[%s] Starting...", base)

	spreads, err := r.renderArchive(path)
	if err != nil {
		return err
	}

	entries := make([]cbz.Entry, 0, len(spreads)+1)
	pagenum := 1

	// A single-spread chapter has nothing to spoil, so it gets no notice.
	if !r.opts.Stitch.SkipNotice && len(spreads) > 1 {
		face, err := r.font.NewFace()
		if err != nil {
			return err
		}
		first := spreads[0].Bounds()
		notice := stitch.RenderNotice(first.Dx(), first.Dy(), face, r.opts.Stitch.Text())
		entries = append(entries, cbz.Entry{Name: entryName(pagenum), Image: notice})
		pagenum++
	}
	for _, img := range spreads {
		entries = append(entries, cbz.Entry{Name: entryName(pagenum), Image: img})
		pagenum++
	}

	if !r.opts.DeleteOriginals {
		if err := os.Rename(path, OriginalPath(path)); err != nil {
			return fmt.Errorf("failed to move original aside: %w", err)
		}
	}

	if err := cbz.Write(path, entries); err != nil {
		return err
	}

	r.log.Success("[%s] Done!", base)
	return nil
}

// runVolume stitches every input concurrently (notice suppressed), then
// merges the results into one combined archive after the join point.
// Chapters are ordered last input first, so the right-to-left book starts
// at the back of the file.
func (r *Runner) runVolume(ctx context.Context, paths []string) error {
	outPath := VolumePath(paths)
	outBase := filepath.Base(outPath)

	if _, err := os.Stat(outPath); err == nil {
		return fmt.Errorf("[%s] file already exists, delete it and retry to proceed (was this volume already converted?)", outBase)
	}

	r.log.Info("[%s] Starting volume...", outBase)

	chapters := make([][]*image.NRGBA, len(paths))
	var failed atomic.Int64

	g := new(errgroup.Group)
	g.SetLimit(r.opts.Workers)
	for i, p := range paths {
		i, p := i, p
		g.Go(func() error {
			if ctx.Err() != nil {
				failed.Add(1)
				return nil
			}
			base := filepath.Base(p)
			r.log.Info("  [%s] Starting...", base)
			spreads, err := r.renderArchive(p)
			if err != nil {
				r.log.Error("  [%s] %v", base, err)
				failed.Add(1)
				return nil
			}
			chapters[i] = spreads
			r.log.Info("  [%s] Done!", base)
			return nil
		})
	}
	_ = g.Wait()

	if failed.Load() > 0 {
		return fmt.Errorf("[%s] terminating volume since chapters failed", outBase)
	}

	var total int
	for _, c := range chapters {
		total += len(c)
	}

	entries := make([]cbz.Entry, 0, total+1)
	if !r.opts.Stitch.SkipNotice {
		face, err := r.font.NewFace()
		if err != nil {
			return err
		}
		// Dimensions come from the first spread the reader will see,
		// which is the first spread of the last chapter.
		first := chapters[len(chapters)-1][0].Bounds()
		notice := stitch.RenderNotice(first.Dx(), first.Dy(), face, r.opts.Stitch.Text())
		entries = append(entries, cbz.Entry{Name: volumeEntryName(0, 0), Image: notice})
	}
	for i := len(chapters) - 1; i >= 0; i-- {
		chapnum := len(chapters) - i
		for j, img := range chapters[i] {
			entries = append(entries, cbz.Entry{Name: volumeEntryName(chapnum, j+1), Image: img})
		}
	}

	if err := cbz.Write(outPath, entries); err != nil {
		return err
	}

	if r.opts.DeleteOriginals {
		for _, p := range paths {
			if err := os.Remove(p); err != nil {
				r.log.Warn("[%s] failed to remove original: %v", filepath.Base(p), err)
			}
		}
	}

	r.log.Success("[%s] Done with volume! You can find it at %s", outBase, outPath)
	return nil
}

// renderArchive reads one archive and renders its spreads in output
// order, without a notice page.
func (r *Runner) renderArchive(path string) ([]*image.NRGBA, error) {
	a, err := cbz.Open(path)
	if err != nil {
		return nil, err
	}
	defer a.Close()

	pages, err := a.ReadPages()
	if err != nil {
		return nil, err
	}

	spreads := stitch.Pair(pages)
	rendered := make([]*image.NRGBA, 0, len(spreads))
	for _, s := range spreads {
		rendered = append(rendered, stitch.Render(s))
	}
	return rendered, nil
}

func entryName(n int) string {
	return fmt.Sprintf("%03d.png", n)
}

func volumeEntryName(chapter, page int) string {
	return fmt.Sprintf("%03d_%03d.png", chapter, page)
}
