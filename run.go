package unarchive

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/Defacto2/unarchive/command"
	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Package file run.go contains the format dispatch and the extraction run over a folder.

// Outcome is the result of extracting one archive.
type Outcome struct {
	Entry Entry // Entry is the archive.
	Files int   // Files is the number of files written, which may be non-zero on failure.
	Bytes int64 // Bytes is the number of bytes written.
	Err   error // Err is the failure or nil on success.
}

// OK reports whether the archive was extracted.
func (o Outcome) OK() bool {
	return o.Err == nil
}

// Summary is the result of a run.
type Summary struct {
	Destination string    // Destination is the absolute path of the output directory.
	Outcomes    []Outcome // Outcomes are in processing order.
	Succeeded   int
	Failed      int
	Files       int   // Files is the total written by every outcome, including failures.
	Bytes       int64 // Bytes is the total written by every outcome.
}

// Extract extracts the archive entry into the dst directory using the strategy of its format.
// The failure is returned in the outcome and never escapes.
func (x *Extractor) Extract(ctx context.Context, e Entry, dst string) Outcome {
	o := Outcome{Entry: e}
	switch {
	case e.Format == Zip:
		o.Files, o.Bytes, o.Err = x.Zip(e.Path, dst)
		if errors.Is(o.Err, ErrUnsupported) {
			files, n, err := x.Other(ctx, e.Path, dst)
			if !errors.Is(err, ErrUnsupported) {
				o.Files, o.Bytes, o.Err = files, n, err
			}
		}
	case e.Format.Tar():
		o.Files, o.Bytes, o.Err = x.Tar(e.Path, dst, e.Format)
	case e.Format == SevenZip:
		o.Files, o.Bytes, o.Err = x.SevenZip(ctx, e.Path, dst)
	case e.Format == Rar:
		o.Files, o.Bytes, o.Err = x.Rar(ctx, e.Path, dst)
	default:
		o.Files, o.Bytes, o.Err = x.Other(ctx, e.Path, dst)
	}
	return o
}

// Other extracts the src archive of an unrecognized format into the dst directory,
// using the general 7z program and then bsdtar.
func (x *Extractor) Other(ctx context.Context, src, dst string) (int, int64, error) {
	steps := x.programs(ctx, src, dst, command.SevenZip, command.Libarchive)
	if len(steps) == 0 {
		return 0, 0, fmt.Errorf("%w: %s", ErrUnsupported, filepath.Base(src))
	}
	return x.chain(filepath.Base(src), steps)
}

// Run extracts every archive found directly within the folder into the output directory,
// which is created within the folder when missing. Archives are processed one at a time
// in name order.
//
// The log func receives each human readable line of the run, a tool report, one line per
// archive and a closing summary. The progress func receives the index and total after
// each archive, or (0, 0) when there is nothing to extract. Either may be nil.
//
// The failure of an archive is recorded in the summary and never stops the run.
// An error is only returned when the folder is missing, is not a directory, or the
// output directory or folder listing cannot be created or read.
func (x *Extractor) Run(ctx context.Context, folder string,
	progress func(current, total int), log func(line string),
) (Summary, error) {
	if progress == nil {
		progress = func(int, int) {}
	}
	if log == nil {
		log = func(string) {}
	}
	st, err := os.Stat(folder)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return Summary{}, fmt.Errorf("%w: %s", ErrFolder, folder)
	case err != nil:
		return Summary{}, fmt.Errorf("run %w: %w", ErrFS, err)
	case !st.IsDir():
		return Summary{}, fmt.Errorf("%w: %s", ErrNotDir, folder)
	}
	abs, err := filepath.Abs(folder)
	if err != nil {
		return Summary{}, fmt.Errorf("run %w: %w", ErrFS, err)
	}
	sum := Summary{Destination: filepath.Join(abs, x.cfg.Dirname)}
	if err := os.MkdirAll(sum.Destination, DirMode); err != nil {
		return Summary{}, fmt.Errorf("run %w: %w", ErrFS, err)
	}
	entries, err := Find(abs)
	if err != nil {
		return Summary{}, fmt.Errorf("run %w: %w", ErrFS, err)
	}

	tools := x.Tools()
	rx := *x
	rx.log = x.log.With(zap.String("run", uuid.NewString()))
	rx.log.Debug("run", zap.String("folder", abs), zap.Int("archives", len(entries)))
	log(fmt.Sprintf("[tools] %s, 7z and rar libraries: %s", tools, yesNo(!x.cfg.NoLibrary)))

	if len(entries) == 0 {
		log("[info] no archives found in " + abs)
		progress(0, 0)
		return sum, nil
	}
	log(fmt.Sprintf("[info] Found %d archive(s). Extracting to: %s", len(entries), sum.Destination))
	for i, e := range entries {
		o := rx.Extract(ctx, e, sum.Destination)
		sum.Outcomes = append(sum.Outcomes, o)
		sum.Files += o.Files
		sum.Bytes += o.Bytes
		if o.OK() {
			sum.Succeeded++
			log(fmt.Sprintf("[ok] %s -> %s (%d file(s), %s)",
				e.Name(), x.cfg.Dirname, o.Files, humanize.Bytes(uint64(o.Bytes))))
		} else {
			sum.Failed++
			msg := strings.ReplaceAll(strings.TrimSpace(o.Err.Error()), "\n", "; ")
			log(fmt.Sprintf("[fail] %s: %s: %s", e.Name(), Kind(o.Err), msg))
		}
		progress(i+1, len(entries))
	}
	log(fmt.Sprintf("[done] %d succeeded, %d failed. Files written: %d (%s)",
		sum.Succeeded, sum.Failed, sum.Files, humanize.Bytes(uint64(sum.Bytes))))
	return sum, nil
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
