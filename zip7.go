package unarchive

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/Defacto2/unarchive/command"
	"github.com/bodgit/sevenzip"
	"go.uber.org/zap"
)

// Package file zip7.go contains the 7-Zip extraction.

// SevenZip extracts the src 7-Zip archive into the dst directory.
// The format is credited to Igor Pavlov.
//
// The [7z program] is tried first, then [bsdtar], and finally the in-process
// [sevenzip] library unless the library fallback is disabled.
// On some Linux distributions the 7z program is named 7zz or 7za.
//
// [7z program]: https://www.7-zip.org/
// [bsdtar]: https://man.freebsd.org/cgi/man.cgi?query=bsdtar&sektion=1&format=html
// [sevenzip]: https://github.com/bodgit/sevenzip
func (x *Extractor) SevenZip(ctx context.Context, src, dst string) (int, int64, error) {
	steps := x.programs(ctx, src, dst, command.SevenZip, command.Libarchive)
	if !x.cfg.NoLibrary {
		steps = append(steps, step{name: "sevenzip", run: func() (int, int64, error) {
			return x.sevenzipLib(src, dst)
		}})
	}
	if len(steps) == 0 {
		return 0, 0, fmt.Errorf("7z %w: install 7-Zip (7z) or bsdtar", ErrNoTool)
	}
	return x.chain(filepath.Base(src), steps)
}

func (x *Extractor) sevenzipLib(src, dst string) (int, int64, error) {
	r, err := sevenzip.OpenReader(src)
	if err != nil {
		return 0, 0, corrupt(src, err)
	}
	defer r.Close()
	files, written := 0, int64(0)
	for _, f := range r.File {
		info := f.FileInfo()
		if info.IsDir() {
			if err := x.namer.mkdir(dst, f.Name); err != nil {
				return files, written, fmt.Errorf("sevenzip %w", err)
			}
			continue
		}
		if !info.Mode().IsRegular() {
			x.log.Debug("skip 7z member", zap.String("name", f.Name), zap.Stringer("mode", info.Mode()))
			continue
		}
		path, n, err := x.un7z(f, dst)
		written += n
		if err != nil {
			return files, written, fmt.Errorf("sevenzip %w", err)
		}
		if path != "" {
			files++
		}
	}
	return files, written, nil
}

func (x *Extractor) un7z(f *sevenzip.File, dst string) (string, int64, error) {
	rc, err := f.Open()
	if err != nil {
		return "", 0, fmt.Errorf("%w: %s: %w", ErrCorrupt, f.Name, err)
	}
	defer rc.Close()
	return x.namer.write(dst, f.Name, rc)
}
