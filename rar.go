package unarchive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/Defacto2/unarchive/command"
	"github.com/nwaples/rardecode/v2"
	"go.uber.org/zap"
)

// Package file rar.go contains the RAR extraction.

// Rar extracts the src RAR archive, credited to Alexander Roshal, into the dst directory.
//
// The programs are tried in order, 7z, bsdtar, the [unrar program] and [unar].
// The in-process [rardecode] library is the final fallback unless it is disabled.
//
// On Linux there are two versions of the unrar program, the freeware
// version by Alexander Roshal and the feature incomplete unrar-free.
// An exit status of 1 from unrar is a warning and the extracted files are kept.
//
// [unrar program]: https://www.rarlab.com/rar_add.htm
// [unar]: https://theunarchiver.com/command-line
// [rardecode]: https://github.com/nwaples/rardecode
func (x *Extractor) Rar(ctx context.Context, src, dst string) (int, int64, error) {
	steps := x.programs(ctx, src, dst,
		command.SevenZip, command.Libarchive, command.UnrarTool, command.Unarchiver)
	if !x.cfg.NoLibrary {
		steps = append(steps, step{name: "rardecode", run: func() (int, int64, error) {
			return x.rardecodeLib(src, dst)
		}})
	}
	if len(steps) == 0 {
		return 0, 0, fmt.Errorf("rar %w: install 7-Zip (7z), bsdtar, unrar or unar", ErrNoTool)
	}
	return x.chain(filepath.Base(src), steps)
}

func (x *Extractor) rardecodeLib(src, dst string) (int, int64, error) {
	r, err := rardecode.OpenReader(src)
	if err != nil {
		return 0, 0, corrupt(src, err)
	}
	defer r.Close()
	files, written := 0, int64(0)
	for {
		hdr, err := r.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return files, written, fmt.Errorf("%w: rar error on %s: %w", ErrCorrupt, filepath.Base(src), err)
		}
		if hdr.IsDir {
			if err := x.namer.mkdir(dst, hdr.Name); err != nil {
				return files, written, fmt.Errorf("rardecode %w", err)
			}
			continue
		}
		if mode := hdr.Mode(); !mode.IsRegular() {
			x.log.Debug("skip rar member", zap.String("name", hdr.Name), zap.Stringer("mode", mode))
			continue
		}
		path, n, err := x.namer.write(dst, hdr.Name, r)
		written += n
		if err != nil {
			return files, written, fmt.Errorf("rardecode %w", err)
		}
		if path != "" {
			files++
		}
	}
	return files, written, nil
}
