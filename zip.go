package unarchive

import (
	"archive/zip"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Defacto2/magicnumber"
	"go.uber.org/zap"
)

// Package file zip.go contains the in-process ZIP extraction.

// Zip extracts the src ZIP archive into the dst directory using the in-process reader.
// The format is credited to Phil Katz.
// It returns the number of files and bytes written.
//
// Only the universal Store and Deflate compression methods are decoded in-process.
// An archive containing a member using any other method, such as the legacy
// shrink, reduce and implode methods or the later deflate64, returns [ErrUnsupported]
// before anything is written. An encrypted member returns [ErrPassword].
func (x *Extractor) Zip(src, dst string) (int, int64, error) {
	r, err := zip.OpenReader(src)
	if err != nil {
		return 0, 0, corrupt(src, err)
	}
	defer r.Close()
	if err := methods(r.File); err != nil {
		return 0, 0, fmt.Errorf("zip %s: %w", filepath.Base(src), err)
	}
	files, written := 0, int64(0)
	for _, f := range r.File {
		name := f.Name
		if name == "" {
			continue
		}
		mode := f.Mode()
		if strings.HasSuffix(name, "/") || mode.IsDir() {
			if err := x.namer.mkdir(dst, name); err != nil {
				return files, written, fmt.Errorf("zip %w", err)
			}
			continue
		}
		if !mode.IsRegular() {
			x.log.Debug("skip zip member", zap.String("name", name), zap.Stringer("mode", mode))
			continue
		}
		path, n, err := x.unzip(f, dst)
		written += n
		if err != nil {
			return files, written, fmt.Errorf("zip %w", err)
		}
		if path != "" {
			files++
		}
	}
	return files, written, nil
}

func (x *Extractor) unzip(f *zip.File, dst string) (string, int64, error) {
	rc, err := f.Open()
	if err != nil {
		return "", 0, fmt.Errorf("%w: %s: %w", ErrCorrupt, f.Name, err)
	}
	defer rc.Close()
	return x.namer.write(dst, f.Name, rc)
}

// methods confirms every member can be decoded by the in-process reader.
func methods(files []*zip.File) error {
	const encrypted = 0x1
	for _, f := range files {
		if f.Flags&encrypted != 0 {
			return fmt.Errorf("%w: %s", ErrPassword, f.Name)
		}
		switch f.Method {
		case zip.Store, zip.Deflate:
		default:
			return fmt.Errorf("%w: %s uses compression method %d", ErrUnsupported, f.Name, f.Method)
		}
	}
	return nil
}

// corrupt returns an [ErrCorrupt] error for the src archive, naming the
// file signature of the content so a misnamed file is recognizable.
func corrupt(src string, err error) error {
	name := filepath.Base(src)
	if sign := signature(src); sign != "" {
		return fmt.Errorf("%w: %s: %w (content is %s)", ErrCorrupt, name, err, sign)
	}
	return fmt.Errorf("%w: %s: %w", ErrCorrupt, name, err)
}

func signature(src string) string {
	r, err := os.Open(src)
	if err != nil {
		return ""
	}
	defer r.Close()
	sign, err := magicnumber.Archive(r)
	if err != nil || sign == magicnumber.Unknown {
		return ""
	}
	return sign.String()
}
