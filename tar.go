package unarchive

import (
	"archive/tar"
	"compress/bzip2"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"
	"github.com/klauspost/pgzip"
	"github.com/ulikunitz/xz"
	"go.uber.org/zap"
)

// Package file tar.go contains the in-process tape archive extraction.

// Tar extracts the src tape archive into the dst directory using the in-process reader.
// The compression is selected by the format, which is any of the tar family.
// It returns the number of files and bytes written.
//
// Symbolic and hard links are skipped, as are device and FIFO members.
func (x *Extractor) Tar(src, dst string, format Format) (int, int64, error) {
	if !format.Tar() {
		return 0, 0, fmt.Errorf("tar %w: %s", ErrUnsupported, format)
	}
	f, err := os.Open(src)
	if err != nil {
		return 0, 0, fmt.Errorf("tar %w: %w", ErrFS, err)
	}
	defer f.Close()
	r, err := decompress(f, format)
	if err != nil {
		return 0, 0, corrupt(src, fmt.Errorf("tar %s: %w", format, err))
	}
	defer r.Close()

	tr := tar.NewReader(r)
	files, written := 0, int64(0)
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return files, written, fmt.Errorf("%w: tar error on %s: %w", ErrCorrupt, filepath.Base(src), err)
		}
		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := x.namer.mkdir(dst, hdr.Name); err != nil {
				return files, written, fmt.Errorf("tar %w", err)
			}
			continue
		case tar.TypeReg:
		default:
			x.log.Debug("skip tar member", zap.String("name", hdr.Name),
				zap.String("type", string(hdr.Typeflag)))
			continue
		}
		path, n, err := x.namer.write(dst, hdr.Name, tr)
		written += n
		if err != nil {
			return files, written, fmt.Errorf("tar %w", err)
		}
		if path != "" {
			files++
		}
	}
	return files, written, nil
}

// decompress returns the tarball stream of r for the compression of the format.
func decompress(r io.Reader, format Format) (io.ReadCloser, error) {
	switch format { //nolint:exhaustive
	case TarGzip:
		gr, err := pgzip.NewReader(r)
		if err != nil {
			return nil, err
		}
		return gr, nil
	case TarBzip2:
		return io.NopCloser(bzip2.NewReader(r)), nil
	case TarXz:
		xr, err := xz.NewReader(r)
		if err != nil {
			return nil, err
		}
		return io.NopCloser(xr), nil
	case TarZstd:
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, err
		}
		return zr.IOReadCloser(), nil
	}
	return io.NopCloser(r), nil
}
