package unarchive

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// Package file format.go contains the filename based archive format detection.

// Format is the archive format of a file, identified by its filename extension.
type Format int

const (
	Unknown  Format = iota // Unknown is any other archive handed to the general programs.
	Zip                    // Zip by Phil Katz.
	TarPlain               // TarPlain is an uncompressed tape archive.
	TarGzip                // TarGzip is a gzip compressed tape archive.
	TarBzip2               // TarBzip2 is a bzip2 compressed tape archive.
	TarXz                  // TarXz is an xz compressed tape archive.
	TarZstd                // TarZstd is a Zstandard compressed tape archive.
	SevenZip               // SevenZip is the 7-Zip format by Igor Pavlov.
	Rar                    // Rar is the Roshal ARchive format.
)

func (f Format) String() string {
	switch f {
	case Zip:
		return "zip"
	case TarPlain:
		return "tar"
	case TarGzip:
		return "tar.gz"
	case TarBzip2:
		return "tar.bz2"
	case TarXz:
		return "tar.xz"
	case TarZstd:
		return "tar.zst"
	case SevenZip:
		return "7z"
	case Rar:
		return "rar"
	}
	return "unknown"
}

// Tar reports whether the format is in the tape archive family.
func (f Format) Tar() bool {
	switch f { //nolint:exhaustive
	case TarPlain, TarGzip, TarBzip2, TarXz, TarZstd:
		return true
	}
	return false
}

// suffixes are matched in order, so compound extensions come before simple ones.
var suffixes = []struct {
	ext    string
	format Format
}{
	{".tar.gz", TarGzip},
	{".tgz", TarGzip},
	{".tar.bz2", TarBzip2},
	{".tbz2", TarBzip2},
	{".tar.xz", TarXz},
	{".txz", TarXz},
	{".tar.zst", TarZstd},
	{".tzst", TarZstd},
	{".tar", TarPlain},
	{".zip", Zip},
	{".7z", SevenZip},
	{".rar", Rar},
}

// others are the extensions of the formats that only the external programs read.
var others = []string{".arj", ".cab", ".cpio", ".iso", ".lha", ".lzh"}

// Classify returns the archive format of the named file using its case-insensitive
// filename extension. The file content is never read.
func Classify(name string) Format {
	s := strings.ToLower(filepath.Base(name))
	for _, x := range suffixes {
		if strings.HasSuffix(s, x.ext) {
			return x.format
		}
	}
	return Unknown
}

// IsArchive reports whether the named file has an archive extension that is extracted by a run.
func IsArchive(name string) bool {
	if Classify(name) != Unknown {
		return true
	}
	return slices.Contains(others, strings.ToLower(filepath.Ext(name)))
}

// Entry is an archive file found in the input folder.
type Entry struct {
	Path   string // Path is the absolute path of the archive file.
	Format Format // Format is the detected archive format.
}

// Name returns the filename of the archive.
func (e Entry) Name() string {
	return filepath.Base(e.Path)
}

// Find returns the archive files directly within the folder, sorted by name.
// Subdirectories are not searched.
func Find(folder string) ([]Entry, error) {
	abs, err := filepath.Abs(folder)
	if err != nil {
		return nil, fmt.Errorf("find %w", err)
	}
	items, err := os.ReadDir(abs)
	if err != nil {
		return nil, fmt.Errorf("find %w", err)
	}
	entries := []Entry{}
	for _, item := range items {
		if !IsArchive(item.Name()) {
			continue
		}
		name := filepath.Join(abs, item.Name())
		if !regular(item, name) {
			continue
		}
		entries = append(entries, Entry{Path: name, Format: Classify(name)})
	}
	slices.SortFunc(entries, func(a, b Entry) int {
		return strings.Compare(a.Path, b.Path)
	})
	return entries, nil
}

// regular reports whether the directory item is a file, following a symbolic link.
func regular(item os.DirEntry, name string) bool {
	if item.Type()&os.ModeSymlink == 0 {
		return item.Type().IsRegular()
	}
	st, err := os.Stat(name)
	if err != nil {
		return false
	}
	return st.Mode().IsRegular()
}
