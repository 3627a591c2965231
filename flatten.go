package unarchive

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/Defacto2/helper"
)

// Package file flatten.go contains the collision free naming and the merging of
// extracted directory trees into the output directory.

// Namer resolves the output paths of extracted files.
//
// The existence check in Unique and the following write are not atomic,
// so only one writer may use a destination directory at a time.
type Namer struct {
	Overwrite bool // Overwrite returns targets unchanged, replacing existing files.
	Flat      bool // Flat drops the member directories and writes every file into the root.
}

// Unique returns the candidate path when Overwrite is set or when nothing exists at the path.
// Otherwise it returns the first unused path with an incrementing suffix placed before the
// extension, such as readme_1.txt, readme_2.txt.
func (n Namer) Unique(candidate string) string {
	if n.Overwrite || !exists(candidate) {
		return candidate
	}
	dir, base := filepath.Split(candidate)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	if stem == "" {
		// dotfiles such as .profile have no extension
		stem, ext = base, ""
	}
	for i := 1; ; i++ {
		name := filepath.Join(dir, fmt.Sprintf("%s_%d%s", stem, i, ext))
		if !exists(name) {
			return name
		}
	}
}

// Target returns the path of the member within root, which is the
// safe mirrored path or, in flat mode, the root joined with the member's final element.
func (n Namer) Target(root, member string) string {
	if !n.Flat {
		return Resolve(root, member)
	}
	parts := Segments(member)
	if len(parts) == 0 {
		return root
	}
	return Resolve(root, parts[len(parts)-1])
}

// Flatten moves every regular file within the src directory tree into the dst directory,
// mirroring the relative directory layout unless Flat is set. The tree is walked in
// lexical order. Symbolic links and other special files are skipped.
//
// It returns the number of files and bytes moved. Moves are not rolled back
// when a later file fails.
func (n Namer) Flatten(src, dst string) (int, int64, error) {
	files, written := 0, int64(0)
	err := filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == src {
			return nil
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		if d.IsDir() {
			if n.Flat {
				return nil
			}
			return os.MkdirAll(Resolve(dst, rel), DirMode)
		}
		if !d.Type().IsRegular() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		target := n.Target(dst, rel)
		if target == dst {
			return nil
		}
		if err := os.MkdirAll(filepath.Dir(target), DirMode); err != nil {
			return err
		}
		if err := n.move(path, n.Unique(target)); err != nil {
			return err
		}
		files++
		written += info.Size()
		return nil
	})
	if err != nil {
		return files, written, fmt.Errorf("flatten %w: %w", ErrFS, err)
	}
	return files, written, nil
}

// move renames the file, copying it when src and dst are on different devices.
func (n Namer) move(src, dst string) error {
	err := os.Rename(src, dst)
	if err == nil {
		return nil
	}
	if n.Overwrite {
		_, err = helper.DuplicateOW(src, dst)
	} else {
		_, err = helper.Duplicate(src, dst)
	}
	if err != nil {
		return fmt.Errorf("move %s: %w", filepath.Base(src), err)
	}
	return os.Remove(src)
}

// mkdir creates the directory member within root. Flat mode creates nothing.
func (n Namer) mkdir(root, member string) error {
	if n.Flat {
		return nil
	}
	if err := os.MkdirAll(Resolve(root, member), DirMode); err != nil {
		return fmt.Errorf("%w: %w", ErrFS, err)
	}
	return nil
}

// write copies the content of the file member to its uniquely named target within root.
// It returns the final path and the number of bytes written.
// A member without a usable name is skipped and returns an empty path.
//
// Errors reading r are reported as [ErrCorrupt], errors writing the target as [ErrFS].
func (n Namer) write(root, member string, r io.Reader) (string, int64, error) {
	target := n.Target(root, member)
	if target == root {
		return "", 0, nil
	}
	if err := os.MkdirAll(filepath.Dir(target), DirMode); err != nil {
		return "", 0, fmt.Errorf("%w: %w", ErrFS, err)
	}
	name := n.Unique(target)
	flag := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if !n.Overwrite {
		flag |= os.O_EXCL
	}
	f, err := os.OpenFile(name, flag, WriteWriteRead)
	if err != nil {
		return "", 0, fmt.Errorf("%w: %w", ErrFS, err)
	}
	buf := make([]byte, bufSize)
	written, err := io.CopyBuffer(fsWriter{f}, r, buf)
	if cerr := f.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("%w: %w", ErrFS, cerr)
	}
	if err != nil {
		os.Remove(name)
		if errors.Is(err, ErrFS) {
			return "", written, err
		}
		return "", written, fmt.Errorf("%w: %s: %w", ErrCorrupt, member, err)
	}
	return name, written, nil
}

// fsWriter marks the write errors of the wrapped writer as [ErrFS].
type fsWriter struct {
	w io.Writer
}

func (f fsWriter) Write(p []byte) (int, error) {
	n, err := f.w.Write(p)
	if err != nil {
		return n, fmt.Errorf("%w: %w", ErrFS, err)
	}
	return n, nil
}

func exists(name string) bool {
	_, err := os.Lstat(name)
	return err == nil
}
