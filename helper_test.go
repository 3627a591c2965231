package unarchive_test

import (
	"archive/tar"
	"archive/zip"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/Defacto2/unarchive"
	"github.com/Defacto2/unarchive/command"
	"github.com/klauspost/compress/zstd"
	"github.com/klauspost/pgzip"
	"github.com/stretchr/testify/require"
	"github.com/ulikunitz/xz"
)

// member is an archive record used to build the test archives.
type member struct {
	name string
	body string
	link string // link is the target of a symbolic link member.
	dir  bool
}

func members(names ...string) []member {
	m := make([]member, 0, len(names))
	for _, name := range names {
		m = append(m, member{name: name, body: "content of " + name})
	}
	return m
}

// noTools returns an extractor that never runs a program.
func noTools(cfg unarchive.Config) *unarchive.Extractor {
	return unarchive.New(cfg, unarchive.WithTools(command.Tools{}))
}

func zipball(t *testing.T, name string, members []member) string {
	t.Helper()
	f, err := os.Create(name)
	require.NoError(t, err)
	defer f.Close()
	w := zip.NewWriter(f)
	for _, m := range members {
		if m.dir {
			_, err := w.Create(strings.TrimSuffix(m.name, "/") + "/")
			require.NoError(t, err)
			continue
		}
		fw, err := w.Create(m.name)
		require.NoError(t, err)
		_, err = io.WriteString(fw, m.body)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return name
}

func tarball(t *testing.T, name string, format unarchive.Format, members []member) string {
	t.Helper()
	f, err := os.Create(name)
	require.NoError(t, err)
	defer f.Close()
	var w io.WriteCloser
	switch format { //nolint:exhaustive
	case unarchive.TarGzip:
		w = pgzip.NewWriter(f)
	case unarchive.TarXz:
		w, err = xz.NewWriter(f)
		require.NoError(t, err)
	case unarchive.TarZstd:
		w, err = zstd.NewWriter(f)
		require.NoError(t, err)
	case unarchive.TarPlain:
		w = nopCloser{f}
	default:
		t.Fatalf("no writer for %s", format)
	}
	tw := tar.NewWriter(w)
	for _, m := range members {
		hdr := &tar.Header{Name: m.name, Mode: 0o644, Size: int64(len(m.body)), Typeflag: tar.TypeReg}
		switch {
		case m.dir:
			hdr.Typeflag, hdr.Mode, hdr.Size = tar.TypeDir, 0o755, 0
		case m.link != "":
			hdr.Typeflag, hdr.Linkname, hdr.Size = tar.TypeSymlink, m.link, 0
		}
		require.NoError(t, tw.WriteHeader(hdr))
		if hdr.Typeflag == tar.TypeReg {
			_, err := io.WriteString(tw, m.body)
			require.NoError(t, err)
		}
	}
	require.NoError(t, tw.Close())
	require.NoError(t, w.Close())
	return name
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }

// script writes a shell script program, the test is skipped on windows.
func script(t *testing.T, dir, name, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script programs are not supported on windows")
	}
	name = filepath.Join(dir, name)
	err := os.WriteFile(name, []byte("#!/bin/sh\n"+body+"\n"), 0o755)
	require.NoError(t, err)
	return name
}

// tree returns the slash separated relative paths of the files within root.
func tree(t *testing.T, root string) []string {
	t.Helper()
	names := []string{}
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		names = append(names, filepath.ToSlash(rel))
		return nil
	})
	require.NoError(t, err)
	return names
}

func read(t *testing.T, name string) string {
	t.Helper()
	b, err := os.ReadFile(name)
	require.NoError(t, err)
	return string(b)
}
