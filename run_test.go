package unarchive_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Defacto2/helper"
	"github.com/Defacto2/unarchive"
	"github.com/Defacto2/unarchive/command"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

// recorder collects the callbacks of a run.
type recorder struct {
	lines    []string
	progress [][2]int
}

func (r *recorder) log(line string) {
	r.lines = append(r.lines, line)
}

func (r *recorder) step(current, total int) {
	r.progress = append(r.progress, [2]int{current, total})
}

func (r *recorder) run(t *testing.T, x *unarchive.Extractor, folder string) unarchive.Summary {
	t.Helper()
	sum, err := x.Run(context.Background(), folder, r.step, r.log)
	require.NoError(t, err)
	return sum
}

func TestRun_Empty(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	require.NoError(t, helper.Touch(filepath.Join(dir, "notes.txt")))
	var r recorder
	sum := r.run(t, noTools(unarchive.Config{}), dir)
	assert.Equal(t, filepath.Join(dir, unarchive.Dirname), sum.Destination)
	assert.DirExists(t, sum.Destination)
	assert.Equal(t, [][2]int{{0, 0}}, r.progress)
	require.Len(t, r.lines, 2)
	assert.Equal(t, "[tools] 7z: no, bsdtar: no, unrar: no, unar: no, 7z and rar libraries: yes", r.lines[0])
	assert.Contains(t, r.lines[1], "no archives found")
	assert.Empty(t, sum.Outcomes)
}

func TestRun_Collisions(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	for _, name := range []string{"a.zip", "b.zip", "c.zip"} {
		zipball(t, filepath.Join(dir, name), []member{{name: "readme.txt", body: name}})
	}
	tarball(t, filepath.Join(dir, "d.tar.gz"), unarchive.TarGzip, []member{{name: "readme.txt", body: "d.tar.gz"}})

	var r recorder
	sum := r.run(t, noTools(unarchive.Config{}), dir)
	assert.Equal(t, 4, sum.Succeeded)
	assert.Equal(t, 0, sum.Failed)
	assert.Equal(t, 4, sum.Files)
	assert.Equal(t, [][2]int{{1, 4}, {2, 4}, {3, 4}, {4, 4}}, r.progress)

	assert.ElementsMatch(t, []string{"readme.txt", "readme_1.txt", "readme_2.txt", "readme_3.txt"},
		tree(t, sum.Destination))
	// archives are processed in name order
	for name, want := range map[string]string{
		"readme.txt": "a.zip", "readme_1.txt": "b.zip", "readme_2.txt": "c.zip", "readme_3.txt": "d.tar.gz",
	} {
		assert.Equal(t, want, read(t, filepath.Join(sum.Destination, name)))
	}
	assert.Equal(t, "[ok] a.zip -> unarchived (1 file(s), 5 B)", r.lines[2])
	assert.Equal(t, "[done] 4 succeeded, 0 failed. Files written: 4 (23 B)", r.lines[len(r.lines)-1])
}

func TestRun_Twice(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	zipball(t, filepath.Join(dir, "a.zip"), []member{
		{name: "x.txt", body: "x"},
		{name: "sub/y.txt", body: "y"},
	})
	x := noTools(unarchive.Config{})
	var r recorder
	sum := r.run(t, x, dir)
	first := tree(t, sum.Destination)
	assert.ElementsMatch(t, []string{"x.txt", "sub/y.txt"}, first)
	require.NoError(t, os.WriteFile(filepath.Join(sum.Destination, "x.txt"), []byte("edited"), 0o644))

	sum = r.run(t, x, dir)
	assert.ElementsMatch(t, []string{"x.txt", "x_1.txt", "sub/y.txt", "sub/y_1.txt"}, tree(t, sum.Destination))
	assert.Equal(t, "edited", read(t, filepath.Join(sum.Destination, "x.txt")))

	ow := noTools(unarchive.Config{Overwrite: true})
	sum = r.run(t, ow, dir)
	assert.Len(t, tree(t, sum.Destination), 4)
	assert.Equal(t, "x", read(t, filepath.Join(sum.Destination, "x.txt")))
}

func TestRun_Failures(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a-bad.zip"), []byte("junk"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.cab"), []byte("junk"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "c.7z"), []byte("junk"), 0o644))
	zipball(t, filepath.Join(dir, "d-good.zip"), members("good.txt"))

	var r recorder
	sum := r.run(t, noTools(unarchive.Config{NoLibrary: true}), dir)
	assert.Equal(t, 1, sum.Succeeded)
	assert.Equal(t, 3, sum.Failed)
	assert.Equal(t, 1, sum.Files)
	require.Len(t, sum.Outcomes, 4)
	assert.ErrorIs(t, sum.Outcomes[0].Err, unarchive.ErrCorrupt)
	assert.ErrorIs(t, sum.Outcomes[1].Err, unarchive.ErrUnsupported)
	assert.ErrorIs(t, sum.Outcomes[2].Err, unarchive.ErrNoTool)
	assert.True(t, sum.Outcomes[3].OK())
	assert.Equal(t, [][2]int{{1, 4}, {2, 4}, {3, 4}, {4, 4}}, r.progress)

	assert.True(t, strings.HasPrefix(r.lines[2], "[fail] a-bad.zip: CorruptArchive: "))
	assert.Equal(t, "[fail] b.cab: UnsupportedFormat: unsupported archive type: b.cab", r.lines[3])
	assert.True(t, strings.HasPrefix(r.lines[4], "[fail] c.7z: ToolNotFound: "))
	assert.True(t, strings.HasPrefix(r.lines[5], "[ok] d-good.zip"))
	assert.True(t, strings.HasPrefix(r.lines[6], "[done] 1 succeeded, 3 failed. Files written: 1"))
}

func TestRun_Program(t *testing.T) {
	t.Parallel()
	dir, bin, tmp := t.TempDir(), t.TempDir(), t.TempDir()
	require.NoError(t, helper.Touch(filepath.Join(dir, "test.lzh")))
	tools := command.Tools{SevenZip: script(t, bin, "7z", fake7z)}
	x := unarchive.New(unarchive.Config{TempDir: tmp, Dirname: "out", Flat: true}, unarchive.WithTools(tools))

	var r recorder
	sum := r.run(t, x, dir)
	assert.Equal(t, filepath.Join(dir, "out"), sum.Destination)
	assert.Equal(t, 1, sum.Succeeded)
	assert.ElementsMatch(t, []string{"readme.txt", "seven.txt"}, tree(t, sum.Destination))
	assert.Equal(t, "[ok] test.lzh -> out (2 file(s), 15 B)", r.lines[2])
	entries, err := os.ReadDir(tmp)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRun_FileDirectoryClash(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	zipball(t, filepath.Join(dir, "a.zip"), []member{{name: "docs", body: "a file"}})
	zipball(t, filepath.Join(dir, "b.zip"), []member{{name: "docs/readme.txt", body: "readme"}})
	zipball(t, filepath.Join(dir, "c.zip"), members("c.txt"))

	var r recorder
	sum := r.run(t, noTools(unarchive.Config{}), dir)
	require.Len(t, sum.Outcomes, 3)
	assert.True(t, sum.Outcomes[0].OK())
	require.ErrorIs(t, sum.Outcomes[1].Err, unarchive.ErrFS)
	assert.True(t, sum.Outcomes[2].OK())
	assert.Equal(t, 2, sum.Succeeded)
	assert.Equal(t, 1, sum.Failed)
	assert.True(t, strings.HasPrefix(r.lines[3], "[fail] b.zip: FilesystemError: "))
	assert.ElementsMatch(t, []string{"docs", "c.txt"}, tree(t, sum.Destination))

	// flat mode has no directories to clash with
	sum = r.run(t, noTools(unarchive.Config{Dirname: "flat", Flat: true}), dir)
	assert.Equal(t, 3, sum.Succeeded)
	assert.ElementsMatch(t, []string{"docs", "readme.txt", "c.txt"}, tree(t, sum.Destination))
}

func TestRun_Folder(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	x := noTools(unarchive.Config{})
	_, err := x.Run(context.Background(), filepath.Join(dir, "missing"), nil, nil)
	require.ErrorIs(t, err, unarchive.ErrFolder)
	assert.NoDirExists(t, filepath.Join(dir, "missing", unarchive.Dirname))

	file := filepath.Join(dir, "file.zip")
	require.NoError(t, helper.Touch(file))
	_, err = x.Run(context.Background(), file, nil, nil)
	require.ErrorIs(t, err, unarchive.ErrNotDir)

	// the output name is taken by a file
	require.NoError(t, helper.Touch(filepath.Join(dir, unarchive.Dirname)))
	_, err = x.Run(context.Background(), dir, nil, nil)
	require.ErrorIs(t, err, unarchive.ErrFS)
}

func TestRun_NilCallbacks(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	zipball(t, filepath.Join(dir, "a.zip"), members("a.txt"))
	sum, err := noTools(unarchive.Config{}).Run(context.Background(), dir, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Succeeded)
}

func TestRun_Logger(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	tarball(t, filepath.Join(dir, "a.tar"), unarchive.TarPlain, []member{
		{name: "link", link: "target"},
		{name: "a.txt", body: "a"},
	})
	core, logs := observer.New(zap.DebugLevel)
	x := unarchive.New(unarchive.Config{}, unarchive.WithTools(command.Tools{}), unarchive.WithLogger(zap.New(core)))
	_, err := x.Run(context.Background(), dir, nil, nil)
	require.NoError(t, err)

	skips := logs.FilterMessage("skip tar member").All()
	require.Len(t, skips, 1)
	ctx := skips[0].ContextMap()
	assert.Equal(t, "link", ctx["name"])
	assert.NotEmpty(t, ctx["run"])
}

func TestKind(t *testing.T) {
	t.Parallel()
	assert.Empty(t, unarchive.Kind(nil))
	assert.Equal(t, "FilesystemError", unarchive.Kind(unarchive.ErrFS))
	assert.Equal(t, "FilesystemError", unarchive.Kind(os.ErrPermission))
	err := &unarchive.ToolError{Tool: "unrar", Code: 3, Output: " bad crc \n"}
	assert.Equal(t, "unrar failed (code 3): bad crc", err.Error())
	assert.Equal(t, "ToolInvocationFailed", unarchive.Kind(err))
	assert.Equal(t, "unar failed (code -1)", (&unarchive.ToolError{Tool: "unar", Code: -1}).Error())
}
