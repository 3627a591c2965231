// Package unarchive bulk extracts the zip, tar, 7-Zip and rar archives found in a folder
// into a single output directory, resolving name collisions and path traversal hazards.
//
// Zip and tar archives, including the gzip, bzip2, xz and zstd compressed tarballs,
// are decoded in-process. The 7-Zip, rar and other archive formats are handed to the
// following terminal programs, tried in order, before falling back to the
// in-process [sevenzip] and [rardecode] libraries.
//
//  1. [7z] - 7-Zip or p7zip, console version
//  2. [bsdtar] - the libarchive tar, the default tar on macOS and Windows
//  3. [unrar] - 6.24 freeware by Alexander Roshal, not the common unrar-free
//  4. [unar] - The Unarchiver command line tool
//
// Programs extract into a scratch directory which is then flattened into
// the output directory and always removed.
//
// [7z]: https://www.7-zip.org/
// [bsdtar]: https://man.freebsd.org/cgi/man.cgi?query=bsdtar&sektion=1&format=html
// [unrar]: https://www.rarlab.com/rar_add.htm
// [unar]: https://theunarchiver.com/command-line
// [sevenzip]: https://github.com/bodgit/sevenzip
// [rardecode]: https://github.com/nwaples/rardecode
package unarchive

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
)

const (
	// Dirname is the default name of the output directory created within the input folder.
	Dirname = "unarchived"

	// WriteWriteRead is the file mode for read and write access.
	// The file owner and group has read and write access, and others have read access.
	WriteWriteRead fs.FileMode = 0o664
	// DirMode is the mode of the created directories.
	DirMode fs.FileMode = 0o755

	bufSize = 64 * 1024
)

var (
	ErrCorrupt     = errors.New("corrupt or invalid archive")
	ErrUnsupported = errors.New("unsupported archive type")
	ErrNoTool      = errors.New("no extractor available")
	ErrProg        = errors.New("program error")
	ErrFS          = errors.New("filesystem error")
	ErrPassword    = errors.New("archive is password protected")
	ErrFolder      = errors.New("folder does not exist")
	ErrNotDir      = errors.New("path is not a directory")
)

// ToolError is the failure of an external program, it unwraps to [ErrProg].
type ToolError struct {
	Tool   string // Tool is the program kind, such as unrar.
	Prog   string // Prog is the path of the program that was run.
	Code   int    // Code is the exit status, -1 if the program did not exit normally.
	Output string // Output is the combined stdout and stderr of the program.
}

func (e *ToolError) Error() string {
	out := strings.TrimSpace(e.Output)
	if out == "" {
		return fmt.Sprintf("%s failed (code %d)", e.Tool, e.Code)
	}
	return fmt.Sprintf("%s failed (code %d): %s", e.Tool, e.Code, out)
}

func (e *ToolError) Unwrap() error {
	return ErrProg
}

// Kind returns the error taxonomy name of err, or an empty string for a nil error.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrCorrupt), errors.Is(err, ErrPassword):
		return "CorruptArchive"
	case errors.Is(err, ErrUnsupported):
		return "UnsupportedFormat"
	case errors.Is(err, ErrNoTool):
		return "ToolNotFound"
	case errors.Is(err, ErrProg):
		return "ToolInvocationFailed"
	}
	return "FilesystemError"
}
