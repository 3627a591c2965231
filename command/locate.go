package command

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"runtime"

	"go.uber.org/zap"
)

// Locator discovers the external extraction programs.
//
// The search order for every kind is the configured override, the search path,
// and then the well-known install locations of the host platform.
// A missing program is not an error, Locate returns an empty string.
type Locator struct {
	Overrides Overrides         // Overrides are the explicit program paths.
	WellKnown map[Kind][]string // WellKnown are absolute install locations searched last.
	GOOS      string            // GOOS is the host platform, runtime.GOOS when empty.
	Logger    *zap.Logger       // Logger receives the rejected candidates, it may be nil.
}

// NewLocator returns a locator using the overrides and the well-known
// install locations of the running platform.
func NewLocator(o Overrides) Locator {
	return Locator{
		Overrides: o,
		WellKnown: WellKnown(runtime.GOOS),
		GOOS:      runtime.GOOS,
	}
}

// Detect locates every program kind.
func (l Locator) Detect() Tools {
	return Tools{
		SevenZip: l.Locate(SevenZip),
		Tar:      l.Locate(Libarchive),
		Unrar:    l.Locate(UnrarTool),
		Unar:     l.Locate(Unarchiver),
	}
}

// Locate returns the absolute path of the first usable program of the kind,
// or an empty string when none is found.
//
// An explicit override is trusted as-is once it exists, all other libarchive tar
// candidates must identify themselves as libarchive or bsdtar.
func (l Locator) Locate(k Kind) string {
	log := l.logger().With(zap.Stringer("kind", k))
	if o := l.Overrides.Get(k); o != "" {
		if executable(o) {
			return o
		}
		log.Debug("override not found", zap.String("path", o))
	}
	for _, name := range k.Names() {
		prog, err := exec.LookPath(name)
		if err != nil {
			continue
		}
		if l.accept(k, prog) {
			return prog
		}
		log.Debug("rejected candidate", zap.String("path", prog))
	}
	for _, prog := range l.WellKnown[k] {
		if !executable(prog) {
			continue
		}
		if l.accept(k, prog) {
			return prog
		}
		log.Debug("rejected candidate", zap.String("path", prog))
	}
	return ""
}

func (l Locator) accept(k Kind, prog string) bool {
	if k != Libarchive {
		return true
	}
	ctx, cancel := context.WithTimeout(context.Background(), TimeoutLookup)
	defer cancel()
	out, _ := exec.CommandContext(ctx, prog, "--version").CombinedOutput()
	return libarchive(out, prog, l.goos())
}

// libarchive reports whether the tar version output or the platform identify
// a libarchive based tar. The macOS system tar is bsdtar.
func libarchive(version []byte, prog, goos string) bool {
	v := bytes.ToLower(version)
	if bytes.Contains(v, []byte("libarchive")) || bytes.Contains(v, []byte("bsdtar")) {
		return true
	}
	return goos == "darwin" && prog == "/usr/bin/tar"
}

func (l Locator) goos() string {
	if l.GOOS == "" {
		return runtime.GOOS
	}
	return l.GOOS
}

func (l Locator) logger() *zap.Logger {
	if l.Logger == nil {
		return zap.NewNop()
	}
	return l.Logger
}

func executable(name string) bool {
	st, err := os.Stat(name)
	if err != nil {
		return false
	}
	return !st.IsDir()
}

// WellKnown returns the package manager and installer default locations for the platform.
func WellKnown(goos string) map[Kind][]string {
	switch goos {
	case "windows":
		return map[Kind][]string{
			SevenZip: {
				`C:\Program Files\7-Zip\7z.exe`,
				`C:\Program Files (x86)\7-Zip\7z.exe`,
			},
			Libarchive: {`C:\Windows\System32\tar.exe`},
			UnrarTool: {
				`C:\Program Files\WinRAR\UnRAR.exe`,
				`C:\Program Files (x86)\WinRAR\UnRAR.exe`,
			},
		}
	case "darwin":
		return map[Kind][]string{
			SevenZip:   {"/opt/homebrew/bin/7z", "/opt/homebrew/bin/7zz", "/usr/local/bin/7z", "/usr/local/bin/7zz"},
			Libarchive: {"/usr/bin/bsdtar", "/usr/bin/tar", "/opt/homebrew/bin/bsdtar"},
			UnrarTool:  {"/opt/homebrew/bin/unrar", "/usr/local/bin/unrar"},
			Unarchiver: {"/opt/homebrew/bin/unar", "/usr/local/bin/unar"},
		}
	}
	return map[Kind][]string{
		SevenZip:   {"/usr/bin/7z", "/usr/bin/7zz", "/usr/local/bin/7z", "/usr/local/bin/7zz", "/snap/bin/7z"},
		Libarchive: {"/usr/bin/bsdtar", "/usr/local/bin/bsdtar"},
		UnrarTool:  {"/usr/bin/unrar", "/usr/local/bin/unrar"},
		Unarchiver: {"/usr/bin/unar", "/usr/local/bin/unar"},
	}
}
