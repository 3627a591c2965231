// Package command lists the external archiving programs and locates them on the host.
package command

// A note about unrar: On Linux there are incompatible variants of unrar.
// The common unrar-free application is incomplete and fails on many .rar files,
// so when both are installed the freeware "UNRAR 6.24 freeware, Copyright (c) 1993-2023
// Alexander Roshal" should be first on the search path.
//
// A note about tar: only a libarchive based tar (bsdtar) can read 7z, rar, cab and iso
// archives, so GNU tar found on the search path is rejected by the locator.

import (
	"fmt"
	"strings"
	"time"
)

// TimeoutLookup is the maximum time allowed for a program version query.
const TimeoutLookup = 2 * time.Second

const (
	BSDTar = "bsdtar" // BSDTar is the libarchive tar command.
	Tar    = "tar"    // Tar is the host tar command, accepted only when it is libarchive based.
	Unar   = "unar"   // Unar is The Unarchiver command line tool.
	Unrar  = "unrar"  // Unrar is the rar decompression command.
	Zip7   = "7z"     // Zip7 is the 7-Zip command.
	Zip7zz = "7zz"    // Zip7zz is the 7-Zip console command found on some Linux distributions.
	Zip7a  = "7za"    // Zip7a is the standalone 7-Zip command.
	Zip7r  = "7zr"    // Zip7r is the reduced 7-Zip command that only handles 7z.
)

// Kind is a class of external extraction program.
type Kind int

const (
	SevenZip Kind = iota // SevenZip is a 7-Zip compatible general purpose archiver.
	Libarchive           // Libarchive is a libarchive compatible tar.
	UnrarTool            // UnrarTool is an unrar compatible rar extractor.
	Unarchiver           // Unarchiver is a generic unarchiver such as unar.
)

// Kinds returns every program kind in banner order.
func Kinds() []Kind {
	return []Kind{SevenZip, Libarchive, UnrarTool, Unarchiver}
}

func (k Kind) String() string {
	switch k {
	case SevenZip:
		return Zip7
	case Libarchive:
		return BSDTar
	case UnrarTool:
		return Unrar
	case Unarchiver:
		return Unar
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Names returns the executable names to look up on the search path, in preference order.
func (k Kind) Names() []string {
	switch k {
	case SevenZip:
		return []string{Zip7, Zip7zz, Zip7a, Zip7r}
	case Libarchive:
		return []string{BSDTar, Tar}
	case UnrarTool:
		return []string{Unrar}
	case Unarchiver:
		return []string{Unar}
	}
	return nil
}

// Overrides are explicit program paths that take precedence over discovery.
// An empty value means autodetect.
type Overrides struct {
	SevenZip string `yaml:"7z"`
	Tar      string `yaml:"bsdtar"`
	Unrar    string `yaml:"unrar"`
	Unar     string `yaml:"unar"`
}

// Get returns the override path for the kind.
func (o Overrides) Get(k Kind) string {
	switch k {
	case SevenZip:
		return o.SevenZip
	case Libarchive:
		return o.Tar
	case UnrarTool:
		return o.Unrar
	case Unarchiver:
		return o.Unar
	}
	return ""
}

// Tools are the resolved program paths for a run. An empty path means the program is absent.
type Tools struct {
	SevenZip string
	Tar      string
	Unrar    string
	Unar     string
}

// Path returns the resolved path for the kind.
func (t Tools) Path(k Kind) string {
	return Overrides(t).Get(k)
}

// String returns the tool availability banner, for example
// "7z: /usr/bin/7z, bsdtar: no, unrar: /usr/bin/unrar, unar: no".
func (t Tools) String() string {
	s := make([]string, 0, len(Kinds()))
	for _, k := range Kinds() {
		p := t.Path(k)
		if p == "" {
			p = "no"
		}
		s = append(s, k.String()+": "+p)
	}
	return strings.Join(s, ", ")
}
