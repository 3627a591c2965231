package unarchive

import (
	"path/filepath"
	"strings"

	securejoin "github.com/cyphar/filepath-securejoin"
)

// Package file safepath.go contains the archive member path sanitization.

// Resolve returns the target of the archive member path within the root directory.
//
// Both slash and backslash separate the member path. Empty, "." and ".." elements and
// a leading drive letter are dropped rather than rejected, so "../../etc/passwd" becomes
// root/etc/passwd. When a symbolic link within root redirects the target, the member is
// written directly into root using its final element.
func Resolve(root, member string) string {
	parts := Segments(member)
	if len(parts) == 0 {
		return root
	}
	target := filepath.Join(append([]string{root}, parts...)...)
	safe, err := securejoin.SecureJoin(root, filepath.Join(parts...))
	if err == nil && safe == target {
		return target
	}
	return filepath.Join(root, parts[len(parts)-1])
}

// Segments returns the usable path elements of the archive member path.
func Segments(member string) []string {
	fields := strings.FieldsFunc(member, func(r rune) bool {
		return r == '/' || r == '\\'
	})
	parts := make([]string, 0, len(fields))
	for i, s := range fields {
		switch {
		case s == ".", s == "..":
			continue
		case i == 0 && drive(s):
			continue
		}
		parts = append(parts, s)
	}
	return parts
}

// drive reports whether s is a Windows drive letter such as "C:".
func drive(s string) bool {
	if len(s) != 2 || s[1] != ':' {
		return false
	}
	c := s[0] | 0x20
	return c >= 'a' && c <= 'z'
}
