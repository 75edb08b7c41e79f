package utils

import (
	"errors"
	"path/filepath"
	"strings"
)

var ErrOutsideRoot = errors.New("path escapes the files directory")

// IsSubpath reports whether child, once cleaned and made absolute, lies
// inside parent.
func IsSubpath(parent, child string) bool {
	p, err := filepath.Abs(parent)
	if err != nil {
		return false
	}
	c, err := filepath.Abs(child)
	if err != nil {
		return false
	}
	rel, err := filepath.Rel(p, c)
	if err != nil {
		return false
	}
	if rel == "." {
		return true
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// ResolveInRoot joins rel onto root and fails when the result leaves root.
func ResolveInRoot(root, rel string) (string, error) {
	full := filepath.Join(root, filepath.FromSlash(rel))
	if !IsSubpath(root, full) {
		return "", ErrOutsideRoot
	}
	return full, nil
}

// ApplicantFolder is the folder holding one applicant's uploads.
func ApplicantFolder(root, email string) (string, error) {
	if email == "" || strings.ContainsAny(email, `/\`) || strings.HasPrefix(email, ".") {
		return "", ErrOutsideRoot
	}
	return ResolveInRoot(root, email)
}

// InlineFilename names a served file "<parent>_<name>", e.g.
// "jane@innopolis.university_cv.pdf".
func InlineFilename(path string) string {
	clean := filepath.Clean(filepath.FromSlash(path))
	parent := filepath.Base(filepath.Dir(clean))
	name := filepath.Base(clean)
	if parent == "." || parent == string(filepath.Separator) {
		return name
	}
	return parent + "_" + name
}
