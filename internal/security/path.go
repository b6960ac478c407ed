// Package security guards the filesystem boundaries the pipeline writes
// and reads across: schema input paths, emitter output roots, and the
// advisory lock that keeps two pipeline runs from trampling the same
// output directory.
package security

import (
	"fmt"
	"path/filepath"
	"strings"
)

// PathError reports a rejected path, either because it escapes its
// confinement root or because it is otherwise malformed.
type PathError struct {
	Path   string
	Reason string
}

func (e *PathError) Error() string {
	return fmt.Sprintf("security: path %q rejected: %s", e.Path, e.Reason)
}

// ConfinePath resolves candidate relative to root and verifies the result
// does not escape root via ".." or an absolute override. The check is
// lexical; symlinks are not resolved. It returns the cleaned absolute path
// on success.
func ConfinePath(root, candidate string) (string, error) {
	if filepath.IsAbs(candidate) {
		return "", &PathError{Path: candidate, Reason: "absolute paths are not permitted"}
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", &PathError{Path: candidate, Reason: "cannot resolve confinement root"}
	}

	joined := filepath.Join(absRoot, candidate)
	rel, err := filepath.Rel(absRoot, joined)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", &PathError{Path: candidate, Reason: "escapes confinement root"}
	}

	return joined, nil
}
