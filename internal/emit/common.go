package emit

import (
	"os"
	"path/filepath"

	"github.com/MatthewHRockwell/atomik-sub001/internal/artifact"
)

// WriteFile joins outputRoot/lang subtree with the namespace-mapper file
// path, creates parent directories, and writes the content through
// artifact.WriteIfChanged so emission stays idempotent across runs.
func WriteFile(outputRoot, lang, relPath string, content []byte) (artifact.Descriptor, error) {
	fullPath := filepath.Join(outputRoot, lang, relPath)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return artifact.Descriptor{}, err
	}

	action, sum, err := artifact.WriteIfChanged(fullPath, content, 0o644)
	if err != nil {
		return artifact.Descriptor{}, err
	}

	return artifact.Descriptor{
		Path:     fullPath,
		Language: lang,
		SHA256:   sum,
		Action:   action,
	}, nil
}

// LimbCount returns how many native 64-bit limbs a field of the given bit
// width needs. Widths at or below 64 fit in a single native integer;
// 128 and 256 need a multi-limb representation (spec section 4.3).
func LimbCount(width int) int {
	if width <= 64 {
		return 1
	}
	return (width + 63) / 64
}

// NativeIntType returns the narrowest unsigned integer type name (as used
// by SYS/LLL emitters) that holds a field of the given width natively, or
// "" if the width needs a multi-limb/big-integer representation.
func NativeIntType(width int) string {
	switch {
	case width <= 8:
		return "u8"
	case width <= 16:
		return "u16"
	case width <= 32:
		return "u32"
	case width <= 64:
		return "u64"
	default:
		return ""
	}
}
