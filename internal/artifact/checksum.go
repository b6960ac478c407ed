package artifact

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
)

// SHA256Hex returns the lowercase hex sha256 digest of data.
func SHA256Hex(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// WriteIfChanged writes data to path only when the existing file (if any)
// has a different checksum, returning the Action taken. This is the
// mechanism that makes emission idempotent: a second run over unchanged
// content produces no new writes and no changed checksums (spec section 8).
func WriteIfChanged(path string, data []byte, mode os.FileMode) (Action, string, error) {
	newSum := SHA256Hex(data)

	existing, err := os.ReadFile(path)
	if err == nil {
		if SHA256Hex(existing) == newSum {
			return ActionSkipped, newSum, nil
		}
		if werr := os.WriteFile(path, data, mode); werr != nil {
			return "", "", werr
		}
		return ActionUpdated, newSum, nil
	}

	if !os.IsNotExist(err) {
		return "", "", err
	}

	if werr := os.WriteFile(path, data, mode); werr != nil {
		return "", "", werr
	}
	return ActionCreated, newSum, nil
}
