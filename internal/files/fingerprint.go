package files

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/crypto/blake2b"
)

// Fingerprint returns a short BLAKE2b digest of a file's contents. The
// cleaning stage stamps the raw workbook's fingerprint into its artifacts
// so every downstream report can be traced to the exact input that
// produced it.
func Fingerprint(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open file for fingerprinting: %w", err)
	}
	defer file.Close()

	hasher, err := blake2b.New256(nil)
	if err != nil {
		return "", fmt.Errorf("failed to create hasher: %w", err)
	}

	if _, err := io.Copy(hasher, file); err != nil {
		return "", fmt.Errorf("failed to hash file: %w", err)
	}

	sum := hasher.Sum(nil)
	return fmt.Sprintf("%x", sum[:8]), nil
}
