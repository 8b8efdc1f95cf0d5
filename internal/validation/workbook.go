// Package validation holds pre-flight checks for pipeline inputs, run
// before a stage commits time to parsing or writing.
package validation

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	apperrors "eventpulse/internal/errors"
)

// ValidateWorkbook verifies that path names a cleanable Excel workbook:
// an existing regular file with an .xlsx or .xls extension that is not
// an Office lock file and not empty. The cleaner runs this before
// opening the workbook so a bad request fails with a typed error
// instead of a parser message.
func ValidateWorkbook(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", apperrors.ErrWorkbookNotFound, path)
		}
		return fmt.Errorf("failed to stat workbook %s: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%w: %s is a directory", apperrors.ErrWorkbookInvalid, path)
	}

	base := filepath.Base(path)
	if strings.HasPrefix(base, "~$") {
		return fmt.Errorf("%w: %s is an Office lock file", apperrors.ErrWorkbookInvalid, base)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xls":
	default:
		return fmt.Errorf("%w: %s is not an Excel workbook", apperrors.ErrWorkbookInvalid, base)
	}

	if info.Size() == 0 {
		return fmt.Errorf("%w: %s is empty", apperrors.ErrWorkbookInvalid, base)
	}

	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("%w: %s is not readable", apperrors.ErrWorkbookInvalid, base)
	}
	file.Close()

	return nil
}

// EnsureWritableDir verifies the directory exists and accepts writes by
// creating and removing a probe file.
func EnsureWritableDir(dir string) error {
	probe := filepath.Join(dir, ".write_test")
	if err := os.WriteFile(probe, []byte("test"), 0644); err != nil {
		return fmt.Errorf("directory %s is not writable: %w", dir, err)
	}
	os.Remove(probe)
	return nil
}
