package export

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"
)

const (
	MaxProjectNameLen  = 120
	DefaultProjectName = "heimdex_export"
)

// ErrInvalidOutputDir wraps every output directory rejection.
var ErrInvalidOutputDir = errors.New("invalid output_dir")

// SanitizeName drops control characters, replaces anything outside a small
// filename-safe set with '_' and truncates to maxLen runes.
func SanitizeName(s string, maxLen int) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case unicode.IsControl(r):
		case nameRuneOK(r):
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}

	name := strings.TrimSpace(b.String())
	if maxLen > 0 {
		if runes := []rune(name); len(runes) > maxLen {
			name = strings.TrimSpace(string(runes[:maxLen]))
		}
	}
	return name
}

func nameRuneOK(r rune) bool {
	if unicode.IsLetter(r) || unicode.IsDigit(r) {
		return true
	}
	return strings.ContainsRune(" -_.,()", r)
}

// ProjectName returns the sanitized EDL title, falling back to
// DefaultProjectName. Names made only of dots are rejected so the result is
// always usable as a file stem.
func ProjectName(raw string) string {
	name := SanitizeName(raw, MaxProjectNameLen)
	if strings.Trim(name, ".") == "" {
		return DefaultProjectName
	}
	return name
}

// ValidateOutputDir requires an existing, clean directory path with no ".."
// segments.
func ValidateOutputDir(dir string) error {
	if strings.TrimSpace(dir) == "" {
		return fmt.Errorf("%w: output_dir is required", ErrInvalidOutputDir)
	}
	for _, part := range strings.Split(filepath.ToSlash(dir), "/") {
		if part == ".." {
			return fmt.Errorf("%w: path traversal is not allowed", ErrInvalidOutputDir)
		}
	}
	if filepath.Clean(dir) != dir {
		return fmt.Errorf("%w: path must be clean", ErrInvalidOutputDir)
	}

	info, err := os.Stat(dir)
	switch {
	case os.IsNotExist(err):
		return fmt.Errorf("%w: directory does not exist", ErrInvalidOutputDir)
	case err != nil:
		return fmt.Errorf("%w: %v", ErrInvalidOutputDir, err)
	case !info.IsDir():
		return fmt.Errorf("%w: not a directory", ErrInvalidOutputDir)
	}
	return nil
}

// WriteFile writes data to dir/project+ext through a temp file and rename, so
// a failed export never leaves a truncated file behind. It returns the final
// path.
func WriteFile(dir, project, ext string, data []byte) (string, error) {
	if err := ValidateOutputDir(dir); err != nil {
		return "", err
	}
	dest := filepath.Join(dir, project+ext)

	tmp, err := os.CreateTemp(dir, "."+project+"-*"+ext)
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", fmt.Errorf("failed to write export: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to write export: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return "", err
	}
	if err := os.Rename(tmpName, dest); err != nil {
		return "", fmt.Errorf("failed to move export into place: %w", err)
	}
	return dest, nil
}
