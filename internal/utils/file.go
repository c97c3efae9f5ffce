package utils

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// profileExtensions maps the extensions profiles may be stored under to
// whether the file is YAML
var profileExtensions = map[string]bool{
	".json": false,
	".yaml": true,
	".yml":  true,
}

// ValidateInputFile makes sure filename names a readable regular file no
// larger than maxSize bytes. A maxSize of zero or less skips the size check.
func ValidateInputFile(filename string, maxSize int64) error {
	if filename == "" {
		return errors.New("filename cannot be empty")
	}

	info, err := os.Stat(filename)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("file does not exist: %s", filename)
	case err != nil:
		return fmt.Errorf("cannot access file %s: %w", filename, err)
	case info.IsDir():
		return fmt.Errorf("path is a directory, not a file: %s", filename)
	case maxSize > 0 && info.Size() > maxSize:
		return fmt.Errorf("file %s is %s, larger than the %s limit",
			filename, FormatFileSize(info.Size()), FormatFileSize(maxSize))
	}

	// Stat succeeds on files we cannot open
	f, err := os.Open(filename)
	if err != nil {
		return fmt.Errorf("cannot read file %s: %w", filename, err)
	}
	return f.Close()
}

// ValidateOutputFile creates the parent directory of filename when missing.
// An empty filename means stdout.
func ValidateOutputFile(filename string) error {
	if filename == "" {
		return nil
	}

	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("cannot create directory %s: %w", dir, err)
	}
	return nil
}

// IsYAMLFile reports whether filename has a .yaml or .yml extension
func IsYAMLFile(filename string) bool {
	return profileExtensions[extension(filename)]
}

// IsProfileFile reports whether filename has an extension profiles are read from
func IsProfileFile(filename string) bool {
	_, ok := profileExtensions[extension(filename)]
	return ok
}

func extension(filename string) string {
	return strings.ToLower(filepath.Ext(filename))
}

// FormatFileSize renders size in binary units, e.g. "1.5 MB"
func FormatFileSize(size int64) string {
	const units = "KMGTPE"
	if size < 1024 {
		return fmt.Sprintf("%d B", size)
	}

	value := float64(size) / 1024
	i := 0
	for value >= 1024 && i < len(units)-1 {
		value /= 1024
		i++
	}
	return fmt.Sprintf("%.1f %cB", value, units[i])
}
