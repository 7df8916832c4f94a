package pdf

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Search discovers candidate catalog PDFs on disk.
type Search struct {
	maxFileSize int64
	validator   *Validator
}

// NewSearch creates a search handler with the specified constraints.
func NewSearch(maxFileSize int64) *Search {
	return &Search{
		maxFileSize: maxFileSize,
		validator:   NewValidator(maxFileSize),
	}
}

// ListDirectory lists the PDF files directly inside a directory, sorted by
// name. The batch run deliberately does not recurse: catalogs are dropped
// flat into the input folder. Every .pdf entry is listed, including ones
// that will fail validation, so the processing loop can count and report
// each failure individually.
func (s *Search) ListDirectory(directory string) ([]FileInfo, error) {
	if directory == "" {
		return nil, fmt.Errorf("directory cannot be empty")
	}

	entries, err := os.ReadDir(directory)
	if err != nil {
		return nil, fmt.Errorf("cannot read directory %s: %w", directory, err)
	}

	var files []FileInfo
	for _, entry := range entries {
		if entry.IsDir() || !IsPDFFile(entry.Name()) {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}

		files = append(files, FileInfo{
			Path:         filepath.Join(directory, entry.Name()),
			Name:         entry.Name(),
			Size:         info.Size(),
			ModifiedTime: info.ModTime().Format("2006-01-02 15:04:05"),
		})
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	return files, nil
}

// WalkDirectory finds PDF files recursively under a directory. Used by the
// MCP directory tool, which serves arbitrary folder layouts.
func (s *Search) WalkDirectory(directory string) ([]FileInfo, error) {
	if directory == "" {
		return nil, fmt.Errorf("directory cannot be empty")
	}
	if _, err := os.Stat(directory); os.IsNotExist(err) {
		return nil, fmt.Errorf("directory does not exist: %s", directory)
	}

	absDirectory, err := filepath.Abs(directory)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve directory path: %w", err)
	}

	var files []FileInfo
	err = filepath.WalkDir(absDirectory, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			// Continue walking even if a specific entry errors.
			return nil //nolint:nilerr // Intentionally continue on file errors
		}

		if d.IsDir() {
			if strings.HasPrefix(d.Name(), ".") && path != absDirectory {
				return filepath.SkipDir
			}
			return nil
		}

		if !IsPDFFile(d.Name()) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return nil //nolint:nilerr // Intentionally continue on stat errors
		}
		if err := s.validator.ValidateFileInfo(path, info); err != nil {
			return nil //nolint:nilerr // Intentionally continue on validation errors
		}

		files = append(files, FileInfo{
			Path:         path,
			Name:         info.Name(),
			Size:         info.Size(),
			ModifiedTime: info.ModTime().Format("2006-01-02 15:04:05"),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error walking directory: %w", err)
	}

	return files, nil
}
