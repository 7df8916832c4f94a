package pdf

import (
	"fmt"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Validator performs pre-flight checks on candidate catalog PDFs.
type Validator struct {
	maxFileSize int64
}

// NewValidator creates a validator with the specified size limit.
func NewValidator(maxFileSize int64) *Validator {
	return &Validator{
		maxFileSize: maxFileSize,
	}
}

// ValidateFile performs detailed validation on a PDF file, including an open
// check with the PDF parser.
func (v *Validator) ValidateFile(filePath string) error {
	if filePath == "" {
		return fmt.Errorf("path cannot be empty")
	}

	fileInfo, err := os.Stat(filePath)
	if os.IsNotExist(err) {
		return fmt.Errorf("file does not exist: %s", filePath)
	}
	if err != nil {
		return fmt.Errorf("cannot access file: %w", err)
	}

	if err := v.ValidateFileInfo(filePath, fileInfo); err != nil {
		return err
	}

	f, _, err := pdf.Open(filePath)
	if err != nil {
		return fmt.Errorf("invalid PDF file: %w", err)
	}
	defer f.Close()

	return nil
}

// ValidateFileInfo performs basic validation without opening the PDF.
func (v *Validator) ValidateFileInfo(filePath string, fileInfo os.FileInfo) error {
	if fileInfo.IsDir() {
		return fmt.Errorf("path is a directory, not a file: %s", filePath)
	}

	if !IsPDFFile(filePath) {
		return fmt.Errorf("file is not a PDF: %s", filePath)
	}

	if fileInfo.Size() == 0 {
		return fmt.Errorf("file is empty: %s", filePath)
	}

	if fileInfo.Size() > v.maxFileSize {
		return fmt.Errorf("file too large: %d bytes (max: %d bytes)",
			fileInfo.Size(), v.maxFileSize)
	}

	return nil
}

// IsValidPDF performs a quick check to see if a file is a valid PDF.
func (v *Validator) IsValidPDF(filePath string) bool {
	return v.ValidateFile(filePath) == nil
}

// IsPDFFile checks if a file has a PDF extension, case-insensitive.
func IsPDFFile(filename string) bool {
	return strings.HasSuffix(strings.ToLower(filename), ".pdf")
}
