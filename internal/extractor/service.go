// Package extractor orchestrates the catalog extraction pipeline: scan the
// input directory, decompose each document into positioned text and images,
// parse product rows, associate images, and emit one CSV per document.
package extractor

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pricebook/pdf-catalog/internal/catalog"
	"github.com/pricebook/pdf-catalog/internal/export"
	"github.com/pricebook/pdf-catalog/internal/pdf"
)

const dirPerm = 0o750

// Service runs the extraction pipeline. Safe for concurrent use across
// documents: all shared state is read-only after construction.
type Service struct {
	maxFileSize int64
	outputRoot  string
	validator   *pdf.Validator
	search      *pdf.Search
}

// NewService creates an extraction service writing under outputRoot.
func NewService(maxFileSize int64, outputRoot string) *Service {
	return &Service{
		maxFileSize: maxFileSize,
		outputRoot:  outputRoot,
		validator:   pdf.NewValidator(maxFileSize),
		search:      pdf.NewSearch(maxFileSize),
	}
}

// DocumentResult reports the outcome of one document. Exactly one of
// TablePath, NoData, or Err is meaningful: a successful extraction carries
// the table path, a document yielding no rows sets NoData, and a failed one
// carries the reason. One document's failure never affects another.
type DocumentResult struct {
	PDF       string
	TablePath string
	Rows      int
	Images    int
	NoData    bool
	Err       error
}

// RunSummary aggregates a directory run.
type RunSummary struct {
	Found     int
	Succeeded int
	NoData    int
	Failed    int
}

// OutputRoot returns the root directory results are written under.
func (s *Service) OutputRoot() string {
	return s.outputRoot
}

// ListDocuments lists candidate PDFs directly inside the input directory.
func (s *Service) ListDocuments(inputDir string) ([]pdf.FileInfo, error) {
	return s.search.ListDirectory(inputDir)
}

// FindDocuments finds PDFs recursively under a directory. Serves the MCP
// directory tool.
func (s *Service) FindDocuments(directory string) ([]pdf.FileInfo, error) {
	return s.search.WalkDirectory(directory)
}

// ExtractFile runs the full pipeline for one document inside an isolated
// failure boundary. Any panic out of the PDF machinery is converted into the
// result's Err; it never propagates to the caller.
func (s *Service) ExtractFile(path string) *DocumentResult {
	result := &DocumentResult{PDF: filepath.Base(path)}

	defer func() {
		if r := recover(); r != nil {
			result.Err = fmt.Errorf("document processing panicked: %v", r)
		}
	}()

	if err := s.validator.ValidateFile(path); err != nil {
		result.Err = err
		return result
	}

	docName := pdf.SanitizeName(path)
	docDir := filepath.Join(s.outputRoot, docName)
	imagesDir := filepath.Join(docDir, "images")
	if err := os.MkdirAll(imagesDir, dirPerm); err != nil {
		result.Err = fmt.Errorf("cannot create output folder: %w", err)
		return result
	}
	relBase := docName + "/images"

	doc, err := pdf.OpenDocument(path)
	if err != nil {
		result.Err = err
		return result
	}
	defer doc.Close()

	var rows []catalog.ProductRow
	for pageNr := 1; pageNr <= doc.PageCount(); pageNr++ {
		page, err := doc.LoadPage(pageNr, imagesDir, relBase)
		if err != nil {
			// A single bad page degrades the document, it does not fail it.
			continue
		}
		result.Images += len(page.Images)

		pageRows := parsePage(result.PDF, page)
		catalog.AssociateImages(pageRows, page.Images)
		rows = append(rows, pageRows...)
	}

	result.Rows = len(rows)
	if len(rows) == 0 {
		result.NoData = true
		return result
	}

	tablePath, err := export.WriteCSV(docDir, docName, rows)
	if err != nil {
		result.Err = err
		return result
	}
	result.TablePath = tablePath
	return result
}

// parsePage turns every text segment of a page into product rows, stamped
// with document name, 1-based page number, and the segment's position.
func parsePage(pdfName string, page *pdf.PageContent) []catalog.ProductRow {
	var rows []catalog.ProductRow
	for _, seg := range page.Segments {
		for _, row := range catalog.ParseSegment(seg.Text) {
			row.PDF = pdfName
			row.Page = page.Number
			row.SetBox(seg.Box)
			rows = append(rows, row)
		}
	}
	return rows
}

// Run processes every PDF in the input directory, printing a per-document
// status line and an aggregate count. A single document failure is reported
// and the run continues.
func (s *Service) Run(inputDir string) (*RunSummary, error) {
	if err := os.MkdirAll(s.outputRoot, dirPerm); err != nil {
		// The one unrecoverable condition: no output root, no run.
		return nil, fmt.Errorf("cannot create output root %s: %w", s.outputRoot, err)
	}

	files, err := s.ListDocuments(inputDir)
	if err != nil {
		return nil, err
	}

	summary := &RunSummary{Found: len(files)}
	if len(files) == 0 {
		fmt.Println("No PDF files found in the input directory.")
		return summary, nil
	}

	fmt.Printf("Found %d PDF files to process.\n", len(files))
	for _, file := range files {
		fmt.Printf("Processing %s...\n", file.Name)
		result := s.ExtractFile(file.Path)
		switch {
		case result.Err != nil:
			summary.Failed++
			fmt.Printf("Error processing %s: %v\n", file.Name, result.Err)
		case result.NoData:
			summary.NoData++
			fmt.Printf("No data extracted from %s\n", file.Name)
		default:
			summary.Succeeded++
			fmt.Printf("Successfully created CSV: %s\n", result.TablePath)
		}
	}

	fmt.Printf("Done: %d processed, %d with data, %d without data, %d failed.\n",
		summary.Found, summary.Succeeded, summary.NoData, summary.Failed)
	return summary, nil
}
