package extractor

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/pricebook/pdf-catalog/internal/pdf"
)

// emptyPagePDF builds a well-formed single-page document with no content.
// Offsets are tracked while writing so the cross-reference table is exact.
func emptyPagePDF() []byte {
	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")

	var offsets []int
	addObject := func(body string) {
		offsets = append(offsets, buf.Len())
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", len(offsets), body)
	}
	addObject("<< /Type /Catalog /Pages 2 0 R >>")
	addObject("<< /Type /Pages /Kids [3 0 R] /Count 1 >>")
	addObject("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << >> >>")

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(offsets)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n",
		len(offsets)+1, xref)
	return buf.Bytes()
}

func TestService_ExtractFile_InvalidInputs(t *testing.T) {
	tempDir := t.TempDir()
	service := NewService(1024*1024, filepath.Join(tempDir, "out"))

	garbagePath := filepath.Join(tempDir, "garbage.pdf")
	if err := os.WriteFile(garbagePath, []byte("definitely not a pdf"), 0o644); err != nil {
		t.Fatalf("failed to create garbage file: %v", err)
	}
	textPath := filepath.Join(tempDir, "notes.txt")
	if err := os.WriteFile(textPath, []byte("plain text"), 0o644); err != nil {
		t.Fatalf("failed to create text file: %v", err)
	}

	tests := []struct {
		name    string
		path    string
		wantPDF string
	}{
		{name: "non-existent file", path: "/no/such/catalog.pdf", wantPDF: "catalog.pdf"},
		{name: "wrong extension", path: textPath, wantPDF: "notes.txt"},
		{name: "garbage content", path: garbagePath, wantPDF: "garbage.pdf"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := service.ExtractFile(tt.path)
			if result == nil {
				t.Fatalf("result should not be nil")
			}
			if result.Err == nil {
				t.Fatalf("expected an error result")
			}
			if result.PDF != tt.wantPDF {
				t.Errorf("expected PDF %q, got %q", tt.wantPDF, result.PDF)
			}
			if result.NoData || result.TablePath != "" {
				t.Errorf("failed document must not report data: %+v", result)
			}
		})
	}
}

func TestService_ExtractFile_NoData(t *testing.T) {
	tempDir := t.TempDir()
	outDir := filepath.Join(tempDir, "out")
	service := NewService(1024*1024, outDir)

	blankPath := filepath.Join(tempDir, "blank.pdf")
	if err := os.WriteFile(blankPath, emptyPagePDF(), 0o644); err != nil {
		t.Fatalf("failed to create blank PDF: %v", err)
	}

	result := service.ExtractFile(blankPath)
	if result.Err != nil {
		t.Fatalf("unexpected error: %v", result.Err)
	}
	if !result.NoData {
		t.Errorf("expected a no-data result, got %+v", result)
	}
	if result.Rows != 0 || result.TablePath != "" {
		t.Errorf("no-data document must carry no rows or table: %+v", result)
	}

	// No table file may exist, under either destination name.
	for _, name := range []string{"blank.csv", "blank_new.csv"} {
		if _, err := os.Stat(filepath.Join(outDir, "blank", name)); !os.IsNotExist(err) {
			t.Errorf("expected %s to be absent, stat err=%v", name, err)
		}
	}
}

func TestService_Run_EmptyDirectory(t *testing.T) {
	tempDir := t.TempDir()
	service := NewService(1024*1024, filepath.Join(tempDir, "out"))

	summary, err := service.Run(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.Found != 0 || summary.Succeeded != 0 || summary.Failed != 0 {
		t.Errorf("expected empty summary, got %+v", summary)
	}
}

func TestService_Run_ContinuesPastBadDocument(t *testing.T) {
	tempDir := t.TempDir()
	inputDir := filepath.Join(tempDir, "in")
	if err := os.MkdirAll(inputDir, 0o755); err != nil {
		t.Fatalf("failed to create input dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(inputDir, "broken.pdf"), []byte("junk"), 0o644); err != nil {
		t.Fatalf("failed to create broken PDF: %v", err)
	}
	// Empty candidates are counted and reported, not silently dropped.
	if err := os.WriteFile(filepath.Join(inputDir, "hollow.pdf"), []byte{}, 0o644); err != nil {
		t.Fatalf("failed to create empty PDF: %v", err)
	}
	if err := os.WriteFile(filepath.Join(inputDir, "blank.pdf"), emptyPagePDF(), 0o644); err != nil {
		t.Fatalf("failed to create blank PDF: %v", err)
	}

	service := NewService(1024*1024, filepath.Join(tempDir, "out"))
	summary, err := service.Run(inputDir)
	if err != nil {
		t.Fatalf("a bad document must not abort the run: %v", err)
	}
	if summary.Found != 3 {
		t.Errorf("expected 3 documents found, got %d", summary.Found)
	}
	if summary.Failed != 2 {
		t.Errorf("expected the broken and empty documents to fail, got %d", summary.Failed)
	}
	if summary.NoData != 1 {
		t.Errorf("expected the blank document to report no data, got %d", summary.NoData)
	}
	if summary.Succeeded != 0 {
		t.Errorf("expected no successes, got %d", summary.Succeeded)
	}
}

func TestParsePage(t *testing.T) {
	box := pdf.Box{Left: 10, Bottom: 600, Right: 200, Top: 700}
	page := &pdf.PageContent{
		Number: 2,
		Segments: []pdf.TextSegment{
			{Box: box, Text: "Deluxe Lamp\n₹2,499"},
			{Text: ""},
		},
	}

	rows := parsePage("summer.pdf", page)
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	if rows[0].PDF != "summer.pdf" {
		t.Errorf("expected document name stamped, got %q", rows[0].PDF)
	}
	if rows[0].Page != 2 {
		t.Errorf("expected page 2, got %d", rows[0].Page)
	}
	if rows[0].Box() != box {
		t.Errorf("expected segment box carried onto the row, got %+v", rows[0].Box())
	}
	if rows[0].ProductName != "Deluxe Lamp" {
		t.Errorf("expected name %q, got %q", "Deluxe Lamp", rows[0].ProductName)
	}
}

func TestService_OutputRoot(t *testing.T) {
	service := NewService(1024, "/tmp/somewhere")
	if service.OutputRoot() != "/tmp/somewhere" {
		t.Errorf("unexpected output root %q", service.OutputRoot())
	}
}
