package pdf

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSearch_ListDirectory(t *testing.T) {
	search := NewSearch(1024 * 1024)

	tempDir := t.TempDir()

	// Valid candidates, created out of name order on purpose.
	for _, name := range []string{"zebra.pdf", "alpha.pdf", "Middle.PDF"} {
		if err := os.WriteFile(filepath.Join(tempDir, name), make([]byte, 64), 0o644); err != nil {
			t.Fatalf("failed to create %s: %v", name, err)
		}
	}
	// Candidates that will fail validation are still listed, so the run
	// loop can report them.
	if err := os.WriteFile(filepath.Join(tempDir, "empty.pdf"), []byte{}, 0o644); err != nil {
		t.Fatalf("failed to create empty PDF: %v", err)
	}
	if err := os.WriteFile(filepath.Join(tempDir, "huge.pdf"), make([]byte, 2*1024*1024), 0o644); err != nil {
		t.Fatalf("failed to create oversized PDF: %v", err)
	}
	// Entries that must be skipped.
	if err := os.WriteFile(filepath.Join(tempDir, "notes.txt"), []byte("text"), 0o644); err != nil {
		t.Fatalf("failed to create text file: %v", err)
	}
	if err := os.MkdirAll(filepath.Join(tempDir, "nested"), 0o755); err != nil {
		t.Fatalf("failed to create subdirectory: %v", err)
	}
	if err := os.WriteFile(filepath.Join(tempDir, "nested", "deep.pdf"), make([]byte, 64), 0o644); err != nil {
		t.Fatalf("failed to create nested PDF: %v", err)
	}

	files, err := search.ListDirectory(tempDir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Non-recursive: the nested PDF must not appear.
	wantNames := []string{"Middle.PDF", "alpha.pdf", "empty.pdf", "huge.pdf", "zebra.pdf"}
	if len(files) != len(wantNames) {
		t.Fatalf("expected %d files, got %d", len(wantNames), len(files))
	}
	for i, want := range wantNames {
		if files[i].Name != want {
			t.Errorf("position %d: expected %s, got %s", i, want, files[i].Name)
		}
		if files[i].ModifiedTime == "" {
			t.Errorf("%s: expected a modified time", want)
		}
	}
	if files[2].Size != 0 {
		t.Errorf("empty.pdf: expected size 0, got %d", files[2].Size)
	}
}

func TestSearch_ListDirectory_Errors(t *testing.T) {
	search := NewSearch(1024 * 1024)

	if _, err := search.ListDirectory(""); err == nil {
		t.Errorf("expected error for empty directory")
	}
	if _, err := search.ListDirectory("/non/existent/dir"); err == nil {
		t.Errorf("expected error for missing directory")
	}
}

func TestSearch_ListDirectory_Empty(t *testing.T) {
	search := NewSearch(1024 * 1024)

	files, err := search.ListDirectory(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(files) != 0 {
		t.Errorf("expected no files, got %d", len(files))
	}
}

func TestSearch_WalkDirectory(t *testing.T) {
	search := NewSearch(1024 * 1024)

	tempDir := t.TempDir()

	if err := os.WriteFile(filepath.Join(tempDir, "top.pdf"), make([]byte, 64), 0o644); err != nil {
		t.Fatalf("failed to create top PDF: %v", err)
	}
	if err := os.MkdirAll(filepath.Join(tempDir, "sub", "deeper"), 0o755); err != nil {
		t.Fatalf("failed to create subdirectories: %v", err)
	}
	nestedPath := filepath.Join(tempDir, "sub", "deeper", "nested.pdf")
	if err := os.WriteFile(nestedPath, make([]byte, 64), 0o644); err != nil {
		t.Fatalf("failed to create nested PDF: %v", err)
	}
	// Hidden directories are skipped.
	if err := os.MkdirAll(filepath.Join(tempDir, ".cache"), 0o755); err != nil {
		t.Fatalf("failed to create hidden directory: %v", err)
	}
	if err := os.WriteFile(filepath.Join(tempDir, ".cache", "hidden.pdf"), make([]byte, 64), 0o644); err != nil {
		t.Fatalf("failed to create hidden PDF: %v", err)
	}

	files, err := search.WalkDirectory(tempDir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(files) != 2 {
		t.Fatalf("expected 2 files, got %d", len(files))
	}
	names := map[string]bool{}
	for _, f := range files {
		names[f.Name] = true
	}
	if !names["top.pdf"] || !names["nested.pdf"] {
		t.Errorf("expected top.pdf and nested.pdf, got %v", names)
	}
	if names["hidden.pdf"] {
		t.Errorf("hidden directory should have been skipped")
	}
}

func TestSearch_WalkDirectory_Errors(t *testing.T) {
	search := NewSearch(1024 * 1024)

	if _, err := search.WalkDirectory(""); err == nil {
		t.Errorf("expected error for empty directory")
	}
	if _, err := search.WalkDirectory("/non/existent/dir"); err == nil {
		t.Errorf("expected error for missing directory")
	}
}
