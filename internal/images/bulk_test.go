package images

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"printbase/internal"
	"printbase/internal/config"
	"printbase/internal/storage"
)

func TestBulkImportDir(t *testing.T) {
	tmp := t.TempDir()
	db, err := storage.Open(filepath.Join(tmp, "printbase.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	quarrID, err := db.InsertPrint(internal.PrintRecord{ExternalID: "p-1", Name: "Quarr Abbey", ShortName: "QA", IsActive: true})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.InsertPrint(internal.PrintRecord{ExternalID: "p-2", Name: "Osborne", ShortName: "Osborne", IsActive: true}); err != nil {
		t.Fatal(err)
	}

	incoming := filepath.Join(tmp, "incoming")
	if err := os.MkdirAll(incoming, 0o755); err != nil {
		t.Fatal(err)
	}
	files := map[string][]byte{
		"quarr abbey.jpeg":   []byte("jpeg-bytes"),
		"Framed Osborne.png": []byte("png-bytes"),
		"unmatched.jpg":      []byte("x"),
		"notes.txt":          []byte("not an image"),
	}
	for name, body := range files {
		if err := os.WriteFile(filepath.Join(incoming, name), body, 0o644); err != nil {
			t.Fatal(err)
		}
	}

	cfg := config.Config{ImagesDir: filepath.Join(tmp, "images")}
	result, err := BulkImportDir(db, cfg, incoming, false)
	if err != nil {
		t.Fatal(err)
	}
	if result.Matched != 2 || result.Imported != 2 || result.Failed != 0 {
		t.Fatalf("result = %+v", result)
	}

	// jpeg normalizes to .jpg in the stored layout
	stored := filepath.Join(cfg.ImagesDir, "prints", fmt.Sprintf("%d", quarrID), "main.jpg")
	if _, err := os.Stat(stored); err != nil {
		t.Fatal(err)
	}

	prints, err := db.ListPrints()
	if err != nil {
		t.Fatal(err)
	}
	for _, p := range prints {
		if p.ImagePath == nil {
			t.Fatalf("print %q has no image path", p.Name)
		}
	}
}

func TestBulkImportDirDryRun(t *testing.T) {
	tmp := t.TempDir()
	db, err := storage.Open(filepath.Join(tmp, "printbase.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	if _, err := db.InsertPrint(internal.PrintRecord{ExternalID: "p-1", Name: "Osborne", ShortName: "Osborne", IsActive: true}); err != nil {
		t.Fatal(err)
	}

	incoming := filepath.Join(tmp, "incoming")
	if err := os.MkdirAll(incoming, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(incoming, "osborne.jpg"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := config.Config{ImagesDir: filepath.Join(tmp, "images")}
	result, err := BulkImportDir(db, cfg, incoming, true)
	if err != nil {
		t.Fatal(err)
	}
	if result.Matched != 1 || result.Imported != 0 {
		t.Fatalf("result = %+v", result)
	}

	prints, err := db.ListPrints()
	if err != nil {
		t.Fatal(err)
	}
	if prints[0].ImagePath != nil {
		t.Fatalf("dry run wrote image path %q", *prints[0].ImagePath)
	}
}
