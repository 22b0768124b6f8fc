package images

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"printbase/internal/config"
	"printbase/internal/storage"
)

var imageExts = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".webp": true}

// BulkImportDir imports artwork images from a local folder. File names
// (minus extension) are matched against print names with the same loose
// keying as the shop import; matched files are copied into the images
// layout and recorded on the print.
func BulkImportDir(db *storage.DB, cfg config.Config, dir string, dryRun bool) (ImportResult, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return ImportResult{}, err
	}

	prints, err := db.ListPrints()
	if err != nil {
		return ImportResult{}, err
	}
	lookup := map[string]storage.PrintSummary{}
	for _, p := range prints {
		lookup[matchKey(p.Name)] = p
	}

	var result ImportResult
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if !imageExts[ext] {
			continue
		}

		base := strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))
		p, ok := lookup[matchKey(base)]
		if !ok {
			fmt.Printf("  %s: no matching print\n", entry.Name())
			continue
		}
		result.Matched++
		fmt.Printf("  %-40s -> [%d] %s\n", truncate(entry.Name(), 40), p.ID, p.Name)

		if dryRun {
			continue
		}
		if err := copyImage(db, cfg, filepath.Join(dir, entry.Name()), p.ID, ext); err != nil {
			fmt.Printf("  [%d] %s: %v\n", p.ID, p.Name, err)
			result.Failed++
			continue
		}
		result.Imported++
	}

	if dryRun {
		fmt.Printf("dry run: %d files matched\n", result.Matched)
	} else {
		fmt.Printf("bulk import complete: %d imported, %d failed\n", result.Imported, result.Failed)
	}
	return result, nil
}

func copyImage(db *storage.DB, cfg config.Config, src string, printID int, ext string) error {
	body, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	if ext == ".jpeg" {
		ext = ".jpg"
	}

	dir := filepath.Join(cfg.ImagesDir, "prints", fmt.Sprintf("%d", printID))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	dst := filepath.Join(dir, "main"+ext)
	if err := os.WriteFile(dst, body, 0o644); err != nil {
		return err
	}
	return db.UpdatePrintImagePath(printID, dst)
}
