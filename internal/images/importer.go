package images

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"printbase/internal/config"
	"printbase/internal/storage"
)

var (
	reAffixPrefix = regexp.MustCompile(`^(landscape|portrait|small|large|framed|mounted)\s+`)
	reAffixSuffix = regexp.MustCompile(`\s+(small|large|framed|mounted|v\d+)$`)
	reNonWord     = regexp.MustCompile(`[^\w\s]`)
	reSpaces      = regexp.MustCompile(`\s+`)
)

// matchKey reduces a title to a loose comparison key. Shop listings
// carry size and framing words that the print names do not.
func matchKey(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	name = reAffixPrefix.ReplaceAllString(name, "")
	name = reAffixSuffix.ReplaceAllString(name, "")
	name = reNonWord.ReplaceAllString(name, "")
	name = reSpaces.ReplaceAllString(name, " ")
	return strings.TrimSpace(name)
}

type MatchType string

const (
	MatchExact   MatchType = "exact"
	MatchPartial MatchType = "partial"
)

type Match struct {
	Product Product
	Print   storage.PrintSummary
	Type    MatchType
}

// MatchProducts pairs shop listings with database prints by normalized
// name, exact key first, then substring either way.
func MatchProducts(products []Product, prints []storage.PrintSummary) []Match {
	lookup := map[string]storage.PrintSummary{}
	for _, p := range prints {
		key := matchKey(p.Name)
		lookup[key] = p
		for _, suffix := range []string{" lighthouse", " harbour", " harbor", " pier", " station"} {
			if strings.HasSuffix(key, suffix) {
				lookup[strings.TrimSuffix(key, suffix)] = p
			}
		}
	}

	var matches []Match
	for _, product := range products {
		key := matchKey(product.Title)
		if p, ok := lookup[key]; ok {
			matches = append(matches, Match{Product: product, Print: p, Type: MatchExact})
			continue
		}
		for printKey, p := range lookup {
			if printKey != "" && key != "" && (strings.Contains(key, printKey) || strings.Contains(printKey, key)) {
				matches = append(matches, Match{Product: product, Print: p, Type: MatchPartial})
				break
			}
		}
	}
	return matches
}

// Importer downloads matched shop images into the local images
// directory and records the stored path on each print.
type Importer struct {
	db     *storage.DB
	cfg    config.Config
	client *Client
}

func NewImporter(db *storage.DB, cfg config.Config) *Importer {
	return &Importer{db: db, cfg: cfg, client: NewClient(cfg)}
}

type ImportResult struct {
	Matched  int
	Imported int
	Failed   int
}

// Run matches shop products against prints and imports their images.
// With dryRun set it only prints the matches. A non-zero printID limits
// the run to that print and re-imports even when an image exists.
func (imp *Importer) Run(ctx context.Context, dryRun bool, printID int) (ImportResult, error) {
	products, err := imp.client.FetchProducts(ctx)
	if err != nil {
		return ImportResult{}, fmt.Errorf("fetch shop products: %w", err)
	}
	fmt.Printf("found %d products with images\n", len(products))

	prints, err := imp.db.ListPrints()
	if err != nil {
		return ImportResult{}, err
	}
	if printID != 0 {
		filtered := prints[:0]
		for _, p := range prints {
			if p.ID == printID {
				filtered = append(filtered, p)
			}
		}
		prints = filtered
		if len(prints) == 0 {
			return ImportResult{}, fmt.Errorf("print id %d not found", printID)
		}
	}

	matches := MatchProducts(products, prints)
	if printID == 0 {
		kept := matches[:0]
		for _, m := range matches {
			if m.Print.ImagePath == nil {
				kept = append(kept, m)
			}
		}
		matches = kept
	}

	result := ImportResult{Matched: len(matches)}
	if len(matches) == 0 {
		fmt.Println("no new images to import")
		return result, nil
	}

	for _, m := range matches {
		fmt.Printf("  %-40s -> [%d] %s (%s)\n", truncate(m.Product.Title, 40), m.Print.ID, m.Print.Name, m.Type)
	}
	if dryRun {
		fmt.Println("dry run: no changes made")
		return result, nil
	}

	for _, m := range matches {
		path, err := imp.importOne(ctx, m)
		if err != nil {
			fmt.Printf("  [%d] %s: %v\n", m.Print.ID, m.Print.Name, err)
			result.Failed++
			continue
		}
		fmt.Printf("  [%d] %s: saved %s\n", m.Print.ID, m.Print.Name, path)
		result.Imported++
	}

	fmt.Printf("image import complete: %d imported, %d failed\n", result.Imported, result.Failed)
	return result, nil
}

func (imp *Importer) importOne(ctx context.Context, m Match) (string, error) {
	body, contentType, err := imp.client.fetch(ctx, m.Product.ImageURL)
	if err != nil {
		return "", fmt.Errorf("download: %w", err)
	}

	ext := imageExtension(contentType, m.Product.ImageURL)
	dir := filepath.Join(imp.cfg.ImagesDir, "prints", fmt.Sprintf("%d", m.Print.ID))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, "main"+ext)
	if err := os.WriteFile(path, body, 0o644); err != nil {
		return "", err
	}

	if err := imp.db.UpdatePrintImagePath(m.Print.ID, path); err != nil {
		return "", fmt.Errorf("record image path: %w", err)
	}
	return path, nil
}

func imageExtension(contentType, rawURL string) string {
	switch {
	case strings.Contains(contentType, "jpeg"), strings.Contains(contentType, "jpg"):
		return ".jpg"
	case strings.Contains(contentType, "png"):
		return ".png"
	case strings.Contains(contentType, "webp"):
		return ".webp"
	}

	path := rawURL
	if u, err := url.Parse(rawURL); err == nil {
		path = u.Path
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		return ".jpg"
	case ".png":
		return ".png"
	case ".webp":
		return ".webp"
	}
	return ".jpg"
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
