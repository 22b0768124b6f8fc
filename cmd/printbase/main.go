package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"printbase/internal"
	"printbase/internal/config"
	"printbase/internal/images"
	"printbase/internal/storage"
	"printbase/internal/sync"
)

func main() {
	cfg, err := config.Load()
	must(err)

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	db, err := storage.Open(cfg.DBPath)
	must(err)
	defer db.Close()

	cmd := os.Args[1]
	switch cmd {
	case "db:init":
		// Open already applies the schema; this command exists so
		// first-time setup is an explicit step.
		fmt.Printf("database ready at %s\n", cfg.DBPath)
	case "db:stats":
		stats, err := db.GetStats()
		must(err)
		fmt.Printf("prints:       %d\n", stats.Prints)
		fmt.Printf("distributors: %d\n", stats.Distributors)
		fmt.Printf("editions:     %d (%d sold, %d unsold)\n", stats.Editions, stats.EditionsSold, stats.EditionsUnsold)
		fmt.Printf("revenue:      %s\n", stats.TotalRevenue.StringFixed(2))
		if stats.LastSync != nil {
			fmt.Printf("last sync:    %s %s (%s)\n", stats.LastSync.SyncID, stats.LastSync.Status, stats.LastSync.StartedAt.Format(time.RFC3339))
		}
	case "sync":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		prints := fs.String("prints", "", "prints csv/xlsx path")
		distributors := fs.String("distributors", "", "distributors csv/xlsx path")
		editions := fs.String("editions", "", "editions csv/xlsx path")
		decisions := fs.String("decisions", "", "duplicate decisions csv path")
		_ = fs.Parse(os.Args[2:])
		if *prints != "" {
			cfg.PrintsPath = *prints
		}
		if *distributors != "" {
			cfg.DistributorsPath = *distributors
		}
		if *editions != "" {
			cfg.EditionsPath = *editions
		}
		if *decisions != "" {
			cfg.DecisionsPath = *decisions
		}
		importer := sync.NewImporter(db, cfg)
		result, err := importer.Run()
		must(err)
		fmt.Printf("sync complete: prints created=%d distributors created=%d editions created=%d duplicates ignored=%d\n",
			result.Prints.Created, result.Distributors.Created, result.Editions.Created, result.Editions.DuplicatesIgnored)
	case "validate":
		_, err := sync.Validate(db, cfg)
		must(err)
	case "export:xlsx":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		out := fs.String("out", "", "output xlsx path")
		_ = fs.Parse(os.Args[2:])
		path := *out
		if strings.TrimSpace(path) == "" {
			path = filepath.Join(cfg.ExportDir, fmt.Sprintf("inventory_%s.xlsx", time.Now().Format("20060102")))
		}
		count, err := sync.ExportInventoryXLSX(db, path)
		must(err)
		fmt.Printf("exported %d rows to %s\n", count, path)
	case "audit:recent":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		hours := fs.Int("hours", 24, "look back this many hours")
		limit := fs.Int("limit", 50, "max entries")
		_ = fs.Parse(os.Args[2:])
		entries, err := db.RecentChanges(time.Duration(*hours)*time.Hour, *limit)
		must(err)
		printAuditEntries(entries)
	case "audit:history":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		table := fs.String("table", "", "prints|distributors|editions")
		id := fs.Int("id", 0, "record id")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*table) == "" || *id == 0 {
			must(fmt.Errorf("--table and --id are required"))
		}
		entries, err := db.RecordHistory(*table, *id)
		must(err)
		printAuditEntries(entries)
	case "audit:field":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		table := fs.String("table", "editions", "prints|distributors|editions")
		field := fs.String("field", "", "column name")
		limit := fs.Int("limit", 50, "max entries")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*field) == "" {
			must(fmt.Errorf("--field is required"))
		}
		entries, err := db.FieldHistory(*table, *field, *limit)
		must(err)
		printAuditEntries(entries)
	case "images:import":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		dryRun := fs.Bool("dry-run", false, "show matches without importing")
		printID := fs.Int("print-id", 0, "import only this print id")
		shopURL := fs.String("shop-url", "", "shop listing url")
		_ = fs.Parse(os.Args[2:])
		if *shopURL != "" {
			cfg.ShopURL = *shopURL
		}
		must(cfg.Require("SHOP_URL", cfg.ShopURL))
		importer := images.NewImporter(db, cfg)
		result, err := importer.Run(context.Background(), *dryRun, *printID)
		must(err)
		fmt.Printf("matched=%d imported=%d failed=%d\n", result.Matched, result.Imported, result.Failed)
	case "images:bulk":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		dir := fs.String("dir", "", "folder of image files named after prints")
		dryRun := fs.Bool("dry-run", false, "show matches without importing")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*dir) == "" {
			must(fmt.Errorf("--dir is required"))
		}
		result, err := images.BulkImportDir(db, cfg, *dir, *dryRun)
		must(err)
		fmt.Printf("matched=%d imported=%d failed=%d\n", result.Matched, result.Imported, result.Failed)
	default:
		usage()
		os.Exit(1)
	}
}

func printAuditEntries(entries []internal.AuditEntry) {
	if len(entries) == 0 {
		fmt.Println("no audit entries")
		return
	}
	for _, e := range entries {
		line := fmt.Sprintf("%s  %-12s %-6s id=%d", e.ChangedAt.Format("2006-01-02 15:04:05"), e.TableName, e.Action, e.RecordID)
		if len(e.ChangedFields) > 0 {
			line += "  changed: " + strings.Join(e.ChangedFields, ", ")
		}
		fmt.Println(line)
	}
}

func usage() {
	fmt.Println("usage: printbase <command>")
	fmt.Println("commands:")
	fmt.Println("  db:init")
	fmt.Println("  db:stats")
	fmt.Println("  sync [--prints=...] [--distributors=...] [--editions=...] [--decisions=...]")
	fmt.Println("  validate")
	fmt.Println("  export:xlsx [--out=./out/inventory.xlsx]")
	fmt.Println("  audit:recent [--hours=24] [--limit=50]")
	fmt.Println("  audit:history --table=editions --id=1")
	fmt.Println("  audit:field --table=editions --field=is_settled [--limit=50]")
	fmt.Println("  images:import [--dry-run] [--print-id=45] [--shop-url=...]")
	fmt.Println("  images:bulk --dir=./incoming [--dry-run]")
}

func must(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
