package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	DBPath    string
	ExportDir string
	ReportDir string

	PrintsPath       string
	DistributorsPath string
	EditionsPath     string
	DecisionsPath    string

	SyncBatchSize int

	// Post-import business policies. Both are heuristics inherited from
	// the ledger this system replaced; keep them adjustable.
	AutoSettleAfterDays   int
	LegacyDistributorName string

	ShopURL          string
	ShopRateLimitRPS int
	ShopTimeoutMs    int
	ImagesDir        string
}

func Load() (Config, error) {
	_ = godotenv.Load()

	cwd, err := os.Getwd()
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		DBPath:    getEnv("DB_PATH", filepath.Join(cwd, "data", "printbase.db")),
		ExportDir: getEnv("EXPORT_DIR", filepath.Join(cwd, "out")),
		ReportDir: getEnv("REPORT_DIR", filepath.Join(cwd, "out")),

		PrintsPath:       getEnv("PRINTS_PATH", filepath.Join(cwd, "export", "prints.csv")),
		DistributorsPath: getEnv("DISTRIBUTORS_PATH", filepath.Join(cwd, "export", "distributors.csv")),
		EditionsPath:     getEnv("EDITIONS_PATH", filepath.Join(cwd, "export", "editions.csv")),
		DecisionsPath:    getEnv("DECISIONS_PATH", filepath.Join(cwd, "export", "duplicate_decisions.csv")),

		SyncBatchSize: getEnvInt("SYNC_BATCH_SIZE", 5000),

		AutoSettleAfterDays:   getEnvInt("AUTO_SETTLE_AFTER_DAYS", 180),
		LegacyDistributorName: getEnv("LEGACY_DISTRIBUTOR_NAME", "Direct Old"),

		ShopURL:          getEnv("SHOP_URL", ""),
		ShopRateLimitRPS: getEnvInt("SHOP_RATE_LIMIT_RPS", 2),
		ShopTimeoutMs:    getEnvInt("SHOP_TIMEOUT_MS", 30000),
		ImagesDir:        getEnv("IMAGES_DIR", filepath.Join(cwd, "data", "images")),
	}

	return cfg, nil
}

func (c Config) Require(name, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("missing required env var: %s", name)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}
