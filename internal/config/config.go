package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration loaded from environment variables.
type Config struct {
	// Backend connection, shared by cmd/seed and cmd/menu.
	Endpoint   string        // APPWRITE_ENDPOINT, default "http://localhost:8080/v1"
	ProjectID  string        // APPWRITE_PROJECT_ID, default "fast-food"
	APIKey     string        // APPWRITE_API_KEY, optional
	DatabaseID string        // APPWRITE_DATABASE_ID, default "fastfood"
	BucketID   string        // APPWRITE_BUCKET_ID, default "assets"
	Timeout    time.Duration // APPWRITE_TIMEOUT, default 30s

	Collections Collections

	// Seeder tuning.
	Throttle time.Duration // SEED_THROTTLE, default 1s, 0 disables
	PageSize int           // SEED_PAGE_SIZE, default 100

	// Emulator.
	Addr         string // MENUBASE_ADDR, default ":8080"
	DBPath       string // MENUBASE_DB, default "menubase.db"
	ServerAPIKey string // MENUBASE_API_KEY, optional
}

// Collections names the four collections the app reads.
type Collections struct {
	Categories         string // APPWRITE_CATEGORIES_COLLECTION_ID, default "categories"
	Customizations     string // APPWRITE_CUSTOMIZATIONS_COLLECTION_ID, default "customizations"
	Menu               string // APPWRITE_MENU_COLLECTION_ID, default "menu"
	MenuCustomizations string // APPWRITE_MENU_CUSTOMIZATIONS_COLLECTION_ID, default "menu_customizations"
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (Config, error) {
	cfg := Config{
		Endpoint:   envOr("APPWRITE_ENDPOINT", "http://localhost:8080/v1"),
		ProjectID:  envOr("APPWRITE_PROJECT_ID", "fast-food"),
		APIKey:     os.Getenv("APPWRITE_API_KEY"),
		DatabaseID: envOr("APPWRITE_DATABASE_ID", "fastfood"),
		BucketID:   envOr("APPWRITE_BUCKET_ID", "assets"),
		Collections: Collections{
			Categories:         envOr("APPWRITE_CATEGORIES_COLLECTION_ID", "categories"),
			Customizations:     envOr("APPWRITE_CUSTOMIZATIONS_COLLECTION_ID", "customizations"),
			Menu:               envOr("APPWRITE_MENU_COLLECTION_ID", "menu"),
			MenuCustomizations: envOr("APPWRITE_MENU_CUSTOMIZATIONS_COLLECTION_ID", "menu_customizations"),
		},
		Addr:         envOr("MENUBASE_ADDR", ":8080"),
		DBPath:       envOr("MENUBASE_DB", "menubase.db"),
		ServerAPIKey: os.Getenv("MENUBASE_API_KEY"),
	}

	var err error
	if cfg.Timeout, err = durationOr("APPWRITE_TIMEOUT", 30*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.Throttle, err = durationOr("SEED_THROTTLE", time.Second); err != nil {
		return Config{}, err
	}
	if cfg.PageSize, err = intOr("SEED_PAGE_SIZE", 100); err != nil {
		return Config{}, err
	}
	if cfg.PageSize <= 0 {
		return Config{}, fmt.Errorf("SEED_PAGE_SIZE must be positive, got %d", cfg.PageSize)
	}

	return cfg, nil
}

// LoadEnvFile loads variables from a dotenv file into the process
// environment without overriding variables that are already set. A missing
// file is not an error.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load env file %s: %w", path, err)
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func durationOr(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s must not be negative, got %s", key, v)
	}
	return d, nil
}

func intOr(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return n, nil
}
