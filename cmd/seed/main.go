package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/khabzox/fast-food/internal/backend"
	"github.com/khabzox/fast-food/internal/config"
	"github.com/khabzox/fast-food/internal/domain"
	"github.com/khabzox/fast-food/internal/fixture"
	"github.com/khabzox/fast-food/internal/rehost"
	"github.com/khabzox/fast-food/internal/seed"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		envFile     = flag.String("env", ".env", "Path to a dotenv file with APPWRITE_* settings")
		fixturePath = flag.String("fixture", "", "Path to a YAML or JSON fixture (default: built-in menu)")
		strict      = flag.Bool("strict", false, "Fail before resetting if the fixture has unresolved references")
		throttle    = flag.Duration("throttle", -1, "Delay between menu items (default SEED_THROTTLE or 1s, 0 disables)")
		pageSize    = flag.Int("page-size", 0, "Listing page size while resetting (default SEED_PAGE_SIZE or 100)")
		report      = flag.Bool("report", false, "Print the run report as JSON on stdout")
	)
	flag.Parse()

	if err := config.LoadEnvFile(*envFile); err != nil {
		return err
	}
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if *throttle >= 0 {
		cfg.Throttle = *throttle
	}
	if *pageSize > 0 {
		cfg.PageSize = *pageSize
	}

	f, err := loadFixture(*fixturePath)
	if err != nil {
		return err
	}

	client, err := backend.New(backend.Config{
		Endpoint:  cfg.Endpoint,
		ProjectID: cfg.ProjectID,
		APIKey:    cfg.APIKey,
		Timeout:   cfg.Timeout,
	})
	if err != nil {
		return fmt.Errorf("create backend client: %w", err)
	}

	rehoster := rehost.New(client, rehost.Config{
		BucketID:   cfg.BucketID,
		HTTPClient: &http.Client{Timeout: cfg.Timeout},
	})

	seeder, err := seed.New(client, rehoster, seed.Options{
		DatabaseID:  cfg.DatabaseID,
		BucketID:    cfg.BucketID,
		Collections: cfg.Collections,
		PageSize:    cfg.PageSize,
		Throttle:    cfg.Throttle,
		Strict:      *strict,
	})
	if err != nil {
		return fmt.Errorf("create seeder: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	slog.Info("seeding",
		"endpoint", client.Endpoint(),
		"database", cfg.DatabaseID,
		"bucket", cfg.BucketID,
		"menu_items", len(f.Menu),
		"throttle", cfg.Throttle.String(),
	)

	rep, err := seeder.Run(ctx, f)
	if err != nil {
		return fmt.Errorf("seed: %w", err)
	}

	for _, g := range rep.Unresolved {
		slog.Warn("unresolved reference", "item", g.Item, "kind", g.Kind, "name", g.Name)
	}

	if *report {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(rep); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
	}

	slog.Info("done", "duration", rep.Duration.Round(time.Millisecond).String())
	return nil
}

func loadFixture(path string) (*domain.Fixture, error) {
	if path == "" {
		f, err := fixture.Default()
		if err != nil {
			return nil, fmt.Errorf("load built-in fixture: %w", err)
		}
		return f, nil
	}
	f, err := fixture.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load fixture %s: %w", path, err)
	}
	return f, nil
}
