// Package seed wipes the app's collections and storage bucket and fills them
// with fixture data.
package seed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/khabzox/fast-food/internal/config"
	"github.com/khabzox/fast-food/internal/domain"
	"github.com/khabzox/fast-food/internal/fixture"
	"github.com/khabzox/fast-food/internal/rehost"
)

// DefaultPageSize is the listing page size used while resetting.
const DefaultPageSize = 100

// Backend is the subset of the platform client the seeder needs.
// *backend.Client implements it.
type Backend interface {
	ListDocuments(ctx context.Context, databaseID, collectionID string, queries ...string) (*domain.DocumentList, error)
	CreateDocument(ctx context.Context, databaseID, collectionID, documentID string, data any) (*domain.Document, error)
	DeleteDocument(ctx context.Context, databaseID, collectionID, documentID string) error
	ListFiles(ctx context.Context, bucketID string, queries ...string) (*domain.FileList, error)
	DeleteFile(ctx context.Context, bucketID, fileID string) error
}

// Rehoster copies a menu image into storage. *rehost.Rehoster implements it.
type Rehoster interface {
	Rehost(ctx context.Context, sourceURL string) rehost.Result
}

// Options configures a Seeder.
type Options struct {
	DatabaseID  string
	BucketID    string
	Collections config.Collections

	// PageSize is the listing page size used by Reset. Default DefaultPageSize.
	PageSize int
	// Throttle is the minimum delay between menu items. Zero disables it.
	Throttle time.Duration
	// DeleteConcurrency caps in-flight deletes per page. Zero means no cap.
	DeleteConcurrency int
	// Strict fails the run before anything is deleted when a menu item
	// references a category or customization missing from the fixture.
	Strict bool
}

// Seeder runs the seeding phases against a Backend.
type Seeder struct {
	backend  Backend
	rehoster Rehoster
	opts     Options
	limiter  *rate.Limiter
}

// New creates a Seeder.
func New(b Backend, r Rehoster, opts Options) (*Seeder, error) {
	if opts.DatabaseID == "" {
		return nil, errors.New("database id is required")
	}
	if opts.BucketID == "" {
		return nil, errors.New("bucket id is required")
	}
	c := opts.Collections
	if c.Categories == "" || c.Customizations == "" || c.Menu == "" || c.MenuCustomizations == "" {
		return nil, errors.New("all four collection ids are required")
	}
	if opts.PageSize <= 0 {
		opts.PageSize = DefaultPageSize
	}

	s := &Seeder{backend: b, rehoster: r, opts: opts}
	if opts.Throttle > 0 {
		s.limiter = rate.NewLimiter(rate.Every(opts.Throttle), 1)
	}
	return s, nil
}

// Report summarizes a seeding run.
type Report struct {
	Deleted        map[string]int    `json:"deleted"`
	Categories     map[string]string `json:"categories"`
	Customizations map[string]string `json:"customizations"`
	Menu           map[string]string `json:"menu"`
	Links          int               `json:"links"`
	Images         []rehost.Result   `json:"images"`
	Unresolved     []fixture.Gap     `json:"unresolved,omitempty"`
	Duration       time.Duration     `json:"duration"`
}

// Rehosted counts images that were copied into storage.
func (r *Report) Rehosted() int {
	n := 0
	for _, img := range r.Images {
		if img.Rehosted() {
			n++
		}
	}
	return n
}

// Run resets the backend and seeds every phase in order. A failing backend
// call aborts the run and leaves the backend partially seeded.
func (s *Seeder) Run(ctx context.Context, f *domain.Fixture) (*Report, error) {
	start := time.Now()

	if s.opts.Strict {
		if gaps := fixture.Gaps(f); len(gaps) > 0 {
			msgs := make([]string, len(gaps))
			for i, g := range gaps {
				msgs[i] = g.String()
			}
			return nil, fmt.Errorf("fixture has unresolved references: %s", strings.Join(msgs, "; "))
		}
	}

	deleted, err := s.Reset(ctx)
	if err != nil {
		return nil, fmt.Errorf("reset: %w", err)
	}

	categories, err := s.SeedCategories(ctx, f.Categories)
	if err != nil {
		return nil, fmt.Errorf("seed categories: %w", err)
	}

	customizations, err := s.SeedCustomizations(ctx, f.Customizations)
	if err != nil {
		return nil, fmt.Errorf("seed customizations: %w", err)
	}

	menu, err := s.SeedMenu(ctx, f.Menu, categories, customizations)
	if err != nil {
		return nil, fmt.Errorf("seed menu: %w", err)
	}

	report := &Report{
		Deleted:        deleted,
		Categories:     categories,
		Customizations: customizations,
		Menu:           menu.IDs,
		Links:          menu.Links,
		Images:         menu.Images,
		Unresolved:     menu.Unresolved,
		Duration:       time.Since(start),
	}

	slog.Info("seeding complete",
		"categories", len(report.Categories),
		"customizations", len(report.Customizations),
		"menu_items", len(report.Menu),
		"links", report.Links,
		"images_rehosted", report.Rehosted(),
		"unresolved", len(report.Unresolved),
		"duration", report.Duration.String(),
	)
	return report, nil
}
