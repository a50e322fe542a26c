package seed

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/khabzox/fast-food/internal/backend"
	"github.com/khabzox/fast-food/internal/domain"
	"github.com/khabzox/fast-food/internal/fixture"
	"github.com/khabzox/fast-food/internal/rehost"
)

// SeedCategories creates one document per category and maps names to ids.
func (s *Seeder) SeedCategories(ctx context.Context, categories []domain.Category) (map[string]string, error) {
	ids := make(map[string]string, len(categories))
	for _, c := range categories {
		doc, err := s.backend.CreateDocument(ctx, s.opts.DatabaseID, s.opts.Collections.Categories, backend.NewID(), c)
		if err != nil {
			return ids, fmt.Errorf("create category %q: %w", c.Name, err)
		}
		ids[c.Name] = doc.ID
	}

	slog.Info("categories seeded", "count", len(ids))
	return ids, nil
}

// SeedCustomizations creates one document per customization and maps names
// to ids.
func (s *Seeder) SeedCustomizations(ctx context.Context, customizations []domain.Customization) (map[string]string, error) {
	ids := make(map[string]string, len(customizations))
	for _, c := range customizations {
		doc, err := s.backend.CreateDocument(ctx, s.opts.DatabaseID, s.opts.Collections.Customizations, backend.NewID(), c)
		if err != nil {
			return ids, fmt.Errorf("create customization %q: %w", c.Name, err)
		}
		ids[c.Name] = doc.ID
	}

	slog.Info("customizations seeded", "count", len(ids))
	return ids, nil
}

// MenuResult is the outcome of SeedMenu.
type MenuResult struct {
	IDs        map[string]string
	Links      int
	Images     []rehost.Result
	Unresolved []fixture.Gap
}

// menuDocument is the stored shape of a menu item. Categories holds the
// category document id.
type menuDocument struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	ImageURL    string  `json:"image_url"`
	Price       float64 `json:"price"`
	Rating      float64 `json:"rating"`
	Calories    int     `json:"calories"`
	Protein     int     `json:"protein"`
	Categories  string  `json:"categories"`
}

// SeedMenu creates the menu items in order, waiting on the throttle before
// each one. Each item's image is rehosted and its category resolved through
// categories; one join document is created per resolvable customization.
// Unresolved names are logged and reported, and produce an empty category or
// a skipped link.
func (s *Seeder) SeedMenu(ctx context.Context, items []domain.MenuItem, categories, customizations map[string]string) (*MenuResult, error) {
	res := &MenuResult{IDs: make(map[string]string, len(items))}

	for _, item := range items {
		if s.limiter != nil {
			if err := s.limiter.Wait(ctx); err != nil {
				return res, fmt.Errorf("throttle: %w", err)
			}
		}

		img := s.rehoster.Rehost(ctx, item.ImageURL)
		res.Images = append(res.Images, img)

		categoryID, ok := categories[item.CategoryName]
		if !ok {
			slog.Warn("unknown category", "item", item.Name, "category", item.CategoryName)
			res.Unresolved = append(res.Unresolved, fixture.Gap{Item: item.Name, Kind: fixture.KindCategory, Name: item.CategoryName})
		}

		doc, err := s.backend.CreateDocument(ctx, s.opts.DatabaseID, s.opts.Collections.Menu, backend.NewID(), menuDocument{
			Name:        item.Name,
			Description: item.Description,
			ImageURL:    img.URL,
			Price:       item.Price,
			Rating:      item.Rating,
			Calories:    item.Calories,
			Protein:     item.Protein,
			Categories:  categoryID,
		})
		if err != nil {
			return res, fmt.Errorf("create menu item %q: %w", item.Name, err)
		}
		res.IDs[item.Name] = doc.ID

		for _, name := range item.Customizations {
			customizationID, ok := customizations[name]
			if !ok {
				slog.Warn("unknown customization", "item", item.Name, "customization", name)
				res.Unresolved = append(res.Unresolved, fixture.Gap{Item: item.Name, Kind: fixture.KindCustomization, Name: name})
				continue
			}

			link := domain.MenuCustomization{MenuID: doc.ID, CustomizationID: customizationID}
			if _, err := s.backend.CreateDocument(ctx, s.opts.DatabaseID, s.opts.Collections.MenuCustomizations, backend.NewID(), link); err != nil {
				return res, fmt.Errorf("link menu item %q to customization %q: %w", item.Name, name, err)
			}
			res.Links++
		}

		slog.Info("menu item seeded", "item", item.Name, "id", doc.ID, "image_rehosted", img.Rehosted())
	}

	return res, nil
}
