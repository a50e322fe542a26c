// Package catalog reads the seeded menu the way the mobile app does.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/khabzox/fast-food/internal/backend"
	"github.com/khabzox/fast-food/internal/config"
	"github.com/khabzox/fast-food/internal/domain"
)

// pageSize is the listing page size used when reading whole collections.
const pageSize = 100

// Reader is the subset of the platform client the catalog needs.
// *backend.Client implements it.
type Reader interface {
	ListDocuments(ctx context.Context, databaseID, collectionID string, queries ...string) (*domain.DocumentList, error)
	GetDocument(ctx context.Context, databaseID, collectionID, documentID string) (*domain.Document, error)
}

// Category is a stored category.
type Category struct {
	ID          string `json:"$id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// MenuItem is a stored menu item. CategoryID is empty when seeding could not
// resolve the item's category.
type MenuItem struct {
	ID          string  `json:"$id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	ImageURL    string  `json:"image_url"`
	Price       float64 `json:"price"`
	Rating      float64 `json:"rating"`
	Calories    int     `json:"calories"`
	Protein     int     `json:"protein"`
	CategoryID  string  `json:"categories"`
}

// Customization is a stored customization.
type Customization struct {
	ID    string  `json:"$id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
	Type  string  `json:"type"`
}

// Filter narrows a menu listing. Zero values match everything.
type Filter struct {
	Category string // category document id
	Query    string // substring of the item name
	Limit    int    // zero reads every match
}

// Catalog reads categories, menu items and their customizations.
type Catalog struct {
	reader      Reader
	databaseID  string
	collections config.Collections
}

// New creates a Catalog.
func New(r Reader, databaseID string, collections config.Collections) *Catalog {
	return &Catalog{reader: r, databaseID: databaseID, collections: collections}
}

// Categories returns every category in creation order.
func (c *Catalog) Categories(ctx context.Context) ([]Category, error) {
	docs, err := c.listAll(ctx, c.collections.Categories, 0)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return decodeAll[Category](docs)
}

// Menu returns menu items matching f in creation order.
func (c *Catalog) Menu(ctx context.Context, f Filter) ([]MenuItem, error) {
	var queries []string
	if f.Category != "" {
		queries = append(queries, backend.Equal("categories", f.Category))
	}
	if f.Query != "" {
		queries = append(queries, backend.Search("name", f.Query))
	}

	docs, err := c.listAll(ctx, c.collections.Menu, f.Limit, queries...)
	if err != nil {
		return nil, fmt.Errorf("list menu: %w", err)
	}
	return decodeAll[MenuItem](docs)
}

// Customizations returns the customizations linked to a menu item, in link
// order. Links to customizations that no longer exist are skipped.
func (c *Catalog) Customizations(ctx context.Context, menuID string) ([]Customization, error) {
	links, err := c.listAll(ctx, c.collections.MenuCustomizations, 0, backend.Equal("menu", menuID))
	if err != nil {
		return nil, fmt.Errorf("list links of %s: %w", menuID, err)
	}

	out := make([]Customization, 0, len(links))
	for _, link := range links {
		id := link.String("customizations")
		doc, err := c.reader.GetDocument(ctx, c.databaseID, c.collections.Customizations, id)
		if err != nil {
			if backend.IsNotFound(err) {
				slog.Warn("dangling customization link", "menu", menuID, "customization", id)
				continue
			}
			return nil, fmt.Errorf("get customization %s: %w", id, err)
		}

		var cust Customization
		if err := decode(doc, &cust); err != nil {
			return nil, err
		}
		out = append(out, cust)
	}
	return out, nil
}

// listAll pages through a collection with cursors. A positive limit stops
// after that many documents.
func (c *Catalog) listAll(ctx context.Context, collectionID string, limit int, queries ...string) ([]*domain.Document, error) {
	var docs []*domain.Document
	cursor := ""

	for {
		size := pageSize
		if limit > 0 {
			size = min(size, limit-len(docs))
		}

		q := append([]string{backend.Limit(size)}, queries...)
		if cursor != "" {
			q = append(q, backend.CursorAfter(cursor))
		}

		list, err := c.reader.ListDocuments(ctx, c.databaseID, collectionID, q...)
		if err != nil {
			return nil, err
		}
		docs = append(docs, list.Documents...)

		if len(list.Documents) < size || (limit > 0 && len(docs) >= limit) {
			return docs, nil
		}
		cursor = list.Documents[len(list.Documents)-1].ID
	}
}

func decodeAll[T any](docs []*domain.Document) ([]T, error) {
	out := make([]T, 0, len(docs))
	for _, d := range docs {
		var v T
		if err := decode(d, &v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// decode maps a document's attributes onto v through their JSON names.
func decode(doc *domain.Document, v any) error {
	b, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode document %s: %w", doc.ID, err)
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("decode document %s: %w", doc.ID, err)
	}
	return nil
}
