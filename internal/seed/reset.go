package seed

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/khabzox/fast-food/internal/backend"
)

// Reset deletes every document in the four collections, one collection at a
// time, then every file in the bucket. It returns the number of entries
// deleted per collection and bucket id.
func (s *Seeder) Reset(ctx context.Context) (map[string]int, error) {
	deleted := make(map[string]int)

	c := s.opts.Collections
	for _, collectionID := range []string{c.Categories, c.Customizations, c.Menu, c.MenuCustomizations} {
		n, err := s.clear(ctx, collectionID, s.listDocumentIDs(collectionID), func(ctx context.Context, id string) error {
			return s.backend.DeleteDocument(ctx, s.opts.DatabaseID, collectionID, id)
		})
		if err != nil {
			return deleted, fmt.Errorf("clear collection %s: %w", collectionID, err)
		}
		deleted[collectionID] = n
	}

	n, err := s.clear(ctx, s.opts.BucketID, s.listFileIDs, func(ctx context.Context, id string) error {
		return s.backend.DeleteFile(ctx, s.opts.BucketID, id)
	})
	if err != nil {
		return deleted, fmt.Errorf("clear bucket %s: %w", s.opts.BucketID, err)
	}
	deleted[s.opts.BucketID] = n

	return deleted, nil
}

func (s *Seeder) listDocumentIDs(collectionID string) func(context.Context) ([]string, error) {
	return func(ctx context.Context) ([]string, error) {
		list, err := s.backend.ListDocuments(ctx, s.opts.DatabaseID, collectionID, backend.Limit(s.opts.PageSize))
		if err != nil {
			return nil, err
		}
		ids := make([]string, len(list.Documents))
		for i, d := range list.Documents {
			ids[i] = d.ID
		}
		return ids, nil
	}
}

func (s *Seeder) listFileIDs(ctx context.Context) ([]string, error) {
	list, err := s.backend.ListFiles(ctx, s.opts.BucketID, backend.Limit(s.opts.PageSize))
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(list.Files))
	for i, f := range list.Files {
		ids[i] = f.ID
	}
	return ids, nil
}

// clear lists the first page, deletes it concurrently and repeats until the
// listing comes back empty. An id that survives its own deletion aborts the
// loop.
func (s *Seeder) clear(ctx context.Context, name string, list func(context.Context) ([]string, error), del func(context.Context, string) error) (int, error) {
	total := 0
	deleted := make(map[string]bool)

	for {
		ids, err := list(ctx)
		if err != nil {
			return total, err
		}
		if len(ids) == 0 {
			break
		}
		for _, id := range ids {
			if deleted[id] {
				return total, fmt.Errorf("%s still listed after delete", id)
			}
		}

		g, gctx := errgroup.WithContext(ctx)
		if s.opts.DeleteConcurrency > 0 {
			g.SetLimit(s.opts.DeleteConcurrency)
		}
		for _, id := range ids {
			g.Go(func() error {
				return del(gctx, id)
			})
		}
		if err := g.Wait(); err != nil {
			return total, err
		}

		for _, id := range ids {
			deleted[id] = true
		}
		total += len(ids)
	}

	slog.Info("cleared", "target", name, "deleted", total)
	return total, nil
}
