package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/khabzox/fast-food/internal/backend"
	"github.com/khabzox/fast-food/internal/catalog"
	"github.com/khabzox/fast-food/internal/config"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		envFile        = flag.String("env", ".env", "Path to a dotenv file with APPWRITE_* settings")
		category       = flag.String("category", "", "Only list items in the category with this name")
		query          = flag.String("query", "", "Only list items whose name contains this text")
		limit          = flag.Int("limit", 0, "Maximum number of items (0 lists all)")
		listCategories = flag.Bool("categories", false, "List categories instead of menu items")
		withCustoms    = flag.Bool("customizations", false, "Show each item's customizations")
	)
	flag.Parse()

	if err := config.LoadEnvFile(*envFile); err != nil {
		return err
	}
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
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

	ctx := context.Background()
	cat := catalog.New(client, cfg.DatabaseID, cfg.Collections)

	categories, err := cat.Categories(ctx)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	defer func() { _ = w.Flush() }()

	if *listCategories {
		_, _ = fmt.Fprintln(w, "ID\tNAME\tDESCRIPTION")
		for _, c := range categories {
			_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n", c.ID, c.Name, c.Description)
		}
		return nil
	}

	names := make(map[string]string, len(categories))
	filter := catalog.Filter{Query: *query, Limit: *limit}
	for _, c := range categories {
		names[c.ID] = c.Name
		if c.Name == *category {
			filter.Category = c.ID
		}
	}
	if *category != "" && filter.Category == "" {
		return fmt.Errorf("unknown category %q", *category)
	}

	items, err := cat.Menu(ctx, filter)
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintln(w, "NAME\tCATEGORY\tPRICE\tRATING\tKCAL\tPROTEIN")
	for _, item := range items {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%.2f\t%.1f\t%d\t%dg\n",
			item.Name, names[item.CategoryID], item.Price, item.Rating, item.Calories, item.Protein)

		if !*withCustoms {
			continue
		}
		customs, err := cat.Customizations(ctx, item.ID)
		if err != nil {
			return err
		}
		for _, c := range customs {
			_, _ = fmt.Fprintf(w, "  + %s\t%s\t%.2f\t\t\t\n", c.Name, c.Type, c.Price)
		}
	}
	return nil
}
