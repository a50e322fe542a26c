package seed_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/khabzox/fast-food/internal/backend"
	"github.com/khabzox/fast-food/internal/config"
	"github.com/khabzox/fast-food/internal/domain"
	"github.com/khabzox/fast-food/internal/fixture"
	"github.com/khabzox/fast-food/internal/rehost"
	"github.com/khabzox/fast-food/internal/seed"
	"github.com/khabzox/fast-food/internal/testhelpers"
)

const (
	databaseID = "fastfood"
	bucketID   = "assets"
)

var collections = config.Collections{
	Categories:         "categories",
	Customizations:     "customizations",
	Menu:               "menu",
	MenuCustomizations: "menu_customizations",
}

// stubRehoster pretends every image was uploaded.
type stubRehoster struct {
	calls []string
}

func (r *stubRehoster) Rehost(_ context.Context, sourceURL string) rehost.Result {
	r.calls = append(r.calls, sourceURL)
	return rehost.Result{SourceURL: sourceURL, URL: "https://cdn.test/" + sourceURL, FileID: "file-" + sourceURL}
}

func options() seed.Options {
	return seed.Options{
		DatabaseID:  databaseID,
		BucketID:    bucketID,
		Collections: collections,
	}
}

func newSeeder(t *testing.T, b seed.Backend, r seed.Rehoster, opts seed.Options) *seed.Seeder {
	t.Helper()
	s, err := seed.New(b, r, opts)
	if err != nil {
		t.Fatalf("seed.New: %v", err)
	}
	return s
}

func listAll(t *testing.T, c *backend.Client, collectionID string, queries ...string) []*domain.Document {
	t.Helper()
	list, err := c.ListDocuments(context.Background(), databaseID, collectionID, append(queries, backend.Limit(100))...)
	if err != nil {
		t.Fatalf("list %s: %v", collectionID, err)
	}
	return list.Documents
}

func count(t *testing.T, c *backend.Client, collectionID string) int {
	t.Helper()
	list, err := c.ListDocuments(context.Background(), databaseID, collectionID)
	if err != nil {
		t.Fatalf("list %s: %v", collectionID, err)
	}
	return list.Total
}

func pizzaFixture() *domain.Fixture {
	return &domain.Fixture{
		Categories: []domain.Category{
			{Name: "Pizza", Description: "Stone baked"},
			{Name: "Drinks", Description: "Cold drinks"},
		},
		Customizations: []domain.Customization{
			{Name: "Extra Cheese", Price: 1.5, Type: "topping"},
		},
		Menu: []domain.MenuItem{
			{
				Name:           "Margherita",
				Description:    "Tomato and mozzarella",
				ImageURL:       "margherita.png",
				Price:          9.5,
				Rating:         4.6,
				Calories:       800,
				Protein:        30,
				CategoryName:   "Pizza",
				Customizations: []string{"Extra Cheese"},
			},
		},
	}
}

func TestRunPizzaScenario(t *testing.T) {
	srv, _ := testhelpers.NewServer(t)
	c := testhelpers.NewClient(t, srv)
	r := &stubRehoster{}

	report, err := newSeeder(t, c, r, options()).Run(context.Background(), pizzaFixture())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if n := count(t, c, collections.Categories); n != 2 {
		t.Errorf("expected 2 categories, got %d", n)
	}
	if n := count(t, c, collections.Customizations); n != 1 {
		t.Errorf("expected 1 customization, got %d", n)
	}

	menu := listAll(t, c, collections.Menu)
	if len(menu) != 1 {
		t.Fatalf("expected 1 menu document, got %d", len(menu))
	}
	item := menu[0]
	if got := item.String("categories"); got != report.Categories["Pizza"] {
		t.Errorf("menu categories = %q, want Pizza id %q", got, report.Categories["Pizza"])
	}
	if got := item.String("image_url"); got != "https://cdn.test/margherita.png" {
		t.Errorf("image_url = %q, want rehosted url", got)
	}
	if item.Float("price") != 9.5 || item.Float("calories") != 800 {
		t.Errorf("unexpected menu data %v", item.Data)
	}

	links := listAll(t, c, collections.MenuCustomizations)
	if len(links) != 1 {
		t.Fatalf("expected 1 join document, got %d", len(links))
	}
	if links[0].String("menu") != item.ID {
		t.Errorf("join menu = %q, want %q", links[0].String("menu"), item.ID)
	}
	if links[0].String("customizations") != report.Customizations["Extra Cheese"] {
		t.Errorf("join customizations = %q, want %q", links[0].String("customizations"), report.Customizations["Extra Cheese"])
	}

	if len(report.Categories) != 2 || report.Categories["Drinks"] == "" {
		t.Errorf("expected category map with Pizza and Drinks, got %v", report.Categories)
	}
	if report.Links != 1 || report.Rehosted() != 1 || len(report.Unresolved) != 0 {
		t.Errorf("unexpected report %+v", report)
	}
	if len(r.calls) != 1 || r.calls[0] != "margherita.png" {
		t.Errorf("unexpected rehost calls %v", r.calls)
	}
}

func TestRunDefaultFixtureLinks(t *testing.T) {
	srv, _ := testhelpers.NewServer(t)
	c := testhelpers.NewClient(t, srv)

	f, err := fixture.Default()
	if err != nil {
		t.Fatalf("fixture.Default: %v", err)
	}

	report, err := newSeeder(t, c, &stubRehoster{}, options()).Run(context.Background(), f)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if n := count(t, c, collections.Categories); n != len(f.Categories) {
		t.Errorf("expected %d categories, got %d", len(f.Categories), n)
	}
	for _, cat := range f.Categories {
		if report.Categories[cat.Name] == "" {
			t.Errorf("category map missing %q", cat.Name)
		}
	}

	wantLinks := 0
	for _, item := range f.Menu {
		wantLinks += len(item.Customizations)

		menuID := report.Menu[item.Name]
		links := listAll(t, c, collections.MenuCustomizations, backend.Equal("menu", menuID))
		if len(links) != len(item.Customizations) {
			t.Errorf("%s: expected %d links, got %d", item.Name, len(item.Customizations), len(links))
			continue
		}
		for i, name := range item.Customizations {
			if got := links[i].String("customizations"); got != report.Customizations[name] {
				t.Errorf("%s link %d = %q, want %s id %q", item.Name, i, got, name, report.Customizations[name])
			}
		}
	}
	if report.Links != wantLinks {
		t.Errorf("report.Links = %d, want %d", report.Links, wantLinks)
	}
}

func TestRunIsIdempotent(t *testing.T) {
	srv, _ := testhelpers.NewServer(t)
	c := testhelpers.NewClient(t, srv)
	s := newSeeder(t, c, &stubRehoster{}, options())
	ctx := context.Background()

	f, err := fixture.Default()
	if err != nil {
		t.Fatalf("fixture.Default: %v", err)
	}

	if _, err := s.Run(ctx, f); err != nil {
		t.Fatalf("first Run: %v", err)
	}
	first := map[string]int{}
	for _, coll := range []string{collections.Categories, collections.Customizations, collections.Menu, collections.MenuCustomizations} {
		first[coll] = count(t, c, coll)
	}

	report, err := s.Run(ctx, f)
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}
	for coll, n := range first {
		if got := count(t, c, coll); got != n {
			t.Errorf("%s: count after second run = %d, want %d", coll, got, n)
		}
		if report.Deleted[coll] != n {
			t.Errorf("%s: second run deleted %d, want %d", coll, report.Deleted[coll], n)
		}
	}
}

func TestResetBeyondOnePage(t *testing.T) {
	srv, s := testhelpers.NewServer(t)
	c := testhelpers.NewClient(t, srv)
	ctx := context.Background()

	for _, coll := range []string{collections.Categories, collections.Menu} {
		for range 23 {
			if _, err := c.CreateDocument(ctx, databaseID, coll, backend.Unique, map[string]any{"name": "x"}); err != nil {
				t.Fatalf("create: %v", err)
			}
		}
	}
	for range 7 {
		if _, err := c.CreateFile(ctx, bucketID, backend.Unique, backend.InputFile{Name: "a.jpg", Data: []byte("a")}); err != nil {
			t.Fatalf("create file: %v", err)
		}
	}

	opts := options()
	opts.PageSize = 5
	opts.DeleteConcurrency = 2
	deleted, err := newSeeder(t, c, &stubRehoster{}, opts).Reset(ctx)
	if err != nil {
		t.Fatalf("Reset: %v", err)
	}

	if deleted[collections.Categories] != 23 || deleted[collections.Menu] != 23 || deleted[bucketID] != 7 {
		t.Errorf("unexpected deleted counts %v", deleted)
	}
	if deleted[collections.Customizations] != 0 {
		t.Errorf("expected nothing deleted from customizations, got %d", deleted[collections.Customizations])
	}
	for _, coll := range []string{collections.Categories, collections.Menu} {
		if n := count(t, c, coll); n != 0 {
			t.Errorf("%s: %d documents left after reset", coll, n)
		}
	}
	files, err := s.Files.List(ctx, bucketID, domain.ListOpts{})
	if err != nil {
		t.Fatalf("list files: %v", err)
	}
	if files.Total != 0 {
		t.Errorf("%d files left after reset", files.Total)
	}
}

func TestRunUnresolvedCategory(t *testing.T) {
	srv, _ := testhelpers.NewServer(t)
	c := testhelpers.NewClient(t, srv)

	f := pizzaFixture()
	f.Menu[0].CategoryName = "Desserts"

	report, err := newSeeder(t, c, &stubRehoster{}, options()).Run(context.Background(), f)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	menu := listAll(t, c, collections.Menu)
	if len(menu) != 1 {
		t.Fatalf("expected menu item to be created, got %d", len(menu))
	}
	if got := menu[0].String("categories"); got != "" {
		t.Errorf("expected empty categories field, got %q", got)
	}
	want := fixture.Gap{Item: "Margherita", Kind: fixture.KindCategory, Name: "Desserts"}
	if len(report.Unresolved) != 1 || report.Unresolved[0] != want {
		t.Errorf("Unresolved = %v, want [%v]", report.Unresolved, want)
	}
	if report.Links != 1 {
		t.Errorf("expected customization link to still be created, got %d", report.Links)
	}
}

func TestRunUnresolvedCustomization(t *testing.T) {
	srv, _ := testhelpers.NewServer(t)
	c := testhelpers.NewClient(t, srv)

	f := pizzaFixture()
	f.Menu[0].Customizations = []string{"Anchovies", "Extra Cheese"}

	report, err := newSeeder(t, c, &stubRehoster{}, options()).Run(context.Background(), f)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if n := count(t, c, collections.MenuCustomizations); n != 1 {
		t.Errorf("expected only the resolvable link, got %d", n)
	}
	want := fixture.Gap{Item: "Margherita", Kind: fixture.KindCustomization, Name: "Anchovies"}
	if len(report.Unresolved) != 1 || report.Unresolved[0] != want {
		t.Errorf("Unresolved = %v, want [%v]", report.Unresolved, want)
	}
}

func TestRunStrictFailsBeforeReset(t *testing.T) {
	srv, _ := testhelpers.NewServer(t)
	c := testhelpers.NewClient(t, srv)
	ctx := context.Background()

	if _, err := c.CreateDocument(ctx, databaseID, collections.Categories, backend.Unique, map[string]any{"name": "Old"}); err != nil {
		t.Fatalf("create: %v", err)
	}

	f := pizzaFixture()
	f.Menu[0].CategoryName = "Desserts"

	opts := options()
	opts.Strict = true
	_, err := newSeeder(t, c, &stubRehoster{}, opts).Run(ctx, f)
	if err == nil || !strings.Contains(err.Error(), `unknown category "Desserts"`) {
		t.Fatalf("expected strict gap error, got %v", err)
	}
	if n := count(t, c, collections.Categories); n != 1 {
		t.Errorf("expected existing data untouched, got %d categories", n)
	}
}

// failingBackend fails creates in one collection.
type failingBackend struct {
	*backend.Client
	collection string
}

func (b *failingBackend) CreateDocument(ctx context.Context, databaseID, collectionID, documentID string, data any) (*domain.Document, error) {
	if collectionID == b.collection {
		return nil, &backend.Error{Code: http.StatusTooManyRequests, Type: "general_rate_limit_exceeded", Message: "slow down"}
	}
	return b.Client.CreateDocument(ctx, databaseID, collectionID, documentID, data)
}

func TestRunPropagatesBackendErrors(t *testing.T) {
	srv, _ := testhelpers.NewServer(t)
	c := testhelpers.NewClient(t, srv)

	b := &failingBackend{Client: c, collection: collections.Menu}
	_, err := newSeeder(t, b, &stubRehoster{}, options()).Run(context.Background(), pizzaFixture())
	if err == nil {
		t.Fatal("expected error")
	}
	var apiErr *backend.Error
	if !errors.As(err, &apiErr) || apiErr.Code != http.StatusTooManyRequests {
		t.Errorf("expected wrapped *backend.Error, got %v", err)
	}
	if !strings.Contains(err.Error(), `seed menu: create menu item "Margherita"`) {
		t.Errorf("expected phase and item in error, got %q", err.Error())
	}

	// Earlier phases stay in place: nothing is rolled back.
	if n := count(t, c, collections.Categories); n != 2 {
		t.Errorf("expected categories to remain, got %d", n)
	}
}

// stuckBackend acknowledges deletes without removing anything.
type stuckBackend struct {
	*backend.Client
}

func (stuckBackend) DeleteDocument(context.Context, string, string, string) error { return nil }

func TestResetDetectsStuckListing(t *testing.T) {
	srv, _ := testhelpers.NewServer(t)
	c := testhelpers.NewClient(t, srv)
	ctx := context.Background()

	if _, err := c.CreateDocument(ctx, databaseID, collections.Categories, backend.Unique, map[string]any{}); err != nil {
		t.Fatalf("create: %v", err)
	}

	_, err := newSeeder(t, stuckBackend{c}, &stubRehoster{}, options()).Reset(ctx)
	if err == nil || !strings.Contains(err.Error(), "still listed after delete") {
		t.Errorf("expected stuck listing error, got %v", err)
	}
}

// failingDeleteBackend fails every file delete.
type failingDeleteBackend struct {
	*backend.Client
}

func (failingDeleteBackend) DeleteFile(context.Context, string, string) error {
	return &backend.Error{Code: http.StatusInternalServerError, Message: "boom"}
}

func TestResetPropagatesDeleteErrors(t *testing.T) {
	srv, _ := testhelpers.NewServer(t)
	c := testhelpers.NewClient(t, srv)
	ctx := context.Background()

	if _, err := c.CreateFile(ctx, bucketID, backend.Unique, backend.InputFile{Name: "a.jpg", Data: []byte("a")}); err != nil {
		t.Fatalf("create file: %v", err)
	}

	_, err := newSeeder(t, failingDeleteBackend{c}, &stubRehoster{}, options()).Reset(ctx)
	if err == nil || !strings.Contains(err.Error(), "clear bucket assets") {
		t.Errorf("expected bucket delete error, got %v", err)
	}
}

func TestSeedMenuThrottle(t *testing.T) {
	srv, _ := testhelpers.NewServer(t)
	c := testhelpers.NewClient(t, srv)

	opts := options()
	opts.Throttle = 30 * time.Millisecond
	s := newSeeder(t, c, &stubRehoster{}, opts)

	items := []domain.MenuItem{{Name: "a"}, {Name: "b"}, {Name: "c"}}
	start := time.Now()
	if _, err := s.SeedMenu(context.Background(), items, nil, nil); err != nil {
		t.Fatalf("SeedMenu: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 60*time.Millisecond {
		t.Errorf("expected at least two throttle intervals, took %v", elapsed)
	}
}

func TestSeedMenuThrottleHonorsContext(t *testing.T) {
	srv, _ := testhelpers.NewServer(t)
	c := testhelpers.NewClient(t, srv)

	opts := options()
	opts.Throttle = time.Hour
	s := newSeeder(t, c, &stubRehoster{}, opts)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	items := []domain.MenuItem{{Name: "a"}, {Name: "b"}}
	res, err := s.SeedMenu(ctx, items, nil, nil)
	if err == nil {
		t.Fatal("expected throttle error")
	}
	if len(res.IDs) != 1 {
		t.Errorf("expected first item seeded before waiting, got %d", len(res.IDs))
	}
}

func TestRunWithImageRehosting(t *testing.T) {
	srv, s := testhelpers.NewServer(t)
	c := testhelpers.NewClient(t, srv)

	img := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/blocked.png" {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write([]byte("\x89PNG\r\n\x1a\nfake"))
	}))
	defer img.Close()

	f := pizzaFixture()
	f.Menu[0].ImageURL = img.URL + "/margherita.png"
	f.Menu = append(f.Menu, domain.MenuItem{Name: "Cola", CategoryName: "Drinks", ImageURL: img.URL + "/blocked.png"})

	r := rehost.New(c, rehost.Config{BucketID: bucketID})
	report, err := newSeeder(t, c, r, options()).Run(context.Background(), f)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if report.Rehosted() != 1 {
		t.Errorf("expected 1 rehosted image, got %d", report.Rehosted())
	}

	byName := map[string]*domain.Document{}
	for _, d := range listAll(t, c, collections.Menu) {
		byName[d.String("name")] = d
	}
	if got := byName["Margherita"].String("image_url"); !strings.Contains(got, "/v1/storage/buckets/assets/files/") {
		t.Errorf("expected hosted image url, got %q", got)
	}
	if got := byName["Cola"].String("image_url"); got != img.URL+"/blocked.png" {
		t.Errorf("expected source url fallback, got %q", got)
	}

	files, err := s.Files.List(context.Background(), bucketID, domain.ListOpts{})
	if err != nil {
		t.Fatalf("list files: %v", err)
	}
	if files.Total != 1 || files.Files[0].Name != "margherita.png" {
		t.Errorf("unexpected bucket contents %+v", files.Files)
	}
}

func TestNewValidation(t *testing.T) {
	srv, _ := testhelpers.NewServer(t)
	c := testhelpers.NewClient(t, srv)

	opts := options()
	opts.DatabaseID = ""
	if _, err := seed.New(c, &stubRehoster{}, opts); err == nil {
		t.Error("expected error for missing database id")
	}

	opts = options()
	opts.Collections.Menu = ""
	if _, err := seed.New(c, &stubRehoster{}, opts); err == nil {
		t.Error("expected error for missing collection id")
	}
}
