package engine

import (
	"context"
	"log/slog"
	"os"
	"sync"

	"github.com/raphaelgruber/contentd/internal/models"
)

// testLogger creates a logger for test visibility.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

type fakeParser struct {
	fields []string
	err    error
}

func (p *fakeParser) ParseInstructions(ctx context.Context, instructions string) ([]string, error) {
	return p.fields, p.err
}

type fakeScraper struct {
	items []models.ContentItem
	err   error
}

func (s *fakeScraper) Scrape(ctx context.Context, url string, creds *models.AuthCredentials) ([]models.ContentItem, error) {
	return s.items, s.err
}

type fakeSearcher struct {
	mu      sync.Mutex
	queries []string
	result  string
	err     error
}

func (s *fakeSearcher) FindInformation(ctx context.Context, query string) (string, error) {
	s.mu.Lock()
	s.queries = append(s.queries, query)
	s.mu.Unlock()
	return s.result, s.err
}

type fakeGenerator struct {
	mu       sync.Mutex
	calls    int
	contexts []string
	generate func(field, searchContext string, item models.ContentItem) (string, error)
}

func (g *fakeGenerator) GenerateField(ctx context.Context, field, searchContext string, item models.ContentItem) (string, error) {
	g.mu.Lock()
	g.calls++
	g.contexts = append(g.contexts, searchContext)
	g.mu.Unlock()
	if g.generate != nil {
		return g.generate(field, searchContext, item)
	}
	return "generated " + field, nil
}

type fakeStore struct {
	mu     sync.Mutex
	tasks  []models.Task
	items  map[string][]models.ResolvedItem
	tables map[string]models.ContentTable
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		items:  make(map[string][]models.ResolvedItem),
		tables: make(map[string]models.ContentTable),
	}
}

func (s *fakeStore) StoreTask(ctx context.Context, task models.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks = append(s.tasks, task)
	return nil
}

func (s *fakeStore) StoreItems(ctx context.Context, taskID string, items []models.ResolvedItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[taskID] = items
	return nil
}

func (s *fakeStore) StoreTable(ctx context.Context, taskID string, table models.ContentTable) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tables[taskID] = table
	return nil
}

func itemWith(pairs ...string) models.ContentItem {
	item := models.NewContentItem()
	for i := 0; i+1 < len(pairs); i += 2 {
		item.Set(pairs[i], models.StringValue(pairs[i+1]))
	}
	return *item
}
