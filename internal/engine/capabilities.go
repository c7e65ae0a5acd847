// Package engine implements the field-resolution orchestration core: the
// three-tier field resolver, per-item concurrent processing, task
// orchestration, and table building.
//
// External collaborators (LLM, search, scraping, persistence) are injected
// through the capability interfaces below so fallback branches are testable
// with deterministic fakes.
package engine

import (
	"context"

	"github.com/raphaelgruber/contentd/internal/models"
)

// InstructionParser turns natural-language instructions into an ordered field
// name list. Parse failure is fatal to a task: with no fields there is
// nothing to resolve.
type InstructionParser interface {
	ParseInstructions(ctx context.Context, instructions string) ([]string, error)
}

// Scraper fetches content items from a URL, optionally authenticating first.
// Failures are non-fatal: the orchestrator degrades to an empty item list.
type Scraper interface {
	Scrape(ctx context.Context, url string, creds *models.AuthCredentials) ([]models.ContentItem, error)
}

// Searcher finds supporting context for a query. Failures are non-fatal: the
// resolver substitutes an empty context and proceeds to generation.
type Searcher interface {
	FindInformation(ctx context.Context, query string) (string, error)
}

// Generator synthesizes a field value from search context and item data.
// Failure marks the field as errored; the task still completes.
type Generator interface {
	GenerateField(ctx context.Context, field, searchContext string, item models.ContentItem) (string, error)
}

// Store persists task output. All methods are best-effort idempotent sinks:
// the orchestrator logs store failures but never fails a task on them.
type Store interface {
	StoreTask(ctx context.Context, task models.Task) error
	StoreItems(ctx context.Context, taskID string, items []models.ResolvedItem) error
	StoreTable(ctx context.Context, taskID string, table models.ContentTable) error
}
