package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/raphaelgruber/contentd/internal/metrics"
	"github.com/raphaelgruber/contentd/internal/models"
)

// defaultMaxInFlight bounds how many items resolve concurrently so the
// search and generation backends are not overwhelmed.
const defaultMaxInFlight = 4

// Orchestrator drives a content retrieval task end to end: instruction
// parsing, scraping, per-item field resolution, and table building.
//
// Only instruction parsing is fatal. Scrape failures degrade to an empty item
// list and field failures degrade to error-kind results; in both cases the
// task still completes with a structurally valid result.
type Orchestrator struct {
	parser    InstructionParser
	scraper   Scraper
	processor *Processor

	store       Store
	maxInFlight int

	logger    *slog.Logger
	collector *metrics.Collector
}

// OrchestratorOption configures an Orchestrator.
type OrchestratorOption func(*Orchestrator)

// WithStore persists task output through the given store. Store failures are
// logged, never fatal.
func WithStore(store Store) OrchestratorOption {
	return func(o *Orchestrator) { o.store = store }
}

// WithMaxInFlight bounds concurrent item resolution.
func WithMaxInFlight(n int) OrchestratorOption {
	return func(o *Orchestrator) {
		if n > 0 {
			o.maxInFlight = n
		}
	}
}

// WithMetrics records parse/scrape timings on the collector.
func WithMetrics(c *metrics.Collector) OrchestratorOption {
	return func(o *Orchestrator) { o.collector = c }
}

// NewOrchestrator creates an orchestrator with the given capabilities.
func NewOrchestrator(parser InstructionParser, scraper Scraper, processor *Processor, logger *slog.Logger, opts ...OrchestratorOption) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	o := &Orchestrator{
		parser:      parser,
		scraper:     scraper,
		processor:   processor,
		maxInFlight: defaultMaxInFlight,
		logger:      logger,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Run executes one task. The returned TaskResult is always non-nil; on a
// fatal instruction-parsing failure it carries TaskStatusFailed and no table,
// and the parse error is returned alongside it.
func (o *Orchestrator) Run(ctx context.Context, url, instructions string, creds *models.AuthCredentials) (*models.TaskResult, error) {
	return o.RunTask(ctx, uuid.New().String(), url, instructions, creds, nil)
}

// RunTask executes one task under a caller-supplied ID. The optional progress
// callback receives item completion counts as resolution proceeds.
func (o *Orchestrator) RunTask(ctx context.Context, taskID, url, instructions string, creds *models.AuthCredentials, progress func(done, total int)) (*models.TaskResult, error) {
	o.logger.Info("starting task", "task_id", taskID, "url", url)

	fields, err := o.parseFields(ctx, instructions)
	if err != nil {
		o.logger.Error("instruction parsing failed", "task_id", taskID, "error", err)
		o.persistTask(ctx, taskID, url, instructions, models.TaskStatusFailed, nil)
		return &models.TaskResult{
			TaskID: taskID,
			Status: models.TaskStatusFailed,
			Error:  err.Error(),
		}, fmt.Errorf("parse instructions: %w", err)
	}

	o.persistTask(ctx, taskID, url, instructions, models.TaskStatusRunning, fields)

	items := o.scrape(ctx, url, creds)
	resolved := o.resolveItems(ctx, items, fields, progress)
	table := BuildTable(fields, resolved)

	result := &models.TaskResult{
		TaskID: taskID,
		Status: models.TaskStatusCompleted,
		Items:  resolved,
		Table:  &table,
		Metadata: map[string]string{
			"url":              url,
			"fields_extracted": joinFieldNames(fields),
		},
	}

	o.persistResult(ctx, taskID, url, instructions, fields, result)

	o.logger.Info("task completed",
		"task_id", taskID,
		"items", len(resolved),
		"columns", len(table.Columns),
		"generated_fields", len(table.Metadata.GeneratedFields))
	return result, nil
}

// parseFields invokes the instruction parser and normalizes its output into
// an ordered, de-duplicated field list. An empty list is treated as a parse
// failure: a task without fields has nothing to resolve.
func (o *Orchestrator) parseFields(ctx context.Context, instructions string) ([]models.Field, error) {
	start := time.Now()
	names, err := o.parser.ParseInstructions(ctx, instructions)
	o.record(metrics.OpInstructionParse, start, err)
	if err != nil {
		return nil, err
	}

	fields := models.FieldList(names)
	if len(fields) == 0 {
		return nil, fmt.Errorf("no fields identified in instructions")
	}
	return fields, nil
}

// scrape invokes the scraper and absorbs failures into an empty item list.
// A task with zero items and the intended columns is a valid result.
func (o *Orchestrator) scrape(ctx context.Context, url string, creds *models.AuthCredentials) []models.ContentItem {
	start := time.Now()
	items, err := o.scraper.Scrape(ctx, url, creds)
	o.record(metrics.OpScrape, start, err)
	if err != nil {
		o.logger.Warn("scrape failed, continuing with zero items", "url", url, "error", err)
		return nil
	}
	return items
}

// resolveItems fans the processor out across items with a bounded worker
// pool. Output order matches input order, not completion order.
func (o *Orchestrator) resolveItems(ctx context.Context, items []models.ContentItem, fields []models.Field, progress func(done, total int)) []models.ResolvedItem {
	if len(items) == 0 {
		return []models.ResolvedItem{}
	}

	resolved := make([]models.ResolvedItem, len(items))
	workChan := make(chan int, len(items))
	for i := range items {
		workChan <- i
	}
	close(workChan)

	workers := o.maxInFlight
	if workers > len(items) {
		workers = len(items)
	}

	var done atomic.Int64
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range workChan {
				resolved[idx] = o.processor.Process(ctx, items[idx], fields)
				if progress != nil {
					progress(int(done.Add(1)), len(items))
				}
			}
		}()
	}
	wg.Wait()

	return resolved
}

func (o *Orchestrator) persistTask(ctx context.Context, taskID, url, instructions string, status models.TaskStatus, fields []models.Field) {
	if o.store == nil {
		return
	}
	task := models.Task{
		ID:           taskID,
		URL:          url,
		Instructions: instructions,
		Status:       status,
	}
	if len(fields) > 0 {
		task.Metadata = map[string]string{"fields_extracted": joinFieldNames(fields)}
	}
	if err := o.store.StoreTask(ctx, task); err != nil {
		o.logger.Warn("failed to persist task", "task_id", taskID, "error", err)
	}
}

func (o *Orchestrator) persistResult(ctx context.Context, taskID, url, instructions string, fields []models.Field, result *models.TaskResult) {
	if o.store == nil {
		return
	}
	if err := o.store.StoreItems(ctx, taskID, result.Items); err != nil {
		o.logger.Warn("failed to persist items", "task_id", taskID, "error", err)
	}
	if result.Table != nil {
		if err := o.store.StoreTable(ctx, taskID, *result.Table); err != nil {
			o.logger.Warn("failed to persist table", "task_id", taskID, "error", err)
		}
	}
	o.persistTask(ctx, taskID, url, instructions, result.Status, fields)
}

func (o *Orchestrator) record(op string, start time.Time, err error) {
	if o.collector == nil {
		return
	}
	o.collector.Record(op, time.Since(start), err)
}

func joinFieldNames(fields []models.Field) string {
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.Name
	}
	return strings.Join(names, ",")
}
