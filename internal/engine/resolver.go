package engine

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/raphaelgruber/contentd/internal/metrics"
	"github.com/raphaelgruber/contentd/internal/models"
)

// Default timeouts for the external calls a single resolution may make.
const (
	defaultSearchTimeout   = 15 * time.Second
	defaultGenerateTimeout = 60 * time.Second
)

// Resolver resolves one field for one content item using a strict three-tier
// fallback: direct extraction, context search, generative synthesis.
type Resolver struct {
	searcher  Searcher
	generator Generator

	searchTimeout   time.Duration
	generateTimeout time.Duration

	logger    *slog.Logger
	collector *metrics.Collector
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithSearchTimeout bounds each search call.
func WithSearchTimeout(d time.Duration) ResolverOption {
	return func(r *Resolver) { r.searchTimeout = d }
}

// WithGenerateTimeout bounds each generation call.
func WithGenerateTimeout(d time.Duration) ResolverOption {
	return func(r *Resolver) { r.generateTimeout = d }
}

// WithResolverMetrics records search/generate timings on the collector.
func WithResolverMetrics(c *metrics.Collector) ResolverOption {
	return func(r *Resolver) { r.collector = c }
}

// NewResolver creates a resolver with the given capabilities.
func NewResolver(searcher Searcher, generator Generator, logger *slog.Logger, opts ...ResolverOption) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Resolver{
		searcher:        searcher,
		generator:       generator,
		searchTimeout:   defaultSearchTimeout,
		generateTimeout: defaultGenerateTimeout,
		logger:          logger,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve resolves field against item. It never returns an error: every
// failure degrades to a FieldResult with SourceError so downstream table
// construction stays exception-free.
//
// Tier 1: the field name is a key in the item with a non-empty value. The
// scraped value is authoritative; no further tiers run.
// Tier 2: search for context using the item's title-like value plus the field
// name. Search failure is non-fatal; an empty context is substituted.
// Tier 3: generate the value from context and item data. Generation failure
// yields an error-kind result with a nil value.
func (r *Resolver) Resolve(ctx context.Context, field models.Field, item models.ContentItem) models.FieldResult {
	if value, ok := item.Get(field.Name); ok && !value.IsEmpty() {
		return models.ExtractedResult(field.Name, value)
	}

	searchContext := r.search(ctx, field, item)

	start := time.Now()
	genCtx, cancel := context.WithTimeout(ctx, r.generateTimeout)
	defer cancel()
	text, err := r.generator.GenerateField(genCtx, field.Name, searchContext, item)
	r.record(metrics.OpGenerate, start, err)
	if err != nil {
		r.logger.Warn("field generation failed", "field", field.Name, "error", err)
		return models.ErrorResult(field.Name, err.Error())
	}
	return models.GeneratedResult(field.Name, text)
}

// search runs tier 2 and absorbs all failures into an empty context string.
func (r *Resolver) search(ctx context.Context, field models.Field, item models.ContentItem) string {
	query := strings.TrimSpace(item.TitleLike() + " " + field.Name)

	start := time.Now()
	searchCtx, cancel := context.WithTimeout(ctx, r.searchTimeout)
	defer cancel()
	result, err := r.searcher.FindInformation(searchCtx, query)
	r.record(metrics.OpSearch, start, err)
	if err != nil {
		r.logger.Warn("context search failed, continuing without context",
			"field", field.Name, "query", query, "error", err)
		return ""
	}
	return result
}

func (r *Resolver) record(op string, start time.Time, err error) {
	if r.collector == nil {
		return
	}
	r.collector.Record(op, time.Since(start), err)
}
