package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/raphaelgruber/contentd/internal/models"
)

// Processor applies the resolver to every requested field of one content
// item concurrently. Field-level failures are isolated: one field erroring
// never aborts its siblings, and the returned item always has one result per
// requested field.
type Processor struct {
	resolver *Resolver
	logger   *slog.Logger
}

// NewProcessor creates a processor around a resolver.
func NewProcessor(resolver *Resolver, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{resolver: resolver, logger: logger}
}

// Process resolves all fields for one item. Fields resolve concurrently;
// field count is bounded by instruction parsing, so fan-out is unbounded
// here. Results keep declaration order regardless of completion order.
func (p *Processor) Process(ctx context.Context, item models.ContentItem, fields []models.Field) models.ResolvedItem {
	results := make([]models.FieldResult, len(fields))

	var wg sync.WaitGroup
	for i, field := range fields {
		wg.Add(1)
		go func(i int, field models.Field) {
			defer wg.Done()
			defer func() {
				if rec := recover(); rec != nil {
					p.logger.Error("field resolution panicked", "field", field.Name, "panic", rec)
					results[i] = models.ErrorResult(field.Name, fmt.Sprintf("internal panic: %v", rec))
				}
			}()
			results[i] = p.resolver.Resolve(ctx, field, item)
		}(i, field)
	}
	wg.Wait()

	resolved := models.NewResolvedItem(fields)
	for _, res := range results {
		resolved.Set(res)
	}
	return *resolved
}
