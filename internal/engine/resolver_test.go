package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/raphaelgruber/contentd/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveExtractedShortCircuits(t *testing.T) {
	searcher := &fakeSearcher{}
	generator := &fakeGenerator{}
	r := NewResolver(searcher, generator, testLogger())

	item := itemWith("title", "Widget", "price", "9.99")
	res := r.Resolve(context.Background(), models.Field{Name: "price"}, item)

	assert.Equal(t, models.SourceExtracted, res.Source)
	require.NotNil(t, res.Value)
	assert.Equal(t, "9.99", res.Value.Text())
	assert.Empty(t, searcher.queries, "extraction must not trigger search")
	assert.Zero(t, generator.calls, "extraction must not trigger generation")
}

func TestResolveEmptyValueFallsThrough(t *testing.T) {
	searcher := &fakeSearcher{result: "some context"}
	generator := &fakeGenerator{}
	r := NewResolver(searcher, generator, testLogger())

	item := *models.NewContentItem()
	item.Set("title", models.StringValue("Widget"))
	item.Set("price", models.StringValue(""))

	res := r.Resolve(context.Background(), models.Field{Name: "price"}, item)

	assert.Equal(t, models.SourceGenerated, res.Source)
	require.Len(t, searcher.queries, 1)
	assert.Equal(t, "Widget price", searcher.queries[0])
}

func TestResolveSearchFailureDegradesToEmptyContext(t *testing.T) {
	searcher := &fakeSearcher{err: errors.New("api unreachable")}
	generator := &fakeGenerator{}
	r := NewResolver(searcher, generator, testLogger())

	res := r.Resolve(context.Background(), models.Field{Name: "summary"}, itemWith("title", "Widget"))

	assert.Equal(t, models.SourceGenerated, res.Source)
	require.Equal(t, 1, generator.calls)
	assert.Equal(t, "", generator.contexts[0], "failed search must yield empty context, not abort")
}

func TestResolveGenerationFailureYieldsErrorResult(t *testing.T) {
	searcher := &fakeSearcher{}
	generator := &fakeGenerator{
		generate: func(field, searchContext string, item models.ContentItem) (string, error) {
			return "", errors.New("model overloaded")
		},
	}
	r := NewResolver(searcher, generator, testLogger())

	res := r.Resolve(context.Background(), models.Field{Name: "rating"}, itemWith("title", "Widget"))

	assert.Equal(t, models.SourceError, res.Source)
	assert.Nil(t, res.Value)
	assert.Contains(t, res.Detail, "model overloaded")
}

func TestResolveQueryWithoutTitle(t *testing.T) {
	searcher := &fakeSearcher{}
	generator := &fakeGenerator{}
	r := NewResolver(searcher, generator, testLogger())

	r.Resolve(context.Background(), models.Field{Name: "author"}, *models.NewContentItem())

	require.Len(t, searcher.queries, 1)
	assert.Equal(t, "author", searcher.queries[0])
}
