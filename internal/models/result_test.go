package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResultConstructors(t *testing.T) {
	extracted := ExtractedResult("title", StringValue("Widget"))
	assert.Equal(t, SourceExtracted, extracted.Source)
	require.NotNil(t, extracted.Value)
	assert.Equal(t, "Widget", extracted.Value.Text())

	generated := GeneratedResult("summary", "a widget")
	assert.Equal(t, SourceGenerated, generated.Source)
	require.NotNil(t, generated.Value)

	failed := ErrorResult("price", "generation timed out")
	assert.Equal(t, SourceError, failed.Source)
	assert.Nil(t, failed.Value)
	assert.Equal(t, "generation timed out", failed.Detail)
}

func TestResolvedItemOrder(t *testing.T) {
	fields := FieldList([]string{"title", "price", "rating"})
	item := NewResolvedItem(fields)

	// completion order differs from declaration order
	item.Set(GeneratedResult("rating", "4.5"))
	item.Set(ExtractedResult("title", StringValue("Widget")))
	item.Set(ErrorResult("price", "no data"))

	assert.Equal(t, []string{"title", "price", "rating"}, item.FieldNames())

	encoded, err := json.Marshal(item)
	require.NoError(t, err)

	var decoded ResolvedItem
	require.NoError(t, json.Unmarshal(encoded, &decoded))
	assert.Equal(t, item.FieldNames(), decoded.FieldNames())

	res, ok := decoded.Get("price")
	require.True(t, ok)
	assert.Equal(t, SourceError, res.Source)
	assert.Nil(t, res.Value)
}

func TestResolvedItemSetUnknownFieldAppends(t *testing.T) {
	item := NewResolvedItem(FieldList([]string{"title"}))
	item.Set(ExtractedResult("title", StringValue("x")))
	item.Set(ExtractedResult("bonus", StringValue("y")))

	assert.Equal(t, []string{"title", "bonus"}, item.FieldNames())
	assert.Equal(t, 2, item.Len())
}
