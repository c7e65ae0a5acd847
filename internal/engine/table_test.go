package engine

import (
	"testing"

	"github.com/raphaelgruber/contentd/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resolvedWith(fields []models.Field, results ...models.FieldResult) models.ResolvedItem {
	item := models.NewResolvedItem(fields)
	for _, res := range results {
		item.Set(res)
	}
	return *item
}

func TestBuildTableColumnsFollowDeclarationOrder(t *testing.T) {
	fields := models.FieldList([]string{"title", "price", "rating"})
	items := []models.ResolvedItem{
		resolvedWith(fields,
			models.GeneratedResult("rating", "4.5"),
			models.ExtractedResult("title", models.StringValue("Widget")),
			models.ExtractedResult("price", models.StringValue("9.99")),
		),
	}

	table := BuildTable(fields, items)

	assert.Equal(t, []string{"title", "price", "rating"}, table.Columns)
	assert.Equal(t, 1, table.Metadata.TotalRows)
	assert.Equal(t, []string{"rating"}, table.Metadata.GeneratedFields)
}

func TestBuildTableExtrasAppendFirstSeen(t *testing.T) {
	fields := models.FieldList([]string{"title"})
	items := []models.ResolvedItem{
		resolvedWith(fields,
			models.ExtractedResult("title", models.StringValue("a")),
			models.ExtractedResult("bonus", models.StringValue("b")),
		),
		resolvedWith(fields,
			models.ExtractedResult("title", models.StringValue("c")),
			models.ExtractedResult("extra", models.StringValue("d")),
			models.ExtractedResult("bonus", models.StringValue("e")),
		),
	}

	table := BuildTable(fields, items)
	assert.Equal(t, []string{"title", "bonus", "extra"}, table.Columns)
}

func TestBuildTableRowsAreRectangular(t *testing.T) {
	fields := models.FieldList([]string{"title", "price"})
	items := []models.ResolvedItem{
		resolvedWith(fields,
			models.ExtractedResult("title", models.StringValue("Widget")),
			models.ErrorResult("price", "generation failed"),
		),
		resolvedWith(fields,
			models.ExtractedResult("title", models.StringValue("Gadget")),
		),
	}

	table := BuildTable(fields, items)
	require.Len(t, table.Rows, 2)

	for _, row := range table.Rows {
		require.Len(t, row, 2, "every row must carry every column")
	}
	assert.Nil(t, table.Rows[0]["price"], "errored field renders as nil")
	assert.Nil(t, table.Rows[1]["price"], "absent field renders as nil")
	require.NotNil(t, table.Rows[1]["title"])
	assert.Equal(t, "Gadget", table.Rows[1]["title"].Text())
}

func TestBuildTableZeroItemsKeepsRequestedColumns(t *testing.T) {
	fields := models.FieldList([]string{"title", "price"})

	table := BuildTable(fields, nil)

	assert.Equal(t, []string{"title", "price"}, table.Columns)
	assert.Empty(t, table.Rows)
	assert.Zero(t, table.Metadata.TotalRows)
	assert.Empty(t, table.Metadata.GeneratedFields)
}

func TestBuildTableDeterministic(t *testing.T) {
	fields := models.FieldList([]string{"title", "price"})
	items := []models.ResolvedItem{
		resolvedWith(fields,
			models.ExtractedResult("title", models.StringValue("Widget")),
			models.GeneratedResult("price", "9.99"),
		),
	}

	first := BuildTable(fields, items)
	second := BuildTable(fields, items)
	assert.Equal(t, first, second)
}
