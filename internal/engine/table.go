package engine

import (
	"github.com/raphaelgruber/contentd/internal/models"
)

// BuildTable normalizes resolved items into a column-oriented table. Pure
// function, no I/O; building twice from the same input yields an identical
// table.
//
// Columns start with the requested fields in declaration order, followed by
// any extra field names encountered across items in first-seen order. Rows
// are rectangular: an errored or absent field renders as nil rather than a
// missing key. Metadata records which columns hold at least one generated
// value.
func BuildTable(fields []models.Field, items []models.ResolvedItem) models.ContentTable {
	columns := make([]string, 0, len(fields))
	seen := make(map[string]bool, len(fields))
	for _, f := range fields {
		if seen[f.Name] {
			continue
		}
		seen[f.Name] = true
		columns = append(columns, f.Name)
	}
	for _, item := range items {
		for _, name := range item.FieldNames() {
			if seen[name] {
				continue
			}
			seen[name] = true
			columns = append(columns, name)
		}
	}

	rows := make([]models.Row, 0, len(items))
	generated := make(map[string]bool)
	for _, item := range items {
		row := make(models.Row, len(columns))
		for _, col := range columns {
			res, ok := item.Get(col)
			if !ok || res.Source == models.SourceError {
				row[col] = nil
				continue
			}
			row[col] = res.Value
			if res.Source == models.SourceGenerated {
				generated[col] = true
			}
		}
		rows = append(rows, row)
	}

	generatedFields := make([]string, 0, len(generated))
	for _, col := range columns {
		if generated[col] {
			generatedFields = append(generatedFields, col)
		}
	}

	return models.ContentTable{
		Columns: columns,
		Rows:    rows,
		Metadata: models.TableMetadata{
			TotalRows:       len(rows),
			GeneratedFields: generatedFields,
		},
	}
}
