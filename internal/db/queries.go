package db

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/raphaelgruber/contentd/internal/engine"
	"github.com/raphaelgruber/contentd/internal/metrics"
	"github.com/raphaelgruber/contentd/internal/models"
	"github.com/surrealdb/surrealdb.go"
)

// Compile-time check that Client implements the engine store capability.
var _ engine.Store = (*Client)(nil)

// SetCollector attaches a metrics collector; db query timings are recorded
// under OpDBQuery.
func (c *Client) SetCollector(collector *metrics.Collector) {
	c.collector = collector
}

func (c *Client) record(start time.Time, err error) {
	if c.collector == nil {
		return
	}
	c.collector.Record(metrics.OpDBQuery, time.Since(start), err)
}

// taskRow is the stored shape of a content task.
type taskRow struct {
	URL          string            `json:"url"`
	Instructions string            `json:"instructions"`
	Status       string            `json:"status"`
	Metadata     map[string]string `json:"metadata,omitempty"`
}

// itemRow is the stored shape of one resolved field of one item.
type itemRow struct {
	TaskID     string  `json:"task_id"`
	ItemIndex  int     `json:"item_index"`
	FieldIndex int     `json:"field_index"`
	FieldName  string  `json:"field_name"`
	FieldValue *string `json:"field_value,omitempty"`
	Source     string  `json:"source"`
	Detail     *string `json:"detail,omitempty"`
}

// tableRow is the stored shape of a task's final table.
type tableRow struct {
	Columns         []string `json:"columns"`
	Rows            []string `json:"rows"`
	TotalRows       int      `json:"total_rows"`
	GeneratedFields []string `json:"generated_fields"`
}

// StoreTask upserts a task record. Idempotent: re-storing the same task
// updates status and metadata in place.
func (c *Client) StoreTask(ctx context.Context, task models.Task) (err error) {
	start := time.Now()
	defer func() { c.record(start, err) }()

	_, err = surrealdb.Query[any](ctx, c.db, `
		UPSERT type::record("content_task", $id) SET
			url = $url,
			instructions = $instructions,
			status = $status,
			metadata = $metadata,
			updated = time::now()
	`, map[string]any{
		"id":           task.ID,
		"url":          task.URL,
		"instructions": task.Instructions,
		"status":       string(task.Status),
		"metadata":     task.Metadata,
	})
	if err != nil {
		return fmt.Errorf("store task: %w", wrapQueryError(err))
	}
	return nil
}

// StoreItems replaces the stored items for a task with the given resolved
// items, one row per field. Replace-then-insert keeps the sink idempotent.
func (c *Client) StoreItems(ctx context.Context, taskID string, items []models.ResolvedItem) (err error) {
	start := time.Now()
	defer func() { c.record(start, err) }()

	if _, err = surrealdb.Query[any](ctx, c.db, `
		DELETE content_item WHERE task_id = $task_id
	`, map[string]any{"task_id": taskID}); err != nil {
		return fmt.Errorf("clear items: %w", wrapQueryError(err))
	}

	for itemIdx, item := range items {
		for fieldIdx, name := range item.FieldNames() {
			res, ok := item.Get(name)
			if !ok {
				continue
			}

			row := itemRow{
				TaskID:     taskID,
				ItemIndex:  itemIdx,
				FieldIndex: fieldIdx,
				FieldName:  name,
				Source:     string(res.Source),
			}
			if res.Value != nil {
				encoded, err := json.Marshal(res.Value)
				if err != nil {
					return fmt.Errorf("encode field %s: %w", name, err)
				}
				s := string(encoded)
				row.FieldValue = &s
			}
			if res.Detail != "" {
				row.Detail = &res.Detail
			}

			if _, err = surrealdb.Query[any](ctx, c.db, `
				CREATE content_item CONTENT $row
			`, map[string]any{"row": row}); err != nil {
				return fmt.Errorf("store item %d field %s: %w", itemIdx, name, wrapQueryError(err))
			}
		}
	}
	return nil
}

// StoreTable upserts the final table for a task, rows JSON-serialized.
func (c *Client) StoreTable(ctx context.Context, taskID string, table models.ContentTable) (err error) {
	start := time.Now()
	defer func() { c.record(start, err) }()

	rows := make([]string, 0, len(table.Rows))
	for i, row := range table.Rows {
		encoded, err := json.Marshal(row)
		if err != nil {
			return fmt.Errorf("encode row %d: %w", i, err)
		}
		rows = append(rows, string(encoded))
	}

	_, err = surrealdb.Query[any](ctx, c.db, `
		UPSERT type::record("content_table", $id) SET
			columns = $columns,
			rows = $rows,
			total_rows = $total_rows,
			generated_fields = $generated_fields
	`, map[string]any{
		"id":               taskID,
		"columns":          table.Columns,
		"rows":             rows,
		"total_rows":       table.Metadata.TotalRows,
		"generated_fields": table.Metadata.GeneratedFields,
	})
	if err != nil {
		return fmt.Errorf("store table: %w", wrapQueryError(err))
	}
	return nil
}

// GetTask retrieves a task by ID. Returns ErrNotFound if it does not exist.
func (c *Client) GetTask(ctx context.Context, taskID string) (t *models.Task, err error) {
	start := time.Now()
	defer func() { c.record(start, err) }()

	results, err := surrealdb.Query[[]taskRow](ctx, c.db, `
		SELECT url, instructions, status, metadata
		FROM type::record("content_task", $id)
	`, map[string]any{"id": taskID})
	if err != nil {
		return nil, fmt.Errorf("get task: %w", wrapQueryError(err))
	}

	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return nil, fmt.Errorf("get task %s: %w", taskID, ErrNotFound)
	}

	row := (*results)[0].Result[0]
	return &models.Task{
		ID:           taskID,
		URL:          row.URL,
		Instructions: row.Instructions,
		Status:       models.TaskStatus(row.Status),
		Metadata:     row.Metadata,
	}, nil
}

// GetItems retrieves the resolved items for a task, reassembled in item and
// field order.
func (c *Client) GetItems(ctx context.Context, taskID string) (items []models.ResolvedItem, err error) {
	start := time.Now()
	defer func() { c.record(start, err) }()

	results, err := surrealdb.Query[[]itemRow](ctx, c.db, `
		SELECT task_id, item_index, field_index, field_name, field_value, source, detail
		FROM content_item
		WHERE task_id = $task_id
		ORDER BY item_index, field_index
	`, map[string]any{"task_id": taskID})
	if err != nil {
		return nil, fmt.Errorf("get items: %w", wrapQueryError(err))
	}

	if results == nil || len(*results) == 0 {
		return []models.ResolvedItem{}, nil
	}

	grouped := make(map[int]*models.ResolvedItem)
	maxIdx := -1
	for _, row := range (*results)[0].Result {
		item, ok := grouped[row.ItemIndex]
		if !ok {
			item = models.NewResolvedItem(nil)
			grouped[row.ItemIndex] = item
			if row.ItemIndex > maxIdx {
				maxIdx = row.ItemIndex
			}
		}

		res := models.FieldResult{
			Name:   row.FieldName,
			Source: models.Source(row.Source),
		}
		if row.FieldValue != nil {
			var v models.Value
			if err := json.Unmarshal([]byte(*row.FieldValue), &v); err != nil {
				return nil, fmt.Errorf("decode field %s: %w", row.FieldName, err)
			}
			res.Value = &v
		}
		if row.Detail != nil {
			res.Detail = *row.Detail
		}
		item.Set(res)
	}

	items = make([]models.ResolvedItem, 0, len(grouped))
	for i := 0; i <= maxIdx; i++ {
		if item, ok := grouped[i]; ok {
			items = append(items, *item)
		}
	}
	return items, nil
}

// GetTable retrieves the final table for a task. Returns ErrNotFound if no
// table was stored.
func (c *Client) GetTable(ctx context.Context, taskID string) (table *models.ContentTable, err error) {
	start := time.Now()
	defer func() { c.record(start, err) }()

	results, err := surrealdb.Query[[]tableRow](ctx, c.db, `
		SELECT columns, rows, total_rows, generated_fields
		FROM type::record("content_table", $id)
	`, map[string]any{"id": taskID})
	if err != nil {
		return nil, fmt.Errorf("get table: %w", wrapQueryError(err))
	}

	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return nil, fmt.Errorf("get table %s: %w", taskID, ErrNotFound)
	}

	row := (*results)[0].Result[0]
	rows := make([]models.Row, 0, len(row.Rows))
	for i, encoded := range row.Rows {
		var r models.Row
		if err := json.Unmarshal([]byte(encoded), &r); err != nil {
			return nil, fmt.Errorf("decode row %d: %w", i, err)
		}
		rows = append(rows, r)
	}

	return &models.ContentTable{
		Columns: row.Columns,
		Rows:    rows,
		Metadata: models.TableMetadata{
			TotalRows:       row.TotalRows,
			GeneratedFields: row.GeneratedFields,
		},
	}, nil
}
