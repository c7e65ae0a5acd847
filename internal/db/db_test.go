//go:build integration

// Package db provides integration tests for SurrealDB operations.
package db

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"testing"
	"time"

	"github.com/raphaelgruber/contentd/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

var testDB *Client
var testContainer testcontainers.Container

// TestMain sets up and tears down the SurrealDB container for all tests.
func TestMain(m *testing.M) {
	// Disable ryuk (cleanup container) as it can cause issues in some environments
	os.Setenv("TESTCONTAINERS_RYUK_DISABLED", "true")

	ctx := context.Background()

	var err error
	testContainer, err = testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "surrealdb/surrealdb:v3.0.0-beta.1",
			ExposedPorts: []string{"8000/tcp"},
			Cmd:          []string{"start", "--log", "info", "--user", "root", "--pass", "root"},
			WaitingFor:   wait.ForLog("Started web server").WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		log.Fatalf("Failed to start SurrealDB container: %v", err)
	}

	host, err := testContainer.Host(ctx)
	if err != nil {
		log.Fatalf("Failed to get container host: %v", err)
	}
	// Workaround: testcontainers may return "null" as host in some environments
	if host == "" || host == "null" {
		host = "localhost"
	}
	mappedPort, err := testContainer.MappedPort(ctx, "8000")
	if err != nil {
		log.Fatalf("Failed to get mapped port: %v", err)
	}

	testDB, err = NewClient(ctx, Config{
		URL:       fmt.Sprintf("ws://%s:%s/rpc", host, mappedPort.Port()),
		Namespace: "test",
		Database:  "test",
		Username:  "root",
		Password:  "root",
		AuthLevel: "root",
	}, nil)
	if err != nil {
		log.Fatalf("Failed to connect to test database: %v", err)
	}

	if err := testDB.InitSchema(ctx); err != nil {
		log.Fatalf("Failed to initialize schema: %v", err)
	}

	code := m.Run()

	_ = testDB.Close(ctx)
	_ = testContainer.Terminate(ctx)

	os.Exit(code)
}

func sampleItems() []models.ResolvedItem {
	fields := models.FieldList([]string{"title", "price", "summary"})
	first := models.NewResolvedItem(fields)
	first.Set(models.ExtractedResult("title", models.StringValue("Widget")))
	first.Set(models.ExtractedResult("price", models.StringValue("9.99")))
	first.Set(models.GeneratedResult("summary", "a fine widget"))

	second := models.NewResolvedItem(fields)
	second.Set(models.ExtractedResult("title", models.StringValue("Gadget")))
	second.Set(models.ErrorResult("price", "generation timed out"))
	second.Set(models.GeneratedResult("summary", "a fine gadget"))

	return []models.ResolvedItem{*first, *second}
}

func TestStoreAndGetTask(t *testing.T) {
	ctx := context.Background()

	task := models.Task{
		ID:           "task-round-trip",
		URL:          "https://example.com/products",
		Instructions: "get the title and price of every product",
		Status:       models.TaskStatusRunning,
		Metadata:     map[string]string{"fields_extracted": "title,price"},
	}
	require.NoError(t, testDB.StoreTask(ctx, task))

	// re-storing updates in place
	task.Status = models.TaskStatusCompleted
	require.NoError(t, testDB.StoreTask(ctx, task))

	got, err := testDB.GetTask(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, task.URL, got.URL)
	assert.Equal(t, task.Instructions, got.Instructions)
	assert.Equal(t, models.TaskStatusCompleted, got.Status)
	assert.Equal(t, "title,price", got.Metadata["fields_extracted"])
}

func TestGetTaskNotFound(t *testing.T) {
	_, err := testDB.GetTask(context.Background(), "does-not-exist")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestStoreAndGetItems(t *testing.T) {
	ctx := context.Background()
	items := sampleItems()

	require.NoError(t, testDB.StoreItems(ctx, "task-items", items))
	// replace is idempotent
	require.NoError(t, testDB.StoreItems(ctx, "task-items", items))

	got, err := testDB.GetItems(ctx, "task-items")
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, []string{"title", "price", "summary"}, got[0].FieldNames())

	price, ok := got[1].Get("price")
	require.True(t, ok)
	assert.Equal(t, models.SourceError, price.Source)
	assert.Nil(t, price.Value)
	assert.Equal(t, "generation timed out", price.Detail)

	summary, ok := got[1].Get("summary")
	require.True(t, ok)
	assert.Equal(t, models.SourceGenerated, summary.Source)
	assert.Equal(t, "a fine gadget", summary.Value.Text())
}

func TestGetItemsEmpty(t *testing.T) {
	got, err := testDB.GetItems(context.Background(), "task-without-items")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestStoreAndGetTable(t *testing.T) {
	ctx := context.Background()

	widget := models.StringValue("Widget")
	price := models.StringValue("9.99")
	table := models.ContentTable{
		Columns: []string{"title", "price"},
		Rows: []models.Row{
			{"title": &widget, "price": &price},
			{"title": &widget, "price": nil},
		},
		Metadata: models.TableMetadata{
			TotalRows:       2,
			GeneratedFields: []string{"price"},
		},
	}

	require.NoError(t, testDB.StoreTable(ctx, "task-table", table))

	got, err := testDB.GetTable(ctx, "task-table")
	require.NoError(t, err)
	assert.Equal(t, table.Columns, got.Columns)
	require.Len(t, got.Rows, 2)
	assert.Equal(t, "Widget", got.Rows[0]["title"].Text())
	assert.Nil(t, got.Rows[1]["price"])
	assert.Equal(t, 2, got.Metadata.TotalRows)
	assert.Equal(t, []string{"price"}, got.Metadata.GeneratedFields)
}

func TestGetTableNotFound(t *testing.T) {
	_, err := testDB.GetTable(context.Background(), "no-table")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestWipeData(t *testing.T) {
	ctx := context.Background()
	require.NoError(t, testDB.StoreTask(ctx, models.Task{ID: "task-wipe", URL: "https://x", Instructions: "y", Status: models.TaskStatusPending}))
	require.NoError(t, testDB.WipeData(ctx))

	_, err := testDB.GetTask(ctx, "task-wipe")
	assert.True(t, errors.Is(err, ErrNotFound))
}
