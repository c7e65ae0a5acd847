package engine

import (
	"errors"
	"testing"
	"time"

	"github.com/raphaelgruber/contentd/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskManagerLaunchCompletes(t *testing.T) {
	parser := &fakeParser{fields: []string{"title"}}
	scraper := &fakeScraper{items: []models.ContentItem{itemWith("title", "Widget")}}
	m := NewTaskManager(newTestOrchestrator(parser, scraper), testLogger())

	record := m.Launch("https://example.com", "titles", nil)
	require.NotEmpty(t, record.ID)

	require.Eventually(t, func() bool {
		return m.Get(record.ID).Snapshot().Status == models.TaskStatusCompleted
	}, 5*time.Second, 10*time.Millisecond)

	snapshot := m.Get(record.ID).Snapshot()
	require.NotNil(t, snapshot.Result)
	assert.Equal(t, 1, snapshot.Progress)
	assert.Equal(t, 1, snapshot.Total)
	require.NotNil(t, snapshot.CompletedAt)
}

func TestTaskManagerLaunchFailsOnParseError(t *testing.T) {
	parser := &fakeParser{err: errors.New("model unavailable")}
	m := NewTaskManager(newTestOrchestrator(parser, &fakeScraper{}), testLogger())

	record := m.Launch("https://example.com", "anything", nil)

	require.Eventually(t, func() bool {
		return m.Get(record.ID).Snapshot().Status == models.TaskStatusFailed
	}, 5*time.Second, 10*time.Millisecond)

	snapshot := m.Get(record.ID).Snapshot()
	assert.Contains(t, snapshot.Error, "model unavailable")
}

func TestTaskManagerGetUnknown(t *testing.T) {
	m := NewTaskManager(newTestOrchestrator(&fakeParser{}, &fakeScraper{}), testLogger())
	assert.Nil(t, m.Get("missing"))
}

func TestTaskManagerListOrder(t *testing.T) {
	parser := &fakeParser{fields: []string{"title"}}
	m := NewTaskManager(newTestOrchestrator(parser, &fakeScraper{}), testLogger())

	first := m.Launch("https://one.example.com", "titles", nil)
	time.Sleep(5 * time.Millisecond)
	second := m.Launch("https://two.example.com", "titles", nil)

	list := m.List()
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID, "most recent first")
	assert.Equal(t, first.ID, list[1].ID)
}
