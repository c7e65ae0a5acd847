package models

// Row maps column names to cell values. Errored or absent fields render as
// nil so rows stay rectangular.
type Row map[string]*Value

// TableMetadata carries provenance counts for a content table.
type TableMetadata struct {
	TotalRows int `json:"total_rows"`
	// GeneratedFields lists columns where at least one row's value was
	// synthesized rather than extracted, in column order.
	GeneratedFields []string `json:"generated_fields"`
}

// ContentTable is the column-oriented final output of a task.
type ContentTable struct {
	Columns  []string      `json:"columns"`
	Rows     []Row         `json:"rows"`
	Metadata TableMetadata `json:"metadata"`
}

// TaskStatus is the lifecycle state of a content retrieval task.
type TaskStatus string

const (
	TaskStatusPending   TaskStatus = "pending"
	TaskStatusRunning   TaskStatus = "running"
	TaskStatusCompleted TaskStatus = "completed"
	TaskStatusFailed    TaskStatus = "failed"
)

// Task is the persisted record of a content retrieval task.
type Task struct {
	ID           string            `json:"task_id"`
	URL          string            `json:"url"`
	Instructions string            `json:"instructions"`
	Status       TaskStatus        `json:"status"`
	Metadata     map[string]string `json:"metadata,omitempty"`
}

// TaskResult is the full outcome of one task run.
type TaskResult struct {
	TaskID   string            `json:"task_id"`
	Status   TaskStatus        `json:"status"`
	Items    []ResolvedItem    `json:"items"`
	Table    *ContentTable     `json:"table,omitempty"`
	Metadata map[string]string `json:"metadata,omitempty"`
	Error    string            `json:"error,omitempty"`
}

// AuthCredentials carries optional login credentials for scraping
// authenticated sites.
type AuthCredentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}
