package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/raphaelgruber/contentd/internal/models"
	"github.com/spf13/cobra"
)

// maxCellLen keeps table cells readable in a terminal.
const maxCellLen = 60

var getCmd = &cobra.Command{
	Use:   "get <task-id>",
	Short: "Show status and results of a task",
	Long: `Show the status of a task and, once completed, its result table.

Examples:
  contentctl get 6f1c2a3b-...
  contentctl get 6f1c2a3b-... --server http://remote:8464`,
	Args: cobra.ExactArgs(1),
	RunE: runGet,
}

func init() {
	rootCmd.AddCommand(getCmd)
}

func runGet(cmd *cobra.Command, args []string) error {
	status, err := apiClient.GetTask(context.Background(), args[0])
	if err != nil {
		return fmt.Errorf("get task: %w", err)
	}

	fmt.Printf("Task: %s\n", status.TaskID)
	fmt.Printf("  URL: %s\n", status.URL)
	fmt.Printf("  Status: %s\n", status.Status)
	if status.Total > 0 {
		fmt.Printf("  Progress: %d/%d\n", status.Progress, status.Total)
	}
	fmt.Printf("  Started: %s\n", status.StartedAt.Format(time.RFC3339))
	if status.CompletedAt != nil {
		fmt.Printf("  Completed: %s\n", status.CompletedAt.Format(time.RFC3339))
		fmt.Printf("  Duration: %s\n", status.CompletedAt.Sub(status.StartedAt).Round(time.Second))
	}
	if status.Error != "" {
		fmt.Printf("  Error: %s\n", status.Error)
	}

	if status.Result != nil && status.Result.Table != nil {
		fmt.Println()
		printTable(*status.Result.Table)
	}
	return nil
}

// printTable renders the result table with aligned columns. Error cells show
// as "-".
func printTable(table models.ContentTable) {
	if len(table.Columns) == 0 {
		fmt.Println("No columns in result table")
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, strings.Join(table.Columns, "\t"))

	for _, row := range table.Rows {
		cells := make([]string, 0, len(table.Columns))
		for _, col := range table.Columns {
			cells = append(cells, cellText(row[col]))
		}
		fmt.Fprintln(w, strings.Join(cells, "\t"))
	}
	w.Flush()

	fmt.Printf("\n%d rows", table.Metadata.TotalRows)
	if len(table.Metadata.GeneratedFields) > 0 {
		fmt.Printf(", generated fields: %s", strings.Join(table.Metadata.GeneratedFields, ", "))
	}
	fmt.Println()
}

func cellText(v *models.Value) string {
	if v == nil {
		return "-"
	}
	text := strings.ReplaceAll(v.Text(), "\n", " ")
	if len(text) > maxCellLen {
		return text[:maxCellLen-3] + "..."
	}
	if text == "" {
		return "-"
	}
	return text
}
