package cli

import (
	"context"
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check server liveness",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := apiClient.Health(context.Background()); err != nil {
			return fmt.Errorf("server unhealthy: %w", err)
		}
		fmt.Println("Server is healthy")
		return nil
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show server operation metrics",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	snapshot, err := apiClient.Stats(context.Background())
	if err != nil {
		return fmt.Errorf("get stats: %w", err)
	}

	fmt.Printf("Uptime: %.0fs\n\n", snapshot.UptimeSeconds)

	names := make([]string, 0, len(snapshot.Operations))
	for name := range snapshot.Operations {
		names = append(names, name)
	}
	sort.Strings(names)

	if len(names) == 0 {
		fmt.Println("No operations recorded yet")
		return nil
	}

	fmt.Printf("%-20s %8s %8s %12s %12s %12s\n", "OPERATION", "COUNT", "ERRORS", "AVG MS", "MIN MS", "MAX MS")
	for _, name := range names {
		op := snapshot.Operations[name]
		fmt.Printf("%-20s %8d %8d %12.1f %12d %12d\n",
			name, op.Count, op.Errors, op.AvgTimeMs, op.MinTimeMs, op.MaxTimeMs)
	}
	return nil
}
