// Package cli provides the command-line interface for contentctl.
package cli

import (
	"github.com/raphaelgruber/contentd/internal/client"
	"github.com/spf13/cobra"
)

var (
	// Version is set at build time.
	Version = "0.1.0"

	// Global flags
	serverURL string
	verbose   bool

	// API client, created before every command runs
	apiClient *client.Client
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "contentctl",
	Short: "Instruction-driven web content retrieval",
	Long: `Contentctl submits content retrieval tasks to a contentd server.

Give it a URL and plain-language instructions describing the information
you want. The server scrapes the page, fills gaps with web search and
generation, and returns the results as a table.`,
	Version: Version,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		apiClient = client.New(serverURL)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&serverURL, "server", "s", "", "contentd server URL (default $CONTENTD_SERVER_URL or http://localhost:8464)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
