package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/raphaelgruber/contentd/internal/server"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	taskInstructions string
	taskUser         string
	taskWatch        bool
)

var taskCmd = &cobra.Command{
	Use:   "task <url>",
	Short: "Submit a content retrieval task",
	Long: `Submit a content retrieval task for a URL with plain-language instructions.

The task runs in the background on the server; use --watch to follow its
progress, or 'contentctl get <task-id>' later.

For sites that need a login, pass --user. The password is prompted
interactively and never appears in shell history.

Examples:
  contentctl task https://example.com/products -i "get the name, price and rating of every product"
  contentctl task https://news.example.com -i "title, author and summary of each article" --watch
  contentctl task https://portal.example.com/reports -i "report name and date" --user alice`,
	Args: cobra.ExactArgs(1),
	RunE: runTask,
}

func init() {
	taskCmd.Flags().StringVarP(&taskInstructions, "instructions", "i", "", "what information to retrieve (required)")
	taskCmd.Flags().StringVarP(&taskUser, "user", "u", "", "username for sites that require login")
	taskCmd.Flags().BoolVarP(&taskWatch, "watch", "w", false, "follow task progress until completion")
	_ = taskCmd.MarkFlagRequired("instructions")
	rootCmd.AddCommand(taskCmd)
}

func runTask(cmd *cobra.Command, args []string) error {
	req := server.TaskRequest{
		URL:          args[0],
		Instructions: strings.TrimSpace(taskInstructions),
	}

	if taskUser != "" {
		password, err := promptPassword(fmt.Sprintf("Password for %s: ", taskUser))
		if err != nil {
			return fmt.Errorf("read password: %w", err)
		}
		req.Username = taskUser
		req.Password = password
	}

	accepted, err := apiClient.SubmitTask(context.Background(), req)
	if err != nil {
		return fmt.Errorf("submit task: %w", err)
	}

	if !taskWatch {
		fmt.Printf("Task %s submitted (%s)\n", accepted.TaskID, accepted.Status)
		fmt.Printf("Check progress with: contentctl get %s\n", accepted.TaskID)
		return nil
	}

	return watchTask(accepted.TaskID)
}

// promptPassword reads a password from the terminal without echo.
func promptPassword(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	raw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}
