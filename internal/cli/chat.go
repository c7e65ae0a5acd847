package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/raphaelgruber/contentd/internal/models"
	"github.com/spf13/cobra"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Open an interactive dialogue session with the agent",
	Long: `Open an interactive dialogue session with the agent over WebSocket.

Each line you type is sent as one message and answered with one reply.
End the session with Ctrl+D or by typing "exit".`,
	Args: cobra.NoArgs,
	RunE: runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, args []string) error {
	clientID := uuid.New().String()

	conn, greeting, err := apiClient.Dialogue(context.Background(), clientID)
	if err != nil {
		return fmt.Errorf("open dialogue: %w", err)
	}
	defer conn.Close()

	fmt.Printf("agent> %s\n", greeting.Message)

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("you> ")
		if !scanner.Scan() {
			break
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			break
		}

		reply, err := conn.Send(line, models.DialogueInstruction)
		if err != nil {
			return fmt.Errorf("dialogue: %w", err)
		}

		prefix := "agent"
		if reply.MessageType == models.DialogueError {
			prefix = "agent (error)"
		}
		fmt.Printf("%s> %s\n", prefix, reply.Message)
	}

	fmt.Println("Session closed.")
	return scanner.Err()
}
