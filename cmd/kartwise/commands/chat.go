package commands

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kartwise/kartwise/internal/logging"
)

// NewChatCmd constructs the `kartwise chat` command. With arguments it
// answers a single question and exits; without, it runs an interactive REPL.
func NewChatCmd() *cobra.Command {
	var keywordOnly bool

	cmd := &cobra.Command{
		Use:   "chat [question]",
		Short: "Chat with the shopping assistant",
		Long: `Chat with the Kartwise shopping assistant.

On startup the knowledge base is built from the catalog (or the built-in
fallback set) and indexed. Inside the interactive session, type 'refresh'
to rebuild the knowledge base and 'quit' or 'exit' to leave.

Examples:
  kartwise chat
  kartwise chat "smartphones under 15000"
  kartwise chat --keyword-only "delivery policy"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			log := logging.New()
			ctx = logging.WithLogger(ctx, log)

			asst, _, cleanup, err := buildAssistant(ctx, log, keywordOnly)
			if err != nil {
				return fmt.Errorf("chat: %w", err)
			}
			defer cleanup()

			if len(args) > 0 {
				reply, err := asst.Chat(ctx, strings.Join(args, " "))
				if err != nil {
					return fmt.Errorf("chat: %w", err)
				}
				fmt.Println(reply)
				return nil
			}

			fmt.Printf("Kartwise assistant ready (%d records). Type 'quit' to exit, 'refresh' to rebuild.\n\n", asst.Records())

			scanner := bufio.NewScanner(os.Stdin)
			for {
				fmt.Print("you> ")
				if !scanner.Scan() {
					fmt.Println()
					return scanner.Err()
				}
				line := strings.TrimSpace(scanner.Text())
				switch {
				case line == "":
					continue
				case line == "quit", line == "exit":
					fmt.Println("Goodbye! Happy shopping.")
					return nil
				case line == "refresh":
					if err := asst.Refresh(ctx); err != nil {
						fmt.Printf("refresh failed: %v\n", err)
						continue
					}
					fmt.Printf("Knowledge base rebuilt (%d records).\n", asst.Records())
					continue
				}

				reply, err := asst.Chat(ctx, line)
				if err != nil {
					fmt.Printf("error: %v\n", err)
					continue
				}
				fmt.Printf("\n%s\n\n", reply)
			}
		},
	}

	cmd.Flags().BoolVar(&keywordOnly, "keyword-only", false, "Skip the Qdrant vector index and use keyword search only")

	return cmd
}
