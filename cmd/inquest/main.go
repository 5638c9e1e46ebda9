// Package main provides the inquest CLI entry point.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/richinex/inquest/cli"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	provider string
	maxLoops int
	verbose  bool
)

func main() {
	// Load .env file if present (ignore "file not found" errors)
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "Warning: failed to load .env file: %v\n", err)
		}
	}

	rootCmd := &cobra.Command{
		Use:   "inquest",
		Short: "Autonomous investigator over an indexed document archive",
		Long: `A CLI tool for investigating questions against an Elasticsearch-indexed
document archive. An LLM agent searches, counts, and reads documents
autonomously, and every answer passes mandatory-read, deep-sweep, and
quote-verification gates before it is shown.`,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVarP(&provider, "provider", "p", "", "LLM provider (openai, anthropic, deepseek, gemini)")
	rootCmd.PersistentFlags().IntVarP(&maxLoops, "max-loops", "m", 0, "Maximum autonomous tool calls per turn (0 = configured default)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Show each tool call as it executes")

	// Add commands
	rootCmd.AddCommand(askCmd())
	rootCmd.AddCommand(chatCmd())
	rootCmd.AddCommand(conversationsCmd())
	rootCmd.AddCommand(healthCmd())
	rootCmd.AddCommand(toolsCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func options() cli.Options {
	return cli.Options{
		Provider: provider,
		MaxLoops: maxLoops,
		Verbose:  verbose,
	}
}

func askCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ask [question]",
		Short: "Run one investigation turn and print the verified answer",
		Long: `Run a single question through the full investigation loop: autonomous
search/count/read calls, then the enforcement gates. Prints the final
answer with citations rendered inline.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.Ask(context.Background(), args[0], options())
		},
	}
}

func chatCmd() *cobra.Command {
	var conversationID string
	var dbPath string

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive investigation session with persistence",
		Long: `Start an interactive session. Each question runs a full investigation
turn; answers and their tool-call logs are saved to SQLite so the
conversation can be resumed later with --conversation.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.Chat(context.Background(), conversationID, dbPath, options())
		},
	}

	cmd.Flags().StringVar(&conversationID, "conversation", "", "Resume an existing conversation by id")
	cmd.Flags().StringVar(&dbPath, "db", "", "Path to the SQLite conversation database (default $INQUEST_DB_PATH or inquest.db)")

	return cmd
}

func conversationsCmd() *cobra.Command {
	var dbPath string

	cmd := &cobra.Command{
		Use:   "conversations",
		Short: "List saved conversations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.Conversations(context.Background(), dbPath)
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "", "Path to the SQLite conversation database (default $INQUEST_DB_PATH or inquest.db)")

	return cmd
}

func healthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check connectivity to the document index",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.Health(context.Background(), options())
		},
	}
}

func toolsCmd() *cobra.Command {
	var showParams bool

	cmd := &cobra.Command{
		Use:   "tools",
		Short: "List the archive operations exposed to the model",
		RunE: func(cmd *cobra.Command, args []string) error {
			cli.ListOps(showParams)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&showParams, "params", "P", false, "Show parameter descriptions")

	return cmd
}
