// Command execution for CLI commands.
//
// Information Hiding:
// - Provider/index/agent wiring hidden
// - Output formatting hidden

package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/richinex/inquest/agent"
	"github.com/richinex/inquest/citations"
	"github.com/richinex/inquest/config"
	"github.com/richinex/inquest/index"
	"github.com/richinex/inquest/llm"
	"github.com/richinex/inquest/model"
	"github.com/richinex/inquest/storage"
	"github.com/richinex/inquest/tools"
)

// Options holds CLI execution options.
type Options struct {
	Provider string
	MaxLoops int
	Verbose  bool
}

// DefaultOptions returns default CLI options.
func DefaultOptions() Options {
	return Options{
		MaxLoops: agent.DefaultMaxLoops,
		Verbose:  false,
	}
}

// investigation bundles everything one turn-capable agent needs.
type investigation struct {
	agent   *agent.Agent
	session *llm.Session
	engine  *index.Client
	logger  *zap.Logger
}

func newInvestigation(opts Options) (*investigation, error) {
	provider, err := createProvider(opts.Provider)
	if err != nil {
		return nil, err
	}

	settings, err := config.New(opts.Provider)
	if err != nil {
		return nil, err
	}

	logger := zap.NewNop()
	if opts.Verbose {
		logger, err = zap.NewDevelopment()
		if err != nil {
			return nil, fmt.Errorf("failed to create logger: %w", err)
		}
	}

	engine := index.NewClient(index.Options{
		BaseURL:    settings.Index.BaseURL,
		Index:      settings.Index.Index,
		DocBaseURL: settings.Index.DocBaseURL,
		Timeout:    settings.Index.Timeout,
		Logger:     logger,
	})

	agentCfg := agent.DefaultConfig()
	if opts.MaxLoops > 0 {
		agentCfg.MaxLoops = opts.MaxLoops
	} else {
		agentCfg.MaxLoops = settings.Agent.MaxLoops
	}

	session := llm.NewSession(provider, agentCfg.SystemPrompt, tools.Definitions())
	dispatcher := tools.NewDispatcher(engine, logger)
	verifier := citations.NewValidator(engine.DocumentContent)

	a := agent.New(session, dispatcher, verifier, agentCfg, logger)
	if opts.Verbose {
		a = a.WithStep(printStep)
	}

	return &investigation{agent: a, session: session, engine: engine, logger: logger}, nil
}

// Ask runs a single investigation turn and prints the answer.
func Ask(ctx context.Context, question string, opts Options) error {
	inv, err := newInvestigation(opts)
	if err != nil {
		return err
	}

	fmt.Println("Investigating...")
	fmt.Println()

	outcome, err := inv.agent.Investigate(ctx, question)
	if err != nil {
		var unverified *agent.UnverifiedDraftError
		if errors.As(err, &unverified) {
			printUnverified(unverified)
			return nil
		}
		return err
	}

	fmt.Printf("%s\n\n", citations.RenderAnswer(outcome.Text))
	fmt.Printf("(%d tool calls)\n", outcome.LoopCount)
	return nil
}

// Chat starts an interactive investigation session with persistence.
func Chat(ctx context.Context, conversationID, dbPath string, opts Options) error {
	inv, err := newInvestigation(opts)
	if err != nil {
		return err
	}

	store, err := storage.OpenSqlite(resolveDBPath(dbPath))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer store.Close()

	if conversationID == "" {
		conversationID, err = store.CreateConversation(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("Started conversation %s\n", conversationID)
	} else {
		exists, err := store.Exists(ctx, conversationID)
		if err != nil {
			return err
		}
		if !exists {
			return fmt.Errorf("unknown conversation: %s", conversationID)
		}
		messages, err := store.LoadMessages(ctx, conversationID)
		if err != nil {
			return err
		}
		fmt.Printf("Resuming conversation %s (%d messages)\n\n", conversationID, len(messages))
		for _, msg := range messages {
			fmt.Printf("[%s] %s\n\n", msg.Role, msg.Content)
		}
	}

	fmt.Println("Ask a question. Type 'exit' to quit.")
	fmt.Println()

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}

		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		if input == "exit" || input == "quit" {
			break
		}

		if err := store.TitleFromPrompt(ctx, conversationID, input); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to update title: %v\n", err)
		}
		if err := store.AppendMessage(ctx, conversationID, storage.Message{Role: "user", Content: input}); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to save message: %v\n", err)
		}

		outcome, err := inv.agent.Investigate(ctx, input)
		if err != nil {
			var unverified *agent.UnverifiedDraftError
			if !errors.As(err, &unverified) {
				return err
			}
			printUnverified(unverified)
			saveErr := store.AppendMessage(ctx, conversationID, storage.Message{
				Role:      "assistant",
				Content:   "UNVERIFIED DRAFT:\n\n" + unverified.Draft,
				ToolCalls: unverified.ToolLog,
			})
			if saveErr != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to save message: %v\n", saveErr)
			}
			continue
		}

		fmt.Printf("\n%s\n\n", citations.RenderAnswer(outcome.Text))

		if err := store.AppendMessage(ctx, conversationID, storage.Message{
			Role:      "assistant",
			Content:   outcome.Text,
			ToolCalls: outcome.ToolLog,
		}); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to save message: %v\n", err)
		}
	}

	return scanner.Err()
}

// Conversations lists saved conversations.
func Conversations(ctx context.Context, dbPath string) error {
	store, err := storage.OpenSqlite(resolveDBPath(dbPath))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer store.Close()

	conversations, err := store.ListConversations(ctx)
	if err != nil {
		return err
	}
	if len(conversations) == 0 {
		fmt.Println("No saved conversations.")
		return nil
	}
	for _, conv := range conversations {
		fmt.Printf("%s  %s  (updated %s)\n", conv.ID, conv.Title, conv.UpdatedAt.Format("2006-01-02 15:04"))
	}
	return nil
}

// Health checks connectivity to the document index.
func Health(ctx context.Context, opts Options) error {
	settings, err := config.New(firstNonEmpty(opts.Provider, "gemini"))
	if err != nil {
		return err
	}

	engine := index.NewClient(index.Options{
		BaseURL:    settings.Index.BaseURL,
		Index:      settings.Index.Index,
		DocBaseURL: settings.Index.DocBaseURL,
		Timeout:    settings.Index.Timeout,
	})

	ok, detail := engine.Healthcheck(ctx)
	if !ok {
		fmt.Printf("Index unreachable: %s\n", detail)
		return fmt.Errorf("healthcheck failed")
	}
	fmt.Printf("Index OK: %s\n", detail)
	return nil
}

// ListOps prints the archive operations exposed to the model.
func ListOps(verbose bool) {
	fmt.Println("Archive operations:")
	fmt.Println()
	for _, def := range tools.Definitions() {
		fmt.Printf("  %s\n", def.Name)
		fmt.Printf("    %s\n", def.Description)
		if verbose {
			if props, ok := def.Parameters["properties"].(map[string]any); ok {
				fmt.Println("    Parameters:")
				for name, raw := range props {
					if prop, ok := raw.(map[string]any); ok {
						desc, _ := prop["description"].(string)
						fmt.Printf("      %s: %s\n", name, desc)
					}
				}
			}
		}
		fmt.Println()
	}
}

func printStep(step int, record model.ToolCallRecord) {
	fmt.Printf("[step %d] %s\n", step, tools.FormatCallSignature(record.Tool, record.Args))
	if record.Intent != "" {
		fmt.Printf("         intent: %s\n", tools.SummarizeIntent(record.Intent, 120))
	}
	if record.OutputPreview != "" {
		fmt.Printf("%s\n", indent(record.OutputPreview, "         "))
	}
}

func printUnverified(unverified *agent.UnverifiedDraftError) {
	fmt.Fprintf(os.Stderr, "\n%s\n\n", unverified.Error())
	fmt.Printf("--- UNVERIFIED DRAFT ---\n%s\n--- END UNVERIFIED DRAFT ---\n\n", citations.RenderAnswer(unverified.Draft))
	fmt.Printf("(%d tool calls)\n", unverified.LoopCount)
}

func createProvider(providerName string) (llm.Provider, error) {
	if providerName == "" {
		return nil, fmt.Errorf("--provider is required for this command")
	}

	providerType, err := llm.ParseProviderType(providerName)
	if err != nil {
		return nil, err
	}

	settings, err := config.New(providerName)
	if err != nil {
		return nil, err
	}

	apiKey, err := config.APIKeyFor(providerName)
	if err != nil {
		return nil, err
	}

	return providerType.
		Model(settings.LLM.Model).
		MaxTokens(settings.LLM.MaxTokens).
		Temperature(float32(settings.LLM.Temperature)).
		APIKey(apiKey)
}

// resolveDBPath prefers the explicit flag, then the environment, then the
// default file in the working directory.
func resolveDBPath(dbPath string) string {
	return firstNonEmpty(dbPath, os.Getenv("INQUEST_DB_PATH"), "inquest.db")
}

func indent(text, prefix string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = prefix + line
	}
	return strings.Join(lines, "\n")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
