// contextd replays a scripted conversation through the context engine
// and prints each turn's context decisions: classified intent,
// conversation mode, window compression, selected modules, and budget
// usage.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/kbrapp1/test-app-1-sub014/pkg/chat"
	"github.com/kbrapp1/test-app-1-sub014/pkg/config"
	"github.com/kbrapp1/test-app-1-sub014/pkg/engine"
	"github.com/kbrapp1/test-app-1-sub014/pkg/intent"
)

// defaultScript is the conversation replayed when no -script file is given.
var defaultScript = []string{
	"Hi there!",
	"What does your product actually do?",
	"How much does the premium plan cost?",
	"We are a team of 20 at Initech, budget around $5k per month",
	"How does it compare to your main competitor?",
	"Can we schedule a demo for next week?",
}

func main() {
	var (
		configPath string
		scriptPath string
		showPrompt bool
	)

	flag.StringVar(&configPath, "config", "", "Path to engine config YAML (default: built-in config)")
	flag.StringVar(&scriptPath, "script", "", "File with one user message per line (default: built-in script)")
	flag.BoolVar(&showPrompt, "prompt", false, "Print the assembled system prompt for each turn")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "contextd - Context Engine Conversation Replayer\n\n")
		fmt.Fprintf(os.Stderr, "Usage:\n")
		fmt.Fprintf(os.Stderr, "  %s [-config engine.yaml] [-script conversation.txt] [-prompt]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if err := run(configPath, scriptPath, showPrompt); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, scriptPath string, showPrompt bool) error {
	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if cfg.Bot.CompanyName == "" {
		cfg.Bot = chat.BotConfig{
			BotName:     "Ava",
			CompanyName: "Acme Corp",
			Persona:     "You are a friendly, concise sales assistant.",
			Industry:    "software",
			FAQCount:    12,
		}
	}

	script := defaultScript
	if scriptPath != "" {
		loaded, err := readScript(scriptPath)
		if err != nil {
			return err
		}
		script = loaded
	}

	eng, err := engine.New(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = eng.Close() }()

	session := chat.NewSession("demo-bot")
	business := intent.NewSessionBusinessContext()
	var history []chat.Message

	ctx := context.Background()
	for turn, line := range script {
		history = append(history, chat.NewMessage(chat.RoleUser, line))

		result, err := eng.ProcessTurn(ctx, engine.TurnInput{
			Session:  session,
			Business: business,
			Messages: history,
			Turn:     turn + 1,
		})
		if err != nil {
			return fmt.Errorf("turn %d failed: %w", turn+1, err)
		}
		business = result.Business

		printTurn(turn+1, line, result, showPrompt)

		history = append(history, chat.NewMessage(chat.RoleBot, "(assistant reply)"))
	}
	return nil
}

func printTurn(turn int, userLine string, result engine.TurnResult, showPrompt bool) {
	fmt.Printf("--- turn %d ---\n", turn)
	fmt.Printf("user:      %s\n", userLine)
	fmt.Printf("intent:    %s (%.2f)\n", result.Intent.Primary, result.Intent.Confidence)
	fmt.Printf("mode:      %s\n", result.Business.CurrentMode)
	fmt.Printf("window:    %d messages, %d tokens, compressed=%v\n",
		len(result.Window.Messages), result.Window.TokenUsage.TotalTokens, result.Window.WasCompressed)

	var moduleNames []string
	for _, m := range result.Modules {
		moduleNames = append(moduleNames, string(m.Type))
	}
	fmt.Printf("modules:   [%s] using %d/%d tokens\n",
		strings.Join(moduleNames, ", "), result.Allocation.TotalUsed, result.Allocation.TotalAvailable)

	if len(result.Snippets) > 0 {
		fmt.Printf("knowledge: %d snippets\n", len(result.Snippets))
	}
	if len(result.Degraded) > 0 {
		fmt.Printf("degraded:  %s\n", strings.Join(result.Degraded, ", "))
	}
	if showPrompt {
		fmt.Printf("prompt:\n%s\n", result.SystemPrompt())
	}
	fmt.Println()
}

func readScript(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open script file: %w", err)
	}
	defer func() { _ = f.Close() }()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read script file: %w", err)
	}
	return lines, nil
}
