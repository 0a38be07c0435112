package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/dvloznov/finance-assistant/internal/agent"
	"github.com/dvloznov/finance-assistant/internal/assistant"
	"github.com/dvloznov/finance-assistant/internal/domain"
	"github.com/dvloznov/finance-assistant/internal/llm"
	"github.com/dvloznov/finance-assistant/internal/logger"
	"github.com/dvloznov/finance-assistant/internal/router"
	"github.com/dvloznov/finance-assistant/internal/store"
	"github.com/dvloznov/finance-assistant/internal/store/inmemory"
)

func main() {
	log := logger.New()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "chat":
		runChat(log)
	case "classify":
		runClassify(log)
	case "route":
		runRoute(log)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Finance Assistant CLI")
	fmt.Println("\nUsage:")
	fmt.Println("  assistant <command> [options]")
	fmt.Println("\nCommands:")
	fmt.Println("  chat      Interactive agent session over an in-memory store")
	fmt.Println("  classify  Classify a message into one of the routable actions")
	fmt.Println("  route     Classify and execute a single action")
	fmt.Println("  help      Show this help message")
	fmt.Println("\nRun 'assistant <command> -h' for more information on a command.")
}

func newGenerator(ctx context.Context, model string, log zerolog.Logger) *llm.Client {
	gen, err := llm.NewClient(ctx, model)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create Gemini client")
	}
	return gen
}

func runChat(log zerolog.Logger) {
	fs := flag.NewFlagSet("chat", flag.ExitOnError)
	model := fs.String("model", os.Getenv("FA_MODEL"), "Gemini model name")
	fs.Parse(os.Args[2:])

	ctx := logger.WithContext(context.Background(), log)
	gen := newGenerator(ctx, *model, log)

	recordStore := inmemory.New()
	a := agent.New(gen, recordStore, log)

	fmt.Println("Finance assistant. Type a request, or 'quit' to exit.")
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return
		}
		message := strings.TrimSpace(scanner.Text())
		if message == "" {
			continue
		}
		if message == "quit" || message == "exit" {
			return
		}

		runCtx, cancel := context.WithTimeout(ctx, 2*time.Minute)
		resp, err := a.Orchestrate(runCtx, message)
		cancel()
		if err != nil {
			log.Error().Err(err).Msg("Agent run failed")
			continue
		}

		printResponse(resp)
	}
}

func runClassify(log zerolog.Logger) {
	fs := flag.NewFlagSet("classify", flag.ExitOnError)
	model := fs.String("model", os.Getenv("FA_MODEL"), "Gemini model name")
	message := fs.String("message", "", "Message to classify")
	fs.Parse(os.Args[2:])

	if *message == "" {
		log.Fatal().Msg("Error: --message is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	gen := newGenerator(ctx, *model, log)
	classifier := assistant.NewClassifier(gen)

	option, err := classifier.Classify(ctx, domain.RouterOptions(), *message)
	if err != nil {
		log.Fatal().Err(err).Msg("Classification failed")
	}

	fmt.Printf("%s: %s\n", option.ID, option.Condition)
}

func runRoute(log zerolog.Logger) {
	fs := flag.NewFlagSet("route", flag.ExitOnError)
	model := fs.String("model", os.Getenv("FA_MODEL"), "Gemini model name")
	message := fs.String("message", "", "Message to route")
	fs.Parse(os.Args[2:])

	if *message == "" {
		log.Fatal().Msg("Error: --message is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	gen := newGenerator(ctx, *model, log)

	var recordStore store.Store = inmemory.New()
	r := router.New(gen, recordStore, log)

	resp, err := r.Route(ctx, *message, time.Now())
	if err != nil {
		log.Fatal().Err(err).Msg("Routing failed")
	}

	printResponse(resp)
}

func printResponse(resp domain.AgentResponse) {
	fmt.Printf("[%s]", domain.DisplayName(string(resp.Action)))
	if resp.ErrorMessage != "" {
		fmt.Printf(" error: %s", resp.ErrorMessage)
	}
	fmt.Println()

	if resp.Transaction != nil {
		printTransaction(*resp.Transaction)
	}
	for _, tx := range resp.Transactions {
		printTransaction(tx)
	}
}

func printTransaction(tx domain.Transaction) {
	b, err := json.Marshal(tx)
	if err != nil {
		fmt.Printf("  %v\n", tx)
		return
	}
	fmt.Printf("  %s\n", b)
}
