package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	backendName    string
	maxAttempts    int
	retryDelay     string
	apiKey         string
	checkpointPath string
	outputPath     string
	promptPath     string
)

var rootCmd = &cobra.Command{
	Use:   "lexfill [dataset.csv]",
	Short: "Fill missing dictionary fields using a language model",
	Long: `lexfill walks a CSV dictionary dataset (word, partOfSpeech, definition,
example, etymology) row by row and asks a language-model backend to produce
each missing field. Progress is checkpointed after every row, so an
interrupted run resumes where it left off.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		// .env is honored for credentials, matching the flag/env fallback order
		_ = godotenv.Load()

		if apiKey == "" {
			apiKey = os.Getenv("OPENAI_API_KEY")
		}

		overrides := &ConfigOverrides{}
		if promptPath != "" {
			overrides.PromptPath = &promptPath
		}

		cfg, err := NewConfig(apiKey, overrides)
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}

		// Flags override settings-file values
		if backendName != "" {
			cfg.Settings.Backend = backendName
		}
		if maxAttempts > 0 {
			cfg.Settings.MaxAttempts = maxAttempts
		}
		if retryDelay != "" {
			cfg.Settings.RetryDelay = retryDelay
		}
		if checkpointPath != "" {
			cfg.Settings.CheckpointPath = checkpointPath
		}

		processor, err := NewEnrichmentProcessor(cfg)
		if err != nil {
			log.Fatalf("Configuration error: %v", err)
		}

		result, err := processor.ProcessFile(context.Background(), args[0], outputPath)
		if err != nil {
			log.Fatalf("Processing failed: %v", err)
		}

		if result.Failed > 0 {
			log.Printf("✗ %d fields could not be filled; re-run to retry them", result.Failed)
		}
	},
}

func init() {
	rootCmd.Flags().StringVar(&backendName, "backend", "", "LLM backend: gpt or ollama (default from settings)")
	rootCmd.Flags().IntVar(&maxAttempts, "max-attempts", 0, "Retry attempts per field (default from settings)")
	rootCmd.Flags().StringVar(&retryDelay, "retry-delay", "", "Delay between retry attempts, e.g. 2s")
	rootCmd.Flags().StringVar(&apiKey, "api-key", "", "OpenAI API key (gpt backend)")
	rootCmd.Flags().StringVar(&checkpointPath, "checkpoint", "", "Checkpoint file location")
	rootCmd.Flags().StringVar(&outputPath, "output", "", "Output file (default <dataset>.enriched.csv)")
	rootCmd.Flags().StringVar(&promptPath, "prompt", "", "Path to a custom system prompt file")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
