package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"veredito/internal/analyst"
	"veredito/internal/batch"
	"veredito/internal/config"
	"veredito/internal/ingest"
	"veredito/internal/openai"
	"veredito/internal/processor"
	"veredito/internal/report"
	"veredito/internal/rules"
	"veredito/internal/verdict"
)

var analyzeFlags struct {
	input  string
	engine string
	out    string
	limit  int
	delay  time.Duration
	dryRun bool
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Classify a batch of conversations from a file",
	Long: `Read conversations from a .txt, .csv or .xlsx file, classify each one
and export the verdicts.

Usage:
  veredito analyze --input conversas.xlsx --engine openai --out report.csv
  veredito analyze --input conversas.txt --engine local --out report.xlsx

The remote engine needs OPENAI_API_KEY and paces requests with a delay
between calls; the local engine is free and runs without pacing.`,
	RunE: runAnalyzeBatch,
}

func init() {
	f := analyzeCmd.Flags()
	f.StringVar(&analyzeFlags.input, "input", "", "Input file: .txt (--- separated), .csv or .xlsx with a conversa column")
	f.StringVar(&analyzeFlags.engine, "engine", "local", "Engine: openai or local")
	f.StringVar(&analyzeFlags.out, "out", "", "Output report path (.csv or .xlsx)")
	f.IntVar(&analyzeFlags.limit, "limit", 0, "Max conversations to classify (0 = all)")
	f.DurationVar(&analyzeFlags.delay, "delay", 0, "Delay between remote calls (default REQUEST_DELAY for openai)")
	f.BoolVar(&analyzeFlags.dryRun, "dry-run", false, "Classify and print the summary without writing the report")
	_ = analyzeCmd.MarkFlagRequired("input")
}

func runAnalyzeBatch(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	setupLogging(cfg.LogLevel)

	if !analyzeFlags.dryRun && analyzeFlags.out == "" {
		return fmt.Errorf("--out is required (or pass --dry-run)")
	}

	convs, err := ingest.ReadFile(analyzeFlags.input)
	if err != nil {
		return err
	}
	if len(convs) == 0 {
		return fmt.Errorf("no conversations found in %s", analyzeFlags.input)
	}
	slog.Info("conversations loaded", "file", analyzeFlags.input, "count", len(convs))

	classify, err := pickEngine(cfg, analyzeFlags.engine)
	if err != nil {
		return err
	}

	delay := analyzeFlags.delay
	if delay == 0 && analyzeFlags.engine == "openai" && !cmd.Flags().Changed("delay") {
		delay = cfg.RequestDelay
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runner := batch.NewRunner(batch.Classifier(classify), batch.Config{
		Delay: delay,
		Limit: analyzeFlags.limit,
	}, slog.Default())

	rows, sum, runErr := runner.Run(ctx, convs)
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return runErr
	}

	if !analyzeFlags.dryRun && len(rows) > 0 {
		if err := writeReport(analyzeFlags.out, rows); err != nil {
			return err
		}
		fmt.Printf("Report: %s\n", analyzeFlags.out)
	}

	fmt.Printf("\n=== Resumo ===\n")
	fmt.Printf("Conversas processadas: %d\n", sum.Processed)
	fmt.Printf("Precisam de ação: %d\n", sum.ActionRequired)
	fmt.Printf("Erros de análise: %d\n", sum.Errors)
	if analyzeFlags.dryRun {
		fmt.Printf("Modo: DRY RUN (relatório não gravado)\n")
	}
	if runErr != nil {
		fmt.Printf("Execução interrompida; resultados parciais gravados.\n")
	}
	return nil
}

// pickEngine builds the requested classifier. The remote engine needs an
// API key; the local rule engine always works.
func pickEngine(cfg config.Config, engine string) (processor.Classifier, error) {
	switch engine {
	case "local":
		return localClassifier, nil
	case "openai":
		if cfg.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("engine openai requires OPENAI_API_KEY")
		}
		engines, _ := buildEngines(cfg)
		return engines["openai"], nil
	default:
		return nil, fmt.Errorf("unknown engine %q (want openai or local)", engine)
	}
}

// buildEngines wires every available classifier. The local rule engine is
// always present; the remote one only when an API key is configured.
func buildEngines(cfg config.Config) (map[string]processor.Classifier, string) {
	engines := map[string]processor.Classifier{
		"local": localClassifier,
	}
	defaultEngine := "local"

	if cfg.OpenAIAPIKey != "" {
		client := openai.NewClient(cfg.OpenAIAPIKey)
		if cfg.OpenAIBaseURL != "" {
			client.SetBaseURL(cfg.OpenAIBaseURL)
		}
		a := analyst.New(client, cfg.Model, slog.Default())
		engines["openai"] = a.Classify
		defaultEngine = "openai"
	}

	return engines, defaultEngine
}

func localClassifier(_ context.Context, transcript string) verdict.Verdict {
	return rules.Classify(transcript).ToVerdict()
}

func writeReport(path string, rows []report.Row) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("create report: %w", err)
		}
		defer f.Close()
		return report.WriteCSV(f, rows)
	case ".xlsx":
		return report.WriteXLSX(path, rows)
	default:
		return fmt.Errorf("unsupported report format %q (want .csv or .xlsx)", filepath.Ext(path))
	}
}
