package main

// Runs the analyze pipeline against local files without starting the server:
//   go run ./cmd/analyze -resume cv.pdf -jd job.txt

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"resume-analyzer/internal/analysis"
	"resume-analyzer/internal/bootstrap"
	"resume-analyzer/internal/shared/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		exitErr(fmt.Sprintf("load config: %v", err))
	}
	if err := run(context.Background(), cfg, os.Args[1:], os.Stdout); err != nil {
		exitErr(err.Error())
	}
}

func run(ctx context.Context, cfg config.Config, args []string, stdout io.Writer, opts ...bootstrap.Option) error {
	fs := flag.NewFlagSet("analyze", flag.ContinueOnError)
	resumePath := fs.String("resume", "", "Path to resume file (pdf or docx)")
	jdPath := fs.String("jd", "", "Path to job description file")
	provider := fs.String("provider", cfg.LLMProvider, "LLM provider (groq or gemini)")
	model := fs.String("model", cfg.LLMModel, "LLM model")
	asJSON := fs.Bool("json", false, "Print the full response as JSON")
	outPath := fs.String("out", "", "Path to write the analysis (optional)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if strings.TrimSpace(*resumePath) == "" {
		return errors.New("resume path is required")
	}
	if strings.TrimSpace(*jdPath) == "" {
		return errors.New("job description path is required")
	}
	jdBytes, err := os.ReadFile(*jdPath)
	if err != nil {
		return fmt.Errorf("read job description: %w", err)
	}

	cfg.LLMProvider = strings.ToLower(strings.TrimSpace(*provider))
	cfg.LLMModel = strings.TrimSpace(*model)
	app, err := bootstrap.Build(ctx, cfg, opts...)
	if err != nil {
		return fmt.Errorf("bootstrap build: %w", err)
	}

	result, err := app.AnalysisService.Analyze(ctx, analysis.Input{
		Filename:       filepath.Base(*resumePath),
		JobDescription: string(jdBytes),
		Open: func() (io.ReadCloser, error) {
			return os.Open(*resumePath)
		},
	})
	if err != nil {
		return err
	}

	out := []byte(result.Analysis)
	if *asJSON {
		out, err = json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("format json: %w", err)
		}
	}
	if len(out) == 0 || out[len(out)-1] != '\n' {
		out = append(out, '\n')
	}

	if *outPath != "" {
		if err := os.WriteFile(*outPath, out, 0o644); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
	}
	_, err = stdout.Write(out)
	return err
}

func exitErr(msg string) {
	_, _ = fmt.Fprintln(os.Stderr, msg)
	os.Exit(1)
}
