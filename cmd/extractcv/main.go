package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"lbs-connect/internal/bootstrap"
	"lbs-connect/internal/cvextract"
	"lbs-connect/internal/shared/config"
)

// extractcv runs CV field extraction against a local PDF and prints the
// fields that would be written to the profile.
func main() {
	cfg := config.Load()

	cvPath := flag.String("cv", "", "Path to CV file (pdf)")
	outPath := flag.String("out", "", "Path to write JSON output (optional)")
	provider := flag.String("provider", cfg.LLMProvider, "LLM provider (openai or gemini)")
	model := flag.String("model", cfg.LLMModel, "LLM model")
	flag.Parse()

	if strings.TrimSpace(*cvPath) == "" {
		exitErr("cv path is required")
	}
	data, err := os.ReadFile(*cvPath)
	if err != nil {
		exitErr(fmt.Sprintf("read cv: %v", err))
	}

	cfg.LLMProvider = strings.ToLower(strings.TrimSpace(*provider))
	cfg.LLMModel = *model

	ctx := context.Background()
	client, err := bootstrap.NewLLM(ctx, cfg)
	if err != nil {
		exitErr(fmt.Sprintf("llm client: %v", err))
	}

	svc := &cvextract.Service{LLM: client, Model: cfg.LLMModel}
	fields, err := svc.FieldsFromFile(ctx, data, filepath.Base(*cvPath))
	if err != nil {
		exitErr(fmt.Sprintf("extract: %v", err))
	}

	raw, err := json.Marshal(fields)
	if err != nil {
		exitErr(fmt.Sprintf("encode: %v", err))
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		exitErr(fmt.Sprintf("format json: %v", err))
	}
	buf.WriteByte('\n')

	if *outPath != "" {
		if err := os.WriteFile(*outPath, buf.Bytes(), 0o644); err != nil {
			exitErr(fmt.Sprintf("write output: %v", err))
		}
	}
	if _, err := os.Stdout.Write(buf.Bytes()); err != nil {
		exitErr(fmt.Sprintf("write stdout: %v", err))
	}
}

func exitErr(msg string) {
	_, _ = fmt.Fprintln(os.Stderr, msg)
	os.Exit(1)
}
