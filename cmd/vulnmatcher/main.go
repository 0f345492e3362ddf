package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/google/uuid"

	"VulnMatcher/internal/app"
	"VulnMatcher/internal/config"
	"VulnMatcher/internal/domain"
	"VulnMatcher/internal/logging"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := flag.NewFlagSet("vulnmatcher", flag.ContinueOnError)
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), `Usage: vulnmatcher [flags] "vulnerability description"

Finds historical vulnerabilities similar to a described defect.

Examples:
  vulnmatcher -protocol DeFi -severity HIGH "reentrancy in withdraw"
  vulnmatcher -severity CRITICAL -min-similarity 0.6 "access control on mint"
  vulnmatcher -protocol Lending -n 15 "oracle price manipulation"

Flags:`)
		fs.PrintDefaults()
	}

	protocol := fs.String("protocol", "", "Protocol type filter (DeFi, NFT, Lending, ...)")
	severity := fs.String("severity", "", "Expected severity (CRITICAL, HIGH, MEDIUM, LOW, GAS)")
	minSimilarity := fs.Float64("min-similarity", 0, "Minimum similarity threshold (0.0-1.0)")
	maxResults := fs.Int("n", 0, "Maximum number of results")
	codeFile := fs.String("code", "", "Path to a code excerpt to include in matching")
	save := fs.String("save", "", "Save the report to a file instead of stdout")
	output := fs.String("output", "text", "Output format: text or json")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return fmt.Errorf("expected exactly one description argument, got %d", fs.NArg())
	}
	description := fs.Arg(0)

	var code string
	if *codeFile != "" {
		raw, err := os.ReadFile(*codeFile)
		if err != nil {
			return fmt.Errorf("read code excerpt: %w", err)
		}
		code = string(raw)
	}

	cfg := config.Load()
	logger := logging.New(cfg.Logging.Level, cfg.Logging.Format)

	application, err := app.New(cfg, logger)
	if err != nil {
		return err
	}

	ctx := context.Background()
	queryID := uuid.NewString()

	rendered, matches := application.Run(ctx, app.Query{
		QueryID:       queryID,
		Description:   description,
		Code:          code,
		ProtocolType:  *protocol,
		Severity:      *severity,
		MinSimilarity: *minSimilarity,
		MaxResults:    *maxResults,
	})

	if *output == "json" {
		payload, err := matchesJSON(matches)
		if err != nil {
			return err
		}
		rendered = string(payload)
	}

	if *save != "" {
		if err := os.WriteFile(*save, []byte(rendered), 0o644); err != nil {
			return fmt.Errorf("save report: %w", err)
		}
		fmt.Printf("Report saved to: %s\n", *save)
		return nil
	}

	fmt.Println(rendered)
	return nil
}

func matchesJSON(matches []domain.PatternMatch) ([]byte, error) {
	type item struct {
		Relevance float64      `json:"relevance"`
		Reasons   []string     `json:"reasons"`
		Finding   domain.Brief `json:"finding"`
	}

	out := struct {
		Total    int    `json:"total"`
		Findings []item `json:"findings"`
	}{Total: len(matches), Findings: make([]item, 0, len(matches))}

	for _, m := range matches {
		out.Findings = append(out.Findings, item{
			Relevance: m.Relevance,
			Reasons:   m.Reasons,
			Finding:   m.Finding.Brief(),
		})
	}

	return json.MarshalIndent(out, "", "  ")
}
