package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	_ "github.com/lib/pq"

	"VulnMatcher/internal/config"
	"VulnMatcher/internal/domain"
	"VulnMatcher/internal/infrastructure/solodit"
	"VulnMatcher/internal/infrastructure/storage"
	"VulnMatcher/internal/logging"
	"VulnMatcher/internal/matcher"
	"VulnMatcher/internal/ports"
	"VulnMatcher/internal/report"
)

// Application wires configuration into the pattern-matching use case.
type Application struct {
	cfg       config.Config
	logger    *slog.Logger
	matcher   *matcher.Matcher
	generator report.Generator
}

// Query carries one CLI-level pattern-match request.
type Query struct {
	QueryID       string
	Description   string
	Code          string
	ProtocolType  string
	Severity      string
	MinSimilarity float64
	MaxResults    int
}

// New builds a runnable application instance. A missing API key surfaces here
// as a fatal construction error.
func New(cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level, cfg.Logging.Format)
	}

	client, err := solodit.Shared(solodit.Options{
		APIKey:    cfg.Solodit.APIKey,
		BaseURL:   cfg.Solodit.BaseURL,
		Timeout:   cfg.Solodit.Timeout(),
		CacheTTL:  cfg.Solodit.CacheTTL(),
		CacheSize: cfg.Solodit.CacheMaxEntries,
		Logger:    baseLogger.With("component", "solodit"),
	})
	if err != nil {
		return nil, fmt.Errorf("build client: %w", err)
	}

	var history ports.MatchRepository
	if cfg.History.DSN != "" {
		db, err := sql.Open("postgres", cfg.History.DSN)
		if err != nil {
			baseLogger.Warn("history store unavailable", "error", err)
		} else {
			history = storage.NewPostgresRepository(db)
		}
	}

	m := matcher.New(client, history, baseLogger.With("component", "matcher"))

	return &Application{
		cfg:       cfg,
		logger:    baseLogger,
		matcher:   m,
		generator: report.Generator{IncludeDetails: true},
	}, nil
}

// Run executes one pattern-match query and renders its report. An unreachable
// knowledge service still yields a valid (empty) report.
func (a *Application) Run(ctx context.Context, q Query) (string, []domain.PatternMatch) {
	minSimilarity := q.MinSimilarity
	if minSimilarity == 0 {
		minSimilarity = a.cfg.Matcher.MinSimilarity
	}
	maxResults := q.MaxResults
	if maxResults <= 0 {
		maxResults = a.cfg.Matcher.MaxResults
	}

	matches := a.matcher.FindSimilar(ctx, matcher.Params{
		QueryID:       q.QueryID,
		Description:   q.Description,
		Code:          q.Code,
		ProtocolType:  q.ProtocolType,
		Severity:      q.Severity,
		MinSimilarity: minSimilarity,
		MaxResults:    maxResults,
	})

	return a.generator.Render(q.QueryID, matches), matches
}
