package ports

import (
	"context"

	"VulnMatcher/internal/domain"
	"VulnMatcher/internal/search"
)

// FindingSearcher executes one findings search against the knowledge service.
type FindingSearcher interface {
	Search(ctx context.Context, req search.Request) (*domain.SearchResult, error)
}

// MatchRepository archives executed pattern-match queries for audit and
// repeat-hypothesis detection.
type MatchRepository interface {
	SeenBefore(ctx context.Context, description string) (bool, error)
	RecordQuery(ctx context.Context, rec domain.QueryRecord) error
}
