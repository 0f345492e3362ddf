package matcher

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"VulnMatcher/internal/domain"
	"VulnMatcher/internal/ports"
	"VulnMatcher/internal/search"
)

const (
	// defaultMinQuality keeps low-effort historical reports out of candidates.
	defaultMinQuality = 2.5
	// candidatePageSize over-fetches so relevance filtering has room to work.
	candidatePageSize = 50
	defaultMaxResults = 10
)

// Params describe one pattern-match query.
type Params struct {
	// QueryID labels the run in logs, history, and the rendered report.
	QueryID       string
	Description   string
	Code          string
	ProtocolType  string
	Severity      string
	MinSimilarity float64
	MaxResults    int
}

// Matcher finds historical findings similar to a described defect: it infers
// tags and keywords from the description, searches the knowledge service, and
// scores candidates for relevance.
type Matcher struct {
	searcher ports.FindingSearcher
	history  ports.MatchRepository
	logger   *slog.Logger
}

// New wires the matcher; history may be nil to disable archiving.
func New(searcher ports.FindingSearcher, history ports.MatchRepository, logger *slog.Logger) *Matcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Matcher{searcher: searcher, history: history, logger: logger}
}

// FindSimilar returns matches at or above the similarity threshold, sorted by
// relevance descending (service order preserved on ties). A failed search
// degrades to zero matches rather than an error so callers still produce a
// report when the service is unavailable.
func (m *Matcher) FindSimilar(ctx context.Context, p Params) []domain.PatternMatch {
	tags := InferTags(p.Description, p.Code)
	keywords := ExtractKeywords(p.Description)

	m.logger.Debug("built query", "tags", tags, "keywords", len(keywords))

	if m.history != nil {
		if seen, err := m.history.SeenBefore(ctx, p.Description); err != nil {
			m.logger.Warn("history lookup failed", "error", err)
		} else if seen {
			m.logger.Info("hypothesis searched before", "description", p.Description)
		}
	}

	minQuality := defaultMinQuality
	req := search.Request{
		Tags:            tags,
		Impact:          ImpactFilter(p.Severity),
		QualityScoreMin: &minQuality,
		SortField:       search.SortQuality,
		PageSize:        candidatePageSize,
	}
	if len(keywords) > 0 {
		req.Keywords = strings.Join(capList(keywords, 3), " ")
	}
	if p.ProtocolType != "" {
		req.ProtocolCategory = []string{p.ProtocolType}
	}

	result, err := m.searcher.Search(ctx, req)
	if err != nil {
		m.logger.Warn("search failed, treating as zero matches", "error", err)
		return nil
	}
	if result.Skipped > 0 {
		m.logger.Warn("partial result page", "skipped", result.Skipped)
	}

	var matches []domain.PatternMatch
	for _, finding := range result.Findings {
		score, reasons := Score(finding, p.Description, p.Code, tags)
		if score < p.MinSimilarity {
			continue
		}
		matches = append(matches, domain.PatternMatch{
			Finding:   finding,
			Relevance: score,
			Reasons:   reasons,
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Relevance > matches[j].Relevance
	})

	maxResults := p.MaxResults
	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}
	if len(matches) > maxResults {
		matches = matches[:maxResults]
	}

	m.record(ctx, p, tags, matches)
	return matches
}

// record archives the run; storage failures log and never surface.
func (m *Matcher) record(ctx context.Context, p Params, tags []string, matches []domain.PatternMatch) {
	if m.history == nil {
		return
	}

	rec := domain.QueryRecord{
		ID:          p.QueryID,
		Description: p.Description,
		Tags:        tags,
		MatchCount:  len(matches),
	}
	if len(matches) > 0 {
		rec.TopRelevance = matches[0].Relevance
		rec.TopFindingID = matches[0].Finding.ID
	}

	if err := m.history.RecordQuery(ctx, rec); err != nil {
		m.logger.Warn("recording query history failed", "error", err)
	}
}
