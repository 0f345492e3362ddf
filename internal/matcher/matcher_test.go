package matcher

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"VulnMatcher/internal/domain"
	"VulnMatcher/internal/search"
)

type fakeSearcher struct {
	lastReq search.Request
	result  *domain.SearchResult
	err     error
}

func (f *fakeSearcher) Search(_ context.Context, req search.Request) (*domain.SearchResult, error) {
	f.lastReq = req
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type fakeHistory struct {
	seen     bool
	recorded []domain.QueryRecord
}

func (f *fakeHistory) SeenBefore(context.Context, string) (bool, error) {
	return f.seen, nil
}

func (f *fakeHistory) RecordQuery(_ context.Context, rec domain.QueryRecord) error {
	f.recorded = append(f.recorded, rec)
	return nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestFindSimilarRanksAndFilters(t *testing.T) {
	t.Parallel()

	strong := reentrancyFinding()
	weak := domain.Finding{
		ID:           "f-weak",
		Content:      "nothing in common",
		Impact:       domain.SeverityLow,
		QualityScore: 1,
		RarityScore:  1,
	}
	medium := reentrancyFinding()
	medium.ID = "f-medium"
	medium.Tags = nil // keyword overlap only

	searcher := &fakeSearcher{result: &domain.SearchResult{
		Findings: []domain.Finding{weak, medium, strong},
	}}
	history := &fakeHistory{}
	m := New(searcher, history, quietLogger())

	matches := m.FindSimilar(context.Background(), Params{
		QueryID:       "q-1",
		Description:   "reentrancy in withdraw function",
		ProtocolType:  "DeFi",
		Severity:      "HIGH",
		MinSimilarity: 0.3,
		MaxResults:    10,
	})

	if len(matches) != 2 {
		t.Fatalf("expected 2 matches above threshold, got %d", len(matches))
	}
	if matches[0].Finding.ID != "f-1" || matches[1].Finding.ID != "f-medium" {
		t.Fatalf("matches not sorted by relevance: %s, %s",
			matches[0].Finding.ID, matches[1].Finding.ID)
	}

	req := searcher.lastReq
	if req.SortField != search.SortQuality || req.PageSize != 50 {
		t.Fatalf("unexpected candidate request: %+v", req)
	}
	if req.QualityScoreMin == nil || *req.QualityScoreMin != 2.5 {
		t.Fatalf("quality floor not applied: %+v", req.QualityScoreMin)
	}
	if len(req.Impact) != 1 || req.Impact[0] != domain.SeverityHigh {
		t.Fatalf("severity filter not applied: %v", req.Impact)
	}
	if len(req.ProtocolCategory) != 1 || req.ProtocolCategory[0] != "DeFi" {
		t.Fatalf("protocol category not applied: %v", req.ProtocolCategory)
	}
	if req.Keywords == "" {
		t.Fatal("keyword query not built")
	}

	if len(history.recorded) != 1 {
		t.Fatalf("expected one history record, got %d", len(history.recorded))
	}
	rec := history.recorded[0]
	if rec.ID != "q-1" || rec.MatchCount != 2 || rec.TopFindingID != "f-1" {
		t.Fatalf("unexpected history record: %+v", rec)
	}
}

func TestFindSimilarTieOrderStable(t *testing.T) {
	t.Parallel()

	first := reentrancyFinding()
	first.ID = "tie-a"
	second := reentrancyFinding()
	second.ID = "tie-b"

	searcher := &fakeSearcher{result: &domain.SearchResult{
		Findings: []domain.Finding{first, second},
	}}
	m := New(searcher, nil, quietLogger())

	matches := m.FindSimilar(context.Background(), Params{
		Description:   "reentrancy in withdraw function",
		MinSimilarity: 0.1,
	})
	if len(matches) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(matches))
	}
	if matches[0].Finding.ID != "tie-a" || matches[1].Finding.ID != "tie-b" {
		t.Fatalf("service order not preserved on ties: %s, %s",
			matches[0].Finding.ID, matches[1].Finding.ID)
	}
}

func TestFindSimilarCapsResults(t *testing.T) {
	t.Parallel()

	var findings []domain.Finding
	for i := 0; i < 8; i++ {
		f := reentrancyFinding()
		findings = append(findings, f)
	}
	searcher := &fakeSearcher{result: &domain.SearchResult{Findings: findings}}
	m := New(searcher, nil, quietLogger())

	matches := m.FindSimilar(context.Background(), Params{
		Description:   "reentrancy in withdraw function",
		MinSimilarity: 0.1,
		MaxResults:    3,
	})
	if len(matches) != 3 {
		t.Fatalf("expected cap at 3 matches, got %d", len(matches))
	}
}

func TestFindSimilarSearchFailureMeansZeroMatches(t *testing.T) {
	t.Parallel()

	searcher := &fakeSearcher{err: errors.New("service down")}
	history := &fakeHistory{}
	m := New(searcher, history, quietLogger())

	matches := m.FindSimilar(context.Background(), Params{
		Description: "reentrancy in withdraw function",
	})
	if matches != nil {
		t.Fatalf("expected zero matches on failure, got %d", len(matches))
	}
	if len(history.recorded) != 0 {
		t.Fatalf("failed search must not be archived, got %d records", len(history.recorded))
	}
}
