package solodit

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"VulnMatcher/internal/domain"
)

// findingPayload mirrors the service's finding object. Rarity arrives on the
// wire as general_score; tags and finders sit behind nested join rows.
type findingPayload struct {
	ID           string  `json:"id"`
	Slug         string  `json:"slug"`
	Title        string  `json:"title"`
	Content      string  `json:"content"`
	Summary      string  `json:"summary"`
	Impact       string  `json:"impact"`
	QualityScore float64 `json:"quality_score"`
	GeneralScore float64 `json:"general_score"`
	ReportDate   string  `json:"report_date"`
	FirmName     string  `json:"firm_name"`
	ProtocolName string  `json:"protocol_name"`
	FindersCount int     `json:"finders_count"`
	SourceLink   string  `json:"source_link"`
	TagScores    []struct {
		Tag struct {
			Title string `json:"title"`
		} `json:"tags_tag"`
	} `json:"issues_issuetagscore"`
	FinderRows []struct {
		Warden struct {
			Handle string `json:"handle"`
		} `json:"wardens_warden"`
	} `json:"issues_issue_finders"`
}

type searchResponse struct {
	Findings []json.RawMessage `json:"findings"`
	Metadata struct {
		TotalResults int     `json:"totalResults"`
		CurrentPage  int     `json:"currentPage"`
		TotalPages   int     `json:"totalPages"`
		Elapsed      float64 `json:"elapsed"`
	} `json:"metadata"`
	RateLimit struct {
		Remaining int `json:"remaining"`
		Reset     int `json:"reset"`
	} `json:"rateLimit"`
}

func parseFinding(raw json.RawMessage) (domain.Finding, error) {
	var p findingPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return domain.Finding{}, fmt.Errorf("decode finding: %w", err)
	}
	if p.ID == "" || p.Slug == "" || p.Title == "" || p.Content == "" {
		return domain.Finding{}, fmt.Errorf("finding %q missing required field", p.ID)
	}
	impact, err := domain.ParseSeverity(p.Impact)
	if err != nil {
		return domain.Finding{}, fmt.Errorf("finding %s: %w", p.ID, err)
	}

	tags := make([]string, 0, len(p.TagScores))
	for _, row := range p.TagScores {
		if row.Tag.Title != "" {
			tags = append(tags, row.Tag.Title)
		}
	}
	finders := make([]string, 0, len(p.FinderRows))
	for _, row := range p.FinderRows {
		if row.Warden.Handle != "" {
			finders = append(finders, row.Warden.Handle)
		}
	}

	return domain.Finding{
		ID:           p.ID,
		Slug:         p.Slug,
		Title:        p.Title,
		Content:      p.Content,
		Summary:      p.Summary,
		Impact:       impact,
		QualityScore: p.QualityScore,
		RarityScore:  p.GeneralScore,
		ReportDate:   p.ReportDate,
		FirmName:     p.FirmName,
		ProtocolName: p.ProtocolName,
		FindersCount: p.FindersCount,
		SourceLink:   p.SourceLink,
		Tags:         tags,
		Finders:      finders,
	}, nil
}

// parseSearchResult decodes a result page. Individual findings that fail to
// decode are skipped with a warning; only an undecodable page is fatal.
func parseSearchResult(body []byte, logger *slog.Logger) (*domain.SearchResult, error) {
	var resp searchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &APIError{Kind: KindMalformed, Message: "decode response", Err: err}
	}

	result := &domain.SearchResult{
		Findings:           make([]domain.Finding, 0, len(resp.Findings)),
		TotalResults:       resp.Metadata.TotalResults,
		CurrentPage:        resp.Metadata.CurrentPage,
		TotalPages:         resp.Metadata.TotalPages,
		QueryTimeMS:        resp.Metadata.Elapsed * 1000,
		RateLimitRemaining: resp.RateLimit.Remaining,
		RateLimitReset:     resp.RateLimit.Reset,
	}
	if result.CurrentPage == 0 {
		result.CurrentPage = 1
	}
	if result.TotalPages == 0 {
		result.TotalPages = 1
	}

	for i, raw := range resp.Findings {
		finding, err := parseFinding(raw)
		if err != nil {
			result.Skipped++
			logger.Warn("skipping malformed finding", "index", i, "error", err)
			continue
		}
		result.Findings = append(result.Findings, finding)
	}

	return result, nil
}
