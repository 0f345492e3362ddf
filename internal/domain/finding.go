package domain

// Finding is one historical vulnerability report from the knowledge service.
// Records are read-only once deserialized; quality and rarity scores are
// clamped to [0,5] upstream.
type Finding struct {
	ID           string
	Slug         string
	Title        string
	Content      string
	Summary      string
	Impact       Severity
	QualityScore float64
	RarityScore  float64
	ReportDate   string
	FirmName     string
	ProtocolName string
	FindersCount int
	SourceLink   string
	Tags         []string
	Finders      []string
}

// Brief is the compact serialization of a finding used by JSON output.
type Brief struct {
	ID           string   `json:"id"`
	Slug         string   `json:"slug"`
	Title        string   `json:"title"`
	Summary      string   `json:"summary,omitempty"`
	Impact       string   `json:"impact"`
	QualityScore float64  `json:"quality_score"`
	RarityScore  float64  `json:"rarity_score"`
	ProtocolName string   `json:"protocol_name,omitempty"`
	FirmName     string   `json:"firm_name,omitempty"`
	Tags         []string `json:"tags"`
	SourceLink   string   `json:"source_link,omitempty"`
}

// Brief returns the compact form of the finding.
func (f Finding) Brief() Brief {
	return Brief{
		ID:           f.ID,
		Slug:         f.Slug,
		Title:        f.Title,
		Summary:      f.Summary,
		Impact:       string(f.Impact),
		QualityScore: f.QualityScore,
		RarityScore:  f.RarityScore,
		ProtocolName: f.ProtocolName,
		FirmName:     f.FirmName,
		Tags:         f.Tags,
		SourceLink:   f.SourceLink,
	}
}

// SearchResult is one page of findings plus pagination and rate-limit metadata.
type SearchResult struct {
	Findings           []Finding
	TotalResults       int
	CurrentPage        int
	TotalPages         int
	QueryTimeMS        float64
	RateLimitRemaining int
	RateLimitReset     int
	// Skipped counts records on this page that failed to deserialize and were
	// dropped with a warning.
	Skipped int
}

// HasMore reports whether pages remain beyond the current one.
func (r *SearchResult) HasMore() bool {
	return r.CurrentPage < r.TotalPages
}

// ByImpact filters the page down to findings with the given impact level.
func (r *SearchResult) ByImpact(impact Severity) []Finding {
	var out []Finding
	for _, f := range r.Findings {
		if f.Impact == impact {
			out = append(out, f)
		}
	}
	return out
}

// PatternMatch pairs a finding with its computed relevance for one query.
// Matches are created fresh per query and never persisted as-is.
type PatternMatch struct {
	Finding   Finding
	Relevance float64
	Reasons   []string
}

// QueryRecord is the archived trace of one executed pattern-match query.
type QueryRecord struct {
	ID           string
	Description  string
	Tags         []string
	MatchCount   int
	TopRelevance float64
	TopFindingID string
}
