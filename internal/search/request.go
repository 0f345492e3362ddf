package search

import (
	"encoding/json"

	"VulnMatcher/internal/domain"
)

// Sort fields and directions recognized by the knowledge service.
const (
	SortRecency = "Recency"
	SortQuality = "Quality"
	SortRarity  = "Rarity"

	SortAsc  = "Asc"
	SortDesc = "Desc"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// Request describes one findings search. The zero value is a valid request for
// the first page with default paging. Requests are treated as immutable once
// handed to the client; the serialized body doubles as the cache key.
type Request struct {
	Keywords         string
	Tags             []string
	Impact           []domain.Severity
	Firms            []string
	Protocol         string
	ProtocolCategory []string
	Languages        []string
	User             string
	MinFinders       string
	MaxFinders       string
	ReportedDays     string
	QualityScoreMin  *float64
	RarityScoreMin   *float64
	SortField        string
	SortDirection    string
	Page             int
	PageSize         int

	// NoCache bypasses the result cache for this call only. It is not part of
	// the wire body or the cache key.
	NoCache bool
}

// valueItem is the {"value": ...} wrapper the service expects for list filters.
type valueItem struct {
	Value string `json:"value"`
}

func wrapValues(values []string) []valueItem {
	items := make([]valueItem, 0, len(values))
	for _, v := range values {
		items = append(items, valueItem{Value: v})
	}
	return items
}

// Body assembles the JSON-ready request body with page bounds applied:
// page is clamped to >=1 and page size to [1,100], defaulting to 20.
func (r Request) Body() map[string]any {
	filters := map[string]any{}

	if r.Keywords != "" {
		filters["keywords"] = r.Keywords
	}
	if len(r.Impact) > 0 {
		impact := make([]string, 0, len(r.Impact))
		for _, sev := range r.Impact {
			impact = append(impact, string(sev))
		}
		filters["impact"] = impact
	}
	if len(r.Firms) > 0 {
		filters["firms"] = wrapValues(r.Firms)
	}
	if len(r.Tags) > 0 {
		filters["tags"] = wrapValues(r.Tags)
	}
	if r.Protocol != "" {
		filters["protocol"] = r.Protocol
	}
	if len(r.ProtocolCategory) > 0 {
		filters["protocolCategory"] = wrapValues(r.ProtocolCategory)
	}
	if len(r.Languages) > 0 {
		filters["languages"] = wrapValues(r.Languages)
	}
	if r.User != "" {
		filters["user"] = r.User
	}
	if r.MinFinders != "" {
		filters["minFinders"] = r.MinFinders
	}
	if r.MaxFinders != "" {
		filters["maxFinders"] = r.MaxFinders
	}
	if r.ReportedDays != "" {
		filters["reported"] = valueItem{Value: r.ReportedDays}
	}
	if r.QualityScoreMin != nil {
		filters["qualityScore"] = *r.QualityScoreMin
	}
	if r.RarityScoreMin != nil {
		filters["rarityScore"] = *r.RarityScoreMin
	}

	sortField := r.SortField
	if sortField == "" {
		sortField = SortRecency
	}
	filters["sortField"] = sortField

	sortDirection := r.SortDirection
	if sortDirection == "" {
		sortDirection = SortDesc
	}
	filters["sortDirection"] = sortDirection

	page := r.Page
	if page < 1 {
		page = 1
	}

	pageSize := r.PageSize
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	body := map[string]any{
		"page":     page,
		"pageSize": pageSize,
	}
	if len(filters) > 0 {
		body["filters"] = filters
	}
	return body
}

// CacheKey serializes the request deterministically for cache lookups.
// encoding/json emits map keys in sorted order, so two requests with equal
// bodies always produce the same key.
func (r Request) CacheKey() string {
	raw, err := json.Marshal(r.Body())
	if err != nil {
		// Body contains only strings, numbers, and slices of them.
		return ""
	}
	return "/findings:" + string(raw)
}
