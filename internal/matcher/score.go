package matcher

import (
	"fmt"
	"strings"

	"VulnMatcher/internal/domain"
)

// Component caps of the relevance score. The five sum to 1.0; the total is
// clamped there as well.
const (
	keywordWeight  = 0.35
	tagWeight      = 0.30
	protocolWeight = 0.15
	qualityWeight  = 0.10
	rarityWeight   = 0.10
)

// protocolIndicators are the category words checked against both the query
// and the finding's protocol name. First match wins.
var protocolIndicators = []string{"defi", "nft", "lending", "dex", "yield", "staking"}

// Score computes the bounded [0,1] relevance of a finding to a described
// defect, with human-readable reasons for the attributable components.
func Score(f domain.Finding, description, code string, queryTags []string) (float64, []string) {
	var score float64
	var reasons []string

	descLower := strings.ToLower(description)
	contentLower := strings.ToLower(Flatten(f.Content))

	// Keyword overlap.
	queryKeywords := ExtractKeywords(description)
	var matched []string
	for _, kw := range queryKeywords {
		if strings.Contains(contentLower, strings.ToLower(kw)) {
			matched = append(matched, kw)
		}
	}
	if len(queryKeywords) > 0 && len(matched) > 0 {
		keywordScore := float64(len(matched)) / float64(len(queryKeywords)) * keywordWeight
		score += keywordScore
		if keywordScore > 0.1 {
			reasons = append(reasons, "keywords: "+strings.Join(capList(matched, 3), ", "))
		}
	}

	// Tag overlap, as lower-cased sets; intersection order follows the query.
	if len(queryTags) > 0 && len(f.Tags) > 0 {
		findingTags := make(map[string]struct{}, len(f.Tags))
		for _, tag := range f.Tags {
			findingTags[strings.ToLower(tag)] = struct{}{}
		}
		var overlap []string
		seen := make(map[string]struct{}, len(queryTags))
		for _, tag := range queryTags {
			lower := strings.ToLower(tag)
			if _, dup := seen[lower]; dup {
				continue
			}
			seen[lower] = struct{}{}
			if _, ok := findingTags[lower]; ok {
				overlap = append(overlap, lower)
			}
		}
		if len(overlap) > 0 {
			score += float64(len(overlap)) / float64(len(queryTags)) * tagWeight
			reasons = append(reasons, "tags: "+strings.Join(capList(overlap, 3), ", "))
		}
	}

	// Protocol-type match.
	protocolLower := strings.ToLower(f.ProtocolName)
	for _, indicator := range protocolIndicators {
		if strings.Contains(descLower, indicator) && strings.Contains(protocolLower, indicator) {
			score += protocolWeight
			reasons = append(reasons, fmt.Sprintf("protocol: %s", indicator))
			break
		}
	}

	// Quality and rarity bonuses carry no reason text.
	score += f.QualityScore / 5.0 * qualityWeight
	score += f.RarityScore / 5.0 * rarityWeight

	if score > 1.0 {
		score = 1.0
	}
	return score, reasons
}

func capList(items []string, n int) []string {
	if len(items) > n {
		return items[:n]
	}
	return items
}
