package matcher

import (
	"regexp"
	"strings"

	"VulnMatcher/internal/domain"
)

const maxInferredTags = 5

// structuralExprs pull function names and call-shape fragments out of
// descriptive text as additional keywords.
var structuralExprs = []*regexp.Regexp{
	regexp.MustCompile(`function\s+(\w+)`),
	regexp.MustCompile(`\.call\{value:`),
	regexp.MustCompile(`delegatecall`),
	regexp.MustCompile(`transfer\(`),
	regexp.MustCompile(`require\(`),
}

// InferTags derives service tags from a description and optional code excerpt
// by scanning the vulnerability taxonomy. Each class contributes its tags at
// most once; duplicates across classes keep the first occurrence; the result
// is capped at five tags.
func InferTags(description, code string) []string {
	text := strings.ToLower(description + " " + code)

	var tags []string
	for _, vc := range vulnClasses {
		for _, kw := range vc.Keywords {
			if strings.Contains(text, strings.ToLower(kw)) {
				tags = append(tags, vc.Tags...)
				break
			}
		}
	}

	seen := make(map[string]struct{}, len(tags))
	unique := tags[:0]
	for _, tag := range tags {
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		unique = append(unique, tag)
	}

	if len(unique) > maxInferredTags {
		unique = unique[:maxInferredTags]
	}
	return unique
}

// ExtractKeywords collects taxonomy keywords present in the text plus any
// structural matches, deduplicated in first-seen order.
func ExtractKeywords(text string) []string {
	lower := strings.ToLower(text)

	var keywords []string
	for _, vc := range vulnClasses {
		for _, kw := range vc.Keywords {
			if strings.Contains(lower, strings.ToLower(kw)) {
				keywords = append(keywords, kw)
			}
		}
	}

	for _, expr := range structuralExprs {
		for _, m := range expr.FindAllStringSubmatch(text, -1) {
			if len(m) > 1 {
				keywords = append(keywords, m[1])
			} else {
				keywords = append(keywords, m[0])
			}
		}
	}

	seen := make(map[string]struct{}, len(keywords))
	unique := keywords[:0]
	for _, kw := range keywords {
		if _, ok := seen[kw]; ok {
			continue
		}
		seen[kw] = struct{}{}
		unique = append(unique, kw)
	}
	return unique
}

// severityFilters maps a caller-supplied severity name to the service's
// impact vocabulary; unknown names produce no filter.
var severityFilters = map[string][]domain.Severity{
	"CRITICAL": {domain.SeverityHigh},
	"HIGH":     {domain.SeverityHigh},
	"MEDIUM":   {domain.SeverityMedium},
	"LOW":      {domain.SeverityLow},
	"GAS":      {domain.SeverityGas},
}

// ImpactFilter translates a severity string into impact filter values.
func ImpactFilter(severity string) []domain.Severity {
	return severityFilters[strings.ToUpper(strings.TrimSpace(severity))]
}
