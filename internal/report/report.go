package report

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"VulnMatcher/internal/domain"
)

const topMatches = 5

// Generator renders pattern-match results as a markdown report. Rendering is
// pure: no clock, no randomness, no network.
type Generator struct {
	// IncludeDetails adds the historical impact analysis and verification
	// checklist sections.
	IncludeDetails bool
}

// Render produces the report for one query. An empty match list yields the
// fixed no-match notice.
func (g Generator) Render(queryID string, matches []domain.PatternMatch) string {
	if len(matches) == 0 {
		return fmt.Sprintf(`## Pattern Matching Report: %s

**Status**: No similar historical findings found

**Analysis**: This appears to be a novel vulnerability pattern or the description
may need refinement to match known vulnerability types.

**Recommendation**: Proceed with careful manual analysis and full verification.
`, queryID)
	}

	var b strings.Builder

	fmt.Fprintf(&b, "## Pattern Matching Report: %s\n\n", queryID)
	fmt.Fprintf(&b, "**Status**: %d similar historical finding(s) identified\n\n", len(matches))

	b.WriteString("### Summary Statistics\n")
	fmt.Fprintf(&b, "- **Average Historical Severity**: %s\n", AverageSeverity(matches))
	fmt.Fprintf(&b, "- **Average Quality Score**: %.1f/5\n", averageQuality(matches))
	fmt.Fprintf(&b, "- **Common Tags**: %s\n", commonTags(matches))
	fmt.Fprintf(&b, "- **Most Affected Protocol Type**: %s\n", commonProtocol(matches))

	b.WriteString("\n### Top Historical Matches\n")
	for i, match := range matches {
		if i == topMatches {
			break
		}
		writeMatch(&b, i+1, match)
	}

	if g.IncludeDetails {
		writeDetails(&b, matches)
	}

	return b.String()
}

func writeMatch(b *strings.Builder, rank int, match domain.PatternMatch) {
	f := match.Finding

	fmt.Fprintf(b, "\n#### %d. [%s] %s\n\n", rank, f.Impact, f.Title)
	fmt.Fprintf(b, "**Relevance Score**: %.0f%%\n", match.Relevance*100)

	reasons := "Semantic similarity"
	if len(match.Reasons) > 0 {
		reasons = strings.Join(match.Reasons, ", ")
	}
	fmt.Fprintf(b, "**Match Reasons**: %s\n", reasons)
	fmt.Fprintf(b, "**Protocol**: %s\n", orNA(f.ProtocolName))
	fmt.Fprintf(b, "**Audit Firm**: %s\n", orNA(f.FirmName))
	fmt.Fprintf(b, "**Quality**: %.1f/5 | **Rarity**: %.1f/5\n", f.QualityScore, f.RarityScore)
	fmt.Fprintf(b, "**Finders**: %d\n", f.FindersCount)
	fmt.Fprintf(b, "**Tags**: %s\n", strings.Join(capStrings(f.Tags, 5), ", "))
	fmt.Fprintf(b, "**Date**: %s\n\n", orNA(f.ReportDate))

	excerpt := f.Summary
	if excerpt == "" {
		excerpt = f.Content
		if len(excerpt) > 400 {
			excerpt = excerpt[:400]
		}
		excerpt += "..."
	}
	fmt.Fprintf(b, "%s\n\n", excerpt)
	fmt.Fprintf(b, "**Source**: %s\n\n---\n", orNA(f.SourceLink))
}

func writeDetails(b *strings.Builder, matches []domain.PatternMatch) {
	fmt.Fprintf(b, "\n### Historical Impact Analysis\n\nBased on %d similar findings:\n\n", len(matches))
	b.WriteString("| Metric | Value |\n|--------|-------|\n")
	fmt.Fprintf(b, "| Average Severity | %s |\n", AverageSeverity(matches))
	fmt.Fprintf(b, "| Most Common Impact | %s |\n", mostCommonImpact(matches))

	best := matches[0]
	popular := matches[0]
	for _, m := range matches[1:] {
		if m.Finding.QualityScore > best.Finding.QualityScore {
			best = m
		}
		if m.Finding.FindersCount > popular.Finding.FindersCount {
			popular = m
		}
	}
	fmt.Fprintf(b, "| Highest Quality Finding | %.1f/5 |\n", best.Finding.QualityScore)
	fmt.Fprintf(b, "| Most Finders (Popularity) | %d |\n", popular.Finding.FindersCount)

	b.WriteString("\n### Common Vulnerability Patterns\n\n")
	b.WriteString(patternAnalysis(matches))

	b.WriteString("\n\n### Recommended Verification Steps\n\nBased on historical findings of this type:\n\n")
	b.WriteString(strings.Join(RecommendedChecks(matches), "\n"))

	b.WriteString(`

### Next Steps

1. **Review historical PoCs**: Check source links for exploitation patterns
2. **Adapt to target**: Apply historical patterns to current codebase
3. **Verification**: Walk the suspected path against each matched report
4. **Impact assessment**: Use historical losses as reference
`)
}

// AverageSeverity maps the rounded mean severity rank back to a label.
// Rounding is half-up: a mean of 2.5 reports HIGH.
func AverageSeverity(matches []domain.PatternMatch) string {
	if len(matches) == 0 {
		return "N/A"
	}
	var total int
	for _, m := range matches {
		total += m.Finding.Impact.Rank()
	}
	mean := float64(total) / float64(len(matches))
	return domain.SeverityLabel(int(math.Floor(mean + 0.5)))
}

func averageQuality(matches []domain.PatternMatch) float64 {
	if len(matches) == 0 {
		return 0
	}
	var total float64
	for _, m := range matches {
		total += m.Finding.QualityScore
	}
	return total / float64(len(matches))
}

// modeCounter counts occurrences while remembering first-seen order so ties
// break deterministically toward the earliest value.
type modeCounter struct {
	counts map[string]int
	order  []string
}

func newModeCounter() *modeCounter {
	return &modeCounter{counts: map[string]int{}}
}

func (c *modeCounter) add(value string) {
	if value == "" {
		return
	}
	if _, ok := c.counts[value]; !ok {
		c.order = append(c.order, value)
	}
	c.counts[value]++
}

// top returns up to n values by descending count, first-seen order on ties.
func (c *modeCounter) top(n int) []string {
	ranked := make([]string, len(c.order))
	copy(ranked, c.order)
	sort.SliceStable(ranked, func(i, j int) bool {
		return c.counts[ranked[i]] > c.counts[ranked[j]]
	})
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

func commonTags(matches []domain.PatternMatch) string {
	counter := newModeCounter()
	for _, m := range matches {
		for _, tag := range m.Finding.Tags {
			counter.add(tag)
		}
	}
	top := counter.top(3)
	if len(top) == 0 {
		return "N/A"
	}
	return strings.Join(top, ", ")
}

func commonProtocol(matches []domain.PatternMatch) string {
	counter := newModeCounter()
	for _, m := range matches {
		counter.add(m.Finding.ProtocolName)
	}
	top := counter.top(1)
	if len(top) == 0 {
		return "N/A"
	}
	return top[0]
}

func mostCommonImpact(matches []domain.PatternMatch) string {
	counter := newModeCounter()
	for _, m := range matches {
		counter.add(string(m.Finding.Impact))
	}
	top := counter.top(1)
	if len(top) == 0 {
		return "N/A"
	}
	return top[0]
}

func patternAnalysis(matches []domain.PatternMatch) string {
	counter := newModeCounter()
	for _, m := range matches {
		for _, tag := range m.Finding.Tags {
			counter.add(tag)
		}
	}
	top := counter.top(5)
	if len(top) == 0 {
		return "No specific patterns identified."
	}

	lines := make([]string, 0, len(top))
	for _, tag := range top {
		percentage := float64(counter.counts[tag]) / float64(len(matches)) * 100
		lines = append(lines, fmt.Sprintf("- **%s**: Found in %.0f%% of similar issues", tag, percentage))
	}
	return strings.Join(lines, "\n")
}

// checklistRules maps tag families to the verification items they trigger.
// Matching is case-insensitive substring over each finding's tags.
var checklistRules = []struct {
	needles []string
	items   []string
}{
	{
		needles: []string{"reentrancy"},
		items: []string{
			"1. Verify CEI pattern (Checks-Effects-Interactions)",
			"2. Check for reentrancy guards (nonReentrant modifier)",
		},
	},
	{
		needles: []string{"access control"},
		items: []string{
			"3. Verify access control modifiers on all privileged functions",
			"4. Check that ownership can't be transferred to address(0)",
		},
	},
	{
		needles: []string{"oracle"},
		items: []string{
			"5. Validate oracle price staleness (updatedAt check)",
			"6. Check for TWAP usage instead of spot prices",
		},
	},
	{
		needles: []string{"rounding", "precision"},
		items: []string{
			"7. Verify multiplication before division",
			"8. Check for precision loss in calculations",
		},
	},
	{
		needles: []string{"flash loan"},
		items: []string{
			"9. Validate price can't be manipulated in single transaction",
			"10. Check for flash loan protection mechanisms",
		},
	},
}

// RecommendedChecks derives the conditional verification checklist from the
// matched findings' tags, deduplicated and in stable sorted order. When no
// rule fires a single fallback line is returned.
func RecommendedChecks(matches []domain.PatternMatch) []string {
	set := map[string]struct{}{}

	for _, m := range matches {
		for _, rule := range checklistRules {
			for _, needle := range rule.needles {
				if anyTagContains(m.Finding.Tags, needle) {
					for _, item := range rule.items {
						set[item] = struct{}{}
					}
					break
				}
			}
		}
	}

	if len(set) == 0 {
		return []string{"1. Proceed with standard verification"}
	}

	checks := make([]string, 0, len(set))
	for item := range set {
		checks = append(checks, item)
	}
	sort.Strings(checks)
	return checks
}

func anyTagContains(tags []string, needle string) bool {
	for _, tag := range tags {
		if strings.Contains(strings.ToLower(tag), needle) {
			return true
		}
	}
	return false
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

func capStrings(items []string, n int) []string {
	if len(items) > n {
		return items[:n]
	}
	return items
}
