package matcher

import (
	"reflect"
	"testing"

	"VulnMatcher/internal/domain"
)

func TestInferTagsAccessControl(t *testing.T) {
	t.Parallel()

	tags := InferTags("access control on mint function, only owner check missing", "")

	want := map[string]bool{"Access Control": true, "Admin": true}
	got := map[string]bool{}
	for _, tag := range tags {
		if got[tag] {
			t.Fatalf("duplicate tag %q in %v", tag, tags)
		}
		got[tag] = true
	}
	for tag := range want {
		if !got[tag] {
			t.Fatalf("expected tag %q in %v", tag, tags)
		}
	}
}

func TestInferTagsNoDuplicatesAcrossKeywords(t *testing.T) {
	t.Parallel()

	// Both "onlyowner" and "unauthorized" hit the access-control class; its
	// tags must appear once.
	tags := InferTags("onlyOwner missing, unauthorized mint possible", "")
	seen := map[string]int{}
	for _, tag := range tags {
		seen[tag]++
	}
	if seen["Access Control"] != 1 {
		t.Fatalf("access-control tags duplicated: %v", tags)
	}
}

func TestInferTagsCap(t *testing.T) {
	t.Parallel()

	// Hits reentrancy, oracle, flash loan, and rounding classes; combined tag
	// lists exceed five.
	tags := InferTags("reentrancy with oracle price manipulation via flash loan and rounding errors", "")
	if len(tags) != 5 {
		t.Fatalf("expected 5 tags, got %d: %v", len(tags), tags)
	}
	if tags[0] != "Reentrancy" {
		t.Fatalf("class order not preserved, got %v", tags)
	}
}

func TestInferTagsUsesCodeExcerpt(t *testing.T) {
	t.Parallel()

	tags := InferTags("something looks off in this function", "owner.delegatecall(data)")
	found := false
	for _, tag := range tags {
		if tag == "Delegatecall" {
			found = true
		}
	}
	if !found {
		t.Fatalf("code excerpt not scanned, got %v", tags)
	}
}

func TestExtractKeywords(t *testing.T) {
	t.Parallel()

	keywords := ExtractKeywords("reentrancy in function withdraw via external call")

	want := []string{"reentrancy", "external call", "withdraw"}
	for _, kw := range want {
		found := false
		for _, got := range keywords {
			if got == kw {
				found = true
			}
		}
		if !found {
			t.Fatalf("expected keyword %q in %v", kw, keywords)
		}
	}
}

func TestExtractKeywordsDeduplicates(t *testing.T) {
	t.Parallel()

	keywords := ExtractKeywords("reentrancy, then more reentrancy")
	count := 0
	for _, kw := range keywords {
		if kw == "reentrancy" {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("keyword duplicated: %v", keywords)
	}
}

func TestExtractKeywordsStructural(t *testing.T) {
	t.Parallel()

	keywords := ExtractKeywords("the transfer( call inside function settleAll uses require( checks")

	want := []string{"settleAll", "transfer(", "require("}
	for _, kw := range want {
		found := false
		for _, got := range keywords {
			if got == kw {
				found = true
			}
		}
		if !found {
			t.Fatalf("expected structural keyword %q in %v", kw, keywords)
		}
	}
}

func TestImpactFilter(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want []domain.Severity
	}{
		{"CRITICAL", []domain.Severity{domain.SeverityHigh}},
		{"high", []domain.Severity{domain.SeverityHigh}},
		{"Medium", []domain.Severity{domain.SeverityMedium}},
		{"LOW", []domain.Severity{domain.SeverityLow}},
		{"GAS", []domain.Severity{domain.SeverityGas}},
		{"whatever", nil},
		{"", nil},
	}
	for _, tc := range cases {
		if got := ImpactFilter(tc.in); !reflect.DeepEqual(got, tc.want) {
			t.Fatalf("ImpactFilter(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}
