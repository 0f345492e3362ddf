package domain

import "testing"

func TestParseSeverity(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in      string
		want    Severity
		wantErr bool
	}{
		{"HIGH", SeverityHigh, false},
		{"high", SeverityHigh, false},
		{" Medium ", SeverityMedium, false},
		{"LOW", SeverityLow, false},
		{"GAS", SeverityGas, false},
		{"CRITICAL", "", true},
		{"", "", true},
	}

	for _, tc := range cases {
		got, err := ParseSeverity(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("ParseSeverity(%q): expected error", tc.in)
			}
			continue
		}
		if err != nil {
			t.Fatalf("ParseSeverity(%q): %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("ParseSeverity(%q) = %s, want %s", tc.in, got, tc.want)
		}
	}
}

func TestSeverityRankRoundTrip(t *testing.T) {
	t.Parallel()

	for _, sev := range []Severity{SeverityHigh, SeverityMedium, SeverityLow} {
		if SeverityLabel(sev.Rank()) != string(sev) {
			t.Fatalf("rank round trip broken for %s", sev)
		}
	}
	if SeverityLabel(SeverityGas.Rank()) != "GAS/INFO" {
		t.Fatalf("unexpected label for GAS rank: %s", SeverityLabel(SeverityGas.Rank()))
	}
}

func TestSearchResultHelpers(t *testing.T) {
	t.Parallel()

	result := SearchResult{
		Findings: []Finding{
			{ID: "a", Impact: SeverityHigh},
			{ID: "b", Impact: SeverityLow},
			{ID: "c", Impact: SeverityHigh},
		},
		CurrentPage: 1,
		TotalPages:  3,
	}

	if !result.HasMore() {
		t.Fatal("expected more pages")
	}

	high := result.ByImpact(SeverityHigh)
	if len(high) != 2 || high[0].ID != "a" || high[1].ID != "c" {
		t.Fatalf("unexpected impact filter result: %+v", high)
	}

	last := SearchResult{CurrentPage: 3, TotalPages: 3}
	if last.HasMore() {
		t.Fatal("last page reported more results")
	}
}
