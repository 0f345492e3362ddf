package domain

import (
	"fmt"
	"strings"
)

// Severity is the impact level the knowledge service assigns to a finding.
type Severity string

const (
	SeverityHigh   Severity = "HIGH"
	SeverityMedium Severity = "MEDIUM"
	SeverityLow    Severity = "LOW"
	SeverityGas    Severity = "GAS"
)

// Rank returns an integer rank for averaging and comparison (HIGH=3, GAS=0).
func (s Severity) Rank() int {
	switch s {
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 1
	default:
		return 0
	}
}

func (s Severity) String() string {
	return string(s)
}

// ParseSeverity parses a service impact string case-insensitively.
func ParseSeverity(s string) (Severity, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "HIGH":
		return SeverityHigh, nil
	case "MEDIUM":
		return SeverityMedium, nil
	case "LOW":
		return SeverityLow, nil
	case "GAS":
		return SeverityGas, nil
	default:
		return "", fmt.Errorf("invalid severity: %s", s)
	}
}

// SeverityLabel maps a rank back to its label; rank 0 covers both GAS and
// informational findings.
func SeverityLabel(rank int) string {
	switch rank {
	case 3:
		return "HIGH"
	case 2:
		return "MEDIUM"
	case 1:
		return "LOW"
	case 0:
		return "GAS/INFO"
	default:
		return "UNKNOWN"
	}
}
