package core

import (
	"fmt"
	"strings"
)

// =============================================================================
// Severity
// =============================================================================

// Severity indicates whether a diagnostic invalidates a dataset.
type Severity int

// Severity levels for diagnostics.
const (
	// SeverityError marks a value that is invalid, unconvertible or missing.
	SeverityError Severity = iota
	// SeverityWarning marks a value that was accepted after coercion.
	SeverityWarning
)

// String returns the string representation of the severity.
func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return "unknown"
	}
}

// ParseSeverity converts a string to a Severity value.
// Returns the severity and true if valid, or SeverityError and false if invalid.
func ParseSeverity(s string) (Severity, bool) {
	switch strings.ToLower(s) {
	case "error":
		return SeverityError, true
	case "warning":
		return SeverityWarning, true
	default:
		return SeverityError, false
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Severity) UnmarshalText(b []byte) error {
	v, ok := ParseSeverity(string(b))
	if !ok {
		return fmt.Errorf("unknown severity %q", string(b))
	}
	*s = v
	return nil
}

// =============================================================================
// RuleInfo
// =============================================================================

// RuleInfo provides metadata about a validation rule for documentation/tooling.
// This is a DTO (Data Transfer Object) - it carries data without behavior.
type RuleInfo struct {
	ID            string   `json:"id" yaml:"id"`
	Description   string   `json:"description" yaml:"description"`
	Severity      Severity `json:"severity" yaml:"severity"`
	ColumnScoped  bool     `json:"column_scoped" yaml:"column_scoped"`
	EmitsWarnings bool     `json:"emits_warnings" yaml:"emits_warnings"`
	Constraints   []string `json:"constraints" yaml:"constraints"`
	Template      string   `json:"template" yaml:"template"`
	WarnTemplate  string   `json:"warning_template,omitempty" yaml:"warning_template,omitempty"`
}
