package report

import (
	"fmt"

	"github.com/leapstack-labs/odmval/pkg/core"
	"github.com/leapstack-labs/odmval/pkg/validate"
)

// Diagnostic is one reported error or warning.
type Diagnostic struct {
	Kind   core.Severity `json:"kind" yaml:"kind"`
	Table  string        `json:"table_id" yaml:"table_id"`
	Column string        `json:"column_id,omitempty" yaml:"column_id,omitempty"`
	// RowNumber is 1-based and counts the header row of spreadsheet data.
	RowNumber    int          `json:"row_number" yaml:"row_number"`
	Row          validate.Row `json:"row,omitempty" yaml:"row,omitempty"`
	InvalidValue any          `json:"invalid_value,omitempty" yaml:"invalid_value,omitempty"`
	Rule         core.RuleID  `json:"rule_id" yaml:"rule_id"`
	Message      string       `json:"message" yaml:"message"`
}

func (d Diagnostic) String() string {
	return d.Message
}

// Verbosity selects how much metadata a message carries.
type Verbosity int

// Verbosity levels.
const (
	// VerbosityMessage renders the message alone.
	VerbosityMessage Verbosity = iota
	// VerbosityShort renders "[rule] table.column row N" only.
	VerbosityShort
	// VerbosityShortMessage renders the short metadata and the message.
	VerbosityShortMessage
	// VerbosityLong adds the rule description, constraint and dictionary
	// parts to the metadata.
	VerbosityLong
)

// DefaultVerbosity is used by callers that do not choose a level.
const DefaultVerbosity = VerbosityShortMessage

// ParseVerbosity converts a level 0-3.
func ParseVerbosity(n int) (Verbosity, error) {
	if n < int(VerbosityMessage) || n > int(VerbosityLong) {
		return 0, fmt.Errorf("verbosity must be between 0 and 3, got %d", n)
	}
	return Verbosity(n), nil
}
