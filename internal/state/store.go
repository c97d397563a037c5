// Package state records validation runs in a SQLite history database.
package state

import (
	"time"

	"github.com/leapstack-labs/odmval/pkg/report"
)

// RunStatus is the lifecycle state of a run.
type RunStatus string

// Run statuses.
const (
	RunStatusRunning RunStatus = "running"
	RunStatusValid   RunStatus = "valid"
	RunStatusInvalid RunStatus = "invalid"
	RunStatusFailed  RunStatus = "failed"
)

// Run is one validation of a set of input files.
type Run struct {
	ID             string     `json:"id" yaml:"id"`
	Status         RunStatus  `json:"status" yaml:"status"`
	DatasetVersion string     `json:"data_version" yaml:"data_version"`
	SchemaVersion  string     `json:"schema_version" yaml:"schema_version"`
	Inputs         []string   `json:"inputs" yaml:"inputs"`
	Errors         int        `json:"errors" yaml:"errors"`
	Warnings       int        `json:"warnings" yaml:"warnings"`
	StartedAt      time.Time  `json:"started_at" yaml:"started_at"`
	CompletedAt    *time.Time `json:"completed_at,omitempty" yaml:"completed_at,omitempty"`
	Error          string     `json:"error,omitempty" yaml:"error,omitempty"`
}

// TableStats are the per-table counts of a run.
type TableStats struct {
	TableID  string `json:"table_id" yaml:"table_id"`
	Rows     int    `json:"rows" yaml:"rows"`
	Columns  int    `json:"columns" yaml:"columns"`
	Errors   int    `json:"errors" yaml:"errors"`
	Warnings int    `json:"warnings" yaml:"warnings"`
}

// RuleStats are the per-rule counts of a run.
type RuleStats struct {
	RuleID   string `json:"rule_id" yaml:"rule_id"`
	Errors   int    `json:"errors" yaml:"errors"`
	Warnings int    `json:"warnings" yaml:"warnings"`
}

// RunDetail is a run with its breakdowns.
type RunDetail struct {
	Run    *Run         `json:"run" yaml:"run"`
	Tables []TableStats `json:"tables" yaml:"tables"`
	Rules  []RuleStats  `json:"rules" yaml:"rules"`
}

// Store persists run history.
type Store interface {
	Open(path string) error
	Close() error
	CreateRun(inputs []string) (*Run, error)
	CompleteRun(id string, r *report.ValidationReport) error
	FailRun(id string, runErr error) error
	GetRun(id string) (*Run, error)
	GetRunDetail(id string) (*RunDetail, error)
	ListRuns(limit int) ([]*Run, error)
}

var _ Store = (*SQLiteStore)(nil)
