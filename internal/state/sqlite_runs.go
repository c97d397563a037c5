package state

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	json "github.com/goccy/go-json"
	"github.com/leapstack-labs/odmval/pkg/core"
	"github.com/leapstack-labs/odmval/pkg/report"
)

const runColumns = `id, status, dataset_version, schema_version, inputs, errors, warnings, started_at, completed_at, error`

// CreateRun starts a run over the given input files.
func (s *SQLiteStore) CreateRun(inputs []string) (*Run, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	run := &Run{
		ID:        generateID(),
		Status:    RunStatusRunning,
		Inputs:    append([]string(nil), inputs...),
		StartedAt: time.Now().UTC(),
	}
	encoded, err := json.Marshal(run.Inputs)
	if err != nil {
		return nil, fmt.Errorf("failed to encode inputs: %w", err)
	}

	s.logger.Debug("creating run", slog.String("id", run.ID), slog.Int("inputs", len(inputs)))

	_, err = s.db.ExecContext(ctx(),
		`INSERT INTO runs (id, status, inputs, started_at) VALUES (?, ?, ?, ?)`,
		run.ID, string(run.Status), string(encoded), run.StartedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create run: %w", err)
	}
	return run, nil
}

// CompleteRun stores the outcome of a run and its per-table and per-rule
// counts.
func (s *SQLiteStore) CompleteRun(id string, r *report.ValidationReport) (err error) {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}

	status := RunStatusValid
	if !r.Valid() {
		status = RunStatusInvalid
	}

	tx, err := s.db.BeginTx(ctx(), nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx(),
		`UPDATE runs SET status = ?, dataset_version = ?, schema_version = ?, errors = ?, warnings = ?, completed_at = ?
		 WHERE id = ?`,
		string(status), r.DatasetVersion.String(), r.SchemaVersion.String(),
		len(r.Errors), len(r.Warnings), time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to complete run: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("run not found: %s", id)
	}

	for _, t := range tableStats(r) {
		if _, err = tx.ExecContext(ctx(),
			`INSERT INTO run_tables (run_id, table_id, row_count, column_count, errors, warnings) VALUES (?, ?, ?, ?, ?, ?)`,
			id, t.TableID, t.Rows, t.Columns, t.Errors, t.Warnings,
		); err != nil {
			return fmt.Errorf("failed to record table %s: %w", t.TableID, err)
		}
	}
	for _, rs := range ruleStats(r) {
		if _, err = tx.ExecContext(ctx(),
			`INSERT INTO run_rules (run_id, rule_id, errors, warnings) VALUES (?, ?, ?, ?)`,
			id, rs.RuleID, rs.Errors, rs.Warnings,
		); err != nil {
			return fmt.Errorf("failed to record rule %s: %w", rs.RuleID, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run: %w", err)
	}
	s.logger.Debug("completed run", slog.String("id", id), slog.String("status", string(status)))
	return nil
}

// FailRun marks a run that stopped before producing a report.
func (s *SQLiteStore) FailRun(id string, runErr error) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}

	msg := ""
	if runErr != nil {
		msg = runErr.Error()
	}
	res, err := s.db.ExecContext(ctx(),
		`UPDATE runs SET status = ?, completed_at = ?, error = ? WHERE id = ?`,
		string(RunStatusFailed), time.Now().UTC(), msg, id,
	)
	if err != nil {
		return fmt.Errorf("failed to fail run: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("run not found: %s", id)
	}
	return nil
}

// GetRun retrieves a run by ID.
func (s *SQLiteStore) GetRun(id string) (*Run, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	run, err := scanRun(s.db.QueryRowContext(ctx(), `SELECT `+runColumns+` FROM runs WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("run not found: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return run, nil
}

// GetRunDetail retrieves a run with its table and rule breakdowns.
func (s *SQLiteStore) GetRunDetail(id string) (*RunDetail, error) {
	run, err := s.GetRun(id)
	if err != nil {
		return nil, err
	}
	detail := &RunDetail{Run: run, Tables: []TableStats{}, Rules: []RuleStats{}}

	rows, err := s.db.QueryContext(ctx(),
		`SELECT table_id, row_count, column_count, errors, warnings FROM run_tables WHERE run_id = ? ORDER BY table_id`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get run tables: %w", err)
	}
	for rows.Next() {
		var t TableStats
		if err := rows.Scan(&t.TableID, &t.Rows, &t.Columns, &t.Errors, &t.Warnings); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("failed to scan run table: %w", err)
		}
		detail.Tables = append(detail.Tables, t)
	}
	if err := closeRows(rows); err != nil {
		return nil, err
	}

	rows, err = s.db.QueryContext(ctx(),
		`SELECT rule_id, errors, warnings FROM run_rules WHERE run_id = ? ORDER BY rule_id`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get run rules: %w", err)
	}
	for rows.Next() {
		var r RuleStats
		if err := rows.Scan(&r.RuleID, &r.Errors, &r.Warnings); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("failed to scan run rule: %w", err)
		}
		detail.Rules = append(detail.Rules, r)
	}
	if err := closeRows(rows); err != nil {
		return nil, err
	}
	return detail, nil
}

// ListRuns returns the most recent runs first. A limit <= 0 returns all.
func (s *SQLiteStore) ListRuns(limit int) ([]*Run, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}
	if limit <= 0 {
		limit = -1
	}

	rows, err := s.db.QueryContext(ctx(),
		`SELECT `+runColumns+` FROM runs ORDER BY started_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := closeRows(rows); err != nil {
		return nil, err
	}
	return runs, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (*Run, error) {
	run := &Run{}
	var status, inputs string
	var completedAt sql.NullTime
	var errMsg sql.NullString

	if err := sc.Scan(&run.ID, &status, &run.DatasetVersion, &run.SchemaVersion, &inputs,
		&run.Errors, &run.Warnings, &run.StartedAt, &completedAt, &errMsg); err != nil {
		return nil, err
	}
	run.Status = RunStatus(status)
	if inputs != "" {
		if err := json.Unmarshal([]byte(inputs), &run.Inputs); err != nil {
			return nil, fmt.Errorf("decode inputs of run %s: %w", run.ID, err)
		}
	}
	if completedAt.Valid {
		t := completedAt.Time
		run.CompletedAt = &t
	}
	if errMsg.Valid {
		run.Error = errMsg.String
	}
	return run, nil
}

func closeRows(rows *sql.Rows) error {
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return fmt.Errorf("failed to iterate rows: %w", err)
	}
	return rows.Close()
}

func tableStats(r *report.ValidationReport) []TableStats {
	byID := make(map[string]*TableStats, len(r.Tables))
	get := func(id string) *TableStats {
		t, ok := byID[id]
		if !ok {
			info := r.Tables[id]
			t = &TableStats{TableID: id, Rows: info.Rows, Columns: info.Columns}
			byID[id] = t
		}
		return t
	}
	for id := range r.Tables {
		get(id)
	}
	for _, d := range r.Errors {
		get(d.Table).Errors++
	}
	for _, d := range r.Warnings {
		get(d.Table).Warnings++
	}

	out := make([]TableStats, 0, len(byID))
	for _, t := range byID {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TableID < out[j].TableID })
	return out
}

func ruleStats(r *report.ValidationReport) []RuleStats {
	counts := make(map[core.RuleID]*RuleStats)
	get := func(id core.RuleID) *RuleStats {
		rs, ok := counts[id]
		if !ok {
			rs = &RuleStats{RuleID: id.String()}
			counts[id] = rs
		}
		return rs
	}
	for _, d := range r.Errors {
		get(d.Rule).Errors++
	}
	for _, d := range r.Warnings {
		get(d.Rule).Warnings++
	}

	out := make([]RuleStats, 0, len(counts))
	for _, rs := range counts {
		out = append(out, *rs)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RuleID < out[j].RuleID })
	return out
}
