package validate

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/leapstack-labs/odmval/pkg/schema"
	"github.com/leapstack-labs/odmval/pkg/version"
)

// DefaultBatchSize is the number of rows checked per task.
const DefaultBatchSize = 1000

// Options configures a validation run.
type Options struct {
	// BatchSize is the number of rows per task. Zero means DefaultBatchSize.
	BatchSize int
	// Workers bounds the concurrent tasks per table. Zero means GOMAXPROCS.
	Workers int
	Logger  *slog.Logger
}

func (o Options) withDefaults() Options {
	if o.BatchSize <= 0 {
		o.BatchSize = DefaultBatchSize
	}
	if o.Workers <= 0 {
		o.Workers = runtime.GOMAXPROCS(0)
	}
	if o.Logger == nil {
		o.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return o
}

// TableResult is the outcome of validating one table.
type TableResult struct {
	ID      string
	Origin  Origin
	Rows    int
	Columns int
	// Coerced is the working copy of the rows after the coercion pass.
	Coerced    []Row
	Violations []Violation
}

// Result is the outcome of a validation run.
type Result struct {
	SchemaVersion  version.Version
	DatasetVersion version.Version
	// Tables are in dataset order. Tables unknown to the schema are listed
	// in Unchecked instead.
	Tables    []*TableResult
	Unchecked []string
}

// Violations returns every violation, table by table.
func (r *Result) Violations() []Violation {
	var out []Violation
	for _, t := range r.Tables {
		out = append(out, t.Violations...)
	}
	return out
}

// Table returns the result of a table.
func (r *Result) Table(id string) (*TableResult, bool) {
	for _, t := range r.Tables {
		if t.ID == id {
			return t, true
		}
	}
	return nil, false
}

// tableCheck is the read-only state shared by the batches of one table.
type tableCheck struct {
	table   *Table
	columns []column
}

func (tc *tableCheck) violation(kind ViolationKind, idx int, row Row, col string, v any, c schema.Constraint) Violation {
	return Violation{
		Kind:       kind,
		Table:      tc.table.ID,
		Column:     col,
		Row:        idx,
		Origin:     tc.table.Origin,
		Snapshot:   row,
		Value:      v,
		Constraint: c,
	}
}

// Run validates every table of ds that the schema declares. Data problems
// are returned as violations, never as errors; the error is non-nil only
// for an invalid schema or a cancelled context.
func Run(ctx context.Context, s *schema.Schema, ds *Dataset, opts Options) (*Result, error) {
	if s == nil || ds == nil {
		return nil, errors.New("validate: nil schema or dataset")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	opts = opts.withDefaults()

	res := &Result{SchemaVersion: s.Version, DatasetVersion: ds.Version}
	if res.DatasetVersion.IsZero() {
		res.DatasetVersion = s.Version
	}

	var checks []*tableCheck
	for _, t := range ds.Tables {
		ts, ok := s.Tables[t.ID]
		if !ok {
			opts.Logger.Debug("table not in schema", "table", t.ID)
			res.Unchecked = append(res.Unchecked, t.ID)
			continue
		}
		checks = append(checks, &tableCheck{table: t, columns: columnsOf(ts)})
	}
	res.Tables = make([]*TableResult, len(checks))

	g, gctx := errgroup.WithContext(ctx)
	for i, tc := range checks {
		g.Go(func() error {
			tr, err := runTable(gctx, tc, opts)
			if err != nil {
				return fmt.Errorf("table %s: %w", tc.table.ID, err)
			}
			res.Tables[i] = tr
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	opts.Logger.Debug("validation finished",
		"tables", len(res.Tables),
		"violations", len(res.Violations()))
	return res, nil
}

// runTable runs the coercion pass over all batches, then the constraint
// pass. Each batch writes only its own slots of the result slices.
func runTable(ctx context.Context, tc *tableCheck, opts Options) (*TableResult, error) {
	rows := tc.table.Rows
	batches := batchBounds(len(rows), opts.BatchSize)

	coerced := make([]Row, len(rows))
	coerceOut := make([][]Violation, len(batches))
	err := forEachBatch(ctx, batches, opts.Workers, func(b int, lo, hi int) {
		for i := lo; i < hi; i++ {
			work, vs := coerceRow(tc, i, rows[i])
			coerced[i] = work
			coerceOut[b] = append(coerceOut[b], vs...)
		}
	})
	if err != nil {
		return nil, err
	}

	checkOut := make([][]Violation, len(batches))
	err = forEachBatch(ctx, batches, opts.Workers, func(b int, lo, hi int) {
		for i := lo; i < hi; i++ {
			checkOut[b] = append(checkOut[b], checkRow(tc, i, rows[i], coerced[i])...)
		}
	})
	if err != nil {
		return nil, err
	}

	tr := &TableResult{
		ID:      tc.table.ID,
		Origin:  tc.table.Origin,
		Rows:    len(rows),
		Columns: len(tc.table.ColumnIDs()),
		Coerced: coerced,
	}
	for b := range batches {
		tr.Violations = append(tr.Violations, coerceOut[b]...)
		tr.Violations = append(tr.Violations, checkOut[b]...)
	}
	opts.Logger.Debug("validated table",
		"table", tr.ID,
		"rows", tr.Rows,
		"batches", len(batches),
		"violations", len(tr.Violations))
	return tr, nil
}

type bounds struct{ lo, hi int }

func batchBounds(n, size int) []bounds {
	var out []bounds
	for lo := 0; lo < n; lo += size {
		out = append(out, bounds{lo: lo, hi: min(lo+size, n)})
	}
	return out
}

// forEachBatch runs fn for every batch on at most workers goroutines. The
// context is checked before each batch starts.
func forEachBatch(ctx context.Context, batches []bounds, workers int, fn func(b, lo, hi int)) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for b, bb := range batches {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			fn(b, bb.lo, bb.hi)
			return nil
		})
	}
	return g.Wait()
}
