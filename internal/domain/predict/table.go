package predict

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/gocarina/gocsv"

	"github.com/unitrack/planner/internal/domain/catalog"
	"github.com/unitrack/planner/internal/domain/model"
	"github.com/unitrack/planner/pkg/logger"
)

// Row is one precomputed prediction.
type Row struct {
	Student string `csv:"COD_PERSONA"`
	Course  string `csv:"COD_CURSO"`
	Period  string `csv:"PER_MATRICULA"`
	Grade   string `csv:"NOTA_PREDICHA"`
}

type rowKey struct {
	student string
	course  string
}

type entry struct {
	period model.Period
	grade  float64
}

// Table serves predictions from a CSV export. The file is read on first use
// and kept in memory; concurrent callers share the single load.
type Table struct {
	open func() (io.ReadCloser, error)
	log  logger.Logger

	once    sync.Once
	loadErr error
	rows    map[rowKey][]entry
}

// TableOption configures a Table.
type TableOption func(*Table)

// WithTableLogger sets the logger used for lookups that fall back to history.
func WithTableLogger(l logger.Logger) TableOption {
	return func(t *Table) {
		if l != nil {
			t.log = l
		}
	}
}

// NewTable returns a predictor backed by the CSV file at path.
func NewTable(path string, opts ...TableOption) *Table {
	return newTable(func() (io.ReadCloser, error) { return os.Open(path) }, opts...)
}

// NewTableFromReader returns a predictor backed by r, read on first use.
func NewTableFromReader(r io.Reader, opts ...TableOption) *Table {
	return newTable(func() (io.ReadCloser, error) { return io.NopCloser(r), nil }, opts...)
}

func newTable(open func() (io.ReadCloser, error), opts ...TableOption) *Table {
	t := &Table{open: open, log: logger.Discard()}
	for _, o := range opts {
		o(t)
	}
	return t
}

func (t *Table) load() {
	rc, err := t.open()
	if err != nil {
		t.loadErr = fmt.Errorf("%w: %v", ErrLoadTable, err)
		return
	}
	defer rc.Close()

	var rows []*Row
	if err := gocsv.UnmarshalCSV(catalog.NewCSVReader(rc), &rows); err != nil {
		t.loadErr = fmt.Errorf("%w: %v", ErrLoadTable, err)
		return
	}
	t.rows = make(map[rowKey][]entry, len(rows))
	for _, r := range rows {
		grade, err := strconv.ParseFloat(strings.TrimSpace(r.Grade), 64)
		if err != nil {
			continue
		}
		k := rowKey{student: strings.TrimSpace(r.Student), course: model.NormalizeCode(r.Course)}
		t.rows[k] = append(t.rows[k], entry{period: model.Period(strings.TrimSpace(r.Period)), grade: grade})
	}
}

// Len returns the number of (student, course) pairs, loading the table if needed.
func (t *Table) Len() (int, error) {
	t.once.Do(t.load)
	return len(t.rows), t.loadErr
}

// Predict looks up every course for the exact period first and otherwise
// uses the most recent period on record for that student and course.
// It fails with ErrNoPredictions when no course has any row.
func (t *Table) Predict(ctx context.Context, student string, courses []string, period model.Period) (map[string]float64, error) {
	t.once.Do(t.load)
	if t.loadErr != nil {
		return nil, t.loadErr
	}
	student = strings.TrimSpace(student)
	out := make(map[string]float64, len(courses))
	for _, code := range courses {
		entries := t.rows[rowKey{student: student, course: model.NormalizeCode(code)}]
		if len(entries) == 0 {
			continue
		}
		best, exact := pick(entries, period)
		if !exact {
			t.log.Debug(ctx, "using historical prediction",
				logger.String("student", student),
				logger.String("course", code),
				logger.String("period", string(best.period)))
		}
		out[code] = best.grade
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: student %s", ErrNoPredictions, student)
	}
	return out, nil
}

// pick returns the row for period when present, else the latest one.
func pick(entries []entry, period model.Period) (entry, bool) {
	latest := entries[0]
	for _, e := range entries {
		if e.period == period {
			return e, true
		}
		if e.period > latest.period {
			latest = e
		}
	}
	return latest, false
}
