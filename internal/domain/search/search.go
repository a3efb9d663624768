// Package search enumerates conflict-free section assignments for a ranked
// course list and keeps the best scoring schedules found within a time budget.
package search

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/unitrack/planner/internal/domain/model"
	"github.com/unitrack/planner/internal/domain/scoring"
	"github.com/unitrack/planner/pkg/logger"
	"github.com/unitrack/planner/pkg/metrics"
)

// Default search configuration constants.
const (
	DefaultMinCredits = 14
	DefaultMaxCredits = 26
	DefaultTopK       = 3
	DefaultBudget     = 30 * time.Second
)

// Credits resolves the credit value of a course code.
type Credits interface {
	Credits(code string) (int, bool)
}

// BundleScorer scores the course set of an accepted schedule.
type BundleScorer interface {
	Score(ctx context.Context, req scoring.Request) scoring.Result
}

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithCreditWindow sets the inclusive credit range a schedule must fall in.
func WithCreditWindow(minCredits, maxCredits int) Option {
	return func(e *Engine) {
		if minCredits >= 0 && maxCredits >= minCredits {
			e.minCredits = minCredits
			e.maxCredits = maxCredits
		}
	}
}

// WithTopK sets how many schedules are kept.
func WithTopK(k int) Option {
	return func(e *Engine) {
		if k > 0 {
			e.k = k
		}
	}
}

// WithInclusivePrune cuts branches as soon as credits reach the ceiling
// instead of when they exceed it, matching the planner's original ">=" rule.
// Schedules at exactly the ceiling are then never produced.
func WithInclusivePrune(on bool) Option {
	return func(e *Engine) { e.inclusivePrune = on }
}

// WithSkipFirst explores "skip this course" before taking its sections.
func WithSkipFirst(on bool) Option {
	return func(e *Engine) { e.skipFirst = on }
}

// WithClock replaces the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithLogger sets the engine logger.
func WithLogger(l logger.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// Engine runs schedule searches. It holds no per-search state and is safe
// for concurrent use.
type Engine struct {
	credits Credits
	scorer  BundleScorer
	log     logger.Logger
	now     func() time.Time

	minCredits     int
	maxCredits     int
	k              int
	inclusivePrune bool
	skipFirst      bool
}

// New creates a search engine.
func New(credits Credits, scorer BundleScorer, opts ...Option) *Engine {
	e := &Engine{
		credits:    credits,
		scorer:     scorer,
		log:        logger.Discard(),
		now:        time.Now,
		minCredits: DefaultMinCredits,
		maxCredits: DefaultMaxCredits,
		k:          DefaultTopK,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Request describes one search.
type Request struct {
	Student  string
	Period   model.Period
	Semester int
	// Courses in ranked order; the search decides them front to back.
	Courses []string
	// Sections per course code. Courses without sections can only be skipped.
	Sections map[string][]model.Section
	Budget   time.Duration
}

// Schedule is one retained result.
type Schedule struct {
	ID          string          `json:"id"`
	Rank        int             `json:"rank"`
	Courses     []string        `json:"courses"`
	Sections    []Assignment    `json:"sections"`
	Layout      []DaySchedule   `json:"layout"`
	TotalBlocks int             `json:"total_blocks"`
	TotalHours  float64         `json:"total_hours"`
	Days        []model.Weekday `json:"days_with_classes"`
	Score       float64         `json:"score"`
	Result      scoring.Result  `json:"result"`
}

// Outcome is the result of a search.
type Outcome struct {
	Success        bool          `json:"success"`
	Schedules      []Schedule    `json:"schedules"`
	Evaluated      int           `json:"evaluated"`
	Nodes          int           `json:"nodes"`
	Elapsed        time.Duration `json:"elapsed"`
	BudgetExceeded bool          `json:"budget_exceeded"`
	Cancelled      bool          `json:"cancelled"`
	Message        string        `json:"message"`
}

// Err returns ErrNoFeasibleSchedule when nothing was found, wrapping
// ErrSearchCancelled or ErrBudgetExceeded when the search stopped early.
func (o Outcome) Err() error {
	if o.Success {
		return nil
	}
	if o.Cancelled {
		return fmt.Errorf("%w: %w", ErrNoFeasibleSchedule, ErrSearchCancelled)
	}
	if o.BudgetExceeded {
		return fmt.Errorf("%w: %w", ErrNoFeasibleSchedule, ErrBudgetExceeded)
	}
	return ErrNoFeasibleSchedule
}

// run is the state of one search call, passed by pointer through the recursion.
type run struct {
	req      *Request
	ctx      context.Context
	start    time.Time
	deadline time.Time
	credits  []int
	state    schedule
	best     *topK

	evaluated int
	nodes     int
	expired   bool
	cancelled bool
}

// Search explores, depth first, every assignment of at most one section per
// course such that no two sessions overlap, and keeps the top-K by bundle
// score among leaves whose credits fall inside the window. When the budget
// runs out the best schedules found so far are returned.
func (e *Engine) Search(ctx context.Context, req Request) Outcome {
	start := e.now()
	r := &run{
		req:      &req,
		ctx:      ctx,
		start:    start,
		deadline: start.Add(req.Budget),
		credits:  make([]int, len(req.Courses)),
		best:     newTopK(e.k),
	}
	for i, code := range req.Courses {
		if c, ok := e.credits.Credits(code); ok {
			r.credits[i] = c
		}
	}

	e.visit(r, 0)

	out := e.summarize(r, e.now().Sub(start))
	outcome := metrics.OutcomeFound
	switch {
	case !out.Success && out.Cancelled:
		outcome = metrics.OutcomeCancelled
	case !out.Success && out.BudgetExceeded:
		outcome = metrics.OutcomeBudgetExceeded
	case !out.Success:
		outcome = metrics.OutcomeNone
	}
	metrics.RecordSearch(outcome, float64(out.Elapsed.Microseconds())/1000, out.Evaluated, out.Nodes, len(out.Schedules))
	e.log.Info(ctx, "schedule search finished",
		logger.String("student", req.Student),
		logger.Int("courses", len(req.Courses)),
		logger.Int("evaluated", out.Evaluated),
		logger.Int("nodes", out.Nodes),
		logger.Int("schedules", len(out.Schedules)),
		logger.Bool("budget_exceeded", out.BudgetExceeded),
		logger.Bool("cancelled", out.Cancelled),
		logger.Duration("elapsed", out.Elapsed))
	return out
}

func (e *Engine) visit(r *run, i int) {
	if r.expired {
		return
	}
	if r.ctx.Err() != nil {
		r.expired = true
		r.cancelled = true
		return
	}
	if !e.now().Before(r.deadline) {
		r.expired = true
		return
	}
	r.nodes++

	if r.state.credits > e.maxCredits || (e.inclusivePrune && r.state.credits >= e.maxCredits) {
		return
	}
	if i >= len(r.req.Courses) {
		if r.state.credits >= e.minCredits {
			e.accept(r)
		}
		return
	}

	if e.skipFirst {
		e.visit(r, i+1)
		e.takeEach(r, i)
		return
	}
	e.takeEach(r, i)
	e.visit(r, i+1)
}

func (e *Engine) takeEach(r *run, i int) {
	code := r.req.Courses[i]
	for _, sec := range r.req.Sections[code] {
		if r.expired {
			return
		}
		if !r.state.fits(sec) {
			continue
		}
		r.state.take(code, r.credits[i], sec)
		e.visit(r, i+1)
		r.state.undo(r.credits[i], sec)
	}
}

// accept scores a leaf and offers it to the top-K list. Leaves that cannot
// enter a full list are dropped before the state is copied.
func (e *Engine) accept(r *run) {
	r.evaluated++
	res := e.scorer.Score(r.ctx, scoring.Request{
		Student:  r.req.Student,
		Period:   r.req.Period,
		Semester: r.req.Semester,
		Courses:  append([]string(nil), r.state.courses...),
	})
	if !r.best.admits(res.Score) {
		return
	}
	r.best.insert(candidate{score: res.Score, result: res, snap: r.state.snapshot()})
}

func (e *Engine) summarize(r *run, elapsed time.Duration) Outcome {
	out := Outcome{
		Success:        r.best.len() > 0,
		Schedules:      make([]Schedule, 0, r.best.len()),
		Evaluated:      r.evaluated,
		Nodes:          r.nodes,
		Elapsed:        elapsed,
		BudgetExceeded: r.expired && !r.cancelled,
		Cancelled:      r.cancelled,
	}
	for i, c := range r.best.items {
		out.Schedules = append(out.Schedules, buildSchedule(c, i+1))
	}

	secs := math.Round(elapsed.Seconds()*100) / 100
	if !out.Success && out.Cancelled {
		out.Message = fmt.Sprintf("search cancelled after evaluating %d combinations in %.2f seconds", r.evaluated, secs)
		return out
	}
	if !out.Success {
		out.Message = fmt.Sprintf("evaluated %d combinations in %.2f seconds but found no schedule compatible with the given courses", r.evaluated, secs)
		return out
	}
	lines := make([]string, 0, len(out.Schedules))
	for _, s := range out.Schedules {
		names := strings.Join(s.Courses, ", ")
		if names == "" {
			names = "no courses"
		}
		lines = append(lines, fmt.Sprintf("#%d (%s)", s.Rank, names))
	}
	out.Message = fmt.Sprintf("evaluated %d combinations in %.2f seconds.\ntop %d schedules:\n%s",
		r.evaluated, secs, len(out.Schedules), strings.Join(lines, "\n"))
	return out
}

func buildSchedule(c candidate, rank int) Schedule {
	s := Schedule{
		ID:       uuid.NewString(),
		Rank:     rank,
		Courses:  c.snap.courses,
		Sections: c.snap.chosen,
		Layout:   c.snap.layout,
		Days:     []model.Weekday{},
		Score:    c.score,
		Result:   c.result,
	}
	minutes := 0
	for _, d := range c.snap.layout {
		if len(d.Blocks) > 0 {
			s.Days = append(s.Days, d.Day)
		}
		s.TotalBlocks += len(d.Blocks)
		for _, b := range d.Blocks {
			minutes += max(b.End.Minutes()-b.Start.Minutes(), 0)
		}
	}
	s.TotalHours = math.Round(float64(minutes)/60*100) / 100
	return s
}
