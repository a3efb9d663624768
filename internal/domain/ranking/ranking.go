// Package ranking orders candidate courses by their stand-alone score.
package ranking

import (
	"context"
	"sort"

	"github.com/unitrack/planner/internal/domain/model"
	"github.com/unitrack/planner/internal/domain/scoring"
)

// BundleScorer is the part of the scorer the ranker depends on.
type BundleScorer interface {
	Score(ctx context.Context, req scoring.Request) scoring.Result
}

// Ranker sorts courses by the score each one gets as a singleton bundle.
type Ranker struct {
	scorer BundleScorer
}

// New returns a ranker backed by scorer.
func New(scorer BundleScorer) *Ranker {
	return &Ranker{scorer: scorer}
}

// Scores returns the singleton score of each course that could be scored.
// Courses missing from the map could not be scored.
func (r *Ranker) Scores(ctx context.Context, student string, period model.Period, courses []string) map[string]float64 {
	return r.scores(ctx, scoring.Request{Student: student, Period: period}, courses)
}

// Rank returns courses ordered by singleton score, highest first. The sort is
// stable: ties keep their input order, and courses that could not be scored
// go last in input order. When nothing can be scored, for example with an
// empty catalog, the input order is returned unchanged.
func (r *Ranker) Rank(ctx context.Context, student string, period model.Period, courses []string) []string {
	out, _ := r.Order(ctx, scoring.Request{Student: student, Period: period}, courses)
	return out
}

// Order is Rank with a template request, so callers can pass the student's
// semester or custom weights. The Courses field of base is ignored. It also
// returns the scores it ranked by.
func (r *Ranker) Order(ctx context.Context, base scoring.Request, courses []string) ([]string, map[string]float64) {
	out := append([]string(nil), courses...)
	scores := r.scores(ctx, base, courses)
	if len(scores) == 0 {
		return out, scores
	}
	sort.SliceStable(out, func(i, j int) bool {
		si, iok := scores[out[i]]
		sj, jok := scores[out[j]]
		switch {
		case iok && jok:
			return si > sj
		case iok:
			return true
		default:
			return false
		}
	})
	return out, scores
}

func (r *Ranker) scores(ctx context.Context, base scoring.Request, courses []string) map[string]float64 {
	out := make(map[string]float64, len(courses))
	for _, code := range courses {
		if _, done := out[code]; done {
			continue
		}
		req := base
		req.Courses = []string{code}
		res := r.scorer.Score(ctx, req)
		if res.Scored() {
			out[code] = res.Score
		}
	}
	return out
}
