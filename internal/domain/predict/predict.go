// Package predict provides grade predictors consumed by the bundle scorer.
package predict

import (
	"context"

	"github.com/unitrack/planner/internal/domain/model"
)

// Predictor estimates the final grade (0..20) a student would obtain in each
// course if they enrolled in all of them during period. Courses the predictor
// knows nothing about are left out of the result.
type Predictor interface {
	Predict(ctx context.Context, student string, courses []string, period model.Period) (map[string]float64, error)
}

// PredictorFunc adapts a function to Predictor.
type PredictorFunc func(ctx context.Context, student string, courses []string, period model.Period) (map[string]float64, error)

func (f PredictorFunc) Predict(ctx context.Context, student string, courses []string, period model.Period) (map[string]float64, error) {
	return f(ctx, student, courses, period)
}

// Static answers with the same grade per course code for every student.
type Static map[string]float64

func (s Static) Predict(_ context.Context, _ string, courses []string, _ model.Period) (map[string]float64, error) {
	out := make(map[string]float64, len(courses))
	for _, c := range courses {
		if g, ok := s[model.NormalizeCode(c)]; ok {
			out[c] = g
		}
	}
	return out, nil
}

// Constant predicts the same grade for every course.
type Constant float64

func (c Constant) Predict(_ context.Context, _ string, courses []string, _ model.Period) (map[string]float64, error) {
	out := make(map[string]float64, len(courses))
	for _, code := range courses {
		out[code] = float64(c)
	}
	return out, nil
}
