// Package scoring computes the weighted multi-metric score of a course bundle.
package scoring

import (
	"context"
	"fmt"
	"time"

	"github.com/unitrack/planner/internal/domain/model"
	"github.com/unitrack/planner/internal/domain/predict"
	"github.com/unitrack/planner/pkg/logger"
	"github.com/unitrack/planner/pkg/metrics"
)

// Default scoring configuration constants.
const (
	DefaultMaxCredits    = 26
	DefaultFailThreshold = 11.5
	DefaultGrade         = 14.0

	qualityWeight     = 0.5
	criticalityWeight = 0.3
	loadPenaltyFactor = 10.0
	failPenaltyFactor = 50.0
)

// Failure reasons, also used as metric label values.
const (
	ReasonCatalogUnavailable = "catalog_unavailable"
	ReasonEmptyBundle        = "empty_bundle"
	ReasonUnknownCourse      = "unknown_course"
)

// Catalog is the read side of the course catalog the scorer needs.
type Catalog interface {
	Get(code string) (model.Course, error)
	Empty() bool
}

// Weights are the per-metric coefficients of a course score.
type Weights struct {
	Lag        float64 `koanf:"lag" json:"lag"`
	Efficiency float64 `koanf:"efficiency" json:"efficiency"`
	Simplicity float64 `koanf:"simplicity" json:"simplicity"`
	Mandatory  float64 `koanf:"mandatory" json:"mandatory"`
	Family     float64 `koanf:"family" json:"family"`
	Cluster    float64 `koanf:"cluster" json:"cluster"`
	Dependents float64 `koanf:"dependents" json:"dependents"`
	Depth      float64 `koanf:"depth" json:"depth"`
	Prediction float64 `koanf:"prediction" json:"prediction"`
}

// DefaultWeights returns the production weight vector.
func DefaultWeights() Weights {
	return Weights{
		Lag:        0.05,
		Efficiency: 0.05,
		Simplicity: 0.05,
		Mandatory:  0.25,
		Family:     0.10,
		Cluster:    0.10,
		Dependents: 0.20,
		Depth:      0.20,
		Prediction: 0.30,
	}
}

// Metrics are the eight structural metrics of one course. They depend only
// on the course and the student's semester, never on the rest of the bundle.
type Metrics struct {
	Lag        float64 `json:"lag"`
	Efficiency float64 `json:"efficiency"`
	Simplicity float64 `json:"simplicity"`
	Mandatory  float64 `json:"mandatory"`
	Family     float64 `json:"family"`
	Cluster    float64 `json:"cluster"`
	Dependents float64 `json:"dependents"`
	Depth      float64 `json:"depth"`
}

// Dot returns the weighted sum of m plus the weighted predicted grade.
func (w Weights) Dot(m Metrics, grade float64) float64 {
	return w.Lag*m.Lag +
		w.Efficiency*m.Efficiency +
		w.Simplicity*m.Simplicity +
		w.Mandatory*m.Mandatory +
		w.Family*m.Family +
		w.Cluster*m.Cluster +
		w.Dependents*m.Dependents +
		w.Depth*m.Depth +
		w.Prediction*grade
}

// CourseDetail is the per-course breakdown of a bundle score.
type CourseDetail struct {
	Code           string  `json:"code"`
	Name           string  `json:"name"`
	Credits        int     `json:"credits"`
	Hours          int     `json:"hours"`
	Metrics        Metrics `json:"metrics"`
	PredictedGrade float64 `json:"predicted_grade"`
	Predicted      bool    `json:"predicted"`
	Score          float64 `json:"score"`
}

// Result is the outcome of scoring one bundle.
type Result struct {
	Score              float64        `json:"score"`
	MeanQuality        float64        `json:"mean_quality"`
	TotalCredits       int            `json:"total_credits"`
	TotalHours         int            `json:"total_hours"`
	Valid              bool           `json:"valid"`
	Failures           int            `json:"predicted_failures"`
	CreditPenalty      float64        `json:"credit_penalty"`
	FailPenalty        float64        `json:"fail_penalty"`
	PredictionFallback bool           `json:"prediction_fallback"`
	Message            string         `json:"message"`
	Reason             string         `json:"reason,omitempty"`
	Courses            []CourseDetail `json:"courses"`
}

// Err maps a failed result to its sentinel error; nil for scored bundles.
func (r Result) Err() error {
	switch r.Reason {
	case ReasonCatalogUnavailable:
		return ErrCatalogUnavailable
	case ReasonEmptyBundle:
		return ErrEmptyBundle
	case ReasonUnknownCourse:
		return fmt.Errorf("%w: %s", ErrUnknownCourse, r.Message)
	}
	return nil
}

// Scored reports whether the bundle was actually evaluated.
func (r Result) Scored() bool { return r.Reason == "" }

// Request describes one bundle to score.
type Request struct {
	Student  string
	Period   model.Period
	Semester int
	Courses  []string
	// Weights overrides the scorer's weights for this call when set.
	Weights *Weights
}

// Option applies a configuration option to the Scorer.
type Option func(*Scorer)

// WithWeights sets the default weight vector.
func WithWeights(w Weights) Option {
	return func(s *Scorer) { s.weights = w }
}

// WithFamilyAffinity replaces the family affinity table.
func WithFamilyAffinity(table map[string]float64) Option {
	return func(s *Scorer) {
		if len(table) == 0 {
			return
		}
		s.family = make(map[string]float64, len(table))
		for k, v := range table {
			s.family[normalizeName(k)] = v
		}
	}
}

// WithClusters replaces the course name to cluster table.
func WithClusters(clusters map[int][]string) Option {
	return func(s *Scorer) {
		if len(clusters) > 0 {
			s.clusterOf = clusterIndex(clusters)
		}
	}
}

// WithClusterScores replaces the cluster score table.
func WithClusterScores(scores map[int]float64) Option {
	return func(s *Scorer) {
		if len(scores) > 0 {
			s.clusterScore = scores
		}
	}
}

// WithMaxCredits sets the credit ceiling above which a bundle is invalid.
func WithMaxCredits(n int) Option {
	return func(s *Scorer) {
		if n > 0 {
			s.maxCredits = n
		}
	}
}

// WithFailThreshold sets the predicted grade below which a course counts as failed.
func WithFailThreshold(t float64) Option {
	return func(s *Scorer) {
		if t > 0 {
			s.failThreshold = t
		}
	}
}

// WithDefaultGrade sets the grade used for every course when prediction fails.
func WithDefaultGrade(g float64) Option {
	return func(s *Scorer) {
		if g >= 0 {
			s.defaultGrade = g
		}
	}
}

// WithLogger sets the scorer logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Scorer) {
		if l != nil {
			s.log = l
		}
	}
}

// Scorer evaluates course bundles. It is safe for concurrent use when its
// catalog and predictor are.
type Scorer struct {
	catalog   Catalog
	predictor predict.Predictor
	log       logger.Logger

	weights       Weights
	family        map[string]float64
	clusterOf     map[string]int
	clusterScore  map[int]float64
	maxCredits    int
	failThreshold float64
	defaultGrade  float64
}

// New creates a scorer over catalog. A nil predictor behaves as a failing one.
func New(catalog Catalog, predictor predict.Predictor, opts ...Option) *Scorer {
	s := &Scorer{
		catalog:       catalog,
		predictor:     predictor,
		log:           logger.Discard(),
		weights:       DefaultWeights(),
		family:        DefaultFamilyAffinity(),
		clusterOf:     clusterIndex(DefaultClusters()),
		clusterScore:  DefaultClusterScores(),
		maxCredits:    DefaultMaxCredits,
		failThreshold: DefaultFailThreshold,
		defaultGrade:  DefaultGrade,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// MaxCredits returns the configured credit ceiling.
func (s *Scorer) MaxCredits() int { return s.maxCredits }

// Weights returns the default weight vector.
func (s *Scorer) Weights() Weights { return s.weights }

// CourseMetrics computes the structural metrics of c for a student in semester.
func (s *Scorer) CourseMetrics(c model.Course, semester int) Metrics {
	m := Metrics{
		Lag:        float64(semester - c.Level),
		Efficiency: float64(c.Credits) / float64(max(c.Hours, 1)),
		Simplicity: 1 / float64(1+len(c.Prerequisites)),
		Family:     s.family[normalizeName(c.Family)],
		Dependents: float64(c.Dependents),
		Depth:      float64(c.MaxDepth),
	}
	if c.Mandatory() {
		m.Mandatory = 1
	}
	if id, ok := s.clusterOf[normalizeName(c.Name)]; ok {
		m.Cluster = s.clusterScore[id]
	}
	return m
}

// Score evaluates a bundle. Failures are reported in the result, never as
// an error: an unavailable catalog, an empty bundle and unknown codes all
// yield a zero, invalid result with a message.
func (s *Scorer) Score(ctx context.Context, req Request) Result {
	start := time.Now()

	if s.catalog == nil || s.catalog.Empty() {
		return s.reject(ReasonCatalogUnavailable, "catalog unavailable")
	}
	codes := dedupe(req.Courses)
	if len(codes) == 0 {
		return s.reject(ReasonEmptyBundle, "bundle is empty")
	}

	courses := make([]model.Course, 0, len(codes))
	for _, code := range codes {
		c, err := s.catalog.Get(code)
		if err != nil {
			return s.reject(ReasonUnknownCourse, fmt.Sprintf("course %q not found in catalog", code))
		}
		courses = append(courses, c)
	}

	grades, fallback := s.predict(ctx, req, codes)
	weights := s.weights
	if req.Weights != nil {
		weights = *req.Weights
	}

	res := Result{
		Valid:              true,
		PredictionFallback: fallback,
		Courses:            make([]CourseDetail, 0, len(courses)),
	}
	var sum, criticality float64
	for _, c := range courses {
		m := s.CourseMetrics(c, req.Semester)
		grade, ok := grades[c.Code]
		score := weights.Dot(m, grade)
		sum += score
		criticality += m.Dependents + m.Depth
		res.TotalCredits += c.Credits
		res.TotalHours += c.Hours
		if ok && grade < s.failThreshold {
			res.Failures++
		}
		res.Courses = append(res.Courses, CourseDetail{
			Code:           c.Code,
			Name:           c.Name,
			Credits:        c.Credits,
			Hours:          c.Hours,
			Metrics:        m,
			PredictedGrade: grade,
			Predicted:      ok,
			Score:          score,
		})
	}
	res.MeanQuality = sum / float64(len(courses))
	res.Message = "valid bundle"
	if excess := res.TotalCredits - s.maxCredits; excess > 0 {
		res.CreditPenalty = float64(excess) * loadPenaltyFactor
		res.Valid = false
		res.Message = fmt.Sprintf("load exceeds the %d credit limit", s.maxCredits)
	}
	res.FailPenalty = float64(res.Failures) * failPenaltyFactor
	res.Score = qualityWeight*res.MeanQuality + criticalityWeight*criticality - res.CreditPenalty - res.FailPenalty

	metrics.RecordBundleScored(float64(time.Since(start).Microseconds()) / 1000)
	return res
}

// predict returns grades keyed by normalized code. On predictor failure
// every course gets the default grade and fallback is true.
func (s *Scorer) predict(ctx context.Context, req Request, codes []string) (map[string]float64, bool) {
	var (
		raw map[string]float64
		err error
	)
	if s.predictor == nil {
		err = predict.ErrNoPredictions
	} else {
		raw, err = s.predictor.Predict(ctx, req.Student, codes, req.Period)
	}
	if err != nil {
		s.log.Warn(ctx, "grade prediction failed, using default grade",
			logger.String("student", req.Student),
			logger.Float64("default_grade", s.defaultGrade),
			logger.Error(err))
		metrics.RecordPredictionFallback()
		out := make(map[string]float64, len(codes))
		for _, c := range codes {
			out[c] = s.defaultGrade
		}
		return out, true
	}
	out := make(map[string]float64, len(raw))
	for code, g := range raw {
		out[model.NormalizeCode(code)] = g
	}
	return out, false
}

func (s *Scorer) reject(reason, msg string) Result {
	metrics.RecordScoringFailure(reason)
	return Result{Valid: false, Reason: reason, Message: msg, Courses: []CourseDetail{}}
}

// dedupe normalizes codes and drops blanks and repeats, keeping first-seen order.
func dedupe(codes []string) []string {
	seen := make(map[string]struct{}, len(codes))
	out := make([]string, 0, len(codes))
	for _, c := range codes {
		c = model.NormalizeCode(c)
		if c == "" {
			continue
		}
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}
