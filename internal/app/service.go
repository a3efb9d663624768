// Package service provides the core business service that implements
// the dependencies required by the HTTP API and the command line tool.
package service

import (
	"context"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/unitrack/planner/internal/adapters/repository"
	"github.com/unitrack/planner/internal/domain/catalog"
	"github.com/unitrack/planner/internal/domain/model"
	"github.com/unitrack/planner/internal/domain/predict"
	"github.com/unitrack/planner/internal/domain/progress"
	"github.com/unitrack/planner/internal/domain/ranking"
	"github.com/unitrack/planner/internal/domain/scoring"
	"github.com/unitrack/planner/internal/domain/search"
	"github.com/unitrack/planner/internal/domain/types"
	"github.com/unitrack/planner/pkg/logger"
	"github.com/unitrack/planner/pkg/metrics"
)

var tracer = otel.Tracer("unitrack.planner")

// Service implements the planner operations on top of the loaded reference data.
type Service struct {
	mu sync.RWMutex

	// Core components
	catalog   *catalog.Catalog
	store     *repository.MemoryStore
	predictor predict.Predictor
	scorer    *scoring.Scorer
	ranker    *ranking.Ranker
	engine    *search.Engine

	// Configuration
	catalogPaths       catalog.Paths
	dataPaths          repository.Paths
	scoringOpts        []scoring.Option
	searchOpts         []search.Option
	policy             progress.Policy
	defaultBudget      time.Duration
	maxBudget          time.Duration
	compareConcurrency int

	// State
	started   bool
	startedAt time.Time

	// Logging
	logger logger.Logger
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		policy:             progress.Strict,
		defaultBudget:      search.DefaultBudget,
		maxBudget:          4 * search.DefaultBudget,
		compareConcurrency: 8,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start loads the reference data and builds the scoring and search
// components. A catalog that cannot be loaded leaves the service running
// degraded; a data file that cannot be loaded is an error.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting planner service...")

	if s.catalog == nil {
		s.catalog = catalog.Load(ctx, s.catalogPaths, s.logger.Named("catalog"))
	}
	if s.store == nil {
		s.store = repository.NewMemoryStore(repository.WithLogger(s.logger.Named("repository")))
		if _, err := s.store.Load(ctx, s.dataPaths); err != nil {
			s.store = nil
			return fmt.Errorf("load reference data: %w", err)
		}
	}
	if s.predictor == nil {
		s.logger.Warn(ctx, "no grade predictor configured, every bundle uses the default grade")
	}

	scoringOpts := append([]scoring.Option{scoring.WithLogger(s.logger.Named("scoring"))}, s.scoringOpts...)
	s.scorer = scoring.New(s.catalog, s.predictor, scoringOpts...)
	s.ranker = ranking.New(s.scorer)
	searchOpts := append([]search.Option{search.WithLogger(s.logger.Named("search"))}, s.searchOpts...)
	s.engine = search.New(s.catalog, s.scorer, searchOpts...)

	metrics.UpdateCatalogSize(s.catalog.Len())

	s.started = true
	s.startedAt = time.Now()
	s.logger.Info(ctx, "planner service started",
		logger.Int("courses", s.catalog.Len()),
		logger.Int("sections", s.store.SectionCount(ctx)),
		logger.Int("students", s.store.StudentCount(ctx)),
		logger.Bool("predictor", s.predictor != nil),
	)
	return nil
}

// Stop releases the service components.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	s.started = false
	s.logger.Info(context.Background(), "planner service stopped")
}

// deps is the read-only view of the components one call needs.
type deps struct {
	catalog *catalog.Catalog
	store   *repository.MemoryStore
	scorer  *scoring.Scorer
	ranker  *ranking.Ranker
	engine  *search.Engine
}

func (s *Service) deps() (deps, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return deps{}, ErrNotStarted
	}
	return deps{catalog: s.catalog, store: s.store, scorer: s.scorer, ranker: s.ranker, engine: s.engine}, nil
}

// Recommend ranks the candidate courses and searches for the best
// conflict-free schedules. Unknown course codes and unknown students are
// rejected before any search runs. A search that finds nothing is not an error: the
// recommendation then carries Success=false and a message.
func (s *Service) Recommend(ctx context.Context, req types.RecommendRequest) (types.Recommendation, error) {
	ctx, span := tracer.Start(ctx, "planner.Recommend",
		trace.WithAttributes(
			attribute.String("planner.student", req.StudentID),
			attribute.String("planner.period", req.Period),
			attribute.Int("planner.courses", len(req.Courses)),
		),
	)
	defer span.End()

	rec, err := s.recommend(ctx, req)
	if err != nil {
		fail(span, err)
		return types.Recommendation{}, err
	}
	span.SetAttributes(
		attribute.Int("planner.evaluated", rec.Evaluated),
		attribute.Int("planner.schedules", len(rec.Schedules)),
		attribute.Bool("planner.budget_exceeded", rec.BudgetExceeded),
		attribute.Bool("planner.cancelled", rec.Cancelled),
	)
	span.SetStatus(codes.Ok, "")
	return rec, nil
}

func (s *Service) recommend(ctx context.Context, req types.RecommendRequest) (types.Recommendation, error) {
	d, err := s.deps()
	if err != nil {
		return types.Recommendation{}, err
	}
	if err := types.Validate(req); err != nil {
		return types.Recommendation{}, err
	}
	if d.catalog.Empty() {
		return types.Recommendation{}, ErrCatalogUnavailable
	}
	courses := normalize(req.Courses)
	if unknown := missing(d.catalog, courses); len(unknown) > 0 {
		return types.Recommendation{}, fmt.Errorf("%w: unknown courses: %s", ErrInvalidRequest, strings.Join(unknown, ", "))
	}

	student := strings.TrimSpace(req.StudentID)
	// Students are only checked when a student table was loaded.
	if d.store.StudentCount(ctx) > 0 {
		if _, err := d.store.Student(ctx, student); err != nil {
			return types.Recommendation{}, err
		}
	}
	period := model.Period(req.Period)
	base := scoring.Request{Student: student, Period: period, Semester: req.Semester}

	ranked, _ := d.ranker.Order(ctx, base, courses)
	sections, err := d.store.SectionsFor(ctx, ranked)
	if err != nil {
		return types.Recommendation{}, err
	}

	out := d.engine.Search(ctx, search.Request{
		Student:  student,
		Period:   period,
		Semester: req.Semester,
		Courses:  ranked,
		Sections: sections,
		Budget:   s.budget(req.MaxTime),
	})
	return types.NewRecommendation(uuid.NewString(), student, req.Period, ranked, out), nil
}

// budget converts a requested number of seconds into a search budget,
// clamped to the configured ceiling.
func (s *Service) budget(maxTime *float64) time.Duration {
	if maxTime == nil || *maxTime <= 0 || math.IsNaN(*maxTime) {
		return s.defaultBudget
	}
	if *maxTime >= s.maxBudget.Seconds() {
		return s.maxBudget
	}
	return time.Duration(*maxTime * float64(time.Second))
}

// ScoreBundle scores one bundle. Bundles the scorer rejects (unknown course,
// empty bundle, empty catalog) come back as invalid results, not errors.
func (s *Service) ScoreBundle(ctx context.Context, req types.ScoreRequest) (scoring.Result, error) {
	ctx, span := tracer.Start(ctx, "planner.ScoreBundle",
		trace.WithAttributes(
			attribute.String("planner.student", req.StudentID),
			attribute.StringSlice("planner.courses", req.Courses),
		),
	)
	defer span.End()

	d, err := s.deps()
	if err == nil {
		err = types.Validate(req)
	}
	if err != nil {
		fail(span, err)
		return scoring.Result{}, err
	}

	res := d.scorer.Score(ctx, scoring.Request{
		Student:  strings.TrimSpace(req.StudentID),
		Period:   model.Period(req.Period),
		Semester: req.Semester,
		Courses:  req.Courses,
		Weights:  req.Weights,
	})
	span.SetAttributes(attribute.Float64("planner.score", res.Score), attribute.Bool("planner.valid", res.Valid))
	span.SetStatus(codes.Ok, "")
	return res, nil
}

// CompareBundles scores every bundle concurrently and picks the highest
// scoring valid one, or the highest scoring invalid one when none is valid.
// Ties go to the earlier bundle.
func (s *Service) CompareBundles(ctx context.Context, req types.CompareRequest) (types.Comparison, error) {
	ctx, span := tracer.Start(ctx, "planner.CompareBundles",
		trace.WithAttributes(attribute.Int("planner.bundles", len(req.Bundles))),
	)
	defer span.End()

	d, err := s.deps()
	if err == nil {
		err = types.Validate(req)
	}
	if err != nil {
		fail(span, err)
		return types.Comparison{}, err
	}

	results := make([]types.BundleScore, len(req.Bundles))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.compareConcurrency)
	for i, bundle := range req.Bundles {
		g.Go(func() error {
			results[i] = types.BundleScore{
				Courses: bundle,
				Result: d.scorer.Score(gctx, scoring.Request{
					Student:  strings.TrimSpace(req.StudentID),
					Period:   model.Period(req.Period),
					Semester: req.Semester,
					Courses:  bundle,
				}),
			}
			return nil
		})
	}
	_ = g.Wait()

	cmp := types.Comparison{Best: -1, Results: results}
	for i, r := range results {
		if r.Result.Valid && (!cmp.AnyValid || r.Result.Score > results[cmp.Best].Result.Score) {
			cmp.Best, cmp.AnyValid = i, true
		}
	}
	if !cmp.AnyValid {
		for i, r := range results {
			if cmp.Best < 0 || r.Result.Score > results[cmp.Best].Result.Score {
				cmp.Best = i
			}
		}
	}
	cmp.Winner = results[cmp.Best]
	span.SetAttributes(attribute.Int("planner.best", cmp.Best), attribute.Bool("planner.any_valid", cmp.AnyValid))
	span.SetStatus(codes.Ok, "")
	return cmp, nil
}

// RankCourses orders courses by singleton score. Courses that cannot be
// scored are listed last without a score.
func (s *Service) RankCourses(ctx context.Context, req types.RankRequest) ([]types.RankedCourse, error) {
	ctx, span := tracer.Start(ctx, "planner.RankCourses",
		trace.WithAttributes(attribute.Int("planner.courses", len(req.Courses))),
	)
	defer span.End()

	d, err := s.deps()
	if err == nil {
		err = types.Validate(req)
	}
	if err != nil {
		fail(span, err)
		return nil, err
	}

	base := scoring.Request{Student: strings.TrimSpace(req.StudentID), Period: model.Period(req.Period), Semester: req.Semester}
	order, scores := d.ranker.Order(ctx, base, normalize(req.Courses))
	out := make([]types.RankedCourse, 0, len(order))
	for i, code := range order {
		rc := types.RankedCourse{Rank: i + 1, Code: code}
		if v, ok := scores[code]; ok {
			rc.Score = &v
		}
		if c, err := d.catalog.Get(code); err == nil {
			rc.Name = c.Name
		}
		out = append(out, rc)
	}
	span.SetStatus(codes.Ok, "")
	return out, nil
}

// Course returns the catalog record of code.
func (s *Service) Course(ctx context.Context, code string) (types.CourseView, error) {
	_, span := tracer.Start(ctx, "planner.Course", trace.WithAttributes(attribute.String("planner.course", code)))
	defer span.End()

	d, err := s.deps()
	if err != nil {
		fail(span, err)
		return types.CourseView{}, err
	}
	if d.catalog.Empty() {
		fail(span, ErrCatalogUnavailable)
		return types.CourseView{}, ErrCatalogUnavailable
	}
	c, err := d.catalog.Get(code)
	if err != nil {
		fail(span, err)
		return types.CourseView{}, err
	}
	span.SetStatus(codes.Ok, "")
	return types.NewCourseView(c), nil
}

// AvailableCourses lists the catalog courses a student may take next.
func (s *Service) AvailableCourses(ctx context.Context, studentID string) (types.AvailableCourses, error) {
	ctx, span := tracer.Start(ctx, "planner.AvailableCourses", trace.WithAttributes(attribute.String("planner.student", studentID)))
	defer span.End()

	d, err := s.deps()
	if err != nil {
		fail(span, err)
		return types.AvailableCourses{}, err
	}
	history, err := d.store.History(ctx, studentID)
	if err != nil {
		fail(span, err)
		return types.AvailableCourses{}, err
	}

	courses := progress.Available(d.catalog, history, s.policy)
	out := types.AvailableCourses{
		StudentID:     strings.TrimSpace(studentID),
		EarnedCredits: progress.EarnedCredits(d.catalog, history, s.policy),
		Courses:       make([]types.CourseView, 0, len(courses)),
	}
	for _, c := range courses {
		out.Courses = append(out.Courses, types.NewCourseView(c))
	}
	span.SetAttributes(attribute.Int("planner.available", len(out.Courses)))
	span.SetStatus(codes.Ok, "")
	return out, nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":            s.started,
		"defaultBudgetMs":    s.defaultBudget.Milliseconds(),
		"maxBudgetMs":        s.maxBudget.Milliseconds(),
		"compareConcurrency": s.compareConcurrency,
		"predictor":          s.predictor != nil,
	}

	if s.started {
		courses := s.catalog.Len()
		sections := s.store.SectionCount(ctx)
		students := s.store.StudentCount(ctx)

		stats["courses"] = courses
		stats["sections"] = sections
		stats["students"] = students
		stats["catalogDegraded"] = courses == 0
		stats["uptimeSeconds"] = time.Since(s.startedAt).Seconds()
		stats["maxCredits"] = s.scorer.MaxCredits()

		metrics.UpdateCatalogSize(courses)
		metrics.UpdateSectionsLoaded(sections)
		metrics.UpdateStudentsLoaded(students)
	}

	return stats
}

func fail(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// normalize upper-cases codes and drops blanks and repeats, keeping order.
func normalize(codes []string) []string {
	seen := make(map[string]bool, len(codes))
	out := make([]string, 0, len(codes))
	for _, c := range codes {
		c = model.NormalizeCode(c)
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return out
}

func missing(cat *catalog.Catalog, codes []string) []string {
	var out []string
	for _, c := range codes {
		if !cat.Has(c) {
			out = append(out, c)
		}
	}
	return out
}
