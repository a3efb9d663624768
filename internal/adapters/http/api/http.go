// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/unitrack/planner/internal/domain/scoring"
	"github.com/unitrack/planner/internal/domain/types"
	"github.com/unitrack/planner/pkg/logger"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	RecommendDependencies
	BundleDependencies
	CourseDependencies
	StudentDependencies
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler    *HealthHandler
	statsHandler     *StatsHandler
	recommendHandler *RecommendHandler
	bundleHandler    *BundleHandler
	courseHandler    *CourseHandler
	studentHandler   *StudentHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) *Server {
	st := settings{maxBody: defaultMaxBody, log: logger.Discard()}
	for _, opt := range opts {
		opt(&st)
	}
	return &Server{
		healthHandler:    NewHealthHandler(),
		statsHandler:     NewStatsHandler(statsProvider),
		recommendHandler: NewRecommendHandler(deps, st),
		bundleHandler:    NewBundleHandler(deps, st),
		courseHandler:    NewCourseHandler(deps, st),
		studentHandler:   NewStudentHandler(deps, st),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("POST /recommendations", MetricsMiddleware(s.recommendHandler.HandleRecommend, "recommendations"))
	mux.HandleFunc("POST /bundles/score", MetricsMiddleware(s.bundleHandler.HandleScore, "bundles_score"))
	mux.HandleFunc("POST /bundles/compare", MetricsMiddleware(s.bundleHandler.HandleCompare, "bundles_compare"))
	mux.HandleFunc("POST /courses/rank", MetricsMiddleware(s.courseHandler.HandleRank, "courses_rank"))
	mux.HandleFunc("GET /courses/{code}", MetricsMiddleware(s.courseHandler.HandleGetCourse, "courses_get"))
	mux.HandleFunc("GET /students/{id}/available-courses", MetricsMiddleware(s.studentHandler.HandleAvailable, "students_available"))
}

// RecommendDependencies defines the recommendation operation.
type RecommendDependencies interface {
	Recommend(ctx context.Context, req types.RecommendRequest) (types.Recommendation, error)
}

// BundleDependencies defines the bundle scoring operations.
type BundleDependencies interface {
	ScoreBundle(ctx context.Context, req types.ScoreRequest) (scoring.Result, error)
	CompareBundles(ctx context.Context, req types.CompareRequest) (types.Comparison, error)
}

// CourseDependencies defines the course operations.
type CourseDependencies interface {
	RankCourses(ctx context.Context, req types.RankRequest) ([]types.RankedCourse, error)
	Course(ctx context.Context, code string) (types.CourseView, error)
}

// StudentDependencies defines the student operations.
type StudentDependencies interface {
	AvailableCourses(ctx context.Context, studentID string) (types.AvailableCourses, error)
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// fail writes the status mapped from err and logs server-side failures.
func fail(ctx context.Context, w http.ResponseWriter, log logger.Logger, op string, err error) {
	status, code := statusFor(err)
	if status >= http.StatusInternalServerError {
		log.Error(ctx, "request failed", logger.String("op", op), logger.Error(err))
	}
	writeError(w, status, code, Wrap(op, err))
}

// decode reads a single JSON document of at most limit bytes into v.
// Unknown fields are rejected.
func decode(w http.ResponseWriter, r *http.Request, limit int64, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, limit))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return WrapKind("decode", ErrBadRequest, err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return NewKind("decode trailing data", ErrBadRequest)
	}
	return nil
}
