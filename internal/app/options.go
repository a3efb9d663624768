package service

import (
	"time"

	"github.com/unitrack/planner/internal/adapters/repository"
	"github.com/unitrack/planner/internal/config"
	"github.com/unitrack/planner/internal/domain/catalog"
	"github.com/unitrack/planner/internal/domain/predict"
	"github.com/unitrack/planner/internal/domain/progress"
	"github.com/unitrack/planner/internal/domain/scoring"
	"github.com/unitrack/planner/internal/domain/search"
	"github.com/unitrack/planner/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithCatalog injects a built catalog; Start then skips loading tables.
func WithCatalog(c *catalog.Catalog) Option {
	return func(s *Service) { s.catalog = c }
}

// WithCatalogPaths sets the catalog tables loaded on Start.
func WithCatalogPaths(p catalog.Paths) Option {
	return func(s *Service) { s.catalogPaths = p }
}

// WithStore injects a populated section and student store; Start then skips
// loading data files.
func WithStore(st *repository.MemoryStore) Option {
	return func(s *Service) { s.store = st }
}

// WithDataPaths sets the section, student and enrollment files loaded on Start.
func WithDataPaths(p repository.Paths) Option {
	return func(s *Service) { s.dataPaths = p }
}

// WithPredictor injects the grade predictor.
func WithPredictor(p predict.Predictor) Option {
	return func(s *Service) { s.predictor = p }
}

// WithScoringOptions passes options through to the bundle scorer.
func WithScoringOptions(opts ...scoring.Option) Option {
	return func(s *Service) { s.scoringOpts = append(s.scoringOpts, opts...) }
}

// WithSearchOptions passes options through to the search engine.
func WithSearchOptions(opts ...search.Option) Option {
	return func(s *Service) { s.searchOpts = append(s.searchOpts, opts...) }
}

// WithProgressPolicy sets the passing rule used for course availability.
func WithProgressPolicy(p progress.Policy) Option {
	return func(s *Service) { s.policy = p }
}

// WithSearchBudget sets the default budget and the largest budget a caller
// may request.
func WithSearchBudget(def, ceiling time.Duration) Option {
	return func(s *Service) {
		if def > 0 && ceiling >= def {
			s.defaultBudget = def
			s.maxBudget = ceiling
		}
	}
}

// WithCompareConcurrency bounds parallel scoring in CompareBundles.
func WithCompareConcurrency(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.compareConcurrency = n
		}
	}
}

// ConfigOptions translates a validated Config into service options. The
// predictor named by the config is built here.
func ConfigOptions(cfg *config.Config, log logger.Logger) ([]Option, error) {
	clusters, clusterScores, err := cfg.ClusterTables()
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.Get()
	}

	opts := []Option{
		WithLogger(log),
		WithCatalogPaths(catalog.Paths{
			Info:    cfg.CatalogInfoPath,
			Prereqs: cfg.CatalogPrereqPath,
			Graph:   cfg.CatalogGraphPath,
		}),
		WithDataPaths(repository.Paths{
			Sections:    cfg.SectionsPath,
			Students:    cfg.StudentsPath,
			Enrollments: cfg.EnrollmentsPath,
		}),
		WithScoringOptions(
			scoring.WithWeights(cfg.Weights),
			scoring.WithFamilyAffinity(cfg.FamilyAffinity),
			scoring.WithClusters(clusters),
			scoring.WithClusterScores(clusterScores),
			scoring.WithMaxCredits(cfg.MaxCredits),
			scoring.WithFailThreshold(cfg.FailThreshold),
			scoring.WithDefaultGrade(cfg.DefaultGrade),
		),
		WithSearchOptions(
			search.WithCreditWindow(cfg.MinCredits, cfg.MaxCredits),
			search.WithTopK(cfg.TopK),
			search.WithInclusivePrune(cfg.InclusivePrune),
			search.WithSkipFirst(cfg.SkipFirst),
		),
		WithProgressPolicy(cfg.ProgressPolicy()),
		WithSearchBudget(cfg.SearchBudget(), cfg.MaxSearchBudget()),
		WithCompareConcurrency(cfg.CompareConcurrency),
	}

	switch cfg.PredictorKind {
	case "table":
		if cfg.PredictionsPath != "" {
			opts = append(opts, WithPredictor(predict.NewTable(cfg.PredictionsPath,
				predict.WithTableLogger(log.Named("predict")))))
		}
	case "remote":
		opts = append(opts, WithPredictor(predict.NewRemote(cfg.PredictorURL,
			predict.WithTimeout(cfg.PredictorTimeout()))))
	}
	return opts, nil
}
