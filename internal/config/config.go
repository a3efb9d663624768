// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Keys are flat and snake_case so every field can be set from the
//   environment; only the weight vector and the lookup tables need a file.
// - New() returns a Config holding the production defaults.
// - Validation errors wrap ErrInvalidConfig.
package config

import (
	"fmt"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/unitrack/planner/internal/domain/progress"
	"github.com/unitrack/planner/internal/domain/scoring"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level" validate:"oneof=debug info warn error"`

	// LogFormat selects the handler: text or json.
	LogFormat string `koanf:"log_format" validate:"oneof=text json"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr" validate:"required"`

	// Reference tables. Empty paths leave the matching store empty.
	CatalogInfoPath   string `koanf:"catalog_info_path"`
	CatalogPrereqPath string `koanf:"catalog_prereq_path"`
	CatalogGraphPath  string `koanf:"catalog_graph_path"`
	SectionsPath      string `koanf:"sections_path"`
	StudentsPath      string `koanf:"students_path"`
	EnrollmentsPath   string `koanf:"enrollments_path"`
	PredictionsPath   string `koanf:"predictions_path"`

	// PredictorKind selects the grade predictor: table, remote or none.
	// "none" makes every bundle use the default grade.
	PredictorKind string `koanf:"predictor_kind" validate:"oneof=table remote none"`

	// PredictorURL is the inference endpoint for the remote predictor.
	PredictorURL string `koanf:"predictor_url" validate:"omitempty,url"`

	// PredictorTimeoutMS bounds one remote prediction call.
	PredictorTimeoutMS int `koanf:"predictor_timeout_ms" validate:"gt=0"`

	// SearchBudgetMS is the default wall-clock budget of a schedule search,
	// MaxSearchBudgetMS caps what callers may ask for.
	SearchBudgetMS    int `koanf:"search_budget_ms" validate:"gt=0"`
	MaxSearchBudgetMS int `koanf:"max_search_budget_ms" validate:"gtefield=SearchBudgetMS"`

	// MinCredits and MaxCredits bound the credits of a recommended schedule.
	MinCredits int `koanf:"min_credits" validate:"gte=0"`
	MaxCredits int `koanf:"max_credits" validate:"gtefield=MinCredits"`

	// TopK is the number of schedules returned per recommendation.
	TopK int `koanf:"top_k" validate:"gt=0"`

	// InclusivePrune stops a branch when credits reach MaxCredits instead of
	// when they exceed it.
	InclusivePrune bool `koanf:"inclusive_prune"`

	// SkipFirst explores leaving a course out before taking its sections.
	SkipFirst bool `koanf:"skip_first"`

	// Weights is the per-metric coefficient vector of a course score.
	Weights scoring.Weights `koanf:"weights"`

	// FamilyAffinity maps family tags to their affinity score.
	FamilyAffinity map[string]float64 `koanf:"family_affinity"`

	// Clusters maps a cluster id to the course names it contains, and
	// ClusterScores maps the same ids to their score. Ids are strings so
	// they can be YAML keys.
	Clusters      map[string][]string `koanf:"clusters"`
	ClusterScores map[string]float64  `koanf:"cluster_scores"`

	// FailThreshold is the predicted grade below which a course counts as a
	// likely failure.
	FailThreshold float64 `koanf:"fail_threshold" validate:"gte=0,lte=20"`

	// DefaultGrade replaces every prediction when the predictor fails.
	DefaultGrade float64 `koanf:"default_grade" validate:"gte=0,lte=20"`

	// PassThreshold and PassRound decide whether a historical grade passed.
	PassThreshold float64 `koanf:"pass_threshold" validate:"gte=0,lte=20"`
	PassRound     bool    `koanf:"pass_round"`

	// RateLimitRPS and RateLimitBurst throttle POST /recommendations.
	// A non-positive RPS disables the limiter.
	RateLimitRPS   float64 `koanf:"rate_limit_rps"`
	RateLimitBurst int     `koanf:"rate_limit_burst" validate:"gte=0"`

	// CompareConcurrency bounds parallel scoring in bundle comparison.
	CompareConcurrency int `koanf:"compare_concurrency" validate:"gt=0"`
}

// New creates a Config holding the production defaults.
func New() *Config {
	clusters, scores := defaultClusterTables()
	return &Config{
		LogLevel:           "info",
		LogFormat:          "text",
		Addr:               ":9080",
		PredictorKind:      "table",
		PredictorTimeoutMS: 5_000,
		SearchBudgetMS:     30_000,
		MaxSearchBudgetMS:  120_000,
		MinCredits:         14,
		MaxCredits:         scoring.DefaultMaxCredits,
		TopK:               3,
		Weights:            scoring.DefaultWeights(),
		FamilyAffinity:     scoring.DefaultFamilyAffinity(),
		Clusters:           clusters,
		ClusterScores:      scores,
		FailThreshold:      scoring.DefaultFailThreshold,
		DefaultGrade:       scoring.DefaultGrade,
		PassThreshold:      progress.Strict.Threshold,
		PassRound:          progress.Strict.Round,
		RateLimitRPS:       20,
		RateLimitBurst:     40,
		CompareConcurrency: 8,
	}
}

func defaultClusterTables() (map[string][]string, map[string]float64) {
	clusters := make(map[string][]string, len(scoring.DefaultClusters()))
	for id, names := range scoring.DefaultClusters() {
		clusters[strconv.Itoa(id)] = append([]string(nil), names...)
	}
	scores := make(map[string]float64, len(scoring.DefaultClusterScores()))
	for id, v := range scoring.DefaultClusterScores() {
		scores[strconv.Itoa(id)] = v
	}
	return clusters, scores
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field ranges and cross-field constraints.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if c.PredictorKind == "remote" && c.PredictorURL == "" {
		return fmt.Errorf("%w: predictor_url is required for the remote predictor", ErrInvalidConfig)
	}
	if _, _, err := c.ClusterTables(); err != nil {
		return err
	}
	return nil
}

// ClusterTables returns the cluster tables keyed by integer id.
func (c *Config) ClusterTables() (map[int][]string, map[int]float64, error) {
	clusters := make(map[int][]string, len(c.Clusters))
	for k, names := range c.Clusters {
		id, err := strconv.Atoi(k)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: cluster id %q", ErrInvalidConfig, k)
		}
		clusters[id] = names
	}
	scores := make(map[int]float64, len(c.ClusterScores))
	for k, v := range c.ClusterScores {
		id, err := strconv.Atoi(k)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: cluster score id %q", ErrInvalidConfig, k)
		}
		scores[id] = v
	}
	return clusters, scores, nil
}

// ProgressPolicy returns the configured passing rule.
func (c *Config) ProgressPolicy() progress.Policy {
	return progress.Policy{Threshold: c.PassThreshold, Round: c.PassRound}
}

// SearchBudget returns the default search budget.
func (c *Config) SearchBudget() time.Duration {
	return time.Duration(c.SearchBudgetMS) * time.Millisecond
}

// MaxSearchBudget returns the largest budget a caller may request.
func (c *Config) MaxSearchBudget() time.Duration {
	return time.Duration(c.MaxSearchBudgetMS) * time.Millisecond
}

// PredictorTimeout returns the remote predictor call timeout.
func (c *Config) PredictorTimeout() time.Duration {
	return time.Duration(c.PredictorTimeoutMS) * time.Millisecond
}
