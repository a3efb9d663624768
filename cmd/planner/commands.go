package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	service "github.com/unitrack/planner/internal/app"
	"github.com/unitrack/planner/internal/config"
	"github.com/unitrack/planner/internal/domain/types"
	"github.com/unitrack/planner/pkg/logger"
)

// flags shared by every subcommand.
type rootFlags struct {
	configPath  string
	logLevel    string
	asJSON      bool
	info        string
	prereqs     string
	graph       string
	sections    string
	students    string
	enrollments string
	predictions string
}

// request flags of the student-facing subcommands.
type requestFlags struct {
	student  string
	period   string
	courses  []string
	semester int
	maxTime  float64
}

func newRootCmd() *cobra.Command {
	rf := &rootFlags{}
	root := &cobra.Command{
		Use:           "planner",
		Short:         "Rank courses and recommend conflict-free enrollment schedules",
		SilenceUsage:  true,
	}
	pf := root.PersistentFlags()
	pf.StringVar(&rf.configPath, "config", "", "YAML config file (defaults to $"+config.EnvFile+")")
	pf.StringVar(&rf.logLevel, "log-level", "warn", "log level: debug, info, warn, error")
	pf.BoolVar(&rf.asJSON, "json", false, "print raw JSON instead of tables")
	pf.StringVar(&rf.info, "catalog-info", "", "course info table")
	pf.StringVar(&rf.prereqs, "catalog-prereqs", "", "course prerequisite table")
	pf.StringVar(&rf.graph, "catalog-graph", "", "course graph metrics table")
	pf.StringVar(&rf.sections, "sections", "", "section timetable")
	pf.StringVar(&rf.students, "students", "", "student table")
	pf.StringVar(&rf.enrollments, "enrollments", "", "enrollment history table")
	pf.StringVar(&rf.predictions, "predictions", "", "predicted grade table")

	root.AddCommand(
		newRecommendCmd(rf),
		newScoreCmd(rf),
		newRankCmd(rf),
		newAvailableCmd(rf),
		newCourseCmd(rf),
	)
	return root
}

func addRequestFlags(cmd *cobra.Command, rq *requestFlags, withCourses bool) {
	f := cmd.Flags()
	f.StringVar(&rq.student, "student", "", "student id")
	f.StringVar(&rq.period, "period", "", "enrollment period, YYYY-NN")
	f.IntVar(&rq.semester, "semester", 0, "student's current semester")
	_ = cmd.MarkFlagRequired("student")
	_ = cmd.MarkFlagRequired("period")
	if withCourses {
		f.StringSliceVar(&rq.courses, "courses", nil, "comma separated course codes")
		_ = cmd.MarkFlagRequired("courses")
	}
}

func newRecommendCmd(rf *rootFlags) *cobra.Command {
	rq := &requestFlags{}
	cmd := &cobra.Command{
		Use:   "recommend",
		Short: "Search the best schedules for a set of candidate courses",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withService(cmd, rf, func(ctx context.Context, svc *service.Service, out io.Writer) error {
				req := types.RecommendRequest{
					StudentID: rq.student,
					Period:    rq.period,
					Courses:   rq.courses,
					Semester:  rq.semester,
				}
				if rq.maxTime > 0 {
					req.MaxTime = &rq.maxTime
				}
				rec, err := svc.Recommend(ctx, req)
				if err != nil {
					return err
				}
				if rf.asJSON {
					return printJSON(out, rec)
				}
				return renderRecommendation(out, rec)
			})
		},
	}
	addRequestFlags(cmd, rq, true)
	cmd.Flags().Float64Var(&rq.maxTime, "max-time", 0, "search budget in seconds")
	return cmd
}

func newScoreCmd(rf *rootFlags) *cobra.Command {
	rq := &requestFlags{}
	cmd := &cobra.Command{
		Use:   "score",
		Short: "Score one course bundle",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withService(cmd, rf, func(ctx context.Context, svc *service.Service, out io.Writer) error {
				res, err := svc.ScoreBundle(ctx, types.ScoreRequest{
					StudentID: rq.student,
					Period:    rq.period,
					Courses:   rq.courses,
					Semester:  rq.semester,
				})
				if err != nil {
					return err
				}
				if rf.asJSON {
					return printJSON(out, res)
				}
				return renderScore(out, res)
			})
		},
	}
	addRequestFlags(cmd, rq, true)
	return cmd
}

func newRankCmd(rf *rootFlags) *cobra.Command {
	rq := &requestFlags{}
	cmd := &cobra.Command{
		Use:   "rank",
		Short: "Order candidate courses by their singleton score",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withService(cmd, rf, func(ctx context.Context, svc *service.Service, out io.Writer) error {
				ranked, err := svc.RankCourses(ctx, types.RankRequest{
					StudentID: rq.student,
					Period:    rq.period,
					Courses:   rq.courses,
					Semester:  rq.semester,
				})
				if err != nil {
					return err
				}
				if rf.asJSON {
					return printJSON(out, ranked)
				}
				return renderRanking(out, ranked)
			})
		},
	}
	addRequestFlags(cmd, rq, true)
	return cmd
}

func newAvailableCmd(rf *rootFlags) *cobra.Command {
	var student string
	cmd := &cobra.Command{
		Use:   "available",
		Short: "List the courses a student may enroll in",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withService(cmd, rf, func(ctx context.Context, svc *service.Service, out io.Writer) error {
				av, err := svc.AvailableCourses(ctx, student)
				if err != nil {
					return err
				}
				if rf.asJSON {
					return printJSON(out, av)
				}
				return renderAvailable(out, av)
			})
		},
	}
	cmd.Flags().StringVar(&student, "student", "", "student id")
	_ = cmd.MarkFlagRequired("student")
	return cmd
}

func newCourseCmd(rf *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "course CODE",
		Short: "Show one catalog course",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd, rf, func(ctx context.Context, svc *service.Service, out io.Writer) error {
				c, err := svc.Course(ctx, args[0])
				if err != nil {
					return err
				}
				if rf.asJSON {
					return printJSON(out, c)
				}
				return renderCourse(out, c)
			})
		},
	}
}

// withService loads configuration, applies flag overrides, starts a service
// and runs fn against it.
func withService(cmd *cobra.Command, rf *rootFlags, fn func(context.Context, *service.Service, io.Writer) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := loadConfig(ctx, rf)
	if err != nil {
		return err
	}
	if err := logger.Init(logger.WithFormat(cfg.LogFormat), logger.WithWriter(cmd.ErrOrStderr())); err != nil {
		return err
	}
	if err := logger.SetLevelString(rf.logLevel); err != nil {
		return err
	}

	opts, err := service.ConfigOptions(cfg, logger.Named("planner"))
	if err != nil {
		return err
	}
	svc := service.New(opts...)
	if err := svc.Start(ctx); err != nil {
		return err
	}
	defer svc.Stop()
	return fn(ctx, svc, cmd.OutOrStdout())
}

func loadConfig(ctx context.Context, rf *rootFlags) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if rf.configPath != "" {
		cfg, err = config.LoadFile(ctx, rf.configPath)
	} else {
		cfg, err = config.Load(ctx)
	}
	if err != nil {
		return nil, err
	}
	override := func(dst *string, v string) {
		if v = strings.TrimSpace(v); v != "" {
			*dst = v
		}
	}
	override(&cfg.CatalogInfoPath, rf.info)
	override(&cfg.CatalogPrereqPath, rf.prereqs)
	override(&cfg.CatalogGraphPath, rf.graph)
	override(&cfg.SectionsPath, rf.sections)
	override(&cfg.StudentsPath, rf.students)
	override(&cfg.EnrollmentsPath, rf.enrollments)
	override(&cfg.PredictionsPath, rf.predictions)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func printJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}
