// Package types contains the request and response shapes shared by the
// service and its transports.
package types

import (
	"github.com/unitrack/planner/internal/domain/model"
	"github.com/unitrack/planner/internal/domain/scoring"
	"github.com/unitrack/planner/internal/domain/search"
)

// RecommendRequest asks for the best schedules over a candidate course list.
type RecommendRequest struct {
	StudentID string   `json:"student_id" validate:"required,code"`
	Period    string   `json:"period" validate:"required,period"`
	Courses   []string `json:"courses" validate:"required,min=1,dive,code"`
	// MaxTime is the search budget in seconds; the service default applies
	// when absent.
	MaxTime  *float64 `json:"max_time,omitempty" validate:"omitempty,gt=0"`
	Semester int      `json:"semester" validate:"gte=0"`
}

// ScoreRequest scores one bundle. An empty bundle is accepted and yields an
// invalid result.
type ScoreRequest struct {
	StudentID string           `json:"student_id" validate:"required,code"`
	Period    string           `json:"period" validate:"required,period"`
	Courses   []string         `json:"courses" validate:"dive,code"`
	Semester  int              `json:"semester" validate:"gte=0"`
	Weights   *scoring.Weights `json:"weights,omitempty"`
}

// CompareRequest scores several bundles and picks the best one.
type CompareRequest struct {
	StudentID string     `json:"student_id" validate:"required,code"`
	Period    string     `json:"period" validate:"required,period"`
	Bundles   [][]string `json:"bundles" validate:"required,min=1,dive,dive,code"`
	Semester  int        `json:"semester" validate:"gte=0"`
}

// RankRequest orders a course list by singleton score.
type RankRequest struct {
	StudentID string   `json:"student_id" validate:"required,code"`
	Period    string   `json:"period" validate:"required,period"`
	Courses   []string `json:"courses" validate:"required,min=1,dive,code"`
	Semester  int      `json:"semester" validate:"gte=0"`
}

// Recommendation is the answer to a RecommendRequest.
type Recommendation struct {
	ID             string            `json:"id"`
	StudentID      string            `json:"student_id"`
	Period         string            `json:"period"`
	Success        bool              `json:"success"`
	Message        string            `json:"message"`
	RankedCourses  []string          `json:"ranked_courses"`
	Schedules      []search.Schedule `json:"schedules"`
	Evaluated      int               `json:"evaluated"`
	Nodes          int               `json:"nodes"`
	ElapsedSeconds float64           `json:"elapsed_seconds"`
	BudgetExceeded bool              `json:"budget_exceeded"`
	Cancelled      bool              `json:"cancelled"`
}

// NewRecommendation copies a search outcome into its response shape.
func NewRecommendation(id, student, period string, ranked []string, out search.Outcome) Recommendation {
	schedules := out.Schedules
	if schedules == nil {
		schedules = []search.Schedule{}
	}
	return Recommendation{
		ID:             id,
		StudentID:      student,
		Period:         period,
		Success:        out.Success,
		Message:        out.Message,
		RankedCourses:  ranked,
		Schedules:      schedules,
		Evaluated:      out.Evaluated,
		Nodes:          out.Nodes,
		ElapsedSeconds: out.Elapsed.Seconds(),
		BudgetExceeded: out.BudgetExceeded,
		Cancelled:      out.Cancelled,
	}
}

// BundleScore pairs a bundle with its scoring result.
type BundleScore struct {
	Courses []string       `json:"courses"`
	Result  scoring.Result `json:"result"`
}

// Comparison is the answer to a CompareRequest. Best indexes Results; when
// no bundle is valid it points at the best invalid one and AnyValid is false.
type Comparison struct {
	Best     int           `json:"best_index"`
	AnyValid bool          `json:"any_valid"`
	Winner   BundleScore   `json:"winner"`
	Results  []BundleScore `json:"results"`
}

// RankedCourse is one entry of a course ranking. Score is nil for courses
// that could not be scored.
type RankedCourse struct {
	Rank  int      `json:"rank"`
	Code  string   `json:"code"`
	Name  string   `json:"name,omitempty"`
	Score *float64 `json:"score"`
}

// CourseView is the public shape of a catalog course.
type CourseView struct {
	Code          string   `json:"code"`
	Name          string   `json:"name"`
	Credits       int      `json:"credits"`
	Hours         int      `json:"hours"`
	Kind          string   `json:"kind"`
	Mandatory     bool     `json:"mandatory"`
	Family        string   `json:"family"`
	Level         int      `json:"level"`
	Prerequisites []string `json:"prerequisites"`
	Dependents    int      `json:"dependents"`
	MaxDepth      int      `json:"max_depth"`
}

// NewCourseView converts a catalog course.
func NewCourseView(c model.Course) CourseView {
	pre := c.Prerequisites
	if pre == nil {
		pre = []string{}
	}
	return CourseView{
		Code:          c.Code,
		Name:          c.Name,
		Credits:       c.Credits,
		Hours:         c.Hours,
		Kind:          string(c.Kind),
		Mandatory:     c.Mandatory(),
		Family:        c.Family,
		Level:         c.Level,
		Prerequisites: pre,
		Dependents:    c.Dependents,
		MaxDepth:      c.MaxDepth,
	}
}

// AvailableCourses lists the courses a student may enroll in next.
type AvailableCourses struct {
	StudentID     string       `json:"student_id"`
	EarnedCredits int          `json:"earned_credits"`
	Courses       []CourseView `json:"courses"`
}
