// Package progress derives a student's academic standing from enrollment
// history: which courses are passed and which ones are open for enrollment.
package progress

import (
	"math"
	"sort"

	"github.com/unitrack/planner/internal/domain/model"
)

// Policy decides whether a final grade passes a course.
type Policy struct {
	Threshold float64 `koanf:"threshold" json:"threshold"`
	// Round applies half-away-from-zero rounding before comparing.
	Round bool `koanf:"round" json:"round"`
}

// Two passing rules coexist in the historical records: raw grades against
// 11.5, and grades rounded to the unit against 11.
var (
	Strict  = Policy{Threshold: 11.5}
	Rounded = Policy{Threshold: 11, Round: true}
)

// Passed reports whether grade passes under p.
func (p Policy) Passed(grade float64) bool {
	if p.Round {
		grade = math.Round(grade)
	}
	return grade >= p.Threshold
}

// Status of a course for one student.
type Status string

const (
	StatusPassed    Status = "passed"
	StatusAttempted Status = "attempted"
	StatusMissing   Status = "missing"
)

// Catalog is the read side of the course catalog this package needs.
type Catalog interface {
	Codes() []string
	Get(code string) (model.Course, error)
}

// Statuses folds an enrollment history into a per-course status. A course is
// passed when any enrollment passes; ungraded enrollments count as attempts.
func Statuses(history []model.Enrollment, p Policy) map[string]Status {
	out := make(map[string]Status, len(history))
	for _, e := range history {
		code := model.NormalizeCode(e.CourseCode)
		if e.Grade != nil && p.Passed(*e.Grade) {
			out[code] = StatusPassed
			continue
		}
		if out[code] != StatusPassed {
			out[code] = StatusAttempted
		}
	}
	return out
}

// Available returns the catalog courses a student may enroll in: not passed
// yet and with every prerequisite passed. Results are ordered by level, then code.
func Available(cat Catalog, history []model.Enrollment, p Policy) []model.Course {
	status := Statuses(history, p)
	out := make([]model.Course, 0)
	for _, code := range cat.Codes() {
		if status[code] == StatusPassed {
			continue
		}
		c, err := cat.Get(code)
		if err != nil {
			continue
		}
		open := true
		for _, pre := range c.Prerequisites {
			if status[model.NormalizeCode(pre)] != StatusPassed {
				open = false
				break
			}
		}
		if open {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Level != out[j].Level {
			return out[i].Level < out[j].Level
		}
		return out[i].Code < out[j].Code
	})
	return out
}

// EarnedCredits sums the credits of passed courses known to the catalog.
func EarnedCredits(cat Catalog, history []model.Enrollment, p Policy) int {
	total := 0
	for code, st := range Statuses(history, p) {
		if st != StatusPassed {
			continue
		}
		if c, err := cat.Get(code); err == nil {
			total += c.Credits
		}
	}
	return total
}
