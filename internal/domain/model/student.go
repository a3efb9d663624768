package model

import (
	"errors"
	"fmt"
	"regexp"
)

// ErrInvalidPeriod is returned for enrollment periods not shaped "YYYY-NN".
var ErrInvalidPeriod = errors.New("invalid enrollment period")

var periodPattern = regexp.MustCompile(`^\d{4}-\d{2}$`)

// Period identifies an enrollment period, e.g. "2019-02".
type Period string

// ParsePeriod validates the "YYYY-NN" format.
func ParsePeriod(s string) (Period, error) {
	if !periodPattern.MatchString(s) {
		return "", fmt.Errorf("%w: %q", ErrInvalidPeriod, s)
	}
	return Period(s), nil
}

// Student is the subset of the student record the planner needs.
type Student struct {
	ID              string
	AdmissionPeriod Period
	Program         string
}

// Enrollment is one historical course attempt. Grade is nil while the
// attempt has no final grade.
type Enrollment struct {
	StudentID  string
	CourseCode string
	Period     Period
	Grade      *float64
}
