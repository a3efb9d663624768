// Package model contains domain models passed between layers.
package model

import "strings"

// CourseKind classifies a course in the curriculum.
type CourseKind string

// Known course kinds. Anything else is treated as an elective.
const (
	KindMandatory          CourseKind = "O"
	KindElectiveHumanities CourseKind = "EH"
	KindElectiveProgram    CourseKind = "EP"
)

// Course is the catalog record of a single course. Values are immutable once
// the catalog is built; callers receive copies.
type Course struct {
	Code          string     // unique id, upper-cased
	Name          string     // display name, e.g. "CALCULO I"
	Credits       int        // academic credits
	Hours         int        // weekly hours, never below 1
	Kind          CourseKind // mandatory or elective
	Family        string     // family tag, e.g. "CS", "MA"
	Level         int        // suggested semester
	Prerequisites []string   // prerequisite course codes
	Dependents    int        // number of courses depending on this one
	MaxDepth      int        // longest prerequisite chain below this course
}

// Mandatory reports whether the course is compulsory.
func (c Course) Mandatory() bool { return c.Kind == KindMandatory }

// Clone returns a copy that shares no slices with c.
func (c Course) Clone() Course {
	out := c
	if c.Prerequisites != nil {
		out.Prerequisites = append([]string(nil), c.Prerequisites...)
	}
	return out
}

// NormalizeCode trims and upper-cases a course code so that joins across
// tables with inconsistent casing still match.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
