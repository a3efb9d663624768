// Package repository holds the in-memory reference data the planner reads at
// request time: class sections, students and their enrollment history.
package repository

import (
	"context"

	"github.com/unitrack/planner/internal/domain/model"
)

// SectionStore serves class sections by course.
type SectionStore interface {
	// SectionsFor returns the sections of each requested course. Courses
	// without sections are absent from the map.
	SectionsFor(ctx context.Context, courses []string) (map[string][]model.Section, error)
	// SectionCount returns the number of sections stored.
	SectionCount(ctx context.Context) int
}

// StudentStore serves students and their enrollment history.
type StudentStore interface {
	// Student returns ErrStudentNotFound if the id is unknown.
	Student(ctx context.Context, id string) (model.Student, error)
	// History returns the enrollments of a student ordered by period.
	History(ctx context.Context, id string) ([]model.Enrollment, error)
	// StudentCount returns the number of students stored.
	StudentCount(ctx context.Context) int
}
