package repository

import (
	"github.com/unitrack/planner/internal/domain/model"
	"github.com/unitrack/planner/pkg/logger"
)

// Option applies a configuration option to the MemoryStore.
type Option func(*MemoryStore)

// WithLogger sets the store logger.
func WithLogger(l logger.Logger) Option {
	return func(s *MemoryStore) {
		if l != nil {
			s.log = l
		}
	}
}

// WithSections seeds the store with sections.
func WithSections(sections ...model.Section) Option {
	return func(s *MemoryStore) { s.seedSections = append(s.seedSections, sections...) }
}

// WithStudents seeds the store with students.
func WithStudents(students ...model.Student) Option {
	return func(s *MemoryStore) { s.seedStudents = append(s.seedStudents, students...) }
}

// WithEnrollments seeds the store with enrollment history.
func WithEnrollments(enrollments ...model.Enrollment) Option {
	return func(s *MemoryStore) { s.seedHistory = append(s.seedHistory, enrollments...) }
}
