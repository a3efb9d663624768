package repository

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/unitrack/planner/internal/domain/model"
	"github.com/unitrack/planner/pkg/logger"
	"github.com/unitrack/planner/pkg/metrics"
)

// snapshot is an immutable view of the store. Writers build a new one and
// publish it atomically so readers never lock.
type snapshot struct {
	sections     map[string][]model.Section
	sectionCount int
	students     map[string]model.Student
	history      map[string][]model.Enrollment
}

func emptySnapshot() *snapshot {
	return &snapshot{
		sections: map[string][]model.Section{},
		students: map[string]model.Student{},
		history:  map[string][]model.Enrollment{},
	}
}

// MemoryStore implements SectionStore and StudentStore in memory.
type MemoryStore struct {
	snap atomic.Pointer[snapshot]
	mu   sync.Mutex // serializes writers
	log  logger.Logger

	seedSections []model.Section
	seedStudents []model.Student
	seedHistory  []model.Enrollment
}

var (
	_ SectionStore = (*MemoryStore)(nil)
	_ StudentStore = (*MemoryStore)(nil)
)

// NewMemoryStore creates a store, optionally seeded through options.
func NewMemoryStore(opts ...Option) *MemoryStore {
	s := &MemoryStore{log: logger.Discard()}
	for _, opt := range opts {
		opt(s)
	}
	s.snap.Store(emptySnapshot())
	if len(s.seedSections) > 0 {
		s.ReplaceSections(s.seedSections)
	}
	if len(s.seedStudents) > 0 || len(s.seedHistory) > 0 {
		s.ReplaceStudents(s.seedStudents, s.seedHistory)
	}
	s.seedSections, s.seedStudents, s.seedHistory = nil, nil, nil
	return s
}

// ReplaceSections swaps the whole section set.
func (s *MemoryStore) ReplaceSections(sections []model.Section) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.snap.Load()
	next := &snapshot{
		sections: make(map[string][]model.Section),
		students: cur.students,
		history:  cur.history,
	}
	for _, sec := range sections {
		code := model.NormalizeCode(sec.CourseCode)
		if code == "" {
			continue
		}
		sec.CourseCode = code
		sec.Sessions = append([]model.Session(nil), sec.Sessions...)
		next.sections[code] = append(next.sections[code], sec)
		next.sectionCount++
	}
	s.snap.Store(next)
	metrics.UpdateSectionsLoaded(next.sectionCount)
}

// ReplaceStudents swaps students and enrollment history together.
func (s *MemoryStore) ReplaceStudents(students []model.Student, history []model.Enrollment) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.snap.Load()
	next := &snapshot{
		sections:     cur.sections,
		sectionCount: cur.sectionCount,
		students:     make(map[string]model.Student, len(students)),
		history:      make(map[string][]model.Enrollment),
	}
	for _, st := range students {
		id := strings.TrimSpace(st.ID)
		if id == "" {
			continue
		}
		st.ID = id
		next.students[id] = st
	}
	for _, e := range history {
		id := strings.TrimSpace(e.StudentID)
		e.StudentID = id
		e.CourseCode = model.NormalizeCode(e.CourseCode)
		next.history[id] = append(next.history[id], e)
	}
	for id := range next.history {
		h := next.history[id]
		sort.SliceStable(h, func(i, j int) bool { return h[i].Period < h[j].Period })
	}
	s.snap.Store(next)
	metrics.UpdateStudentsLoaded(len(next.students))
}

func (s *MemoryStore) SectionsFor(_ context.Context, courses []string) (map[string][]model.Section, error) {
	snap := s.snap.Load()
	out := make(map[string][]model.Section, len(courses))
	for _, c := range courses {
		code := model.NormalizeCode(c)
		secs, ok := snap.sections[code]
		if !ok {
			continue
		}
		cp := make([]model.Section, len(secs))
		copy(cp, secs)
		out[code] = cp
	}
	return out, nil
}

func (s *MemoryStore) SectionCount(_ context.Context) int {
	return s.snap.Load().sectionCount
}

func (s *MemoryStore) Student(_ context.Context, id string) (model.Student, error) {
	st, ok := s.snap.Load().students[strings.TrimSpace(id)]
	if !ok {
		return model.Student{}, fmt.Errorf("%w: %s", ErrStudentNotFound, id)
	}
	return st, nil
}

func (s *MemoryStore) History(_ context.Context, id string) ([]model.Enrollment, error) {
	snap := s.snap.Load()
	id = strings.TrimSpace(id)
	if _, ok := snap.students[id]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrStudentNotFound, id)
	}
	h := snap.history[id]
	out := make([]model.Enrollment, len(h))
	copy(out, h)
	return out, nil
}

func (s *MemoryStore) StudentCount(_ context.Context) int {
	return len(s.snap.Load().students)
}
