package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/unitrack/planner/internal/domain/model"
)

func grade(v float64) *float64 { return &v }

func testSection(code, key string, day model.Weekday, start, end string) model.Section {
	return model.Section{
		CourseCode: code,
		Key:        key,
		Sessions:   []model.Session{{Day: day, Start: model.MustClock(start), End: model.MustClock(end)}},
	}
}

func TestMemoryStore_Sections(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(WithSections(
		testSection("cs101", "1.01", model.Monday, "08:00", "10:00"),
		testSection("CS101", "1.02", model.Tuesday, "08:00", "10:00"),
		testSection("MA100", "1", model.Friday, "14:00", "16:00"),
		testSection(" ", "9", model.Friday, "14:00", "16:00"),
	))

	if n := store.SectionCount(ctx); n != 3 {
		t.Fatalf("expected 3 sections, got %d", n)
	}

	got, err := store.SectionsFor(ctx, []string{"CS101", "ma100", "ZZ999"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 courses, got %d", len(got))
	}
	if len(got["CS101"]) != 2 {
		t.Errorf("expected 2 CS101 sections, got %d", len(got["CS101"]))
	}
	if got["CS101"][0].Key != "1.01" || got["CS101"][1].Key != "1.02" {
		t.Errorf("expected source order, got %q then %q", got["CS101"][0].Key, got["CS101"][1].Key)
	}
	if _, ok := got["ZZ999"]; ok {
		t.Error("expected unknown course to be absent")
	}

	// Mutating a returned slice must not leak into the store.
	got["CS101"][0].Key = "mutated"
	again, _ := store.SectionsFor(ctx, []string{"CS101"})
	if again["CS101"][0].Key != "1.01" {
		t.Errorf("store was mutated through a returned slice")
	}

	store.ReplaceSections(nil)
	if n := store.SectionCount(ctx); n != 0 {
		t.Errorf("expected 0 sections after replace, got %d", n)
	}
}

func TestMemoryStore_Students(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(
		WithStudents(model.Student{ID: " 1001 ", AdmissionPeriod: "2018-01", Program: "CS"}),
		WithEnrollments(
			model.Enrollment{StudentID: "1001", CourseCode: "ma101", Period: "2019-01", Grade: grade(14)},
			model.Enrollment{StudentID: "1001", CourseCode: "CS101", Period: "2018-01", Grade: grade(12)},
			model.Enrollment{StudentID: "2002", CourseCode: "CS101", Period: "2018-01"},
		),
	)

	st, err := store.Student(ctx, "1001")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if st.Program != "CS" || st.AdmissionPeriod != "2018-01" {
		t.Errorf("unexpected student %+v", st)
	}
	if n := store.StudentCount(ctx); n != 1 {
		t.Errorf("expected 1 student, got %d", n)
	}

	h, err := store.History(ctx, "1001")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(h) != 2 {
		t.Fatalf("expected 2 enrollments, got %d", len(h))
	}
	if h[0].Period != "2018-01" || h[1].CourseCode != "MA101" {
		t.Errorf("expected history ordered by period, got %+v", h)
	}

	if _, err := store.Student(ctx, "2002"); !errors.Is(err, ErrStudentNotFound) {
		t.Errorf("expected ErrStudentNotFound, got %v", err)
	}
	if _, err := store.History(ctx, "9999"); !errors.Is(err, ErrStudentNotFound) {
		t.Errorf("expected ErrStudentNotFound, got %v", err)
	}
}

func TestMemoryStore_ConcurrentReplace(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			store.ReplaceSections([]model.Section{
				testSection(fmt.Sprintf("C%d", i), "1", model.Monday, "08:00", "09:00"),
			})
		}(i)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_, _ = store.SectionsFor(ctx, []string{"C0", "C1"})
				_ = store.SectionCount(ctx)
			}
		}()
	}
	wg.Wait()

	if n := store.SectionCount(ctx); n != 1 {
		t.Errorf("expected the last replace to win with 1 section, got %d", n)
	}
}
