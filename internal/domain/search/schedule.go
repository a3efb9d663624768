package search

import (
	"sort"

	"github.com/unitrack/planner/internal/domain/model"
)

// Block is a busy interval on one day, half-open [Start, End).
type Block struct {
	Start model.Clock `json:"start"`
	End   model.Clock `json:"end"`
}

// Overlaps reports whether a and b share any minute. Clocks are fixed-width
// so string order is chronological.
func Overlaps(a, b Block) bool {
	return !(b.End <= a.Start || b.Start >= a.End)
}

// Assignment is a chosen (course, section) pair.
type Assignment struct {
	Course  string `json:"course"`
	Section string `json:"section"`
}

// schedule is the mutable search state: the sections taken so far and the
// busy blocks they occupy per weekday. No two blocks on the same day overlap.
type schedule struct {
	days    [len(model.Weekdays)][]Block
	chosen  []Assignment
	courses []string
	credits int
}

// fits reports whether every session of sec can be added. Sessions of the
// section are also checked against each other.
func (s *schedule) fits(sec model.Section) bool {
	for i, sess := range sec.Sessions {
		d := sess.Day.Index()
		if d < 0 || sess.Start >= sess.End {
			return false
		}
		nb := Block{Start: sess.Start, End: sess.End}
		for _, b := range s.days[d] {
			if Overlaps(b, nb) {
				return false
			}
		}
		for _, prev := range sec.Sessions[:i] {
			if prev.Day == sess.Day && Overlaps(Block{Start: prev.Start, End: prev.End}, nb) {
				return false
			}
		}
	}
	return true
}

// take adds a section atomically. Callers must check fits first.
func (s *schedule) take(course string, credits int, sec model.Section) {
	for _, sess := range sec.Sessions {
		d := sess.Day.Index()
		s.days[d] = append(s.days[d], Block{Start: sess.Start, End: sess.End})
	}
	s.chosen = append(s.chosen, Assignment{Course: course, Section: sec.Key})
	s.courses = append(s.courses, course)
	s.credits += credits
}

// undo reverts the most recent take of sec.
func (s *schedule) undo(credits int, sec model.Section) {
	for i := len(sec.Sessions) - 1; i >= 0; i-- {
		d := sec.Sessions[i].Day.Index()
		s.days[d] = s.days[d][:len(s.days[d])-1]
	}
	s.chosen = s.chosen[:len(s.chosen)-1]
	s.courses = s.courses[:len(s.courses)-1]
	s.credits -= credits
}

// DaySchedule lists the blocks of one weekday in start order.
type DaySchedule struct {
	Day    model.Weekday `json:"day"`
	Blocks []Block       `json:"blocks"`
}

// snapshot is an immutable copy of a schedule taken at an accepted leaf.
type snapshot struct {
	courses []string
	chosen  []Assignment
	layout  []DaySchedule
}

func (s *schedule) snapshot() snapshot {
	out := snapshot{
		courses: append([]string(nil), s.courses...),
		chosen:  append([]Assignment(nil), s.chosen...),
		layout:  make([]DaySchedule, len(model.Weekdays)),
	}
	for i, day := range model.Weekdays {
		blocks := append([]Block{}, s.days[i]...)
		sort.Slice(blocks, func(a, b int) bool { return blocks[a].Start < blocks[b].Start })
		out.layout[i] = DaySchedule{Day: day, Blocks: blocks}
	}
	return out
}
