package model

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Sentinel errors for time and day parsing.
var (
	ErrInvalidClock   = errors.New("invalid time of day")
	ErrInvalidWeekday = errors.New("invalid weekday")
	ErrInvalidSession = errors.New("invalid session")
)

// Weekday identifies a day of the week using the short labels of the
// timetable source ("Lun" .. "Dom").
type Weekday string

// Weekdays in calendar order.
const (
	Monday    Weekday = "Lun"
	Tuesday   Weekday = "Mar"
	Wednesday Weekday = "Mie"
	Thursday  Weekday = "Jue"
	Friday    Weekday = "Vie"
	Saturday  Weekday = "Sab"
	Sunday    Weekday = "Dom"
)

// Weekdays lists every day in calendar order.
var Weekdays = [...]Weekday{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

var weekdayAliases = map[string]Weekday{
	"lun": Monday, "lunes": Monday, "mon": Monday, "monday": Monday,
	"mar": Tuesday, "martes": Tuesday, "tue": Tuesday, "tuesday": Tuesday,
	"mie": Wednesday, "mié": Wednesday, "miercoles": Wednesday, "miércoles": Wednesday, "wed": Wednesday, "wednesday": Wednesday,
	"jue": Thursday, "jueves": Thursday, "thu": Thursday, "thursday": Thursday,
	"vie": Friday, "viernes": Friday, "fri": Friday, "friday": Friday,
	"sab": Saturday, "sáb": Saturday, "sabado": Saturday, "sábado": Saturday, "sat": Saturday, "saturday": Saturday,
	"dom": Sunday, "domingo": Sunday, "sun": Sunday, "sunday": Sunday,
}

// ParseWeekday accepts short or long Spanish and English day names, with or
// without a trailing dot.
func ParseWeekday(s string) (Weekday, error) {
	key := strings.ToLower(strings.TrimSuffix(strings.TrimSpace(s), "."))
	if d, ok := weekdayAliases[key]; ok {
		return d, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidWeekday, s)
}

// Index returns the calendar position of d (Monday is 0), or -1.
func (d Weekday) Index() int {
	for i, w := range Weekdays {
		if w == d {
			return i
		}
	}
	return -1
}

// Clock is a minute-precision time of day stored as zero-padded "HH:MM".
// Fixed width makes string order equal to chronological order.
type Clock string

// ParseClock normalizes "8:00", "08:00" or "08:00:00" into a Clock.
func ParseClock(s string) (Clock, error) {
	s = strings.TrimSpace(s)
	parts := strings.Split(s, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return "", fmt.Errorf("%w: %q", ErrInvalidClock, s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return "", fmt.Errorf("%w: %q", ErrInvalidClock, s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 || len(parts[1]) != 2 {
		return "", fmt.Errorf("%w: %q", ErrInvalidClock, s)
	}
	return Clock(fmt.Sprintf("%02d:%02d", h, m)), nil
}

// MustClock is ParseClock for literals; it panics on malformed input.
func MustClock(s string) Clock {
	c, err := ParseClock(s)
	if err != nil {
		panic(err)
	}
	return c
}

// Minutes returns minutes since midnight.
func (c Clock) Minutes() int {
	if len(c) != 5 {
		return 0
	}
	h, _ := strconv.Atoi(string(c[:2]))
	m, _ := strconv.Atoi(string(c[3:]))
	return h*60 + m
}

// Session is one weekly occurrence of a section.
type Session struct {
	Day   Weekday `json:"day"`
	Start Clock   `json:"start"`
	End   Clock   `json:"end"`
}

// Validate checks that the session has a known day and a positive length.
func (s Session) Validate() error {
	if s.Day.Index() < 0 {
		return fmt.Errorf("%w: day %q", ErrInvalidSession, s.Day)
	}
	if s.Start >= s.End {
		return fmt.Errorf("%w: %s-%s", ErrInvalidSession, s.Start, s.End)
	}
	return nil
}

// Section is one offering of a course with its own weekly sessions.
type Section struct {
	CourseCode string
	Key        string
	Group      string
	Modality   string
	Location   string
	Instructor string
	Capacity   int
	Enrolled   int
	Sessions   []Session
}
