package repository

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/gocarina/gocsv"
	"golang.org/x/sync/errgroup"

	"github.com/unitrack/planner/internal/domain/catalog"
	"github.com/unitrack/planner/internal/domain/model"
	"github.com/unitrack/planner/internal/domain/textlist"
	"github.com/unitrack/planner/pkg/logger"
)

// SessionRow is one weekly session of a published timetable export.
type SessionRow struct {
	CourseCode string `csv:"cod_curso"`
	CourseName string `csv:"curso"`
	Section    string `csv:"Seccion"`
	Group      string `csv:"Grupo"`
	Modality   string `csv:"Modalidad"`
	Schedule   string `csv:"Horario"`
	Frequency  string `csv:"Frecuencia"`
	Location   string `csv:"Ubicacion"`
	Capacity   string `csv:"Vacantes"`
	Enrolled   string `csv:"Matriculados"`
	Instructor string `csv:"Docente"`
}

// SectionRow is one pre-grouped section whose sessions are a record list blob.
type SectionRow struct {
	CourseCode string `csv:"cod_curso"`
	Key        string `csv:"seccion_key"`
	Sessions   string `csv:"horarios"`
}

// StudentRow is one line of the student table.
type StudentRow struct {
	ID              string `csv:"COD_PERSONA"`
	AdmissionPeriod string `csv:"PER_INGRESO"`
	Program         string `csv:"CARRERA"`
}

// EnrollmentRow is one line of the enrollment history.
type EnrollmentRow struct {
	StudentID  string `csv:"COD_PERSONA"`
	CourseCode string `csv:"COD_CURSO"`
	Period     string `csv:"PER_MATRICULA"`
	Grade      string `csv:"NOTA"`
}

var scheduleText = regexp.MustCompile(`^\s*([^\s.]+)\.?\s+(\d{1,2}:\d{2}(?::\d{2})?)\s*-\s*(\d{1,2}:\d{2}(?::\d{2})?)\s*$`)

// ParseSchedule reads display text such as "Lun. 11:00 - 13:00".
func ParseSchedule(s string) (model.Session, error) {
	m := scheduleText.FindStringSubmatch(s)
	if m == nil {
		return model.Session{}, fmt.Errorf("%w: %q", ErrInvalidSchedule, s)
	}
	return newSession(m[1], m[2], m[3])
}

func newSession(day, start, end string) (model.Session, error) {
	d, err := model.ParseWeekday(day)
	if err != nil {
		return model.Session{}, err
	}
	st, err := model.ParseClock(start)
	if err != nil {
		return model.Session{}, err
	}
	en, err := model.ParseClock(end)
	if err != nil {
		return model.Session{}, err
	}
	sess := model.Session{Day: d, Start: st, End: en}
	return sess, sess.Validate()
}

// groupKey returns the last token of a group label: "LABORATORIO 1.01" -> "1.01".
func groupKey(label string) string {
	fields := strings.Fields(label)
	if len(fields) == 0 {
		return ""
	}
	return fields[len(fields)-1]
}

// isGeneral reports whether key names a whole-group slot ("1") rather than a
// sub-section ("1.01").
func isGeneral(key string) bool {
	f, err := strconv.ParseFloat(key, 64)
	return err == nil && f == float64(int64(f))
}

// parent returns the general key a sub-section belongs to: "1.01" -> "1".
func parent(key string) string {
	if i := strings.IndexByte(key, '.'); i > 0 {
		return key[:i]
	}
	return key
}

// SectionsFromSessions groups per-session rows into sections. Rows of a
// general group are merged into every sub-section of that group; general
// groups without sub-sections become sections of their own. Rows whose
// schedule text cannot be read are skipped and counted.
func SectionsFromSessions(rows []*SessionRow) ([]model.Section, int) {
	type course struct {
		order   []string
		subs    map[string]*model.Section
		general map[string][]*SessionRow
		gorder  []string
	}
	var (
		courses = map[string]*course{}
		corder  []string
		skipped int
	)
	for _, r := range rows {
		code := model.NormalizeCode(r.CourseCode)
		key := groupKey(r.Group)
		if code == "" || key == "" {
			skipped++
			continue
		}
		c, ok := courses[code]
		if !ok {
			c = &course{subs: map[string]*model.Section{}, general: map[string][]*SessionRow{}}
			courses[code] = c
			corder = append(corder, code)
		}
		if isGeneral(key) {
			if _, seen := c.general[key]; !seen {
				c.gorder = append(c.gorder, key)
			}
			c.general[key] = append(c.general[key], r)
			continue
		}
		sec, ok := c.subs[key]
		if !ok {
			sec = newSection(code, key, r)
			c.subs[key] = sec
			c.order = append(c.order, key)
		}
		if !appendSession(sec, r) {
			skipped++
		}
	}

	var out []model.Section
	for _, code := range corder {
		c := courses[code]
		claimed := map[string]bool{}
		for _, key := range c.order {
			sec := c.subs[key]
			if gen, ok := c.general[parent(key)]; ok {
				claimed[parent(key)] = true
				for _, r := range gen {
					if !appendSession(sec, r) {
						skipped++
					}
				}
			}
			out = append(out, *sec)
		}
		for _, key := range c.gorder {
			if claimed[key] {
				continue
			}
			gen := c.general[key]
			sec := newSection(code, key, gen[0])
			for _, r := range gen {
				if !appendSession(sec, r) {
					skipped++
				}
			}
			out = append(out, *sec)
		}
	}
	return out, skipped
}

func newSection(code, key string, r *SessionRow) *model.Section {
	return &model.Section{
		CourseCode: code,
		Key:        key,
		Group:      strings.TrimSpace(r.Group),
		Modality:   strings.TrimSpace(r.Modality),
		Location:   strings.TrimSpace(r.Location),
		Instructor: strings.TrimSpace(r.Instructor),
		Capacity:   catalog.ParseCount(r.Capacity),
		Enrolled:   catalog.ParseCount(r.Enrolled),
	}
}

func appendSession(sec *model.Section, r *SessionRow) bool {
	sess, err := ParseSchedule(r.Schedule)
	if err != nil {
		return false
	}
	sec.Sessions = append(sec.Sessions, sess)
	return true
}

// SectionsFromRecords converts pre-grouped rows whose sessions are encoded
// as record blobs with Dia, Hora_inicio and Hora_fin keys.
func SectionsFromRecords(rows []*SectionRow) ([]model.Section, int) {
	out := make([]model.Section, 0, len(rows))
	skipped := 0
	for _, r := range rows {
		code := model.NormalizeCode(r.CourseCode)
		if code == "" {
			skipped++
			continue
		}
		sec := model.Section{CourseCode: code, Key: strings.TrimSpace(r.Key)}
		for _, rec := range textlist.ParseRecordList(r.Sessions) {
			sess, err := newSession(rec["Dia"], rec["Hora_inicio"], rec["Hora_fin"])
			if err != nil {
				skipped++
				continue
			}
			sec.Sessions = append(sec.Sessions, sess)
		}
		out = append(out, sec)
	}
	return out, skipped
}

// ReadSections decodes a section file in either layout, picked from its header.
func ReadSections(in io.Reader) ([]model.Section, int, error) {
	data, err := io.ReadAll(in)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrLoadData, err)
	}
	header, _, _ := bufio.NewReader(bytes.NewReader(data)).ReadLine()
	if strings.Contains(string(header), "horarios") {
		var rows []*SectionRow
		if err := gocsv.UnmarshalCSV(catalog.NewCSVReader(bytes.NewReader(data)), &rows); err != nil {
			return nil, 0, fmt.Errorf("%w: sections: %v", ErrLoadData, err)
		}
		secs, skipped := SectionsFromRecords(rows)
		return secs, skipped, nil
	}
	var rows []*SessionRow
	if err := gocsv.UnmarshalCSV(catalog.NewCSVReader(bytes.NewReader(data)), &rows); err != nil {
		return nil, 0, fmt.Errorf("%w: sections: %v", ErrLoadData, err)
	}
	secs, skipped := SectionsFromSessions(rows)
	return secs, skipped, nil
}

// ReadStudents decodes the student table.
func ReadStudents(in io.Reader) ([]model.Student, error) {
	var rows []*StudentRow
	if err := gocsv.UnmarshalCSV(catalog.NewCSVReader(in), &rows); err != nil {
		return nil, fmt.Errorf("%w: students: %v", ErrLoadData, err)
	}
	out := make([]model.Student, 0, len(rows))
	for _, r := range rows {
		out = append(out, model.Student{
			ID:              strings.TrimSpace(r.ID),
			AdmissionPeriod: model.Period(strings.TrimSpace(r.AdmissionPeriod)),
			Program:         strings.TrimSpace(r.Program),
		})
	}
	return out, nil
}

// ReadEnrollments decodes the enrollment history. Blank or non-numeric
// grades are kept as ungraded enrollments.
func ReadEnrollments(in io.Reader) ([]model.Enrollment, error) {
	var rows []*EnrollmentRow
	if err := gocsv.UnmarshalCSV(catalog.NewCSVReader(in), &rows); err != nil {
		return nil, fmt.Errorf("%w: enrollments: %v", ErrLoadData, err)
	}
	out := make([]model.Enrollment, 0, len(rows))
	for _, r := range rows {
		e := model.Enrollment{
			StudentID:  strings.TrimSpace(r.StudentID),
			CourseCode: model.NormalizeCode(r.CourseCode),
			Period:     model.Period(strings.TrimSpace(r.Period)),
		}
		if g, err := strconv.ParseFloat(strings.TrimSpace(r.Grade), 64); err == nil && !math.IsNaN(g) {
			e.Grade = &g
		}
		out = append(out, e)
	}
	return out, nil
}

// Paths locates the reference files. Empty paths are skipped.
type Paths struct {
	Sections    string
	Students    string
	Enrollments string
}

// LoadStats summarizes a Load call.
type LoadStats struct {
	Sections        int
	SkippedSessions int
	Students        int
	Enrollments     int
}

// Load reads the reference files concurrently into s.
func (s *MemoryStore) Load(ctx context.Context, paths Paths) (LoadStats, error) {
	var (
		stats       LoadStats
		sections    []model.Section
		students    []model.Student
		enrollments []model.Enrollment
	)
	g, gctx := errgroup.WithContext(ctx)
	if paths.Sections != "" {
		g.Go(func() error {
			return withFile(gctx, paths.Sections, func(r io.Reader) error {
				var err error
				sections, stats.SkippedSessions, err = ReadSections(r)
				return err
			})
		})
	}
	if paths.Students != "" {
		g.Go(func() error {
			return withFile(gctx, paths.Students, func(r io.Reader) error {
				var err error
				students, err = ReadStudents(r)
				return err
			})
		})
	}
	if paths.Enrollments != "" {
		g.Go(func() error {
			return withFile(gctx, paths.Enrollments, func(r io.Reader) error {
				var err error
				enrollments, err = ReadEnrollments(r)
				return err
			})
		})
	}
	if err := g.Wait(); err != nil {
		return stats, err
	}

	if paths.Sections != "" {
		s.ReplaceSections(sections)
	}
	if paths.Students != "" || paths.Enrollments != "" {
		s.ReplaceStudents(students, enrollments)
	}
	stats.Sections = len(sections)
	stats.Students = len(students)
	stats.Enrollments = len(enrollments)
	s.log.Info(ctx, "reference data loaded",
		logger.Int("sections", stats.Sections),
		logger.Int("skipped_sessions", stats.SkippedSessions),
		logger.Int("students", stats.Students),
		logger.Int("enrollments", stats.Enrollments))
	return stats, nil
}

func withFile(ctx context.Context, path string, fn func(io.Reader) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrLoadData, err)
	}
	defer f.Close()
	return fn(f)
}
