package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/unitrack/planner/internal/domain/model"
	"github.com/unitrack/planner/internal/domain/scoring"
	"github.com/unitrack/planner/internal/domain/search"
	"github.com/unitrack/planner/internal/domain/types"
)

var (
	colorAccent = lipgloss.Color("#20B9B4")
	colorMuted  = lipgloss.Color("#2C4A54")
	colorWarn   = lipgloss.Color("#F4D03F")
	colorError  = lipgloss.Color("#E74C3C")
)

const dayColumnWidth = 13

// styles are bound to the output writer's renderer so color is dropped when
// the writer is not a terminal.
type styles struct {
	title, muted, warn, err, bold lipgloss.Style
	box, dayHeader, dayCell       lipgloss.Style
}

func newStyles(out io.Writer) styles {
	r := lipgloss.NewRenderer(out)
	return styles{
		title:     r.NewStyle().Bold(true).Foreground(colorAccent),
		muted:     r.NewStyle().Foreground(colorMuted),
		warn:      r.NewStyle().Foreground(colorWarn),
		err:       r.NewStyle().Foreground(colorError),
		bold:      r.NewStyle().Bold(true),
		box:       r.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorAccent).Padding(0, 1),
		dayHeader: r.NewStyle().Bold(true).Width(dayColumnWidth).Align(lipgloss.Center),
		dayCell:   r.NewStyle().Width(dayColumnWidth).Align(lipgloss.Center),
	}
}

func renderRecommendation(out io.Writer, rec types.Recommendation) error {
	st := newStyles(out)
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", st.title.Render("Recommendation"), st.muted.Render(rec.ID))
	fmt.Fprintf(&b, "student %s · period %s\n", rec.StudentID, rec.Period)
	fmt.Fprintf(&b, "ranked: %s\n", strings.Join(rec.RankedCourses, " > "))
	status := rec.Message
	if rec.BudgetExceeded || rec.Cancelled {
		status = st.warn.Render(status)
	} else if !rec.Success {
		status = st.err.Render(status)
	}
	fmt.Fprintf(&b, "%s %s\n", status,
		st.muted.Render(fmt.Sprintf("(%d evaluated, %d nodes, %.2fs)", rec.Evaluated, rec.Nodes, rec.ElapsedSeconds)))
	for _, s := range rec.Schedules {
		b.WriteString(renderSchedule(st, s))
		b.WriteString("\n")
	}
	_, err := io.WriteString(out, b.String())
	return err
}

func renderSchedule(st styles, s search.Schedule) string {
	header := fmt.Sprintf("%s  score %.3f · %d credits · %d blocks · %.1f h",
		st.bold.Render(fmt.Sprintf("#%d", s.Rank)), s.Score, s.Result.TotalCredits, s.TotalBlocks, s.TotalHours)

	picked := make([]string, 0, len(s.Sections))
	for _, a := range s.Sections {
		picked = append(picked, a.Course+" "+st.muted.Render(a.Section))
	}
	body := lipgloss.JoinVertical(lipgloss.Left, header, strings.Join(picked, ", "), timetable(st, s.Layout))
	if s.Result.Failures > 0 {
		body = lipgloss.JoinVertical(lipgloss.Left, body,
			st.warn.Render(fmt.Sprintf("%d course(s) predicted below the pass mark", s.Result.Failures)))
	}
	return st.box.Render(body)
}

// timetable lays out one column per weekday holding that day's busy blocks.
// Sunday is shown only when it has classes.
func timetable(st styles, layout []search.DaySchedule) string {
	byDay := make(map[model.Weekday][]search.Block, len(layout))
	for _, d := range layout {
		byDay[d.Day] = d.Blocks
	}
	cols := make([]string, 0, len(model.Weekdays))
	for _, day := range model.Weekdays {
		blocks := byDay[day]
		if day == model.Sunday && len(blocks) == 0 {
			continue
		}
		lines := []string{st.dayHeader.Render(string(day))}
		for _, bl := range blocks {
			lines = append(lines, st.dayCell.Render(string(bl.Start)+"-"+string(bl.End)))
		}
		if len(blocks) == 0 {
			lines = append(lines, st.dayCell.Render(st.muted.Render("·")))
		}
		cols = append(cols, lipgloss.JoinVertical(lipgloss.Left, lines...))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cols...)
}

func renderScore(out io.Writer, res scoring.Result) error {
	st := newStyles(out)
	var b strings.Builder
	verdict := st.title.Render("valid")
	if !res.Valid {
		verdict = st.err.Render("invalid")
	}
	fmt.Fprintf(&b, "%s score %.4f · quality %.4f · %d credits · %d hours\n",
		verdict, res.Score, res.MeanQuality, res.TotalCredits, res.TotalHours)
	if res.Message != "" {
		fmt.Fprintf(&b, "%s\n", st.muted.Render(res.Message))
	}
	if res.CreditPenalty > 0 || res.FailPenalty > 0 {
		fmt.Fprintf(&b, "%s\n", st.warn.Render(fmt.Sprintf("penalties: credits %.0f, failures %.0f (%d)",
			res.CreditPenalty, res.FailPenalty, res.Failures)))
	}
	if res.PredictionFallback {
		fmt.Fprintf(&b, "%s\n", st.warn.Render("grade predictions unavailable, default grade used"))
	}
	if len(res.Courses) > 0 {
		fmt.Fprintf(&b, "%-8s %-32s %7s %6s %8s\n", "CODE", "NAME", "CREDITS", "GRADE", "SCORE")
		for _, c := range res.Courses {
			grade := "-"
			if c.Predicted || res.PredictionFallback {
				grade = fmt.Sprintf("%.1f", c.PredictedGrade)
			}
			fmt.Fprintf(&b, "%-8s %-32s %7d %6s %8.3f\n", c.Code, truncate(c.Name, 32), c.Credits, grade, c.Score)
		}
	}
	_, err := io.WriteString(out, b.String())
	return err
}

func renderRanking(out io.Writer, ranked []types.RankedCourse) error {
	st := newStyles(out)
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", st.title.Render("Course ranking"))
	for _, r := range ranked {
		score := st.muted.Render("unscored")
		if r.Score != nil {
			score = fmt.Sprintf("%.4f", *r.Score)
		}
		fmt.Fprintf(&b, "%3d. %-8s %-32s %s\n", r.Rank, r.Code, truncate(r.Name, 32), score)
	}
	_, err := io.WriteString(out, b.String())
	return err
}

func renderAvailable(out io.Writer, av types.AvailableCourses) error {
	st := newStyles(out)
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s · %d credits earned\n", st.title.Render("Available courses for"), av.StudentID, av.EarnedCredits)
	if len(av.Courses) == 0 {
		fmt.Fprintf(&b, "%s\n", st.muted.Render("none"))
	}
	for _, c := range av.Courses {
		fmt.Fprintf(&b, "%-8s %-32s %2d cr  level %d  %s\n", c.Code, truncate(c.Name, 32), c.Credits, c.Level, c.Kind)
	}
	_, err := io.WriteString(out, b.String())
	return err
}

func renderCourse(out io.Writer, c types.CourseView) error {
	st := newStyles(out)
	pre := "none"
	if len(c.Prerequisites) > 0 {
		pre = strings.Join(c.Prerequisites, ", ")
	}
	body := lipgloss.JoinVertical(lipgloss.Left,
		st.title.Render(c.Code)+" "+c.Name,
		fmt.Sprintf("%d credits · %d hours · kind %s · family %s · level %d", c.Credits, c.Hours, c.Kind, c.Family, c.Level),
		"prerequisites: "+pre,
		fmt.Sprintf("dependents %d · depth %d", c.Dependents, c.MaxDepth),
	)
	_, err := io.WriteString(out, st.box.Render(body)+"\n")
	return err
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
