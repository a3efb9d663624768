// Package catalog holds the read-only course index used by scoring, ranking
// and search.
package catalog

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/unitrack/planner/internal/domain/model"
	"github.com/unitrack/planner/internal/domain/textlist"
	"github.com/unitrack/planner/pkg/logger"
)

// Catalog maps course codes to course metadata. It is immutable after
// construction and safe for concurrent use. A nil *Catalog behaves as empty.
type Catalog struct {
	courses map[string]model.Course
	codes   []string
}

// New builds a catalog from already parsed courses. Later duplicates win.
func New(courses ...model.Course) *Catalog {
	c := &Catalog{courses: make(map[string]model.Course, len(courses))}
	for _, course := range courses {
		code := model.NormalizeCode(course.Code)
		if code == "" {
			continue
		}
		course = course.Clone()
		course.Code = code
		if course.Hours <= 0 {
			course.Hours = 1
		}
		c.courses[code] = course
	}
	c.codes = make([]string, 0, len(c.courses))
	for code := range c.courses {
		c.codes = append(c.codes, code)
	}
	sort.Strings(c.codes)
	return c
}

// Get returns a copy of the course stored under code.
func (c *Catalog) Get(code string) (model.Course, error) {
	if c == nil {
		return model.Course{}, fmt.Errorf("%w: %s", ErrCourseNotFound, code)
	}
	course, ok := c.courses[model.NormalizeCode(code)]
	if !ok {
		return model.Course{}, fmt.Errorf("%w: %s", ErrCourseNotFound, code)
	}
	return course.Clone(), nil
}

// Has reports whether code is known.
func (c *Catalog) Has(code string) bool {
	if c == nil {
		return false
	}
	_, ok := c.courses[model.NormalizeCode(code)]
	return ok
}

// Credits returns the credit value of a course.
func (c *Catalog) Credits(code string) (int, bool) {
	if c == nil {
		return 0, false
	}
	course, ok := c.courses[model.NormalizeCode(code)]
	return course.Credits, ok
}

// Len returns the number of courses.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.courses)
}

// Empty reports whether the catalog failed to load or has no rows.
func (c *Catalog) Empty() bool { return c.Len() == 0 }

// Codes returns all course codes in ascending order.
func (c *Catalog) Codes() []string {
	if c == nil {
		return nil
	}
	out := make([]string, len(c.codes))
	copy(out, c.codes)
	return out
}

// Build joins the three reference tables on the course code. The info table
// drives the join; prerequisite and graph rows without a matching course are
// ignored.
func Build(info, prereqs, graph io.Reader) (*Catalog, error) {
	var (
		infoRows   []*InfoRow
		prereqRows []*PrereqRow
		graphRows  []*GraphRow
	)
	if err := decode(info, &infoRows); err != nil {
		return nil, fmt.Errorf("%w: course info: %v", ErrLoadTable, err)
	}
	if err := decode(prereqs, &prereqRows); err != nil {
		return nil, fmt.Errorf("%w: prerequisites: %v", ErrLoadTable, err)
	}
	if err := decode(graph, &graphRows); err != nil {
		return nil, fmt.Errorf("%w: graph metrics: %v", ErrLoadTable, err)
	}
	return join(infoRows, prereqRows, graphRows), nil
}

func join(infoRows []*InfoRow, prereqRows []*PrereqRow, graphRows []*GraphRow) *Catalog {
	prereqs := make(map[string][]string, len(prereqRows))
	for _, r := range prereqRows {
		code := model.NormalizeCode(r.Code)
		list := textlist.ParseList(r.Prerequisites)
		norm := make([]string, 0, len(list))
		for _, p := range list {
			if p = model.NormalizeCode(p); p != "" {
				norm = append(norm, p)
			}
		}
		prereqs[code] = norm
	}
	graph := make(map[string]*GraphRow, len(graphRows))
	for _, r := range graphRows {
		graph[model.NormalizeCode(r.Code)] = r
	}

	courses := make([]model.Course, 0, len(infoRows))
	for _, r := range infoRows {
		code := model.NormalizeCode(r.Code)
		if code == "" {
			continue
		}
		course := model.Course{
			Code:          code,
			Name:          r.Name,
			Credits:       ParseCount(r.Credits),
			Hours:         ParseCount(r.Hours),
			Kind:          model.CourseKind(model.NormalizeCode(r.Kind)),
			Family:        model.NormalizeCode(r.Family),
			Level:         ParseCount(r.Level),
			Prerequisites: prereqs[code],
		}
		if g, ok := graph[code]; ok {
			course.Dependents = ParseCount(g.Dependents)
			course.MaxDepth = ParseCount(g.Depth)
		}
		if course.Prerequisites == nil {
			course.Prerequisites = []string{}
		}
		courses = append(courses, course)
	}
	return New(courses...)
}

// Paths locates the three reference tables on disk.
type Paths struct {
	Info    string
	Prereqs string
	Graph   string
}

// Open reads the three tables concurrently and joins them.
func Open(ctx context.Context, paths Paths) (*Catalog, error) {
	var (
		infoRows   []*InfoRow
		prereqRows []*PrereqRow
		graphRows  []*GraphRow
	)
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return readTable(ctx, paths.Info, &infoRows) })
	g.Go(func() error { return readTable(ctx, paths.Prereqs, &prereqRows) })
	g.Go(func() error { return readTable(ctx, paths.Graph, &graphRows) })
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return join(infoRows, prereqRows, graphRows), nil
}

// Load is Open that never fails: any error is logged and an empty catalog is
// returned, which callers report as a degraded service.
func Load(ctx context.Context, paths Paths, log logger.Logger) *Catalog {
	if log == nil {
		log = logger.Discard()
	}
	c, err := Open(ctx, paths)
	if err != nil {
		log.Warn(ctx, "course catalog unavailable, continuing degraded", logger.Error(err))
		return New()
	}
	log.Info(ctx, "course catalog loaded", logger.Int("courses", c.Len()))
	return c
}

func readTable(ctx context.Context, path string, rows interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrLoadTable, err)
	}
	defer f.Close()
	if err := decode(f, rows); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrLoadTable, path, err)
	}
	return nil
}
