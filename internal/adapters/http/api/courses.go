package api

import (
	"net/http"
	"strings"

	"github.com/unitrack/planner/internal/domain/types"
	"github.com/unitrack/planner/pkg/logger"
)

// CourseHandler handles course ranking and lookup requests.
type CourseHandler struct {
	deps    CourseDependencies
	maxBody int64
	log     logger.Logger
}

// NewCourseHandler creates a new course handler.
func NewCourseHandler(deps CourseDependencies, st settings) *CourseHandler {
	return &CourseHandler{deps: deps, maxBody: st.maxBody, log: st.log}
}

type rankResponse struct {
	Courses []types.RankedCourse `json:"courses"`
}

// HandleRank handles POST /courses/rank requests.
func (h *CourseHandler) HandleRank(w http.ResponseWriter, r *http.Request) {
	const op = "api.rank_courses"
	var req types.RankRequest
	if err := decode(w, r, h.maxBody, &req); err != nil {
		fail(r.Context(), w, h.log, op, err)
		return
	}
	ranked, err := h.deps.RankCourses(r.Context(), req)
	if err != nil {
		fail(r.Context(), w, h.log, op, err)
		return
	}
	writeJSON(w, http.StatusOK, rankResponse{Courses: ranked})
}

// HandleGetCourse handles GET /courses/{code} requests.
func (h *CourseHandler) HandleGetCourse(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_course"
	code := strings.TrimSpace(r.PathValue("code"))
	if code == "" {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	c, err := h.deps.Course(r.Context(), code)
	if err != nil {
		fail(r.Context(), w, h.log, op, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}
