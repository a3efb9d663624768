package api

import (
	"net/http"
	"strings"

	"github.com/unitrack/planner/pkg/logger"
)

// StudentHandler handles student requests.
type StudentHandler struct {
	deps StudentDependencies
	log  logger.Logger
}

// NewStudentHandler creates a new student handler.
func NewStudentHandler(deps StudentDependencies, st settings) *StudentHandler {
	return &StudentHandler{deps: deps, log: st.log}
}

// HandleAvailable handles GET /students/{id}/available-courses requests.
func (h *StudentHandler) HandleAvailable(w http.ResponseWriter, r *http.Request) {
	const op = "api.available_courses"
	id := strings.TrimSpace(r.PathValue("id"))
	if id == "" {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	av, err := h.deps.AvailableCourses(r.Context(), id)
	if err != nil {
		fail(r.Context(), w, h.log, op, err)
		return
	}
	writeJSON(w, http.StatusOK, av)
}
