package api

import (
	"net/http"

	"github.com/unitrack/planner/internal/domain/types"
	"github.com/unitrack/planner/pkg/logger"
)

// BundleHandler handles bundle scoring requests.
type BundleHandler struct {
	deps    BundleDependencies
	maxBody int64
	log     logger.Logger
}

// NewBundleHandler creates a new bundle handler.
func NewBundleHandler(deps BundleDependencies, st settings) *BundleHandler {
	return &BundleHandler{deps: deps, maxBody: st.maxBody, log: st.log}
}

// HandleScore handles POST /bundles/score requests. Bundles the scorer
// rejects are answered with 200 and an invalid result.
func (h *BundleHandler) HandleScore(w http.ResponseWriter, r *http.Request) {
	const op = "api.score_bundle"
	var req types.ScoreRequest
	if err := decode(w, r, h.maxBody, &req); err != nil {
		fail(r.Context(), w, h.log, op, err)
		return
	}
	res, err := h.deps.ScoreBundle(r.Context(), req)
	if err != nil {
		fail(r.Context(), w, h.log, op, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// HandleCompare handles POST /bundles/compare requests.
func (h *BundleHandler) HandleCompare(w http.ResponseWriter, r *http.Request) {
	const op = "api.compare_bundles"
	var req types.CompareRequest
	if err := decode(w, r, h.maxBody, &req); err != nil {
		fail(r.Context(), w, h.log, op, err)
		return
	}
	cmp, err := h.deps.CompareBundles(r.Context(), req)
	if err != nil {
		fail(r.Context(), w, h.log, op, err)
		return
	}
	writeJSON(w, http.StatusOK, cmp)
}
