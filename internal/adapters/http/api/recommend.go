package api

import (
	"net/http"

	"golang.org/x/time/rate"

	"github.com/unitrack/planner/internal/domain/types"
	"github.com/unitrack/planner/pkg/logger"
	"github.com/unitrack/planner/pkg/metrics"
)

// RecommendHandler handles schedule recommendation requests.
type RecommendHandler struct {
	deps    RecommendDependencies
	limiter *rate.Limiter
	maxBody int64
	log     logger.Logger
}

// NewRecommendHandler creates a new recommendation handler.
func NewRecommendHandler(deps RecommendDependencies, st settings) *RecommendHandler {
	return &RecommendHandler{deps: deps, limiter: st.limiter, maxBody: st.maxBody, log: st.log}
}

// HandleRecommend handles POST /recommendations requests.
func (h *RecommendHandler) HandleRecommend(w http.ResponseWriter, r *http.Request) {
	const op = "api.recommend"
	if h.limiter != nil && !h.limiter.Allow() {
		metrics.RecordRateLimited("recommendations")
		w.Header().Set("Retry-After", "1")
		writeError(w, http.StatusTooManyRequests, "rate_limited", NewKind(op, ErrRateLimited))
		return
	}
	var req types.RecommendRequest
	if err := decode(w, r, h.maxBody, &req); err != nil {
		fail(r.Context(), w, h.log, op, err)
		return
	}
	rec, err := h.deps.Recommend(r.Context(), req)
	if err != nil {
		fail(r.Context(), w, h.log, op, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}
