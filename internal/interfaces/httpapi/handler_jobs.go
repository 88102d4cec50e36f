package httpapi

import (
	"net/http"

	"go.opentelemetry.io/otel/attribute"
)

// RunRecalculateGameweekJob is the scheduler hook that rescores every session
// of one gameweek.
func (h *Handler) RunRecalculateGameweekJob(w http.ResponseWriter, r *http.Request) {
	var req recalculateGameweekRequest
	if err := h.decodeAndValidate(r.Context(), w, r, &req); err != nil {
		writeError(r.Context(), w, err)
		return
	}

	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunRecalculateGameweekJob", attribute.Int("draft.gameweek", req.Gameweek))
	defer span.End()

	result, err := h.jobService.RecalculateGameweek(ctx, req.Gameweek)
	if err != nil {
		h.logger.WarnContext(ctx, "recalculate gameweek job failed", "gameweek", req.Gameweek, "error", err)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, recalculateGameweekToDTO(result))
}
