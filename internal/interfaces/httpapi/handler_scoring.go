package httpapi

import (
	"net/http"
	"strings"
)

func (h *Handler) RecalculateScores(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RecalculateScores")
	defer span.End()

	userID, key, ok := h.principalAndKey(w, r)
	if !ok {
		return
	}

	result, err := h.scoringService.RecalculateAsLeader(ctx, key, userID)
	if err != nil {
		h.logger.WarnContext(ctx, "recalculate scores failed", "room_code", key.RoomCode, "gameweek", key.Gameweek, "error", err)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, recalculateResultDTO{
		Scored:       result.Scored,
		ResultsKnown: result.ResultsKnown,
		Records:      scoreRecordsToDTO(result.Records),
	})
}

func (h *Handler) ListScores(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListScores")
	defer span.End()

	userID, key, ok := h.principalAndKey(w, r)
	if !ok {
		return
	}
	records, err := h.scoringService.ListScores(ctx, key, userID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, scoreRecordsToDTO(records))
}

func (h *Handler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetLeaderboard")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	upTo := 0
	if raw := strings.TrimSpace(r.URL.Query().Get("upTo")); raw != "" {
		parsed, err := parseGameweek(raw)
		if err != nil {
			writeError(ctx, w, err)
			return
		}
		upTo = parsed
	}

	board, err := h.leaderboardService.Get(ctx, r.PathValue("roomCode"), principal.UserID, upTo)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, leaderboardToDTO(board))
}
