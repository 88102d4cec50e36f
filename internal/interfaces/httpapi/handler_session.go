package httpapi

import (
	"net/http"
)

func (h *Handler) StartSession(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.StartSession")
	defer span.End()

	userID, key, ok := h.principalAndKey(w, r)
	if !ok {
		return
	}

	session, err := h.sessionService.StartSession(ctx, key, userID)
	if err != nil {
		h.logger.WarnContext(ctx, "start session failed", "room_code", key.RoomCode, "gameweek", key.Gameweek, "user_id", userID, "error", err)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusCreated, sessionToDTO(session))
}

func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetSession")
	defer span.End()

	userID, key, ok := h.principalAndKey(w, r)
	if !ok {
		return
	}

	view, err := h.sessionService.GetSessionView(ctx, key, userID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, sessionViewToDTO(view))
}

func (h *Handler) SubmitPick(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SubmitPick")
	defer span.End()

	userID, key, ok := h.principalAndKey(w, r)
	if !ok {
		return
	}
	var req submitPickRequest
	if err := h.decodeAndValidate(ctx, w, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	session, pick, err := h.sessionService.SubmitPick(ctx, key, userID, req.Score)
	if err != nil {
		h.logger.InfoContext(ctx, "submit pick rejected", "room_code", key.RoomCode, "gameweek", key.Gameweek, "user_id", userID, "error", err)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusCreated, pickResultDTO{Session: sessionToDTO(session), Pick: pickToDTO(pick)})
}

func (h *Handler) LockGolden(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.LockGolden")
	defer span.End()

	userID, key, ok := h.principalAndKey(w, r)
	if !ok {
		return
	}
	var req lockGoldenRequest
	if err := h.decodeAndValidate(ctx, w, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	session, lock, err := h.sessionService.LockGolden(ctx, key, userID, req.FixtureID, req.Score)
	if err != nil {
		h.logger.InfoContext(ctx, "lock golden rejected", "room_code", key.RoomCode, "gameweek", key.Gameweek, "user_id", userID, "error", err)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, goldenResultDTO{Session: sessionToDTO(session), Lock: goldenLockToDTO(lock)})
}
