package httpapi

import (
	"net/http"

	"github.com/riskibarqy/gameweek-draft/internal/domain/minigame"
)

func (h *Handler) CreateRoom(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CreateRoom")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	var req createRoomRequest
	if err := h.decodeAndValidate(ctx, w, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	item, err := h.roomService.CreateRoom(ctx, req.RoomCode, principal.UserID, req.DisplayName)
	if err != nil {
		h.logger.WarnContext(ctx, "create room failed", "room_code", req.RoomCode, "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusCreated, roomToDTO(item))
}

func (h *Handler) JoinRoom(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.JoinRoom")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	var req joinRoomRequest
	if err := h.decodeAndValidate(ctx, w, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	roomCode := r.PathValue("roomCode")
	member, err := h.roomService.JoinRoom(ctx, roomCode, principal.UserID, req.DisplayName)
	if err != nil {
		h.logger.WarnContext(ctx, "join room failed", "room_code", roomCode, "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, memberToDTO(member))
}

func (h *Handler) ListMembers(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListMembers")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	members, err := h.roomService.ListMembers(ctx, r.PathValue("roomCode"), principal.UserID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	items := make([]memberDTO, 0, len(members))
	for _, m := range members {
		items = append(items, memberToDTO(m))
	}
	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) KickMember(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.KickMember")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	roomCode, target := r.PathValue("roomCode"), r.PathValue("userID")
	if err := h.roomService.KickMember(ctx, roomCode, principal.UserID, target); err != nil {
		h.logger.WarnContext(ctx, "kick member failed", "room_code", roomCode, "target_id", target, "error", err)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, map[string]string{"removed": target})
}

func (h *Handler) EnterLobby(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.EnterLobby")
	defer span.End()

	userID, key, ok := h.principalAndKey(w, r)
	if !ok {
		return
	}

	entry, err := h.roomService.EnterLobby(ctx, key, userID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, lobbyEntryToDTO(entry))
}

func (h *Handler) LeaveLobby(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.LeaveLobby")
	defer span.End()

	userID, key, ok := h.principalAndKey(w, r)
	if !ok {
		return
	}

	if err := h.roomService.LeaveLobby(ctx, key, userID); err != nil {
		writeError(ctx, w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListLobby(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListLobby")
	defer span.End()

	userID, key, ok := h.principalAndKey(w, r)
	if !ok {
		return
	}

	entries, err := h.roomService.ListLobby(ctx, key, userID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	items := make([]lobbyEntryDTO, 0, len(entries))
	for _, e := range entries {
		items = append(items, lobbyEntryToDTO(e))
	}
	writeSuccess(ctx, w, http.StatusOK, items)
}

// principalAndKey resolves the caller and the session key from the path,
// writing the error response itself when either is missing.
func (h *Handler) principalAndKey(w http.ResponseWriter, r *http.Request) (string, minigame.SessionKey, bool) {
	ctx := r.Context()
	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return "", minigame.SessionKey{}, false
	}
	key, err := sessionKeyFromRequest(r)
	if err != nil {
		writeError(ctx, w, err)
		return "", minigame.SessionKey{}, false
	}
	return principal.UserID, key, true
}
