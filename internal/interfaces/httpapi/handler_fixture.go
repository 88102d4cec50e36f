package httpapi

import (
	"net/http"
	"strings"
)

func (h *Handler) ListFixtures(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListFixtures")
	defer span.End()

	rawGameweek := strings.TrimSpace(r.URL.Query().Get("gameweek"))
	var gameweek int
	if rawGameweek == "" {
		current, err := h.fixtureService.CurrentGameweek(ctx)
		if err != nil {
			h.logger.WarnContext(ctx, "resolve current gameweek failed", "error", err)
			writeError(ctx, w, err)
			return
		}
		gameweek = current
	} else {
		parsed, err := parseGameweek(rawGameweek)
		if err != nil {
			writeError(ctx, w, err)
			return
		}
		gameweek = parsed
	}

	items, err := h.fixtureService.ListByGameweek(ctx, gameweek)
	if err != nil {
		h.logger.WarnContext(ctx, "list fixtures failed", "gameweek", gameweek, "error", err)
		writeError(ctx, w, err)
		return
	}

	fixtures := make([]fixtureDTO, 0, len(items))
	for _, item := range items {
		fixtures = append(fixtures, fixtureToDTO(item))
	}
	writeSuccess(ctx, w, http.StatusOK, map[string]any{
		"gameweek": gameweek,
		"fixtures": fixtures,
	})
}

func (h *Handler) GetCurrentGameweek(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetCurrentGameweek")
	defer span.End()

	gameweek, err := h.fixtureService.CurrentGameweek(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "get current gameweek failed", "error", err)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, map[string]int{"currentGameweek": gameweek})
}
