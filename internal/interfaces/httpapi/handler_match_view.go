package httpapi

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/riskibarqy/rift-scout/internal/usecase"
)

type matchViewQuery struct {
	Name  string `validate:"required,max=64"`
	Games int    `validate:"omitempty,min=1,max=100"`
}

// GetMatchView serves GET /v1/summoners/{name}/match-view?games=N.
func (h *Handler) GetMatchView(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetMatchView")
	defer span.End()

	query := matchViewQuery{Name: strings.TrimSpace(r.PathValue("name"))}
	if raw := strings.TrimSpace(r.URL.Query().Get("games")); raw != "" {
		games, err := strconv.Atoi(raw)
		if err != nil {
			writeError(ctx, w, fmt.Errorf("%w: games must be an integer", usecase.ErrInvalidInput))
			return
		}
		query.Games = games
	}
	if err := h.validateRequest(ctx, query); err != nil {
		writeError(ctx, w, err)
		return
	}

	view, err := h.matchViews.BuildViewWithGames(ctx, query.Name, query.Games)
	if err != nil {
		h.logger.WarnContext(ctx, "build match view failed", "name", query.Name, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, matchViewToDTO(view))
}
