package api

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/cory-johannsen/dungeon/internal/game/combat"
	"github.com/cory-johannsen/dungeon/internal/narrative"
)

func (h *Handler) generateStory(w http.ResponseWriter, r *http.Request) {
	var req narrative.Request
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, failStory, err)
		return
	}
	resp, err := h.narrator.Generate(r.Context(), req)
	if errors.Is(err, narrative.ErrProvider) {
		h.logger.Error("story generation failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, ErrorBody{Error: failStory.message, Message: err.Error()})
		return
	}
	if err != nil {
		h.writeError(w, r, failStory, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) resolveCombat(w http.ResponseWriter, r *http.Request) {
	var req combat.Request
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, failCombat, err)
		return
	}
	res, err := h.resolver.Resolve(req)
	if err != nil {
		h.writeError(w, r, failCombat, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
