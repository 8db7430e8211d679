package api

import (
	"net/http"

	"github.com/cory-johannsen/dungeon/internal/game/save"
)

type saveResponse struct {
	Success bool   `json:"success"`
	SaveID  string `json:"saveId,omitempty"`
	Message string `json:"message"`
}

func (h *Handler) upsertSave(w http.ResponseWriter, r *http.Request) {
	var sess save.Session
	if err := decodeJSON(r, &sess); err != nil {
		h.writeError(w, r, failSave, err)
		return
	}
	id, err := h.saves.Upsert(r.Context(), sess)
	if err != nil {
		h.writeError(w, r, failSave, err)
		return
	}
	writeJSON(w, http.StatusOK, saveResponse{Success: true, SaveID: id, Message: "Game saved successfully"})
}

func (h *Handler) loadSave(w http.ResponseWriter, r *http.Request) {
	sess, err := h.saves.Load(r.Context(), r.PathValue("saveId"))
	if err != nil {
		h.writeError(w, r, failLoad, err)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

func (h *Handler) listSaves(w http.ResponseWriter, r *http.Request) {
	out, err := h.saves.ListRecent(r.Context(), r.PathValue("playerId"))
	if err != nil {
		h.writeError(w, r, failList, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) deleteSave(w http.ResponseWriter, r *http.Request) {
	if err := h.saves.Delete(r.Context(), r.PathValue("saveId")); err != nil {
		h.writeError(w, r, failDelete, err)
		return
	}
	writeJSON(w, http.StatusOK, saveResponse{Success: true, Message: "Save deleted successfully"})
}

func (h *Handler) getProfile(w http.ResponseWriter, r *http.Request) {
	p, err := h.saves.Profile(r.Context(), r.PathValue("playerId"))
	if err != nil {
		h.writeError(w, r, failProfile, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *Handler) updateProfile(w http.ResponseWriter, r *http.Request) {
	var u save.ProfileUpdate
	if err := decodeJSON(r, &u); err != nil {
		h.writeError(w, r, failUpdateProfile, err)
		return
	}
	p, err := h.saves.UpdateProfile(r.Context(), r.PathValue("playerId"), u)
	if err != nil {
		h.writeError(w, r, failUpdateProfile, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}
