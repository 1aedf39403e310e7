package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/doorro/gatekeeper/internal/store"
)

type UserHandler struct {
	store *store.Store
}

func NewUserHandler(st *store.Store) *UserHandler {
	return &UserHandler{store: st}
}

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.store.ListUsers(r.Context(), 100)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, "db_error")
		return
	}
	writeJSON(w, http.StatusOK, users)
}

func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var body struct {
		FullName string `json:"full_name"`
		Active   *bool  `json:"active"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeErr(w, http.StatusBadRequest, "bad_json")
		return
	}

	fullName := strings.TrimSpace(body.FullName)
	if fullName == "" {
		writeErr(w, http.StatusBadRequest, "full_name_required")
		return
	}

	active := true
	if body.Active != nil {
		active = *body.Active
	}

	u, err := h.store.CreateUser(r.Context(), fullName, active)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, "db_error")
		return
	}
	writeJSON(w, http.StatusCreated, u)
}

// Update applies a partial update. Touching active or current_pin_id triggers
// the card/pin activation cascade inside the store's transaction.
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var body struct {
		FullName     *string         `json:"full_name"`
		Active       *bool           `json:"active"`
		CurrentPinID json.RawMessage `json:"current_pin_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeErr(w, http.StatusBadRequest, "bad_json")
		return
	}

	upd := store.UserUpdate{Active: body.Active}
	if body.FullName != nil {
		trimmed := strings.TrimSpace(*body.FullName)
		upd.FullName = &trimmed
	}
	if body.CurrentPinID != nil {
		upd.CurrentPinSet = true
		if !bytes.Equal(bytes.TrimSpace(body.CurrentPinID), []byte("null")) {
			var pinID int64
			if err := json.Unmarshal(body.CurrentPinID, &pinID); err != nil {
				writeErr(w, http.StatusBadRequest, "bad_current_pin_id")
				return
			}
			upd.CurrentPinID = &pinID
		}
	}

	u, err := h.store.UpdateUser(r.Context(), id, upd)
	switch {
	case errors.Is(err, store.ErrNoFields):
		writeErr(w, http.StatusBadRequest, "no_fields")
	case errors.Is(err, store.ErrNotFound):
		writeErr(w, http.StatusNotFound, "not_found")
	case err != nil:
		writeErr(w, http.StatusInternalServerError, "db_error")
	default:
		writeJSON(w, http.StatusOK, u)
	}
}

func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.store.DeleteUser(r.Context(), id); err != nil {
		writeErr(w, http.StatusInternalServerError, "db_error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeErr(w, http.StatusBadRequest, "bad_id")
		return 0, false
	}
	return id, true
}
