package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/doorro/gatekeeper/internal/store"
)

type EventHandler struct {
	store *store.Store
}

func NewEventHandler(st *store.Store) *EventHandler {
	return &EventHandler{store: st}
}

// List serves the audit trail, newest first. Filters: result,
// credential_type, from, to (RFC3339), limit (default 100, capped at 500 by
// the store).
func (h *EventHandler) List(w http.ResponseWriter, r *http.Request) {
	q := store.EventQuery{
		Result:         r.URL.Query().Get("result"),
		CredentialType: r.URL.Query().Get("credential_type"),
	}

	q.Limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))

	if s := r.URL.Query().Get("from"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			writeErr(w, http.StatusBadRequest, "bad_from")
			return
		}
		q.From = &t
	}
	if s := r.URL.Query().Get("to"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			writeErr(w, http.StatusBadRequest, "bad_to")
			return
		}
		q.To = &t
	}

	events, err := h.store.ListEvents(r.Context(), q)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, "db_error")
		return
	}
	writeJSON(w, http.StatusOK, events)
}
