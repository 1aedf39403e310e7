package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/doorro/gatekeeper/internal/models"
	"github.com/doorro/gatekeeper/internal/store"
)

// DoorCacheInvalidator lets the admin surface flush the engine's door
// resolver cache whenever a door mutates; without this the cache would serve
// stale mappings for the life of the process.
type DoorCacheInvalidator interface {
	Invalidate(doorKey string)
	InvalidateAll()
}

type DoorHandler struct {
	store    *store.Store
	resolver DoorCacheInvalidator
}

func NewDoorHandler(st *store.Store, resolver DoorCacheInvalidator) *DoorHandler {
	return &DoorHandler{store: st, resolver: resolver}
}

func validAccessMode(mode string) bool {
	return mode == models.AccessModeRFIDOrPin || mode == models.AccessModeRFIDAndPin
}

func (h *DoorHandler) List(w http.ResponseWriter, r *http.Request) {
	doors, err := h.store.ListDoors(r.Context(), 200)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, "db_error")
		return
	}
	writeJSON(w, http.StatusOK, doors)
}

func (h *DoorHandler) Create(w http.ResponseWriter, r *http.Request) {
	var body struct {
		DoorKey    string  `json:"door_key"`
		Name       *string `json:"name"`
		Location   *string `json:"location"`
		AccessMode *string `json:"access_mode"`
		OpenTimeS  *int    `json:"open_time_s"`
		Active     *bool   `json:"active"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeErr(w, http.StatusBadRequest, "bad_json")
		return
	}

	in := store.DoorCreate{
		DoorKey:    strings.TrimSpace(body.DoorKey),
		Name:       body.Name,
		Location:   body.Location,
		AccessMode: models.AccessModeRFIDOrPin,
		OpenTimeS:  5,
		Active:     true,
	}
	if in.DoorKey == "" {
		writeErr(w, http.StatusBadRequest, "door_key_required")
		return
	}
	if body.AccessMode != nil {
		if !validAccessMode(*body.AccessMode) {
			writeErr(w, http.StatusBadRequest, "bad_access_mode")
			return
		}
		in.AccessMode = *body.AccessMode
	}
	if body.OpenTimeS != nil {
		if *body.OpenTimeS < 1 || *body.OpenTimeS > 60 {
			writeErr(w, http.StatusBadRequest, "bad_open_time_s")
			return
		}
		in.OpenTimeS = *body.OpenTimeS
	}
	if body.Active != nil {
		in.Active = *body.Active
	}

	d, err := h.store.CreateDoor(r.Context(), in)
	switch {
	case errors.Is(err, store.ErrDuplicate):
		writeErr(w, http.StatusConflict, "door_key_exists")
	case err != nil:
		writeErr(w, http.StatusInternalServerError, "db_error")
	default:
		h.resolver.Invalidate(d.DoorKey)
		writeJSON(w, http.StatusCreated, d)
	}
}

func (h *DoorHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var body struct {
		DoorKey    *string         `json:"door_key"`
		Name       json.RawMessage `json:"name"`
		Location   json.RawMessage `json:"location"`
		AccessMode *string         `json:"access_mode"`
		OpenTimeS  *int            `json:"open_time_s"`
		Active     *bool           `json:"active"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeErr(w, http.StatusBadRequest, "bad_json")
		return
	}

	upd := store.DoorUpdate{OpenTimeS: body.OpenTimeS, Active: body.Active}
	if body.DoorKey != nil {
		trimmed := strings.TrimSpace(*body.DoorKey)
		if trimmed == "" {
			writeErr(w, http.StatusBadRequest, "door_key_required")
			return
		}
		upd.DoorKey = &trimmed
	}
	if body.Name != nil {
		s, err := optionalString(body.Name)
		if err != nil {
			writeErr(w, http.StatusBadRequest, "bad_name")
			return
		}
		upd.NameSet = true
		upd.Name = s
	}
	if body.Location != nil {
		s, err := optionalString(body.Location)
		if err != nil {
			writeErr(w, http.StatusBadRequest, "bad_location")
			return
		}
		upd.LocSet = true
		upd.Location = s
	}
	if body.AccessMode != nil {
		if !validAccessMode(*body.AccessMode) {
			writeErr(w, http.StatusBadRequest, "bad_access_mode")
			return
		}
		upd.AccessMode = body.AccessMode
	}
	if body.OpenTimeS != nil && (*body.OpenTimeS < 1 || *body.OpenTimeS > 60) {
		writeErr(w, http.StatusBadRequest, "bad_open_time_s")
		return
	}

	d, err := h.store.UpdateDoor(r.Context(), id, upd)
	switch {
	case errors.Is(err, store.ErrNoFields):
		writeErr(w, http.StatusBadRequest, "no_fields")
	case errors.Is(err, store.ErrNotFound):
		writeErr(w, http.StatusNotFound, "not_found")
	case errors.Is(err, store.ErrDuplicate):
		writeErr(w, http.StatusConflict, "door_key_exists")
	case err != nil:
		writeErr(w, http.StatusInternalServerError, "db_error")
	default:
		// The key may have changed, or activation toggled; flush everything
		// rather than track old/new pairs.
		h.resolver.InvalidateAll()
		writeJSON(w, http.StatusOK, d)
	}
}

func (h *DoorHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.store.DeleteDoor(r.Context(), id); err != nil {
		writeErr(w, http.StatusInternalServerError, "db_error")
		return
	}
	h.resolver.InvalidateAll()
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// optionalString decodes a nullable string field. A JSON null and an empty
// string both clear the column; any other type is rejected rather than
// silently treated as a clear.
func optionalString(raw json.RawMessage) (*string, error) {
	var s *string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, err
	}
	if s != nil && *s == "" {
		return nil, nil
	}
	return s, nil
}
