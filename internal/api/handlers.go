package api

import (
	"encoding/json"
	"net/http"
	"sort"

	"github.com/bezmoradi/gestured/internal/gesture"
)

type handlers struct {
	ctrl Controller
}

type MappingEntry struct {
	ScanCode int    `json:"scan_code"`
	ActionID int    `json:"action_id"`
	Action   string `json:"action"`
}

type MappingResponse struct {
	Entries []MappingEntry `json:"entries"`
	Error   string         `json:"error,omitempty"`
}

// MappingRequest is the mapping-update command. A missing array or arrays of
// different length clear the mapping.
type MappingRequest struct {
	ScanCodes []int `json:"scan_codes"`
	Actions   []int `json:"actions"`
}

type StatusResponse struct {
	Pending bool          `json:"pending"`
	Mapped  int           `json:"mapped"`
	Stats   gesture.Stats `json:"stats"`
}

type GestureRequest struct {
	ScanCode int    `json:"scan_code"`
	KeyUp    bool   `json:"key_up"`
	Source   string `json:"source"`
}

type GestureResponse struct {
	Handled bool `json:"handled"`
}

func (h *handlers) getMapping(w http.ResponseWriter, r *http.Request) {
	JSONResponse(w, http.StatusOK, mappingResponse(h.ctrl.Mapping()))
}

func (h *handlers) putMapping(w http.ResponseWriter, r *http.Request) {
	var req MappingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		JSONResponse(w, http.StatusBadRequest, map[string]string{"error": "invalid request"})
		return
	}
	err := h.ctrl.UpdateMappingInts(req.ScanCodes, req.Actions)
	resp := mappingResponse(h.ctrl.Mapping())
	if err != nil {
		resp.Error = err.Error()
	}
	JSONResponse(w, http.StatusOK, resp)
}

func (h *handlers) getStatus(w http.ResponseWriter, r *http.Request) {
	JSONResponse(w, http.StatusOK, StatusResponse{
		Pending: h.ctrl.Pending(),
		Mapped:  len(h.ctrl.Mapping()),
		Stats:   h.ctrl.Stats(),
	})
}

func (h *handlers) postGesture(w http.ResponseWriter, r *http.Request) {
	var req GestureRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		JSONResponse(w, http.StatusBadRequest, map[string]string{"error": "invalid request"})
		return
	}
	handled := h.ctrl.Handle(gesture.Event{
		ScanCode: req.ScanCode,
		KeyUp:    req.KeyUp,
		Source:   gesture.ParseSource(req.Source),
	})
	JSONResponse(w, http.StatusOK, GestureResponse{Handled: handled})
}

func mappingResponse(m map[int]gesture.ActionID) MappingResponse {
	entries := make([]MappingEntry, 0, len(m))
	for code, action := range m {
		entries = append(entries, MappingEntry{ScanCode: code, ActionID: int(action), Action: action.String()})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].ScanCode < entries[j].ScanCode })
	return MappingResponse{Entries: entries}
}

// JSONResponse writes a JSON response.
func JSONResponse(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}
