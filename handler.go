package main

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// ReasonHandler serves the reason HTTP API on top of Access.
type ReasonHandler struct {
	access *Access
	logger *slog.Logger
}

// NewReasonHandler creates a new handler with the given access layer and logger.
func NewReasonHandler(access *Access, logger *slog.Logger) *ReasonHandler {
	return &ReasonHandler{access: access, logger: logger}
}

// caller builds the access layer caller from the credential CredentialAuth
// put in the context. A missing value yields an empty credential, which never
// authorizes.
func (h *ReasonHandler) caller(r *http.Request) CallerContext {
	cred, _ := CredentialFromContext(r.Context())
	return APICaller(cred)
}

func parseUserID(w http.ResponseWriter, r *http.Request) (uint64, bool) {
	id, err := parseUserIDToken(r.PathValue("userId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return 0, false
	}
	return id, true
}

// GetReason returns the reason stored for a user, or 404 with an empty body.
func (h *ReasonHandler) GetReason(w http.ResponseWriter, r *http.Request) {
	userID, ok := parseUserID(w, r)
	if !ok {
		return
	}

	rec, found, err := h.access.GetReason(r.Context(), h.caller(r), userID)
	if err != nil {
		writeAccessError(w, err, "failed to retrieve reason")
		return
	}

	if !found {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, ReasonResponse{Reason: rec.Reason, ID: rec.UserID})
}

// SetReason stores the reason in the request body for a user.
func (h *ReasonHandler) SetReason(w http.ResponseWriter, r *http.Request) {
	userID, ok := parseUserID(w, r)
	if !ok {
		return
	}

	caller := h.caller(r)
	if err := h.access.Authorize(caller, OpSetReason); err != nil {
		writeAccessError(w, err, "")
		return
	}

	var body ReasonRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if _, err := h.access.SetReason(r.Context(), caller, []uint64{userID}, body.Reason); err != nil {
		writeAccessError(w, err, "failed to save reason")
		return
	}

	writeJSON(w, http.StatusOK, ReasonResponse{Reason: body.Reason, ID: userID})
}
