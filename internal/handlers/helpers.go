package handlers

import (
	"encoding/json"
	"net/http"

	mw "bloom/internal/middleware"
	"bloom/internal/syncer"
)

// resolveSync finds the synchronizer for the request's device session.
// A token that outlives its session (server restart, logout elsewhere)
// yields 401 so the client re-authenticates.
func resolveSync(m *syncer.Manager, w http.ResponseWriter, r *http.Request) (*syncer.Synchronizer, bool) {
	sid, _ := r.Context().Value(mw.SessionIDKey).(string)
	s, ok := m.Lookup(sid)
	if !ok {
		http.Error(w, "session expired", http.StatusUnauthorized)
		return nil, false
	}
	return s, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
