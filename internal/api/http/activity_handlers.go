package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/amitacademy/testseries/internal/activity"
)

// HandshakeHandler wakes the database and issues a session ID the client
// carries on later requests.
func HandshakeHandler(t *activity.Tracker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := t.Handshake(r.Context())
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]interface{}{
				"success": false,
				"error":   "Database handshake failed",
				"message": "Unable to connect to database. Please try again.",
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"success":   true,
			"message":   "Database is ready",
			"sessionId": id,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	}
}

func HeartbeatHandler(t *activity.Tracker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			SessionID string `json:"sessionId"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.SessionID != "" && t.Touch(req.SessionID) {
			writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "message": "Session refreshed"})
			return
		}
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{"success": false, "message": "Invalid session"})
	}
}

func CloseSessionHandler(t *activity.Tracker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			SessionID string `json:"sessionId"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.SessionID == "" {
			writeJSON(w, http.StatusBadRequest, map[string]interface{}{"success": false, "message": "No session ID provided"})
			return
		}
		t.Remove(req.SessionID)
		writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "message": "Session closed"})
	}
}

// StatusHandler reports the tracker state for monitoring.
func StatusHandler(t *activity.Tracker, startedAt time.Time) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		st := t.Snapshot()
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"activeSessions":  st.ActiveSessions,
			"lastActivity":    st.LastActivity.UTC().Format(time.RFC3339),
			"keepAliveActive": st.KeepAliveActive,
			"uptime":          time.Since(startedAt).Seconds(),
		})
	}
}

// ActivityRefresh refreshes a known session on every API hit; the ID may
// arrive as a header or query parameter.
func ActivityRefresh(t *activity.Tracker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get("X-Session-Id")
			if id == "" {
				id = r.URL.Query().Get("sessionId")
			}
			if id != "" {
				t.Touch(id)
			}
			next.ServeHTTP(w, r)
		})
	}
}
