package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/amitacademy/testseries/internal/audit"
	"github.com/amitacademy/testseries/internal/metrics"
	"github.com/amitacademy/testseries/internal/session"
)

// GetTestSessionHandler returns a user's full test-session mapping.
func GetTestSessionHandler(store session.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		phone := r.URL.Query().Get("phone")
		if phone == "" {
			writeError(w, http.StatusBadRequest, "Phone required")
			return
		}
		m, err := store.Load(r.Context(), phone)
		if errors.Is(err, session.ErrUserNotFound) {
			writeError(w, http.StatusNotFound, "User not found")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Database error")
			return
		}
		writeJSON(w, http.StatusOK, m)
	}
}

// SaveTestSessionHandler merges a partial mapping into the stored one.
func SaveTestSessionHandler(store session.Store, events *audit.EventRepo, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Phone       string            `json:"phone"`
			TestSession session.UserTests `json:"testsession"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request")
			return
		}
		if req.Phone == "" || req.TestSession == nil {
			writeError(w, http.StatusBadRequest, "Phone and testsession required")
			return
		}
		if err := store.Save(r.Context(), req.Phone, req.TestSession); err != nil {
			if errors.Is(err, session.ErrUserNotFound) {
				writeError(w, http.StatusNotFound, "User not found")
				return
			}
			writeError(w, http.StatusInternalServerError, "Database error")
			return
		}
		metrics.SessionSaves.Inc()
		if events != nil {
			ids := make([]string, 0, len(req.TestSession))
			for id := range req.TestSession {
				ids = append(ids, id)
			}
			data, _ := json.Marshal(map[string]interface{}{"tests": ids})
			if err := events.Append(r.Context(), audit.Event{
				Type: audit.EventSessionSaved, Key: req.Phone, DataJSON: string(data),
			}); err != nil && log != nil {
				log.Warn("audit append failed", zap.Error(err))
			}
			// A save carrying a completed entry is that test's submission.
			for id, st := range req.TestSession {
				if !st.Completed {
					continue
				}
				if err := events.Append(r.Context(), audit.Event{
					Type: audit.EventTestSubmitted, Key: req.Phone,
					DataJSON: fmt.Sprintf(`{"testId":%q}`, id),
				}); err != nil && log != nil {
					log.Warn("audit append failed", zap.Error(err))
				}
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"message": "Session saved"})
	}
}

// GradeDescriptiveHandler records an admin-assigned score for one desc
// question. The score is stored verbatim; there is no cap against the
// one-point question weight.
func GradeDescriptiveHandler(store session.Store, events *audit.EventRepo, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Phone         string          `json:"phone"`
			TestID        json.RawMessage `json:"testId"` // number or string on the wire
			QuestionIndex *int            `json:"questionIndex"`
			Score         *float64        `json:"score"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request")
			return
		}
		rawID := string(req.TestID)
		if rawID == "null" { // JSON null, not an ID
			rawID = ""
		}
		testID := strings.Trim(rawID, `"`)
		if req.Phone == "" || testID == "" || req.QuestionIndex == nil || req.Score == nil {
			writeError(w, http.StatusBadRequest, "phone, testId, questionIndex and score are required")
			return
		}
		if *req.QuestionIndex < 0 {
			writeError(w, http.StatusBadRequest, "Invalid question index")
			return
		}
		err := store.GradeDescriptive(r.Context(), req.Phone, testID, *req.QuestionIndex, *req.Score)
		if errors.Is(err, session.ErrUserNotFound) {
			writeError(w, http.StatusNotFound, "User not found")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Database error")
			return
		}
		metrics.DescriptiveGrades.Inc()
		if events != nil {
			data := fmt.Sprintf(`{"testId":%q,"questionIndex":%d,"score":%g}`, testID, *req.QuestionIndex, *req.Score)
			if err := events.Append(r.Context(), audit.Event{
				Type: audit.EventDescriptiveGraded, Key: req.Phone, DataJSON: data,
			}); err != nil && log != nil {
				log.Warn("audit append failed", zap.Error(err))
			}
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"message": "Score saved",
			"score":   *req.Score,
		})
	}
}
