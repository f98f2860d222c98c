package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/amitacademy/testseries/internal/catalog"
)

func ListTestsHandler(store catalog.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tests, err := store.ListTests(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Database error")
			return
		}
		if tests == nil {
			tests = []catalog.Test{}
		}
		writeJSON(w, http.StatusOK, tests)
	}
}

func GetTestHandler(store catalog.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(chi.URLParam(r, "testID"), 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid test ID")
			return
		}
		t, err := store.GetTest(r.Context(), id)
		if errors.Is(err, catalog.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Test not found")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Database error")
			return
		}
		writeJSON(w, http.StatusOK, t)
	}
}

func CreateTestHandler(store catalog.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var t catalog.Test
		if err := json.NewDecoder(r.Body).Decode(&t); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request")
			return
		}
		if t.Title == "" {
			writeError(w, http.StatusBadRequest, "Title required")
			return
		}
		created, err := store.CreateTest(r.Context(), t)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Database error")
			return
		}
		writeJSON(w, http.StatusOK, created)
	}
}

func UpdateTestHandler(store catalog.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(chi.URLParam(r, "testID"), 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid test ID")
			return
		}
		var t catalog.Test
		if err := json.NewDecoder(r.Body).Decode(&t); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request")
			return
		}
		t.ID = id
		updated, err := store.UpdateTest(r.Context(), t)
		if errors.Is(err, catalog.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Test not found")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Database error")
			return
		}
		writeJSON(w, http.StatusOK, updated)
	}
}

func DeleteTestHandler(store catalog.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(chi.URLParam(r, "testID"), 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid test ID")
			return
		}
		if err := store.DeleteTest(r.Context(), id); err != nil {
			if errors.Is(err, catalog.ErrNotFound) {
				writeError(w, http.StatusNotFound, "Test not found")
				return
			}
			writeError(w, http.StatusInternalServerError, "Database error")
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"message": "Test deleted"})
	}
}
