package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/amitacademy/testseries/internal/catalog"
)

func ListCoursesHandler(store catalog.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		courses, err := store.ListCourses(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Database error")
			return
		}
		if courses == nil {
			courses = []catalog.Course{}
		}
		writeJSON(w, http.StatusOK, courses)
	}
}

func GetCourseHandler(store catalog.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(chi.URLParam(r, "courseID"), 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid course ID")
			return
		}
		c, err := store.GetCourse(r.Context(), id)
		if errors.Is(err, catalog.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Course not found")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Database error")
			return
		}
		writeJSON(w, http.StatusOK, c)
	}
}

func CreateCourseHandler(store catalog.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var c catalog.Course
		if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request")
			return
		}
		if c.Name == "" {
			writeError(w, http.StatusBadRequest, "Course name required")
			return
		}
		created, err := store.CreateCourse(r.Context(), c)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Database error")
			return
		}
		writeJSON(w, http.StatusOK, created)
	}
}

func UpdateCourseHandler(store catalog.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(chi.URLParam(r, "courseID"), 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid course ID")
			return
		}
		var c catalog.Course
		if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request")
			return
		}
		c.ID = id
		updated, err := store.UpdateCourse(r.Context(), c)
		if errors.Is(err, catalog.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Course not found")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Database error")
			return
		}
		writeJSON(w, http.StatusOK, updated)
	}
}

func DeleteCourseHandler(store catalog.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(chi.URLParam(r, "courseID"), 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid course ID")
			return
		}
		if err := store.DeleteCourse(r.Context(), id); err != nil {
			if errors.Is(err, catalog.ErrNotFound) {
				writeError(w, http.StatusNotFound, "Course not found")
				return
			}
			writeError(w, http.StatusInternalServerError, "Database error")
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"message": "Course deleted"})
	}
}
