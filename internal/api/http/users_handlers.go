package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/amitacademy/testseries/internal/catalog"
	"github.com/amitacademy/testseries/internal/users"
)

func SignupHandler(store users.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Phone    string `json:"phone"`
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request")
			return
		}
		if req.Phone == "" || req.Password == "" {
			writeError(w, http.StatusBadRequest, "All fields are required")
			return
		}
		_, err := store.Create(r.Context(), req.Phone, req.Password)
		if errors.Is(err, users.ErrExists) {
			writeError(w, http.StatusConflict, "User already exists")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Database error")
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"message": "Signup successful"})
	}
}

func LoginHandler(store users.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Phone    string `json:"phone"`
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request")
			return
		}
		u, err := store.Authenticate(r.Context(), req.Phone, req.Password)
		if errors.Is(err, users.ErrInvalidCredentials) {
			writeError(w, http.StatusUnauthorized, "Invalid phone or password")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Database error")
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"phone":   u.Phone,
			"paid":    u.Paid,
			"courses": u.Courses,
		})
	}
}

func ListUsersHandler(store users.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		us, err := store.List(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Database error")
			return
		}
		out := make([]map[string]interface{}, 0, len(us))
		for _, u := range us {
			out = append(out, userSummary(u))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func GetUserHandler(store users.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid user ID")
			return
		}
		u, err := store.Get(r.Context(), id)
		if errors.Is(err, users.ErrNotFound) {
			writeError(w, http.StatusNotFound, "User not found")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Database error")
			return
		}
		writeJSON(w, http.StatusOK, userSummary(u))
	}
}

// CreateUserHandler backs the admin user screen, which registers accounts
// with no password; the field it posts is historically named "email" but
// carries the phone number.
func CreateUserHandler(store users.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Email string `json:"email"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request")
			return
		}
		if req.Email == "" {
			writeError(w, http.StatusBadRequest, "All fields are required")
			return
		}
		u, err := store.Create(r.Context(), req.Email, "")
		if errors.Is(err, users.ErrExists) {
			writeError(w, http.StatusConflict, "User already exists")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Database error")
			return
		}
		writeJSON(w, http.StatusOK, userSummary(u))
	}
}

func UpdateUserHandler(store users.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid user ID")
			return
		}
		var req struct {
			Email string `json:"email"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request")
			return
		}
		u, err := store.UpdatePhone(r.Context(), id, req.Email)
		if errors.Is(err, users.ErrNotFound) {
			writeError(w, http.StatusNotFound, "User not found")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Database error")
			return
		}
		writeJSON(w, http.StatusOK, userSummary(u))
	}
}

func DeleteUserHandler(store users.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid user ID")
			return
		}
		if err := store.Delete(r.Context(), id); err != nil {
			if errors.Is(err, users.ErrNotFound) {
				writeError(w, http.StatusNotFound, "User not found")
				return
			}
			writeError(w, http.StatusInternalServerError, "Database error")
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"message": "User deleted"})
	}
}

// UserCoursesHandler lists the details of a user's purchased courses.
func UserCoursesHandler(us users.Store, cat catalog.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		phone := r.URL.Query().Get("phone")
		if phone == "" {
			writeError(w, http.StatusBadRequest, "Phone required")
			return
		}
		ids, err := us.CourseIDs(r.Context(), phone)
		if errors.Is(err, users.ErrNotFound) {
			writeError(w, http.StatusNotFound, "User not found")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Database error")
			return
		}
		courses, err := cat.GetCourses(r.Context(), ids)
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

// EnrollHandler unions course IDs into a user's purchased set.
func EnrollHandler(store users.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Phone   string  `json:"phone"`
			Courses []int64 `json:"courses"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request")
			return
		}
		if req.Phone == "" || req.Courses == nil {
			writeError(w, http.StatusBadRequest, "Invalid request")
			return
		}
		merged, err := store.Enroll(r.Context(), req.Phone, req.Courses)
		if errors.Is(err, users.ErrNotFound) {
			writeError(w, http.StatusNotFound, "User not found")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Database error")
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"message": "Courses added successfully",
			"courses": merged,
		})
	}
}

// userSummary keeps the legacy admin-screen shape, which reuses the phone
// for name/email and pins the role.
func userSummary(u users.User) map[string]interface{} {
	return map[string]interface{}{
		"id":    u.ID,
		"name":  u.Phone,
		"email": u.Phone,
		"role":  "student",
	}
}
