package handlers

import (
	"net/http"
	"strconv"

	"github.com/sirupsen/logrus"

	"syncalendar/internal/models"
	"syncalendar/internal/storage"
)

const defaultSearchLimit = 10

type UserHandler struct {
	users storage.UserRepository
	log   *logrus.Entry
}

func NewUserHandler(users storage.UserRepository, log *logrus.Entry) *UserHandler {
	return &UserHandler{users: users, log: log}
}

// GET /user/me
func (h *UserHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.log, http.StatusOK, currentUser(r))
}

// GET /user/search?email=
func (h *UserHandler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	op := "internal/handlers/users.go HandleSearch"

	query := r.URL.Query().Get("email")
	if query == "" {
		writeJSON(w, h.log, http.StatusOK, []models.User{})
		return
	}

	limit := defaultSearchLimit
	if l, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && l > 0 {
		limit = l
	}

	// One extra in case the caller is among the matches.
	found, err := h.users.SearchUsers(r.Context(), query, limit+1)
	if err != nil {
		fail(w, h.log, op, err)
		return
	}

	self := currentUser(r).ID
	users := make([]models.User, 0, len(found))
	for _, u := range found {
		if u.ID != self && len(users) < limit {
			users = append(users, u)
		}
	}
	writeJSON(w, h.log, http.StatusOK, users)
}

// GET /user/{id}
func (h *UserHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	op := "internal/handlers/users.go HandleGet"

	user, err := h.users.GetUser(r.Context(), r.PathValue("id"))
	if err != nil {
		fail(w, h.log, op, err)
		return
	}
	writeJSON(w, h.log, http.StatusOK, user)
}
