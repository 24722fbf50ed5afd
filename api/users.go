package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/plastmart/b2b/internal/realtime"
	"github.com/plastmart/b2b/pkg/models"
	"github.com/plastmart/b2b/pkg/repository"
)

const userNotFound = "User not found"

type UsersHandler struct {
	repo   repository.UserRepo
	events realtime.Broadcaster
}

func NewUsersHandler(repo repository.UserRepo, events realtime.Broadcaster) *UsersHandler {
	return &UsersHandler{repo: repo, events: events}
}

// Sync records a login: the user is created on first call and refreshed on
// every later one.
func (h *UsersHandler) Sync(w http.ResponseWriter, r *http.Request) {
	var u models.User
	if err := decodeBody(r, &u); err != nil {
		writeFailure(w, http.StatusBadRequest, err.Error())
		return
	}
	u.FirebaseUID = actingUID(r, u.FirebaseUID)
	if err := validateBody(&u); err != nil {
		writeFailure(w, http.StatusBadRequest, err.Error())
		return
	}

	saved, err := h.repo.UpsertUser(r.Context(), &u)
	if err != nil {
		status, msg := statusFor(r, err, userNotFound)
		writeFailure(w, status, msg)
		return
	}

	writeJSON(w, map[string]any{"success": true, "user": saved}, http.StatusOK)
}

func (h *UsersHandler) Get(w http.ResponseWriter, r *http.Request) {
	u, err := h.repo.GetUserByUID(r.Context(), mux.Vars(r)["uid"])
	if err != nil {
		status, msg := statusFor(r, err, userNotFound)
		writeError(w, status, msg)
		return
	}
	if u == nil {
		writeError(w, http.StatusNotFound, userNotFound)
		return
	}

	writeJSON(w, u, http.StatusOK)
}

func (h *UsersHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.repo.ListUsers(r.Context())
	if err != nil {
		status, msg := statusFor(r, err, userNotFound)
		writeError(w, status, msg)
		return
	}
	if users == nil {
		users = []models.User{}
	}

	writeJSON(w, users, http.StatusOK)
}

// Delete removes the user together with their jobs and everything attached.
func (h *UsersHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ok, err := h.repo.DeleteUser(r.Context(), mux.Vars(r)["uid"])
	if err != nil {
		status, msg := statusFor(r, err, userNotFound)
		writeError(w, status, msg)
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, userNotFound)
		return
	}
	h.events.Broadcast(models.EventJobsUpdated)

	writeJSON(w, map[string]bool{"success": true}, http.StatusOK)
}
