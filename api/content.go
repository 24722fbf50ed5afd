package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/plastmart/b2b/internal/realtime"
	"github.com/plastmart/b2b/pkg/repository"
)

// ContentHandler serves CRUD for one kind of admin-managed content and
// announces every successful write with its event.
type ContentHandler[T any] struct {
	repo     repository.ContentRepo[T]
	events   realtime.Broadcaster
	event    string
	notFound string
}

func NewContentHandler[T any](repo repository.ContentRepo[T], events realtime.Broadcaster, event, notFound string) *ContentHandler[T] {
	return &ContentHandler[T]{repo: repo, events: events, event: event, notFound: notFound}
}

// Register mounts the handler's routes under path.
func (h *ContentHandler[T]) Register(r *mux.Router, path string) {
	r.HandleFunc(path, h.List).Methods("GET")
	r.HandleFunc(path, h.Create).Methods("POST")
	r.HandleFunc(path+"/{id:[0-9]+}", h.Get).Methods("GET")
	r.HandleFunc(path+"/{id:[0-9]+}", h.Update).Methods("PUT")
	r.HandleFunc(path+"/{id:[0-9]+}", h.Delete).Methods("DELETE")
}

// List returns every row, or only visible ones with ?active=true.
func (h *ContentHandler[T]) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.repo.List(r.Context(), r.URL.Query().Get("active") == "true")
	if err != nil {
		status, msg := statusFor(r, err, h.notFound)
		writeError(w, status, msg)
		return
	}
	if items == nil {
		items = []T{}
	}

	writeJSON(w, items, http.StatusOK)
}

func (h *ContentHandler[T]) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	item, err := h.repo.Get(r.Context(), id)
	if err != nil {
		status, msg := statusFor(r, err, h.notFound)
		writeError(w, status, msg)
		return
	}
	if item == nil {
		writeError(w, http.StatusNotFound, h.notFound)
		return
	}

	writeJSON(w, item, http.StatusOK)
}

func (h *ContentHandler[T]) Create(w http.ResponseWriter, r *http.Request) {
	var item T
	if err := decodeAndValidate(r, &item); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	id, err := h.repo.Create(r.Context(), &item)
	if err != nil {
		status, msg := statusFor(r, err, h.notFound)
		writeError(w, status, msg)
		return
	}
	h.events.Broadcast(h.event)

	writeJSON(w, map[string]any{"success": true, "id": id}, http.StatusCreated)
}

func (h *ContentHandler[T]) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var item T
	if err := decodeAndValidate(r, &item); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ok, err := h.repo.Update(r.Context(), id, &item)
	if err != nil {
		status, msg := statusFor(r, err, h.notFound)
		writeError(w, status, msg)
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, h.notFound)
		return
	}
	h.events.Broadcast(h.event)

	writeJSON(w, map[string]bool{"success": true}, http.StatusOK)
}

func (h *ContentHandler[T]) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ok, err := h.repo.Delete(r.Context(), id)
	if err != nil {
		status, msg := statusFor(r, err, h.notFound)
		writeError(w, status, msg)
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, h.notFound)
		return
	}
	h.events.Broadcast(h.event)

	writeJSON(w, map[string]bool{"success": true}, http.StatusOK)
}
