package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/plastmart/b2b/internal/realtime"
	"github.com/plastmart/b2b/pkg/models"
	"github.com/plastmart/b2b/pkg/repository"
)

const jobNotFound = "Job not found"

type JobsHandler struct {
	repo   repository.JobRepo
	events realtime.Broadcaster
}

func NewJobsHandler(repo repository.JobRepo, events realtime.Broadcaster) *JobsHandler {
	return &JobsHandler{repo: repo, events: events}
}

func (h *JobsHandler) List(w http.ResponseWriter, r *http.Request) {
	jobs, err := h.repo.ListJobs(r.Context())
	if err != nil {
		status, msg := statusFor(r, err, jobNotFound)
		writeError(w, status, msg)
		return
	}
	if jobs == nil {
		jobs = []models.Job{}
	}

	writeJSON(w, jobs, http.StatusOK)
}

func (h *JobsHandler) ListByOwner(w http.ResponseWriter, r *http.Request) {
	jobs, err := h.repo.ListJobsByOwner(r.Context(), mux.Vars(r)["uid"])
	if err != nil {
		status, msg := statusFor(r, err, jobNotFound)
		writeError(w, status, msg)
		return
	}
	if jobs == nil {
		jobs = []models.Job{}
	}

	writeJSON(w, jobs, http.StatusOK)
}

func (h *JobsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		status, msg := statusFor(r, err, jobNotFound)
		writeError(w, status, msg)
		return
	}

	job, err := h.repo.GetJob(r.Context(), id)
	if err != nil {
		status, msg := statusFor(r, err, jobNotFound)
		writeError(w, status, msg)
		return
	}
	if job == nil {
		writeError(w, http.StatusNotFound, jobNotFound)
		return
	}

	writeJSON(w, job, http.StatusOK)
}

func (h *JobsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var job models.Job
	if err := decodeBody(r, &job); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	job.FirebaseUID = actingUID(r, job.FirebaseUID)
	if err := h.validateJob(r, &job); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	id, err := h.repo.CreateJob(r.Context(), &job)
	if err != nil {
		status, msg := statusFor(r, err, jobNotFound)
		writeError(w, status, msg)
		return
	}
	h.events.Broadcast(models.EventJobsUpdated)

	writeJSON(w, map[string]any{"success": true, "jobId": id}, http.StatusCreated)
}

// Update replaces the owner-editable fields of the job.
func (h *JobsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var job models.Job
	if err := decodeBody(r, &job); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	job.ID = id
	// the owner is fixed at creation
	if err := h.validateJob(r, &job, "FirebaseUID"); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ok, err := h.repo.UpdateJob(r.Context(), &job)
	if err != nil {
		status, msg := statusFor(r, err, jobNotFound)
		writeError(w, status, msg)
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, jobNotFound)
		return
	}
	h.events.Broadcast(models.EventJobsUpdated)

	writeJSON(w, map[string]bool{"success": true}, http.StatusOK)
}

// AdminUpdate changes ranking and moderation fields.
func (h *JobsHandler) AdminUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var patch models.JobAdminPatch
	if err := decodeBody(r, &patch); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if patch.Status != nil && *patch.Status == "" {
		writeError(w, http.StatusBadRequest, "status must not be empty")
		return
	}

	ok, err := h.repo.UpdateJobAdmin(r.Context(), id, patch)
	if err != nil {
		status, msg := statusFor(r, err, jobNotFound)
		writeError(w, status, msg)
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, jobNotFound)
		return
	}
	h.events.Broadcast(models.EventJobsUpdated)

	writeJSON(w, map[string]bool{"success": true}, http.StatusOK)
}

func (h *JobsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ok, err := h.repo.DeleteJob(r.Context(), id)
	if err != nil {
		status, msg := statusFor(r, err, jobNotFound)
		writeError(w, status, msg)
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, jobNotFound)
		return
	}
	h.events.Broadcast(models.EventJobsUpdated)

	writeJSON(w, map[string]bool{"success": true}, http.StatusOK)
}

func (h *JobsHandler) validateJob(r *http.Request, job *models.Job, skip ...string) error {
	if err := validateBody(job, skip...); err != nil {
		return err
	}
	if err := checkShape(r.Context(), "requirements", job.Requirements); err != nil {
		return err
	}
	return checkShape(r.Context(), "specifications", job.Specifications)
}
