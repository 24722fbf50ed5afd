package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"sync"

	"github.com/plastmart/b2b/pkg/models"
)

type JobService struct {
	c *Client

	mu     sync.Mutex
	cached []models.Job
}

func (s *JobService) List(ctx context.Context, opts ...CallOption) ([]models.Job, error) {
	var out []models.Job
	if err := s.c.do(ctx, http.MethodGet, "/jobs", nil, &out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// ListCached is List with a fallback: on failure it returns the last list
// that loaded successfully together with the error.
func (s *JobService) ListCached(ctx context.Context, opts ...CallOption) ([]models.Job, error) {
	jobs, err := s.List(ctx, opts...)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		return append([]models.Job(nil), s.cached...), err
	}
	s.cached = append([]models.Job(nil), jobs...)
	return jobs, nil
}

func (s *JobService) ListByOwner(ctx context.Context, uid string, opts ...CallOption) ([]models.Job, error) {
	var out []models.Job
	if err := s.c.do(ctx, http.MethodGet, "/jobs/user/"+url.PathEscape(uid), nil, &out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// Get returns the job. A missing job is an *APIError with status 404.
func (s *JobService) Get(ctx context.Context, id int64, opts ...CallOption) (*models.Job, error) {
	var out models.Job
	if err := s.c.do(ctx, http.MethodGet, "/jobs/"+strconv.FormatInt(id, 10), nil, &out, opts...); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *JobService) Create(ctx context.Context, j *models.Job, opts ...CallOption) (int64, error) {
	var out struct {
		JobID int64 `json:"jobId"`
	}
	if err := s.c.do(ctx, http.MethodPost, "/jobs", j, &out, opts...); err != nil {
		return 0, err
	}
	return out.JobID, nil
}

func (s *JobService) Update(ctx context.Context, j *models.Job, opts ...CallOption) error {
	return s.c.do(ctx, http.MethodPut, "/jobs/"+strconv.FormatInt(j.ID, 10), j, nil, opts...)
}

func (s *JobService) Delete(ctx context.Context, id int64, opts ...CallOption) error {
	return s.c.do(ctx, http.MethodDelete, "/jobs/"+strconv.FormatInt(id, 10), nil, nil, opts...)
}
