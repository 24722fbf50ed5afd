package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/plastmart/b2b/pkg/models"
)

const jobColumns = `id, user_id, firebase_uid, title, category, material, quantity, budget, location, client, deadline,
	description, requirements, specifications, estimated_duration, status, bids_received, priority, is_boosted,
	boost_expires_at, created, updated`

// CreateJob inserts a new job. The owning users row is linked when one exists
// for the firebase uid; user_id stays NULL otherwise.
func (r *SQLiteRepo) CreateJob(ctx context.Context, j *models.Job) (int64, error) {
	if j == nil {
		return 0, fmt.Errorf("job is nil")
	}

	ts := now()
	status := j.Status
	if status == "" {
		status = "open"
	}

	res, err := r.conn.Exec(ctx, `INSERT INTO jobs (user_id, firebase_uid, title, category, material, quantity, budget, location,
		client, deadline, description, requirements, specifications, estimated_duration, status, bids_received, priority,
		is_boosted, boost_expires_at, created, updated)
		VALUES ((SELECT id FROM users WHERE firebase_uid = ?), ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 0, ?, ?, ?, ?, ?)`,
		j.FirebaseUID, j.FirebaseUID, j.Title, j.Category, j.Material, j.Quantity, j.Budget, j.Location,
		j.Client, j.Deadline, j.Description, j.Requirements, j.Specifications, j.EstimatedDuration, status,
		j.Priority, j.IsBoosted, j.BoostExpiresAt, ts, ts)
	if err != nil {
		return 0, fmt.Errorf("insert job: %w", err)
	}

	return res.LastInsertId()
}

func (r *SQLiteRepo) GetJob(ctx context.Context, id int64) (*models.Job, error) {
	j, err := scanJob(r.conn.QueryRow(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id = ?`, id), now())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}

		return nil, err
	}

	return j, nil
}

// ListJobs returns every job, actively boosted ones first, then by priority
// and recency.
func (r *SQLiteRepo) ListJobs(ctx context.Context) ([]models.Job, error) {
	ts := now()

	return r.queryJobs(ctx, ts, `SELECT `+jobColumns+` FROM jobs
		ORDER BY (is_boosted = 1 AND (boost_expires_at IS NULL OR boost_expires_at > ?)) DESC,
			priority DESC, created DESC, id DESC`, ts)
}

func (r *SQLiteRepo) ListJobsByOwner(ctx context.Context, uid string) ([]models.Job, error) {
	return r.queryJobs(ctx, now(), `SELECT `+jobColumns+` FROM jobs WHERE firebase_uid = ? ORDER BY created DESC, id DESC`, uid)
}

// UpdateJob overwrites the owner-editable fields. Ranking fields and the bid
// counter are not touched.
func (r *SQLiteRepo) UpdateJob(ctx context.Context, j *models.Job) (bool, error) {
	if j == nil {
		return false, fmt.Errorf("job is nil")
	}

	res, err := r.conn.Exec(ctx, `UPDATE jobs SET title = ?, category = ?, material = ?, quantity = ?, budget = ?,
		location = ?, client = ?, deadline = ?, description = ?, requirements = ?, specifications = ?,
		estimated_duration = ?, status = COALESCE(NULLIF(?, ''), status), updated = ?
		WHERE id = ?`,
		j.Title, j.Category, j.Material, j.Quantity, j.Budget, j.Location, j.Client, j.Deadline, j.Description,
		j.Requirements, j.Specifications, j.EstimatedDuration, j.Status, now(), j.ID)
	if err != nil {
		return false, fmt.Errorf("update job: %w", err)
	}

	return affected(res)
}

func (r *SQLiteRepo) UpdateJobAdmin(ctx context.Context, id int64, p models.JobAdminPatch) (bool, error) {
	sets := []string{}
	args := []any{}
	if p.Priority != nil {
		sets = append(sets, "priority = ?")
		args = append(args, *p.Priority)
	}
	if p.IsBoosted != nil {
		sets = append(sets, "is_boosted = ?")
		args = append(args, *p.IsBoosted)
	}
	if p.BoostExpiresAt != nil {
		sets = append(sets, "boost_expires_at = ?")
		args = append(args, *p.BoostExpiresAt)
	}
	if p.Status != nil {
		sets = append(sets, "status = ?")
		args = append(args, *p.Status)
	}
	sets = append(sets, "updated = ?")
	args = append(args, now(), id)

	res, err := r.conn.Exec(ctx, `UPDATE jobs SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return false, fmt.Errorf("update job admin fields: %w", err)
	}

	return affected(res)
}

// DeleteJob removes the job with its conversations, messages and bids.
func (r *SQLiteRepo) DeleteJob(ctx context.Context, id int64) (bool, error) {
	res, err := r.conn.Exec(ctx, `DELETE FROM jobs WHERE id = ?`, id)
	if err != nil {
		return false, err
	}

	return affected(res)
}

func (r *SQLiteRepo) queryJobs(ctx context.Context, at int64, query string, args ...any) ([]models.Job, error) {
	rows, err := r.conn.QueryRows(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Job
	for rows.Next() {
		j, err := scanJob(rows, at)
		if err != nil {
			return nil, err
		}
		out = append(out, *j)
	}

	return out, rows.Err()
}

// scanJob reads one row. Status is normalized for display and a boost whose
// expiry is at or before at is reported as not boosted.
func scanJob(s scanner, at int64) (*models.Job, error) {
	var j models.Job
	var userID, boostExpires sql.NullInt64
	var category, material, quantity, location, client, deadline, description, duration sql.NullString
	var budget sql.NullFloat64
	if err := s.Scan(&j.ID, &userID, &j.FirebaseUID, &j.Title, &category, &material, &quantity, &budget,
		&location, &client, &deadline, &description, &j.Requirements, &j.Specifications, &duration,
		&j.Status, &j.BidsReceived, &j.Priority, &j.IsBoosted, &boostExpires, &j.Created, &j.Updated); err != nil {
		return nil, err
	}

	if userID.Valid {
		v := userID.Int64
		j.UserID = &v
	}
	if boostExpires.Valid {
		v := boostExpires.Int64
		j.BoostExpiresAt = &v
		if v <= at {
			j.IsBoosted = false
		}
	}
	j.Category = category.String
	j.Material = material.String
	j.Quantity = quantity.String
	j.Budget = budget.Float64
	j.Location = location.String
	j.Client = client.String
	j.Deadline = deadline.String
	j.Description = description.String
	j.EstimatedDuration = duration.String
	j.Status = models.NormalizeStatus(j.Status)

	return &j, nil
}

func affected(res sql.Result) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}

	return n > 0, nil
}
