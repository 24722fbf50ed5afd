package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/plastmart/b2b/internal/common"
	"github.com/plastmart/b2b/pkg/models"
)

const bidColumns = `id, job_id, bidder_uid, bidder_name, bid_amount, message, revision, created, updated`

// UpsertBid writes the bidder's bid for a job in one transaction. The first
// bid increments jobs.bids_received; later ones overwrite amount and message
// and bump the revision instead.
func (r *SQLiteRepo) UpsertBid(ctx context.Context, b *models.Bid) (int64, bool, error) {
	if b == nil {
		return 0, false, fmt.Errorf("bid is nil")
	}

	tx, err := r.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, false, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	ts := now()
	var id, revision int64
	err = tx.QueryRowContext(ctx, `INSERT INTO bids (job_id, bidder_uid, bidder_name, bid_amount, message, revision, created, updated)
		VALUES (?, ?, ?, ?, ?, 0, ?, ?)
		ON CONFLICT(job_id, bidder_uid) DO UPDATE SET
			bidder_name = excluded.bidder_name,
			bid_amount = excluded.bid_amount,
			message = excluded.message,
			revision = bids.revision + 1,
			updated = excluded.updated
		RETURNING id, revision`,
		b.JobID, b.BidderUID, b.BidderName, b.BidAmount, b.Message, ts, ts).Scan(&id, &revision)
	if err != nil {
		if isForeignKeyViolation(err) {
			return 0, false, fmt.Errorf("job %d: %w", b.JobID, common.ErrNotFound)
		}

		return 0, false, fmt.Errorf("upsert bid: %w", err)
	}

	updated := revision > 0
	if !updated {
		if _, err := tx.ExecContext(ctx, `UPDATE jobs SET bids_received = bids_received + 1 WHERE id = ?`, b.JobID); err != nil {
			return 0, false, fmt.Errorf("increment bids_received: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, false, fmt.Errorf("commit bid: %w", err)
	}

	return id, updated, nil
}

func (r *SQLiteRepo) GetBid(ctx context.Context, jobID int64, bidderUID string) (*models.Bid, error) {
	b, err := scanBid(r.conn.QueryRow(ctx, `SELECT `+bidColumns+` FROM bids WHERE job_id = ? AND bidder_uid = ?`, jobID, bidderUID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}

		return nil, err
	}

	return b, nil
}

// ListBidsForJob returns the job's bids, lowest amount first.
func (r *SQLiteRepo) ListBidsForJob(ctx context.Context, jobID int64) ([]models.Bid, error) {
	rows, err := r.conn.QueryRows(ctx, `SELECT `+bidColumns+` FROM bids WHERE job_id = ? ORDER BY bid_amount ASC, updated ASC, id ASC`, jobID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Bid
	for rows.Next() {
		b, err := scanBid(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *b)
	}

	return out, rows.Err()
}

func scanBid(s scanner) (*models.Bid, error) {
	var b models.Bid
	if err := s.Scan(&b.ID, &b.JobID, &b.BidderUID, &b.BidderName, &b.BidAmount, &b.Message, &b.Revision, &b.Created, &b.Updated); err != nil {
		return nil, err
	}

	return &b, nil
}
