package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/plastmart/b2b/internal/common"
	"github.com/plastmart/b2b/pkg/models"
)

const conversationColumns = `id, job_id, job_owner_uid, participant_uid, job_title, last_message, last_message_time, created`

// CreateOrGetConversation returns the id of the conversation for the
// (job, owner, participant) triple, creating it if needed. The single
// statement leaves an existing row unchanged, so concurrent callers always
// converge on one id.
func (r *SQLiteRepo) CreateOrGetConversation(ctx context.Context, c *models.Conversation) (int64, error) {
	if c == nil {
		return 0, fmt.Errorf("conversation is nil")
	}

	var id int64
	err := r.conn.QueryRow(ctx, `INSERT INTO conversations (job_id, job_owner_uid, participant_uid, job_title, created)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(job_id, job_owner_uid, participant_uid) DO UPDATE SET job_title = conversations.job_title
		RETURNING id`,
		c.JobID, c.JobOwnerUID, c.ParticipantUID, c.JobTitle, now()).Scan(&id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return 0, fmt.Errorf("job %d: %w", c.JobID, common.ErrNotFound)
		}

		return 0, fmt.Errorf("create or get conversation: %w", err)
	}

	return id, nil
}

func (r *SQLiteRepo) GetConversation(ctx context.Context, id int64) (*models.Conversation, error) {
	c, err := scanConversation(r.conn.QueryRow(ctx, `SELECT `+conversationColumns+` FROM conversations WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}

		return nil, err
	}

	return c, nil
}

// ListConversationsForUser returns conversations where uid is either side,
// most recently active first.
func (r *SQLiteRepo) ListConversationsForUser(ctx context.Context, uid string) ([]models.Conversation, error) {
	rows, err := r.conn.QueryRows(ctx, `SELECT `+conversationColumns+` FROM conversations
		WHERE job_owner_uid = ? OR participant_uid = ?
		ORDER BY COALESCE(last_message_time, created) DESC, id DESC`, uid, uid)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Conversation
	for rows.Next() {
		c, err := scanConversation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}

	return out, rows.Err()
}

// TouchConversation records the latest message preview.
func (r *SQLiteRepo) TouchConversation(ctx context.Context, conversationID int64, lastMessage string, at int64) error {
	_, err := r.conn.Exec(ctx, `UPDATE conversations SET last_message = ?, last_message_time = ? WHERE id = ?`,
		lastMessage, at, conversationID)
	if err != nil {
		return fmt.Errorf("touch conversation %d: %w", conversationID, err)
	}

	return nil
}

func scanConversation(s scanner) (*models.Conversation, error) {
	var c models.Conversation
	var lastMessage sql.NullString
	var lastTime sql.NullInt64
	if err := s.Scan(&c.ID, &c.JobID, &c.JobOwnerUID, &c.ParticipantUID, &c.JobTitle, &lastMessage, &lastTime, &c.Created); err != nil {
		return nil, err
	}
	if lastMessage.Valid {
		v := lastMessage.String
		c.LastMessage = &v
	}
	if lastTime.Valid {
		v := lastTime.Int64
		c.LastMessageTime = &v
	}

	return &c, nil
}
