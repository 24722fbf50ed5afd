package sqlite

import (
	"context"
	"fmt"

	"github.com/plastmart/b2b/internal/common"
	"github.com/plastmart/b2b/pkg/models"
)

// InsertMessage appends a message. A zero Timestamp is set to now and
// written back to m.
func (r *SQLiteRepo) InsertMessage(ctx context.Context, m *models.Message) (int64, error) {
	if m == nil {
		return 0, fmt.Errorf("message is nil")
	}
	if m.Timestamp == 0 {
		m.Timestamp = now()
	}

	res, err := r.conn.Exec(ctx, `INSERT INTO messages (conversation_id, sender_uid, sender_name, message, timestamp) VALUES (?, ?, ?, ?, ?)`,
		m.ConversationID, m.SenderUID, m.SenderName, m.Message, m.Timestamp)
	if err != nil {
		if isForeignKeyViolation(err) {
			return 0, fmt.Errorf("conversation %d: %w", m.ConversationID, common.ErrNotFound)
		}

		return 0, fmt.Errorf("insert message: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	m.ID = id

	return id, nil
}

// ListMessages returns the conversation's messages oldest first; ties on
// timestamp fall back to insertion order.
func (r *SQLiteRepo) ListMessages(ctx context.Context, conversationID int64) ([]models.Message, error) {
	rows, err := r.conn.QueryRows(ctx, `SELECT id, conversation_id, sender_uid, sender_name, message, timestamp
		FROM messages WHERE conversation_id = ? ORDER BY timestamp ASC, id ASC`, conversationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Message
	for rows.Next() {
		var m models.Message
		if err := rows.Scan(&m.ID, &m.ConversationID, &m.SenderUID, &m.SenderName, &m.Message, &m.Timestamp); err != nil {
			return nil, err
		}
		out = append(out, m)
	}

	return out, rows.Err()
}
