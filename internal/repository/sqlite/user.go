package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/plastmart/b2b/pkg/models"
)

const userColumns = `id, firebase_uid, email, display_name, created, updated, last_login`

// UpsertUser creates the user on first login and refreshes email, display
// name and last_login on every later one. Empty fields keep stored values.
// Jobs posted under the uid before the users row existed are linked to it.
func (r *SQLiteRepo) UpsertUser(ctx context.Context, u *models.User) (*models.User, error) {
	if u == nil {
		return nil, fmt.Errorf("user is nil")
	}

	tx, err := r.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	ts := now()
	email := sql.NullString{String: u.Email, Valid: u.Email != ""}
	row := tx.QueryRowContext(ctx, `INSERT INTO users (firebase_uid, email, display_name, created, updated, last_login) VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(firebase_uid) DO UPDATE SET
			email = COALESCE(excluded.email, users.email),
			display_name = CASE WHEN excluded.display_name = '' THEN users.display_name ELSE excluded.display_name END,
			updated = excluded.updated,
			last_login = excluded.last_login
		RETURNING `+userColumns, u.FirebaseUID, email, u.DisplayName, ts, ts, ts)

	out, err := scanUser(row)
	if err != nil {
		return nil, fmt.Errorf("upsert user: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `UPDATE jobs SET user_id = ? WHERE firebase_uid = ? AND user_id IS NULL`, out.ID, out.FirebaseUID); err != nil {
		return nil, fmt.Errorf("link jobs: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit user: %w", err)
	}

	return out, nil
}

func (r *SQLiteRepo) GetUserByUID(ctx context.Context, uid string) (*models.User, error) {
	u, err := scanUser(r.conn.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE firebase_uid = ?`, uid))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}

		return nil, err
	}

	return u, nil
}

func (r *SQLiteRepo) ListUsers(ctx context.Context) ([]models.User, error) {
	rows, err := r.conn.QueryRows(ctx, `SELECT `+userColumns+` FROM users ORDER BY created DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *u)
	}

	return out, rows.Err()
}

// DeleteUser removes the user; their jobs and everything hanging off them
// (conversations, messages, bids) go with it through ON DELETE CASCADE.
func (r *SQLiteRepo) DeleteUser(ctx context.Context, uid string) (bool, error) {
	res, err := r.conn.Exec(ctx, `DELETE FROM users WHERE firebase_uid = ?`, uid)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}

	return n > 0, nil
}

func scanUser(s scanner) (*models.User, error) {
	var u models.User
	var email sql.NullString
	var lastLogin sql.NullInt64
	if err := s.Scan(&u.ID, &u.FirebaseUID, &email, &u.DisplayName, &u.Created, &u.Updated, &lastLogin); err != nil {
		return nil, err
	}
	if email.Valid {
		u.Email = email.String
	}
	if lastLogin.Valid {
		v := lastLogin.Int64
		u.LastLogin = &v
	}

	return &u, nil
}
