package chat_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	dbfs "github.com/plastmart/b2b/db"
	"github.com/plastmart/b2b/internal/chat"
	"github.com/plastmart/b2b/internal/common"
	"github.com/plastmart/b2b/internal/db"
	"github.com/plastmart/b2b/internal/repository/sqlite"
	"github.com/plastmart/b2b/pkg/models"
)

func newService(t *testing.T) (*chat.Service, *sqlite.SQLiteRepo) {
	t.Helper()
	ctx := context.Background()
	d, err := db.New(ctx, filepath.Join(t.TempDir(), "chat.db"), nil)
	if err != nil {
		t.Fatalf("db.New: %v", err)
	}
	t.Cleanup(func() { d.Close() })
	if err := db.Migrate(ctx, d, dbfs.Migrations, nil); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	repo := sqlite.New(d, nil)
	return chat.NewService(repo, nil), repo
}

func TestConversationFlow(t *testing.T) {
	svc, repo := newService(t)
	ctx := context.Background()

	jobID, err := repo.CreateJob(ctx, &models.Job{FirebaseUID: "owner", Title: "ABS scrap"})
	if err != nil {
		t.Fatalf("create job: %v", err)
	}

	id, err := svc.CreateOrGetConversation(ctx, jobID, "owner", "buyer", "ABS scrap")
	if err != nil {
		t.Fatalf("create conversation: %v", err)
	}
	again, err := svc.CreateOrGetConversation(ctx, jobID, "owner", "buyer", "ABS scrap")
	if err != nil || again != id {
		t.Fatalf("expected idempotent id %d, got %d err=%v", id, again, err)
	}

	m, err := svc.SendMessage(ctx, id, "buyer", "Bea", "Is 2t available?")
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if m.ID == 0 || m.Timestamp == 0 || m.SenderName != "Bea" {
		t.Fatalf("unexpected stored message: %#v", m)
	}

	msgs, err := svc.GetMessages(ctx, id)
	if err != nil || len(msgs) != 1 {
		t.Fatalf("expected one message, got %d err=%v", len(msgs), err)
	}

	convs, err := svc.ListConversations(ctx, "owner")
	if err != nil || len(convs) != 1 {
		t.Fatalf("expected one conversation, got %d err=%v", len(convs), err)
	}
	if convs[0].LastMessage == nil || *convs[0].LastMessage != "Is 2t available?" {
		t.Fatalf("preview not updated: %#v", convs[0].LastMessage)
	}
	if convs[0].LastMessageTime == nil || *convs[0].LastMessageTime != m.Timestamp {
		t.Fatalf("preview time mismatch")
	}

	empty, err := svc.GetMessages(ctx, 9999)
	if err != nil || empty == nil || len(empty) != 0 {
		t.Fatalf("unknown conversation should give empty list, got %#v err=%v", empty, err)
	}
}

func TestValidation(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	if _, err := svc.CreateOrGetConversation(ctx, 1, "", "buyer", ""); !errors.Is(err, common.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := svc.SendMessage(ctx, 1, "buyer", "", "   "); !errors.Is(err, common.ErrValidation) {
		t.Fatalf("expected validation error for blank message, got %v", err)
	}
	if _, err := svc.ListConversations(ctx, ""); !errors.Is(err, common.ErrValidation) {
		t.Fatalf("expected validation error for empty uid, got %v", err)
	}
	if _, err := svc.CreateOrGetConversation(ctx, 4242, "owner", "buyer", ""); !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("expected not found for missing job, got %v", err)
	}
}

func TestSendMessage_PreviewFailureIsNotReturned(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer sqlDB.Close()

	mock.ExpectExec("INSERT INTO messages").
		WithArgs(int64(3), "buyer", "Bea", "hello", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(11, 1))
	mock.ExpectExec("UPDATE conversations SET last_message").
		WillReturnError(errors.New("disk I/O error"))

	var logs bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&logs, nil))
	repo := sqlite.New(db.Wrap(sqlDB, logger), logger)
	svc := chat.NewService(repo, logger)

	m, err := svc.SendMessage(context.Background(), 3, "buyer", "Bea", "hello")
	if err != nil {
		t.Fatalf("send should succeed when only the preview fails: %v", err)
	}
	if m.ID != 11 {
		t.Fatalf("expected message id 11, got %d", m.ID)
	}
	if !strings.Contains(logs.String(), "conversation preview not updated") {
		t.Fatalf("expected a warning log, got %q", logs.String())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestSendMessage_InsertFailure(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer sqlDB.Close()

	mock.ExpectExec("INSERT INTO messages").WillReturnError(errors.New("database is locked"))

	repo := sqlite.New(db.Wrap(sqlDB, nil), nil)
	svc := chat.NewService(repo, nil)

	if _, err := svc.SendMessage(context.Background(), 3, "buyer", "Bea", "hello"); err == nil {
		t.Fatalf("expected error when the insert fails")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
