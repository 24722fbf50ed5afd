// Package chat implements job-scoped conversations between a job owner and
// one counterparty.
package chat

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/plastmart/b2b/internal/common"
	"github.com/plastmart/b2b/pkg/models"
	"github.com/plastmart/b2b/pkg/repository"
)

type Service struct {
	repo   repository.ChatRepo
	logger *slog.Logger
}

func NewService(repo repository.ChatRepo, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(os.Stdout, nil))
	}
	return &Service{repo: repo, logger: logger}
}

// CreateOrGetConversation returns the conversation id for the triple,
// creating the conversation on first contact. Repeated calls return the same id.
func (s *Service) CreateOrGetConversation(ctx context.Context, jobID int64, ownerUID, participantUID, jobTitle string) (int64, error) {
	if jobID <= 0 || ownerUID == "" || participantUID == "" {
		return 0, fmt.Errorf("jobId, jobOwnerUid and participantUid are required: %w", common.ErrValidation)
	}

	id, err := s.repo.CreateOrGetConversation(ctx, &models.Conversation{
		JobID:          jobID,
		JobOwnerUID:    ownerUID,
		ParticipantUID: participantUID,
		JobTitle:       jobTitle,
	})
	if err != nil {
		return 0, fmt.Errorf("create or get conversation: %w", err)
	}

	return id, nil
}

// SendMessage stores the message and then refreshes the conversation
// preview. The message is durable once the first step succeeds; a failed
// preview update is logged and the call still succeeds.
func (s *Service) SendMessage(ctx context.Context, conversationID int64, senderUID, senderName, text string) (*models.Message, error) {
	if conversationID <= 0 || senderUID == "" || strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("conversationId, senderUid and message are required: %w", common.ErrValidation)
	}

	m := &models.Message{
		ConversationID: conversationID,
		SenderUID:      senderUID,
		SenderName:     senderName,
		Message:        text,
	}
	if _, err := s.repo.InsertMessage(ctx, m); err != nil {
		return nil, fmt.Errorf("send message: %w", err)
	}

	if err := s.repo.TouchConversation(ctx, conversationID, text, m.Timestamp); err != nil {
		s.logger.Warn("conversation preview not updated",
			slog.Int64("conversation_id", conversationID),
			slog.Int64("message_id", m.ID),
			slog.String("error", err.Error()))
	}

	return m, nil
}

// GetMessages returns every message of the conversation oldest first. An
// unknown conversation yields an empty list.
func (s *Service) GetMessages(ctx context.Context, conversationID int64) ([]models.Message, error) {
	msgs, err := s.repo.ListMessages(ctx, conversationID)
	if err != nil {
		return nil, fmt.Errorf("get messages: %w", err)
	}
	if msgs == nil {
		msgs = []models.Message{}
	}

	return msgs, nil
}

func (s *Service) ListConversations(ctx context.Context, uid string) ([]models.Conversation, error) {
	if uid == "" {
		return nil, fmt.Errorf("uid is required: %w", common.ErrValidation)
	}

	convs, err := s.repo.ListConversationsForUser(ctx, uid)
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}
	if convs == nil {
		convs = []models.Conversation{}
	}

	return convs, nil
}
