package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/plastmart/b2b/pkg/models"
)

type ChatService struct {
	c *Client
}

// SentMessage is the server's acknowledgement of a message.
type SentMessage struct {
	ID        int64 `json:"messageId"`
	Timestamp int64 `json:"timestamp"`
}

func (s *ChatService) CreateOrGetConversation(ctx context.Context, jobID int64, ownerUID, participantUID, jobTitle string, opts ...CallOption) (int64, error) {
	in := map[string]any{
		"jobId":          jobID,
		"jobOwnerUid":    ownerUID,
		"participantUid": participantUID,
		"jobTitle":       jobTitle,
	}
	var out struct {
		ConversationID int64 `json:"conversationId"`
	}
	if err := s.c.do(ctx, http.MethodPost, "/chat/conversations", in, &out, opts...); err != nil {
		return 0, err
	}
	return out.ConversationID, nil
}

func (s *ChatService) SendMessage(ctx context.Context, conversationID int64, senderUID, senderName, text string, opts ...CallOption) (SentMessage, error) {
	in := map[string]any{
		"conversationId": conversationID,
		"senderUid":      senderUID,
		"senderName":     senderName,
		"message":        text,
	}
	var out SentMessage
	if err := s.c.do(ctx, http.MethodPost, "/chat/messages", in, &out, opts...); err != nil {
		return SentMessage{}, err
	}
	return out, nil
}

func (s *ChatService) Messages(ctx context.Context, conversationID int64, opts ...CallOption) ([]models.Message, error) {
	var out struct {
		Messages []models.Message `json:"messages"`
	}
	if err := s.c.do(ctx, http.MethodGet, "/chat/messages/"+strconv.FormatInt(conversationID, 10), nil, &out, opts...); err != nil {
		return nil, err
	}
	return out.Messages, nil
}

func (s *ChatService) Conversations(ctx context.Context, uid string, opts ...CallOption) ([]models.Conversation, error) {
	var out struct {
		Conversations []models.Conversation `json:"conversations"`
	}
	if err := s.c.do(ctx, http.MethodGet, "/chat/conversations/"+url.PathEscape(uid), nil, &out, opts...); err != nil {
		return nil, err
	}
	return out.Conversations, nil
}
