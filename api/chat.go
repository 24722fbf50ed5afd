package api

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/plastmart/b2b/internal/chat"
	"github.com/plastmart/b2b/pkg/models"
)

type ChatHandler struct {
	svc *chat.Service
}

func NewChatHandler(svc *chat.Service) *ChatHandler {
	return &ChatHandler{svc: svc}
}

type createConversationRequest struct {
	JobID          int64  `json:"jobId" validate:"required"`
	JobOwnerUID    string `json:"jobOwnerUid" validate:"required"`
	ParticipantUID string `json:"participantUid" validate:"required"`
	JobTitle       string `json:"jobTitle"`
}

type sendMessageRequest struct {
	ConversationID int64  `json:"conversationId" validate:"required"`
	SenderUID      string `json:"senderUid" validate:"required"`
	SenderName     string `json:"senderName"`
	Message        string `json:"message" validate:"required"`
}

func (h *ChatHandler) CreateConversation(w http.ResponseWriter, r *http.Request) {
	var req createConversationRequest
	if err := decodeBody(r, &req); err != nil {
		writeFailure(w, http.StatusBadRequest, err.Error())
		return
	}
	// an authenticated caller other than the owner is the participant
	if uid, ok := UIDFromContext(r.Context()); ok && uid != req.JobOwnerUID {
		req.ParticipantUID = uid
	}
	if err := validateBody(&req); err != nil {
		writeFailure(w, http.StatusBadRequest, err.Error())
		return
	}

	id, err := h.svc.CreateOrGetConversation(r.Context(), req.JobID, req.JobOwnerUID, req.ParticipantUID, req.JobTitle)
	if err != nil {
		status, msg := statusFor(r, err, jobNotFound)
		writeFailure(w, status, msg)
		return
	}

	writeJSON(w, map[string]any{"success": true, "conversationId": id}, http.StatusOK)
}

func (h *ChatHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	var req sendMessageRequest
	if err := decodeBody(r, &req); err != nil {
		writeFailure(w, http.StatusBadRequest, err.Error())
		return
	}
	req.SenderUID = actingUID(r, req.SenderUID)
	if err := validateBody(&req); err != nil {
		writeFailure(w, http.StatusBadRequest, err.Error())
		return
	}

	m, err := h.svc.SendMessage(r.Context(), req.ConversationID, req.SenderUID, req.SenderName, req.Message)
	if err != nil {
		status, msg := statusFor(r, err, "Conversation not found")
		writeFailure(w, status, msg)
		return
	}

	writeJSON(w, map[string]any{"success": true, "messageId": m.ID, "timestamp": m.Timestamp}, http.StatusOK)
}

func (h *ChatHandler) ListConversations(w http.ResponseWriter, r *http.Request) {
	convs, err := h.svc.ListConversations(r.Context(), mux.Vars(r)["uid"])
	if err != nil {
		status, msg := statusFor(r, err, "User not found")
		writeFailure(w, status, msg)
		return
	}

	writeJSON(w, map[string]any{"success": true, "conversations": convs}, http.StatusOK)
}

// ListMessages returns the thread oldest first. An id that matches no
// conversation, including a malformed one, yields an empty list.
func (h *ChatHandler) ListMessages(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["conversationId"], 10, 64)
	if err != nil {
		writeJSON(w, map[string]any{"success": true, "messages": []models.Message{}}, http.StatusOK)
		return
	}

	msgs, err := h.svc.GetMessages(r.Context(), id)
	if err != nil {
		status, msg := statusFor(r, err, "Conversation not found")
		writeFailure(w, status, msg)
		return
	}

	writeJSON(w, map[string]any{"success": true, "messages": msgs}, http.StatusOK)
}
