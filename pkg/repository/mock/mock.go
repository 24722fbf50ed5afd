// Package mock provides in-memory repository fakes for handler tests.
package mock

import (
	"context"
	"sync"

	"github.com/plastmart/b2b/pkg/models"
	"github.com/plastmart/b2b/pkg/repository"
)

var _ repository.JobRepo = (*JobRepo)(nil)
var _ repository.ChatRepo = (*ChatRepo)(nil)

// JobRepo keeps jobs in a map. Err, when set, is returned by every method.
type JobRepo struct {
	mu     sync.Mutex
	nextID int64
	Stored map[int64]models.Job
	Err    error
}

func NewJobRepo() *JobRepo {
	return &JobRepo{Stored: make(map[int64]models.Job)}
}

func (m *JobRepo) CreateJob(ctx context.Context, j *models.Job) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return 0, m.Err
	}
	m.nextID++
	stored := *j
	stored.ID = m.nextID
	m.Stored[stored.ID] = stored
	return stored.ID, nil
}

func (m *JobRepo) GetJob(ctx context.Context, id int64) (*models.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	j, ok := m.Stored[id]
	if !ok {
		return nil, nil
	}
	return &j, nil
}

func (m *JobRepo) ListJobs(ctx context.Context) ([]models.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	out := make([]models.Job, 0, len(m.Stored))
	for _, j := range m.Stored {
		out = append(out, j)
	}
	return out, nil
}

func (m *JobRepo) ListJobsByOwner(ctx context.Context, uid string) ([]models.Job, error) {
	all, err := m.ListJobs(ctx)
	if err != nil {
		return nil, err
	}
	var out []models.Job
	for _, j := range all {
		if j.FirebaseUID == uid {
			out = append(out, j)
		}
	}
	return out, nil
}

func (m *JobRepo) UpdateJob(ctx context.Context, j *models.Job) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return false, m.Err
	}
	if _, ok := m.Stored[j.ID]; !ok {
		return false, nil
	}
	m.Stored[j.ID] = *j
	return true, nil
}

func (m *JobRepo) UpdateJobAdmin(ctx context.Context, id int64, p models.JobAdminPatch) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return false, m.Err
	}
	j, ok := m.Stored[id]
	if !ok {
		return false, nil
	}
	if p.Priority != nil {
		j.Priority = *p.Priority
	}
	if p.IsBoosted != nil {
		j.IsBoosted = *p.IsBoosted
	}
	if p.BoostExpiresAt != nil {
		j.BoostExpiresAt = p.BoostExpiresAt
	}
	if p.Status != nil {
		j.Status = *p.Status
	}
	m.Stored[id] = j
	return true, nil
}

func (m *JobRepo) DeleteJob(ctx context.Context, id int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return false, m.Err
	}
	if _, ok := m.Stored[id]; !ok {
		return false, nil
	}
	delete(m.Stored, id)
	return true, nil
}

// ChatRepo records messages in memory. TouchErr fails only the preview
// update; ListErr fails only ListMessages.
type ChatRepo struct {
	mu            sync.Mutex
	Conversations []models.Conversation
	Messages      []models.Message
	Touches       int
	TouchErr      error
	ListErr       error
}

func (m *ChatRepo) CreateOrGetConversation(ctx context.Context, c *models.Conversation) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.Conversations {
		if existing.JobID == c.JobID && existing.JobOwnerUID == c.JobOwnerUID && existing.ParticipantUID == c.ParticipantUID {
			return existing.ID, nil
		}
	}
	stored := *c
	stored.ID = int64(len(m.Conversations) + 1)
	m.Conversations = append(m.Conversations, stored)
	return stored.ID, nil
}

func (m *ChatRepo) GetConversation(ctx context.Context, id int64) (*models.Conversation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.Conversations {
		if c.ID == id {
			return &c, nil
		}
	}
	return nil, nil
}

func (m *ChatRepo) ListConversationsForUser(ctx context.Context, uid string) ([]models.Conversation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Conversation
	for _, c := range m.Conversations {
		if c.JobOwnerUID == uid || c.ParticipantUID == uid {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *ChatRepo) InsertMessage(ctx context.Context, msg *models.Message) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	msg.ID = int64(len(m.Messages) + 1)
	if msg.Timestamp == 0 {
		msg.Timestamp = msg.ID
	}
	m.Messages = append(m.Messages, *msg)
	return msg.ID, nil
}

func (m *ChatRepo) TouchConversation(ctx context.Context, conversationID int64, lastMessage string, at int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Touches++
	return m.TouchErr
}

func (m *ChatRepo) ListMessages(ctx context.Context, conversationID int64) ([]models.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	var out []models.Message
	for _, msg := range m.Messages {
		if msg.ConversationID == conversationID {
			out = append(out, msg)
		}
	}
	return out, nil
}
