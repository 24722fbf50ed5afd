package client

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/plastmart/b2b/pkg/models"
)

// DefaultReconcileDelay is how long after a send the window refetches the
// thread to replace optimistic entries with the server's copy.
const DefaultReconcileDelay = 500 * time.Millisecond

// Entry is one line of the chat window. Confirmed entries come from the
// server; Pending entries were appended locally and not yet reconciled;
// Failed entries are optimistic sends the server rejected or never got.
type Entry struct {
	models.Message
	TempID  string
	Pending bool
	Failed  bool
	Err     error
}

// Confirmed reports whether the entry is the server's copy.
func (e Entry) Confirmed() bool {
	return !e.Pending && !e.Failed
}

type localEntry struct {
	Entry
	acked bool
}

// ChatWindow keeps one open thread approximately current. It does not poll:
// the list refreshes on Open, after each Send, and on Refresh.
type ChatWindow struct {
	chat       *ChatService
	senderUID  string
	senderName string

	ReconcileDelay time.Duration

	mu             sync.Mutex
	conversationID int64
	confirmed      []models.Message
	local          []*localEntry

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewChatWindow(chat *ChatService, senderUID, senderName string) *ChatWindow {
	ctx, cancel := context.WithCancel(context.Background())
	return &ChatWindow{
		chat:           chat,
		senderUID:      senderUID,
		senderName:     senderName,
		ReconcileDelay: DefaultReconcileDelay,
		ctx:            ctx,
		cancel:         cancel,
	}
}

// Open resolves or creates the conversation and loads its messages once.
func (w *ChatWindow) Open(ctx context.Context, jobID int64, ownerUID, participantUID, jobTitle string) (int64, error) {
	id, err := w.chat.CreateOrGetConversation(ctx, jobID, ownerUID, participantUID, jobTitle)
	if err != nil {
		return 0, err
	}

	w.mu.Lock()
	w.conversationID = id
	w.confirmed = nil
	w.local = nil
	w.mu.Unlock()

	return id, w.Refresh(ctx)
}

// Refresh replaces the confirmed list with the server's. Optimistic entries
// that were acknowledged are dropped; failed and in-flight ones stay.
func (w *ChatWindow) Refresh(ctx context.Context) error {
	w.mu.Lock()
	id := w.conversationID
	w.mu.Unlock()
	if id == 0 {
		return errors.New("chat window is not open")
	}

	msgs, err := w.chat.Messages(ctx, id)
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.conversationID != id {
		return nil
	}
	w.confirmed = msgs
	kept := w.local[:0]
	for _, e := range w.local {
		if !e.acked {
			kept = append(kept, e)
		}
	}
	w.local = kept

	return nil
}

// Send appends an optimistic entry, sends it and schedules a reconcile
// after ReconcileDelay whatever the outcome. The returned error is the
// send's; the entry then stays in the list marked Failed.
func (w *ChatWindow) Send(ctx context.Context, text string) (Entry, error) {
	w.mu.Lock()
	id := w.conversationID
	if id == 0 {
		w.mu.Unlock()
		return Entry{}, errors.New("chat window is not open")
	}
	e := &localEntry{Entry: Entry{
		Message: models.Message{
			ConversationID: id,
			SenderUID:      w.senderUID,
			SenderName:     w.senderName,
			Message:        text,
			Timestamp:      time.Now().UnixMilli(),
		},
		TempID:  uuid.NewString(),
		Pending: true,
	}}
	w.local = append(w.local, e)
	w.mu.Unlock()

	sent, err := w.chat.SendMessage(ctx, id, w.senderUID, w.senderName, text)

	w.mu.Lock()
	if err != nil {
		e.Pending = false
		e.Failed = true
		e.Err = err
	} else {
		e.acked = true
		e.ID = sent.ID
		if sent.Timestamp != 0 {
			e.Timestamp = sent.Timestamp
		}
	}
	snapshot := e.Entry
	w.mu.Unlock()

	w.scheduleReconcile()

	return snapshot, err
}

func (w *ChatWindow) scheduleReconcile() {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		timer := time.NewTimer(w.ReconcileDelay)
		defer timer.Stop()

		select {
		case <-w.ctx.Done():
			return
		case <-timer.C:
		}

		// a failed reconcile leaves the list as it is until the next one
		_ = w.Refresh(w.ctx)
	}()
}

// Messages returns the current list sorted by timestamp: confirmed entries
// plus any optimistic ones still shown.
func (w *ChatWindow) Messages() []Entry {
	w.mu.Lock()
	defer w.mu.Unlock()

	out := make([]Entry, 0, len(w.confirmed)+len(w.local))
	for _, m := range w.confirmed {
		out = append(out, Entry{Message: m})
	}
	for _, e := range w.local {
		out = append(out, e.Entry)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp < out[j].Timestamp
	})

	return out
}

// Close stops pending reconciles and waits for them.
func (w *ChatWindow) Close() {
	w.cancel()
	w.wg.Wait()
}
