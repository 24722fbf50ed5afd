package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/plastmart/b2b/api"
	dbfs "github.com/plastmart/b2b/db"
	"github.com/plastmart/b2b/internal/config"
	"github.com/plastmart/b2b/internal/db"
	"github.com/plastmart/b2b/internal/repository/sqlite"
	"github.com/plastmart/b2b/pkg/models"
)

type recordingBroadcaster struct {
	mu     sync.Mutex
	events []string
}

func (b *recordingBroadcaster) Broadcast(event string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, event)
}

func (b *recordingBroadcaster) count(event string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, e := range b.events {
		if e == event {
			n++
		}
	}
	return n
}

func newRouter(t *testing.T, cfg *config.Config) (http.Handler, *recordingBroadcaster) {
	t.Helper()
	ctx := context.Background()
	d, err := db.New(ctx, filepath.Join(t.TempDir(), "api.db"), nil)
	if err != nil {
		t.Fatalf("db.New: %v", err)
	}
	t.Cleanup(func() { d.Close() })
	if err := db.Migrate(ctx, d, dbfs.Migrations, nil); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	if cfg == nil {
		cfg = &config.Config{}
	}
	events := &recordingBroadcaster{}
	deps := api.NewDeps(sqlite.New(d, nil), nil, nil)
	deps.Events = events
	return api.SetupRoutes(cfg, "test", "now", deps), events
}

func do(t *testing.T, h http.Handler, method, path string, body any, headers ...string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	var out map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	return w, out
}

func TestJobsAPI(t *testing.T) {
	h, events := newRouter(t, nil)

	w, body := do(t, h, http.MethodGet, "/api/jobs/4242", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("missing job: expected 404, got %d", w.Code)
	}
	if body["error"] != "Job not found" {
		t.Fatalf("missing job: unexpected body %s", w.Body.String())
	}

	w, body = do(t, h, http.MethodPost, "/api/jobs", map[string]any{
		"firebase_uid":   "owner",
		"title":          "PET flakes",
		"budget":         50000,
		"status":         "open",
		"requirements":   map[string]any{"color": "clear"},
		"specifications": []string{"washed", "dried"},
	})
	if w.Code != http.StatusCreated || body["success"] != true {
		t.Fatalf("create job: %d %s", w.Code, w.Body.String())
	}
	id := int64(body["jobId"].(float64))
	if events.count(models.EventJobsUpdated) != 1 {
		t.Fatalf("expected a jobs_updated event")
	}

	w, _ = do(t, h, http.MethodGet, "/api/jobs/"+itoa(id), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get job: %d", w.Code)
	}
	var job models.Job
	if err := json.Unmarshal(w.Body.Bytes(), &job); err != nil {
		t.Fatalf("decode job: %v", err)
	}
	if job.Status != "Open" || job.Budget != 50000 {
		t.Fatalf("unexpected job: %#v", job)
	}
	var specs []string
	if err := job.Specifications.Decode(&specs); err != nil || len(specs) != 2 {
		t.Fatalf("specifications not decoded: %v %v", specs, err)
	}

	w, _ = do(t, h, http.MethodPost, "/api/jobs", map[string]any{"firebase_uid": "owner", "title": "x", "requirements": "not structured"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("scalar requirements: expected 400, got %d", w.Code)
	}
	w, _ = do(t, h, http.MethodPost, "/api/jobs", map[string]any{"firebase_uid": "owner"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("missing title: expected 400, got %d", w.Code)
	}

	w, _ = do(t, h, http.MethodPut, "/api/jobs/"+itoa(id), map[string]any{"title": "PET flakes, hot washed", "budget": 48000})
	if w.Code != http.StatusOK {
		t.Fatalf("update job: %d %s", w.Code, w.Body.String())
	}
	w, _ = do(t, h, http.MethodPut, "/api/jobs/4242", map[string]any{"title": "x"})
	if w.Code != http.StatusNotFound {
		t.Fatalf("update missing job: expected 404, got %d", w.Code)
	}

	w, _ = do(t, h, http.MethodPatch, "/api/jobs/"+itoa(id)+"/admin", map[string]any{"priority": 3, "is_boosted": true})
	if w.Code != http.StatusOK {
		t.Fatalf("admin update: %d %s", w.Code, w.Body.String())
	}

	w, _ = do(t, h, http.MethodGet, "/api/jobs/user/owner", nil)
	var owned []models.Job
	if err := json.Unmarshal(w.Body.Bytes(), &owned); err != nil || len(owned) != 1 {
		t.Fatalf("jobs by owner: %v %s", err, w.Body.String())
	}

	// no conversations or bids reference the job
	w, body = do(t, h, http.MethodDelete, "/api/jobs/"+itoa(id), nil)
	if w.Code != http.StatusOK || body["success"] != true {
		t.Fatalf("delete job: %d %s", w.Code, w.Body.String())
	}
	w, _ = do(t, h, http.MethodDelete, "/api/jobs/"+itoa(id), nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("second delete: expected 404, got %d", w.Code)
	}

	w, _ = do(t, h, http.MethodGet, "/api/jobs", nil)
	if w.Code != http.StatusOK || w.Body.String() != "[]\n" {
		t.Fatalf("empty list should be [], got %q", w.Body.String())
	}
}

func TestChatAndBidsAPI(t *testing.T) {
	h, events := newRouter(t, nil)

	_, body := do(t, h, http.MethodPost, "/api/jobs", map[string]any{"firebase_uid": "A", "title": "HDPE drums", "budget": 50000})
	jobID := body["jobId"]

	conv := map[string]any{"jobId": jobID, "jobOwnerUid": "A", "participantUid": "B", "jobTitle": "HDPE drums"}
	w, first := do(t, h, http.MethodPost, "/api/chat/conversations", conv)
	if w.Code != http.StatusOK || first["success"] != true {
		t.Fatalf("create conversation: %d %s", w.Code, w.Body.String())
	}
	_, second := do(t, h, http.MethodPost, "/api/chat/conversations", conv)
	if first["conversationId"] != second["conversationId"] {
		t.Fatalf("expected same conversation id, got %v and %v", first["conversationId"], second["conversationId"])
	}
	convID := itoa(int64(first["conversationId"].(float64)))

	w, body = do(t, h, http.MethodPost, "/api/chat/conversations", map[string]any{"jobId": jobID, "jobOwnerUid": "A"})
	if w.Code != http.StatusBadRequest || body["success"] != false {
		t.Fatalf("missing participant: expected 400 failure, got %d %s", w.Code, w.Body.String())
	}

	w, _ = do(t, h, http.MethodPost, "/api/chat/messages", map[string]any{"conversationId": first["conversationId"], "senderUid": "B", "senderName": "Bob", "message": "interested"})
	if w.Code != http.StatusOK {
		t.Fatalf("send message: %d %s", w.Code, w.Body.String())
	}

	w, body = do(t, h, http.MethodGet, "/api/chat/messages/"+convID, nil)
	msgs := body["messages"].([]any)
	if w.Code != http.StatusOK || len(msgs) != 1 {
		t.Fatalf("messages: %d %s", w.Code, w.Body.String())
	}
	m := msgs[0].(map[string]any)
	if m["message"] != "interested" || m["sender_uid"] != "B" {
		t.Fatalf("unexpected message %v", m)
	}

	w, body = do(t, h, http.MethodGet, "/api/chat/messages/not-a-number", nil)
	if w.Code != http.StatusOK || len(body["messages"].([]any)) != 0 {
		t.Fatalf("malformed id should list nothing: %d %s", w.Code, w.Body.String())
	}

	w, body = do(t, h, http.MethodGet, "/api/chat/conversations/A", nil)
	if w.Code != http.StatusOK || len(body["conversations"].([]any)) != 1 {
		t.Fatalf("conversations: %d %s", w.Code, w.Body.String())
	}

	bid := map[string]any{"jobId": jobID, "bidderUid": "B", "bidderName": "Bob", "bidAmount": 45000, "message": "ready"}
	w, body = do(t, h, http.MethodPost, "/api/bids", bid)
	if w.Code != http.StatusOK || body["updated"] != false {
		t.Fatalf("first bid: %d %s", w.Code, w.Body.String())
	}
	bid["bidAmount"] = 44000
	_, body = do(t, h, http.MethodPost, "/api/bids", bid)
	if body["updated"] != true {
		t.Fatalf("second bid should update: %v", body)
	}
	if events.count(models.EventJobsUpdated) != 2 {
		t.Fatalf("expected one jobs_updated for creation and one for the new bid, got %d", events.count(models.EventJobsUpdated))
	}

	jid := itoa(int64(jobID.(float64)))
	_, body = do(t, h, http.MethodGet, "/api/bids/"+jid+"/B", nil)
	mine := body["bid"].(map[string]any)
	if mine["bid_amount"] != float64(44000) {
		t.Fatalf("expected latest amount, got %v", mine["bid_amount"])
	}
	_, body = do(t, h, http.MethodGet, "/api/bids/"+jid+"/nobody", nil)
	if body["success"] != true || body["bid"] != nil {
		t.Fatalf("absent bid should be null: %v", body)
	}
	_, body = do(t, h, http.MethodGet, "/api/bids/job/"+jid, nil)
	if len(body["bids"].([]any)) != 1 {
		t.Fatalf("expected a single bid row: %v", body)
	}

	w, body = do(t, h, http.MethodPost, "/api/bids", map[string]any{"jobId": jobID, "bidderUid": "C", "bidAmount": -1})
	if w.Code != http.StatusBadRequest || body["success"] != false {
		t.Fatalf("negative bid: expected 400, got %d %s", w.Code, w.Body.String())
	}
	w, _ = do(t, h, http.MethodPost, "/api/bids", map[string]any{"jobId": 4242, "bidderUid": "C", "bidAmount": 10})
	if w.Code != http.StatusNotFound {
		t.Fatalf("bid on missing job: expected 404, got %d", w.Code)
	}
}

func TestContentAPIBroadcasts(t *testing.T) {
	h, events := newRouter(t, nil)

	w, body := do(t, h, http.MethodPost, "/api/banners", map[string]any{"title": "Recycling week", "active": true})
	if w.Code != http.StatusCreated {
		t.Fatalf("create banner: %d %s", w.Code, w.Body.String())
	}
	id := itoa(int64(body["id"].(float64)))

	w, _ = do(t, h, http.MethodPut, "/api/banners/"+id, map[string]any{"title": "Recycling month", "active": false})
	if w.Code != http.StatusOK {
		t.Fatalf("update banner: %d", w.Code)
	}
	if events.count(models.EventBannersUpdated) != 2 {
		t.Fatalf("expected 2 banners_updated events, got %d", events.count(models.EventBannersUpdated))
	}

	w, _ = do(t, h, http.MethodGet, "/api/banners?active=true", nil)
	if w.Body.String() != "[]\n" {
		t.Fatalf("inactive banner should be hidden, got %s", w.Body.String())
	}
	w, _ = do(t, h, http.MethodGet, "/api/banners/"+id, nil)
	var b models.Banner
	if err := json.Unmarshal(w.Body.Bytes(), &b); err != nil || b.Title != "Recycling month" {
		t.Fatalf("get banner: %v %s", err, w.Body.String())
	}

	w, _ = do(t, h, http.MethodPost, "/api/testimonials", map[string]any{"name": "Ravi", "content": "Fast deals", "rating": 9})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("rating out of range: expected 400, got %d", w.Code)
	}
	if events.count(models.EventTestimonialsUpdated) != 0 {
		t.Fatalf("failed write must not broadcast")
	}

	w, body = do(t, h, http.MethodPost, "/api/banners", map[string]any{"title": "No flag"})
	if w.Code != http.StatusCreated {
		t.Fatalf("create banner without active: %d %s", w.Code, w.Body.String())
	}
	w, _ = do(t, h, http.MethodGet, "/api/banners?active=true", nil)
	var visible []models.Banner
	if err := json.Unmarshal(w.Body.Bytes(), &visible); err != nil || len(visible) != 1 || visible[0].Title != "No flag" {
		t.Fatalf("banner posted without active should be visible: %v %s", err, w.Body.String())
	}

	w, body = do(t, h, http.MethodDelete, "/api/sponsors/99", nil)
	if w.Code != http.StatusNotFound || body["error"] != "Sponsor not found" {
		t.Fatalf("delete missing sponsor: %d %s", w.Code, w.Body.String())
	}

	w, _ = do(t, h, http.MethodDelete, "/api/banners/"+id, nil)
	if w.Code != http.StatusOK || events.count(models.EventBannersUpdated) != 4 {
		t.Fatalf("delete banner: %d events=%d", w.Code, events.count(models.EventBannersUpdated))
	}
}

func TestUsersAPI(t *testing.T) {
	h, _ := newRouter(t, nil)

	w, body := do(t, h, http.MethodPost, "/api/users/sync", map[string]any{"firebase_uid": "u1", "email": "u1@example.com", "display_name": "Uma"})
	if w.Code != http.StatusOK || body["success"] != true {
		t.Fatalf("sync: %d %s", w.Code, w.Body.String())
	}
	w, _ = do(t, h, http.MethodPost, "/api/users/sync", map[string]any{"firebase_uid": "u2", "email": "not-an-email"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("bad email: expected 400, got %d", w.Code)
	}

	w, body = do(t, h, http.MethodGet, "/api/users/u1", nil)
	if w.Code != http.StatusOK || body["display_name"] != "Uma" {
		t.Fatalf("get user: %d %s", w.Code, w.Body.String())
	}

	_, _ = do(t, h, http.MethodPost, "/api/jobs", map[string]any{"firebase_uid": "u1", "title": "PP"})
	w, _ = do(t, h, http.MethodDelete, "/api/users/u1", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("delete user: %d", w.Code)
	}
	w, _ = do(t, h, http.MethodGet, "/api/jobs", nil)
	if w.Body.String() != "[]\n" {
		t.Fatalf("user's jobs should cascade, got %s", w.Body.String())
	}
	w, body = do(t, h, http.MethodGet, "/api/users/u1", nil)
	if w.Code != http.StatusNotFound || body["error"] != "User not found" {
		t.Fatalf("deleted user: %d %s", w.Code, w.Body.String())
	}
}

func TestAuthRequiredForWrites(t *testing.T) {
	cfg := &config.Config{Auth: config.AuthConfig{Require: true, JWTSecret: "s3cr3t"}}
	h, _ := newRouter(t, cfg)

	w, _ := do(t, h, http.MethodPost, "/api/jobs", map[string]any{"firebase_uid": "spoofed", "title": "PVC"})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("write without token: expected 401, got %d", w.Code)
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "real-owner", "exp": time.Now().Add(time.Hour).Unix()})
	s, err := tok.SignedString([]byte("s3cr3t"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	w, _ = do(t, h, http.MethodPost, "/api/jobs", map[string]any{"firebase_uid": "spoofed", "title": "PVC"}, "Authorization", "Bearer "+s)
	if w.Code != http.StatusCreated {
		t.Fatalf("authorized write: %d %s", w.Code, w.Body.String())
	}

	w, _ = do(t, h, http.MethodGet, "/api/jobs/user/real-owner", nil)
	var owned []models.Job
	if err := json.Unmarshal(w.Body.Bytes(), &owned); err != nil || len(owned) != 1 {
		t.Fatalf("token subject should own the job: %v %s", err, w.Body.String())
	}
}

func TestPreflight(t *testing.T) {
	h, _ := newRouter(t, nil)
	w, _ := do(t, h, http.MethodOptions, "/api/jobs/1", nil)
	if w.Code != http.StatusNoContent || w.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Fatalf("preflight: %d %q", w.Code, w.Header().Get("Access-Control-Allow-Origin"))
	}
}

func itoa(n int64) string {
	return strconv.FormatInt(n, 10)
}
