package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/plastmart/b2b/internal/bids"
	"github.com/plastmart/b2b/internal/chat"
	"github.com/plastmart/b2b/internal/config"
	"github.com/plastmart/b2b/internal/realtime"
	"github.com/plastmart/b2b/internal/repository/sqlite"
	"github.com/plastmart/b2b/pkg/models"
	"github.com/plastmart/b2b/pkg/repository"
)

// Deps is everything the handlers need, built once at startup.
type Deps struct {
	Users        repository.UserRepo
	Jobs         repository.JobRepo
	Chat         *chat.Service
	Bids         *bids.Service
	Testimonials repository.ContentRepo[models.Testimonial]
	Banners      repository.ContentRepo[models.Banner]
	Sponsors     repository.ContentRepo[models.Sponsor]

	// Events receives change notifications. Defaults to realtime.Nop.
	Events realtime.Broadcaster
	// Socket serves /api/ws when set.
	Socket http.Handler
	// Store backs the database check in /health. Optional.
	Store Pinger
}

// NewDeps wires the sqlite repository and services. hub may be nil.
func NewDeps(repo *sqlite.SQLiteRepo, hub *realtime.Hub, l *slog.Logger) Deps {
	d := Deps{
		Users:        repo,
		Jobs:         repo,
		Chat:         chat.NewService(repo, l),
		Bids:         bids.NewService(repo, l),
		Testimonials: repo.Testimonials(),
		Banners:      repo.Banners(),
		Sponsors:     repo.Sponsors(),
		Events:       realtime.Nop{},
		Store:        repo,
	}
	if hub != nil {
		d.Events = hub
		d.Socket = hub
	}
	return d
}

func SetupRoutes(cfg *config.Config, version, buildTime string, deps Deps) *mux.Router {
	r := mux.NewRouter()

	// Middleware chain
	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware)
	r.Use(CORSMiddlewareWithOrigin(cfg.CORS.AllowOrigin))
	r.Use(RecoveryMiddleware)

	if deps.Events == nil {
		deps.Events = realtime.Nop{}
	}

	// Preflight for every path; the CORS middleware answers it.
	r.Methods(http.MethodOptions).HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	// Create handlers
	systemHandler := &SystemHandler{Store: deps.Store}
	jobsHandler := NewJobsHandler(deps.Jobs, deps.Events)
	chatHandler := NewChatHandler(deps.Chat)
	bidsHandler := NewBidsHandler(deps.Bids, deps.Events)
	usersHandler := NewUsersHandler(deps.Users, deps.Events)

	// Open endpoints
	r.HandleFunc("/version", systemHandler.VersionHandler(version, buildTime)).Methods("GET")
	r.HandleFunc("/health", systemHandler.HealthHandler).Methods("GET")

	apiR := r.PathPrefix("/api").Subrouter()
	if cfg.Auth.Require {
		apiR.Use(WritesOnly(JWTAuthMiddlewareWithSecret(cfg.Auth.JWTSecret)))
	}

	// Jobs
	apiR.HandleFunc("/jobs", jobsHandler.List).Methods("GET")
	apiR.HandleFunc("/jobs", jobsHandler.Create).Methods("POST")
	apiR.HandleFunc("/jobs/user/{uid}", jobsHandler.ListByOwner).Methods("GET")
	apiR.HandleFunc("/jobs/{id}", jobsHandler.Get).Methods("GET")
	apiR.HandleFunc("/jobs/{id}", jobsHandler.Update).Methods("PUT")
	apiR.HandleFunc("/jobs/{id}", jobsHandler.Delete).Methods("DELETE")
	apiR.HandleFunc("/jobs/{id}/admin", jobsHandler.AdminUpdate).Methods("PATCH")

	// Chat
	apiR.HandleFunc("/chat/conversations", chatHandler.CreateConversation).Methods("POST")
	apiR.HandleFunc("/chat/conversations/{uid}", chatHandler.ListConversations).Methods("GET")
	apiR.HandleFunc("/chat/messages", chatHandler.SendMessage).Methods("POST")
	apiR.HandleFunc("/chat/messages/{conversationId}", chatHandler.ListMessages).Methods("GET")

	// Bids
	apiR.HandleFunc("/bids", bidsHandler.Place).Methods("POST")
	apiR.HandleFunc("/bids/job/{jobId}", bidsHandler.ForJob).Methods("GET")
	apiR.HandleFunc("/bids/{jobId:[0-9]+}/{bidderUid}", bidsHandler.Mine).Methods("GET")

	// Users
	apiR.HandleFunc("/users", usersHandler.List).Methods("GET")
	apiR.HandleFunc("/users/sync", usersHandler.Sync).Methods("POST")
	apiR.HandleFunc("/users/{uid}", usersHandler.Get).Methods("GET")
	apiR.HandleFunc("/users/{uid}", usersHandler.Delete).Methods("DELETE")

	// Admin content
	NewContentHandler(deps.Testimonials, deps.Events, models.EventTestimonialsUpdated, "Testimonial not found").Register(apiR, "/testimonials")
	NewContentHandler(deps.Banners, deps.Events, models.EventBannersUpdated, "Banner not found").Register(apiR, "/banners")
	NewContentHandler(deps.Sponsors, deps.Events, models.EventSponsorsUpdated, "Sponsor not found").Register(apiR, "/sponsors")

	if deps.Socket != nil {
		apiR.Handle("/ws", deps.Socket).Methods("GET")
	}

	return r
}
