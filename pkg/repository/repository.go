package repository

import (
	"context"

	"github.com/plastmart/b2b/pkg/models"
)

// Repository interfaces for domain entities. These are the public contracts
// consumers should depend on; concrete implementations live under internal/.
// Lookups return (nil, nil) when no row matches; updates and deletes report
// whether a row matched.

type UserRepo interface {
	UpsertUser(ctx context.Context, u *models.User) (*models.User, error)
	GetUserByUID(ctx context.Context, uid string) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	DeleteUser(ctx context.Context, uid string) (bool, error)
}

type JobRepo interface {
	CreateJob(ctx context.Context, j *models.Job) (int64, error)
	GetJob(ctx context.Context, id int64) (*models.Job, error)
	ListJobs(ctx context.Context) ([]models.Job, error)
	ListJobsByOwner(ctx context.Context, uid string) ([]models.Job, error)
	UpdateJob(ctx context.Context, j *models.Job) (bool, error)
	UpdateJobAdmin(ctx context.Context, id int64, p models.JobAdminPatch) (bool, error)
	DeleteJob(ctx context.Context, id int64) (bool, error)
}

type ChatRepo interface {
	CreateOrGetConversation(ctx context.Context, c *models.Conversation) (int64, error)
	GetConversation(ctx context.Context, id int64) (*models.Conversation, error)
	ListConversationsForUser(ctx context.Context, uid string) ([]models.Conversation, error)
	InsertMessage(ctx context.Context, m *models.Message) (int64, error)
	TouchConversation(ctx context.Context, conversationID int64, lastMessage string, at int64) error
	ListMessages(ctx context.Context, conversationID int64) ([]models.Message, error)
}

type BidRepo interface {
	// UpsertBid stores the bid for (job, bidder), replacing any earlier one.
	// updated is true when an existing bid was overwritten.
	UpsertBid(ctx context.Context, b *models.Bid) (id int64, updated bool, err error)
	GetBid(ctx context.Context, jobID int64, bidderUID string) (*models.Bid, error)
	ListBidsForJob(ctx context.Context, jobID int64) ([]models.Bid, error)
}

// ContentRepo is the CRUD contract shared by admin-managed public content
// (testimonials, banners, sponsors).
type ContentRepo[T any] interface {
	List(ctx context.Context, activeOnly bool) ([]T, error)
	Get(ctx context.Context, id int64) (*T, error)
	Create(ctx context.Context, item *T) (int64, error)
	Update(ctx context.Context, id int64, item *T) (bool, error)
	Delete(ctx context.Context, id int64) (bool, error)
}
