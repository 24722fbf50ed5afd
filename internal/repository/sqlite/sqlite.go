package sqlite

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"time"

	"github.com/plastmart/b2b/internal/db"
	"github.com/plastmart/b2b/pkg/models"
	"github.com/plastmart/b2b/pkg/repository"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// SQLiteRepo implements repository interfaces using the internal DB wrapper.
type SQLiteRepo struct {
	conn   *db.DB
	logger *slog.Logger

	testimonials *contentStore[models.Testimonial]
	banners      *contentStore[models.Banner]
	sponsors     *contentStore[models.Sponsor]
}

// Ensure SQLiteRepo implements the public interfaces.
var _ repository.UserRepo = (*SQLiteRepo)(nil)
var _ repository.JobRepo = (*SQLiteRepo)(nil)
var _ repository.ChatRepo = (*SQLiteRepo)(nil)
var _ repository.BidRepo = (*SQLiteRepo)(nil)

func New(conn *db.DB, logger *slog.Logger) *SQLiteRepo {
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(os.Stdout, nil))
	}
	return &SQLiteRepo{
		conn:         conn,
		logger:       logger,
		testimonials: newTestimonialStore(conn),
		banners:      newBannerStore(conn),
		sponsors:     newSponsorStore(conn),
	}
}

// Ping reports whether the database still answers.
func (r *SQLiteRepo) Ping(ctx context.Context) error {
	return r.conn.GetConn().PingContext(ctx)
}

func (r *SQLiteRepo) Testimonials() repository.ContentRepo[models.Testimonial] {
	return r.testimonials
}

func (r *SQLiteRepo) Banners() repository.ContentRepo[models.Banner] {
	return r.banners
}

func (r *SQLiteRepo) Sponsors() repository.ContentRepo[models.Sponsor] {
	return r.sponsors
}

func now() int64 {
	return time.Now().UTC().UnixMilli()
}

type scanner interface {
	Scan(dest ...any) error
}

// isForeignKeyViolation reports whether err is sqlite rejecting a row whose
// parent (job, conversation) does not exist.
func isForeignKeyViolation(err error) bool {
	var se *sqlite.Error
	if errors.As(err, &se) {
		return se.Code() == sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY
	}
	return false
}
