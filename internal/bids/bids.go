// Package bids implements one-bid-per-bidder bidding on jobs.
package bids

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"os"

	"github.com/plastmart/b2b/internal/common"
	"github.com/plastmart/b2b/pkg/models"
	"github.com/plastmart/b2b/pkg/repository"
)

// PlaceResult reports the stored bid id and whether an earlier bid by the
// same bidder was overwritten.
type PlaceResult struct {
	BidID   int64 `json:"bidId"`
	Updated bool  `json:"updated"`
}

type Service struct {
	repo   repository.BidRepo
	logger *slog.Logger
}

func NewService(repo repository.BidRepo, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(os.Stdout, nil))
	}
	return &Service{repo: repo, logger: logger}
}

// PlaceBid creates the bidder's bid on the job or replaces amount and message
// of the existing one. Amounts must be finite and positive.
func (s *Service) PlaceBid(ctx context.Context, jobID int64, bidderUID, bidderName string, amount float64, message string) (PlaceResult, error) {
	if jobID <= 0 || bidderUID == "" {
		return PlaceResult{}, fmt.Errorf("jobId and bidderUid are required: %w", common.ErrValidation)
	}
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount <= 0 {
		return PlaceResult{}, common.ErrInvalidAmount
	}

	id, updated, err := s.repo.UpsertBid(ctx, &models.Bid{
		JobID:      jobID,
		BidderUID:  bidderUID,
		BidderName: bidderName,
		BidAmount:  amount,
		Message:    message,
	})
	if err != nil {
		return PlaceResult{}, fmt.Errorf("place bid: %w", err)
	}

	s.logger.Debug("bid stored", slog.Int64("job_id", jobID), slog.Int64("bid_id", id), slog.Bool("updated", updated))
	return PlaceResult{BidID: id, Updated: updated}, nil
}

// GetMyBid returns the bidder's bid on the job, or nil when they have none.
func (s *Service) GetMyBid(ctx context.Context, jobID int64, bidderUID string) (*models.Bid, error) {
	b, err := s.repo.GetBid(ctx, jobID, bidderUID)
	if err != nil {
		return nil, fmt.Errorf("get bid: %w", err)
	}

	return b, nil
}

func (s *Service) ListBids(ctx context.Context, jobID int64) ([]models.Bid, error) {
	list, err := s.repo.ListBidsForJob(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("list bids: %w", err)
	}
	if list == nil {
		list = []models.Bid{}
	}

	return list, nil
}
