package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/plastmart/b2b/pkg/models"
)

type BidService struct {
	c *Client
}

type PlaceBidInput struct {
	JobID      int64   `json:"jobId"`
	BidderUID  string  `json:"bidderUid"`
	BidderName string  `json:"bidderName"`
	Amount     float64 `json:"bidAmount"`
	Message    string  `json:"message"`
}

type PlaceResult struct {
	BidID   int64 `json:"bidId"`
	Updated bool  `json:"updated"`
}

func (s *BidService) Place(ctx context.Context, in PlaceBidInput, opts ...CallOption) (PlaceResult, error) {
	var out PlaceResult
	if err := s.c.do(ctx, http.MethodPost, "/bids", in, &out, opts...); err != nil {
		return PlaceResult{}, err
	}
	return out, nil
}

// Mine returns the bidder's bid on the job. A nil bid with a nil error
// means no bid yet; an error means the lookup itself failed.
func (s *BidService) Mine(ctx context.Context, jobID int64, bidderUID string, opts ...CallOption) (*models.Bid, error) {
	var out struct {
		Bid *models.Bid `json:"bid"`
	}
	path := "/bids/" + strconv.FormatInt(jobID, 10) + "/" + url.PathEscape(bidderUID)
	if err := s.c.do(ctx, http.MethodGet, path, nil, &out, opts...); err != nil {
		return nil, err
	}
	return out.Bid, nil
}

func (s *BidService) ForJob(ctx context.Context, jobID int64, opts ...CallOption) ([]models.Bid, error) {
	var out struct {
		Bids []models.Bid `json:"bids"`
	}
	if err := s.c.do(ctx, http.MethodGet, "/bids/job/"+strconv.FormatInt(jobID, 10), nil, &out, opts...); err != nil {
		return nil, err
	}
	return out.Bids, nil
}
