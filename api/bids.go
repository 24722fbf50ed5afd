package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/plastmart/b2b/internal/bids"
	"github.com/plastmart/b2b/internal/realtime"
	"github.com/plastmart/b2b/pkg/models"
)

type BidsHandler struct {
	svc    *bids.Service
	events realtime.Broadcaster
}

func NewBidsHandler(svc *bids.Service, events realtime.Broadcaster) *BidsHandler {
	return &BidsHandler{svc: svc, events: events}
}

type placeBidRequest struct {
	JobID      int64   `json:"jobId" validate:"required"`
	BidderUID  string  `json:"bidderUid" validate:"required"`
	BidderName string  `json:"bidderName"`
	BidAmount  float64 `json:"bidAmount"`
	Message    string  `json:"message"`
}

func (h *BidsHandler) Place(w http.ResponseWriter, r *http.Request) {
	var req placeBidRequest
	if err := decodeBody(r, &req); err != nil {
		writeFailure(w, http.StatusBadRequest, err.Error())
		return
	}
	req.BidderUID = actingUID(r, req.BidderUID)
	if err := validateBody(&req); err != nil {
		writeFailure(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := h.svc.PlaceBid(r.Context(), req.JobID, req.BidderUID, req.BidderName, req.BidAmount, req.Message)
	if err != nil {
		status, msg := statusFor(r, err, jobNotFound)
		writeFailure(w, status, msg)
		return
	}
	if !res.Updated {
		// bids_received changed
		h.events.Broadcast(models.EventJobsUpdated)
	}

	writeJSON(w, map[string]any{"success": true, "bidId": res.BidID, "updated": res.Updated}, http.StatusOK)
}

// Mine returns the bidder's bid on the job; "bid" is null when there is none.
func (h *BidsHandler) Mine(w http.ResponseWriter, r *http.Request) {
	jobID, err := pathID(r, "jobId")
	if err != nil {
		writeFailure(w, http.StatusBadRequest, err.Error())
		return
	}

	b, err := h.svc.GetMyBid(r.Context(), jobID, mux.Vars(r)["bidderUid"])
	if err != nil {
		status, msg := statusFor(r, err, jobNotFound)
		writeFailure(w, status, msg)
		return
	}

	writeJSON(w, map[string]any{"success": true, "bid": b}, http.StatusOK)
}

func (h *BidsHandler) ForJob(w http.ResponseWriter, r *http.Request) {
	jobID, err := pathID(r, "jobId")
	if err != nil {
		writeFailure(w, http.StatusBadRequest, err.Error())
		return
	}

	list, err := h.svc.ListBids(r.Context(), jobID)
	if err != nil {
		status, msg := statusFor(r, err, jobNotFound)
		writeFailure(w, status, msg)
		return
	}

	writeJSON(w, map[string]any{"success": true, "bids": list}, http.StatusOK)
}
