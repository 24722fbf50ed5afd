package models

// Socket event names. Events carry no payload: receivers refetch the
// matching list over HTTP.
const (
	EventTestimonialsUpdated = "testimonials_updated"
	EventBannersUpdated      = "banners_updated"
	EventSponsorsUpdated     = "sponsors_updated"
	EventJobsUpdated         = "jobs_updated"
)

// Event is the JSON frame sent over the socket.
type Event struct {
	Event string `json:"event"`
}
