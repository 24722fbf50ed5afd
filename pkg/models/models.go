package models

// Domain models matching the database schema in db/migrations.
// Timestamps are unix milliseconds.

type User struct {
	ID          int64  `json:"id" db:"id"`
	FirebaseUID string `json:"firebase_uid" db:"firebase_uid" validate:"required"`
	Email       string `json:"email,omitempty" db:"email" validate:"omitempty,email"`
	DisplayName string `json:"display_name" db:"display_name"`
	Created     int64  `json:"created" db:"created"`
	Updated     int64  `json:"updated" db:"updated"`
	LastLogin   *int64 `json:"last_login,omitempty" db:"last_login"`
}

type Job struct {
	ID                int64   `json:"id" db:"id"`
	UserID            *int64  `json:"user_id,omitempty" db:"user_id"`
	FirebaseUID       string  `json:"firebase_uid" db:"firebase_uid" validate:"required"`
	Title             string  `json:"title" db:"title" validate:"required"`
	Category          string  `json:"category" db:"category"`
	Material          string  `json:"material" db:"material"`
	Quantity          string  `json:"quantity" db:"quantity"`
	Budget            float64 `json:"budget" db:"budget"`
	Location          string  `json:"location" db:"location"`
	Client            string  `json:"client" db:"client"`
	Deadline          string  `json:"deadline" db:"deadline"`
	Description       string  `json:"description" db:"description"`
	Requirements      JSONDoc `json:"requirements" db:"requirements"`
	Specifications    JSONDoc `json:"specifications" db:"specifications"`
	EstimatedDuration string  `json:"estimated_duration" db:"estimated_duration"`
	Status            string  `json:"status" db:"status"`
	BidsReceived      int64   `json:"bids_received" db:"bids_received"`
	Priority          int     `json:"priority" db:"priority"`
	IsBoosted         bool    `json:"is_boosted" db:"is_boosted"`
	BoostExpiresAt    *int64  `json:"boost_expires_at,omitempty" db:"boost_expires_at"`
	Created           int64   `json:"created" db:"created"`
	Updated           int64   `json:"updated" db:"updated"`
}

// JobAdminPatch carries the promotional and moderation fields only an admin
// may change. Nil fields are left untouched.
type JobAdminPatch struct {
	Priority       *int    `json:"priority,omitempty"`
	IsBoosted      *bool   `json:"is_boosted,omitempty"`
	BoostExpiresAt *int64  `json:"boost_expires_at,omitempty"`
	Status         *string `json:"status,omitempty"`
}

// Conversation is a chat thread for one (job, owner, participant) triple.
type Conversation struct {
	ID              int64   `json:"id" db:"id"`
	JobID           int64   `json:"job_id" db:"job_id"`
	JobOwnerUID     string  `json:"job_owner_uid" db:"job_owner_uid"`
	ParticipantUID  string  `json:"participant_uid" db:"participant_uid"`
	JobTitle        string  `json:"job_title" db:"job_title"`
	LastMessage     *string `json:"last_message,omitempty" db:"last_message"`
	LastMessageTime *int64  `json:"last_message_time,omitempty" db:"last_message_time"`
	Created         int64   `json:"created" db:"created"`
}

// Message is immutable once stored. SenderName is the name at send time.
type Message struct {
	ID             int64  `json:"id" db:"id"`
	ConversationID int64  `json:"conversation_id" db:"conversation_id"`
	SenderUID      string `json:"sender_uid" db:"sender_uid"`
	SenderName     string `json:"sender_name" db:"sender_name"`
	Message        string `json:"message" db:"message"`
	Timestamp      int64  `json:"timestamp" db:"timestamp"`
}

type Bid struct {
	ID         int64   `json:"id" db:"id"`
	JobID      int64   `json:"job_id" db:"job_id"`
	BidderUID  string  `json:"bidder_uid" db:"bidder_uid"`
	BidderName string  `json:"bidder_name" db:"bidder_name"`
	BidAmount  float64 `json:"bid_amount" db:"bid_amount"`
	Message    string  `json:"message" db:"message"`
	Revision   int64   `json:"revision" db:"revision"`
	Created    int64   `json:"created" db:"created"`
	Updated    int64   `json:"updated" db:"updated"`
}

type Testimonial struct {
	ID           int64  `json:"id" db:"id"`
	Name         string `json:"name" db:"name" validate:"required"`
	Company      string `json:"company" db:"company"`
	Role         string `json:"role" db:"role"`
	Content      string `json:"content" db:"content" validate:"required"`
	Rating       int    `json:"rating" db:"rating" validate:"min=0,max=5"`
	ImageURL     string `json:"image_url" db:"image_url"`
	Active       bool   `json:"active" db:"active"`
	DisplayOrder int    `json:"display_order" db:"display_order"`
	Created      int64  `json:"created" db:"created"`
	Updated      int64  `json:"updated" db:"updated"`
}

type Banner struct {
	ID           int64  `json:"id" db:"id"`
	Title        string `json:"title" db:"title" validate:"required"`
	Subtitle     string `json:"subtitle" db:"subtitle"`
	ImageURL     string `json:"image_url" db:"image_url"`
	LinkURL      string `json:"link_url" db:"link_url"`
	Active       bool   `json:"active" db:"active"`
	DisplayOrder int    `json:"display_order" db:"display_order"`
	Created      int64  `json:"created" db:"created"`
	Updated      int64  `json:"updated" db:"updated"`
}

type Sponsor struct {
	ID           int64  `json:"id" db:"id"`
	Name         string `json:"name" db:"name" validate:"required"`
	LogoURL      string `json:"logo_url" db:"logo_url"`
	WebsiteURL   string `json:"website_url" db:"website_url"`
	Tier         string `json:"tier" db:"tier"`
	Active       bool   `json:"active" db:"active"`
	DisplayOrder int    `json:"display_order" db:"display_order"`
	Created      int64  `json:"created" db:"created"`
	Updated      int64  `json:"updated" db:"updated"`
}
