package models

// SupportTicket tracks customer support requests, including the
// "charged but not recorded" cases escalated from checkout.
type SupportTicket struct {
	ID        int64  `json:"id"`
	UserID    int64  `json:"user_id"`
	BookingID int64  `json:"booking_id,omitempty"`
	Subject   string `json:"subject"`
	Body      string `json:"body"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

const (
	TicketStatusOpen     = "open"
	TicketStatusPending  = "pending"
	TicketStatusResolved = "resolved"
	TicketStatusClosed   = "closed"
)
