package models

// Booking captures a rental reservation for one vehicle and one customer.
type Booking struct {
	ID            int64   `json:"id"`
	UserID        int64   `json:"user_id"`
	VehicleID     int64   `json:"vehicle_id"`
	PickupDate    string  `json:"pickup_date"`
	DropoffDate   string  `json:"dropoff_date"`
	PickupPoint   string  `json:"pickup_point"`
	DropoffPoint  string  `json:"dropoff_point"`
	Days          int     `json:"days"`
	DailyRate     float64 `json:"daily_rate"`
	TotalAmount   float64 `json:"total_amount"`
	Status        string  `json:"status"`
	PaymentStatus string  `json:"payment_status"`
	PaymentMethod string  `json:"payment_method"`
	CreatedAt     string  `json:"created_at"`
}

// Booking statuses used across handlers and services.
const (
	BookingStatusPending   = "pending"
	BookingStatusConfirmed = "confirmed"
	BookingStatusCancelled = "cancelled"

	PaymentStatusUnpaid    = "unpaid"
	PaymentStatusCompleted = "completed"
)
