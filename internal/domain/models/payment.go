package models

// Payment is the durable record of a settled gateway charge.
type Payment struct {
	ID            int64   `json:"id"`
	BookingID     int64   `json:"booking_id"`
	UserID        int64   `json:"user_id"`
	Amount        float64 `json:"amount"`
	CommissionFee float64 `json:"commission_fee"`
	NetAmount     float64 `json:"net_amount"`
	Currency      string  `json:"currency"`
	Method        string  `json:"payment_method"`
	Status        string  `json:"status"`
	TransactionID string  `json:"transaction_id"`
	Reference     string  `json:"reference"`
	PayerPhone    string  `json:"payer_phone"`
	VehicleMake   string  `json:"vehicle_make"`
	VehicleModel  string  `json:"vehicle_model"`
	VehicleYear   int     `json:"vehicle_year"`
	LicensePlate  string  `json:"license_plate"`
	CreatedAt     string  `json:"created_at"`
}
