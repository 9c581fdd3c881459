package models

// Review is customer feedback left on a vehicle after a completed rental.
type Review struct {
	ID        int64  `json:"id"`
	VehicleID int64  `json:"vehicle_id"`
	UserID    int64  `json:"user_id"`
	UserName  string `json:"user_name"`
	Rating    int    `json:"rating"`
	Comment   string `json:"comment"`
	CreatedAt string `json:"created_at"`
}
