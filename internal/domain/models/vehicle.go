package models

// Vehicle is a rentable car in the catalog.
type Vehicle struct {
	ID           int64    `json:"id"`
	SpecID       int64    `json:"spec_id"`
	Make         string   `json:"make"`
	Model        string   `json:"model"`
	Year         int      `json:"year"`
	LicensePlate string   `json:"license_plate"`
	VIN          string   `json:"vin"`
	Mileage      int64    `json:"mileage"`
	DailyRate    float64  `json:"daily_rate"`
	Status       string   `json:"status"`
	Features     []string `json:"features"`
}

// VehicleUpdate supports PATCH-style updates via key presence.
type VehicleUpdate struct {
	Make         *string  `json:"make"`
	Model        *string  `json:"model"`
	Year         *int     `json:"year"`
	LicensePlate *string  `json:"license_plate"`
	VIN          *string  `json:"vin"`
	Mileage      *int64   `json:"mileage"`
	DailyRate    *float64 `json:"daily_rate"`
	Status       *string  `json:"status"`
	Features     []string `json:"features"`
}
