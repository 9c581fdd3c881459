package services

import (
	"fmt"

	"rentalportal/internal/checkout"
	"rentalportal/internal/domain"
	"rentalportal/internal/domain/models"
	"rentalportal/internal/repositories"
	"rentalportal/internal/utils"
)

// BookingService creates and reads rental bookings. Pricing is a plain
// day-rate multiplication; availability is a status check, not a calendar
// conflict search.
type BookingService struct {
	BookingRepo repositories.BookingRepository
	VehicleRepo repositories.VehicleRepository
	UserRepo    repositories.UserRepository
	RequestID   string
}

type BookingRequest struct {
	VehicleID    int64  `json:"vehicle_id"`
	PickupDate   string `json:"pickup_date"`
	DropoffDate  string `json:"dropoff_date"`
	PickupPoint  string `json:"pickup_point"`
	DropoffPoint string `json:"dropoff_point"`
}

func (s BookingService) CreateBooking(userID int64, req BookingRequest) (models.Booking, error) {
	if userID <= 0 {
		return models.Booking{}, domain.ValidationError{Field: "user_id", Msg: "must be positive"}
	}
	if req.VehicleID <= 0 {
		return models.Booking{}, domain.ValidationError{Field: "vehicle_id", Msg: "must be positive"}
	}

	pickup, err := utils.ParseDate(req.PickupDate)
	if err != nil {
		return models.Booking{}, domain.ValidationError{Field: "pickup_date", Msg: "expected YYYY-MM-DD", Err: err}
	}
	dropoff, err := utils.ParseDate(req.DropoffDate)
	if err != nil {
		return models.Booking{}, domain.ValidationError{Field: "dropoff_date", Msg: "expected YYYY-MM-DD", Err: err}
	}
	if !dropoff.After(pickup) {
		return models.Booking{}, domain.ValidationError{Field: "dropoff_date", Msg: "must be after pickup date"}
	}

	vehicle, err := s.VehicleRepo.GetByID(req.VehicleID)
	if err != nil {
		return models.Booking{}, err
	}
	if vehicle.Status != "available" {
		return models.Booking{}, domain.ConflictError{Resource: "vehicle", Msg: "not available"}
	}

	days := utils.RentalDays(pickup, dropoff)
	total := utils.Round2(float64(days) * vehicle.DailyRate)

	b := models.Booking{
		UserID:       userID,
		VehicleID:    req.VehicleID,
		PickupDate:   req.PickupDate,
		DropoffDate:  req.DropoffDate,
		PickupPoint:  req.PickupPoint,
		DropoffPoint: req.DropoffPoint,
		Days:         days,
		DailyRate:    vehicle.DailyRate,
		TotalAmount:  total,
	}

	id, err := s.BookingRepo.Create(b)
	if err != nil {
		return models.Booking{}, err
	}
	b.ID = id
	b.Status = models.BookingStatusPending
	b.PaymentStatus = models.PaymentStatusUnpaid

	utils.LogEvent(s.RequestID, "booking", "create",
		fmt.Sprintf("booking_id=%d vehicle_id=%d days=%d total=%s", id, req.VehicleID, days, utils.FormatMoney(total)))
	return b, nil
}

// CheckoutInputs assembles the three inbound values the checkout flow
// opens with, verifying the booking belongs to the requesting user and is
// still payable.
func (s BookingService) CheckoutInputs(bookingID, userID int64) (checkout.BookingSummary, checkout.UserIdentity, checkout.VehicleDescriptor, error) {
	var (
		summary checkout.BookingSummary
		payer   checkout.UserIdentity
		vehicle checkout.VehicleDescriptor
	)

	booking, err := s.BookingRepo.GetByID(bookingID)
	if err != nil {
		return summary, payer, vehicle, err
	}
	if booking.UserID != userID {
		return summary, payer, vehicle, domain.NotFoundError{Resource: "booking"}
	}
	if booking.PaymentStatus == models.PaymentStatusCompleted {
		return summary, payer, vehicle, domain.ConflictError{Resource: "booking", Msg: "already paid"}
	}
	if booking.Status == models.BookingStatusCancelled {
		return summary, payer, vehicle, domain.ConflictError{Resource: "booking", Msg: "cancelled"}
	}

	user, err := s.UserRepo.GetByID(userID)
	if err != nil {
		return summary, payer, vehicle, err
	}
	v, err := s.VehicleRepo.GetByID(booking.VehicleID)
	if err != nil {
		return summary, payer, vehicle, err
	}

	summary = checkout.BookingSummary{ID: booking.ID, TotalAmount: booking.TotalAmount}
	payer = checkout.UserIdentity{ID: user.ID, Email: user.Email, Phone: user.Phone}
	vehicle = checkout.VehicleDescriptor{
		ID:           v.ID,
		SpecID:       v.SpecID,
		Make:         v.Make,
		Model:        v.Model,
		Year:         v.Year,
		LicensePlate: v.LicensePlate,
		VIN:          v.VIN,
		Mileage:      v.Mileage,
		DailyRate:    v.DailyRate,
	}
	return summary, payer, vehicle, nil
}
