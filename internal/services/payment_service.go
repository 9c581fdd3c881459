package services

import (
	"fmt"
	"strings"

	"rentalportal/internal/checkout"
	"rentalportal/internal/domain"
	"rentalportal/internal/domain/models"
	"rentalportal/internal/repositories"
	"rentalportal/internal/utils"
)

// PaymentService persists settlement records reported by the checkout flow
// and flips the booking to paid.
type PaymentService struct {
	PaymentRepo repositories.PaymentRepository
	BookingRepo repositories.BookingRepository
	RequestID   string
}

// RecordSettlement validates and stores a settlement. The commission split
// is recomputed here from the gross amount; the client's copy of the split
// is display-only and never trusted. Re-submitting a reference that was
// already recorded returns the existing payment instead of double-booking
// the charge.
func (s PaymentService) RecordSettlement(rec checkout.SettlementRecord) (models.Payment, error) {
	if rec.BookingID <= 0 {
		return models.Payment{}, domain.ValidationError{Field: "booking_id", Msg: "must be positive"}
	}
	if rec.UserID <= 0 {
		return models.Payment{}, domain.ValidationError{Field: "user_id", Msg: "must be positive"}
	}
	if rec.Amount <= 0 {
		return models.Payment{}, domain.ValidationError{Field: "amount", Msg: "must be positive"}
	}
	if strings.TrimSpace(rec.TransactionID) == "" {
		return models.Payment{}, domain.ValidationError{Field: "transaction_id", Msg: "required"}
	}

	booking, err := s.BookingRepo.GetByID(rec.BookingID)
	if err != nil {
		return models.Payment{}, err
	}
	if booking.UserID != rec.UserID {
		return models.Payment{}, domain.ValidationError{Field: "user_id", Msg: "does not own this booking"}
	}

	if exists, err := s.PaymentRepo.ReferenceExists(rec.Reference); err == nil && exists {
		existing, err := s.PaymentRepo.GetByBookingID(rec.BookingID)
		if err == nil && existing.Reference == rec.Reference {
			utils.LogEvent(s.RequestID, "payment", "record",
				fmt.Sprintf("reference %s already recorded as payment %d", rec.Reference, existing.ID))
			return existing, nil
		}
		return models.Payment{}, domain.ConflictError{Resource: "payment", Msg: "reference already used"}
	}

	fee, net := utils.SplitCommission(rec.Amount)

	if strings.HasPrefix(rec.TransactionID, checkout.LocalTransactionPrefix) {
		utils.LogEvent(s.RequestID, "payment", "record",
			"synthetic transaction id for booking "+fmt.Sprint(rec.BookingID))
	}

	p := models.Payment{
		BookingID:     rec.BookingID,
		UserID:        rec.UserID,
		Amount:        rec.Amount,
		CommissionFee: fee,
		NetAmount:     net,
		Currency:      rec.Currency,
		Method:        rec.PaymentMethod,
		Status:        models.PaymentStatusCompleted,
		TransactionID: rec.TransactionID,
		Reference:     rec.Reference,
		PayerPhone:    rec.Phone,
		VehicleMake:   rec.VehicleMake,
		VehicleModel:  rec.VehicleModel,
		VehicleYear:   rec.VehicleYear,
		LicensePlate:  rec.LicensePlate,
	}

	id, err := s.PaymentRepo.Create(p)
	if err != nil {
		return models.Payment{}, err
	}
	p.ID = id

	if err := s.BookingRepo.MarkPaid(rec.BookingID, rec.PaymentMethod); err != nil {
		// The payment row exists; a dangling unpaid booking must surface.
		utils.LogEvent(s.RequestID, "payment", "record",
			fmt.Sprintf("payment %d stored but booking %d not marked paid: %v", id, rec.BookingID, err))
		return models.Payment{}, err
	}

	utils.LogEvent(s.RequestID, "payment", "record",
		fmt.Sprintf("booking_id=%d payment_id=%d tx=%s", rec.BookingID, id, rec.TransactionID))
	return p, nil
}
