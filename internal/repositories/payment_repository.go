package repositories

import (
	"database/sql"
	"errors"

	intconfig "rentalportal/internal/config"
	"rentalportal/internal/domain"
	"rentalportal/internal/domain/models"
)

type PaymentRepository struct {
	DB *sql.DB
}

func (r PaymentRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

const paymentColumns = `
	id,
	COALESCE(booking_id,0),
	COALESCE(user_id,0),
	COALESCE(amount,0),
	COALESCE(commission_fee,0),
	COALESCE(net_amount,0),
	COALESCE(currency,''),
	COALESCE(payment_method,''),
	COALESCE(status,''),
	COALESCE(transaction_id,''),
	COALESCE(reference,''),
	COALESCE(payer_phone,''),
	COALESCE(vehicle_make,''),
	COALESCE(vehicle_model,''),
	COALESCE(vehicle_year,0),
	COALESCE(license_plate,''),
	COALESCE(DATE_FORMAT(created_at, '%Y-%m-%d %H:%i:%s'),'')`

func scanPayment(row interface{ Scan(...any) error }) (models.Payment, error) {
	var p models.Payment
	err := row.Scan(
		&p.ID, &p.BookingID, &p.UserID,
		&p.Amount, &p.CommissionFee, &p.NetAmount, &p.Currency,
		&p.Method, &p.Status, &p.TransactionID, &p.Reference, &p.PayerPhone,
		&p.VehicleMake, &p.VehicleModel, &p.VehicleYear, &p.LicensePlate,
		&p.CreatedAt,
	)
	return p, err
}

// Create inserts the settled payment row and returns its id.
func (r PaymentRepository) Create(p models.Payment) (int64, error) {
	res, err := r.db().Exec(`
		INSERT INTO payments (booking_id, user_id, amount, commission_fee, net_amount, currency,
		                      payment_method, status, transaction_id, reference, payer_phone,
		                      vehicle_make, vehicle_model, vehicle_year, license_plate, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, NOW())`,
		p.BookingID, p.UserID, p.Amount, p.CommissionFee, p.NetAmount, p.Currency,
		p.Method, p.Status, p.TransactionID, p.Reference, p.PayerPhone,
		p.VehicleMake, p.VehicleModel, p.VehicleYear, p.LicensePlate)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r PaymentRepository) GetByID(id int64) (models.Payment, error) {
	if id <= 0 {
		return models.Payment{}, domain.ValidationError{Field: "id", Msg: "must be positive"}
	}
	row := r.db().QueryRow("SELECT "+paymentColumns+" FROM payments WHERE id=? LIMIT 1", id)
	p, err := scanPayment(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Payment{}, domain.NotFoundError{Resource: "payment"}
		}
		return models.Payment{}, err
	}
	return p, nil
}

// GetByBookingID returns the newest payment for a booking.
func (r PaymentRepository) GetByBookingID(bookingID int64) (models.Payment, error) {
	if bookingID <= 0 {
		return models.Payment{}, domain.ValidationError{Field: "booking_id", Msg: "must be positive"}
	}
	row := r.db().QueryRow("SELECT "+paymentColumns+" FROM payments WHERE booking_id=? ORDER BY id DESC LIMIT 1", bookingID)
	p, err := scanPayment(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Payment{}, domain.NotFoundError{Resource: "payment"}
		}
		return models.Payment{}, err
	}
	return p, nil
}

// ReferenceExists guards against double-recording the same gateway charge.
func (r PaymentRepository) ReferenceExists(reference string) (bool, error) {
	if reference == "" {
		return false, nil
	}
	var count int
	if err := r.db().QueryRow(`SELECT COUNT(*) FROM payments WHERE reference=?`, reference).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}
