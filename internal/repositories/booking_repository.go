package repositories

import (
	"database/sql"
	"errors"

	intconfig "rentalportal/internal/config"
	"rentalportal/internal/domain"
	"rentalportal/internal/domain/models"
)

type BookingRepository struct {
	DB *sql.DB
}

func (r BookingRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

const bookingColumns = `
	id,
	COALESCE(user_id,0),
	COALESCE(vehicle_id,0),
	COALESCE(pickup_date,''),
	COALESCE(dropoff_date,''),
	COALESCE(pickup_point,''),
	COALESCE(dropoff_point,''),
	COALESCE(days,0),
	COALESCE(daily_rate,0),
	COALESCE(total_amount,0),
	COALESCE(status,'pending'),
	COALESCE(payment_status,'unpaid'),
	COALESCE(payment_method,''),
	COALESCE(DATE_FORMAT(created_at, '%Y-%m-%d %H:%i:%s'),'')`

func scanBooking(row interface{ Scan(...any) error }) (models.Booking, error) {
	var b models.Booking
	err := row.Scan(
		&b.ID, &b.UserID, &b.VehicleID,
		&b.PickupDate, &b.DropoffDate, &b.PickupPoint, &b.DropoffPoint,
		&b.Days, &b.DailyRate, &b.TotalAmount,
		&b.Status, &b.PaymentStatus, &b.PaymentMethod, &b.CreatedAt,
	)
	return b, err
}

func (r BookingRepository) GetByID(id int64) (models.Booking, error) {
	if id <= 0 {
		return models.Booking{}, domain.ValidationError{Field: "id", Msg: "must be positive"}
	}
	row := r.db().QueryRow("SELECT "+bookingColumns+" FROM bookings WHERE id=? LIMIT 1", id)
	b, err := scanBooking(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Booking{}, domain.NotFoundError{Resource: "booking"}
		}
		return models.Booking{}, err
	}
	return b, nil
}

// ListByUser returns a customer's bookings, newest first.
func (r BookingRepository) ListByUser(userID int64) ([]models.Booking, error) {
	if userID <= 0 {
		return nil, domain.ValidationError{Field: "user_id", Msg: "must be positive"}
	}
	rows, err := r.db().Query("SELECT "+bookingColumns+" FROM bookings WHERE user_id=? ORDER BY id DESC", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Booking{}
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r BookingRepository) Create(b models.Booking) (int64, error) {
	res, err := r.db().Exec(`
		INSERT INTO bookings (user_id, vehicle_id, pickup_date, dropoff_date, pickup_point, dropoff_point,
		                      days, daily_rate, total_amount, status, payment_status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, NOW(), NOW())`,
		b.UserID, b.VehicleID, b.PickupDate, b.DropoffDate, b.PickupPoint, b.DropoffPoint,
		b.Days, b.DailyRate, b.TotalAmount, models.BookingStatusPending, models.PaymentStatusUnpaid)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// MarkPaid flips the booking to confirmed/completed after settlement.
func (r BookingRepository) MarkPaid(id int64, method string) error {
	if id <= 0 {
		return domain.ValidationError{Field: "id", Msg: "must be positive"}
	}
	res, err := r.db().Exec(`
		UPDATE bookings
		SET payment_status=?, payment_method=?, status=?, updated_at=NOW()
		WHERE id=?`,
		models.PaymentStatusCompleted, method, models.BookingStatusConfirmed, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.NotFoundError{Resource: "booking"}
	}
	return nil
}

// Cancel marks a booking cancelled; paid bookings cannot be cancelled here.
func (r BookingRepository) Cancel(id int64) error {
	if id <= 0 {
		return domain.ValidationError{Field: "id", Msg: "must be positive"}
	}
	res, err := r.db().Exec(`
		UPDATE bookings SET status=?, updated_at=NOW()
		WHERE id=? AND payment_status <> ?`,
		models.BookingStatusCancelled, id, models.PaymentStatusCompleted)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ConflictError{Resource: "booking", Msg: "not found or already paid"}
	}
	return nil
}
