package services

import (
	"testing"

	"rentalportal/internal/checkout"
	"rentalportal/internal/domain"
	"rentalportal/internal/repositories"

	"github.com/DATA-DOG/go-sqlmock"
)

var bookingCols = []string{
	"id", "user_id", "vehicle_id", "pickup_date", "dropoff_date",
	"pickup_point", "dropoff_point", "days", "daily_rate", "total_amount",
	"status", "payment_status", "payment_method", "created_at",
}

var paymentCols = []string{
	"id", "booking_id", "user_id", "amount", "commission_fee", "net_amount",
	"currency", "payment_method", "status", "transaction_id", "reference",
	"payer_phone", "vehicle_make", "vehicle_model", "vehicle_year",
	"license_plate", "created_at",
}

func bookingRow(id, userID int64, paymentStatus string) *sqlmock.Rows {
	return sqlmock.NewRows(bookingCols).AddRow(
		id, userID, 9, "2026-09-01", "2026-09-03", "Airport", "Airport",
		2, 500.0, 1000.0, "pending", paymentStatus, "", "2026-08-30 10:00:00")
}

func settlementRecord() checkout.SettlementRecord {
	return checkout.SettlementRecord{
		BookingID:     5,
		UserID:        2,
		Amount:        1000,
		PaymentMethod: "mobile-money",
		Status:        "completed",
		TransactionID: "PSK-889",
		Reference:     "BK-5-1756600000000",
		Phone:         "712345678",
		Currency:      "KES",
		VehicleMake:   "Toyota",
		VehicleModel:  "Axio",
		VehicleYear:   2019,
		LicensePlate:  "KDA 123A",
		// Client-supplied split is deliberately wrong; it must be recomputed.
		CommissionFee: 999,
		NetAmount:     1,
	}
}

func TestRecordSettlementRecomputesSplit(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("FROM bookings WHERE id=").WithArgs(int64(5)).
		WillReturnRows(bookingRow(5, 2, "unpaid"))
	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM payments WHERE reference=").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectExec("INSERT INTO payments").
		WithArgs(int64(5), int64(2), 1000.0, 20.0, 980.0, "KES",
			"mobile-money", "completed", "PSK-889", "BK-5-1756600000000", "712345678",
			"Toyota", "Axio", 2019, "KDA 123A").
		WillReturnResult(sqlmock.NewResult(7, 1))
	mock.ExpectExec("UPDATE bookings").
		WillReturnResult(sqlmock.NewResult(0, 1))

	svc := PaymentService{
		PaymentRepo: repositories.PaymentRepository{DB: db},
		BookingRepo: repositories.BookingRepository{DB: db},
	}
	p, err := svc.RecordSettlement(settlementRecord())
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if p.ID != 7 {
		t.Fatalf("payment id = %d, want 7", p.ID)
	}
	if p.CommissionFee != 20 || p.NetAmount != 980 {
		t.Fatalf("split not recomputed server-side: fee=%v net=%v", p.CommissionFee, p.NetAmount)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestRecordSettlementRejectsForeignBooking(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("FROM bookings WHERE id=").WithArgs(int64(5)).
		WillReturnRows(bookingRow(5, 99, "unpaid"))

	svc := PaymentService{
		PaymentRepo: repositories.PaymentRepository{DB: db},
		BookingRepo: repositories.BookingRepository{DB: db},
	}
	_, err = svc.RecordSettlement(settlementRecord())
	if !domain.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestRecordSettlementUnknownBookingIsNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("FROM bookings WHERE id=").WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows(bookingCols))

	svc := PaymentService{
		PaymentRepo: repositories.PaymentRepository{DB: db},
		BookingRepo: repositories.BookingRepository{DB: db},
	}
	_, err = svc.RecordSettlement(settlementRecord())
	if !domain.IsNotFound(err) {
		t.Fatalf("expected not-found error, got %v", err)
	}
}

func TestRecordSettlementRepeatedReferenceReturnsExisting(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	rec := settlementRecord()

	mock.ExpectQuery("FROM bookings WHERE id=").WithArgs(int64(5)).
		WillReturnRows(bookingRow(5, 2, "completed"))
	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM payments WHERE reference=").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery("FROM payments WHERE booking_id=").WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows(paymentCols).AddRow(
			7, 5, 2, 1000.0, 20.0, 980.0, "KES", "mobile-money", "completed",
			"PSK-889", rec.Reference, "712345678", "Toyota", "Axio", 2019,
			"KDA 123A", "2026-08-30 10:05:00"))

	svc := PaymentService{
		PaymentRepo: repositories.PaymentRepository{DB: db},
		BookingRepo: repositories.BookingRepository{DB: db},
	}
	p, err := svc.RecordSettlement(rec)
	if err != nil {
		t.Fatalf("repeat submission should be idempotent, got %v", err)
	}
	if p.ID != 7 {
		t.Fatalf("expected the existing payment back, got id %d", p.ID)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestRecordSettlementValidatesInputs(t *testing.T) {
	svc := PaymentService{}

	cases := []struct {
		name   string
		mutate func(*checkout.SettlementRecord)
	}{
		{"missing booking", func(r *checkout.SettlementRecord) { r.BookingID = 0 }},
		{"missing user", func(r *checkout.SettlementRecord) { r.UserID = 0 }},
		{"zero amount", func(r *checkout.SettlementRecord) { r.Amount = 0 }},
		{"blank transaction id", func(r *checkout.SettlementRecord) { r.TransactionID = "  " }},
	}
	for _, tc := range cases {
		rec := settlementRecord()
		tc.mutate(&rec)
		if _, err := svc.RecordSettlement(rec); !domain.IsValidation(err) {
			t.Fatalf("%s: expected validation error, got %v", tc.name, err)
		}
	}
}
