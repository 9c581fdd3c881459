package repositories

import (
	"database/sql"
	"errors"

	intconfig "rentalportal/internal/config"
	"rentalportal/internal/domain"
	"rentalportal/internal/domain/models"
)

type TicketRepository struct {
	DB *sql.DB
}

func (r TicketRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

const ticketColumns = `
	id,
	COALESCE(user_id,0),
	COALESCE(booking_id,0),
	COALESCE(subject,''),
	COALESCE(body,''),
	COALESCE(status,'open'),
	COALESCE(DATE_FORMAT(created_at, '%Y-%m-%d %H:%i:%s'),''),
	COALESCE(DATE_FORMAT(updated_at, '%Y-%m-%d %H:%i:%s'),'')`

func scanTicket(row interface{ Scan(...any) error }) (models.SupportTicket, error) {
	var t models.SupportTicket
	err := row.Scan(&t.ID, &t.UserID, &t.BookingID, &t.Subject, &t.Body, &t.Status, &t.CreatedAt, &t.UpdatedAt)
	return t, err
}

func (r TicketRepository) Create(t models.SupportTicket) (int64, error) {
	res, err := r.db().Exec(`
		INSERT INTO support_tickets (user_id, booking_id, subject, body, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, NOW(), NOW())`,
		t.UserID, t.BookingID, t.Subject, t.Body, models.TicketStatusOpen)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r TicketRepository) GetByID(id int64) (models.SupportTicket, error) {
	if id <= 0 {
		return models.SupportTicket{}, domain.ValidationError{Field: "id", Msg: "must be positive"}
	}
	row := r.db().QueryRow("SELECT "+ticketColumns+" FROM support_tickets WHERE id=? LIMIT 1", id)
	t, err := scanTicket(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.SupportTicket{}, domain.NotFoundError{Resource: "ticket"}
		}
		return models.SupportTicket{}, err
	}
	return t, nil
}

func (r TicketRepository) ListByUser(userID int64) ([]models.SupportTicket, error) {
	if userID <= 0 {
		return nil, domain.ValidationError{Field: "user_id", Msg: "must be positive"}
	}
	rows, err := r.db().Query("SELECT "+ticketColumns+" FROM support_tickets WHERE user_id=? ORDER BY id DESC", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.SupportTicket{}
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r TicketRepository) UpdateStatus(id int64, status string) error {
	if id <= 0 {
		return domain.ValidationError{Field: "id", Msg: "must be positive"}
	}
	res, err := r.db().Exec(`UPDATE support_tickets SET status=?, updated_at=NOW() WHERE id=?`, status, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.NotFoundError{Resource: "ticket"}
	}
	return nil
}
