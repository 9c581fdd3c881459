package repositories

import (
	"database/sql"

	intconfig "rentalportal/internal/config"
	"rentalportal/internal/domain"
	"rentalportal/internal/domain/models"
)

type ReviewRepository struct {
	DB *sql.DB
}

func (r ReviewRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

func (r ReviewRepository) Create(rev models.Review) (int64, error) {
	res, err := r.db().Exec(`
		INSERT INTO reviews (vehicle_id, user_id, rating, comment, created_at)
		VALUES (?, ?, ?, ?, NOW())`,
		rev.VehicleID, rev.UserID, rev.Rating, rev.Comment)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// ListByVehicle returns reviews joined with the reviewer's name.
func (r ReviewRepository) ListByVehicle(vehicleID int64) ([]models.Review, error) {
	if vehicleID <= 0 {
		return nil, domain.ValidationError{Field: "vehicle_id", Msg: "must be positive"}
	}
	rows, err := r.db().Query(`
		SELECT r.id,
		       COALESCE(r.vehicle_id,0),
		       COALESCE(r.user_id,0),
		       COALESCE(u.name,''),
		       COALESCE(r.rating,0),
		       COALESCE(r.comment,''),
		       COALESCE(DATE_FORMAT(r.created_at, '%Y-%m-%d %H:%i:%s'),'')
		FROM reviews r
		LEFT JOIN users u ON u.id = r.user_id
		WHERE r.vehicle_id=?
		ORDER BY r.id DESC`, vehicleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Review{}
	for rows.Next() {
		var rev models.Review
		if err := rows.Scan(&rev.ID, &rev.VehicleID, &rev.UserID, &rev.UserName, &rev.Rating, &rev.Comment, &rev.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, rev)
	}
	return out, rows.Err()
}
