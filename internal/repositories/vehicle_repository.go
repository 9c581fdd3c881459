package repositories

import (
	"database/sql"
	"encoding/json"
	"errors"
	"strings"

	intconfig "rentalportal/internal/config"
	"rentalportal/internal/db"
	"rentalportal/internal/domain"
	"rentalportal/internal/domain/models"
	"rentalportal/internal/utils"
)

type VehicleRepository struct {
	DB *sql.DB
}

func (r VehicleRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

const vehicleColumns = `
	id,
	COALESCE(spec_id,0),
	COALESCE(make,''),
	COALESCE(model,''),
	COALESCE(year,0),
	COALESCE(license_plate,''),
	COALESCE(vin,''),
	COALESCE(mileage,0),
	COALESCE(daily_rate,0),
	COALESCE(status,'available'),
	COALESCE(features,'')`

func scanVehicle(row interface{ Scan(...any) error }) (models.Vehicle, error) {
	var (
		v        models.Vehicle
		features string
	)
	err := row.Scan(
		&v.ID, &v.SpecID, &v.Make, &v.Model, &v.Year,
		&v.LicensePlate, &v.VIN, &v.Mileage, &v.DailyRate, &v.Status, &features,
	)
	if err != nil {
		return models.Vehicle{}, err
	}
	v.Features = utils.ParseFeatureList(features)
	return v, nil
}

// List returns vehicles, optionally filtered by a free-text query against
// make/model/plate and by availability status.
func (r VehicleRepository) List(q, status string, limit, offset int) ([]models.Vehicle, error) {
	where := []string{}
	args := []any{}

	if q = strings.TrimSpace(q); q != "" {
		where = append(where, "(make LIKE ? OR model LIKE ? OR license_plate LIKE ?)")
		like := "%" + q + "%"
		args = append(args, like, like, like)
	}
	if status = strings.TrimSpace(status); status != "" {
		where = append(where, "status = ?")
		args = append(args, status)
	}

	query := "SELECT " + vehicleColumns + " FROM vehicles"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY id DESC"
	if limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, limit, offset)
	}

	rows, err := r.db().Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Vehicle{}
	for rows.Next() {
		v, err := scanVehicle(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (r VehicleRepository) GetByID(id int64) (models.Vehicle, error) {
	if id <= 0 {
		return models.Vehicle{}, domain.ValidationError{Field: "id", Msg: "must be positive"}
	}
	row := r.db().QueryRow("SELECT "+vehicleColumns+" FROM vehicles WHERE id=? LIMIT 1", id)
	v, err := scanVehicle(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Vehicle{}, domain.NotFoundError{Resource: "vehicle"}
		}
		return models.Vehicle{}, err
	}
	return v, nil
}

func (r VehicleRepository) Create(v models.Vehicle) (int64, error) {
	features, err := json.Marshal(v.Features)
	if err != nil {
		return 0, err
	}
	res, err := r.db().Exec(`
		INSERT INTO vehicles (spec_id, make, model, year, license_plate, vin, mileage, daily_rate, status, features, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, NOW(), NOW())`,
		v.SpecID, v.Make, v.Model, v.Year, db.NullIfEmpty(v.LicensePlate), db.NullIfEmpty(v.VIN), v.Mileage, v.DailyRate,
		utils.FirstNonEmpty(v.Status, "available"), string(features))
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// Update applies a PATCH-style update; only present fields change.
func (r VehicleRepository) Update(id int64, upd models.VehicleUpdate) error {
	if id <= 0 {
		return domain.ValidationError{Field: "id", Msg: "must be positive"}
	}

	sets := []string{}
	args := []any{}
	set := func(col string, val any) {
		sets = append(sets, col+"=?")
		args = append(args, val)
	}

	if upd.Make != nil {
		set("make", *upd.Make)
	}
	if upd.Model != nil {
		set("model", *upd.Model)
	}
	if upd.Year != nil {
		set("year", *upd.Year)
	}
	if upd.LicensePlate != nil {
		set("license_plate", *upd.LicensePlate)
	}
	if upd.VIN != nil {
		set("vin", *upd.VIN)
	}
	if upd.Mileage != nil {
		set("mileage", *upd.Mileage)
	}
	if upd.DailyRate != nil {
		set("daily_rate", *upd.DailyRate)
	}
	if upd.Status != nil {
		set("status", *upd.Status)
	}
	if upd.Features != nil {
		features, err := json.Marshal(upd.Features)
		if err != nil {
			return err
		}
		set("features", string(features))
	}
	if len(sets) == 0 {
		return nil
	}
	sets = append(sets, "updated_at=NOW()")
	args = append(args, id)

	_, err := r.db().Exec("UPDATE vehicles SET "+strings.Join(sets, ", ")+" WHERE id=?", args...)
	return err
}

func (r VehicleRepository) Delete(id int64) error {
	if id <= 0 {
		return domain.ValidationError{Field: "id", Msg: "must be positive"}
	}
	res, err := r.db().Exec("DELETE FROM vehicles WHERE id=?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.NotFoundError{Resource: "vehicle"}
	}
	return nil
}
