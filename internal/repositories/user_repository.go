package repositories

import (
	"database/sql"
	"errors"

	intconfig "rentalportal/internal/config"
	"rentalportal/internal/domain"
	"rentalportal/internal/domain/models"
)

type UserRepository struct {
	DB *sql.DB
}

func (r UserRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

// GetByID returns the user without the password hash.
func (r UserRepository) GetByID(id int64) (models.User, error) {
	if id <= 0 {
		return models.User{}, domain.ValidationError{Field: "id", Msg: "must be positive"}
	}

	var u models.User
	err := r.db().QueryRow(`
		SELECT id,
		       COALESCE(name,''),
		       COALESCE(email,''),
		       COALESCE(phone,''),
		       COALESCE(role,'user'),
		       COALESCE(status,'active')
		FROM users
		WHERE id=? LIMIT 1`, id).Scan(&u.ID, &u.Name, &u.Email, &u.Phone, &u.Role, &u.Status)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, domain.NotFoundError{Resource: "user"}
		}
		return models.User{}, err
	}
	return u, nil
}

// GetByEmail returns the user plus the stored password hash for login.
func (r UserRepository) GetByEmail(email string) (models.User, string, error) {
	var (
		u    models.User
		hash string
	)
	err := r.db().QueryRow(`
		SELECT id,
		       COALESCE(name,''),
		       COALESCE(email,''),
		       COALESCE(phone,''),
		       COALESCE(password_hash,''),
		       COALESCE(role,'user'),
		       COALESCE(status,'active')
		FROM users
		WHERE email=? LIMIT 1`, email).Scan(&u.ID, &u.Name, &u.Email, &u.Phone, &hash, &u.Role, &u.Status)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, "", domain.NotFoundError{Resource: "user"}
		}
		return models.User{}, "", err
	}
	return u, hash, nil
}

// EmailExists is used to reject duplicate registrations.
func (r UserRepository) EmailExists(email string) (bool, error) {
	var count int
	if err := r.db().QueryRow(`SELECT COUNT(*) FROM users WHERE email=?`, email).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

// Create inserts a new account and returns its id.
func (r UserRepository) Create(name, email, phone, passwordHash string) (int64, error) {
	res, err := r.db().Exec(`
		INSERT INTO users (name, email, phone, password_hash, role, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, 'user', 'active', NOW(), NOW())`,
		name, email, phone, passwordHash)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// UpdateProfile updates name/phone on the account.
func (r UserRepository) UpdateProfile(id int64, name, phone string) error {
	if id <= 0 {
		return domain.ValidationError{Field: "id", Msg: "must be positive"}
	}
	_, err := r.db().Exec(`UPDATE users SET name=?, phone=?, updated_at=NOW() WHERE id=?`, name, phone, id)
	return err
}
