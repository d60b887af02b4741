package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/aparcame/parking-reservation/internal/model"
	"github.com/aparcame/parking-reservation/internal/utils"
)

// UserRepo persists registered drivers. Phone numbers are unique at
// the database level; duplicate inserts surface as ErrPhoneExists.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

// Create inserts a user and returns its ID. The password is hashed
// with bcrypt before it touches the database.
func (r *UserRepo) Create(ctx context.Context, name string, email *string, phone, plate, password string, cost int) (uint64, error) {
	phone = strings.TrimSpace(phone)
	plate = strings.ToUpper(strings.TrimSpace(plate))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (name, email, phone, license_plate, password_hash) VALUES (?,?,?,?,?)",
		name, email, phone, plate, hash)
	if err != nil {
		// 1062 = duplicate entry on the unique phone index
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return 0, ErrPhoneExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

const userCols = "id,name,email,phone,license_plate,password_hash,created_at,updated_at"

func scanUser(row *sql.Row) (model.User, error) {
	var u model.User
	var email sql.NullString
	err := row.Scan(&u.ID, &u.Name, &email, &u.Phone, &u.LicensePlate,
		&u.PasswordHash, &u.CreatedAt, &u.UpdatedAt)
	if email.Valid {
		e := email.String
		u.Email = &e
	}
	return u, err
}

// GetByPhone fetches a user by phone number.
func (r *UserRepo) GetByPhone(ctx context.Context, phone string) (model.User, error) {
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userCols+" FROM users WHERE phone=? LIMIT 1", strings.TrimSpace(phone)))
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userCols+" FROM users WHERE id=? LIMIT 1", id))
}
