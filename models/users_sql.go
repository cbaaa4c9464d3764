package models

import (
	"context"
	"database/sql"
	"errors"

	"eventhub/db"
	"eventhub/utils"
)

type sqlUserRepo struct{ db *db.DB }

func NewSQLUserRepository(d *db.DB) UserRepository { return &sqlUserRepo{d} }

func (r *sqlUserRepo) Exists(ctx context.Context, username string) (bool, error) {
	return exists(ctx, r.db.Conn(ctx), "Error checking user",
		`SELECT 1 FROM users WHERE username = $1`, username)
}

// Create stores a new user with a bcrypt-hashed password. u.Password is left as given.
func (r *sqlUserRepo) Create(ctx context.Context, u *User) error {
	hashed, err := utils.HashPassword(u.Password)
	if errors.Is(err, utils.ErrPasswordTooLong) {
		return Invalid("Password must be at most 72 bytes")
	}
	if err != nil {
		return StoreFailure("Error during registration", err)
	}

	_, err = r.db.Conn(ctx).ExecContext(ctx,
		`INSERT INTO users (username, first_name, last_name, password, is_admin) VALUES ($1, $2, $3, $4, $5)`,
		u.Username, u.FirstName, u.LastName, hashed, u.IsAdmin)
	if db.IsUniqueViolation(err) {
		return Conflict("Username already exists")
	}
	if err != nil {
		return StoreFailure("Error during registration", err)
	}
	return nil
}

func (r *sqlUserRepo) ValidateCredentials(ctx context.Context, username, plain string) (User, error) {
	var u User
	err := r.db.Conn(ctx).QueryRowContext(ctx,
		`SELECT username, first_name, last_name, password, is_admin FROM users WHERE username = $1`, username).
		Scan(&u.Username, &u.FirstName, &u.LastName, &u.Password, &u.IsAdmin)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrInvalidCredentials
	}
	if err != nil {
		return User{}, StoreFailure("Error during login", err)
	}

	if !utils.CheckPasswordHash(plain, u.Password) {
		return User{}, ErrInvalidCredentials
	}
	u.Password = ""
	return u, nil
}
