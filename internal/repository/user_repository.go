package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	pkgerrors "github.com/pkg/errors"

	"github.com/iliyamo/event-seat-inventory/internal/model"
	"github.com/iliyamo/event-seat-inventory/internal/seating"
	"github.com/iliyamo/event-seat-inventory/internal/utils"
)

type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

// Create hashes password and inserts the user.
func (r *UserRepo) Create(ctx context.Context, username, name, password, role string, cost int) (model.User, error) {
	username = normalizeUsername(username)
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return model.User{}, err
	}
	_, err = r.DB.ExecContext(ctx,
		"INSERT INTO users (username, name, password_hash, role) VALUES (?,?,?,?)",
		username, strings.TrimSpace(name), hash, role)
	if err != nil {
		if isDuplicate(err) {
			return model.User{}, ErrUsernameTaken
		}
		return model.User{}, pkgerrors.Wrap(err, "insert user")
	}
	return model.User{Username: username, Name: strings.TrimSpace(name), PasswordHash: hash, Role: role}, nil
}

// GetByUsername fetches a user.  It returns seating.ErrNotFound when no
// row matches.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (model.User, error) {
	var u model.User
	err := r.DB.QueryRowContext(ctx,
		"SELECT username,name,password_hash,role,created_at FROM users WHERE username=? LIMIT 1",
		normalizeUsername(username)).Scan(&u.Username, &u.Name, &u.PasswordHash, &u.Role, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, seating.ErrNotFound
	}
	if err != nil {
		return model.User{}, pkgerrors.Wrap(err, "get user")
	}
	return u, nil
}

// CheckCredentials returns the user when password matches.  ok is false
// for an unknown user or a wrong password.
func (r *UserRepo) CheckCredentials(ctx context.Context, username, password string) (model.User, bool, error) {
	u, err := r.GetByUsername(ctx, username)
	if errors.Is(err, seating.ErrNotFound) {
		return model.User{}, false, nil
	}
	if err != nil {
		return model.User{}, false, err
	}
	if !utils.VerifyPassword(u.PasswordHash, password) {
		return model.User{}, false, nil
	}
	return u, true, nil
}

func normalizeUsername(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
