package repo

import (
	"context"

	"github.com/google/uuid"
)

// UserRepo persists accounts.
type UserRepo struct {
	DB DBTX
}

const userColumns = `id, name, email, password_hash, roles, created_at, updated_at`

// Create inserts a user with the default customer role.
func (r UserRepo) Create(ctx context.Context, name, email, passwordHash string) (User, error) {
	row := r.DB.QueryRow(ctx, `
		INSERT INTO users (name, email, password_hash)
		VALUES ($1, $2, $3)
		RETURNING `+userColumns, name, email, passwordHash)
	return scanUser(row)
}

// GetByEmail loads a user by normalized email.
func (r UserRepo) GetByEmail(ctx context.Context, email string) (User, error) {
	row := r.DB.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	return scanUser(row)
}

// GetByID loads a user by identifier.
func (r UserRepo) GetByID(ctx context.Context, id uuid.UUID) (User, error) {
	row := r.DB.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

func scanUser(row rowScanner) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Roles, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}
