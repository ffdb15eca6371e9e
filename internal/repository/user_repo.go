package repository

import (
	"context"
	"errors"
	"fmt"

	"mess_finder/internal/model"

	"github.com/jackc/pgx/v5"
)

var ErrDuplicateEmail = errors.New("email already registered")

// UserRepository defines operations for user data
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByID(ctx context.Context, id int) (*model.User, error)
	FindAll(ctx context.Context) ([]model.User, error)
	Delete(ctx context.Context, id int) (bool, error)
}

type userRepository struct {
	db DBTX
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db DBTX) UserRepository {
	return &userRepository{db: db}
}

const userColumns = `id, name, email, password_hash, phone, role, created_at`

func scanUser(row pgx.Row, user *model.User) error {
	return row.Scan(&user.ID, &user.Name, &user.Email, &user.PasswordHash, &user.Phone, &user.Role, &user.CreatedAt)
}

// Create inserts a new user; the unique email index reports duplicates
func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	sql := `INSERT INTO users (name, email, password_hash, phone, role, created_at)
            VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
	err := r.db.QueryRow(ctx, sql, user.Name, user.Email, user.PasswordHash, user.Phone, user.Role, user.CreatedAt).Scan(&user.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// FindByEmail retrieves a user by login email; nil when absent
func (r *userRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	user := &model.User{}
	sql := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	if err := scanUser(r.db.QueryRow(ctx, sql, email), user); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}
	return user, nil
}

// FindByID retrieves a user by their ID
func (r *userRepository) FindByID(ctx context.Context, id int) (*model.User, error) {
	user := &model.User{}
	sql := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	if err := scanUser(r.db.QueryRow(ctx, sql, id), user); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // User not found
		}
		return nil, fmt.Errorf("failed to find user by ID: %w", err)
	}
	return user, nil
}

// FindAll lists every user, oldest first
func (r *userRepository) FindAll(ctx context.Context) ([]model.User, error) {
	rows, err := r.db.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	users := []model.User{}
	for rows.Next() {
		var u model.User
		if err := scanUser(rows, &u); err != nil {
			return nil, fmt.Errorf("failed to scan user row: %w", err)
		}
		users = append(users, u)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating user rows: %w", err)
	}
	return users, nil
}

// Delete removes a user; their listings go with them through ON DELETE CASCADE
func (r *userRepository) Delete(ctx context.Context, id int) (bool, error) {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete user: %w", err)
	}
	return cmdTag.RowsAffected() > 0, nil
}
