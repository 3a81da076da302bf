package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"kinship/models"
)

const userColumns = "id, first_name, last_name, email, age, password_hash, created_at, updated_at"

func scanUser(row interface{ Scan(...any) error }) (models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.Age, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

// CreateUser inserts a user and returns it with its new id. Duplicate email
// or name combinations come back as *ConstraintError.
func (s *Store) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	now := time.Now()
	result, err := s.db.ExecContext(ctx,
		"INSERT INTO users (first_name, last_name, email, age, password_hash, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
		user.FirstName, user.LastName, user.Email, user.Age, user.PasswordHash, now, now,
	)
	if err != nil {
		return models.User{}, fmt.Errorf("failed to create user: %w", classify(err))
	}

	id, err := result.LastInsertId()
	if err != nil {
		return models.User{}, fmt.Errorf("failed to read user id: %w", err)
	}
	user.ID = id
	user.CreatedAt = now
	user.UpdatedAt = now
	return user, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	user, err := scanUser(s.db.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email = ?", email,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrNotFound
	}
	if err != nil {
		return models.User{}, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

func (s *Store) GetUserByID(ctx context.Context, id int64) (models.User, error) {
	user, err := scanUser(s.db.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id = ?", id,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrNotFound
	}
	if err != nil {
		return models.User{}, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

func (s *Store) UserExists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, "SELECT EXISTS(SELECT 1 FROM users WHERE id = ?)", id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check user: %w", err)
	}
	return exists, nil
}

// UpdateUser applies the non-nil fields of update and returns the stored row.
func (s *Store) UpdateUser(ctx context.Context, id int64, update models.UserUpdate) (models.User, error) {
	_, err := s.db.ExecContext(ctx, `
		UPDATE users SET
			first_name = COALESCE(?, first_name),
			last_name = COALESCE(?, last_name),
			email = COALESCE(?, email),
			age = COALESCE(?, age),
			updated_at = ?
		WHERE id = ?
	`, nullString(update.FirstName), nullString(update.LastName), nullString(update.Email), nullInt(update.Age), time.Now(), id)
	if err != nil {
		return models.User{}, fmt.Errorf("failed to update user: %w", classify(err))
	}
	return s.GetUserByID(ctx, id)
}

// SearchUsers lists users other than excludeID whose names or age contain
// search, case-insensitively. An empty search lists everyone.
func (s *Store) SearchUsers(ctx context.Context, excludeID int64, search string) ([]models.User, error) {
	query := "SELECT " + userColumns + " FROM users WHERE id != ?"
	args := []any{excludeID}

	if term := strings.ToLower(strings.TrimSpace(search)); term != "" {
		query += " AND (LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ? OR CAST(age AS CHAR) LIKE ?)"
		pattern := "%" + term + "%"
		args = append(args, pattern, pattern, pattern)
	}
	query += " ORDER BY first_name, last_name, id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search users: %w", err)
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to search users: %w", err)
	}
	return users, nil
}

func nullString(v *string) sql.NullString {
	if v == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *v, Valid: true}
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}
