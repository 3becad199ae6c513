package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"shop-api/internal/domain"

	"github.com/google/uuid"
)

const userColumns = `id, full_name, email, password_hash, role, creation_date, last_updated, last_updated_by`

type userRepository struct {
	db *sql.DB
}

// NewUserRepository creates a postgres backed UserRepository
func NewUserRepository(db *sql.DB) UserRepository {
	return &userRepository{db: db}
}

// List retrieves every user ordered by full name
func (r *userRepository) List(ctx context.Context) ([]*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY full_name ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	users := []*domain.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating users: %w", err)
	}

	return users, nil
}

// FindByID retrieves a user by ID
func (r *userRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	userID, err := parseUUID(id)
	if err != nil {
		return nil, err
	}
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, userID)
}

// FindByEmail retrieves a user by email. Emails are compared case-insensitively.
func (r *userRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, normalizeEmail(email))
}

func (r *userRepository) findOne(ctx context.Context, query string, arg interface{}) (*domain.User, error) {
	user, err := scanUser(r.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

// Create inserts a new user. A duplicate email is reported as ErrUserAlreadyExists.
func (r *userRepository) Create(ctx context.Context, user *domain.User) (*domain.InsertResult, error) {
	id := uuid.New()
	user.Email = normalizeEmail(user.Email)

	query := `
		INSERT INTO users (id, full_name, email, password_hash, role, creation_date)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		id,
		user.FullName,
		user.Email,
		user.PasswordHash,
		user.Role,
		user.CreationDate,
	)
	if err != nil {
		if isUniqueViolation(err, "users_email_key") {
			return nil, ErrUserAlreadyExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	user.ID = id.String()
	return &domain.InsertResult{Acknowledged: true, InsertedID: user.ID}, nil
}

// Update writes only the supplied fields
func (r *userRepository) Update(ctx context.Context, id string, changes domain.UserChanges) (int64, error) {
	userID, err := parseUUID(id)
	if err != nil {
		return 0, err
	}

	set := &setClause{}
	if changes.FullName != nil {
		set.add("full_name", *changes.FullName)
	}
	if changes.Email != nil {
		set.add("email", normalizeEmail(*changes.Email))
	}
	if changes.PasswordHash != nil {
		set.add("password_hash", *changes.PasswordHash)
	}
	if changes.LastUpdated != nil {
		set.add("last_updated", *changes.LastUpdated)
	}
	if changes.LastUpdatedBy != nil {
		set.add("last_updated_by", *changes.LastUpdatedBy)
	}
	if set.empty() {
		return 0, nil
	}

	query, args := set.statement("users", userID)
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		if isUniqueViolation(err, "users_email_key") {
			return 0, ErrUserAlreadyExists
		}
		return 0, fmt.Errorf("failed to update user: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected, nil
}

func scanUser(row rowScanner) (*domain.User, error) {
	var (
		id            uuid.UUID
		lastUpdated   sql.NullTime
		lastUpdatedBy sql.NullString
	)
	user := &domain.User{}
	err := row.Scan(
		&id,
		&user.FullName,
		&user.Email,
		&user.PasswordHash,
		&user.Role,
		&user.CreationDate,
		&lastUpdated,
		&lastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}

	user.ID = id.String()
	if lastUpdated.Valid {
		t := lastUpdated.Time
		user.LastUpdated = &t
	}
	user.LastUpdatedBy = lastUpdatedBy.String
	return user, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
