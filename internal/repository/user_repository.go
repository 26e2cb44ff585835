package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/medvisit/scheduler/internal/model"
	"github.com/medvisit/scheduler/internal/repository/base"
)

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

const userCols = `id, username, password_hash, role, name, specialization, is_banned, refresh_token, created_at`

func scanUser(row pgx.Row) (*model.User, error) {
	var u model.User
	err := row.Scan(
		&u.ID,
		&u.Username,
		&u.PasswordHash,
		&u.Role,
		&u.Name,
		&u.Specialization,
		&u.IsBanned,
		&u.RefreshToken,
		&u.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Create inserts a user row.
func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	query := `
		INSERT INTO users (username, password_hash, role, name, specialization)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`

	err := base.Conn(ctx, r.pool).QueryRow(
		ctx, query,
		user.Username,
		user.PasswordHash,
		user.Role,
		user.Name,
		user.Specialization,
	).Scan(&user.ID, &user.CreatedAt)

	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}

	return nil
}

// GetByID returns the user or nil.
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	user, err := scanUser(base.Conn(ctx, r.pool).QueryRow(ctx, `SELECT `+userCols+` FROM users WHERE id = $1`, id))
	if base.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user by id: %w", err)
	}

	return user, nil
}

// GetByUsername returns the user or nil.
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	user, err := scanUser(base.Conn(ctx, r.pool).QueryRow(ctx, `SELECT `+userCols+` FROM users WHERE username = $1`, username))
	if base.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user by username: %w", err)
	}

	return user, nil
}

// UpdateRefreshToken stores (or clears, with nil) the user's refresh token.
func (r *UserRepository) UpdateRefreshToken(ctx context.Context, userID int64, token *string) error {
	tag, err := base.Conn(ctx, r.pool).Exec(ctx, `UPDATE users SET refresh_token = $2 WHERE id = $1`, userID, token)
	if err != nil {
		return fmt.Errorf("update refresh token: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update refresh token: user %d not found", userID)
	}

	return nil
}

// SetBanned flips the user's ban flag.
func (r *UserRepository) SetBanned(ctx context.Context, userID int64, banned bool) error {
	tag, err := base.Conn(ctx, r.pool).Exec(ctx, `UPDATE users SET is_banned = $2 WHERE id = $1`, userID, banned)
	if err != nil {
		return fmt.Errorf("set banned: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("set banned: user %d not found", userID)
	}

	return nil
}

// ListAll returns every user, for administration.
func (r *UserRepository) ListAll(ctx context.Context) ([]*model.User, error) {
	rows, err := base.Conn(ctx, r.pool).Query(ctx, `SELECT `+userCols+` FROM users ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []*model.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, user)
	}

	return users, rows.Err()
}

// ListDoctors returns the public projection of every doctor.
func (r *UserRepository) ListDoctors(ctx context.Context) ([]*model.DoctorPublic, error) {
	query := `SELECT id, name, specialization FROM users WHERE role = 'doctor' ORDER BY name`

	rows, err := base.Conn(ctx, r.pool).Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list doctors: %w", err)
	}
	defer rows.Close()

	var doctors []*model.DoctorPublic
	for rows.Next() {
		var d model.DoctorPublic
		if err := rows.Scan(&d.ID, &d.Name, &d.Specialization); err != nil {
			return nil, fmt.Errorf("scan doctor: %w", err)
		}
		doctors = append(doctors, &d)
	}

	return doctors, rows.Err()
}

// ExistsAdmin checks whether any admin account exists.
func (r *UserRepository) ExistsAdmin(ctx context.Context) (bool, error) {
	var exists bool
	err := base.Conn(ctx, r.pool).QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE role = 'admin')`).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check admin exists: %w", err)
	}

	return exists, nil
}
