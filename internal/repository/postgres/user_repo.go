package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vedran77/chatty/internal/domain"
)

const userColumns = "id, email, full_name, password_hash, profile_picture, created_at, updated_at"

type UserRepo struct {
	pool *pgxpool.Pool
}

func NewUserRepo(pool *pgxpool.Pool) *UserRepo {
	return &UserRepo{pool: pool}
}

func (r *UserRepo) Create(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (id, email, full_name, password_hash, profile_picture, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.pool.Exec(ctx, query,
		user.ID, user.Email, user.FullName, user.PasswordHash,
		user.ProfilePicture, user.CreatedAt, user.UpdatedAt,
	)
	return err
}

func (r *UserRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return r.scanUser(r.pool.QueryRow(ctx, "SELECT "+userColumns+" FROM users WHERE id = $1", id))
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.scanUser(r.pool.QueryRow(ctx, "SELECT "+userColumns+" FROM users WHERE lower(email) = lower($1)", email))
}

// ListExcept returns every user but id, newest first.
func (r *UserRepo) ListExcept(ctx context.Context, id uuid.UUID) ([]domain.User, error) {
	rows, err := r.pool.Query(ctx, "SELECT "+userColumns+" FROM users WHERE id <> $1 ORDER BY created_at DESC", id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		var u domain.User
		if err := rows.Scan(
			&u.ID, &u.Email, &u.FullName, &u.PasswordHash,
			&u.ProfilePicture, &u.CreatedAt, &u.UpdatedAt,
		); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *UserRepo) UpdateProfilePicture(ctx context.Context, id uuid.UUID, url string) (*domain.User, error) {
	query := `
		UPDATE users SET profile_picture = $1, updated_at = $2
		WHERE id = $3
		RETURNING ` + userColumns
	return r.scanUser(r.pool.QueryRow(ctx, query, url, time.Now(), id))
}

func (r *UserRepo) scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	err := row.Scan(
		&u.ID, &u.Email, &u.FullName, &u.PasswordHash,
		&u.ProfilePicture, &u.CreatedAt, &u.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}
