package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"staybook/internal/domain"
)

// UserRepository define el contrato de persistencia para usuarios.
type UserRepository interface {
	Create(ctx context.Context, user domain.User) error
	GetByID(ctx context.Context, id string) (domain.User, error)
	GetByEmail(ctx context.Context, email string) (domain.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ExistsByPhone(ctx context.Context, phone string) (bool, error)
	SetVerified(ctx context.Context, id string, at time.Time) error
	SetPassword(ctx context.Context, id, passwordHash string, at time.Time) error
	UpdateProfile(ctx context.Context, user domain.User) error
}

// PgUserRepository implementa UserRepository usando pgxpool.
type PgUserRepository struct {
	pool *pgxpool.Pool
}

func NewPgUserRepository(pool *pgxpool.Pool) *PgUserRepository {
	return &PgUserRepository{pool: pool}
}

const userColumns = `
	id, full_name, email, phone_number, date_of_birth, gender,
	password_hash, verified, avatar_url, created_at, updated_at
`

func (r *PgUserRepository) Create(ctx context.Context, user domain.User) error {
	const query = `
		INSERT INTO users (id, full_name, email, phone_number, date_of_birth, gender,
			password_hash, verified, avatar_url, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := r.pool.Exec(ctx, query,
		user.ID,
		user.FullName,
		user.Email,
		user.PhoneNumber,
		user.DateOfBirth,
		user.Gender,
		user.PasswordHash,
		user.Verified,
		user.AvatarURL,
		user.CreatedAt,
	)
	return err
}

func (r *PgUserRepository) GetByID(ctx context.Context, id string) (domain.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.scanUser(ctx, query, id)
}

func (r *PgUserRepository) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return r.scanUser(ctx, query, email)
}

func (r *PgUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)`
	var exists bool
	err := r.pool.QueryRow(ctx, query, email).Scan(&exists)
	return exists, err
}

func (r *PgUserRepository) ExistsByPhone(ctx context.Context, phone string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM users WHERE phone_number = $1)`
	var exists bool
	err := r.pool.QueryRow(ctx, query, phone).Scan(&exists)
	return exists, err
}

func (r *PgUserRepository) SetVerified(ctx context.Context, id string, at time.Time) error {
	const query = `UPDATE users SET verified = TRUE, updated_at = $2 WHERE id = $1`
	_, err := r.pool.Exec(ctx, query, id, at)
	return err
}

func (r *PgUserRepository) SetPassword(ctx context.Context, id, passwordHash string, at time.Time) error {
	const query = `UPDATE users SET password_hash = $2, updated_at = $3 WHERE id = $1`
	_, err := r.pool.Exec(ctx, query, id, passwordHash, at)
	return err
}

func (r *PgUserRepository) UpdateProfile(ctx context.Context, user domain.User) error {
	const query = `
		UPDATE users
		SET full_name = $2, phone_number = $3, date_of_birth = $4,
			gender = $5, avatar_url = $6, updated_at = $7
		WHERE id = $1
	`
	_, err := r.pool.Exec(ctx, query,
		user.ID,
		user.FullName,
		user.PhoneNumber,
		user.DateOfBirth,
		user.Gender,
		user.AvatarURL,
		user.UpdatedAt,
	)
	return err
}

func (r *PgUserRepository) scanUser(ctx context.Context, query string, arg any) (domain.User, error) {
	var u domain.User
	err := r.pool.QueryRow(ctx, query, arg).Scan(
		&u.ID,
		&u.FullName,
		&u.Email,
		&u.PhoneNumber,
		&u.DateOfBirth,
		&u.Gender,
		&u.PasswordHash,
		&u.Verified,
		&u.AvatarURL,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return domain.User{}, err
	}
	return u, nil
}
