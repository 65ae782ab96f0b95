package repository

import (
	"context"
	"crypto/subtle"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"staybook/internal/domain"
)

// Errores de consumo. Distinguen el fallo sin exponer el token leido.
var (
	ErrTokenExpired = errors.New("otp token expired")
	ErrCodeMismatch = errors.New("otp code mismatch")
)

// OtpRepository es el ledger de codigos de un solo uso, con clave logica
// (subject, purpose). Replace garantiza un unico token activo por clave;
// ConsumeLatest valida y borra en la misma transaccion.
type OtpRepository interface {
	Replace(ctx context.Context, token domain.OtpToken) (domain.OtpToken, error)
	LatestByKey(ctx context.Context, subject string, purpose domain.OtpPurpose) (domain.OtpToken, error)
	ConsumeLatest(ctx context.Context, subject string, purpose domain.OtpPurpose, code string, now time.Time) error
}

// PgOtpRepository implementa OtpRepository usando pgxpool.
type PgOtpRepository struct {
	pool *pgxpool.Pool
}

func NewPgOtpRepository(pool *pgxpool.Pool) *PgOtpRepository {
	return &PgOtpRepository{pool: pool}
}

// Replace borra los tokens previos de la clave e inserta el nuevo en una
// sola transaccion, para que dos emisiones concurrentes no dejen dos
// tokens activos.
func (r *PgOtpRepository) Replace(ctx context.Context, token domain.OtpToken) (domain.OtpToken, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return domain.OtpToken{}, err
	}
	defer tx.Rollback(ctx)

	const del = `DELETE FROM otp_tokens WHERE subject = $1 AND purpose = $2`
	if _, err := tx.Exec(ctx, del, token.Subject, token.Purpose); err != nil {
		return domain.OtpToken{}, err
	}

	const ins = `
		INSERT INTO otp_tokens (subject, purpose, code, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	if err := tx.QueryRow(ctx, ins,
		token.Subject,
		token.Purpose,
		token.Code,
		token.ExpiresAt,
		token.CreatedAt,
	).Scan(&token.ID); err != nil {
		return domain.OtpToken{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.OtpToken{}, err
	}
	return token, nil
}

// LatestByKey devuelve el token mas reciente por orden de insercion.
// Devuelve pgx.ErrNoRows si la clave no tiene tokens.
func (r *PgOtpRepository) LatestByKey(ctx context.Context, subject string, purpose domain.OtpPurpose) (domain.OtpToken, error) {
	const query = `
		SELECT id, subject, purpose, code, expires_at, created_at
		FROM otp_tokens
		WHERE subject = $1 AND purpose = $2
		ORDER BY id DESC
		LIMIT 1
	`
	var t domain.OtpToken
	err := r.pool.QueryRow(ctx, query, subject, purpose).Scan(
		&t.ID,
		&t.Subject,
		&t.Purpose,
		&t.Code,
		&t.ExpiresAt,
		&t.CreatedAt,
	)
	if err != nil {
		return domain.OtpToken{}, err
	}
	return t, nil
}

// ConsumeLatest valida el token mas reciente de la clave y lo consume en
// una unica transaccion. El SELECT ... FOR UPDATE bloquea la fila: una
// emision concurrente espera a que el consumo termine, asi un codigo
// recien reemplazado nunca verifica y el token nuevo nunca se borra por
// un consumo viejo. Devuelve pgx.ErrNoRows si la clave no tiene tokens,
// ErrTokenExpired o ErrCodeMismatch segun la escalera de validacion.
func (r *PgOtpRepository) ConsumeLatest(ctx context.Context, subject string, purpose domain.OtpPurpose, code string, now time.Time) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	const sel = `
		SELECT code, expires_at
		FROM otp_tokens
		WHERE subject = $1 AND purpose = $2
		ORDER BY id DESC
		LIMIT 1
		FOR UPDATE
	`
	var (
		storedCode string
		expiresAt  time.Time
	)
	if err := tx.QueryRow(ctx, sel, subject, purpose).Scan(&storedCode, &expiresAt); err != nil {
		return err
	}
	if !now.Before(expiresAt) {
		return ErrTokenExpired
	}
	if subtle.ConstantTimeCompare([]byte(code), []byte(storedCode)) != 1 {
		return ErrCodeMismatch
	}

	const del = `DELETE FROM otp_tokens WHERE subject = $1 AND purpose = $2`
	if _, err := tx.Exec(ctx, del, subject, purpose); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
