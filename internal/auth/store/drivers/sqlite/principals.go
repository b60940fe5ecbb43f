package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/lumamart/auth/internal/auth/domain"
)

type principalsRepo struct {
	db dbtx
}

const principalColumns = `id, email, password_hash, role, status,
	two_factor_secret, two_factor_enabled_at,
	last_login_at, last_login_ip, created_at, updated_at`

func (r *principalsRepo) scanPrincipal(row *sql.Row) (domain.Principal, error) {
	var (
		id, email, passwordHash, role, status, lastLoginIP string
		twoFactorSecret                                    sql.NullString
		twoFactorEnabled, lastLoginAt                      sql.NullTime
		createdAt, updatedAt                               time.Time
	)
	err := row.Scan(
		&id, &email, &passwordHash, &role, &status,
		&twoFactorSecret, &twoFactorEnabled,
		&lastLoginAt, &lastLoginIP, &createdAt, &updatedAt,
	)
	if err != nil {
		return domain.Principal{}, mapNotFound(err)
	}
	return mapPrincipal(
		id, email, passwordHash, role, status,
		twoFactorSecret, twoFactorEnabled, lastLoginAt,
		lastLoginIP, createdAt, updatedAt,
	), nil
}

func (r *principalsRepo) GetPrincipalByID(ctx context.Context, id string) (domain.Principal, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+principalColumns+` FROM principals WHERE id = ?`, id)
	return r.scanPrincipal(row)
}

func (r *principalsRepo) GetPrincipalByEmail(ctx context.Context, email string) (domain.Principal, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+principalColumns+` FROM principals WHERE email = ?`, email)
	return r.scanPrincipal(row)
}

func (r *principalsRepo) CreatePrincipal(ctx context.Context, p domain.Principal) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO principals (
			id, email, password_hash, role, status,
			two_factor_secret, two_factor_enabled_at,
			last_login_at, last_login_ip, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Email, p.PasswordHash, string(p.Role), string(p.Status),
		mapOptionalString(p.TwoFactorSecret), mapOptionalTime(p.TwoFactorEnabled),
		mapOptionalTime(p.LastLoginAt), p.LastLoginIP, p.CreatedAt, p.UpdatedAt,
	)
	return mapConflict(err)
}

func (r *principalsRepo) UpdateLoginActivity(ctx context.Context, principalID, ip string, at time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE principals
		SET last_login_at = ?, last_login_ip = ?, updated_at = ?
		WHERE id = ?`,
		at, ip, at, principalID,
	)
	return err
}

func (r *principalsRepo) UpdateStatus(ctx context.Context, principalID string, status domain.PrincipalStatus, at time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE principals SET status = ?, updated_at = ? WHERE id = ?`,
		string(status), at, principalID,
	)
	return err
}

func (r *principalsRepo) SetTwoFactor(ctx context.Context, principalID, secret string, enabledAt time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE principals
		SET two_factor_secret = ?, two_factor_enabled_at = ?, updated_at = ?
		WHERE id = ?`,
		secret, enabledAt, enabledAt, principalID,
	)
	return err
}

func (r *principalsRepo) IsEmpty(ctx context.Context) (bool, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM principals`).Scan(&count); err != nil {
		return false, err
	}
	return count == 0, nil
}
