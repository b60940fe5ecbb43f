package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/lumamart/auth/internal/auth/domain"
)

type tokensRepo struct {
	db dbtx
}

const tokenColumns = `id, principal_id, name, scopes, device_type, device_name,
	fingerprint, token_hash, created_from_ip, created_at, expires_at,
	last_used_at, last_used_ip, revoked_at, refreshed_into, refreshed_at,
	refresh_count`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanToken(row rowScanner) (domain.Token, error) {
	var (
		t                                          domain.Token
		scopes                                     string
		expiresAt, lastUsedAt, revokedAt, refreshedAt sql.NullTime
		refreshedInto                              sql.NullString
	)
	err := row.Scan(
		&t.ID, &t.PrincipalID, &t.Name, &scopes, &t.DeviceType, &t.DeviceName,
		&t.Fingerprint, &t.TokenHash, &t.CreatedFromIP, &t.CreatedAt, &expiresAt,
		&lastUsedAt, &t.LastUsedIP, &revokedAt, &refreshedInto, &refreshedAt,
		&t.RefreshCount,
	)
	if err != nil {
		return domain.Token{}, mapNotFound(err)
	}

	t.Scopes = splitScopes(scopes)
	t.ExpiresAt = mapNullTimePtr(expiresAt)
	t.LastUsedAt = mapNullTimePtr(lastUsedAt)
	t.RevokedAt = mapNullTimePtr(revokedAt)
	t.RefreshedInto = mapNullStringPtr(refreshedInto)
	t.RefreshedAt = mapNullTimePtr(refreshedAt)
	return t, nil
}

func (r *tokensRepo) CreateToken(ctx context.Context, t domain.Token) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO tokens (
			id, principal_id, name, scopes, device_type, device_name,
			fingerprint, token_hash, created_from_ip, created_at, expires_at,
			last_used_at, last_used_ip, revoked_at, refreshed_into,
			refreshed_at, refresh_count
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.PrincipalID, t.Name, joinScopes(t.Scopes), t.DeviceType,
		t.DeviceName, t.Fingerprint, t.TokenHash, t.CreatedFromIP, t.CreatedAt,
		mapOptionalTime(t.ExpiresAt), mapOptionalTime(t.LastUsedAt),
		t.LastUsedIP, mapOptionalTime(t.RevokedAt),
		mapOptionalString(t.RefreshedInto), mapOptionalTime(t.RefreshedAt),
		t.RefreshCount,
	)
	return mapConflict(err)
}

func (r *tokensRepo) GetTokenByID(ctx context.Context, id string) (domain.Token, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+tokenColumns+` FROM tokens WHERE id = ?`, id)
	return scanToken(row)
}

func (r *tokensRepo) GetTokenByHash(ctx context.Context, hash string) (domain.Token, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+tokenColumns+` FROM tokens WHERE token_hash = ?`, hash)
	return scanToken(row)
}

func (r *tokensRepo) CountLiveTokens(ctx context.Context, principalID, deviceType string, now time.Time) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM tokens
		WHERE principal_id = ?
		  AND device_type = ?
		  AND revoked_at IS NULL
		  AND (expires_at IS NULL OR expires_at > ?)`,
		principalID, deviceType, now,
	).Scan(&count)
	return count, err
}

func (r *tokensRepo) ListLiveTokensByPrincipal(ctx context.Context, principalID string, now time.Time) ([]domain.Token, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+tokenColumns+` FROM tokens
		WHERE principal_id = ?
		  AND revoked_at IS NULL
		  AND (expires_at IS NULL OR expires_at > ?)
		ORDER BY created_at DESC, id DESC`,
		principalID, now,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tokens []domain.Token
	for rows.Next() {
		t, err := scanToken(rows)
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, t)
	}
	return tokens, rows.Err()
}

// RevokeToken is idempotent: the WHERE clause keeps the first revoked_at.
func (r *tokensRepo) RevokeToken(ctx context.Context, tokenID string, at time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE tokens SET revoked_at = ?
		WHERE id = ? AND revoked_at IS NULL`,
		at, tokenID,
	)
	return err
}

func (r *tokensRepo) RevokeAllPrincipalTokens(ctx context.Context, principalID string, at time.Time) (int, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE tokens SET revoked_at = ?
		WHERE principal_id = ? AND revoked_at IS NULL`,
		at, principalID,
	)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}

// MarkRefreshed links old to new without touching expires_at, so the old
// token keeps its original lifetime during the grace period. Guarding on
// revoked_at resolves a concurrent revoke racing a refresh: the revoke wins.
func (r *tokensRepo) MarkRefreshed(ctx context.Context, oldTokenID, newTokenID string, at time.Time) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE tokens SET refreshed_into = ?, refreshed_at = ?
		WHERE id = ? AND revoked_at IS NULL`,
		newTokenID, at, oldTokenID,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return mapNotFound(sql.ErrNoRows)
	}
	return nil
}

func (r *tokensRepo) TouchTokenUsage(ctx context.Context, tokenID, ip string, at time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE tokens SET last_used_at = ?, last_used_ip = ?
		WHERE id = ?`,
		at, ip, tokenID,
	)
	return err
}

func (r *tokensRepo) RevokeSupersededTokens(ctx context.Context, refreshedBefore, at time.Time) (int, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE tokens SET revoked_at = ?
		WHERE revoked_at IS NULL
		  AND refreshed_into IS NOT NULL
		  AND refreshed_at <= ?`,
		at, refreshedBefore,
	)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}

func (r *tokensRepo) DeleteDeadTokens(ctx context.Context, cutoff time.Time) (int, error) {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM tokens
		WHERE (revoked_at IS NOT NULL AND revoked_at <= ?)
		   OR (expires_at IS NOT NULL AND expires_at <= ?)`,
		cutoff, cutoff,
	)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}
