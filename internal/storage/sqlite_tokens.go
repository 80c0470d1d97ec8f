package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/viken-labs/ressurstorg/internal/models"
)

type sqliteTokenRepo struct {
	db *sql.DB
}

func (r *sqliteTokenRepo) Create(ctx context.Context, token *models.RefreshToken) error {
	if token.ID == "" {
		token.ID = uuid.New().String()
	}
	query := `
		INSERT INTO refresh_tokens (id, company_id, token_hash, expires_at, created_at, revoked, revoked_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query,
		token.ID, token.CompanyID, token.TokenHash, token.ExpiresAt,
		token.CreatedAt, token.Revoked, token.RevokedAt,
	)
	if err != nil {
		return fmt.Errorf("insert refresh token: %w", err)
	}
	return nil
}

func (r *sqliteTokenRepo) GetByTokenHash(ctx context.Context, tokenHash string) (*models.RefreshToken, error) {
	query := `
		SELECT id, company_id, token_hash, expires_at, created_at, revoked, revoked_at
		FROM refresh_tokens WHERE token_hash = ?
	`
	token := &models.RefreshToken{}
	var revokedAt sql.NullTime
	err := r.db.QueryRowContext(ctx, query, tokenHash).Scan(
		&token.ID, &token.CompanyID, &token.TokenHash, &token.ExpiresAt,
		&token.CreatedAt, &token.Revoked, &revokedAt,
	)
	if err == sql.ErrNoRows {
		//nolint:nilnil
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get refresh token: %w", err)
	}
	if revokedAt.Valid {
		t := revokedAt.Time
		token.RevokedAt = &t
	}
	return token, nil
}

func (r *sqliteTokenRepo) RevokeByTokenHash(ctx context.Context, tokenHash string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE refresh_tokens SET revoked = 1, revoked_at = ?
		WHERE token_hash = ? AND revoked = 0
	`, time.Now(), tokenHash)
	if err != nil {
		return fmt.Errorf("revoke refresh token: %w", err)
	}
	return nil
}

func (r *sqliteTokenRepo) RevokeAllForCompany(ctx context.Context, companyID string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE refresh_tokens SET revoked = 1, revoked_at = ?
		WHERE company_id = ? AND revoked = 0
	`, time.Now(), companyID)
	if err != nil {
		return fmt.Errorf("revoke company tokens: %w", err)
	}
	return nil
}

func (r *sqliteTokenRepo) DeleteExpired(ctx context.Context) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		"DELETE FROM refresh_tokens WHERE expires_at < ?", time.Now(),
	)
	if err != nil {
		return 0, fmt.Errorf("delete expired tokens: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete expired tokens rows: %w", err)
	}
	return rows, nil
}
