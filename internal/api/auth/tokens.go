package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/viken-labs/ressurstorg/internal/models"
	"github.com/viken-labs/ressurstorg/internal/storage"
)

// TokenService handles refresh token operations.
type TokenService struct {
	storage storage.Storage
	ttl     time.Duration
}

// NewTokenService creates a new token service.
func NewTokenService(store storage.Storage, ttl time.Duration) *TokenService {
	return &TokenService{
		storage: store,
		ttl:     ttl,
	}
}

// CreateRefreshToken creates and stores a new refresh token for the
// company. Returns the plaintext token to send to the client.
func (s *TokenService) CreateRefreshToken(ctx context.Context, companyID string) (string, error) {
	token, plainToken, err := models.NewRefreshToken(companyID, s.ttl)
	if err != nil {
		return "", fmt.Errorf("generate refresh token: %w", err)
	}

	if err := s.storage.Tokens().Create(ctx, token); err != nil {
		return "", fmt.Errorf("store refresh token: %w", err)
	}

	return plainToken, nil
}

// ValidateRefreshToken validates a refresh token and returns the
// associated company.
func (s *TokenService) ValidateRefreshToken(ctx context.Context, plainToken string) (*models.Company, error) {
	token, err := s.storage.Tokens().GetByTokenHash(ctx, models.HashToken(plainToken))
	if err != nil {
		return nil, fmt.Errorf("lookup refresh token: %w", err)
	}
	if token == nil {
		return nil, fmt.Errorf("token not found")
	}
	if !token.IsValid() {
		return nil, fmt.Errorf("token expired or revoked")
	}

	company, err := s.storage.Companies().GetByID(ctx, token.CompanyID)
	if err != nil {
		return nil, fmt.Errorf("get company: %w", err)
	}
	if company == nil {
		return nil, fmt.Errorf("company not found")
	}

	return company, nil
}

// RevokeRefreshToken revokes a refresh token.
func (s *TokenService) RevokeRefreshToken(ctx context.Context, plainToken string) error {
	return s.storage.Tokens().RevokeByTokenHash(ctx, models.HashToken(plainToken))
}

// RevokeAllCompanyTokens revokes all refresh tokens for a company.
func (s *TokenService) RevokeAllCompanyTokens(ctx context.Context, companyID string) error {
	return s.storage.Tokens().RevokeAllForCompany(ctx, companyID)
}

// RotateRefreshToken revokes the old token and creates a new one.
// Returns the new plaintext token.
func (s *TokenService) RotateRefreshToken(ctx context.Context, oldPlainToken, companyID string) (string, error) {
	// Best effort; the old token may already be revoked.
	_ = s.RevokeRefreshToken(ctx, oldPlainToken)

	return s.CreateRefreshToken(ctx, companyID)
}

// CleanupExpiredTokens removes expired tokens from storage.
func (s *TokenService) CleanupExpiredTokens(ctx context.Context) (int64, error) {
	return s.storage.Tokens().DeleteExpired(ctx)
}

// TTL returns the refresh token time-to-live.
func (s *TokenService) TTL() time.Duration {
	return s.ttl
}
