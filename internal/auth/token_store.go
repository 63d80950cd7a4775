package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

const refreshTokenKeyPrefix = "crm:refresh_token:"

// ErrRefreshTokenNotFound is returned when a refresh token id is unknown or expired.
var ErrRefreshTokenNotFound = errors.New("refresh token not found")

// KeyValueStore is the subset of the cache used for tokens.
type KeyValueStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// TokenStoreInterface defines the interface for token storage operations.
type TokenStoreInterface interface {
	StoreRefreshToken(ctx context.Context, tokenID string, userID uint, login string, ttl time.Duration) error
	GetRefreshToken(ctx context.Context, tokenID string) (userID uint, login string, err error)
	DeleteRefreshToken(ctx context.Context, tokenID string) error
}

// TokenStore handles storage and retrieval of refresh tokens.
type TokenStore struct {
	store KeyValueStore
}

// Ensure TokenStore implements TokenStoreInterface
var _ TokenStoreInterface = (*TokenStore)(nil)

// NewTokenStore creates a new token store.
func NewTokenStore(store KeyValueStore) *TokenStore {
	return &TokenStore{store: store}
}

type refreshTokenData struct {
	UserID uint   `json:"user_id"`
	Login  string `json:"login"`
}

// StoreRefreshToken stores a refresh token with TTL.
func (s *TokenStore) StoreRefreshToken(ctx context.Context, tokenID string, userID uint, login string, ttl time.Duration) error {
	payload, err := json.Marshal(refreshTokenData{UserID: userID, Login: login})
	if err != nil {
		return fmt.Errorf("marshal token data: %w", err)
	}
	return s.store.Set(ctx, refreshTokenKeyPrefix+tokenID, payload, ttl)
}

// GetRefreshToken retrieves refresh token data.
func (s *TokenStore) GetRefreshToken(ctx context.Context, tokenID string) (uint, string, error) {
	data, err := s.store.Get(ctx, refreshTokenKeyPrefix+tokenID)
	if err != nil || data == nil {
		return 0, "", ErrRefreshTokenNotFound
	}

	var stored refreshTokenData
	if err := json.Unmarshal(data, &stored); err != nil {
		return 0, "", fmt.Errorf("unmarshal token data: %w", err)
	}
	return stored.UserID, stored.Login, nil
}

// DeleteRefreshToken removes a refresh token.
func (s *TokenStore) DeleteRefreshToken(ctx context.Context, tokenID string) error {
	return s.store.Delete(ctx, refreshTokenKeyPrefix+tokenID)
}
