package services

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"log"
	"strings"

	"github.com/google/uuid"

	"github.com/wolram/jobapp/internal/repositories"
)

// ErrUnauthorized covers every way a credential can fail: missing header,
// malformed scheme, unknown token, revoked token.
var ErrUnauthorized = errors.New("invalid or missing token")

// TokenService resolves a bearer personal access token to a user. Token
// issuance lives in the web application; only validation happens here.
type TokenService interface {
	Validate(authHeader string) (uuid.UUID, error)
}

type tokenService struct {
	tokenRepo repositories.TokenRepository
}

func NewTokenService(tokenRepo repositories.TokenRepository) TokenService {
	return &tokenService{tokenRepo: tokenRepo}
}

// Validate implements TokenService. On success it updates the token's
// last_used_at in the background; that write is lossy telemetry, not a
// correctness-bearing update, so failures are swallowed.
func (s *tokenService) Validate(authHeader string) (uuid.UUID, error) {
	const prefix = "Bearer "
	if !strings.HasPrefix(authHeader, prefix) {
		return uuid.Nil, ErrUnauthorized
	}

	plain := strings.TrimPrefix(authHeader, prefix)
	if plain == "" {
		return uuid.Nil, ErrUnauthorized
	}

	token, err := s.tokenRepo.FindActiveByHash(HashToken(plain))
	if err != nil {
		return uuid.Nil, ErrUnauthorized
	}

	go func() {
		if err := s.tokenRepo.TouchLastUsed(token.ID); err != nil {
			log.Printf("⚠️  Failed to update token last_used_at: %v", err)
		}
	}()

	return token.UserID, nil
}

// HashToken returns the SHA-256 hex digest of a plain token. Only hashes
// are ever stored or compared.
func HashToken(plain string) string {
	sum := sha256.Sum256([]byte(plain))
	return hex.EncodeToString(sum[:])
}
