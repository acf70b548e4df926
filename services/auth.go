package services

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var ErrTokenRevoked = errors.New("token has been revoked")

// Session is the identity carried by a verified bearer token.
type Session struct {
	UserID    string    `json:"user_id"`
	AccountID string    `json:"account_id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	TokenID   string    `json:"-"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Claims are the identity provider's token claims.
type Claims struct {
	AccountID string `json:"account_id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	jwt.RegisteredClaims
}

type AuthService struct {
	jwtSecret []byte
	issuer    string
	revoked   RevocationStore
}

// NewAuthService verifies tokens signed with secret. revoked may be nil, in
// which case logout has no server-side effect.
func NewAuthService(secret, issuer string, revoked RevocationStore) *AuthService {
	return &AuthService{
		jwtSecret: []byte(secret),
		issuer:    issuer,
		revoked:   revoked,
	}
}

// CreateJWT signs a token for the session. The identity provider does this
// in production; the service uses it for tests and local tooling.
func (s *AuthService) CreateJWT(session Session, ttl time.Duration) (string, error) {
	tokenID := session.TokenID
	if tokenID == "" {
		var err error
		if tokenID, err = s.generateSecureToken(16); err != nil {
			return "", fmt.Errorf("failed to generate token id: %w", err)
		}
	}

	now := time.Now()
	claims := Claims{
		AccountID: session.AccountID,
		Email:     session.Email,
		Name:      session.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   session.UserID,
			Issuer:    s.issuer,
			ID:        tokenID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, nil
}

// VerifyJWT checks the signature, expiry and issuer of a token and returns
// the session it describes.
func (s *AuthService) VerifyJWT(tokenString string) (Session, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}

	var claims Claims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	}, opts...)
	if err != nil {
		return Session{}, fmt.Errorf("failed to parse token: %w", err)
	}
	if !token.Valid {
		return Session{}, errors.New("invalid token")
	}

	if uuid.Validate(claims.Subject) != nil {
		return Session{}, errors.New("sub claim must be a user id")
	}
	if uuid.Validate(claims.AccountID) != nil {
		return Session{}, errors.New("account_id claim must be an account id")
	}

	return Session{
		UserID:    claims.Subject,
		AccountID: claims.AccountID,
		Email:     claims.Email,
		Name:      claims.Name,
		TokenID:   claims.ID,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// Authenticate verifies the token and rejects it when it was logged out.
func (s *AuthService) Authenticate(ctx context.Context, tokenString string) (Session, error) {
	session, err := s.VerifyJWT(tokenString)
	if err != nil {
		return Session{}, unauthenticated("invalid token", err)
	}
	if s.revoked == nil || session.TokenID == "" {
		return session, nil
	}

	revoked, err := s.revoked.IsRevoked(ctx, session.TokenID)
	if err != nil {
		return Session{}, err
	}
	if revoked {
		return Session{}, unauthenticated("invalid token", ErrTokenRevoked)
	}
	return session, nil
}

// Revoke blocks the session's token until it expires.
func (s *AuthService) Revoke(ctx context.Context, session Session) error {
	if s.revoked == nil || session.TokenID == "" {
		return nil
	}
	return s.revoked.Revoke(ctx, session.TokenID, session.ExpiresAt)
}

func (s *AuthService) generateSecureToken(length int) (string, error) {
	b := make([]byte, length)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
