package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

func testSession() Session {
	return Session{
		UserID:    uuid.NewString(),
		AccountID: uuid.NewString(),
		Email:     "avery@example.com",
		Name:      "Avery",
	}
}

func TestCreateAndVerifyJWT(t *testing.T) {
	auth := NewAuthService("secret", "gamific-idp", nil)
	want := testSession()

	token, err := auth.CreateJWT(want, time.Hour)
	if err != nil {
		t.Fatalf("CreateJWT: %v", err)
	}
	got, err := auth.VerifyJWT(token)
	if err != nil {
		t.Fatalf("VerifyJWT: %v", err)
	}
	if got.UserID != want.UserID || got.AccountID != want.AccountID || got.Email != want.Email {
		t.Fatalf("expected %+v, got %+v", want, got)
	}
	if got.TokenID == "" {
		t.Fatal("expected a generated token id")
	}
}

func TestVerifyJWTRejects(t *testing.T) {
	auth := NewAuthService("secret", "gamific-idp", nil)
	session := testSession()

	expired, _ := auth.CreateJWT(session, -time.Minute)
	otherSecret, _ := NewAuthService("other", "gamific-idp", nil).CreateJWT(session, time.Hour)
	otherIssuer, _ := NewAuthService("secret", "someone-else", nil).CreateJWT(session, time.Hour)

	noExpiry, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		AccountID:        session.AccountID,
		RegisteredClaims: jwt.RegisteredClaims{Subject: session.UserID, Issuer: "gamific-idp"},
	}).SignedString([]byte("secret"))

	badAccount := session
	badAccount.AccountID = "acme"
	notUUID, _ := auth.CreateJWT(badAccount, time.Hour)

	tests := map[string]string{
		"expired":      expired,
		"wrong secret": otherSecret,
		"wrong issuer": otherIssuer,
		"no expiry":    noExpiry,
		"bad account":  notUUID,
		"garbage":      "not.a.token",
	}
	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := auth.VerifyJWT(token); err == nil {
				t.Fatal("expected token to be rejected")
			}
		})
	}
}

func TestVerifyJWTRejectsOtherAlgorithms(t *testing.T) {
	auth := NewAuthService("secret", "", nil)
	session := testSession()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, Claims{
		AccountID: session.AccountID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   session.UserID,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := auth.VerifyJWT(token); err == nil {
		t.Fatal("expected HS512 token to be rejected")
	}
}

func TestAuthenticateHonoursRevocation(t *testing.T) {
	store, _ := setupRevocationStore(t)
	auth := NewAuthService("secret", "", store)
	ctx := context.Background()

	token, err := auth.CreateJWT(testSession(), time.Hour)
	if err != nil {
		t.Fatalf("CreateJWT: %v", err)
	}
	session, err := auth.Authenticate(ctx, token)
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}

	if err := auth.Revoke(ctx, session); err != nil {
		t.Fatalf("Revoke: %v", err)
	}
	_, err = auth.Authenticate(ctx, token)
	if !errors.Is(err, ErrTokenRevoked) {
		t.Fatalf("expected ErrTokenRevoked, got %v", err)
	}
	if KindOf(err) != KindUnauthenticated {
		t.Fatalf("expected unauthenticated kind, got %v", KindOf(err))
	}
}

func TestRevokeWithoutStoreIsNoop(t *testing.T) {
	auth := NewAuthService("secret", "", nil)
	if err := auth.Revoke(context.Background(), testSession()); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
}
