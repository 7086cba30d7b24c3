package auth

import (
	"errors"
	"time"

	"souksync/internal/domain"
	"souksync/internal/domain/model"
	"souksync/internal/domain/ports/adapter"

	"github.com/golang-jwt/jwt/v5"
)

var _ adapter.TokenIssuer = (*TokenIssuer)(nil)

// ===== Session/JWT primitives =====

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

type Claims struct {
	Role      string `json:"role,omitempty"`
	TokenType string `json:"type"`
	jwt.RegisteredClaims
}

// TokenIssuer mints HS256-signed access/refresh pairs. The access token
// carries the role claim; the refresh token carries only the subject.
type TokenIssuer struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewTokenIssuer(secret string, accessTTL, refreshTTL time.Duration) *TokenIssuer {
	return &TokenIssuer{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

func (t *TokenIssuer) IssuePair(u *model.User) (adapter.TokenPair, error) {
	access, err := t.mint(u.ID, string(u.Role), tokenTypeAccess, t.accessTTL)
	if err != nil {
		return adapter.TokenPair{}, err
	}
	refresh, err := t.mint(u.ID, "", tokenTypeRefresh, t.refreshTTL)
	if err != nil {
		return adapter.TokenPair{}, err
	}
	return adapter.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// Refresh validates a refresh token and issues a fresh pair for its subject.
// The role claim is not carried across a refresh; the caller re-resolves it
// if needed.
func (t *TokenIssuer) Refresh(refreshToken string) (adapter.TokenPair, error) {
	claims, err := t.parse(refreshToken)
	if err != nil {
		return adapter.TokenPair{}, err
	}
	if claims.TokenType != tokenTypeRefresh {
		return adapter.TokenPair{}, domain.ErrTokenInvalid
	}
	access, err := t.mint(claims.Subject, claims.Role, tokenTypeAccess, t.accessTTL)
	if err != nil {
		return adapter.TokenPair{}, err
	}
	refresh, err := t.mint(claims.Subject, "", tokenTypeRefresh, t.refreshTTL)
	if err != nil {
		return adapter.TokenPair{}, err
	}
	return adapter.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// Parse validates any token and returns its claims. Used by API middleware.
func (t *TokenIssuer) Parse(token string) (*Claims, error) {
	return t.parse(token)
}

func (t *TokenIssuer) mint(subject, role, tokenType string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Role:      role,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
}

func (t *TokenIssuer) parse(token string) (*Claims, error) {
	claims := &Claims{}
	tkn, err := jwt.ParseWithClaims(token, claims, func(tok *jwt.Token) (any, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, domain.ErrTokenInvalid
		}
		return t.secret, nil
	})
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, domain.ErrTokenExpired
	case err != nil, !tkn.Valid:
		return nil, domain.ErrTokenInvalid
	}
	return claims, nil
}
