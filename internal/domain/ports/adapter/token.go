package adapter

import "souksync/internal/domain/model"

// TokenPair is a short-lived access token plus a long-lived refresh token.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// TokenIssuer mints and refreshes signed session credentials for a verified
// identity. Opaque to the rest of the core beyond subject, role and expiry.
type TokenIssuer interface {
	IssuePair(u *model.User) (TokenPair, error)
	Refresh(refreshToken string) (TokenPair, error)
}
