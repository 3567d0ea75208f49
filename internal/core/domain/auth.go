package domain

import "time"

// AccessClaims is the verified payload of an access token.
type AccessClaims struct {
	UserID    string
	Email     string
	Role      Role
	FullName  string
	TokenID   string
	ExpiresAt time.Time
}

// RefreshClaims is the verified payload of a refresh token.
type RefreshClaims struct {
	UserID    string
	TokenID   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// TokenPair is the credential bundle handed to a client after authentication.
type TokenPair struct {
	AccessToken      string
	AccessExpiresAt  time.Time
	RefreshToken     string
	RefreshExpiresAt time.Time
	ExpiresIn        time.Duration // Access token lifetime
}

// AuthResult is returned by every operation that authenticates a user.
type AuthResult struct {
	User   *User
	Tokens TokenPair
}

// OAuthProfile is the verified identity asserted by an external provider.
type OAuthProfile struct {
	Provider       string
	ProviderUserID string
	Email          string
	EmailVerified  bool
	FullName       string
	PictureURL     string
}
