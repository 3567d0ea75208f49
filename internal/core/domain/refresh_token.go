package domain

import "time"

// DefaultMaxRefreshTokens bounds the number of concurrent sessions per user.
const DefaultMaxRefreshTokens = 5

// RefreshToken is one recorded session. Only the SHA-256 digest of the signed token is kept.
type RefreshToken struct {
	TokenHash string    `json:"-"`
	IssuedAt  time.Time `json:"issuedAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// IsExpired reports whether the entry is past its absolute expiry at now.
func (t RefreshToken) IsExpired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}

// ActiveRefreshTokens returns the entries of tokens that are not expired at now, preserving order.
func ActiveRefreshTokens(tokens []RefreshToken, now time.Time) []RefreshToken {
	out := make([]RefreshToken, 0, len(tokens))
	for _, t := range tokens {
		if !t.IsExpired(now) {
			out = append(out, t)
		}
	}
	return out
}

// AppendRefreshToken purges expired entries, appends next and keeps only the newest maxTokens entries.
// The input slice is not modified.
func AppendRefreshToken(tokens []RefreshToken, next RefreshToken, maxTokens int, now time.Time) []RefreshToken {
	out := append(ActiveRefreshTokens(tokens, now), next)
	if maxTokens > 0 && len(out) > maxTokens {
		out = out[len(out)-maxTokens:]
	}
	return out
}

// RemoveRefreshToken returns tokens without the entry matching tokenHash and whether it was present.
func RemoveRefreshToken(tokens []RefreshToken, tokenHash string) ([]RefreshToken, bool) {
	out := make([]RefreshToken, 0, len(tokens))
	found := false
	for _, t := range tokens {
		if t.TokenHash == tokenHash {
			found = true
			continue
		}
		out = append(out, t)
	}
	return out, found
}
