package models

import "time"

// User is the persisted shape of a user, shared by the Postgres row and the Mongo document.
// Mongo field names follow the original collection layout (password, userType, refreshTokens).
type User struct {
	UserID       string     `db:"user_id" bson:"_id"`
	FullName     string     `db:"full_name" bson:"fullName"`
	Email        string     `db:"email" bson:"email"`
	PasswordHash string     `db:"password_hash" bson:"password"`
	Role         string     `db:"role" bson:"userType"`
	Phone        string     `db:"phone" bson:"phone,omitempty"`
	Address      string     `db:"address" bson:"address,omitempty"`
	DateOfBirth  *time.Time `db:"date_of_birth" bson:"dateOfBirth,omitempty"`
	StudentID    string     `db:"student_id" bson:"studentId,omitempty"`
	School       string     `db:"school" bson:"school,omitempty"`
	Grade        string     `db:"grade" bson:"grade,omitempty"`
	ProfilePhoto *string    `db:"profile_photo" bson:"profilePhoto,omitempty"`
	IsActive     bool       `db:"is_active" bson:"isActive"`
	LastLogin    *time.Time `db:"last_login" bson:"lastLogin,omitempty"`
	AuditFields  `bson:",inline"`

	// Embedded only in the document store; Postgres keeps sessions in user_refresh_tokens.
	RefreshTokens []RefreshToken `db:"-" bson:"refreshTokens"`
}

// RefreshToken is one persisted session digest.
type RefreshToken struct {
	TokenHash string    `db:"token_hash" bson:"tokenHash"`
	IssuedAt  time.Time `db:"issued_at" bson:"issuedAt"`
	ExpiresAt time.Time `db:"expires_at" bson:"expiresAt"`
}
