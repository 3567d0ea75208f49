package mapping

import (
	"fmt"

	"github.com/echopind/echopind_backend/internal/core/domain"
	"github.com/echopind/echopind_backend/internal/models"
)

// ToModelUser converts a domain User to a model User
func ToModelUser(d domain.User) models.User {
	return models.User{
		UserID:        d.UserID,
		FullName:      d.FullName,
		Email:         d.Email,
		PasswordHash:  d.PasswordHash,
		Role:          d.Role.String(),
		Phone:         d.Phone,
		Address:       d.Address,
		DateOfBirth:   d.DateOfBirth,
		StudentID:     d.StudentID,
		School:        d.School,
		Grade:         d.Grade,
		ProfilePhoto:  d.ProfilePhoto,
		IsActive:      d.IsActive,
		LastLogin:     d.LastLogin,
		AuditFields:   modelAudit(d.AuditFields),
		RefreshTokens: ToModelRefreshTokens(d.RefreshTokens),
	}
}

// ToDomainUser converts a model User to a domain User.
// It fails if the stored role is not one of the known roles.
func ToDomainUser(m models.User) (domain.User, error) {
	role, err := domain.ParseRole(m.Role)
	if err != nil {
		return domain.User{}, fmt.Errorf("user %s has corrupt role: %w", m.UserID, err)
	}
	return domain.User{
		UserID:        m.UserID,
		FullName:      m.FullName,
		Email:         m.Email,
		PasswordHash:  m.PasswordHash,
		Role:          role,
		Phone:         m.Phone,
		Address:       m.Address,
		DateOfBirth:   m.DateOfBirth,
		StudentID:     m.StudentID,
		School:        m.School,
		Grade:         m.Grade,
		ProfilePhoto:  m.ProfilePhoto,
		IsActive:      m.IsActive,
		LastLogin:     m.LastLogin,
		AuditFields:   domainAudit(m.AuditFields),
		RefreshTokens: ToDomainRefreshTokens(m.RefreshTokens),
	}, nil
}

// ToDomainUserSlice converts a slice of model Users to a slice of domain Users
func ToDomainUserSlice(ms []models.User) ([]domain.User, error) {
	ds := make([]domain.User, len(ms))
	for i, m := range ms {
		d, err := ToDomainUser(m)
		if err != nil {
			return nil, err
		}
		ds[i] = d
	}
	return ds, nil
}

// ToModelRefreshToken converts a domain RefreshToken to its persisted form.
func ToModelRefreshToken(d domain.RefreshToken) models.RefreshToken {
	return models.RefreshToken{TokenHash: d.TokenHash, IssuedAt: d.IssuedAt, ExpiresAt: d.ExpiresAt}
}

// ToModelRefreshTokens never returns nil so documents always carry an array.
func ToModelRefreshTokens(ds []domain.RefreshToken) []models.RefreshToken {
	ms := make([]models.RefreshToken, len(ds))
	for i, d := range ds {
		ms[i] = ToModelRefreshToken(d)
	}
	return ms
}

// ToDomainRefreshTokens converts persisted session digests to domain values.
func ToDomainRefreshTokens(ms []models.RefreshToken) []domain.RefreshToken {
	if len(ms) == 0 {
		return nil
	}
	ds := make([]domain.RefreshToken, len(ms))
	for i, m := range ms {
		ds[i] = domain.RefreshToken{TokenHash: m.TokenHash, IssuedAt: m.IssuedAt, ExpiresAt: m.ExpiresAt}
	}
	return ds
}

func modelAudit(a domain.AuditFields) models.AuditFields {
	return models.AuditFields{CreatedAt: a.CreatedAt, CreatedBy: a.CreatedBy, LastUpdatedAt: a.LastUpdatedAt, LastUpdatedBy: a.LastUpdatedBy}
}

func domainAudit(a models.AuditFields) domain.AuditFields {
	return domain.AuditFields{CreatedAt: a.CreatedAt, CreatedBy: a.CreatedBy, LastUpdatedAt: a.LastUpdatedAt, LastUpdatedBy: a.LastUpdatedBy}
}
