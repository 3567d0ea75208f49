package dto

import (
	"time"

	"github.com/echopind/echopind_backend/internal/core/domain"
)

// UpdateProfileRequest defines the data allowed for updating a profile.
// Using pointers to differentiate between omitted fields and zero-value fields.
type UpdateProfileRequest struct {
	FullName     *string `json:"fullName" binding:"omitempty,min=2,max=50"`
	Email        *string `json:"email" binding:"omitempty,email,max=254"`
	Phone        *string `json:"phone" binding:"omitempty,max=20"`
	Address      *string `json:"address" binding:"omitempty,max=200"`
	DateOfBirth  *string `json:"dateOfBirth" binding:"omitempty,isodate"`
	StudentID    *string `json:"studentId" binding:"omitempty,max=50"`
	School       *string `json:"school" binding:"omitempty,max=100"`
	Grade        *string `json:"grade" binding:"omitempty,max=20"`
	ProfilePhoto *string `json:"profilePhoto" binding:"omitempty,max=500"`
}

// ListUsersQuery defines query parameters for the admin user listing.
type ListUsersQuery struct {
	Page     int    `form:"page,default=1" binding:"min=1"`
	Limit    int    `form:"limit,default=10" binding:"min=1,max=100"`
	Role     string `form:"role" binding:"omitempty,role"`
	UserType string `form:"userType" binding:"omitempty,role"`
	Search   string `form:"search" binding:"max=100"`
}

// Filter converts the query to a store filter.
func (q ListUsersQuery) Filter() (domain.UserFilter, error) {
	filter := domain.UserFilter{Search: q.Search, Limit: q.Limit, Offset: (q.Page - 1) * q.Limit}
	name := q.Role
	if name == "" {
		name = q.UserType
	}
	if name != "" {
		role, err := domain.ParseRole(name)
		if err != nil {
			return domain.UserFilter{}, err
		}
		filter.Role = role
	}
	return filter, nil
}

// UpdateUserStatusRequest is the body of PUT /user/:id/status.
type UpdateUserStatusRequest struct {
	IsActive *bool `json:"isActive" binding:"required"`
}

// DeleteAccountRequest is the body of DELETE /user/account.
type DeleteAccountRequest struct {
	Password string `json:"password"`
}

// PaginationResponse describes the page returned by a listing.
type PaginationResponse struct {
	CurrentPage int  `json:"currentPage"`
	TotalPages  int  `json:"totalPages"`
	TotalUsers  int  `json:"totalUsers"`
	HasNext     bool `json:"hasNext"`
	HasPrev     bool `json:"hasPrev"`
}

// NewPagination computes page metadata for total matches split into pages of limit.
func NewPagination(page, limit, total int) PaginationResponse {
	totalPages := 0
	if limit > 0 {
		totalPages = (total + limit - 1) / limit
	}
	return PaginationResponse{
		CurrentPage: page,
		TotalPages:  totalPages,
		TotalUsers:  total,
		HasNext:     page < totalPages,
		HasPrev:     page > 1,
	}
}

// ListUsersResponse wraps one page of users.
type ListUsersResponse struct {
	Users      []UserResponse     `json:"users"`
	Pagination PaginationResponse `json:"pagination"`
}

// ToListUsersResponse converts a page of domain users.
func ToListUsersResponse(users []domain.User, query ListUsersQuery, total int) ListUsersResponse {
	userResponses := make([]UserResponse, len(users))
	for i := range users {
		userResponses[i] = ToUserResponse(&users[i])
	}
	return ListUsersResponse{
		Users:      userResponses,
		Pagination: NewPagination(query.Page, query.Limit, total),
	}
}

// UserEnvelope is returned by GET /auth/me and GET /user/profile.
type UserEnvelope struct {
	User UserResponse `json:"user"`
}

// UserMessageResponse is returned by endpoints that modify a user.
type UserMessageResponse struct {
	Message string       `json:"message"`
	User    UserResponse `json:"user"`
}

// ParseDate accepts an ISO-8601 calendar date or an RFC 3339 timestamp.
func ParseDate(s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	for _, layout := range []string{dateLayout, time.RFC3339} {
		if t, err := time.Parse(layout, *s); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, newValidationError("dateOfBirth must be an ISO-8601 date")
}
