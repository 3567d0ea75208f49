package domain

// Identity is the authenticated caller attached to a request.
type Identity struct {
	UserID   string `json:"userId"`
	Email    string `json:"email"`
	Role     Role   `json:"role"`
	FullName string `json:"fullName"`
	IsActive bool   `json:"isActive"`
}
