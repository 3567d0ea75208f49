package domain

import (
	"fmt"
	"strings"

	"github.com/echopind/echopind_backend/internal/apperrors"
)

// Role is the closed set of platform roles a user can hold.
type Role uint8

const (
	RoleUnknown Role = iota
	RoleStudent
	RoleTeacher
	RoleAdmin
)

// DefaultRole is assigned when registration does not name one.
const DefaultRole = RoleStudent

// ParseRole converts the wire representation of a role. Unknown values are rejected.
func ParseRole(s string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "student":
		return RoleStudent, nil
	case "teacher":
		return RoleTeacher, nil
	case "admin":
		return RoleAdmin, nil
	default:
		return RoleUnknown, fmt.Errorf("%w: unknown role %q", apperrors.ErrValidation, s)
	}
}

// Valid reports whether r is one of the defined roles.
func (r Role) Valid() bool {
	return r >= RoleStudent && r <= RoleAdmin
}

func (r Role) String() string {
	switch r {
	case RoleStudent:
		return "student"
	case RoleTeacher:
		return "teacher"
	case RoleAdmin:
		return "admin"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler so roles serialize as strings.
func (r Role) MarshalText() ([]byte, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("%w: cannot marshal role %d", apperrors.ErrValidation, uint8(r))
	}
	return []byte(r.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *Role) UnmarshalText(b []byte) error {
	parsed, err := ParseRole(string(b))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// RoleSet is a bitmask of roles used by role gates.
type RoleSet uint8

// NewRoleSet builds a set from the given roles, ignoring invalid ones.
func NewRoleSet(roles ...Role) RoleSet {
	var s RoleSet
	for _, r := range roles {
		if r.Valid() {
			s |= 1 << r
		}
	}
	return s
}

// Contains reports whether r is a member of the set.
func (s RoleSet) Contains(r Role) bool {
	return r.Valid() && s&(1<<r) != 0
}

// Roles lists the members in ascending order.
func (s RoleSet) Roles() []Role {
	var out []Role
	for r := RoleStudent; r <= RoleAdmin; r++ {
		if s.Contains(r) {
			out = append(out, r)
		}
	}
	return out
}

func (s RoleSet) String() string {
	roles := s.Roles()
	names := make([]string, len(roles))
	for i, r := range roles {
		names[i] = r.String()
	}
	return "{" + strings.Join(names, ",") + "}"
}
