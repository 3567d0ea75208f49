package domain_test

import (
	"encoding/json"
	"testing"

	"github.com/echopind/echopind_backend/internal/apperrors"
	"github.com/echopind/echopind_backend/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	tests := []struct {
		in      string
		want    domain.Role
		wantErr bool
	}{
		{"student", domain.RoleStudent, false},
		{" Teacher ", domain.RoleTeacher, false},
		{"ADMIN", domain.RoleAdmin, false},
		{"superuser", domain.RoleUnknown, true},
		{"", domain.RoleUnknown, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := domain.ParseRole(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, apperrors.ErrValidation)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRoleJSON(t *testing.T) {
	b, err := json.Marshal(struct {
		Role domain.Role `json:"role"`
	}{domain.RoleTeacher})
	require.NoError(t, err)
	assert.JSONEq(t, `{"role":"teacher"}`, string(b))

	var decoded struct {
		Role domain.Role `json:"role"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"role":"admin"}`), &decoded))
	assert.Equal(t, domain.RoleAdmin, decoded.Role)

	assert.Error(t, json.Unmarshal([]byte(`{"role":"root"}`), &decoded))
	_, err = json.Marshal(struct{ R domain.Role }{domain.RoleUnknown})
	assert.Error(t, err)
}

func TestRoleSet(t *testing.T) {
	staff := domain.NewRoleSet(domain.RoleTeacher, domain.RoleAdmin)

	assert.True(t, staff.Contains(domain.RoleTeacher))
	assert.True(t, staff.Contains(domain.RoleAdmin))
	assert.False(t, staff.Contains(domain.RoleStudent))
	assert.False(t, staff.Contains(domain.RoleUnknown))
	assert.Equal(t, []domain.Role{domain.RoleTeacher, domain.RoleAdmin}, staff.Roles())
	assert.Equal(t, "{teacher,admin}", staff.String())

	assert.False(t, domain.NewRoleSet(domain.RoleUnknown).Contains(domain.RoleUnknown))
}
