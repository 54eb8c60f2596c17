package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidRoleAcceptsAllAssignableRoles(t *testing.T) {
	for _, role := range []string{"member", "admin", "developer"} {
		assert.True(t, ValidRole(role), role)
	}
}

func TestValidRoleRejectsUnknownRoles(t *testing.T) {
	for _, role := range []string{"", "root", "Admin", "owner"} {
		assert.False(t, ValidRole(role), role)
	}
}

func TestFullName(t *testing.T) {
	u := User{FirstName: "Ada", LastName: "Byron"}
	assert.Equal(t, "Ada Byron", u.FullName())
}
