package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRole_IsValid(t *testing.T) {
	assert.True(t, RoleNeedy.IsValid())
	assert.True(t, RoleAdmin.IsValid())
	assert.False(t, Role("donner").IsValid())
}

func TestActor_Is(t *testing.T) {
	a := Actor{UserID: 1, Role: RoleDonor}
	assert.True(t, a.Is(RoleCustomer, RoleDonor))
	assert.False(t, a.Is(RoleNeedy))
	assert.False(t, a.Is())
}
