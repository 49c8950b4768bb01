package permission_test

import (
	"testing"

	"github.com/joelosiris11/mainkam/internal/model"
	"github.com/joelosiris11/mainkam/internal/permission"

	"github.com/stretchr/testify/assert"
)

func userWithRole(role string) *model.User {
	return &model.User{Username: "alice", Role: &role}
}

func TestCheck_PermissionTable(t *testing.T) {
	cases := []struct {
		role    string
		action  string
		allowed bool
	}{
		{model.RoleAdmin, permission.ActionRead, true},
		{model.RoleAdmin, permission.ActionWrite, true},
		{model.RoleAdmin, permission.ActionDelete, true},
		{model.RoleAdmin, permission.ActionManage, true},
		{model.RoleEditor, permission.ActionRead, true},
		{model.RoleEditor, permission.ActionWrite, true},
		{model.RoleEditor, permission.ActionDelete, false},
		{model.RoleEditor, permission.ActionManage, false},
		{model.RoleViewer, permission.ActionRead, true},
		{model.RoleViewer, permission.ActionWrite, false},
		{model.RoleViewer, permission.ActionDelete, false},
		{model.RoleViewer, permission.ActionManage, false},
		{"", permission.ActionRead, false},
		{"unknown", permission.ActionRead, false},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.allowed, permission.Check(tc.role, tc.action),
			"role=%q action=%q", tc.role, tc.action)
	}
}

func TestHas_GlobalAdminOverridesProjectRole(t *testing.T) {
	admin := userWithRole(model.GlobalRoleAdmin)

	// Администратор системы имеет все права даже без членства в проекте
	assert.True(t, permission.Has(admin, "", permission.ActionManage))
	assert.True(t, permission.Has(admin, model.RoleViewer, permission.ActionDelete))
}

func TestHas_RegularUserFollowsTable(t *testing.T) {
	dev := userWithRole(model.GlobalRoleDev)

	assert.True(t, permission.Has(dev, model.RoleEditor, permission.ActionWrite))
	assert.False(t, permission.Has(dev, model.RoleEditor, permission.ActionManage))
	assert.False(t, permission.Has(dev, "", permission.ActionRead))
}

func TestHas_NilUser(t *testing.T) {
	assert.False(t, permission.Has(nil, model.RoleAdmin, permission.ActionRead))
}

func TestIsProjectOwner(t *testing.T) {
	owner := userWithRole(model.GlobalRoleDev)
	project := &model.Project{Owner: "alice"}

	assert.True(t, permission.IsProjectOwner(owner, project))

	stranger := &model.User{Username: "bob"}
	assert.False(t, permission.IsProjectOwner(stranger, project))

	// Глобальный администратор считается владельцем любого проекта
	admin := &model.User{Username: "root"}
	role := model.GlobalRoleAdmin
	admin.Role = &role
	assert.True(t, permission.IsProjectOwner(admin, project))
}

func TestEffectiveRole(t *testing.T) {
	admin := userWithRole(model.GlobalRoleAdmin)
	assert.Equal(t, model.RoleAdmin, permission.EffectiveRole(admin, model.RoleViewer))

	dev := userWithRole(model.GlobalRoleDev)
	assert.Equal(t, model.RoleViewer, permission.EffectiveRole(dev, model.RoleViewer))
}
