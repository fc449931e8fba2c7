package access

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultTable_Classify(t *testing.T) {
	table := DefaultTable()

	tests := []struct {
		path  string
		class Class
		roles []Role
	}{
		{"/", Public, nil},
		{"/blogs", Public, nil},
		{"/guides/printers", Public, nil},
		{"/login", GuestOnly, nil},
		{"/login/", GuestOnly, nil},
		{"/admin", RoleGated, []Role{RoleAdmin}},
		{"/admin/blogs", RoleGated, []Role{RoleAdmin}},
		{"/administrator", Public, nil},
		{"/members", RoleGated, []Role{RoleMember, RoleAdmin}},
		{"/members/shifts", RoleGated, []Role{RoleMember, RoleAdmin}},
		{"/members/memberList", Public, nil},
		{"/members/memberList/", Public, nil},
		{"/members/memberList?page=2", Public, nil},
		{"/student/tasks", RoleGated, []Role{RoleStudent}},
		{"/dashboard", Authenticated, nil},
		{"/settings/profile", Authenticated, nil},
		{"/account", Authenticated, nil},
		{"/apply", Authenticated, nil},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got := table.Classify(tt.path)
			assert.Equal(t, tt.class, got.Class)
			assert.ElementsMatch(t, tt.roles, got.Roles)
		})
	}
}

func TestClassification_Allows(t *testing.T) {
	table := DefaultTable()

	admin := table.Classify("/admin/members")
	assert.True(t, admin.Allows(RoleAdmin))
	assert.False(t, admin.Allows(RoleStudent))
	assert.False(t, admin.Allows(RoleNone))

	members := table.Classify("/members/tasks")
	assert.True(t, members.Allows(RoleMember))
	assert.True(t, members.Allows(RoleAdmin))
	assert.False(t, members.Allows(RoleStudent))

	assert.True(t, table.Classify("/dashboard").Allows(RoleNone))
}

func TestShouldRedirectToLogin(t *testing.T) {
	table := DefaultTable()

	tests := []struct {
		name       string
		path       string
		isMutation bool
		want       bool
	}{
		{"login page never redirects", "/login", true, false},
		{"login page read never redirects", "/login", false, false},
		{"protected read redirects", "/admin/blogs", false, true},
		{"protected mutation redirects", "/dashboard", true, true},
		{"public mutation redirects", "/blogs", true, true},
		{"public read stays", "/guides", false, false},
		{"public member list read stays", "/members/memberList", false, false},
		{"public member list mutation redirects", "/members/memberList", true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, table.ShouldRedirectToLogin(tt.path, tt.isMutation))
		})
	}
}

func TestIsMutation(t *testing.T) {
	assert.False(t, IsMutation(http.MethodGet))
	assert.False(t, IsMutation("get"))
	assert.False(t, IsMutation(http.MethodHead))
	assert.False(t, IsMutation(http.MethodOptions))
	for _, m := range []string{http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete} {
		assert.True(t, IsMutation(m), m)
	}
}

func TestParseRole(t *testing.T) {
	assert.Equal(t, RoleAdmin, ParseRole("ADMIN"))
	assert.Equal(t, RoleMember, ParseRole("member"))
	assert.Equal(t, RoleStudent, ParseRole(" Student "))
	assert.Equal(t, RoleNone, ParseRole("SUPERUSER"))
	assert.Equal(t, RoleNone, ParseRole(""))
}

func TestParseTable(t *testing.T) {
	t.Run("valid file", func(t *testing.T) {
		table, err := ParseTable([]byte(`
login_path: /signin
rules:
  - prefix: /staff
    class: role-gated
    roles: [ADMIN, MEMBER]
  - prefix: /me
    class: authenticated
exceptions:
  - path: /staff/roster
    class: public
`))
		require.NoError(t, err)
		assert.Equal(t, "/signin", table.LoginPath)
		assert.Equal(t, "/", table.HomePath)
		assert.Equal(t, GuestOnly, table.Classify("/signin").Class)
		assert.Equal(t, RoleGated, table.Classify("/staff/x").Class)
		assert.Equal(t, Public, table.Classify("/staff/roster").Class)
		assert.Equal(t, Authenticated, table.Classify("/me").Class)
		assert.False(t, table.ShouldRedirectToLogin("/signin", true))
	})

	t.Run("role-gated without roles", func(t *testing.T) {
		_, err := ParseTable([]byte(`
login_path: /login
rules:
  - prefix: /admin
    class: role-gated
`))
		assert.Error(t, err)
	})

	t.Run("unknown role", func(t *testing.T) {
		_, err := ParseTable([]byte(`
login_path: /login
rules:
  - prefix: /admin
    class: role-gated
    roles: [ROOT]
`))
		assert.Error(t, err)
	})

	t.Run("missing login path", func(t *testing.T) {
		_, err := ParseTable([]byte(`rules: []`))
		assert.Error(t, err)
	})

	t.Run("relative prefix", func(t *testing.T) {
		_, err := ParseTable([]byte(`
login_path: /login
rules:
  - prefix: admin
    class: authenticated
`))
		assert.Error(t, err)
	})
}

func TestLoadTable_EmptyPathUsesDefault(t *testing.T) {
	table, err := LoadTable("")
	require.NoError(t, err)
	assert.Equal(t, "/login", table.LoginPath)
	assert.Equal(t, RoleGated, table.Classify("/admin").Class)
}
