// Package access classifies portal paths and decides when an authorization
// failure should send the browser to the login page. The route guard and the
// API client both consume the same Table so their notion of "protected" can
// never drift apart.
package access

import (
	"net/http"
	"sort"
	"strings"
)

// Role is the role claim carried by the access token.
type Role string

const (
	RoleNone    Role = ""
	RoleAdmin   Role = "ADMIN"
	RoleMember  Role = "MEMBER"
	RoleStudent Role = "STUDENT"
)

// ParseRole maps anything unknown to RoleNone.
func ParseRole(s string) Role {
	switch Role(strings.ToUpper(strings.TrimSpace(s))) {
	case RoleAdmin:
		return RoleAdmin
	case RoleMember:
		return RoleMember
	case RoleStudent:
		return RoleStudent
	default:
		return RoleNone
	}
}

// Class is the access class of a path.
type Class int

const (
	// Public pages render for everyone.
	Public Class = iota
	// Authenticated pages need a verified session, any role.
	Authenticated
	// RoleGated pages need a verified session whose role is in the rule's set.
	RoleGated
	// GuestOnly pages (the login page) send authenticated visitors away.
	GuestOnly
)

func (c Class) String() string {
	switch c {
	case Public:
		return "public"
	case Authenticated:
		return "authenticated"
	case RoleGated:
		return "role-gated"
	case GuestOnly:
		return "guest-only"
	default:
		return "unknown"
	}
}

// Classification is the result of classifying a single path.
type Classification struct {
	Class Class
	Roles []Role
}

// RequiresSession reports whether the path may only be reached with a valid session.
func (c Classification) RequiresSession() bool {
	return c.Class == Authenticated || c.Class == RoleGated
}

// Allows reports whether role may view a path of this classification.
// Only meaningful for sessions that already verified.
func (c Classification) Allows(role Role) bool {
	if c.Class != RoleGated {
		return true
	}
	if role == RoleNone {
		return false
	}
	for _, r := range c.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// Rule classifies every path under Prefix.
type Rule struct {
	Prefix string
	Class  Class
	Roles  []Role
}

// Table is the complete route classification of the portal.
type Table struct {
	LoginPath  string
	HomePath   string
	rules      []Rule
	exceptions map[string]Classification
}

// NewTable builds a table. Rules are matched longest prefix first.
func NewTable(loginPath, homePath string, rules []Rule, exceptions map[string]Class) *Table {
	t := &Table{
		LoginPath:  normalize(loginPath),
		HomePath:   normalize(homePath),
		rules:      make([]Rule, 0, len(rules)),
		exceptions: make(map[string]Classification, len(exceptions)+1),
	}
	for _, r := range rules {
		r.Prefix = normalize(r.Prefix)
		t.rules = append(t.rules, r)
	}
	sort.SliceStable(t.rules, func(i, j int) bool {
		return len(t.rules[i].Prefix) > len(t.rules[j].Prefix)
	})
	for p, c := range exceptions {
		t.exceptions[normalize(p)] = Classification{Class: c}
	}
	if _, ok := t.exceptions[t.LoginPath]; !ok {
		t.exceptions[t.LoginPath] = Classification{Class: GuestOnly}
	}
	return t
}

// DefaultTable returns the portal's built-in classification.
func DefaultTable() *Table {
	return NewTable("/login", "/", []Rule{
		{Prefix: "/admin", Class: RoleGated, Roles: []Role{RoleAdmin}},
		{Prefix: "/members", Class: RoleGated, Roles: []Role{RoleMember, RoleAdmin}},
		{Prefix: "/student", Class: RoleGated, Roles: []Role{RoleStudent}},
		{Prefix: "/dashboard", Class: Authenticated},
		{Prefix: "/settings", Class: Authenticated},
		{Prefix: "/account", Class: Authenticated},
		{Prefix: "/apply", Class: Authenticated},
	}, map[string]Class{
		"/members/memberList": Public,
	})
}

// Rules returns a copy of the prefix rules, longest prefix first.
func (t *Table) Rules() []Rule {
	out := make([]Rule, len(t.rules))
	copy(out, t.rules)
	return out
}

// Classify returns the classification of path. Exact exceptions win over
// prefix rules; unmatched paths are public.
func (t *Table) Classify(path string) Classification {
	p := normalize(path)
	if c, ok := t.exceptions[p]; ok {
		return c
	}
	for _, r := range t.rules {
		if underPrefix(p, r.Prefix) {
			return Classification{Class: r.Class, Roles: r.Roles}
		}
	}
	return Classification{Class: Public}
}

// IsProtected reports whether path needs a session.
func (t *Table) IsProtected(path string) bool {
	return t.Classify(path).RequiresSession()
}

// IsLogin reports whether path is the login page.
func (t *Table) IsLogin(path string) bool {
	return normalize(path) == t.LoginPath
}

// ShouldRedirectToLogin decides whether an authorization failure observed
// while the browser is on currentPath should navigate to the login page.
func (t *Table) ShouldRedirectToLogin(currentPath string, isMutation bool) bool {
	if t.IsLogin(currentPath) {
		return false
	}
	if t.IsProtected(currentPath) {
		return true
	}
	return isMutation
}

// IsMutation reports whether a request with this method changes state.
func IsMutation(method string) bool {
	switch strings.ToUpper(method) {
	case "", http.MethodGet, http.MethodHead, http.MethodOptions:
		return false
	default:
		return true
	}
}

func underPrefix(path, prefix string) bool {
	if prefix == "/" {
		return true
	}
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}

func normalize(p string) string {
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	if p == "" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if len(p) > 1 {
		p = strings.TrimRight(p, "/")
		if p == "" {
			p = "/"
		}
	}
	return p
}
