package access

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

type rulesFile struct {
	LoginPath  string         `yaml:"login_path"`
	HomePath   string         `yaml:"home_path"`
	Rules      []ruleEntry    `yaml:"rules"`
	Exceptions []exceptionRow `yaml:"exceptions"`
}

type ruleEntry struct {
	Prefix string   `yaml:"prefix"`
	Class  string   `yaml:"class"`
	Roles  []string `yaml:"roles"`
}

type exceptionRow struct {
	Path  string `yaml:"path"`
	Class string `yaml:"class"`
}

// LoadTable reads a classification table from a YAML file. An empty path
// returns DefaultTable.
//
//	login_path: /login
//	home_path: /
//	rules:
//	  - prefix: /admin
//	    class: role-gated
//	    roles: [ADMIN]
//	exceptions:
//	  - path: /members/memberList
//	    class: public
func LoadTable(path string) (*Table, error) {
	if path == "" {
		return DefaultTable(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read access rules file: %w", err)
	}
	return ParseTable(data)
}

// ParseTable parses and validates a YAML classification table.
func ParseTable(data []byte) (*Table, error) {
	var f rulesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse access rules: %w", err)
	}
	if f.LoginPath == "" {
		return nil, fmt.Errorf("access rules: login_path is required")
	}
	if f.HomePath == "" {
		f.HomePath = "/"
	}

	rules := make([]Rule, 0, len(f.Rules))
	for i, r := range f.Rules {
		if !strings.HasPrefix(r.Prefix, "/") {
			return nil, fmt.Errorf("access rules: rule %d: prefix %q must start with /", i, r.Prefix)
		}
		class, err := parseClass(r.Class)
		if err != nil {
			return nil, fmt.Errorf("access rules: rule %d: %w", i, err)
		}
		var roles []Role
		for _, s := range r.Roles {
			role := ParseRole(s)
			if role == RoleNone {
				return nil, fmt.Errorf("access rules: rule %d: unknown role %q", i, s)
			}
			roles = append(roles, role)
		}
		if class == RoleGated && len(roles) == 0 {
			return nil, fmt.Errorf("access rules: rule %d: role-gated prefix %s lists no roles", i, r.Prefix)
		}
		rules = append(rules, Rule{Prefix: r.Prefix, Class: class, Roles: roles})
	}

	exceptions := make(map[string]Class, len(f.Exceptions))
	for i, e := range f.Exceptions {
		if !strings.HasPrefix(e.Path, "/") {
			return nil, fmt.Errorf("access rules: exception %d: path %q must start with /", i, e.Path)
		}
		class, err := parseClass(e.Class)
		if err != nil {
			return nil, fmt.Errorf("access rules: exception %d: %w", i, err)
		}
		if class == RoleGated {
			return nil, fmt.Errorf("access rules: exception %d: exceptions cannot be role-gated", i)
		}
		exceptions[e.Path] = class
	}

	return NewTable(f.LoginPath, f.HomePath, rules, exceptions), nil
}

func parseClass(s string) (Class, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "public":
		return Public, nil
	case "authenticated", "auth":
		return Authenticated, nil
	case "role-gated", "role_gated", "roles":
		return RoleGated, nil
	case "guest-only", "guest_only", "guest":
		return GuestOnly, nil
	default:
		return Public, fmt.Errorf("unknown class %q", s)
	}
}
