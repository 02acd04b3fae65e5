package models

import (
	"fmt"
	"strconv"
	"strings"
)

// Role is the privilege level stored in user.role as a small integer.
type Role int16

const (
	RoleGuest Role = iota
	RoleMember
	RoleBlogger
	RoleModerator
	RoleAdmin
)

var roleNames = map[Role]string{
	RoleGuest:     "guest",
	RoleMember:    "member",
	RoleBlogger:   "blogger",
	RoleModerator: "moderator",
	RoleAdmin:     "admin",
}

func (r Role) String() string {
	if name, ok := roleNames[r]; ok {
		return name
	}
	return "role(" + strconv.Itoa(int(r)) + ")"
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	_, ok := roleNames[r]
	return ok
}

// ParseRole accepts either a role name ("admin") or its stored number ("4").
func ParseRole(s string) (Role, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	for role, name := range roleNames {
		if name == s {
			return role, nil
		}
	}
	n, err := strconv.ParseInt(s, 10, 16)
	if err != nil {
		return RoleGuest, fmt.Errorf("unknown role %q", s)
	}
	return Role(n), nil
}
