// Package access decides whether a caller may use the admin back-office.
package access

import "github.com/digitalblog/backoffice/internal/models"

// Caller is whoever issued the current request.
type Caller struct {
	Authenticated bool
	UserID        uint
	Role          models.Role
	Email         string
}

// Anonymous is the caller of a request that carried no usable credentials.
var Anonymous = Caller{}

// Decision is the outcome of checking a caller against a policy.
type Decision int

const (
	Granted Decision = iota
	// Unauthenticated callers are sent to the login page.
	Unauthenticated
	// Forbidden callers are known but lack the role; they get an explicit denial.
	Forbidden
)

func (d Decision) String() string {
	switch d {
	case Granted:
		return "granted"
	case Unauthenticated:
		return "unauthenticated"
	case Forbidden:
		return "forbidden"
	default:
		return "unknown"
	}
}

// Policy decides access for a caller.
type Policy interface {
	Decide(c Caller) Decision
}

// PolicyFunc adapts a function to Policy.
type PolicyFunc func(c Caller) Decision

func (f PolicyFunc) Decide(c Caller) Decision { return f(c) }

// AdminOnly grants access to authenticated callers holding the admin role
// and nobody else.
var AdminOnly Policy = PolicyFunc(func(c Caller) Decision {
	if !c.Authenticated {
		return Unauthenticated
	}
	if c.Role != models.RoleAdmin {
		return Forbidden
	}
	return Granted
})

// Allowed reports whether p grants access to c.
func Allowed(p Policy, c Caller) bool {
	return p.Decide(c) == Granted
}
