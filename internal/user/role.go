package user

import (
	"errors"
	"strings"
)

// Scope names. A writer implicitly passes every reader check; the privilege
// lattice has exactly these two levels.
const (
	RoleReader = "reader"
	RoleWriter = "writer"
)

// Roles lists every valid role value.
var Roles = []string{RoleReader, RoleWriter}

var ErrUnknownRole = errors.New("unexpected role")

// Role is a value object wrapping one of the two role sentinels. Invalid
// input fails at construction time, never silently coerced.
type Role struct {
	value string
}

func NewRole(role string) (Role, error) {
	role = strings.ToLower(role)
	for _, known := range Roles {
		if role == known {
			return Role{value: role}, nil
		}
	}
	return Role{}, ErrUnknownRole
}

// MustRole is for wiring and tests where the value is a literal.
func MustRole(role string) Role {
	r, err := NewRole(role)
	if err != nil {
		panic(err)
	}
	return r
}

// HasRole reports whether this role satisfies a candidate scope. Reader
// queries are always satisfied; writer only by an exact writer role. Unknown
// candidates yield false, never an error, at this layer.
func (r Role) HasRole(candidate string) bool {
	switch strings.ToLower(candidate) {
	case RoleReader:
		return true
	case RoleWriter:
		return r.value == RoleWriter
	default:
		return false
	}
}

func (r Role) String() string {
	if r.value == "" {
		return RoleReader
	}
	return r.value
}

func (r Role) MarshalJSON() ([]byte, error) {
	return []byte(`"` + r.String() + `"`), nil
}
