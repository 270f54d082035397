package user

import (
	"time"

	"github.com/sciadvances/catalog-api/internal"
	userDatamodel "github.com/sciadvances/catalog-api/internal/core/datamodel/user"
)

// User is the account domain model. The password only ever exists here as a
// bcrypt hash; the plaintext never leaves the create/update path.
type User struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	Name         string
	BirthDate    *internal.Date
	RegisterTime time.Time
	Active       bool
	Role         Role
}

func (u *User) HasRole(role string) bool {
	return u.Role.HasRole(role)
}

// Scopes returns the roles this user can be granted: always reader, writer
// only for writer accounts.
func (u *User) Scopes() []string {
	scopes := []string{RoleReader}
	if u.Role.HasRole(RoleWriter) {
		scopes = append(scopes, RoleWriter)
	}
	return scopes
}

func (u *User) IsActiveUser() bool {
	return u.Active
}

func ToDataModel(u *User) *userDatamodel.User {
	var birth *time.Time
	if u.BirthDate != nil {
		t := u.BirthDate.Time
		birth = &t
	}
	return &userDatamodel.User{
		ID:           u.ID,
		Username:     u.Username,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Name:         u.Name,
		BirthDate:    birth,
		RegisterTime: u.RegisterTime,
		Active:       u.Active,
		Role:         u.Role.String(),
	}
}

func FromDataModel(dm *userDatamodel.User) *User {
	var birth *internal.Date
	if dm.BirthDate != nil {
		d := internal.Date{Time: dm.BirthDate.UTC()}
		birth = &d
	}
	role, err := NewRole(dm.Role)
	if err != nil {
		// stored roles are validated on every write path; fall back rather
		// than fail a read
		role = MustRole(RoleReader)
	}
	return &User{
		ID:           dm.ID,
		Username:     dm.Username,
		Email:        dm.Email,
		PasswordHash: dm.PasswordHash,
		Name:         dm.Name,
		BirthDate:    birth,
		RegisterTime: dm.RegisterTime,
		Active:       dm.Active,
		Role:         role,
	}
}
