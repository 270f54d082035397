package postgres

import (
	"github.com/sciadvances/catalog-api/internal/user"
)

// UserSource adapts the user repository to the account lookup the login
// flow needs.
type UserSource struct {
	users user.RepositoryAPI
}

func NewUserSource(users user.RepositoryAPI) *UserSource {
	return &UserSource{users: users}
}

func (s *UserSource) ByUsername(username string) (*user.User, error) {
	dm, err := s.users.ByUsername(username)
	if err != nil {
		return nil, err
	}
	if dm == nil {
		return nil, nil
	}
	return user.FromDataModel(dm), nil
}
