package user

// CreateUserDTO is the POST /users payload. Username, email and password are
// required; the rest is optional.
type CreateUserDTO struct {
	Username  *string `json:"username"`
	Email     *string `json:"email"`
	Password  *string `json:"password"`
	Role      *string `json:"role"`
	Name      *string `json:"name"`
	BirthDate *string `json:"birthDate"`
	Active    *bool   `json:"active"`
}

// UpdateUserDTO is the PUT /users/{id} payload; only present fields are
// touched, unknown payload fields are ignored.
type UpdateUserDTO struct {
	Username  *string `json:"username"`
	Email     *string `json:"email"`
	Password  *string `json:"password"`
	Role      *string `json:"role"`
	Name      *string `json:"name"`
	BirthDate *string `json:"birthDate"`
	Active    *bool   `json:"active"`
}

// UserAttrs is the serialized account, never including the password hash.
type UserAttrs struct {
	ID           int64   `json:"id"`
	Username     string  `json:"username"`
	Email        string  `json:"email"`
	Active       bool    `json:"active"`
	Name         string  `json:"name"`
	BirthDate    *string `json:"birthDate"`
	Role         Role    `json:"role"`
	RegisterTime string  `json:"registerTime"`
}

// UserResponse is the single-resource body: {"user": {...}}.
type UserResponse struct {
	User UserAttrs `json:"user"`
}

// UsersResponse is the collection body: {"users": [{"user": {...}}, ...]}.
type UsersResponse struct {
	Users []UserResponse `json:"users"`
}

// Wrap builds the single-resource body used both on the wire and as
// fingerprint input.
func Wrap(u *User) UserResponse {
	var birth *string
	if u.BirthDate != nil {
		s := u.BirthDate.String()
		birth = &s
	}
	return UserResponse{
		User: UserAttrs{
			ID:           u.ID,
			Username:     u.Username,
			Email:        u.Email,
			Active:       u.Active,
			Name:         u.Name,
			BirthDate:    birth,
			Role:         u.Role,
			RegisterTime: u.RegisterTime.UTC().Format("2006-01-02"),
		},
	}
}

// Collection builds the list body.
func Collection(users []*User) UsersResponse {
	items := make([]UserResponse, 0, len(users))
	for _, u := range users {
		items = append(items, Wrap(u))
	}
	return UsersResponse{Users: items}
}
