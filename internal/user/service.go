package user

import (
	"log/slog"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/sciadvances/catalog-api/internal"
	userDatamodel "github.com/sciadvances/catalog-api/internal/core/datamodel/user"
)

type RepositoryAPI interface {
	All() ([]*userDatamodel.User, error)
	ByID(id int64) (*userDatamodel.User, error)
	ByUsername(username string) (*userDatamodel.User, error)
	IDByUsername(username string) (int64, error)
	IDByEmail(email string) (int64, error)
	Create(u *userDatamodel.User) error
	Update(u *userDatamodel.User) error
	Delete(id int64) error
}

type Service struct {
	repo       RepositoryAPI
	bcryptCost int
	logger     *slog.Logger
}

func NewService(repo RepositoryAPI, bcryptCost int, logger *slog.Logger) *Service {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Service{
		repo:       repo,
		bcryptCost: bcryptCost,
		logger:     logger,
	}
}

// List returns all accounts; an empty table is a 404, matching the element
// collections.
func (s *Service) List() ([]*User, error) {
	rows, err := s.repo.All()
	if err != nil {
		s.logger.Error("failed to list users", "error", err)
		return nil, internal.NewInternalError(err)
	}
	if len(rows) == 0 {
		return nil, internal.NewNotFoundError()
	}

	users := make([]*User, 0, len(rows))
	for _, row := range rows {
		users = append(users, FromDataModel(row))
	}
	return users, nil
}

func (s *Service) Get(id int64) (*User, error) {
	row, err := s.repo.ByID(id)
	if err != nil {
		s.logger.Error("failed to load user", "id", id, "error", err)
		return nil, internal.NewInternalError(err)
	}
	if row == nil {
		return nil, internal.NewNotFoundError()
	}
	return FromDataModel(row), nil
}

// ByUsername is the credential lookup used by the login flow.
func (s *Service) ByUsername(username string) (*User, error) {
	row, err := s.repo.ByUsername(username)
	if err != nil {
		return nil, internal.NewInternalError(err)
	}
	if row == nil {
		return nil, internal.NewNotFoundError()
	}
	return FromDataModel(row), nil
}

func (s *Service) ExistsByUsername(username string) error {
	id, err := s.repo.IDByUsername(username)
	if err != nil {
		s.logger.Error("failed to probe username", "username", username, "error", err)
		return internal.NewInternalError(err)
	}
	if id == 0 {
		return internal.NewNotFoundError()
	}
	return nil
}

// Create validates required fields, the username/email uniqueness pair and
// the role value, then persists a new account.
func (s *Service) Create(dto CreateUserDTO) (*User, error) {
	if dto.Username == nil || *dto.Username == "" ||
		dto.Email == nil || *dto.Email == "" ||
		dto.Password == nil || *dto.Password == "" {
		return nil, internal.NewUnprocessableEntityError()
	}

	if taken, err := s.usernameTaken(*dto.Username, 0); err != nil {
		return nil, err
	} else if taken {
		return nil, internal.NewBadRequestError()
	}
	if taken, err := s.emailTaken(*dto.Email, 0); err != nil {
		return nil, err
	} else if taken {
		return nil, internal.NewBadRequestError()
	}

	roleValue := RoleReader
	if dto.Role != nil {
		roleValue = *dto.Role
	}
	role, err := NewRole(roleValue)
	if err != nil {
		return nil, internal.NewBadRequestError().WithCause(err)
	}

	hash, err := s.HashPassword(*dto.Password)
	if err != nil {
		return nil, internal.NewInternalError(err)
	}

	u := &User{
		Username:     *dto.Username,
		Email:        *dto.Email,
		PasswordHash: hash,
		Role:         role,
		Active:       true,
		RegisterTime: time.Now().UTC(),
	}
	if dto.Name != nil {
		u.Name = *dto.Name
	}
	if dto.Active != nil {
		u.Active = *dto.Active
	}
	if dto.BirthDate != nil {
		if d, err := internal.ParseDate(*dto.BirthDate); err == nil {
			u.BirthDate = &d
		}
	}

	dm := ToDataModel(u)
	if err := s.repo.Create(dm); err != nil {
		s.logger.Error("failed to create user", "username", u.Username, "error", err)
		return nil, internal.NewBadRequestError().WithCause(err)
	}
	u.ID = dm.ID
	s.logger.Info("user created", "id", u.ID, "username", u.Username)
	return u, nil
}

// Update applies a partial patch to an already-loaded account. Moving the
// username or email onto a value held by a different id is a 400, as is an
// unknown role. The precondition check happens at the handler.
func (s *Service) Update(u *User, dto UpdateUserDTO) (*User, error) {
	if dto.Username != nil {
		if taken, err := s.usernameTaken(*dto.Username, u.ID); err != nil {
			return nil, err
		} else if taken {
			return nil, internal.NewBadRequestError()
		}
		u.Username = *dto.Username
	}

	if dto.Email != nil {
		if taken, err := s.emailTaken(*dto.Email, u.ID); err != nil {
			return nil, err
		} else if taken {
			return nil, internal.NewBadRequestError()
		}
		u.Email = *dto.Email
	}

	if dto.Password != nil {
		hash, err := s.HashPassword(*dto.Password)
		if err != nil {
			return nil, internal.NewInternalError(err)
		}
		u.PasswordHash = hash
	}

	if dto.Role != nil {
		role, err := NewRole(*dto.Role)
		if err != nil {
			return nil, internal.NewBadRequestError().WithCause(err)
		}
		u.Role = role
	}

	if dto.Name != nil {
		u.Name = *dto.Name
	}
	if dto.Active != nil {
		u.Active = *dto.Active
	}
	if dto.BirthDate != nil {
		if d, err := internal.ParseDate(*dto.BirthDate); err == nil {
			u.BirthDate = &d
		}
	}

	if err := s.repo.Update(ToDataModel(u)); err != nil {
		s.logger.Error("failed to update user", "id", u.ID, "error", err)
		return nil, internal.NewInternalError(err)
	}
	s.logger.Info("user updated", "id", u.ID)
	return u, nil
}

func (s *Service) Delete(id int64) error {
	row, err := s.repo.ByID(id)
	if err != nil {
		return internal.NewInternalError(err)
	}
	if row == nil {
		return internal.NewNotFoundError()
	}

	if err := s.repo.Delete(id); err != nil {
		s.logger.Error("failed to delete user", "id", id, "error", err)
		return internal.NewInternalError(err)
	}
	s.logger.Info("user deleted", "id", id)
	return nil
}

// HashPassword creates a bcrypt hash of the password
func (s *Service) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func (s *Service) usernameTaken(username string, selfID int64) (bool, error) {
	id, err := s.repo.IDByUsername(username)
	if err != nil {
		return false, internal.NewInternalError(err)
	}
	return id != 0 && id != selfID, nil
}

func (s *Service) emailTaken(email string, selfID int64) (bool, error) {
	id, err := s.repo.IDByEmail(email)
	if err != nil {
		return false, internal.NewInternalError(err)
	}
	return id != 0 && id != selfID, nil
}
