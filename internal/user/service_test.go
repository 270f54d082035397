package user_test

import (
	"errors"
	"log/slog"
	"os"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"

	"github.com/sciadvances/catalog-api/internal"
	userDatamodel "github.com/sciadvances/catalog-api/internal/core/datamodel/user"
	"github.com/sciadvances/catalog-api/internal/user"
)

// MockRepository implements user.RepositoryAPI for testing
type MockRepository struct {
	users      map[int64]*userDatamodel.User
	nextID     int64
	shouldFail bool
}

func NewMockRepository() *MockRepository {
	return &MockRepository{users: make(map[int64]*userDatamodel.User), nextID: 1}
}

func (m *MockRepository) All() ([]*userDatamodel.User, error) {
	if m.shouldFail {
		return nil, errors.New("database error")
	}
	var all []*userDatamodel.User
	for _, u := range m.users {
		all = append(all, u)
	}
	return all, nil
}

func (m *MockRepository) ByID(id int64) (*userDatamodel.User, error) {
	if m.shouldFail {
		return nil, errors.New("database error")
	}
	return m.users[id], nil
}

func (m *MockRepository) ByUsername(username string) (*userDatamodel.User, error) {
	if m.shouldFail {
		return nil, errors.New("database error")
	}
	for _, u := range m.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, nil
}

func (m *MockRepository) IDByUsername(username string) (int64, error) {
	u, err := m.ByUsername(username)
	if err != nil || u == nil {
		return 0, err
	}
	return u.ID, nil
}

func (m *MockRepository) IDByEmail(email string) (int64, error) {
	if m.shouldFail {
		return 0, errors.New("database error")
	}
	for _, u := range m.users {
		if u.Email == email {
			return u.ID, nil
		}
	}
	return 0, nil
}

func (m *MockRepository) Create(u *userDatamodel.User) error {
	if m.shouldFail {
		return errors.New("database error")
	}
	u.ID = m.nextID
	m.nextID++
	stored := *u
	m.users[u.ID] = &stored
	return nil
}

func (m *MockRepository) Update(u *userDatamodel.User) error {
	if m.shouldFail {
		return errors.New("database error")
	}
	stored := *u
	m.users[u.ID] = &stored
	return nil
}

func (m *MockRepository) Delete(id int64) error {
	if m.shouldFail {
		return errors.New("database error")
	}
	delete(m.users, id)
	return nil
}

func userTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func strPtr(value string) *string { return &value }
func boolPtr(value bool) *bool    { return &value }

func statusOf(err error) int {
	var appErr *internal.AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}
	return 0
}

var _ = Describe("User Service", func() {
	var (
		repo    *MockRepository
		service *user.Service
	)

	BeforeEach(func() {
		repo = NewMockRepository()
		service = user.NewService(repo, bcrypt.MinCost, userTestLogger())
	})

	create := func(username, email string) *user.User {
		u, err := service.Create(user.CreateUserDTO{
			Username: strPtr(username),
			Email:    strPtr(email),
			Password: strPtr("secret"),
		})
		Expect(err).NotTo(HaveOccurred())
		return u
	}

	Describe("Create", func() {
		It("requires username, email and password", func() {
			_, err := service.Create(user.CreateUserDTO{Username: strPtr("alice")})
			Expect(statusOf(err)).To(Equal(422))
		})

		It("stores a bcrypt hash, never the plaintext", func() {
			u := create("alice", "alice@example.com")
			Expect(u.PasswordHash).NotTo(Equal("secret"))
			Expect(bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("secret"))).To(Succeed())
		})

		It("defaults to the reader role and an active account", func() {
			u := create("alice", "alice@example.com")
			Expect(u.Role.String()).To(Equal("reader"))
			Expect(u.Active).To(BeTrue())
			Expect(u.RegisterTime).To(BeTemporally("~", time.Now(), time.Minute))
		})

		It("rejects a duplicate username", func() {
			create("alice", "alice@example.com")
			_, err := service.Create(user.CreateUserDTO{
				Username: strPtr("alice"),
				Email:    strPtr("other@example.com"),
				Password: strPtr("secret"),
			})
			Expect(statusOf(err)).To(Equal(400))
		})

		It("rejects a duplicate email", func() {
			create("alice", "alice@example.com")
			_, err := service.Create(user.CreateUserDTO{
				Username: strPtr("bob"),
				Email:    strPtr("alice@example.com"),
				Password: strPtr("secret"),
			})
			Expect(statusOf(err)).To(Equal(400))
		})

		It("rejects an unknown role", func() {
			_, err := service.Create(user.CreateUserDTO{
				Username: strPtr("alice"),
				Email:    strPtr("alice@example.com"),
				Password: strPtr("secret"),
				Role:     strPtr("admin"),
			})
			Expect(statusOf(err)).To(Equal(400))
		})

		It("accepts the writer role", func() {
			u, err := service.Create(user.CreateUserDTO{
				Username: strPtr("alice"),
				Email:    strPtr("alice@example.com"),
				Password: strPtr("secret"),
				Role:     strPtr("writer"),
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(u.Role.String()).To(Equal("writer"))
		})
	})

	Describe("Update", func() {
		It("rehashes the password when present", func() {
			u := create("alice", "alice@example.com")
			before := u.PasswordHash

			updated, err := service.Update(u, user.UpdateUserDTO{Password: strPtr("changed")})
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.PasswordHash).NotTo(Equal(before))
			Expect(bcrypt.CompareHashAndPassword([]byte(updated.PasswordHash), []byte("changed"))).To(Succeed())
		})

		It("rejects moving the username onto another account", func() {
			create("alice", "alice@example.com")
			bob := create("bob", "bob@example.com")

			_, err := service.Update(bob, user.UpdateUserDTO{Username: strPtr("alice")})
			Expect(statusOf(err)).To(Equal(400))
		})

		It("allows keeping one's own username", func() {
			alice := create("alice", "alice@example.com")
			_, err := service.Update(alice, user.UpdateUserDTO{Username: strPtr("alice")})
			Expect(err).NotTo(HaveOccurred())
		})

		It("rejects an unknown role", func() {
			alice := create("alice", "alice@example.com")
			_, err := service.Update(alice, user.UpdateUserDTO{Role: strPtr("manager")})
			Expect(statusOf(err)).To(Equal(400))
		})

		It("can deactivate an account", func() {
			alice := create("alice", "alice@example.com")
			updated, err := service.Update(alice, user.UpdateUserDTO{Active: boolPtr(false)})
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.Active).To(BeFalse())
		})
	})

	Describe("List", func() {
		It("answers not-found when there are no accounts", func() {
			_, err := service.List()
			Expect(statusOf(err)).To(Equal(404))
		})

		It("returns domain users", func() {
			create("alice", "alice@example.com")
			users, err := service.List()
			Expect(err).NotTo(HaveOccurred())
			Expect(users).To(HaveLen(1))
			Expect(users[0].Username).To(Equal("alice"))
		})
	})

	Describe("Delete", func() {
		It("answers not-found for an unknown id", func() {
			Expect(statusOf(service.Delete(42))).To(Equal(404))
		})

		It("removes the account", func() {
			alice := create("alice", "alice@example.com")
			Expect(service.Delete(alice.ID)).To(Succeed())
			_, err := service.Get(alice.ID)
			Expect(statusOf(err)).To(Equal(404))
		})
	})

	Describe("ExistsByUsername", func() {
		It("succeeds for a known username", func() {
			create("alice", "alice@example.com")
			Expect(service.ExistsByUsername("alice")).To(Succeed())
		})

		It("answers not-found otherwise", func() {
			Expect(statusOf(service.ExistsByUsername("nobody"))).To(Equal(404))
		})
	})

	Describe("serialization", func() {
		It("never exposes the password hash", func() {
			alice := create("alice", "alice@example.com")
			wrapped := user.Wrap(alice)
			Expect(wrapped.User.Username).To(Equal("alice"))

			attrs := wrapped.User
			Expect(attrs.ID).To(Equal(alice.ID))
			Expect(attrs.Role.String()).To(Equal("reader"))
		})
	})
})
