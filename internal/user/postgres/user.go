package postgres

import (
	"errors"

	"gorm.io/gorm"

	userDatamodel "github.com/sciadvances/catalog-api/internal/core/datamodel/user"
	"github.com/sciadvances/catalog-api/internal/user"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) user.RepositoryAPI {
	return &UserRepository{db: db}
}

func (r *UserRepository) All() ([]*userDatamodel.User, error) {
	var rows []*userDatamodel.User
	err := r.db.Order("id ASC").Find(&rows).Error
	return rows, err
}

func (r *UserRepository) ByID(id int64) (*userDatamodel.User, error) {
	var row userDatamodel.User
	err := r.db.First(&row, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (r *UserRepository) ByUsername(username string) (*userDatamodel.User, error) {
	var row userDatamodel.User
	err := r.db.Where("username = ?", username).Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (r *UserRepository) IDByUsername(username string) (int64, error) {
	var row userDatamodel.User
	err := r.db.Select("id").Where("username = ?", username).Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return row.ID, nil
}

func (r *UserRepository) IDByEmail(email string) (int64, error) {
	var row userDatamodel.User
	err := r.db.Select("id").Where("email = ?", email).Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return row.ID, nil
}

func (r *UserRepository) Create(u *userDatamodel.User) error {
	return r.db.Create(u).Error
}

func (r *UserRepository) Update(u *userDatamodel.User) error {
	return r.db.Save(u).Error
}

func (r *UserRepository) Delete(id int64) error {
	return r.db.Delete(&userDatamodel.User{}, id).Error
}
