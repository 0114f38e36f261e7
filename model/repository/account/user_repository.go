package account

import (
	"gorm.io/gorm"

	entity "erp.GO/model/entity"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// FindByID loads a user with the full role/permission graph.
func (r *UserRepository) FindByID(id uint) (*entity.User, error) {
	var u entity.User
	err := r.db.Preload("Roles").Preload("Roles.Permissions").
		First(&u, "user_id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) FindByUsername(username string) (*entity.User, error) {
	var u entity.User
	err := r.db.Preload("Roles").Preload("Roles.Permissions").
		First(&u, "username = ?", username).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) All() ([]entity.User, error) {
	var users []entity.User
	err := r.db.Preload("Roles").Order("user_id").Find(&users).Error
	return users, err
}

func (r *UserRepository) Create(u *entity.User) error {
	return r.db.Create(u).Error
}

func (r *UserRepository) Save(u *entity.User) error {
	return r.db.Save(u).Error
}

// AssignRole appends a role to the user's role set.
func (r *UserRepository) AssignRole(u *entity.User, role *entity.Role) error {
	return r.db.Model(u).Association("Roles").Append(role)
}
