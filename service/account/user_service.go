package account

import (
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"erp.GO/core/auth"
	entity "erp.GO/model/entity"
	accountRepo "erp.GO/model/repository/account"
)

var (
	ErrValidation         = errors.New("validation failed")
	ErrUserNotFound       = errors.New("user not found")
	ErrUsernameTaken      = errors.New("username already in use")
	ErrEmailTaken         = errors.New("email already in use")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrAccountDisabled    = errors.New("account disabled")
)

const tokenTTL = 24 * time.Hour

type UserService struct {
	db   *gorm.DB
	repo *accountRepo.UserRepository
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db, repo: accountRepo.NewUserRepository(db)}
}

type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Email    string `json:"email"`
}

func (r RegisterRequest) validate() error {
	if r.Username == "" {
		return fmt.Errorf("%w: username is required", ErrValidation)
	}
	if len(r.Password) < 6 {
		return fmt.Errorf("%w: password must be at least 6 characters", ErrValidation)
	}
	if r.Email == "" {
		return fmt.Errorf("%w: email is required", ErrValidation)
	}
	return nil
}

// Register creates a user with a bcrypt-hashed password.
func (s *UserService) Register(req RegisterRequest) (*entity.User, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	var count int64
	if err := s.db.Model(&entity.User{}).Where("username = ?", req.Username).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrUsernameTaken
	}
	if err := s.db.Model(&entity.User{}).Where("email = ?", req.Email).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	user := entity.User{
		Username: req.Username,
		Password: string(hash),
		Name:     req.Name,
		Email:    req.Email,
		IsActive: true,
	}
	if err := s.repo.Create(&user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Login verifies credentials and issues a bearer token.
func (s *UserService) Login(username, password string) (string, *entity.User, error) {
	if username == "" || password == "" {
		return "", nil, fmt.Errorf("%w: username and password are required", ErrValidation)
	}
	user, err := s.repo.FindByUsername(username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return "", nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return "", nil, ErrAccountDisabled
	}
	token, err := auth.IssueToken(user, tokenTTL)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

func (s *UserService) Get(id uint) (*entity.User, error) {
	user, err := s.repo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *UserService) List() ([]entity.User, error) {
	return s.repo.All()
}

// UpdateUserRequest edits profile fields; empty fields keep their value.
type UpdateUserRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *UserService) Update(id uint, req UpdateUserRequest) (*entity.User, error) {
	user, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if req.Name != "" {
		user.Name = req.Name
	}
	if req.Email != "" {
		user.Email = req.Email
	}
	if req.Password != "" {
		if len(req.Password) < 6 {
			return nil, fmt.Errorf("%w: password must be at least 6 characters", ErrValidation)
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		user.Password = string(hash)
	}
	if err := s.repo.Save(user); err != nil {
		return nil, err
	}
	auth.InvalidateUser(user.UserID)
	return user, nil
}

// Deactivate blocks future logins and token use without deleting history.
func (s *UserService) Deactivate(id uint) error {
	user, err := s.Get(id)
	if err != nil {
		return err
	}
	user.IsActive = false
	if err := s.repo.Save(user); err != nil {
		return err
	}
	auth.InvalidateUser(user.UserID)
	return nil
}

// AssignRole attaches a role by name to a user.
func (s *UserService) AssignRole(userID uint, role *entity.Role) error {
	user, err := s.Get(userID)
	if err != nil {
		return err
	}
	if err := s.repo.AssignRole(user, role); err != nil {
		return err
	}
	auth.InvalidateUser(user.UserID)
	return nil
}
