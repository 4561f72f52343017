// Package adapters provides repository implementations for the users feature.
package adapters

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"user_backend/internal/feature/users/domain/entity"
	"user_backend/internal/feature/users/usecase"
)

var errNilUser = errors.New("user is nil")

// userGorm is a GORM implementation of the UserRepository interface.
// It works on PostgreSQL in production and SQLite in tests.
type userGorm struct {
	db *gorm.DB
}

// Compile-time check to ensure userGorm implements UserRepository.
var _ usecase.UserRepository = (*userGorm)(nil)

// NewUserGorm creates a new instance of userGorm.
func NewUserGorm(db *gorm.DB) *userGorm {
	return &userGorm{db: db}
}

// Create inserts the user and copies the generated ID and timestamps back.
// Uniqueness violations are returned as *usecase.DuplicateEntryError.
func (r *userGorm) Create(ctx context.Context, u *entity.User) error {
	if u == nil {
		return errNilUser
	}
	m := UserModelFromEntity(u)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return classifyError(err)
	}
	u.ID = m.ID
	u.CreatedAt = m.CreatedAt
	u.UpdatedAt = m.UpdatedAt
	return nil
}

// FindByID retrieves a user by ID.
// It returns usecase.ErrUserNotFound if the user does not exist.
func (r *userGorm) FindByID(ctx context.Context, id uint) (*entity.User, error) {
	var m UserModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrUserNotFound
		}
		return nil, err
	}
	return m.ToEntity(), nil
}

// FindByEmail retrieves the oldest user with the given email.
// It returns usecase.ErrUserNotFound if the user does not exist.
func (r *userGorm) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	var m UserModel
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrUserNotFound
		}
		return nil, err
	}
	return m.ToEntity(), nil
}

// List returns all users ordered by ID.
func (r *userGorm) List(ctx context.Context) ([]entity.User, error) {
	var models []UserModel
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&models).Error; err != nil {
		return nil, err
	}
	out := make([]entity.User, 0, len(models))
	for i := range models {
		out = append(out, *models[i].ToEntity())
	}
	return out, nil
}

// Update writes the mutable columns of an existing user.
// It returns usecase.ErrUserNotFound if no row matched.
func (r *userGorm) Update(ctx context.Context, u *entity.User) error {
	if u == nil {
		return errNilUser
	}
	now := time.Now()
	res := r.db.WithContext(ctx).
		Model(&UserModel{ID: u.ID}).
		Select("name", "email", "password", "age", "updated_at").
		Updates(&UserModel{
			Name:      u.Name,
			Email:     u.Email,
			Password:  u.Password,
			Age:       u.Age,
			UpdatedAt: now,
		})
	if res.Error != nil {
		return classifyError(res.Error)
	}
	if res.RowsAffected == 0 {
		return usecase.ErrUserNotFound
	}
	u.UpdatedAt = now
	return nil
}

// Delete removes the user with the given ID.
// It returns usecase.ErrUserNotFound if no row matched.
func (r *userGorm) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&UserModel{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return usecase.ErrUserNotFound
	}
	return nil
}
