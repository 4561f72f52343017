package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"golang.org/x/crypto/bcrypt"

	"user_backend/internal/feature/users/domain/entity"
)

const (
	welcomeSubject      = "Welcome!"
	welcomeBodyTemplate = "Hello %s, thank you for registering to my server."
)

// UserRepository abstracts the persistence layer for user entities.
// Following Go convention: interfaces are defined by the consumer (usecase), not the provider (adapters).
type UserRepository interface {
	// Create persists a new user and sets its ID.
	// A uniqueness violation is reported as *DuplicateEntryError.
	Create(ctx context.Context, user *entity.User) error
	// FindByID returns ErrUserNotFound when no user has the given ID.
	FindByID(ctx context.Context, id uint) (*entity.User, error)
	// FindByEmail returns ErrUserNotFound when no user has the given email.
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	// List returns every user ordered by ID.
	List(ctx context.Context) ([]entity.User, error)
	// Update writes name, email, password and age of an existing user.
	Update(ctx context.Context, user *entity.User) error
	// Delete removes the user with the given ID.
	Delete(ctx context.Context, id uint) error
}

// Notifier delivers a message to a recipient without blocking the caller on delivery.
type Notifier interface {
	Dispatch(ctx context.Context, recipient, subject, body string) error
}

// RegisterInput carries the fields of a registration request.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Age      int
}

// UpdateInput carries a partial update; nil fields are left untouched.
type UpdateInput struct {
	Name     *string
	Email    *string
	Password *string
	Age      *int
}

// UpdateResult holds the user before and after a committed update.
type UpdateResult struct {
	Older *entity.User
	Newer *entity.User
}

// userUsecase runs the register/read/update/delete pipeline.
type userUsecase struct {
	users    UserRepository
	notifier Notifier
	hashCost int
}

// NewUserUsecase creates a userUsecase. notifier may be nil, in which case no
// welcome message is sent.
func NewUserUsecase(users UserRepository, notifier Notifier) *userUsecase {
	return &userUsecase{
		users:    users,
		notifier: notifier,
		hashCost: bcrypt.DefaultCost,
	}
}

// Register validates the payload, rejects an already registered email,
// hashes the password and persists the user. A welcome message is dispatched
// afterwards; its failure never undoes the registration.
func (u *userUsecase) Register(ctx context.Context, in RegisterInput) (*entity.User, error) {
	user, err := entity.NewUser(in.Name, in.Email, in.Password, in.Age)
	if err != nil {
		return nil, validationFailure(err)
	}

	existing, err := u.users.FindByEmail(ctx, user.Email)
	if err == nil && existing != nil {
		return nil, &Failure{Kind: KindConflict, Reason: ReasonEmailExists}
	}
	if err != nil && !errors.Is(err, ErrUserNotFound) {
		return nil, storeFailure(err, nil)
	}

	hashed, err := u.hash(user.Password)
	if err != nil {
		return nil, err
	}
	user.Password = hashed

	if err := u.users.Create(ctx, user); err != nil {
		return nil, storeFailure(err, nil)
	}

	u.sendWelcome(ctx, user)
	return user, nil
}

// List returns every stored user.
func (u *userUsecase) List(ctx context.Context) ([]entity.User, error) {
	users, err := u.users.List(ctx)
	if err != nil {
		return nil, storeFailure(err, nil)
	}
	return users, nil
}

// Read looks a user up by numeric ID or, when idOrEmail is not a number, by email.
func (u *userUsecase) Read(ctx context.Context, idOrEmail string) (*entity.User, error) {
	var (
		user *entity.User
		err  error
	)
	if id, convErr := strconv.ParseUint(idOrEmail, 10, 64); convErr == nil {
		user, err = u.users.FindByID(ctx, uint(id))
	} else {
		user, err = u.users.FindByEmail(ctx, idOrEmail)
	}
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, notFoundFailure()
		}
		return nil, storeFailure(err, nil)
	}
	return user, nil
}

// Update applies the present fields of in to the user with the given ID.
// The password is only rehashed when the new plaintext does not match the
// stored hash. An update that changes nothing fails with ReasonSameCredentials
// and is not committed.
func (u *userUsecase) Update(ctx context.Context, id uint, in UpdateInput) (*UpdateResult, error) {
	current, err := u.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, notFoundFailure()
		}
		return nil, storeFailure(err, nil)
	}

	older := current.Clone()
	newer := current.Clone()

	if err := applyUpdate(newer, in); err != nil {
		f := validationFailure(err)
		f.Context = older
		return nil, f
	}

	if in.Password != nil && bcrypt.CompareHashAndPassword([]byte(newer.Password), []byte(*in.Password)) != nil {
		if err := entity.ValidatePassword(*in.Password); err != nil {
			f := validationFailure(err)
			f.Context = older
			return nil, f
		}
		hashed, err := u.hash(*in.Password)
		if err != nil {
			return nil, err
		}
		newer.Password = hashed
	}

	if older.SameCredentials(newer) {
		return nil, &Failure{Kind: KindValidation, Reason: ReasonSameCredentials, Context: older}
	}

	if err := u.users.Update(ctx, newer); err != nil {
		return nil, storeFailure(err, older)
	}

	return &UpdateResult{Older: older, Newer: newer}, nil
}

// Delete removes the user with the given ID and returns what was deleted.
// When the store fails, the returned Failure still carries the user.
func (u *userUsecase) Delete(ctx context.Context, id uint) (*entity.User, error) {
	user, err := u.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, notFoundFailure()
		}
		return nil, storeFailure(err, nil)
	}

	deleted := user.Clone()
	if err := u.users.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrUserNotFound) {
			f := notFoundFailure()
			f.Context = deleted
			return nil, f
		}
		return nil, storeFailure(err, deleted)
	}
	return deleted, nil
}

// applyUpdate runs each present field through its validating setter.
func applyUpdate(u *entity.User, in UpdateInput) error {
	if in.Name != nil {
		if err := u.SetName(*in.Name); err != nil {
			return err
		}
	}
	if in.Email != nil {
		if err := u.SetEmail(*in.Email); err != nil {
			return err
		}
	}
	if in.Age != nil {
		if err := u.SetAge(*in.Age); err != nil {
			return err
		}
	}
	return nil
}

func (u *userUsecase) hash(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), u.hashCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", validationFailure(err)
		}
		return "", internalFailure(fmt.Errorf("failed to hash password: %w", err))
	}
	return string(hashed), nil
}

// sendWelcome hands the welcome message to the notifier. The request context
// is detached so an asynchronous delivery outlives the response.
func (u *userUsecase) sendWelcome(ctx context.Context, user *entity.User) {
	if u.notifier == nil {
		return
	}
	body := fmt.Sprintf(welcomeBodyTemplate, user.Name)
	if err := u.notifier.Dispatch(context.WithoutCancel(ctx), user.Email, welcomeSubject, body); err != nil {
		slog.Warn("welcome notification not dispatched", "error", err, "user_id", user.ID, "email", user.Email)
	}
}
