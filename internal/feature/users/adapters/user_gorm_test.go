package adapters

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"user_backend/internal/feature/users/domain/entity"
	"user_backend/internal/feature/users/usecase"
)

// setupTestDB prepares an in-memory SQLite database for testing.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Discard})
	require.NoError(t, err, "failed to initialize test database")

	// every pooled connection to :memory: is a separate database
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(&UserModel{})
	require.NoError(t, err, "failed to migrate table")

	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func newUser(name, email, password string, age int) *entity.User {
	return &entity.User{Name: name, Email: email, Password: password, Age: age}
}

func TestNewUserGorm(t *testing.T) {
	db := setupTestDB(t)

	repo := NewUserGorm(db)

	assert.NotNil(t, repo, "repository is nil")
	assert.NotNil(t, repo.db, "database connection is nil")
}

func TestUserGorm_Create(t *testing.T) {
	t.Run("successful user creation", func(t *testing.T) {
		repo := NewUserGorm(setupTestDB(t))

		user := newUser("Ann", "ann@x.com", "hash-1", 30)
		err := repo.Create(context.Background(), user)

		assert.NoError(t, err, "failed to create user")
		assert.NotZero(t, user.ID, "ID is not set")
		assert.False(t, user.CreatedAt.IsZero(), "CreatedAt is not set")
		assert.False(t, user.UpdatedAt.IsZero(), "UpdatedAt is not set")
	})

	t.Run("same email is allowed by the schema", func(t *testing.T) {
		repo := NewUserGorm(setupTestDB(t))

		require.NoError(t, repo.Create(context.Background(), newUser("Ann", "ann@x.com", "hash-1", 30)))
		err := repo.Create(context.Background(), newUser("Ann", "ann@x.com", "hash-2", 30))

		assert.NoError(t, err)
	})

	t.Run("duplicate password hash is a duplicate entry", func(t *testing.T) {
		repo := NewUserGorm(setupTestDB(t))

		require.NoError(t, repo.Create(context.Background(), newUser("Ann", "ann@x.com", "same-hash", 30)))
		err := repo.Create(context.Background(), newUser("Bob", "bob@x.com", "same-hash", 40))

		require.Error(t, err)
		assert.ErrorIs(t, err, usecase.ErrDuplicateEntry)
		var dup *usecase.DuplicateEntryError
		require.ErrorAs(t, err, &dup)
		assert.Equal(t, "Key (password) already exists.", dup.Detail)
	})

	t.Run("nil user error", func(t *testing.T) {
		repo := NewUserGorm(setupTestDB(t))

		err := repo.Create(context.Background(), nil)

		assert.Error(t, err, "should return error for nil user")
	})
}

func TestUserGorm_FindByID(t *testing.T) {
	repo := NewUserGorm(setupTestDB(t))
	created := newUser("Ann", "ann@x.com", "hash-1", 30)
	require.NoError(t, repo.Create(context.Background(), created))

	t.Run("found", func(t *testing.T) {
		found, err := repo.FindByID(context.Background(), created.ID)

		require.NoError(t, err)
		assert.Equal(t, created.ID, found.ID)
		assert.Equal(t, "Ann", found.Name)
		assert.Equal(t, "hash-1", found.Password)
	})

	t.Run("not found", func(t *testing.T) {
		found, err := repo.FindByID(context.Background(), 9999)

		assert.ErrorIs(t, err, usecase.ErrUserNotFound)
		assert.Nil(t, found)
	})
}

func TestUserGorm_FindByEmail(t *testing.T) {
	repo := NewUserGorm(setupTestDB(t))
	for _, u := range []*entity.User{
		newUser("Ann", "ann@x.com", "hash-1", 30),
		newUser("Bob", "bob@x.com", "hash-2", 40),
		newUser("Cid", "cid@x.com", "hash-3", 50),
	} {
		require.NoError(t, repo.Create(context.Background(), u))
	}

	t.Run("find correct user when multiple users exist", func(t *testing.T) {
		found, err := repo.FindByEmail(context.Background(), "bob@x.com")

		require.NoError(t, err)
		assert.Equal(t, "Bob", found.Name)
		assert.Equal(t, 40, found.Age)
	})

	t.Run("email not found error", func(t *testing.T) {
		found, err := repo.FindByEmail(context.Background(), "nobody@x.com")

		assert.ErrorIs(t, err, usecase.ErrUserNotFound)
		assert.Nil(t, found)
	})
}

func TestUserGorm_List(t *testing.T) {
	t.Run("empty table", func(t *testing.T) {
		repo := NewUserGorm(setupTestDB(t))

		users, err := repo.List(context.Background())

		require.NoError(t, err)
		assert.Empty(t, users)
	})

	t.Run("ordered by id", func(t *testing.T) {
		repo := NewUserGorm(setupTestDB(t))
		require.NoError(t, repo.Create(context.Background(), newUser("Ann", "ann@x.com", "hash-1", 30)))
		require.NoError(t, repo.Create(context.Background(), newUser("Bob", "bob@x.com", "hash-2", 40)))

		users, err := repo.List(context.Background())

		require.NoError(t, err)
		require.Len(t, users, 2)
		assert.Equal(t, "Ann", users[0].Name)
		assert.Equal(t, "Bob", users[1].Name)
		assert.Less(t, users[0].ID, users[1].ID)
	})
}

func TestUserGorm_Update(t *testing.T) {
	t.Run("updates mutable columns", func(t *testing.T) {
		repo := NewUserGorm(setupTestDB(t))
		user := newUser("Ann", "ann@x.com", "hash-1", 30)
		require.NoError(t, repo.Create(context.Background(), user))

		user.Age = 31
		user.Name = "Annie"
		require.NoError(t, repo.Update(context.Background(), user))

		found, err := repo.FindByID(context.Background(), user.ID)
		require.NoError(t, err)
		assert.Equal(t, "Annie", found.Name)
		assert.Equal(t, 31, found.Age)
		assert.Equal(t, "ann@x.com", found.Email)
		assert.Equal(t, "hash-1", found.Password)
	})

	t.Run("unknown id", func(t *testing.T) {
		repo := NewUserGorm(setupTestDB(t))

		err := repo.Update(context.Background(), &entity.User{ID: 42, Name: "x", Email: "x@x.com", Password: "h", Age: 20})

		assert.ErrorIs(t, err, usecase.ErrUserNotFound)
	})

	t.Run("password hash collision", func(t *testing.T) {
		repo := NewUserGorm(setupTestDB(t))
		ann := newUser("Ann", "ann@x.com", "hash-1", 30)
		bob := newUser("Bob", "bob@x.com", "hash-2", 40)
		require.NoError(t, repo.Create(context.Background(), ann))
		require.NoError(t, repo.Create(context.Background(), bob))

		bob.Password = "hash-1"
		err := repo.Update(context.Background(), bob)

		assert.ErrorIs(t, err, usecase.ErrDuplicateEntry)
	})
}

func TestUserGorm_Delete(t *testing.T) {
	repo := NewUserGorm(setupTestDB(t))
	user := newUser("Ann", "ann@x.com", "hash-1", 30)
	require.NoError(t, repo.Create(context.Background(), user))

	require.NoError(t, repo.Delete(context.Background(), user.ID))

	_, err := repo.FindByID(context.Background(), user.ID)
	assert.ErrorIs(t, err, usecase.ErrUserNotFound)

	err = repo.Delete(context.Background(), user.ID)
	assert.ErrorIs(t, err, usecase.ErrUserNotFound)
}

// TestUserGorm_Create_PostgresUniqueViolation drives the PostgreSQL dialect
// through sqlmock and checks that SQLSTATE 23505 keeps the engine detail.
func TestUserGorm_Create_PostgresUniqueViolation(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = sqlDB.Close() }()

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Discard,
	})
	require.NoError(t, err)

	mock.ExpectQuery(`INSERT INTO "users"`).WillReturnError(&pgconn.PgError{
		Severity:       "ERROR",
		Code:           "23505",
		Message:        `duplicate key value violates unique constraint "idx_users_password"`,
		Detail:         "Key (password)=(hash-1) already exists.",
		ConstraintName: "idx_users_password",
	})

	repo := NewUserGorm(db)
	err = repo.Create(context.Background(), newUser("Ann", "ann@x.com", "hash-1", 30))

	var dup *usecase.DuplicateEntryError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "Key (password)=(hash-1) already exists.", dup.Detail)
	assert.NoError(t, mock.ExpectationsWereMet())
}
