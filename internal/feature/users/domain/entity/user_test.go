package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUser(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		userName string
		email    string
		password string
		age      int
		wantErr  error
	}{
		{"valid user", "Ann", "ann@x.com", "secret1", 30, nil},
		{"lower age bound", "Ann", "ann@x.com", "secret1", 18, nil},
		{"upper age bound", "Ann", "ann@x.com", "secret1", 100, nil},
		{"empty name", "", "ann@x.com", "secret1", 30, ErrEmptyName},
		{"email without at", "Ann", "ann.x.com", "secret1", 30, ErrInvalidEmail},
		{"email without tld", "Ann", "ann@x", "secret1", 30, ErrInvalidEmail},
		{"email with two ats", "Ann", "ann@@x.com", "secret1", 30, ErrInvalidEmail},
		{"short password", "Ann", "ann@x.com", "12345", 30, ErrPasswordTooShort},
		{"short multibyte password", "Ann", "ann@x.com", "ééé", 30, ErrPasswordTooShort},
		{"multibyte password at minimum", "Ann", "ann@x.com", "ééé123", 30, nil},
		{"too young", "Ann", "ann@x.com", "secret1", 17, ErrAgeOutOfRange},
		{"too old", "Ann", "ann@x.com", "secret1", 101, ErrAgeOutOfRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			u, err := NewUser(tt.userName, tt.email, tt.password, tt.age)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, u)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.userName, u.Name)
			assert.Equal(t, tt.email, u.Email)
			assert.Equal(t, tt.password, u.Password)
			assert.Equal(t, tt.age, u.Age)
		})
	}
}

func TestUser_SettersKeepValueOnError(t *testing.T) {
	t.Parallel()

	u, err := NewUser("Ann", "ann@x.com", "secret1", 30)
	require.NoError(t, err)

	assert.ErrorIs(t, u.SetName(""), ErrEmptyName)
	assert.ErrorIs(t, u.SetEmail("broken"), ErrInvalidEmail)
	assert.ErrorIs(t, u.SetAge(5), ErrAgeOutOfRange)

	assert.Equal(t, "Ann", u.Name)
	assert.Equal(t, "ann@x.com", u.Email)
	assert.Equal(t, 30, u.Age)
}

func TestUser_SameCredentials(t *testing.T) {
	t.Parallel()

	base := &User{ID: 1, Name: "Ann", Email: "ann@x.com", Password: "hash", Age: 30}

	other := base.Clone()
	other.ID = 2
	assert.True(t, base.SameCredentials(other), "ID must be ignored")

	other.Age = 31
	assert.False(t, base.SameCredentials(other))

	other = base.Clone()
	other.Password = "another-hash"
	assert.False(t, base.SameCredentials(other))
}

func TestUser_CloneIsIndependent(t *testing.T) {
	t.Parallel()

	base := &User{ID: 1, Name: "Ann"}
	c := base.Clone()
	c.Name = "Bob"

	assert.Equal(t, "Ann", base.Name)
}
