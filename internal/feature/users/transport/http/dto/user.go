// Package dto defines the HTTP transport layer data transfer objects for the users feature.
package dto

import "user_backend/internal/feature/users/domain/entity"

// RegisterReq is the body of POST /register.
// Presence, range and format checks are left to the domain so every caller gets
// the same messages; an absent field arrives as its zero value and fails there.
type RegisterReq struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Age      int    `json:"age"`
}

// UpdateReq is the body of PUT /users/:id. Absent fields are left untouched.
type UpdateReq struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
	Age      *int    `json:"age"`
}

// UserResp is the user projection placed in the envelope data.
// Password is only populated for the registration response, where it holds the stored hash.
type UserResp struct {
	ID       uint   `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Age      int    `json:"age"`
	Password string `json:"password,omitempty"`
}

// UpdateResp pairs the user before and after an update.
type UpdateResp struct {
	OlderInfo UserResp `json:"older_info"`
	NewerInfo UserResp `json:"newer_info"`
}

// PublicUser projects u without its password.
func PublicUser(u *entity.User) UserResp {
	return UserResp{
		ID:    u.ID,
		Name:  u.Name,
		Email: u.Email,
		Age:   u.Age,
	}
}

// StoredUser projects u including the stored password hash.
func StoredUser(u *entity.User) UserResp {
	r := PublicUser(u)
	r.Password = u.Password
	return r
}

// PublicUsers projects a list without passwords. The result is never nil.
func PublicUsers(users []entity.User) []UserResp {
	out := make([]UserResp, 0, len(users))
	for i := range users {
		out = append(out, PublicUser(&users[i]))
	}
	return out
}
