// Package dto defines the HTTP transport layer data transfer objects for the auth feature.
package dto

// TokenReq is the body of POST /getToken.
type TokenReq struct {
	Name     string `json:"name"`
	Password string `json:"password"`
}

// TokenResp is returned when a token has been issued.
type TokenResp struct {
	Token string `json:"token"`
}
