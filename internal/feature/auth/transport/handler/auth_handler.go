// Package handler はauthフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"user_backend/internal/feature/auth/transport/http/dto"
	"user_backend/internal/feature/auth/usecase"
	"user_backend/internal/shared/envelope"
)

const (
	msgNotAuthenticated = "Not Authenticated"
	msgInvalidRequest   = "invalid request body"
	msgInternal         = "internal server error"
)

// AuthUsecase は認証操作のユースケースを定義します。
// Goの慣例に従い、インターフェースはプロバイダー（usecase）ではなくコンシューマー（handler）が定義します。
type AuthUsecase interface {
	// IssueToken は資格情報を検証し、成功時に署名済みトークンを返します。
	IssueToken(ctx context.Context, name, password string) (string, error)
}

// AuthHandler は認証操作のHTTPリクエストを処理します。
type AuthHandler struct {
	auth AuthUsecase
}

// NewAuthHandler はAuthHandlerの新しいインスタンスを生成します。
func NewAuthHandler(auth AuthUsecase) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// GetToken はトークン発行APIエンドポイントを処理します。
// - リクエストJSONが不正な場合は400（Authエンベロープ）を返却
// - 資格情報が不正な場合は400（Authエンベロープ）を返却
// - 署名に失敗した場合は500を返却
// - 成功時は {"token": ...} で200を返却
func (h *AuthHandler) GetToken(c *gin.Context) {
	var req dto.TokenReq
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("token request validation failed", "error", err, "remote_addr", c.ClientIP())
		envelope.Write(c, http.StatusBadRequest, envelope.Failure(envelope.OpAuth, msgNotAuthenticated, msgInvalidRequest, nil))
		return
	}

	token, err := h.auth.IssueToken(c.Request.Context(), req.Name, req.Password)
	if err != nil {
		if errors.Is(err, usecase.ErrInvalidCredentials) {
			slog.Warn("token request rejected", "name", req.Name, "remote_addr", c.ClientIP())
			envelope.Write(c, http.StatusBadRequest, envelope.Failure(envelope.OpAuth, msgNotAuthenticated, usecase.ErrInvalidCredentials.Error(), nil))
			return
		}
		slog.Error("token issue failed", "error", err, "remote_addr", c.ClientIP())
		envelope.Write(c, http.StatusInternalServerError, envelope.Failure(envelope.OpAuth, msgNotAuthenticated, msgInternal, nil))
		return
	}

	slog.Info("token issued", "name", req.Name, "remote_addr", c.ClientIP())
	c.JSON(http.StatusOK, dto.TokenResp{Token: token})
}
