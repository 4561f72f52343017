// Package handler はusersフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"user_backend/internal/feature/users/domain/entity"
	"user_backend/internal/feature/users/transport/http/dto"
	"user_backend/internal/feature/users/usecase"
	"user_backend/internal/shared/envelope"
)

// Envelope messages per operation outcome.
const (
	msgRegistered         = "User Registered Successfully"
	msgRegistrationFailed = "User Registration Failed"
	msgListed             = "Got User List"
	msgListFailed         = "Couldn't Get User List"
	msgRead               = "Got User"
	msgReadFailed         = "Couldn't Read User"
	msgUpdated            = "User Updated"
	msgUpdateFailed       = "User Is Not Updated"
	msgDeleted            = "User Deleted"
	msgDeleteFailed       = "User Is Not Deleted"

	errInvalidBody = "invalid request body"
	errInvalidID   = "invalid user id"
)

// UserUsecase はユーザー操作のユースケースを定義します。
// Goの慣例に従い、インターフェースはプロバイダー（usecase）ではなくコンシューマー（handler）が定義します。
type UserUsecase interface {
	Register(ctx context.Context, in usecase.RegisterInput) (*entity.User, error)
	List(ctx context.Context) ([]entity.User, error)
	Read(ctx context.Context, idOrEmail string) (*entity.User, error)
	Update(ctx context.Context, id uint, in usecase.UpdateInput) (*usecase.UpdateResult, error)
	Delete(ctx context.Context, id uint) (*entity.User, error)
}

// UserHandler はユーザーCRUDのHTTPリクエストを処理します。
type UserHandler struct {
	users UserUsecase
}

// NewUserHandler はUserHandlerの新しいインスタンスを生成します。
func NewUserHandler(users UserUsecase) *UserHandler {
	return &UserHandler{users: users}
}

// RegisterProbe は登録ページの疎通確認に応答します。
func (h *UserHandler) RegisterProbe(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Get Page"})
}

// Register はユーザー登録APIエンドポイントを処理します。
// 成功時は保存済みハッシュを含むユーザーを返却します。
func (h *UserHandler) Register(c *gin.Context) {
	var req dto.RegisterReq
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("register validation failed", "error", err, "remote_addr", c.ClientIP())
		envelope.Write(c, http.StatusBadRequest, envelope.Failure(envelope.OpRegistration, msgRegistrationFailed, errInvalidBody, nil))
		return
	}

	user, err := h.users.Register(c.Request.Context(), usecase.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Age:      req.Age,
	})
	if err != nil {
		h.fail(c, envelope.OpRegistration, msgRegistrationFailed, err)
		return
	}

	slog.Info("user registered", "user_id", user.ID, "email", user.Email, "remote_addr", c.ClientIP())
	envelope.Write(c, http.StatusOK, envelope.Success(envelope.OpRegistration, msgRegistered, dto.StoredUser(user)))
}

// List は全ユーザーを返却します。
func (h *UserHandler) List(c *gin.Context) {
	users, err := h.users.List(c.Request.Context())
	if err != nil {
		h.fail(c, envelope.OpGet, msgListFailed, err)
		return
	}
	envelope.Write(c, http.StatusOK, envelope.Success(envelope.OpGet, msgListed, dto.PublicUsers(users)))
}

// Read はIDまたはメールアドレスでユーザーを返却します。
func (h *UserHandler) Read(c *gin.Context) {
	user, err := h.users.Read(c.Request.Context(), c.Param("idOrEmail"))
	if err != nil {
		h.fail(c, envelope.OpGet, msgReadFailed, err)
		return
	}
	envelope.Write(c, http.StatusOK, envelope.Success(envelope.OpGet, msgRead, dto.PublicUser(user)))
}

// Update は部分更新を適用し、更新前後のユーザーを返却します。
func (h *UserHandler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		envelope.Write(c, http.StatusBadRequest, envelope.Failure(envelope.OpUpdate, msgUpdateFailed, errInvalidID, nil))
		return
	}

	var req dto.UpdateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("update validation failed", "error", err, "user_id", id, "remote_addr", c.ClientIP())
		envelope.Write(c, http.StatusBadRequest, envelope.Failure(envelope.OpUpdate, msgUpdateFailed, errInvalidBody, nil))
		return
	}

	res, err := h.users.Update(c.Request.Context(), id, usecase.UpdateInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Age:      req.Age,
	})
	if err != nil {
		h.fail(c, envelope.OpUpdate, msgUpdateFailed, err)
		return
	}

	slog.Info("user updated", "user_id", id, "remote_addr", c.ClientIP())
	envelope.Write(c, http.StatusOK, envelope.Success(envelope.OpUpdate, msgUpdated, dto.UpdateResp{
		OlderInfo: dto.PublicUser(res.Older),
		NewerInfo: dto.PublicUser(res.Newer),
	}))
}

// Delete はユーザーを削除し、削除したユーザーを返却します。
func (h *UserHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		envelope.Write(c, http.StatusBadRequest, envelope.Failure(envelope.OpDeletion, msgDeleteFailed, errInvalidID, nil))
		return
	}

	user, err := h.users.Delete(c.Request.Context(), id)
	if err != nil {
		h.fail(c, envelope.OpDeletion, msgDeleteFailed, err)
		return
	}

	slog.Info("user deleted", "user_id", id, "remote_addr", c.ClientIP())
	envelope.Write(c, http.StatusOK, envelope.Success(envelope.OpDeletion, msgDeleted, dto.PublicUser(user)))
}

// fail は失敗をエンベロープに変換します。想定外のエラーは500として詳細を隠します。
func (h *UserHandler) fail(c *gin.Context, op, message string, err error) {
	var f *usecase.Failure
	if !errors.As(err, &f) {
		slog.Error("unexpected pipeline error", "operation", op, "error", err, "remote_addr", c.ClientIP())
		envelope.Write(c, http.StatusInternalServerError, envelope.Failure(op, message, usecase.ReasonInternal, nil))
		return
	}

	status := StatusFor(f.Kind)
	if status >= http.StatusInternalServerError {
		slog.Error("pipeline failed", "operation", op, "kind", f.Kind.String(), "error", err, "remote_addr", c.ClientIP())
	} else {
		slog.Warn("pipeline rejected", "operation", op, "kind", f.Kind.String(), "reason", f.Reason, "remote_addr", c.ClientIP())
	}

	var data any
	if f.Context != nil {
		data = dto.PublicUser(f.Context)
	}
	envelope.Write(c, status, envelope.Failure(op, message, f.Reason, data))
}

// StatusFor maps a failure kind to its HTTP status.
func StatusFor(kind usecase.Kind) int {
	switch kind {
	case usecase.KindValidation, usecase.KindConflict, usecase.KindNotFound, usecase.KindStore:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}
