// Package router assembles the gin engine and its routes.
package router

import (
	"os"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	authhandler "user_backend/internal/feature/auth/transport/handler"
	userhandler "user_backend/internal/feature/users/transport/handler"
	platformhandler "user_backend/internal/platform/http/handler"
	jwtmw "user_backend/internal/platform/jwt"
	"user_backend/internal/platform/metrics"
)

// Handlers groups everything the router mounts.
type Handlers struct {
	Auth    *authhandler.AuthHandler
	Users   *userhandler.UserHandler
	Health  *platformhandler.HealthHandler
	Metrics *metrics.Metrics
}

// defaultOrigins mirrors the local front-end origins used during development.
var defaultOrigins = []string{
	"http://localhost",
	"http://localhost:8080",
	"http://localhost:8000",
}

// LoadCORSOrigins reads CORS_ORIGINS as a comma separated list.
func LoadCORSOrigins() []string {
	raw := os.Getenv("CORS_ORIGINS")
	if raw == "" {
		return defaultOrigins
	}
	var out []string
	for _, o := range strings.Split(raw, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

func NewRouter(h Handlers, verifier jwtmw.TokenVerifier, origins []string) *gin.Engine {
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	if h.Metrics != nil {
		r.Use(h.Metrics.Middleware())
		r.GET("/metrics", h.Metrics.Handler())
	}

	// 認証不要
	// 導通確認用
	r.GET("/healthz", h.Health.Health)
	r.HEAD("/healthz", h.Health.Health)
	// 登録ページの疎通確認
	r.GET("/register", h.Users.RegisterProbe)
	// トークン発行
	r.POST("/getToken", h.Auth.GetToken)

	// 認証必須のルート
	auth := r.Group("/")
	// → リクエストヘッダーに Bearer トークンが必要になる
	auth.Use(jwtmw.AuthRequired(verifier))
	{
		auth.POST("/register", h.Users.Register)
		auth.GET("/users", h.Users.List)
		auth.GET("/users/:idOrEmail", h.Users.Read)
		auth.PUT("/users/:id", h.Users.Update)
		auth.DELETE("/users/:id", h.Users.Delete)
	}

	return r
}
