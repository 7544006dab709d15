package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"

	"github.com/digitalrehman/secure-todo-flow/internal/config"
	"github.com/digitalrehman/secure-todo-flow/internal/http/handler"
	httpmiddleware "github.com/digitalrehman/secure-todo-flow/internal/http/middleware"
	"github.com/digitalrehman/secure-todo-flow/internal/middleware"
)

// NewRouter wires Gin routes and middleware.
func NewRouter(
	cfg config.Config,
	authHandler *handler.AuthHandler,
	todoHandler *handler.TodoHandler,
	authMiddleware *httpmiddleware.Auth,
	logger *zap.Logger,
) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(httpmiddleware.RequestLogger(logger))
	r.Use(middleware.CORS(cfg))
	r.Use(otelgin.Middleware(cfg.ServiceName))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	authGroup := r.Group("/auth")
	{
		authGroup.POST("/register", authHandler.Register)
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/verify-email", authHandler.VerifyEmail)
		authGroup.POST("/send-verification", authHandler.SendVerification)
		authGroup.POST("/send-phone-verification", authHandler.SendPhoneVerification)
		authGroup.POST("/verify-phone", authHandler.VerifyPhone)
		authGroup.POST("/google-login", authHandler.GoogleLogin)
		authGroup.GET("/me", authMiddleware.RequireUser, authHandler.Me)
	}

	todos := r.Group("/todos", authMiddleware.RequireUser)
	{
		todos.GET("", todoHandler.List)
		todos.POST("", todoHandler.Create)
		todos.GET("/:id", todoHandler.Get)
		todos.PUT("/:id", todoHandler.Update)
		todos.DELETE("/:id", todoHandler.Delete)
		todos.PATCH("/:id/toggle", todoHandler.Toggle)
	}

	return r
}
