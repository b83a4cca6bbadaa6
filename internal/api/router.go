package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/chatwire/chat-system/internal/api/handler"
	"github.com/chatwire/chat-system/internal/api/middleware"
	"github.com/chatwire/chat-system/internal/broker"
	"github.com/chatwire/chat-system/internal/core/domain"
	"github.com/chatwire/chat-system/internal/core/ports"
	"github.com/chatwire/chat-system/internal/core/service"
	mongodb "github.com/chatwire/chat-system/internal/infrastructure/db/mongo"
	redisdb "github.com/chatwire/chat-system/internal/infrastructure/db/redis"
)

// NewRouter builds and returns the Echo instance with all routes registered.
// publisher is the fan-out entry point the services write to; hub is the
// WebSocket side of the same broker.
func NewRouter(db *mongo.Database, rdb *redis.Client, hub *broker.Hub, publisher ports.EventPublisher, jwtSecret string, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)
	e.Validator = handler.NewValidator()

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echoprometheus.NewMiddleware("chat"))

	// --- Dependencies ---
	userRepo := mongodb.NewUserRepository(db)
	groupRepo := mongodb.NewGroupRepository(db)
	messageRepo := mongodb.NewMessageRepository(db)
	resetTokens := redisdb.NewResetTokenStore(rdb)

	authService := service.NewAuthService(userRepo, resetTokens, jwtSecret, 0, log)
	chatService := service.NewChatService(messageRepo, groupRepo, publisher, log)
	groupService := service.NewGroupService(groupRepo, userRepo, log)

	authHandler := handler.NewAuthHandler(authService)
	chatHandler := handler.NewChatHandler(chatService)
	groupHandler := handler.NewGroupHandler(groupService)
	userHandler := handler.NewUserHandler(userRepo)
	wsHandler := handler.NewWSHandler(hub)

	authRequired := middleware.Auth(jwtSecret)

	// --- Auth routes ---
	e.POST("/auth/register", authHandler.Register)
	e.POST("/auth/login", authHandler.Login)
	e.POST("/auth/forgot-password", authHandler.ForgotPassword)
	e.POST("/auth/reset-password", authHandler.ResetPassword)

	// --- Conversation routes ---
	chat := e.Group("/chat", authRequired)
	chat.POST("/send", chatHandler.Send)
	chat.GET("/:currentUserId/:type/:selectedId", chatHandler.Fetch)
	chat.DELETE("/delete/:messageId/:senderId", chatHandler.Delete)

	// --- Group routes ---
	group := e.Group("/group", authRequired)
	group.POST("/create", groupHandler.Create)
	group.POST("/addUser", groupHandler.AddUsers)
	group.POST("/removeUser", groupHandler.RemoveUser)
	group.GET("/user-list", groupHandler.UserList)
	group.DELETE("/delete/:groupId", groupHandler.Delete)
	group.DELETE("/:groupId", groupHandler.Leave)

	// --- Real-time channel ---
	e.GET("/ws", wsHandler.Connect, authRequired)

	// --- Admin ---
	e.GET("/users", userHandler.List, authRequired, middleware.RBAC(domain.RoleAdmin))

	// --- Health probes and metrics (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandler())

	return e
}
