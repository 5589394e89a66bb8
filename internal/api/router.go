package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/time/rate"

	"github.com/fieldstone/crm-system/internal/api/handler"
	"github.com/fieldstone/crm-system/internal/api/middleware"
	"github.com/fieldstone/crm-system/internal/core/domain"
	"github.com/fieldstone/crm-system/internal/core/ports"
	"github.com/fieldstone/crm-system/pkg/logger"
)

// Dependencies carries the constructed services the router wires to routes.
// Construction happens in main so infrastructure lifecycles (audit writer,
// object storage) stay in one place.
type Dependencies struct {
	Mongo *mongo.Database
	Redis *redis.Client

	JWTSecret string
	RateLimit float64

	Users       ports.UserRepository
	Auth        ports.AuthService
	UserService ports.UserService
	Clients     ports.ClientService
	Consultants ports.ConsultantService
	Securia     ports.SecuriaService
	Permissions ports.PermissionService
	Attachments ports.AttachmentService
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(logger.Get())

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echomiddleware.RateLimiter(echomiddleware.NewRateLimiterMemoryStore(rate.Limit(deps.RateLimit))))
	e.Use(echoprometheus.NewMiddleware("crm"))

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(deps.Auth)
	userHandler := handler.NewUserHandler(deps.UserService)
	clientHandler := handler.NewClientHandler(deps.Clients)
	consultantHandler := handler.NewConsultantHandler(deps.Consultants)
	securiaHandler := handler.NewSecuriaHandler(deps.Securia)
	permissionHandler := handler.NewPermissionHandler(deps.Permissions)
	attachmentHandler := handler.NewAttachmentHandler(deps.Attachments)

	authMW := middleware.Auth(deps.JWTSecret, deps.Users)

	// --- Public routes ---
	e.POST("/api/auth/register", authHandler.Register)
	e.POST("/api/auth/login", authHandler.Login)

	e.GET("/metrics", echoprometheus.NewHandler())

	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(deps.Mongo, deps.Redis)
	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthDepsHandler.Readiness)

	// --- Users (self-service) ---
	users := e.Group("/api/users", authMW)
	users.GET("/me", userHandler.Me)
	users.GET("", userHandler.List)
	users.GET("/:id", userHandler.Get)
	users.PUT("/:id", userHandler.Update)

	// --- User administration; per-target rank checks live in the service ---
	admin := e.Group("/api/admin/users", authMW, middleware.RequireRole(domain.RoleBMA))
	admin.POST("", userHandler.Create)
	admin.PATCH("/bulk", userHandler.BulkUpdate)
	admin.PATCH("/:id/role", userHandler.UpdateRole)
	admin.PATCH("/:id/password", userHandler.ResetPassword)
	admin.PATCH("/:id/status", userHandler.ToggleStatus)
	admin.DELETE("/:id", userHandler.Delete)

	// --- Clients ---
	clients := e.Group("/api/clients", authMW)
	clients.POST("", clientHandler.Create)
	clients.GET("", clientHandler.List)
	clients.GET("/:id", clientHandler.Get)
	clients.PUT("/:id", clientHandler.Update)
	clients.DELETE("/:id", clientHandler.Delete)

	// Section views kept as their own resource groups.
	e.GET("/api/liabilities/:id", clientHandler.Liabilities, authMW)
	e.GET("/api/underwriting/:id", clientHandler.Underwriting, authMW)
	e.PUT("/api/underwriting/:id", clientHandler.UpdateUnderwriting, authMW)

	// --- Consultants ---
	consultants := e.Group("/api/consultants", authMW)
	consultants.POST("", consultantHandler.Create)
	consultants.GET("", consultantHandler.List)
	consultants.GET("/:id", consultantHandler.Get)
	consultants.PUT("/:id", consultantHandler.Update)
	consultants.PATCH("/:id/status", consultantHandler.ToggleStatus)
	consultants.DELETE("/:id", consultantHandler.Delete)

	// --- Page permissions ---
	perms := e.Group("/api/permissions", authMW)
	perms.GET("", permissionHandler.List)
	perms.PUT("/:page", permissionHandler.Upsert, middleware.RequireRole(domain.RoleAdmin))

	// --- Attachments ---
	attachments := e.Group("/api/attachments", authMW)
	attachments.POST("", attachmentHandler.Upload)
	attachments.GET("", attachmentHandler.List)
	attachments.GET("/:id/download", attachmentHandler.Download)
	attachments.DELETE("/:id", attachmentHandler.Delete)

	// --- Securia: Admin only, session-gated past login/logout ---
	securia := e.Group("/api/securia", authMW, middleware.RequireRole(domain.RoleAdmin))
	securia.POST("/login", securiaHandler.Login)
	securia.POST("/logout", securiaHandler.Logout)

	gated := securia.Group("", middleware.SecuriaSession(deps.Securia))
	gated.POST("/clients", securiaHandler.CreateClient)
	gated.GET("/clients", securiaHandler.ListClients)
	gated.GET("/clients/:id", securiaHandler.GetClient)
	gated.PUT("/clients/:id", securiaHandler.UpdateClient)
	gated.DELETE("/clients/:id", securiaHandler.DeleteClient)
	gated.POST("/consultants", securiaHandler.CreateConsultant)
	gated.GET("/consultants", securiaHandler.ListConsultants)
	gated.GET("/consultants/:id", securiaHandler.GetConsultant)
	gated.PUT("/consultants/:id", securiaHandler.UpdateConsultant)
	gated.DELETE("/consultants/:id", securiaHandler.DeleteConsultant)
	gated.GET("/audit", securiaHandler.ListAudit)

	return e
}
