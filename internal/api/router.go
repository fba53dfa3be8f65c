package api

import (
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/zapshift/parcel-system/internal/api/handler"
	"github.com/zapshift/parcel-system/internal/api/middleware"
	"github.com/zapshift/parcel-system/internal/core/directory"
	"github.com/zapshift/parcel-system/internal/core/domain"
	"github.com/zapshift/parcel-system/internal/core/service"
	mongodb "github.com/zapshift/parcel-system/internal/infrastructure/db/mongo"
	redisdb "github.com/zapshift/parcel-system/internal/infrastructure/db/redis"
	healthhandlers "github.com/zapshift/parcel-system/internal/infrastructure/http/handlers"
	"github.com/zapshift/parcel-system/internal/infrastructure/queue"
)

// NewRouter builds the Echo instance with all routes registered and returns
// it along with the event dispatcher, which the caller must Start.
func NewRouter(db *mongo.Database, rdb *goredis.Client, dir *directory.Directory, jwtSecret string, eventWorkers int, log zerolog.Logger) (*echo.Echo, *queue.Dispatcher) {
	e := echo.New()
	e.HideBanner = true

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("zapshift"))

	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Repositories ---
	parcelRepo := mongodb.NewParcelRepository(db)
	userRepo := mongodb.NewUserRepository(db)
	riderRepo := mongodb.NewRiderRepository(db)
	paymentRepo := mongodb.NewPaymentRepository(db)
	walletRepo := mongodb.NewWalletRepository(db)
	eventRepo := mongodb.NewEventRepository(db)
	roleCache := redisdb.NewRoleCache(rdb)
	dedup := redisdb.NewDedupChecker(rdb)

	// --- Services ---
	authService := service.NewAuthService(userRepo, roleCache, jwtSecret, 24*time.Hour, log)
	parcelService := service.NewParcelService(parcelRepo, riderRepo, dir, log)
	riderService := service.NewRiderService(riderRepo, userRepo, roleCache, dir, log)
	paymentService := service.NewPaymentService(paymentRepo, walletRepo, parcelRepo, log)
	eventService := service.NewEventService(parcelRepo, eventRepo, dedup, log)
	dispatcher := queue.NewDispatcher(eventWorkers, eventService, log)

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(authService)
	parcelHandler := handler.NewParcelHandler(parcelService)
	riderHandler := handler.NewRiderHandler(riderService)
	paymentHandler := handler.NewPaymentHandler(paymentService)
	eventHandler := handler.NewEventHandler(dispatcher)
	directoryHandler := handler.NewDirectoryHandler(dir)

	auth := middleware.Auth(jwtSecret)
	adminOnly := middleware.RBAC(domain.RoleAdmin)
	riderOnly := middleware.RBAC(domain.RoleRider)

	// --- Health probes and metrics (no auth required) ---
	healthHandler := healthhandlers.NewHealthHandler()
	healthDepsHandler := healthhandlers.NewHealthDependenciesHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandler())

	v1 := e.Group("/v1")

	// --- Public routes ---
	v1.POST("/auth/register", authHandler.Register)
	v1.POST("/auth/login", authHandler.Login)
	v1.GET("/parcels/:tracking_id/track", parcelHandler.Track)
	v1.GET("/directory/regions", directoryHandler.Regions)
	v1.GET("/directory/regions/:region/districts", directoryHandler.Districts)
	v1.GET("/directory/regions/:region/districts/:district/warehouses", directoryHandler.Warehouses)

	// --- Authenticated routes ---
	secured := v1.Group("", auth)
	secured.POST("/parcels/quote", parcelHandler.Quote)
	secured.POST("/parcels", parcelHandler.Create)
	secured.GET("/parcels", parcelHandler.List)
	secured.GET("/parcels/:tracking_id", parcelHandler.Get)
	secured.DELETE("/parcels/:tracking_id", parcelHandler.Delete)
	secured.POST("/riders", riderHandler.Apply)
	secured.POST("/payments/intent", paymentHandler.Intent)
	secured.POST("/payments/confirm", paymentHandler.Confirm)
	secured.GET("/payments", paymentHandler.History)
	secured.GET("/users/:email/role", userHandler.Role)

	// --- Admin routes ---
	admin := v1.Group("", auth, adminOnly)
	admin.PATCH("/parcels/:tracking_id/assign", parcelHandler.Assign)
	admin.GET("/riders", riderHandler.List)
	admin.PATCH("/riders/:id/status", riderHandler.Decide)
	admin.GET("/users", userHandler.List)
	admin.GET("/users/search", userHandler.Search)
	admin.PATCH("/users/:id/role", userHandler.UpdateRole)

	// --- Rider routes ---
	rider := v1.Group("", auth, riderOnly)
	rider.PATCH("/parcels/:tracking_id/status", parcelHandler.UpdateStatus)
	rider.GET("/rider/deliveries", parcelHandler.Deliveries)
	rider.GET("/wallet", paymentHandler.Wallet)
	rider.POST("/wallet/earnings", paymentHandler.Earnings)
	rider.POST("/wallet/cash-out", paymentHandler.CashOut)
	rider.POST("/events", eventHandler.Receive)
	rider.POST("/events/batch", eventHandler.ReceiveBatch)

	return e, dispatcher
}
