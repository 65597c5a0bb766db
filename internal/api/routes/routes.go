package routes

import (
	"time"

	"marketplace-service/internal/api/handlers"
	"marketplace-service/internal/api/middleware"
	"marketplace-service/internal/models"
	"marketplace-service/internal/repositories/postgres"
	"marketplace-service/internal/services"
	"marketplace-service/internal/websocket"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type Router struct {
	engine *gin.Engine

	hub      *websocket.Hub
	wsRouter *websocket.Router

	authHandler    *handlers.AuthHandler
	userHandler    *handlers.UserHandler
	chatHandler    *handlers.ChatHandler
	productHandler *handlers.ProductHandler
	orderHandler   *handlers.OrderHandler

	authService services.AuthService
	authMW      *middleware.AuthMiddleware
	rateLimitMW *middleware.RateLimitMiddleware
}

func NewRouter(
	hub *websocket.Hub,
	redisService *services.RedisService,
	db *gorm.DB,
	jwtSecret string,
	jwtExpire time.Duration,
) *Router {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(gin.Recovery())
	engine.Use(middleware.CORS())
	engine.Use(middleware.LogAPI())

	// Repositories
	userRepo := postgres.NewUserRepository(db)
	chatRepo := postgres.NewChatRepository(db)
	productRepo := postgres.NewProductRepository(db)
	orderRepo := postgres.NewOrderRepository(db)

	// Services
	authService := services.NewAuthService(userRepo, jwtSecret, jwtExpire)
	userService := services.NewUserService(userRepo)
	chatService := services.NewChatService(chatRepo, userRepo)
	productService := services.NewProductService(productRepo)
	orderService := services.NewOrderService(orderRepo, productRepo, userRepo)

	wsRouter := websocket.NewRouter(hub, chatService, orderService)

	return &Router{
		engine:         engine,
		hub:            hub,
		wsRouter:       wsRouter,
		authHandler:    handlers.NewAuthHandler(authService, userService),
		userHandler:    handlers.NewUserHandler(userService, redisService),
		chatHandler:    handlers.NewChatHandler(chatService),
		productHandler: handlers.NewProductHandler(productService),
		orderHandler:   handlers.NewOrderHandler(orderService, hub),
		authService:    authService,
		authMW:         middleware.NewAuthMiddleware(jwtSecret),
		rateLimitMW:    middleware.NewRateLimitMiddleware(redisService),
	}
}

func (r *Router) SetupRoutes() {
	r.engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	api := r.engine.Group("/api/v1")

	// The socket endpoint authenticates inside the handshake, not via the
	// HTTP middleware, so a bad credential closes the transport silently.
	api.GET("/ws", websocket.ServeWS(r.hub, r.authService, r.wsRouter))

	// Public routes
	auth := api.Group("/auth")
	auth.Use(r.rateLimitMW.RateLimitIP(20, time.Minute))
	{
		auth.POST("/signup", r.authHandler.Signup)
		auth.POST("/login", r.authHandler.Login)
	}

	// Authenticated routes
	authed := api.Group("/")
	authed.Use(r.authMW.RequireAuth())
	authed.Use(r.rateLimitMW.RateLimit(200, time.Minute))
	{
		authed.GET("/auth/profile", r.authHandler.Profile)

		users := authed.Group("/users")
		{
			users.GET("", r.userHandler.ListUsers)
			users.GET("/online", r.userHandler.OnlineUsers)
		}

		chats := authed.Group("/chats")
		{
			chats.GET("/conversation/:id", r.chatHandler.Conversation)
		}

		products := authed.Group("/products")
		{
			products.GET("", r.productHandler.ListProducts)
			products.GET("/:id", r.productHandler.GetProduct)

			merchant := products.Group("")
			merchant.Use(r.authMW.RequireRole(models.RoleMerchant))
			{
				merchant.POST("", r.productHandler.CreateProduct)
				merchant.GET("/mine", r.productHandler.ListMyProducts)
				merchant.PUT("/:id", r.productHandler.UpdateProduct)
				merchant.DELETE("/:id", r.productHandler.DeleteProduct)
			}
		}

		orders := authed.Group("/orders")
		{
			orders.POST("", r.orderHandler.CreateOrder)
			orders.GET("", r.orderHandler.ListMyOrders)
			orders.GET("/all", r.authMW.RequireRole(models.RoleMerchant), r.orderHandler.ListOrders)
			orders.GET("/:id", r.orderHandler.GetOrder)
			orders.PATCH("/:id/status", r.orderHandler.UpdateStatus)
			orders.POST("/:id/cancel", r.orderHandler.CancelOrder)
			orders.DELETE("/:id", r.orderHandler.DeleteOrder)
		}
	}
}

func (r *Router) GetEngine() *gin.Engine {
	return r.engine
}
