package main

import (
	"os"

	"github.com/LOSTXKER/anajakdoc-sub000/internal/database"
	"github.com/LOSTXKER/anajakdoc-sub000/internal/handler"
	"github.com/LOSTXKER/anajakdoc-sub000/internal/logger"
	"github.com/LOSTXKER/anajakdoc-sub000/internal/middleware"
	"github.com/LOSTXKER/anajakdoc-sub000/internal/notify"
	"github.com/LOSTXKER/anajakdoc-sub000/internal/repository"
	"github.com/LOSTXKER/anajakdoc-sub000/internal/rules"
	"github.com/LOSTXKER/anajakdoc-sub000/internal/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title           Document Box API
// @version         1.0
// @description     Document completeness tracking and payment reconciliation for expense and income boxes.
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	if err := godotenv.Load("configs/.env"); err != nil {
		log.Info().Msg("No configs/.env file found or error loading it")
	}

	logger.Setup()

	dbHost := os.Getenv("DB_HOST")
	dbPort := os.Getenv("DB_PORT")
	dbUser := os.Getenv("DB_USER")
	dbPassword := os.Getenv("DB_PASSWORD")
	dbName := os.Getenv("DB_NAME")
	dbSslMode := os.Getenv("DB_SSLMODE")

	if dbHost == "" {
		dbHost = "localhost"
	}
	if dbPort == "" {
		dbPort = "5432"
	}
	if dbUser == "" {
		dbUser = "postgres"
	}
	if dbPassword == "" {
		dbPassword = "postgres"
	}
	if dbName == "" {
		dbName = "postgres"
	}
	if dbSslMode == "" {
		dbSslMode = "disable"
	}

	dsn := "postgres://" + dbUser + ":" + dbPassword + "@" + dbHost + ":" + dbPort + "/" + dbName + "?sslmode=" + dbSslMode

	db, err := database.NewConnection(dsn)
	if err != nil {
		log.Fatal().Err(err).Msg("Database connection failed")
	}
	log.Info().Msg("Connected to PostgreSQL successfully")

	// Set up WebSocket Hub
	hub := notify.NewHub()
	go hub.Run()

	// Set up dependencies (Repository -> Service -> Handler)
	txManager := repository.NewTransactionManager(db)
	userRepo := repository.NewUserRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	boxRepo := repository.NewBoxRepository(db)
	docRepo := repository.NewDocumentRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	whtRepo := repository.NewWhtRepository(db)
	contactRepo := repository.NewContactRepository(db)
	inboxRepo := repository.NewInboxRepository(db)

	catalog := rules.DefaultCatalog()

	userService := service.NewUserService(userRepo)
	auditService := service.NewAuditService(auditRepo)
	boxService := service.NewBoxService(boxRepo, docRepo, whtRepo, auditRepo, txManager, catalog, hub)
	paymentService := service.NewPaymentService(boxRepo, paymentRepo, auditRepo, txManager, boxService, hub)
	whtService := service.NewWhtService(whtRepo, boxRepo, auditRepo, txManager, boxService, hub)
	documentService := service.NewDocumentService(docRepo, boxRepo, whtRepo, auditRepo, txManager, boxService, paymentService, whtService, catalog)
	inboxService := service.NewInboxService(boxRepo, contactRepo, inboxRepo)
	contactService := service.NewContactService(contactRepo)

	// Initialize Handlers
	userHandler := handler.NewUserHandler(userService)
	auditHandler := handler.NewAuditHandler(auditService)
	boxHandler := handler.NewBoxHandler(boxService)
	documentHandler := handler.NewDocumentHandler(documentService)
	paymentHandler := handler.NewPaymentHandler(paymentService)
	whtHandler := handler.NewWhtHandler(whtService)
	inboxHandler := handler.NewInboxHandler(inboxService)
	contactHandler := handler.NewContactHandler(contactService)

	// Set up Gin Router
	router := gin.Default()

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"http://localhost:5173", "http://127.0.0.1:5173", "http://localhost:5174"} // Frontend URL
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	router.Use(cors.New(corsConfig))

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "OK"})
	})

	// Prometheus metrics
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// WebSocket endpoint
	router.GET("/ws", func(c *gin.Context) {
		notify.ServeWs(hub, c, middleware.GetJWTSecret())
	})

	// Register API Routes
	userHandler.RegisterRoutes(router.Group(""))
	auditHandler.RegisterRoutes(router.Group(""))
	boxHandler.RegisterRoutes(router.Group(""))
	documentHandler.RegisterRoutes(router.Group(""))
	paymentHandler.RegisterRoutes(router.Group(""))
	whtHandler.RegisterRoutes(router.Group(""))
	inboxHandler.RegisterRoutes(router.Group(""))
	contactHandler.RegisterRoutes(router.Group(""))

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Info().Str("port", port).Msg("Server listening")
	if err := router.Run(":" + port); err != nil {
		log.Fatal().Err(err).Msg("Server failed")
	}
}
