package main

import (
	"context"
	"log"
	"os"
	"time"

	"sidopi/internal/database"
	"sidopi/internal/handler"
	"sidopi/internal/middleware"
	"sidopi/internal/repository"
	"sidopi/internal/service"
	"sidopi/internal/websocket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// expirySweepInterval controls how often stale PENDING submissions are
// checked in the background; the /submissions/expire endpoint triggers the
// same sweep on demand
const expirySweepInterval = 12 * time.Hour

// @title           SIDOPI — Pesticide Distribution API
// @version         1.0
// @description     Backend for submission-based pesticide distribution to farmer groups: lifecycle, recommendations, stock and records.
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	if err := godotenv.Load("configs/.env"); err != nil {
		log.Println("No configs/.env file found or error loading it")
	}

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
		log.Fatalf("Database connection failed: %v", err)
	}
	log.Println("Connected to PostgreSQL successfully.")

	// Set up WebSocket Hub
	wsHub := websocket.NewHub()
	go wsHub.Run()

	// Set up dependencies (Repository -> Service -> Handler)
	txManager := repository.NewTransactionManager(db)
	userRepo := repository.NewUserRepository(db)
	medicineRepo := repository.NewMedicineRepository(db)
	stockRepo := repository.NewStockRepository(db)
	farmerGroupRepo := repository.NewFarmerGroupRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)
	distributionRepo := repository.NewDistributionRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	statisticsRepo := repository.NewStatisticsRepository(db)

	userService := service.NewUserService(userRepo, db)
	medicineService := service.NewMedicineService(medicineRepo, stockRepo, auditRepo, txManager)
	farmerGroupService := service.NewFarmerGroupService(farmerGroupRepo, auditRepo, txManager)
	notificationService := service.NewNotificationService(notificationRepo, userRepo, wsHub)
	submissionService := service.NewSubmissionService(submissionRepo, farmerGroupRepo, distributionRepo, auditRepo, txManager, medicineService, notificationService)
	recommendationService := service.NewRecommendationService(submissionRepo, medicineRepo, stockRepo)
	distributionService := service.NewDistributionService(distributionRepo)
	auditService := service.NewAuditService(auditRepo)
	statisticsService := service.NewStatisticsService(statisticsRepo)

	// Initialize Handlers
	userHandler := handler.NewUserHandler(userService)
	submissionHandler := handler.NewSubmissionHandler(submissionService, recommendationService)
	medicineHandler := handler.NewMedicineHandler(medicineService)
	farmerGroupHandler := handler.NewFarmerGroupHandler(farmerGroupService)
	distributionHandler := handler.NewDistributionHandler(distributionService)
	notificationHandler := handler.NewNotificationHandler(notificationService)
	auditHandler := handler.NewAuditHandler(auditService)
	statisticsHandler := handler.NewStatisticsHandler(statisticsService)

	// Background expiry sweep for stale PENDING submissions
	go func() {
		ticker := time.NewTicker(expirySweepInterval)
		defer ticker.Stop()
		for range ticker.C {
			cutoff := time.Now().AddDate(0, 0, -30)
			expired, err := submissionService.ExpireStale(context.Background(), cutoff)
			if err != nil {
				log.Printf("expiry sweep failed: %v", err)
				continue
			}
			if expired > 0 {
				log.Printf("expiry sweep: %d submissions expired", expired)
			}
		}
	}()

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

	// WebSocket endpoint
	router.GET("/ws", func(c *gin.Context) {
		websocket.ServeWs(wsHub, c, middleware.GetJWTSecret())
	})

	// Register API Routes
	api := router.Group("")
	userHandler.RegisterRoutes(api)
	submissionHandler.RegisterRoutes(api)
	medicineHandler.RegisterRoutes(api)
	farmerGroupHandler.RegisterRoutes(api)
	distributionHandler.RegisterRoutes(api)
	notificationHandler.RegisterRoutes(api)
	auditHandler.RegisterRoutes(api)
	statisticsHandler.RegisterRoutes(api)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server listening on :%s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
