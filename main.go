package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/spf13/viper"
	"github.com/streadway/amqp"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"catalog/internal/handlers"
	"catalog/internal/middleware"
	"catalog/internal/models"
	"catalog/internal/repositories"
	"catalog/internal/services"
	"catalog/internal/ws"
	"catalog/pkg/rabbitmq"
)

func main() {
	// --- Configuration ---
	viper.SetDefault("APP_PORT", ":8080")
	viper.SetDefault("DATABASE_URL", "")
	viper.SetDefault("JWT_SECRET", "change_me_in_production")
	viper.SetDefault("RABBITMQ_URL", "")
	viper.AutomaticEnv()

	appPort := viper.GetString("APP_PORT")
	databaseURL := viper.GetString("DATABASE_URL")
	jwtSecret := viper.GetString("JWT_SECRET")
	rabbitMQURL := viper.GetString("RABBITMQ_URL")

	// --- Database ---
	// TranslateError is required so unique violations surface as
	// gorm.ErrDuplicatedKey on both drivers; the error taxonomy depends on it.
	db, err := openDatabase(databaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Product{}, &models.ProductImage{}); err != nil {
		log.Fatalf("Failed to migrate database schema: %v", err)
	}

	// --- RabbitMQ (optional) ---
	var mqClient *rabbitmq.Client
	if rabbitMQURL != "" {
		mqClient, err = rabbitmq.NewClient(rabbitmq.Config{URL: rabbitMQURL})
		if err != nil {
			log.Fatalf("Failed to initialize RabbitMQ client: %v", err)
		}
		defer mqClient.Close()
	} else {
		log.Println("RABBITMQ_URL not set, catalog events disabled")
	}

	// --- Repositories ---
	productRepo := repositories.NewGORMProductRepository(db)
	userRepo := repositories.NewGORMUserRepository(db)

	// --- Services ---
	productService := services.NewProductService(productRepo, mqClient)
	authService := services.NewAuthService(userRepo, jwtSecret)
	seedService := services.NewSeedService(productService, userRepo)

	// --- Presence hub ---
	hub := ws.NewHub()
	go hub.Run()

	// --- Handlers ---
	authRequired := middleware.AuthRequired(authService)
	productHandler := handlers.NewProductHandler(productService, authRequired)
	authHandler := handlers.NewAuthHandler(authService)
	seedHandler := handlers.NewSeedHandler(seedService)
	wsHandler := handlers.NewWSHandler(hub, authService)

	// --- Fiber app ---
	app := fiber.New()
	app.Use(logger.New())

	apiV1 := app.Group("/api/v1")
	productHandler.RegisterRoutes(apiV1)
	authHandler.RegisterRoutes(apiV1)
	seedHandler.RegisterRoutes(apiV1)
	wsHandler.RegisterRoutes(app)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	// --- Catalog event consumer ---
	if mqClient != nil {
		go func() {
			log.Println("Starting RabbitMQ consumer for catalog events...")
			messageHandler := func(msg amqp.Delivery) error {
				log.Printf("Received catalog event %s (tag %d): %s", msg.Type, msg.DeliveryTag, string(msg.Body))
				return nil
			}
			if consumerErr := mqClient.ConsumeCatalogEvents(messageHandler); consumerErr != nil {
				log.Printf("Failed to start RabbitMQ consumer: %v", consumerErr)
			}
		}()
	}

	// --- Start HTTP server ---
	log.Printf("Starting server on port %s", appPort)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := app.Listen(appPort); err != nil {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	<-quit
	log.Println("Shutting down server...")

	if err := app.Shutdown(); err != nil {
		log.Printf("Error during Fiber shutdown: %v", err)
	}

	log.Println("Server gracefully stopped")
}

// openDatabase connects to postgres when DATABASE_URL is set and falls back
// to a local sqlite file for development.
func openDatabase(databaseURL string) (*gorm.DB, error) {
	cfg := &gorm.Config{TranslateError: true}
	if databaseURL != "" {
		return gorm.Open(postgres.Open(databaseURL), cfg)
	}
	log.Println("DATABASE_URL not set, using local sqlite database catalog.db")
	return gorm.Open(sqlite.Open("catalog.db"), cfg)
}
