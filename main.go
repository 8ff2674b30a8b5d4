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

	"katalog/internal/handlers"
	"katalog/internal/middleware"
	"katalog/internal/models"
	"katalog/internal/repositories"
	"katalog/internal/services"
	"katalog/pkg/rabbitmq"
	"katalog/pkg/storage"
)

func main() {
	// --- Configuration ---
	viper.SetDefault("APP_PORT", ":8080")
	viper.SetDefault("SQLITE_PATH", "katalog.db")
	viper.SetDefault("JWT_SECRET", "change-me-in-production")
	viper.SetDefault("STORAGE_BUCKET", "product-images")
	viper.AutomaticEnv()

	appPort := viper.GetString("APP_PORT")
	databaseURL := viper.GetString("DATABASE_URL")
	jwtSecret := viper.GetString("JWT_SECRET")
	rabbitMQURL := viper.GetString("RABBITMQ_URL")

	// --- Database ---
	// Postgres when DATABASE_URL is set, a local SQLite file otherwise.
	var dialector gorm.Dialector
	if databaseURL != "" {
		dialector = postgres.Open(databaseURL)
	} else {
		dialector = sqlite.Open(viper.GetString("SQLITE_PATH"))
	}
	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := db.AutoMigrate(&models.Category{}, &models.Product{}, &models.User{}); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	// --- Object storage ---
	// The Supabase uploader issues signed upload locations; without
	// credentials we fall back to the in-memory mock for local development.
	var uploader storage.Uploader
	if supabaseURL := viper.GetString("SUPABASE_URL"); supabaseURL != "" {
		uploader = storage.NewSupabaseUploader(storage.SupabaseConfig{
			BaseURL:    supabaseURL,
			Bucket:     viper.GetString("STORAGE_BUCKET"),
			ServiceKey: viper.GetString("SUPABASE_SERVICE_KEY"),
		})
	} else {
		log.Println("SUPABASE_URL not set, using mock storage uploader")
		uploader = storage.NewMockUploader()
	}

	// --- RabbitMQ (optional) ---
	// Catalog mutations publish events when a broker is configured; the
	// service runs fine without one.
	var publisher services.EventPublisher
	var mqClient *rabbitmq.Client
	if rabbitMQURL != "" {
		mqClient, err = rabbitmq.NewClient(rabbitmq.Config{URL: rabbitMQURL})
		if err != nil {
			log.Printf("Warning: RabbitMQ unavailable, catalog events disabled: %v", err)
		} else {
			defer mqClient.Close()
			publisher = mqClient
		}
	}

	// --- Repositories ---
	productRepo := repositories.NewGORMProductRepository(db)
	categoryRepo := repositories.NewGORMCategoryRepository(db)
	userRepo := repositories.NewGORMUserRepository(db)

	seedCategories(categoryRepo)

	// --- Services ---
	catalogService := services.NewCatalogService(productRepo, categoryRepo, uploader, publisher)
	authService := services.NewAuthService(userRepo, jwtSecret)

	// --- Handlers ---
	catalogHandler := handlers.NewCatalogHandler(catalogService)
	authHandler := handlers.NewAuthHandler(authService)

	// --- Fiber app ---
	app := fiber.New()
	app.Use(logger.New())

	apiV1 := app.Group("/api/v1")

	// Authentication routes (public)
	authHandler.RegisterRoutes(apiV1)

	// Catalog routes require an authenticated caller.
	protectedRoutes := apiV1.Group("", middleware.AuthRequired(authService))
	catalogHandler.RegisterRoutes(protectedRoutes)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	// --- Catalog event consumer ---
	// Downstream processing of mutation events (search indexing, cache
	// invalidation) hangs off this queue; here we only log deliveries.
	if mqClient != nil && publisher != nil {
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

// seedCategories populates the category table on first run so the admin UI
// has a filter set to work with.
func seedCategories(repo repositories.CategoryRepository) {
	existing, err := repo.GetAll()
	if err != nil {
		log.Printf("Error checking existing categories: %v", err)
		return
	}
	if len(existing) > 0 {
		return
	}

	categories := []models.Category{
		{Name: "Coffee"},
		{Name: "Non-Coffee"},
		{Name: "Pastry"},
		{Name: "Merchandise"},
	}
	for i := range categories {
		if err := repo.Create(&categories[i]); err != nil {
			log.Printf("Error seeding category %s: %v", categories[i].Name, err)
		} else {
			log.Printf("Seeded category: %s (ID: %s)", categories[i].Name, categories[i].ID)
		}
	}
}
