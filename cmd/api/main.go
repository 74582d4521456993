package main

import (
	"os"
	"os/signal"
	"syscall"

	"go-marketplace-api/internal/handler"
	"go-marketplace-api/internal/middleware"
	"go-marketplace-api/internal/model"
	"go-marketplace-api/internal/repository"
	"go-marketplace-api/internal/service"
	"go-marketplace-api/internal/ws"
	"go-marketplace-api/pkg/database"
	"go-marketplace-api/pkg/storage"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func main() {
	// 1. Load Env
	if err := godotenv.Load(); err != nil {
		logrus.Warn(".env file not found, relying on system env")
	}

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	// 2. Setup Database
	db := database.ConnectDB()
	if err := db.AutoMigrate(&model.User{}, &model.Category{}, &model.Product{}, &model.ProductImage{}); err != nil {
		log.Fatal("Migration failed: ", err)
	}

	// 3. Setup media storage
	mediaRoot := os.Getenv("MEDIA_ROOT")
	if mediaRoot == "" {
		mediaRoot = "./media"
	}
	store, err := storage.New(mediaRoot)
	if err != nil {
		log.Fatal("Failed to init media storage: ", err)
	}

	// 4. Setup WebSocket Hub
	wsHub := ws.NewHub()
	go wsHub.Run()

	// 5. Dependency Injection (Wiring Layers)
	userRepo := repository.NewUserRepo(db)
	categoryRepo := repository.NewCategoryRepo(db)
	productRepo := repository.NewProductRepo(db)
	imageRepo := repository.NewImageRepo(db)

	// Categories are created administratively; keep the default set present
	if err := categoryRepo.SeedDefaults(); err != nil {
		log.Warn("Failed to seed categories: ", err)
	}

	accountService := service.NewAccountService(userRepo, store, log)
	catalogService := service.NewCatalogService(categoryRepo)
	listingService := service.NewListingService(productRepo, imageRepo, categoryRepo, store, wsHub, log)

	accountHandler := handler.NewAccountHandler(accountService)
	catalogHandler := handler.NewCatalogHandler(catalogService)
	listingHandler := handler.NewListingHandler(listingService)

	// 6. Setup Fiber
	app := fiber.New(fiber.Config{
		AppName: "Marketplace API v1.0",
	})

	// Middleware
	app.Use(logger.New())  // Logging request
	app.Use(recover.New()) // Panic recovery
	app.Use(cors.New())    // CORS

	// 7. Routes
	api := app.Group("/api")

	// ============ ACCOUNTS ============
	accounts := api.Group("/accounts")
	accounts.Post("/register", accountHandler.Register)
	accounts.Post("/token", accountHandler.Login)
	accounts.Get("/user/:username", accountHandler.PublicProfile)
	accounts.Get("/me", middleware.RequireAuth(userRepo), accountHandler.MyProfile)
	accounts.Put("/me", middleware.RequireAuth(userRepo), accountHandler.UpdateMyProfile)

	// ============ PRODUCTS ============
	products := api.Group("/products")
	products.Get("/categories", catalogHandler.ListCategories)

	// Reads are open to any caller
	products.Get("/items", listingHandler.GetProducts)
	products.Get("/items/myproducts", middleware.RequireAuth(userRepo), listingHandler.MyProducts)
	products.Get("/items/:id", listingHandler.GetProduct)

	// Mutations require an authenticated caller; ownership is enforced
	// in the service layer
	products.Post("/items", middleware.RequireAuth(userRepo), listingHandler.CreateProduct)
	products.Put("/items/:id", middleware.RequireAuth(userRepo), listingHandler.UpdateProduct)
	products.Patch("/items/:id", middleware.RequireAuth(userRepo), listingHandler.UpdateProduct)
	products.Delete("/items/:id", middleware.RequireAuth(userRepo), listingHandler.DeleteProduct)
	products.Post("/items/:id/upload_image", middleware.RequireAuth(userRepo), listingHandler.UploadImage)
	products.Delete("/items/:id/images/:imageID", middleware.RequireAuth(userRepo), listingHandler.DeleteImage)

	// Uploaded media
	app.Static("/media", store.Root())

	// WebSocket listing-events feed
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return c.SendStatus(fiber.StatusUpgradeRequired)
	})
	app.Get("/ws", websocket.New(func(c *websocket.Conn) {
		wsHub.Register <- c
		defer func() { wsHub.Unregister <- c }()

		for {
			// Keep alive loop
			if _, _, err := c.ReadMessage(); err != nil {
				break
			}
		}
	}))

	// 8. Graceful Shutdown
	go func() {
		port := os.Getenv("PORT")
		if port == "" {
			port = "3000"
		}
		if err := app.Listen(":" + port); err != nil {
			log.Panic(err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.Fatal("Server forced to shutdown: ", err)
	}

	log.Info("Server exited")
}
