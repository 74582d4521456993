package main

import (
	"log"
	"os"

	"go-marketplace-api/internal/model"
	"go-marketplace-api/internal/repository"
	"go-marketplace-api/pkg/database"

	"github.com/joho/godotenv"
)

// Seeds the default category set, plus any extra category names passed
// as arguments. Categories are only ever created through this tool or
// the server's startup seed.
func main() {
	// 1. Load Env
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, relying on system env")
	}

	// 2. Setup Database
	db := database.ConnectDB()
	if err := db.AutoMigrate(&model.Category{}); err != nil {
		log.Fatalf("❌ Migration failed: %v", err)
	}

	categoryRepo := repository.NewCategoryRepo(db)

	// 3. Default set
	if err := categoryRepo.SeedDefaults(); err != nil {
		log.Fatalf("❌ Failed to seed default categories: %v", err)
	}
	log.Println("✅ Default categories seeded")

	// 4. Extra names from the command line
	for _, name := range os.Args[1:] {
		category := model.Category{Name: name}
		if err := db.Where("name = ?", name).FirstOrCreate(&category).Error; err != nil {
			log.Fatalf("❌ Failed to create category %q: %v", name, err)
		}
		log.Printf("✅ Category ready: %s (%s)", category.Name, category.Slug)
	}
}
