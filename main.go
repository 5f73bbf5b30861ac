package main

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/decorviz/decor-serve/auth"
	"github.com/decorviz/decor-serve/chat"
	"github.com/decorviz/decor-serve/config"
	"github.com/decorviz/decor-serve/database"
	"github.com/decorviz/decor-serve/floorplan"
	handler "github.com/decorviz/decor-serve/handlers"
	"github.com/decorviz/decor-serve/imagegen"
	"github.com/decorviz/decor-serve/models"
	"github.com/decorviz/decor-serve/products"
	"github.com/decorviz/decor-serve/router"
	"github.com/decorviz/decor-serve/storage"
)

func main() {
	_ = database.GetDB()

	// Run migrations
	err := database.MigrateModels(
		&models.User{},
		&models.Project{},
		&models.Room{},
		&models.RoomImage{},
		&models.Message{},
		&models.ColorPalette{},
		&models.SharedDesign{},
	)
	if err != nil {
		logrus.Fatalf("Failed to migrate database: %v", err)
	}

	auth.SetupAuthService()

	uploader, err := storage.NewClientUploader(
		context.Background(),
		config.Config("GCS_PROJECT_ID"),
		config.Config("GCS_BUCKET_NAME"),
	)
	if err != nil {
		logrus.Fatalf("Failed to create storage uploader: %v", err)
	}

	if config.ConfigDefault("GCS_PUBLIC_BUCKET", "false") == "true" {
		if err := uploader.MakeBucketPublic(); err != nil {
			logrus.Fatalf("Failed to make bucket public: %v", err)
		}
	}

	generator := imagegen.NewClient(
		config.ConfigDefault("BFL_API_URL", "https://api.bfl.ml/v1"),
		config.Config("BFL_API_KEY"),
	)

	handler.Setup(handler.Deps{
		Uploader:  uploader,
		Generator: generator,
		Providers: map[string]imagegen.Provider{
			"bfl":    imagegen.NewBFLProvider(generator),
			"gemini": imagegen.NewGeminiProvider(config.ConfigDefault("GEMINI_IMAGE_MODEL", ""), uploader),
		},
		Analyzer:  floorplan.NewClient(config.Config("ANALYZER_URL")),
		Assistant: chat.NewClient(config.Config("ANTHROPIC_API_KEY")),
		Shopper: products.NewClient(
			config.ConfigDefault("THORDATA_API_URL", "https://scraperapi.thordata.com"),
			config.Config("THORDATA_API_KEY"),
		),
	})

	app := fiber.New(fiber.Config{
		BodyLimit: handler.MaxUploadSize + 1024*1024,
	})

	router.SetupRoutes(app)

	// close the database connection
	defer func() {
		if err := database.CloseDB(); err != nil {
			logrus.Errorf("Error closing the database connection: %v", err)
		}
	}()

	port := config.ConfigDefault("PORT", "3000")
	logrus.Infof("Server is listening at the port %s", port)
	logrus.Fatal(app.Listen(":" + port))
}
