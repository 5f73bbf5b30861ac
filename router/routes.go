package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"

	handler "github.com/decorviz/decor-serve/handlers"
	"github.com/decorviz/decor-serve/middleware"
)

func SetupRoutes(app *fiber.App) {
	api := app.Group("/api", logger.New())
	api.Get("/hello", handler.Hello)

	// Auth
	auth := api.Group("/auth")
	auth.Post("/register", handler.Register)
	auth.Post("/login", handler.Login)
	auth.Post("/logout", handler.Logout)

	// Public share view
	api.Get("/shared/:token", handler.GetSharedProject)

	// User
	user := api.Group("/user", middleware.AuthMiddleware())
	user.Get("/:id", handler.GetUser)
	user.Put("/", handler.UpdateUser)
	user.Delete("/", handler.DeleteUser)

	// Projects
	projects := api.Group("/projects", middleware.AuthMiddleware())
	projects.Post("/", handler.CreateProject)
	projects.Get("/", handler.ListProjects)
	projects.Get("/:id", handler.GetProject)
	projects.Put("/:id", handler.UpdateProject)
	projects.Delete("/:id", handler.DeleteProject)
	projects.Post("/:id/floor-plan", handler.UploadFloorPlan)
	projects.Post("/:id/analyze", handler.AnalyzeFloorPlan)
	projects.Post("/:id/rooms", handler.CreateRoom)
	projects.Get("/:id/rooms", handler.ListRooms)
	projects.Get("/:id/messages", handler.ListMessages)
	projects.Post("/:id/messages", handler.SendMessage)
	projects.Post("/:id/share", handler.ShareProject)
	projects.Delete("/:id/share/:token", handler.RevokeShare)

	// Rooms
	rooms := api.Group("/rooms", middleware.AuthMiddleware())
	rooms.Put("/:id", handler.UpdateRoom)
	rooms.Delete("/:id", handler.DeleteRoom)
	rooms.Get("/:id/images", handler.ListRoomImages)
	rooms.Post("/:id/generate", handler.GenerateRoomImage)
	rooms.Put("/:id/images/:imageId/final", handler.SetFinalImage)
	rooms.Post("/:id/images/:imageId/filters", handler.ApplyFiltersToRoomImage)
	rooms.Post("/:id/images/:imageId/furniture", handler.IdentifyFurniture)
	rooms.Post("/:id/palettes", handler.CreatePalette)
	rooms.Get("/:id/palettes", handler.ListPalettes)
	rooms.Delete("/:id/palettes/:paletteId", handler.DeletePalette)

	// Product search
	api.Post("/products/search", middleware.AuthMiddleware(), handler.SearchProducts)
}
