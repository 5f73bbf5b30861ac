package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/decorviz/decor-serve/chat"
	"github.com/decorviz/decor-serve/floorplan"
	"github.com/decorviz/decor-serve/imagegen"
	"github.com/decorviz/decor-serve/products"
	"github.com/decorviz/decor-serve/storage"
)

// Package-level collaborators, wired once from main.
var (
	uploader  *storage.ClientUploader
	generator *imagegen.Client
	providers map[string]imagegen.Provider
	analyzer  *floorplan.Client
	assistant *chat.Client
	shopper   *products.Client
)

// Deps carries everything the handlers need.
type Deps struct {
	Uploader  *storage.ClientUploader
	Generator *imagegen.Client
	Providers map[string]imagegen.Provider
	Analyzer  *floorplan.Client
	Assistant *chat.Client
	Shopper   *products.Client
}

func Setup(d Deps) {
	uploader = d.Uploader
	generator = d.Generator
	providers = d.Providers
	analyzer = d.Analyzer
	assistant = d.Assistant
	shopper = d.Shopper
}

func Hello(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "success",
		"message": "decor-serve is up",
		"data":    nil,
	})
}
