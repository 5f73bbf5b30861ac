package handler

import (
	"errors"
	"path"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/decorviz/decor-serve/database"
	"github.com/decorviz/decor-serve/middleware"
	"github.com/decorviz/decor-serve/models"
	"github.com/decorviz/decor-serve/products"
)

// IdentifyFurniture runs furniture detection on a generated room image and
// stores the detected items on the room.
func IdentifyFurniture(c *fiber.Ctx) error {
	userID, err := middleware.CheckUserLoggedIn(c)
	if err != nil {
		return unauthorized(c)
	}

	db := database.GetDB()
	room, err := findOwnedRoom(db, userID, c.Params("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound(c, "Room not found")
		}
		return dbError(c)
	}

	var image models.RoomImage
	err = db.Where("id = ? AND room_id = ?", c.Params("imageId"), room.ID).First(&image).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound(c, "Image not found")
		}
		return dbError(c)
	}

	content, err := fetchImage(image.URL)
	if err != nil {
		logrus.Errorf("Failed to fetch room image %s: %v", image.URL, err)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"status":  "error",
			"message": "Failed to fetch room image",
			"data":    nil,
		})
	}

	analysis, err := analyzer.AnalyzeFurniture(c.Context(), path.Base(image.URL), content)
	if err != nil {
		logrus.Errorf("Furniture analysis failed: %v", err)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"status":  "error",
			"message": "Furniture analysis failed",
			"data":    nil,
		})
	}

	items := make(models.JSONList, 0, len(analysis.Objects))
	for _, obj := range analysis.Objects {
		items = append(items, map[string]interface{}{
			"name":   obj.Name,
			"colors": obj.Colors,
			"tags":   obj.Tags,
		})
	}

	room.DetectedItems = items
	if analysis.OverallStyle != "" {
		room.Style = analysis.OverallStyle
	}

	if err := db.Save(room).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"status":  "error",
			"message": "Failed to save detected items",
			"data":    nil,
		})
	}

	return c.JSON(fiber.Map{
		"status":  "success",
		"message": "Furniture identified",
		"data": fiber.Map{
			"room":          room,
			"objects":       analysis.Objects,
			"overall_style": analysis.OverallStyle,
			"color_palette": analysis.ColorPalette,
		},
	})
}

// SearchProducts finds a purchasable match for a detected item or free-text
// query, falling back to visual search on the image URL when given.
func SearchProducts(c *fiber.Ctx) error {
	if _, err := middleware.CheckUserLoggedIn(c); err != nil {
		return unauthorized(c)
	}

	type SearchInput struct {
		Query    string `json:"query"`
		ImageURL string `json:"image_url"`
	}

	var input SearchInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status":  "error",
			"message": "Invalid request body",
			"data":    nil,
		})
	}

	if strings.TrimSpace(input.Query) == "" && strings.TrimSpace(input.ImageURL) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status":  "error",
			"message": "query or image_url is required",
			"data":    nil,
		})
	}

	var product *products.Product
	var err error
	if input.Query != "" {
		product, err = shopper.Search(c.Context(), input.Query)
	} else {
		product, err = shopper.SearchByImageURL(c.Context(), input.ImageURL)
	}
	if err != nil {
		logrus.Errorf("Product search failed: %v", err)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"status":  "error",
			"message": "Product search failed",
			"data":    nil,
		})
	}

	return c.JSON(fiber.Map{
		"status":  "success",
		"message": "Product search complete",
		"data":    product,
	})
}
