package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/decorviz/decor-serve/database"
	"github.com/decorviz/decor-serve/middleware"
	"github.com/decorviz/decor-serve/models"
)

func CreatePalette(c *fiber.Ctx) error {
	userID, err := middleware.CheckUserLoggedIn(c)
	if err != nil {
		return unauthorized(c)
	}

	type PaletteInput struct {
		Name   string          `json:"name"`
		Colors models.JSONList `json:"colors"`
	}

	var input PaletteInput
	if err := c.BodyParser(&input); err != nil || input.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status":  "error",
			"message": "Palette name is required",
			"data":    nil,
		})
	}

	db := database.GetDB()
	room, err := findOwnedRoom(db, userID, c.Params("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound(c, "Room not found")
		}
		return dbError(c)
	}

	palette := models.ColorPalette{
		RoomID: room.ID,
		Name:   input.Name,
		Colors: input.Colors,
	}

	if err := db.Create(&palette).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"status":  "error",
			"message": "Failed to create palette",
			"data":    nil,
		})
	}

	return c.JSON(fiber.Map{
		"status":  "success",
		"message": "Palette created successfully",
		"data":    palette,
	})
}

func ListPalettes(c *fiber.Ctx) error {
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

	var palettes []models.ColorPalette
	if err := db.Where("room_id = ?", room.ID).Find(&palettes).Error; err != nil {
		return dbError(c)
	}

	return c.JSON(fiber.Map{
		"status":  "success",
		"message": "Palettes found",
		"data":    palettes,
	})
}

func DeletePalette(c *fiber.Ctx) error {
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

	result := db.Where("id = ? AND room_id = ?", c.Params("paletteId"), room.ID).Delete(&models.ColorPalette{})
	if result.Error != nil {
		return dbError(c)
	}
	if result.RowsAffected == 0 {
		return notFound(c, "Palette not found")
	}

	return c.JSON(fiber.Map{
		"status":  "success",
		"message": "Palette deleted successfully",
		"data":    nil,
	})
}
