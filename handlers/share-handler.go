package handler

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/decorviz/decor-serve/database"
	"github.com/decorviz/decor-serve/middleware"
	"github.com/decorviz/decor-serve/models"
)

const defaultShareDuration = 30 * 24 * time.Hour

// ShareProject issues a public, read-only token for a project.
func ShareProject(c *fiber.Ctx) error {
	userID, err := middleware.CheckUserLoggedIn(c)
	if err != nil {
		return unauthorized(c)
	}

	type ShareInput struct {
		ExpiresInDays int `json:"expires_in_days"`
	}
	var input ShareInput
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&input); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"status":  "error",
				"message": "Invalid request body",
				"data":    nil,
			})
		}
	}

	duration := defaultShareDuration
	if input.ExpiresInDays > 0 {
		duration = time.Duration(input.ExpiresInDays) * 24 * time.Hour
	}

	db := database.GetDB()
	project, err := findOwnedProject(db, userID, c.Params("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound(c, "Project not found")
		}
		return dbError(c)
	}

	share := models.SharedDesign{
		ProjectID: project.ID,
		Token:     uuid.NewString(),
		ExpiresAt: time.Now().Add(duration),
	}

	if err := db.Create(&share).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"status":  "error",
			"message": "Failed to create share link",
			"data":    nil,
		})
	}

	return c.JSON(fiber.Map{
		"status":  "success",
		"message": "Share link created",
		"data":    share,
	})
}

// GetSharedProject is the public, unauthenticated view by share token.
func GetSharedProject(c *fiber.Ctx) error {
	db := database.GetDB()

	var share models.SharedDesign
	err := db.Where("token = ?", c.Params("token")).First(&share).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound(c, "Share link not found")
		}
		return dbError(c)
	}

	if time.Now().After(share.ExpiresAt) {
		return c.Status(fiber.StatusGone).JSON(fiber.Map{
			"status":  "error",
			"message": "Share link has expired",
			"data":    nil,
		})
	}

	var project models.Project
	err = db.Preload("Rooms").Preload("Rooms.Images").First(&project, share.ProjectID).Error
	if err != nil {
		return dbError(c)
	}

	return c.JSON(fiber.Map{
		"status":  "success",
		"message": "Shared project found",
		"data":    project,
	})
}

// RevokeShare deletes a share token for an owned project.
func RevokeShare(c *fiber.Ctx) error {
	userID, err := middleware.CheckUserLoggedIn(c)
	if err != nil {
		return unauthorized(c)
	}

	db := database.GetDB()
	project, err := findOwnedProject(db, userID, c.Params("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound(c, "Project not found")
		}
		return dbError(c)
	}

	result := db.Where("project_id = ? AND token = ?", project.ID, c.Params("token")).
		Delete(&models.SharedDesign{})
	if result.Error != nil {
		return dbError(c)
	}
	if result.RowsAffected == 0 {
		return notFound(c, "Share link not found")
	}

	return c.JSON(fiber.Map{
		"status":  "success",
		"message": "Share link revoked",
		"data":    nil,
	})
}
