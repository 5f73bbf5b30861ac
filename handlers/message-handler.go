package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/decorviz/decor-serve/chat"
	"github.com/decorviz/decor-serve/database"
	"github.com/decorviz/decor-serve/middleware"
	"github.com/decorviz/decor-serve/models"
)

// historyLimit bounds how much conversation is sent to the assistant.
const historyLimit = 20

func ListMessages(c *fiber.Ctx) error {
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

	var messages []models.Message
	if err := db.Where("project_id = ?", project.ID).Order("created_at ASC").Find(&messages).Error; err != nil {
		return dbError(c)
	}

	return c.JSON(fiber.Map{
		"status":  "success",
		"message": "Messages found",
		"data":    messages,
	})
}

// SendMessage stores the user's chat message, asks the design assistant for a
// reply and stores that too.
func SendMessage(c *fiber.Ctx) error {
	userID, err := middleware.CheckUserLoggedIn(c)
	if err != nil {
		return unauthorized(c)
	}

	type MessageInput struct {
		Content string `json:"content"`
	}

	var input MessageInput
	if err := c.BodyParser(&input); err != nil || input.Content == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status":  "error",
			"message": "Message content is required",
			"data":    nil,
		})
	}

	db := database.GetDB()
	project, err := findOwnedProject(db, userID, c.Params("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound(c, "Project not found")
		}
		return dbError(c)
	}

	userMessage := models.Message{
		ProjectID: project.ID,
		UserID:    userID,
		Role:      "user",
		Content:   input.Content,
	}
	if err := db.Create(&userMessage).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"status":  "error",
			"message": "Failed to save message",
			"data":    nil,
		})
	}

	var recent []models.Message
	if err := db.Where("project_id = ?", project.ID).
		Order("created_at DESC").Limit(historyLimit).
		Find(&recent).Error; err != nil {
		return dbError(c)
	}

	// Oldest first for the assistant
	history := make([]chat.Message, 0, len(recent))
	for i := len(recent) - 1; i >= 0; i-- {
		history = append(history, chat.Message{
			Role:    recent[i].Role,
			Content: recent[i].Content,
		})
	}

	reply, err := assistant.Complete(c.Context(), history)
	if err != nil {
		logrus.Errorf("Assistant reply failed: %v", err)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"status":  "error",
			"message": "Assistant is unavailable",
			"data":    userMessage,
		})
	}

	assistantMessage := models.Message{
		ProjectID: project.ID,
		UserID:    userID,
		Role:      "assistant",
		Content:   reply,
	}
	if err := db.Create(&assistantMessage).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"status":  "error",
			"message": "Failed to save assistant reply",
			"data":    nil,
		})
	}

	return c.JSON(fiber.Map{
		"status":  "success",
		"message": "Message sent",
		"data": fiber.Map{
			"user_message":      userMessage,
			"assistant_message": assistantMessage,
		},
	})
}
