package handler

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/decorviz/decor-serve/database"
	"github.com/decorviz/decor-serve/imagegen"
	"github.com/decorviz/decor-serve/imagemeta"
	"github.com/decorviz/decor-serve/middleware"
	"github.com/decorviz/decor-serve/models"
)

const maxPromptLength = 1000

func injectSysPrompt(prompt string, room *models.Room) string {
	var roomContext strings.Builder
	if room.Type != "" {
		fmt.Fprintf(&roomContext, "\nRoom type: %s.", room.Type)
	}
	if room.Style != "" {
		fmt.Fprintf(&roomContext, "\nPreferred style: %s.", room.Style)
	}
	if room.AreaSqm > 0 {
		fmt.Fprintf(&roomContext, "\nRoom size: %.1f square meters.", room.AreaSqm)
	}

	return fmt.Sprintf(`Photorealistic interior-design rendering of a furnished room. Focus on:

- Accurate room proportions, natural lighting and realistic materials
- Furniture arrangements that match the requested style
- Safe, appropriate content only
%s
Design request: %s`, roomContext.String(), prompt)
}

// GenerateRoomImage starts an image-generation job for a room, waits for the
// result and stores it as a RoomImage.
func GenerateRoomImage(c *fiber.Ctx) error {
	userID, err := middleware.CheckUserLoggedIn(c)
	if err != nil {
		return unauthorized(c)
	}

	type GenerateInput struct {
		Prompt   string `json:"prompt"`
		Provider string `json:"provider"`
		Width    int    `json:"width"`
		Height   int    `json:"height"`
	}

	var input GenerateInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status":  "error",
			"message": "Invalid request body",
			"data":    nil,
		})
	}

	if input.Prompt == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status":  "error",
			"message": "Prompt is required",
			"data":    nil,
		})
	}
	if len(input.Prompt) > maxPromptLength {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status":  "error",
			"message": "Prompt too long (max 1000 characters)",
			"data":    nil,
		})
	}

	if input.Provider == "" {
		input.Provider = "bfl"
	}
	provider, ok := providers[input.Provider]
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status":  "error",
			"message": "Unsupported provider",
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

	req := imagegen.GenerationRequest{
		Prompt: injectSysPrompt(input.Prompt, room),
		Width:  input.Width,
		Height: input.Height,
	}

	jobID, err := provider.Start(c.Context(), req)
	if err != nil {
		logrus.Errorf("Failed to start generation job: %v", err)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"status":  "error",
			"message": "Failed to start image generation",
			"data":    nil,
		})
	}

	outcome := generator.WaitForResult(c.Context(), jobID)
	if !outcome.Success {
		image := models.RoomImage{
			RoomID:   room.ID,
			URL:      "",
			Prompt:   input.Prompt,
			Provider: input.Provider,
			Status:   models.ImageStatusFailed,
		}
		if err := db.Create(&image).Error; err != nil {
			logrus.Errorf("Failed to record failed generation: %v", err)
		}

		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"status":  "error",
			"message": outcome.Reason,
			"data":    nil,
		})
	}

	image := models.RoomImage{
		RoomID:   room.ID,
		URL:      outcome.ImageURL,
		Prompt:   input.Prompt,
		Provider: input.Provider,
		Status:   models.ImageStatusCompleted,
	}

	// Best effort; the image is usable without recorded dimensions
	if content, err := fetchImage(outcome.ImageURL); err == nil {
		if dims := imagemeta.FromBytes(content); dims != nil {
			image.Width = dims.Width
			image.Height = dims.Height
		}
	}

	if err := db.Create(&image).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"status":  "error",
			"message": "Failed to save image record",
			"data":    nil,
		})
	}

	return c.JSON(fiber.Map{
		"status":  "success",
		"message": "Successfully generated image",
		"data":    image,
	})
}
