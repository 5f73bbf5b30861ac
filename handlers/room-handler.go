package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/decorviz/decor-serve/database"
	"github.com/decorviz/decor-serve/middleware"
	"github.com/decorviz/decor-serve/models"
)

// findOwnedRoom resolves a room through its project's owner.
func findOwnedRoom(db *gorm.DB, userID uint, roomID string) (*models.Room, error) {
	var room models.Room
	err := db.Joins("JOIN projects ON projects.id = rooms.project_id").
		Where("rooms.id = ? AND projects.user_id = ?", roomID, userID).
		First(&room).Error
	if err != nil {
		return nil, err
	}
	return &room, nil
}

func CreateRoom(c *fiber.Ctx) error {
	userID, err := middleware.CheckUserLoggedIn(c)
	if err != nil {
		return unauthorized(c)
	}

	type RoomInput struct {
		Name     string  `json:"name"`
		Type     string  `json:"type"`
		AreaSqft float64 `json:"area_sqft"`
		AreaSqm  float64 `json:"area_sqm"`
		Style    string  `json:"style"`
	}

	var input RoomInput
	if err := c.BodyParser(&input); err != nil || input.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status":  "error",
			"message": "Room name is required",
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

	room := models.Room{
		ProjectID: project.ID,
		Name:      input.Name,
		Type:      input.Type,
		AreaSqft:  input.AreaSqft,
		AreaSqm:   input.AreaSqm,
		Style:     input.Style,
	}

	if err := db.Create(&room).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"status":  "error",
			"message": "Failed to create room",
			"data":    nil,
		})
	}

	return c.JSON(fiber.Map{
		"status":  "success",
		"message": "Room created successfully",
		"data":    room,
	})
}

func ListRooms(c *fiber.Ctx) error {
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

	var rooms []models.Room
	if err := db.Preload("Images").Where("project_id = ?", project.ID).Find(&rooms).Error; err != nil {
		return dbError(c)
	}

	return c.JSON(fiber.Map{
		"status":  "success",
		"message": "Rooms found",
		"data":    rooms,
	})
}

func UpdateRoom(c *fiber.Ctx) error {
	userID, err := middleware.CheckUserLoggedIn(c)
	if err != nil {
		return unauthorized(c)
	}

	type RoomInput struct {
		Name     string  `json:"name"`
		Type     string  `json:"type"`
		AreaSqft float64 `json:"area_sqft"`
		AreaSqm  float64 `json:"area_sqm"`
		Style    string  `json:"style"`
	}

	var input RoomInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status":  "error",
			"message": "Invalid request body",
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

	if input.Name != "" {
		room.Name = input.Name
	}
	if input.Type != "" {
		room.Type = input.Type
	}
	if input.AreaSqft > 0 {
		room.AreaSqft = input.AreaSqft
	}
	if input.AreaSqm > 0 {
		room.AreaSqm = input.AreaSqm
	}
	if input.Style != "" {
		room.Style = input.Style
	}

	if err := db.Save(room).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"status":  "error",
			"message": "Failed to update room",
			"data":    nil,
		})
	}

	return c.JSON(fiber.Map{
		"status":  "success",
		"message": "Room updated successfully",
		"data":    room,
	})
}

func DeleteRoom(c *fiber.Ctx) error {
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

	if err := db.Select("Images").Delete(room).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"status":  "error",
			"message": "Failed to delete room",
			"data":    nil,
		})
	}

	return c.JSON(fiber.Map{
		"status":  "success",
		"message": "Room deleted successfully",
		"data":    nil,
	})
}

func ListRoomImages(c *fiber.Ctx) error {
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

	var images []models.RoomImage
	if err := db.Where("room_id = ?", room.ID).Order("created_at DESC").Find(&images).Error; err != nil {
		return dbError(c)
	}

	return c.JSON(fiber.Map{
		"status":  "success",
		"message": "Room images found",
		"data":    images,
	})
}

// markFinalImage demotes any previously final image for the room and promotes
// the given one in a single transaction, so at most one image per room ends
// up final.
func markFinalImage(db *gorm.DB, roomID uint, image *models.RoomImage) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.RoomImage{}).
			Where("room_id = ? AND is_final = ?", roomID, true).
			Update("is_final", false).Error; err != nil {
			return err
		}
		return tx.Model(image).Update("is_final", true).Error
	})
}

// SetFinalImage marks one generated image as the room's final choice.
func SetFinalImage(c *fiber.Ctx) error {
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

	if err := markFinalImage(db, room.ID, &image); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"status":  "error",
			"message": "Failed to set final image",
			"data":    nil,
		})
	}

	return c.JSON(fiber.Map{
		"status":  "success",
		"message": "Final image set",
		"data":    image,
	})
}
