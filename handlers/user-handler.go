package handler

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/decorviz/decor-serve/database"
	"github.com/decorviz/decor-serve/middleware"
	"github.com/decorviz/decor-serve/models"
)

func GetUser(c *fiber.Ctx) error {
	type UserResponse struct {
		Email       string         `json:"email"`
		Username    string         `json:"username"`
		FullName    string         `json:"name"`
		Preferences models.JSONMap `json:"preferences,omitempty"`
	}

	id := c.Params("id")

	db := database.GetDB()
	user := models.User{}
	db.Find(&user, id)

	if user.Username == "" {
		return c.Status(404).JSON(fiber.Map{"status": "error", "message": "No user found with ID", "data": nil})
	}

	userResponse := UserResponse{
		Email:       user.Email,
		Username:    user.Username,
		FullName:    user.FullName,
		Preferences: user.Preferences,
	}

	return c.JSON(fiber.Map{"status": "success", "message": "User found", "data": userResponse})
}

// UpdateUser changes profile fields and the design preferences blob for the
// logged-in user.
func UpdateUser(c *fiber.Ctx) error {
	type UpdateInput struct {
		Username    string         `json:"username"`
		FullName    string         `json:"name"`
		Preferences models.JSONMap `json:"preferences"`
	}
	type UserResponse struct {
		ID          uint           `json:"id"`
		Email       string         `json:"email"`
		Username    string         `json:"username"`
		FullName    string         `json:"name"`
		Preferences models.JSONMap `json:"preferences,omitempty"`
	}

	userID, err := middleware.CheckUserLoggedIn(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "Authentication required",
			"status":  "error",
			"data":    nil,
		})
	}

	var userInput UpdateInput
	if err := c.BodyParser(&userInput); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid input",
			"status":  "error",
			"data":    nil,
		})
	}

	db := database.GetDB()
	var user models.User

	if err := db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "User not found",
				"status":  "error",
				"data":    nil,
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Database error",
			"status":  "error",
			"data":    nil,
		})
	}

	if userInput.Username != "" {
		var existingUser models.User
		if err := db.Where("username = ? AND id != ?", userInput.Username, userID).First(&existingUser).Error; err == nil {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"message": "Username already taken",
				"status":  "error",
				"data":    nil,
			})
		}
		user.Username = userInput.Username
	}
	if userInput.FullName != "" {
		user.FullName = userInput.FullName
	}
	if userInput.Preferences != nil {
		user.Preferences = userInput.Preferences
	}

	if err := db.Save(&user).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Failed to update user",
			"status":  "error",
			"data":    nil,
		})
	}

	response := UserResponse{
		ID:          user.ID,
		Email:       user.Email,
		Username:    user.Username,
		FullName:    user.FullName,
		Preferences: user.Preferences,
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status":  "success",
		"message": "User successfully updated",
		"data":    response,
	})
}

func DeleteUser(c *fiber.Ctx) error {
	userID, err := middleware.CheckUserLoggedIn(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "Authentication required",
			"status":  "error",
			"data":    nil,
		})
	}

	db := database.GetDB()
	var user models.User

	if err := db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "User not found",
				"status":  "error",
				"data":    nil,
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Database error",
			"status":  "error",
			"data":    nil,
		})
	}

	if err := db.Delete(&user).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Failed to delete user",
			"status":  "error",
			"data":    nil,
		})
	}

	// Clear JWT cookie
	c.Cookie(&fiber.Cookie{
		Name:     "JWT",
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		Secure:   false,
		SameSite: "Lax",
	})

	return c.JSON(fiber.Map{
		"status":  "success",
		"message": "User deleted successfully",
		"data":    nil,
	})
}
