package handler

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"io"
	"path/filepath"
	"strings"

	"github.com/disintegration/gift"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	// Decoders for thumbnail generation; uploads are validated by extension.
	_ "image/gif"
	_ "image/png"

	_ "golang.org/x/image/webp"

	"github.com/decorviz/decor-serve/database"
	"github.com/decorviz/decor-serve/imagemeta"
	"github.com/decorviz/decor-serve/middleware"
	"github.com/decorviz/decor-serve/models"
)

const (
	MaxUploadSize  = 20 * 1024 * 1024 // 20MB
	ThumbnailWidth = 320
)

var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

func findOwnedProject(db *gorm.DB, userID uint, projectID string) (*models.Project, error) {
	var project models.Project
	err := db.Where("id = ? AND user_id = ?", projectID, userID).First(&project).Error
	if err != nil {
		return nil, err
	}
	return &project, nil
}

func CreateProject(c *fiber.Ctx) error {
	userID, err := middleware.CheckUserLoggedIn(c)
	if err != nil {
		return unauthorized(c)
	}

	type ProjectInput struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}

	var input ProjectInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status":  "error",
			"message": "Invalid request body",
			"data":    nil,
		})
	}

	if input.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status":  "error",
			"message": "Project name is required",
			"data":    nil,
		})
	}

	project := models.Project{
		UserID:      userID,
		Name:        input.Name,
		Description: input.Description,
		Status:      "draft",
	}

	db := database.GetDB()
	if err := db.Create(&project).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"status":  "error",
			"message": "Failed to create project",
			"data":    nil,
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status":  "success",
		"message": "Project created successfully",
		"data":    project,
	})
}

func ListProjects(c *fiber.Ctx) error {
	userID, err := middleware.CheckUserLoggedIn(c)
	if err != nil {
		return unauthorized(c)
	}

	db := database.GetDB()
	var projects []models.Project
	if err := db.Where("user_id = ?", userID).Order("updated_at DESC").Find(&projects).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"status":  "error",
			"message": "Failed to list projects",
			"data":    nil,
		})
	}

	return c.JSON(fiber.Map{
		"status":  "success",
		"message": "Projects found",
		"data":    projects,
	})
}

func GetProject(c *fiber.Ctx) error {
	userID, err := middleware.CheckUserLoggedIn(c)
	if err != nil {
		return unauthorized(c)
	}

	db := database.GetDB()
	var project models.Project
	err = db.Preload("Rooms").Preload("Rooms.Images").
		Where("id = ? AND user_id = ?", c.Params("id"), userID).
		First(&project).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound(c, "Project not found")
		}
		return dbError(c)
	}

	return c.JSON(fiber.Map{
		"status":  "success",
		"message": "Project found",
		"data":    project,
	})
}

func UpdateProject(c *fiber.Ctx) error {
	userID, err := middleware.CheckUserLoggedIn(c)
	if err != nil {
		return unauthorized(c)
	}

	type ProjectInput struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		Status      string `json:"status"`
	}

	var input ProjectInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status":  "error",
			"message": "Invalid request body",
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

	if input.Name != "" {
		project.Name = input.Name
	}
	if input.Description != "" {
		project.Description = input.Description
	}
	if input.Status != "" {
		project.Status = input.Status
	}

	if err := db.Save(project).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"status":  "error",
			"message": "Failed to update project",
			"data":    nil,
		})
	}

	return c.JSON(fiber.Map{
		"status":  "success",
		"message": "Project updated successfully",
		"data":    project,
	})
}

func DeleteProject(c *fiber.Ctx) error {
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

	if err := db.Select("Rooms").Delete(project).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"status":  "error",
			"message": "Failed to delete project",
			"data":    nil,
		})
	}

	return c.JSON(fiber.Map{
		"status":  "success",
		"message": "Project deleted successfully",
		"data":    nil,
	})
}

// ValidateUpload checks extension and size limits for a floor-plan upload.
func ValidateUpload(filename string, size int64) error {
	if filename == "" {
		return fmt.Errorf("no filename provided")
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedExtensions[ext] {
		return fmt.Errorf("invalid file type %q", ext)
	}

	if size == 0 {
		return fmt.Errorf("empty file")
	}
	if size > MaxUploadSize {
		return fmt.Errorf("file too large (max %dMB)", MaxUploadSize/(1024*1024))
	}

	return nil
}

// UploadFloorPlan stores a floor-plan image for a project, records its pixel
// dimensions and generates a thumbnail.
func UploadFloorPlan(c *fiber.Ctx) error {
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

	file, err := c.FormFile("floor_plan")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status":  "error",
			"message": "No file provided",
			"data":    nil,
		})
	}

	if err := ValidateUpload(file.Filename, file.Size); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status":  "error",
			"message": err.Error(),
			"data":    nil,
		})
	}

	blobFile, err := file.Open()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"status":  "error",
			"message": "Error opening the file",
			"data":    nil,
		})
	}
	defer blobFile.Close()

	content, err := io.ReadAll(io.LimitReader(blobFile, MaxUploadSize))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"status":  "error",
			"message": "Error reading the file",
			"data":    nil,
		})
	}

	url, _, err := uploader.UploadFile(bytes.NewReader(content), file.Filename)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"status":  "error",
			"message": "Error uploading the file",
			"data":    nil,
		})
	}

	project.FloorPlanURL = url
	project.Status = "uploaded"

	if dims := imagemeta.FromBytes(content); dims != nil {
		project.FloorPlanWidth = dims.Width
		project.FloorPlanHeight = dims.Height
	}

	if thumbURL, err := uploadThumbnail(content, file.Filename); err != nil {
		logrus.Warnf("Thumbnail generation failed for %s: %v", file.Filename, err)
	} else {
		project.FloorPlanThumb = thumbURL
	}

	if err := db.Save(project).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"status":  "error",
			"message": "Error saving to database",
			"data":    nil,
		})
	}

	return c.JSON(fiber.Map{
		"status":  "success",
		"message": "Successfully uploaded the floor plan",
		"data":    project,
	})
}

func uploadThumbnail(content []byte, filename string) (string, error) {
	src, _, err := image.Decode(bytes.NewReader(content))
	if err != nil {
		return "", fmt.Errorf("decode image: %v", err)
	}

	g := gift.New(gift.Resize(ThumbnailWidth, 0, gift.LanczosResampling))
	dst := image.NewRGBA(g.Bounds(src.Bounds()))
	g.Draw(dst, src)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: JPEGQuality}); err != nil {
		return "", fmt.Errorf("encode thumbnail: %v", err)
	}

	thumbURL, _, err := uploader.UploadProcessedFile(&buf, "thumb_"+filename)
	return thumbURL, err
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"status":  "error",
		"message": "Authentication required",
		"data":    nil,
	})
}

func notFound(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
		"status":  "error",
		"message": message,
		"data":    nil,
	})
}

func dbError(c *fiber.Ctx) error {
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"status":  "error",
		"message": "Database error",
		"data":    nil,
	})
}
