package handler

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/decorviz/decor-serve/database"
	"github.com/decorviz/decor-serve/floorplan"
	"github.com/decorviz/decor-serve/middleware"
	"github.com/decorviz/decor-serve/models"
)

// AnalyzeFloorPlan runs room detection on the project's uploaded floor plan
// and replaces the project's room list with the detected spaces.
func AnalyzeFloorPlan(c *fiber.Ctx) error {
	userID, err := middleware.CheckUserLoggedIn(c)
	if err != nil {
		return unauthorized(c)
	}

	type AnalyzeInput struct {
		Context string `json:"context"`
	}
	var input AnalyzeInput
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&input); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"status":  "error",
				"message": "Invalid request body",
				"data":    nil,
			})
		}
	}

	db := database.GetDB()
	project, err := findOwnedProject(db, userID, c.Params("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound(c, "Project not found")
		}
		return dbError(c)
	}

	if project.FloorPlanURL == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status":  "error",
			"message": "Project has no floor plan uploaded",
			"data":    nil,
		})
	}

	content, err := fetchImage(project.FloorPlanURL)
	if err != nil {
		logrus.Errorf("Failed to fetch floor plan %s: %v", project.FloorPlanURL, err)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"status":  "error",
			"message": "Failed to fetch floor plan image",
			"data":    nil,
		})
	}

	analysis, err := analyzer.Analyze(c.Context(), path.Base(project.FloorPlanURL), content, input.Context)
	if err != nil {
		logrus.Errorf("Floor plan analysis failed: %v", err)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"status":  "error",
			"message": "Floor plan analysis failed",
			"data":    nil,
		})
	}

	annotatedURL := ""
	if analysis.AnnotatedImage != "" {
		annotatedURL, err = uploadAnnotatedImage(analysis.AnnotatedImage, project.ID)
		if err != nil {
			logrus.Warnf("Failed to store annotated floor plan: %v", err)
		}
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		// Replace previously detected rooms
		if err := tx.Where("project_id = ?", project.ID).Delete(&models.Room{}).Error; err != nil {
			return err
		}

		for _, r := range analysis.Rooms {
			room := models.Room{
				ProjectID: project.ID,
				Name:      r.Name,
				Type:      r.Type,
				AreaSqft:  r.AreaSqft,
				AreaSqm:   r.AreaSqm,
				Geometry:  roomGeometry(r),
			}
			if err := tx.Create(&room).Error; err != nil {
				return err
			}
		}

		project.TotalAreaSqft = analysis.TotalAreaSqft
		project.Status = "analyzed"
		project.Analysis = models.JSONMap{
			"room_count":          analysis.RoomCount,
			"total_area_sqft":     analysis.TotalAreaSqft,
			"annotated_image_url": annotatedURL,
		}

		return tx.Save(project).Error
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"status":  "error",
			"message": "Failed to save analysis results",
			"data":    nil,
		})
	}

	var rooms []models.Room
	if err := db.Where("project_id = ?", project.ID).Find(&rooms).Error; err != nil {
		return dbError(c)
	}

	return c.JSON(fiber.Map{
		"status":  "success",
		"message": "Floor plan analyzed successfully",
		"data": fiber.Map{
			"project": project,
			"rooms":   rooms,
		},
	})
}

func roomGeometry(r floorplan.Room) models.JSONMap {
	geometry := models.JSONMap{}
	if r.Dimensions != nil {
		geometry["dimensions"] = r.Dimensions
	}
	if len(r.Doors) > 0 {
		geometry["doors"] = r.Doors
	}
	if len(r.Windows) > 0 {
		geometry["windows"] = r.Windows
	}
	if len(r.Fixtures) > 0 {
		geometry["fixtures"] = r.Fixtures
	}
	if len(r.AdjacentRooms) > 0 {
		geometry["adjacent_rooms"] = r.AdjacentRooms
	}
	if len(geometry) == 0 {
		return nil
	}
	return geometry
}

func uploadAnnotatedImage(encoded string, projectID uint) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("decode annotated image: %v", err)
	}

	name := fmt.Sprintf("annotated_%d.png", projectID)
	url, _, err := uploader.UploadProcessedFile(bytes.NewReader(raw), name)
	return url, err
}

func fetchImage(imageURL string) ([]byte, error) {
	res, err := http.Get(imageURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch image: %v", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("received status code %d", res.StatusCode)
	}

	return io.ReadAll(io.LimitReader(res.Body, MaxUploadSize))
}
