package handler

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"strconv"
	"strings"

	"github.com/disintegration/gift"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/decorviz/decor-serve/database"
	"github.com/decorviz/decor-serve/middleware"
	"github.com/decorviz/decor-serve/models"
)

const (
	MaxImageWidth  = 4000
	MaxImageHeight = 4000
	JPEGQuality    = 90
	MaxBlurRadius  = 50
	MaxBrightness  = 100
	MaxContrast    = 100
	MaxSaturation  = 200
	MaxPixelate    = 50
)

type FilterError struct {
	FilterName string
	Message    string
}

func (e FilterError) Error() string {
	return fmt.Sprintf("filter '%s': %s", e.FilterName, e.Message)
}

// filterBuilders maps query parameter names to constructors. Each builder
// validates its raw parameter value and returns a configured gift filter.
var filterBuilders = map[string]func(param string) (gift.Filter, error){
	"resize": func(param string) (gift.Filter, error) {
		width, height, err := parseDimensions(param, "resize")
		if err != nil {
			return nil, err
		}
		return gift.Resize(width, height, gift.LanczosResampling), nil
	},
	"crop_to_size": func(param string) (gift.Filter, error) {
		width, height, err := parseDimensions(param, "crop_to_size")
		if err != nil {
			return nil, err
		}
		return gift.CropToSize(width, height, gift.LeftAnchor), nil
	},
	"rotate": rangeBuilder("rotate", -360, 360, func(v float32) gift.Filter {
		return gift.Rotate(v, color.Transparent, gift.CubicInterpolation)
	}),
	"brightness_increase": rangeBuilder("brightness_increase", 0, MaxBrightness, func(v float32) gift.Filter {
		return gift.Brightness(v)
	}),
	"brightness_decrease": rangeBuilder("brightness_decrease", 0, MaxBrightness, func(v float32) gift.Filter {
		return gift.Brightness(-v)
	}),
	"contrast_increase": rangeBuilder("contrast_increase", 0, MaxContrast, func(v float32) gift.Filter {
		return gift.Contrast(v)
	}),
	"contrast_decrease": rangeBuilder("contrast_decrease", 0, MaxContrast, func(v float32) gift.Filter {
		return gift.Contrast(-v)
	}),
	"saturation_increase": rangeBuilder("saturation_increase", 0, MaxSaturation, func(v float32) gift.Filter {
		return gift.Saturation(v)
	}),
	"saturation_decrease": rangeBuilder("saturation_decrease", 0, MaxSaturation, func(v float32) gift.Filter {
		return gift.Saturation(-v)
	}),
	"gaussian_blur": rangeBuilder("gaussian_blur", 0.1, MaxBlurRadius, func(v float32) gift.Filter {
		return gift.GaussianBlur(v)
	}),
	"pixelate": func(param string) (gift.Filter, error) {
		size, err := parsePositiveInt(param, "pixelate size")
		if err != nil {
			return nil, FilterError{"pixelate", err.Error()}
		}
		if size > MaxPixelate {
			return nil, FilterError{"pixelate", fmt.Sprintf("pixelate size too large (max %d)", MaxPixelate)}
		}
		return gift.Pixelate(size), nil
	},
	"grayscale": func(string) (gift.Filter, error) { return gift.Grayscale(), nil },
	"invert":    func(string) (gift.Filter, error) { return gift.Invert(), nil },
}

// rangeBuilder wraps a single-float filter constructor with bounds checking.
func rangeBuilder(name string, min, max float32, build func(float32) gift.Filter) func(string) (gift.Filter, error) {
	return func(param string) (gift.Filter, error) {
		if param == "" {
			return nil, FilterError{name, "parameter is required"}
		}
		value, err := strconv.ParseFloat(param, 32)
		if err != nil {
			return nil, FilterError{name, "must be a number"}
		}
		v := float32(value)
		if v < min || v > max {
			return nil, FilterError{name, fmt.Sprintf("must be between %.1f and %.1f", min, max)}
		}
		return build(v), nil
	}
}

func parsePositiveInt(param, paramName string) (int, error) {
	if param == "" {
		return 0, fmt.Errorf("%s parameter is required", paramName)
	}
	value, err := strconv.Atoi(param)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: must be an integer", paramName)
	}
	if value < 0 {
		return 0, fmt.Errorf("%s must be positive", paramName)
	}
	return value, nil
}

func parseDimensions(param, filterName string) (int, int, error) {
	if param == "" {
		return 0, 0, FilterError{filterName, "dimensions parameter is required"}
	}

	parts := strings.Split(param, "x")
	if len(parts) != 2 {
		return 0, 0, FilterError{filterName, "dimensions must be in format 'widthxheight'"}
	}

	width, err := parsePositiveInt(parts[0], "width")
	if err != nil {
		return 0, 0, FilterError{filterName, err.Error()}
	}

	height, err := parsePositiveInt(parts[1], "height")
	if err != nil {
		return 0, 0, FilterError{filterName, err.Error()}
	}

	if width > MaxImageWidth || height > MaxImageHeight {
		return 0, 0, FilterError{filterName, fmt.Sprintf("dimensions too large (max %dx%d)", MaxImageWidth, MaxImageHeight)}
	}

	return width, height, nil
}

// parseFilters builds the pipeline from query parameters, skipping ones that
// do not name a filter.
func parseFilters(queryParams map[string]string) ([]gift.Filter, error) {
	var filters []gift.Filter

	for name, param := range queryParams {
		build, ok := filterBuilders[name]
		if !ok {
			continue
		}

		filter, err := build(param)
		if err != nil {
			return nil, err
		}

		filters = append(filters, filter)
	}

	if len(filters) == 0 {
		return nil, fmt.Errorf("no valid filters specified")
	}

	return filters, nil
}

func loadRoomImage(imageURL string) (image.Image, error) {
	body, err := fetchImage(imageURL)
	if err != nil {
		return nil, err
	}

	img, _, err := image.Decode(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %v", err)
	}

	bounds := img.Bounds()
	if bounds.Dx() > MaxImageWidth || bounds.Dy() > MaxImageHeight {
		return nil, fmt.Errorf("image too large (max %dx%d)", MaxImageWidth, MaxImageHeight)
	}

	return img, nil
}

func processImage(src image.Image, filters []gift.Filter) image.Image {
	g := gift.New(filters...)
	dst := image.NewRGBA(g.Bounds(src.Bounds()))
	g.Draw(dst, src)
	return dst
}

func encodeImage(img image.Image) (*bytes.Reader, error) {
	var buf bytes.Buffer
	err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: JPEGQuality})
	if err != nil {
		return nil, fmt.Errorf("failed to encode image: %v", err)
	}
	return bytes.NewReader(buf.Bytes()), nil
}

// ApplyFiltersToRoomImage runs the filter pipeline named in the query string
// over a generated room image and stores the result as a new variant.
func ApplyFiltersToRoomImage(c *fiber.Ctx) error {
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

	var source models.RoomImage
	err = db.Where("id = ? AND room_id = ?", c.Params("imageId"), room.ID).First(&source).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound(c, "Image not found")
		}
		return dbError(c)
	}

	img, err := loadRoomImage(source.URL)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status":  "error",
			"message": fmt.Sprintf("Failed to load image: %v", err),
			"data":    nil,
		})
	}

	filters, err := parseFilters(c.Queries())
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status":  "error",
			"message": err.Error(),
			"data":    nil,
		})
	}

	processed := processImage(img, filters)

	reader, err := encodeImage(processed)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"status":  "error",
			"message": "Failed to encode processed image",
			"data":    nil,
		})
	}

	url, _, err := uploader.UploadProcessedFile(reader, fmt.Sprintf("filtered_%d.jpg", source.ID))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"status":  "error",
			"message": "Failed to upload processed image",
			"data":    nil,
		})
	}

	bounds := processed.Bounds()
	variant := models.RoomImage{
		RoomID:   room.ID,
		URL:      url,
		Prompt:   source.Prompt,
		Provider: "filter",
		Status:   models.ImageStatusCompleted,
		Width:    bounds.Dx(),
		Height:   bounds.Dy(),
	}

	if err := db.Create(&variant).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"status":  "error",
			"message": "Failed to save image record",
			"data":    nil,
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status":  "success",
		"message": "Successfully processed image",
		"data":    variant,
	})
}
