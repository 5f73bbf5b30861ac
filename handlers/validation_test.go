package handler

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/decorviz/decor-serve/floorplan"
	"github.com/decorviz/decor-serve/models"
)

func TestValidateUpload(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		size     int64
		wantErr  bool
	}{
		{"valid png", "plan.png", 1024, false},
		{"valid jpeg uppercase", "PLAN.JPEG", 1024, false},
		{"valid webp", "plan.webp", MaxUploadSize, false},
		{"missing filename", "", 1024, true},
		{"wrong extension", "plan.pdf", 1024, true},
		{"no extension", "plan", 1024, true},
		{"empty file", "plan.png", 0, true},
		{"too large", "plan.png", MaxUploadSize + 1, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateUpload(tc.filename, tc.size)
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestInjectSysPrompt(t *testing.T) {
	room := &models.Room{
		Name:    "Master Bedroom",
		Type:    "bedroom",
		Style:   "japandi",
		AreaSqm: 18.5,
	}

	prompt := injectSysPrompt("add a reading corner", room)
	assert.Contains(t, prompt, "Design request: add a reading corner")
	assert.Contains(t, prompt, "Room type: bedroom")
	assert.Contains(t, prompt, "Preferred style: japandi")
	assert.Contains(t, prompt, "18.5 square meters")
}

func TestInjectSysPromptBareRoom(t *testing.T) {
	prompt := injectSysPrompt("make it cozy", &models.Room{Name: "Hall"})
	assert.Contains(t, prompt, "Design request: make it cozy")
	assert.NotContains(t, prompt, "Room type:")
	assert.NotContains(t, prompt, "Preferred style:")
}

func TestParseDimensions(t *testing.T) {
	w, h, err := parseDimensions("800x600", "resize")
	require.NoError(t, err)
	assert.Equal(t, 800, w)
	assert.Equal(t, 600, h)

	_, _, err = parseDimensions("800", "resize")
	assert.Error(t, err)

	_, _, err = parseDimensions("9000x100", "resize")
	assert.Error(t, err)
}

func TestParseFilters(t *testing.T) {
	filters, err := parseFilters(map[string]string{
		"grayscale":     "true",
		"gaussian_blur": "2.5",
		"unknown_param": "ignored",
	})
	require.NoError(t, err)
	assert.Len(t, filters, 2)

	_, err = parseFilters(map[string]string{"unknown_param": "x"})
	assert.Error(t, err)

	_, err = parseFilters(map[string]string{"pixelate": "100"})
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "pixelate"))
}

func TestRoomGeometry(t *testing.T) {
	geometry := roomGeometry(floorplan.Room{
		Name:          "Kitchen",
		Fixtures:      []string{"sink", "stove"},
		AdjacentRooms: []string{"dining_room"},
	})
	require.NotNil(t, geometry)
	assert.Contains(t, geometry, "fixtures")
	assert.Contains(t, geometry, "adjacent_rooms")
	assert.NotContains(t, geometry, "doors")

	assert.Nil(t, roomGeometry(floorplan.Room{Name: "Closet"}))
}
