// Package floorplan wraps the external analyzer service that turns floor-plan
// images into structured room data and identifies furniture in room photos.
package floorplan

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// Room is one detected space in a floor plan.
type Room struct {
	Name          string                   `json:"name"`
	Type          string                   `json:"type"`
	AreaSqft      float64                  `json:"area_sqft"`
	AreaSqm       float64                  `json:"area_sqm"`
	Dimensions    map[string]interface{}   `json:"dimensions,omitempty"`
	Fixtures      []string                 `json:"fixtures,omitempty"`
	Doors         []map[string]interface{} `json:"doors,omitempty"`
	Windows       []map[string]interface{} `json:"windows,omitempty"`
	AdjacentRooms []string                 `json:"adjacent_rooms,omitempty"`
}

// Analysis is the full result for one floor plan.
type Analysis struct {
	Status          string  `json:"status"`
	Rooms           []Room  `json:"rooms"`
	AnnotatedImage  string  `json:"annotated_image_base64,omitempty"`
	TotalAreaSqft   float64 `json:"total_area_sqft"`
	RoomCount       int     `json:"room_count"`
	AnalysisError   string  `json:"error,omitempty"`
}

// FurnitureObject is one identified item in a room image.
type FurnitureObject struct {
	Name   string   `json:"name"`
	Colors []string `json:"colors,omitempty"`
	Tags   []string `json:"tags,omitempty"`
}

// FurnitureAnalysis describes furniture, style and palette of a room image.
type FurnitureAnalysis struct {
	Status       string            `json:"status"`
	Objects      []FurnitureObject `json:"objects"`
	OverallStyle string            `json:"overall_style,omitempty"`
	ColorPalette []string          `json:"color_palette,omitempty"`
}

// Client is a thin wrapper over the analyzer HTTP API.
type Client struct {
	http *resty.Client
}

func NewClient(baseURL string) *Client {
	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(120 * time.Second)

	return &Client{http: httpClient}
}

// Analyze posts a floor-plan image and returns detected rooms. The optional
// contextHint describes the building type ("residential apartment", "office").
func (c *Client) Analyze(ctx context.Context, filename string, image []byte, contextHint string) (*Analysis, error) {
	req := c.http.R().
		SetContext(ctx).
		SetFileReader("image", filename, bytes.NewReader(image)).
		SetResult(&Analysis{})
	if contextHint != "" {
		req.SetFormData(map[string]string{"context": contextHint})
	}

	resp, err := req.Post("/analyze")
	if err != nil {
		return nil, fmt.Errorf("floor plan analysis: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("floor plan analysis: status %d", resp.StatusCode())
	}

	analysis := resp.Result().(*Analysis)
	if analysis.Status != "success" {
		return nil, fmt.Errorf("floor plan analysis failed: %s", analysis.AnalysisError)
	}

	return analysis, nil
}

// AnalyzeFurniture posts a room image and returns identified furniture items.
func (c *Client) AnalyzeFurniture(ctx context.Context, filename string, image []byte) (*FurnitureAnalysis, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetFileReader("image", filename, bytes.NewReader(image)).
		SetResult(&FurnitureAnalysis{}).
		Post("/analyze-furniture")
	if err != nil {
		return nil, fmt.Errorf("furniture analysis: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("furniture analysis: status %d", resp.StatusCode())
	}

	return resp.Result().(*FurnitureAnalysis), nil
}
