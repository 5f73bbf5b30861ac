// Package products finds purchasable furniture matching detected items,
// using a scraper API over Google shopping and Google Lens results.
package products

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// Product is the best match for one search.
type Product struct {
	Title     string  `json:"title"`
	Link      string  `json:"link"`
	Price     string  `json:"price"`
	Source    string  `json:"source,omitempty"`
	Rating    float64 `json:"rating,omitempty"`
	Thumbnail string  `json:"thumbnail,omitempty"`
	Snippet   string  `json:"snippet,omitempty"`
}

type searchResult struct {
	ShoppingResults []resultItem `json:"shopping_results"`
	PopularProducts []resultItem `json:"popular_products"`
	Organic         []resultItem `json:"organic"`
	OrganicResults  []resultItem `json:"organic_results"`
}

type resultItem struct {
	Title          string  `json:"title"`
	Link           string  `json:"link"`
	ProductLink    string  `json:"product_link"`
	URL            string  `json:"url"`
	Price          string  `json:"price"`
	ExtractedPrice float64 `json:"extracted_price"`
	Source         string  `json:"source"`
	Merchant       string  `json:"merchant"`
	Rating         float64 `json:"rating"`
	Thumbnail      string  `json:"thumbnail"`
	Snippet        string  `json:"snippet"`
	DisplayedLink  string  `json:"displayed_link"`
}

// Client wraps the ThorData scraper API.
type Client struct {
	http *resty.Client
}

func NewClient(baseURL, apiKey string) *Client {
	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(30 * time.Second).
		SetHeader("Content-Type", "application/x-www-form-urlencoded").
		SetHeader("Authorization", "Bearer "+apiKey)

	return &Client{http: httpClient}
}

// Search looks up a product by text query ("grey fabric sofa") and returns
// the best match, or nil when nothing was found.
func (c *Client) Search(ctx context.Context, query string) (*Product, error) {
	result, err := c.request(ctx, map[string]string{
		"engine": "google",
		"q":      query + " buy",
		"json":   "1",
	})
	if err != nil {
		return nil, err
	}

	return bestMatch(result), nil
}

// SearchByImageURL runs a Google Lens visual search on a hosted image.
func (c *Client) SearchByImageURL(ctx context.Context, imageURL string) (*Product, error) {
	result, err := c.request(ctx, map[string]string{
		"engine": "google_lens",
		"url":    imageURL,
		"json":   "1",
	})
	if err != nil {
		return nil, err
	}

	return bestMatch(result), nil
}

func (c *Client) request(ctx context.Context, form map[string]string) (*searchResult, error) {
	var out searchResult
	resp, err := c.http.R().
		SetContext(ctx).
		SetFormData(form).
		SetResult(&out).
		Post("/request")
	if err != nil {
		return nil, fmt.Errorf("product search: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("product search: status %d", resp.StatusCode())
	}

	return &out, nil
}

// bestMatch prefers shopping results (they carry prices) and falls back to
// organic hits. Returns nil when the result set is empty.
func bestMatch(result *searchResult) *Product {
	shopping := result.ShoppingResults
	if len(shopping) == 0 {
		shopping = result.PopularProducts
	}
	if len(shopping) > 0 {
		best := shopping[0]

		link := firstNonEmpty(best.Link, best.ProductLink, best.URL)
		if link == "" && best.Title != "" {
			link = "https://www.google.com/search?tbm=shop&q=" + url.QueryEscape(best.Title)
		}

		price := best.Price
		if price == "" && best.ExtractedPrice > 0 {
			price = fmt.Sprintf("%.2f", best.ExtractedPrice)
		}
		if price == "" {
			price = "Price not available"
		}

		return &Product{
			Title:     best.Title,
			Link:      link,
			Price:     price,
			Source:    firstNonEmpty(best.Source, best.Merchant),
			Rating:    best.Rating,
			Thumbnail: best.Thumbnail,
		}
	}

	organic := result.Organic
	if len(organic) == 0 {
		organic = result.OrganicResults
	}
	if len(organic) > 0 {
		best := organic[0]
		return &Product{
			Title:   best.Title,
			Link:    best.Link,
			Price:   "Visit site for price",
			Source:  best.DisplayedLink,
			Snippet: best.Snippet,
		}
	}

	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
