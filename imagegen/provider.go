package imagegen

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"google.golang.org/genai"
)

// Provider starts a generation job and returns its job id. Asynchronous
// providers return a polling handle; synchronous providers return the final
// image URL directly, which WaitForResult recognizes and short-circuits.
type Provider interface {
	Start(ctx context.Context, req GenerationRequest) (string, error)
}

// Uploader stores generated image bytes and returns a public URL.
type Uploader interface {
	UploadProcessedFile(file io.Reader, object string) (string, string, error)
}

// BFLProvider submits to the async API and hands back a polling id.
type BFLProvider struct {
	client *Client
}

func NewBFLProvider(client *Client) *BFLProvider {
	return &BFLProvider{client: client}
}

func (p *BFLProvider) Start(ctx context.Context, req GenerationRequest) (string, error) {
	return p.client.Submit(ctx, req)
}

// GeminiProvider generates inline image bytes synchronously, uploads them
// and returns the stored URL as the job id.
type GeminiProvider struct {
	model    string
	uploader Uploader
}

func NewGeminiProvider(model string, uploader Uploader) *GeminiProvider {
	if model == "" {
		model = "gemini-2.5-flash-image-preview"
	}
	return &GeminiProvider{model: model, uploader: uploader}
}

func (p *GeminiProvider) Start(ctx context.Context, req GenerationRequest) (string, error) {
	client, err := genai.NewClient(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("create genai client: %w", err)
	}

	result, err := client.Models.GenerateContent(
		ctx,
		p.model,
		genai.Text(req.Prompt),
		&genai.GenerateContentConfig{},
	)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	if len(result.Candidates) == 0 || len(result.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no image content in response")
	}

	var imageBytes []byte
	for _, part := range result.Candidates[0].Content.Parts {
		if part.InlineData != nil && len(part.InlineData.Data) > 0 {
			imageBytes = part.InlineData.Data
			break
		}
	}
	if len(imageBytes) == 0 {
		return "", fmt.Errorf("no image data found in response")
	}

	outputFilename := fmt.Sprintf("generated_%d.png", time.Now().UnixNano())
	url, _, err := p.uploader.UploadProcessedFile(bytes.NewReader(imageBytes), outputFilename)
	if err != nil {
		return "", fmt.Errorf("upload generated image: %w", err)
	}

	return url, nil
}
