// Package imagegen wraps an asynchronous image-generation API: a submission
// call returns a job id, and WaitForResult polls until the job reaches a
// terminal state. Providers that deliver a direct result URL instead of a
// polling handle short-circuit the poll loop.
package imagegen

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
)

const (
	pollInterval = 2500 * time.Millisecond
	pollTimeout  = 150 * time.Second
)

// Outcome is the terminal result of a generation job. Exactly one of
// ImageURL (on success) or Reason (on failure) is meaningful.
type Outcome struct {
	Success  bool   `json:"success"`
	ImageURL string `json:"imageUrl,omitempty"`
	Reason   string `json:"error,omitempty"`
}

// GenerationRequest carries the parameters for one image.
type GenerationRequest struct {
	Prompt string `json:"prompt"`
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
}

// Client talks to a BFL-style generation API.
type Client struct {
	http     *resty.Client
	interval time.Duration
	timeout  time.Duration
}

func NewClient(baseURL, apiKey string) *Client {
	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(30 * time.Second).
		SetHeader("Content-Type", "application/json").
		SetHeader("x-key", apiKey)

	return &Client{
		http:     httpClient,
		interval: pollInterval,
		timeout:  pollTimeout,
	}
}

type submitResponse struct {
	ID string `json:"id"`
}

type statusResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Result struct {
		Sample string `json:"sample"`
	} `json:"result"`
}

// Submit posts a generation request and returns the polling job id.
func (c *Client) Submit(ctx context.Context, req GenerationRequest) (string, error) {
	var out submitResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&out).
		Post("/generate")
	if err != nil {
		return "", fmt.Errorf("submit generation request: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("submit generation request: status %d", resp.StatusCode())
	}
	if out.ID == "" {
		return "", fmt.Errorf("submit generation request: no job id in response")
	}

	return out.ID, nil
}

// WaitForResult polls the status endpoint until the job is terminal or the
// wall-clock timeout elapses. Job ids that are already absolute URLs are
// treated as complete without any network call. Transport errors are
// transient and retried on the same fixed interval. WaitForResult never
// returns an error; every outcome is an Outcome value.
func (c *Client) WaitForResult(ctx context.Context, jobID string) Outcome {
	if strings.HasPrefix(jobID, "http://") || strings.HasPrefix(jobID, "https://") {
		return Outcome{Success: true, ImageURL: jobID}
	}

	deadline := time.Now().Add(c.timeout)
	for {
		var status statusResponse
		resp, err := c.http.R().
			SetContext(ctx).
			SetQueryParam("id", jobID).
			SetResult(&status).
			Get("/get_result")

		switch {
		case err != nil || resp.IsError():
			// transient; retry until the deadline
			logrus.WithField("job_id", jobID).Debug("generation status check failed, retrying")

		case status.Status == "Ready":
			if status.Result.Sample != "" {
				return Outcome{Success: true, ImageURL: status.Result.Sample}
			}
			return Outcome{Reason: "ready but no URL provided"}

		case status.Status == "Error":
			return Outcome{Reason: "generation failed"}

		case status.Status == "Request Moderated", status.Status == "Content Moderated":
			return Outcome{Reason: "content was moderated"}

		case status.Status == "Task not found":
			return Outcome{Reason: "task not found"}
		}

		// Pending and unrecognized statuses fall through to the delay.

		if !time.Now().Add(c.interval).Before(deadline) {
			return Outcome{Reason: "timeout"}
		}
		time.Sleep(c.interval)
	}
}
