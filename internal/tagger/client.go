// Package tagger is the HTTP client for the external image classification
// service. Given raw image bytes it returns a content rating and the general
// and character tag lists detected in the picture.
package tagger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// Config configures the tagger client.
type Config struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// Validate validates the tagger configuration
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return errors.New("tagger: base_url is required")
	}
	return nil
}

// Result is the classification outcome for one image.
type Result struct {
	Rating        string   `json:"rating"`
	GeneralTags   []string `json:"general_tags"`
	CharacterTags []string `json:"character_tags"`
}

// Client talks to the classification service.
type Client struct {
	http   *resty.Client
	logger *zap.Logger
}

// New creates a tagger client. The timeout bounds a single classification
// call independently of the caller's context.
func New(cfg *Config, log *zap.Logger) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	http := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(timeout)

	return &Client{
		http:   http,
		logger: log,
	}, nil
}

// Classify submits image bytes and returns the detected rating and tags.
// Any transport or service error is fatal for the current import.
func (c *Client) Classify(ctx context.Context, image []byte) (*Result, error) {
	if len(image) == 0 {
		return nil, errors.New("tagger: image data must not be empty")
	}

	var result Result
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/octet-stream").
		SetBody(image).
		SetResult(&result).
		Post("/v1/tags")
	if err != nil {
		c.logger.Error("tagger request failed", zap.Error(err))
		return nil, fmt.Errorf("tagger request failed: %w", err)
	}

	if resp.IsError() {
		c.logger.Error("tagger returned error status",
			zap.Int("status", resp.StatusCode()),
			zap.String("body", resp.String()),
		)
		return nil, fmt.Errorf("tagger returned status %d", resp.StatusCode())
	}

	return &result, nil
}
