// Package chat relays free-text questions to an OpenAI-compatible chat
// completion API with a fixed movie-assistant system prompt.
package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/tidwall/gjson"

	"github.com/modex/screening-booking/internal/config"
)

// SystemPrompt is sent ahead of every user message.
const SystemPrompt = "You are a helpful assistant for the Modex Movie Booking System. Answer user questions about movies, showtimes, genres, and general film info. Do not perform bookings yourself; instead, guide the user to use the main booking screens."

// FallbackReply is returned when the API answers without any content.
const FallbackReply = "Sorry, I could not generate a response."

var (
	// ErrMissingKey and ErrMissingModel report an unconfigured relay.
	ErrMissingKey   = errors.New("GROQ_API_KEY is not configured on the server.")
	ErrMissingModel = errors.New("GROQ_MODEL is not configured on the server. Please set it to a valid Groq model name.")
)

// Client calls the completion endpoint.  The zero value is not usable; use
// NewClient.
type Client struct {
	http   *http.Client
	url    string
	apiKey string
	model  string
}

// NewClient builds a Client from cfg.  A missing key or model is reported
// per call by Configured, not here.
func NewClient(cfg config.ChatConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	url := cfg.URL
	if url == "" {
		url = config.DefaultGroqURL
	}
	return &Client{
		http:   &http.Client{Timeout: timeout},
		url:    url,
		apiKey: cfg.APIKey,
		model:  cfg.Model,
	}
}

// Configured returns ErrMissingKey or ErrMissingModel when the relay cannot
// be used.
func (c *Client) Configured() error {
	if c.apiKey == "" {
		return ErrMissingKey
	}
	if c.model == "" {
		return ErrMissingModel
	}
	return nil
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type completionRequest struct {
	Model       string    `json:"model"`
	Messages    []message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens"`
}

// Reply forwards msg and returns the first choice's content verbatim, or
// FallbackReply when the API returned none.
func (c *Client) Reply(ctx context.Context, msg string) (string, error) {
	if err := c.Configured(); err != nil {
		return "", err
	}
	payload, err := json.Marshal(completionRequest{
		Model: c.model,
		Messages: []message{
			{Role: "system", Content: SystemPrompt},
			{Role: "user", Content: msg},
		},
		Temperature: 0.6,
		MaxTokens:   512,
	})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("chat request: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("chat response: %w", err)
	}
	if resp.StatusCode/100 != 2 {
		detail := gjson.GetBytes(body, "error.message").String()
		if detail == "" {
			detail = http.StatusText(resp.StatusCode)
		}
		return "", fmt.Errorf("chat api status %d: %s", resp.StatusCode, detail)
	}
	if reply := gjson.GetBytes(body, "choices.0.message.content").String(); reply != "" {
		return reply, nil
	}
	return FallbackReply, nil
}
