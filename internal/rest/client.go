// Package rest sends messages through the HTTP API.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/vanpelt/headcord/internal/models"
)

const defaultTimeout = 10 * time.Second

// Client posts to the message API on behalf of one token.
type Client struct {
	baseURL string
	token   string
	client  *http.Client
	timeout time.Duration
}

// New returns a client for baseURL authenticating with token.
func New(baseURL, token string) *Client {
	return NewWithClient(baseURL, token, &http.Client{})
}

func NewWithClient(baseURL, token string, client *http.Client) *Client {
	if client == nil {
		client = &http.Client{}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		client:  client,
		timeout: defaultTimeout,
	}
}

// RequestError is a non-2xx API response.
type RequestError struct {
	StatusCode int
	Code       int
	Message    string
}

func (e *RequestError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("http %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("http %d", e.StatusCode)
}

type createMessageRequest struct {
	Content string `json:"content"`
}

// CreateMessage posts content to a channel and returns the created message.
func (c *Client) CreateMessage(ctx context.Context, channelID, content string) (models.Message, error) {
	if strings.TrimSpace(channelID) == "" {
		return models.Message{}, fmt.Errorf("create message: channel id is required")
	}
	payload, err := json.Marshal(createMessageRequest{Content: content})
	if err != nil {
		return models.Message{}, fmt.Errorf("encode message: %w", err)
	}

	path := "/channels/" + url.PathEscape(channelID) + "/messages"
	body, err := c.request(ctx, http.MethodPost, path, payload)
	if err != nil {
		return models.Message{}, err
	}
	msg, err := models.DecodeMessage(body)
	if err != nil {
		return models.Message{}, fmt.Errorf("create message response: %w", err)
	}
	return msg, nil
}

func (c *Client) request(ctx context.Context, method, path string, payload []byte) ([]byte, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		reqErr := &RequestError{StatusCode: resp.StatusCode}
		var apiErr struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
		}
		if json.Unmarshal(body, &apiErr) == nil {
			reqErr.Code = apiErr.Code
			reqErr.Message = apiErr.Message
		}
		return nil, reqErr
	}
	return body, nil
}
