package http

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultUserAgent is sent with every request unless overridden.
const DefaultUserAgent = "waifu2ugc"

// DefaultTimeout bounds a single request when no timeout is configured.
const DefaultTimeout = 60 * time.Second

// Client wraps HTTP operations used to fetch remote face and template images.
//
// Client provides:
//   - Configured User-Agent header
//   - Timeout handling
//   - A size limit on downloaded bodies
//
// Example usage:
//
//	client := NewClient(30*time.Second, "")
//
//	// Fetch an image
//	data, err := client.DownloadBytes(ctx, "https://example.com/front.png")
type Client struct {
	httpClient *http.Client
	userAgent  string
	maxBytes   int64
}

// NewClient creates a new HTTP client.
//
// A zero timeout means DefaultTimeout and an empty userAgent means
// DefaultUserAgent. Bodies larger than 256 MiB are rejected.
func NewClient(timeout time.Duration, userAgent string) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		userAgent: userAgent,
		maxBytes:  256 << 20,
	}
}

// Get performs a GET request and returns the response body as bytes.
//
// The request includes the configured User-Agent header.
//
// Returns an error if:
//   - The request fails
//   - The response status is not 200 OK
//   - The body exceeds the size limit
//   - Reading the body fails
//
// Example:
//
//	data, err := client.Get(ctx, "https://example.com/image.jpg")
func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(body)) > c.maxBytes {
		return nil, fmt.Errorf("response from %s exceeds %d bytes", url, c.maxBytes)
	}
	return body, nil
}

// DownloadBytes downloads a file and returns the bytes in memory.
//
// Use this for source images; they are decoded from memory anyway.
//
// Example:
//
//	imageData, err := client.DownloadBytes(ctx, faceURL)
func (c *Client) DownloadBytes(ctx context.Context, url string) ([]byte, error) {
	return c.Get(ctx, url)
}
