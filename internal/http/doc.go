// Package http provides the HTTP client used to fetch remote source images.
//
// The Client in this package handles:
//   - User-Agent headers
//   - Timeout handling
//   - Response size limits
//
// # Basic Usage
//
//	client := http.NewClient(30*time.Second, "")
//
//	// Download an image into memory
//	data, err := client.DownloadBytes(ctx, "https://example.com/template.png")
//
// Requests honor the context, so canceling an export aborts downloads that
// are still in flight.
package http
