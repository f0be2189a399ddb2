// Package fetcher retrieves page HTML over plain HTTP for CLI scans.
package fetcher

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// maxBodyBytes bounds how much of a response is read. Order pages are not
// multi-megabyte documents; anything past this is noise.
const maxBodyBytes = 4 << 20

type Fetcher struct {
	client *http.Client
}

func NewFetcher() *Fetcher {
	return &Fetcher{
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

// FetchHTML retrieves the page body and final URL (after redirects) as a
// string. Non-2xx statuses are errors; the pipeline treats a failed fetch as
// a skipped page, not a crash.
func (f *Fetcher) FetchHTML(ctx context.Context, url string) (string, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "subscribe-any/1.0")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", "", fmt.Errorf("failed to make HTTP request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", "", fmt.Errorf("failed to fetch HTML, status code: %d", resp.StatusCode)
	}

	bodyBytes, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", "", fmt.Errorf("failed to read response body: %w", err)
	}

	finalURL := url
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}
	return string(bodyBytes), finalURL, nil
}
