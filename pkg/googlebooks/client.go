// Package googlebooks provides a client for the Google Books volumes API,
// the catalog search boundary used by fallback recommendations.
package googlebooks

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/time/rate"
)

const defaultBaseURL = "https://www.googleapis.com/books/v1"

// ClientOptions configures the Google Books API client.
type ClientOptions struct {
	// BaseURL is the API base URL (default: "https://www.googleapis.com/books/v1").
	BaseURL string
	// APIKey is the Google Books API key.
	APIKey string
	// RetryMax is the maximum number of retries (default: 3).
	RetryMax int
	// Timeout is the HTTP client timeout (default: 15 seconds).
	Timeout time.Duration
	// RequestsPerSecond caps outbound request rate (default: 10).
	RequestsPerSecond float64
}

// Client is the Google Books API client.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *retryablehttp.Client
	limiter    *rate.Limiter
}

// NewClient creates a Google Books client with default settings.
func NewClient(apiKey string) *Client {
	return NewClientWithOptions(ClientOptions{APIKey: apiKey})
}

// NewClientWithOptions creates a Google Books client with custom options.
func NewClientWithOptions(opts ClientOptions) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = defaultBaseURL
	}

	opts.BaseURL = strings.TrimSuffix(opts.BaseURL, "/")

	if opts.Timeout == 0 {
		opts.Timeout = 15 * time.Second
	}
	if opts.RetryMax == 0 {
		opts.RetryMax = 3
	}
	if opts.RequestsPerSecond == 0 {
		opts.RequestsPerSecond = 10
	}

	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = opts.RetryMax
	retryClient.HTTPClient.Timeout = opts.Timeout
	retryClient.Logger = nil // Disable logging by default

	return &Client{
		baseURL:    opts.BaseURL,
		apiKey:     opts.APIKey,
		httpClient: retryClient,
		limiter:    rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1),
	}
}

// Search runs a keyword query against the volumes endpoint and returns up to
// maxResults books ordered by relevance.
func (c *Client) Search(ctx context.Context, query string, maxResults int) ([]Book, error) {
	if maxResults <= 0 {
		maxResults = 20
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("maxResults", strconv.Itoa(maxResults))
	params.Set("orderBy", "relevance")
	if c.apiKey != "" {
		params.Set("key", c.apiKey)
	}

	reqURL := fmt.Sprintf("%s/volumes?%s", c.baseURL, params.Encode())

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			slog.Error("Failed to close response body", "error", err)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))

		return nil, fmt.Errorf("google books API returned status %d: %s", resp.StatusCode, string(body))
	}

	var data searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	books := make([]Book, 0, len(data.Items))
	for _, v := range data.Items {
		books = append(books, mapVolume(v))
	}

	return books, nil
}

func mapVolume(v volume) Book {
	info := v.VolumeInfo

	b := Book{
		BookID: v.ID,
		Title:  info.Title,
	}

	if b.Title == "" {
		b.Title = "Untitled"
	}

	if len(info.Authors) > 0 {
		author := strings.Join(info.Authors, ", ")
		b.Author = &author
	}

	if len(info.Categories) > 0 {
		b.Genre = &info.Categories[0]
	}

	if info.Description != "" {
		b.Description = &info.Description
	}

	if cover := normalizeCoverURL(info.ImageLinks.Thumbnail); cover != "" {
		b.CoverURL = &cover
	}

	if info.PageCount > 0 {
		b.PageCount = &info.PageCount
	}

	if info.PublishedDate != "" {
		b.PublishedDate = &info.PublishedDate
	}

	if isbn := extractISBN(v); isbn != "" {
		b.ISBN = &isbn
	}

	return b
}

// normalizeCoverURL forces https; Google Books sometimes returns http cover links.
func normalizeCoverURL(u string) string {
	if strings.HasPrefix(u, "http://") {
		return "https://" + strings.TrimPrefix(u, "http://")
	}

	return u
}

// extractISBN prefers ISBN_13 over ISBN_10.
func extractISBN(v volume) string {
	var isbn10 string

	for _, id := range v.VolumeInfo.IndustryIdentifiers {
		switch id.Type {
		case "ISBN_13":
			return id.Identifier
		case "ISBN_10":
			isbn10 = id.Identifier
		}
	}

	return isbn10
}
