package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/cinelog/ticket-scanner/internal/common"
)

// Candidate is one movie returned by the catalog service.
type Candidate struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	ReleaseDate string  `json:"release_date"`
	Popularity  float64 `json:"popularity"`
}

// ReleaseYear parses the year out of the release date, 0 when absent.
func (c Candidate) ReleaseYear() int {
	if len(c.ReleaseDate) < 4 {
		return 0
	}
	t, err := time.Parse("2006-01-02", c.ReleaseDate)
	if err != nil {
		return 0
	}
	return t.Year()
}

// Searcher looks up movie candidates by free-text title.
type Searcher interface {
	Search(ctx context.Context, query string) ([]Candidate, error)
}

// Client queries a TMDB-compatible movie catalog over HTTP.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	log        *slog.Logger
}

func NewClient(cfg common.CatalogConfig, log *slog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		apiKey:     cfg.APIKey,
		baseURL:    cfg.BaseURL,
		httpClient: &http.Client{Timeout: timeout},
		log:        log,
	}
}

// Enabled reports whether the catalog has a credential. Without one the
// matcher skips enrichment entirely.
func (c *Client) Enabled() bool {
	return c.apiKey != ""
}

type searchResponse struct {
	Results []Candidate `json:"results"`
}

// Search runs a title query and returns the raw candidate list in the
// service's own relevance order.
func (c *Client) Search(ctx context.Context, query string) ([]Candidate, error) {
	u, err := url.Parse(c.baseURL + "/search/movie")
	if err != nil {
		return nil, fmt.Errorf("parse catalog url: %w", err)
	}
	q := u.Query()
	q.Set("api_key", c.apiKey)
	q.Set("query", query)
	q.Set("include_adult", "false")
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build catalog request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("catalog request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read catalog response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("catalog returned status %d", resp.StatusCode)
	}

	var parsed searchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode catalog response: %w", err)
	}
	return parsed.Results, nil
}
