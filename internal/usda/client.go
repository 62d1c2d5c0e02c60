// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package usda is a client for the USDA FoodData Central API. Responses
// are cached on disk so repeated searches and imports do not spend the
// API key's rate limit.
package usda

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strconv"

	"github.com/pdiddy/nutriscan/internal/httputil"
	"github.com/pdiddy/nutriscan/pkg/types"
)

var (
	// ErrUnauthorized reports a missing, invalid, or revoked API key.
	ErrUnauthorized = errors.New("FoodData Central rejected the API key")

	// ErrNotFound reports an unknown FDC id.
	ErrNotFound = errors.New("food not found in FoodData Central")
)

// SearchResponse is the body of POST /foods/search.
type SearchResponse struct {
	TotalHits   int    `json:"totalHits"`
	CurrentPage int    `json:"currentPage"`
	TotalPages  int    `json:"totalPages"`
	Foods       []Food `json:"foods"`
}

// Client calls FoodData Central. A nil cache disables caching.
type Client struct {
	HTTP  *http.Client
	cfg   types.USDAConfig
	cache *Cache

	// Progress receives rate-limit notices. Nil discards them.
	Progress io.Writer
}

// NewClient builds a client from cfg. When cfg.CacheDir is set the
// directory is created and responses are cached for cfg.CacheTTL.
func NewClient(cfg types.USDAConfig) (*Client, error) {
	defaults := types.DefaultAppConfig().USDA
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaults.BaseURL
	}
	if cfg.APIKey == "" {
		cfg.APIKey = defaults.APIKey
	}
	if cfg.DefaultPageSize <= 0 {
		cfg.DefaultPageSize = defaults.DefaultPageSize
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaults.Timeout
	}

	c := &Client{
		HTTP: &http.Client{Timeout: cfg.Timeout},
		cfg:  cfg,
	}
	if cfg.CacheDir != "" {
		cache, err := NewCache(cfg.CacheDir, cfg.CacheTTL)
		if err != nil {
			return nil, err
		}
		c.cache = cache
	}
	return c, nil
}

// Cache returns the client's response cache, or nil when caching is off.
func (c *Client) Cache() *Cache { return c.cache }

// SearchFoods runs a keyword search. pageSize <= 0 uses the configured
// default. dataTypes filters by FDC data type (e.g. "Foundation",
// "SR Legacy"); empty means all.
func (c *Client) SearchFoods(ctx context.Context, query string, pageSize int, dataTypes []string) (SearchResponse, error) {
	if pageSize <= 0 {
		pageSize = c.cfg.DefaultPageSize
	}
	body := map[string]any{
		"query":    query,
		"pageSize": pageSize,
	}
	if len(dataTypes) > 0 {
		body["dataType"] = dataTypes
	}

	key := fmt.Sprintf("search:%s:%d:%v", query, pageSize, dataTypes)
	var out SearchResponse
	if err := c.fetch(ctx, key, http.MethodPost, "/foods/search", body, &out); err != nil {
		return SearchResponse{}, fmt.Errorf("searching %q: %w", query, err)
	}
	return out, nil
}

// GetFood fetches full details for one FDC id.
func (c *Client) GetFood(ctx context.Context, fdcID int64) (Food, error) {
	key := "food:" + strconv.FormatInt(fdcID, 10)
	var out Food
	if err := c.fetch(ctx, key, http.MethodGet, "/food/"+strconv.FormatInt(fdcID, 10), nil, &out); err != nil {
		return Food{}, fmt.Errorf("fetching food %d: %w", fdcID, err)
	}
	return out, nil
}

// GetFoods fetches details for several FDC ids in one request. Unknown
// ids are silently absent from the result.
func (c *Client) GetFoods(ctx context.Context, fdcIDs []int64) ([]Food, error) {
	if len(fdcIDs) == 0 {
		return nil, nil
	}
	sorted := slices.Clone(fdcIDs)
	slices.Sort(sorted)

	key := fmt.Sprintf("batch:%v", sorted)
	var out []Food
	if err := c.fetch(ctx, key, http.MethodPost, "/foods", map[string]any{"fdcIds": fdcIDs}, &out); err != nil {
		return nil, fmt.Errorf("fetching %d foods: %w", len(fdcIDs), err)
	}
	return out, nil
}

// fetch serves key from the cache or performs the request, caching a
// successful raw response body before decoding it into out.
func (c *Client) fetch(ctx context.Context, key, method, path string, body any, out any) error {
	if c.cache != nil {
		if data, ok := c.cache.Get(key); ok {
			if err := json.Unmarshal(data, out); err == nil {
				return nil
			}
		}
	}

	data, err := c.do(ctx, method, path, body)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parsing FoodData Central response: %w", err)
	}

	if c.cache != nil {
		if err := c.cache.Set(key, data); err != nil && c.Progress != nil {
			fmt.Fprintf(c.Progress, "warning: %v\n", err)
		}
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, body any) ([]byte, error) {
	reqURL := c.cfg.BaseURL + path + "?" + url.Values{"api_key": {c.cfg.APIKey}}.Encode()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encoding request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, reader)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if c.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", c.cfg.UserAgent)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := httputil.DoWithRetry(ctx, c.HTTP, req, c.cfg.MaxRetries, c.Progress)
	if err != nil {
		return nil, fmt.Errorf("FoodData Central request: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, ErrUnauthorized
	case http.StatusNotFound:
		return nil, ErrNotFound
	default:
		return nil, fmt.Errorf("FoodData Central returned HTTP %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	return data, nil
}
