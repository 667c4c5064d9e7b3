// Package catalog fetches playlists and tracks from the Deezer public API.
//
// Client talks HTTP and returns errors. Catalog wraps any Source with a cache
// and degrades every failure to an empty result, which is all the game ever
// sees.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/playperu/blindtest/internal/blindtest"
)

const (
	DefaultBaseURL = "https://api.deezer.com"
	DefaultQuery   = "popular"

	searchLimit = 25
	chartLimit  = 25
	tracksLimit = 100

	maxResponseBytes = 4 << 20
)

var errResponseTooLarge = errors.New("response body too large")

// APIError is the error object Deezer returns with a 200 status.
type APIError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("deezer %s (%d): %s", e.Type, e.Code, e.Message)
}

type listResponse[T any] struct {
	Data  []T `json:"data"`
	Total int `json:"total"`
}

// Client is a Deezer API client. Requests go through each proxy in order and
// finally straight to the API; the first success wins.
type Client struct {
	baseURL string
	proxies []string
	http    *http.Client
	logger  *slog.Logger
}

func NewClient(baseURL string, proxies []string, timeout time.Duration, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		proxies: proxies,
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// SearchPlaylists returns playlists matching query that have at least ten
// tracks and a picture.
func (c *Client) SearchPlaylists(ctx context.Context, query string) ([]blindtest.Theme, error) {
	if strings.TrimSpace(query) == "" {
		query = DefaultQuery
	}
	params := url.Values{}
	params.Set("q", query)
	params.Set("limit", strconv.Itoa(searchLimit))

	var resp listResponse[blindtest.Theme]
	if err := c.get(ctx, "/search/playlist", params, &resp); err != nil {
		return nil, fmt.Errorf("searching playlists %q: %w", query, err)
	}
	return filterThemes(resp.Data, 10), nil
}

// ChartPlaylists returns the chart playlists with at least fifteen tracks.
func (c *Client) ChartPlaylists(ctx context.Context) ([]blindtest.Theme, error) {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(chartLimit))

	var resp listResponse[blindtest.Theme]
	if err := c.get(ctx, "/chart/0/playlists", params, &resp); err != nil {
		return nil, fmt.Errorf("fetching chart playlists: %w", err)
	}
	return filterThemes(resp.Data, 15), nil
}

// PlaylistTracks returns the playable tracks of a playlist.
func (c *Client) PlaylistTracks(ctx context.Context, id int64) ([]blindtest.Song, error) {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(tracksLimit))

	var resp listResponse[blindtest.Song]
	if err := c.get(ctx, fmt.Sprintf("/playlist/%d/tracks", id), params, &resp); err != nil {
		return nil, fmt.Errorf("fetching tracks for playlist %d: %w", id, err)
	}
	return filterSongs(resp.Data), nil
}

func (c *Client) Playlist(ctx context.Context, id int64) (blindtest.Theme, error) {
	var theme blindtest.Theme
	if err := c.get(ctx, fmt.Sprintf("/playlist/%d", id), nil, &theme); err != nil {
		return blindtest.Theme{}, fmt.Errorf("fetching playlist %d: %w", id, err)
	}
	return theme, nil
}

func (c *Client) get(ctx context.Context, endpoint string, params url.Values, dest any) error {
	target := c.baseURL + endpoint
	if len(params) > 0 {
		target += "?" + params.Encode()
	}

	var lastErr error
	for _, proxy := range c.proxies {
		err := c.fetch(ctx, proxy+target, dest)
		if err == nil {
			return nil
		}
		c.logger.Warn("catalog request via proxy failed", "proxy", proxy, "endpoint", endpoint, "error", err)
		lastErr = err
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}

	err := c.fetch(ctx, target, dest)
	if err == nil {
		return nil
	}
	if lastErr != nil {
		c.logger.Warn("direct catalog request failed", "endpoint", endpoint, "error", err)
		return lastErr
	}
	return err
}

func (c *Client) fetch(ctx context.Context, rawURL string, dest any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))
		return fmt.Errorf("status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes+1))
	if err != nil {
		return fmt.Errorf("reading body: %w", err)
	}
	if len(body) > maxResponseBytes {
		return errResponseTooLarge
	}

	var envelope struct {
		Error *APIError `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	if envelope.Error != nil {
		return envelope.Error
	}
	if err := json.Unmarshal(body, dest); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
