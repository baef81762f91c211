// Package youtube finds one embeddable tutorial video for a topic using the
// YouTube Data API v3 search endpoint.
package youtube

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/gnosislabs/gnosis-api/internal/metrics"
)

// ErrNoResults is returned when the search succeeds but matches no videos.
var ErrNoResults = errors.New("no suitable videos found")

// Video is the subset of a search result the API exposes to clients.
type Video struct {
	VideoID     string `json:"videoId"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Client calls the YouTube Data API. baseURL is overridable for tests.
type Client struct {
	httpClient *http.Client
	logger     *slog.Logger
	baseURL    string
	apiKey     string
}

// NewClient returns a search client for the given API key.
func NewClient(httpClient *http.Client, logger *slog.Logger, baseURL, apiKey string) *Client {
	return &Client{
		httpClient: httpClient,
		logger:     logger,
		baseURL:    baseURL,
		apiKey:     apiKey,
	}
}

type searchResponse struct {
	Items []struct {
		ID struct {
			VideoID string `json:"videoId"`
		} `json:"id"`
		Snippet struct {
			Title       string `json:"title"`
			Description string `json:"description"`
		} `json:"snippet"`
	} `json:"items"`
}

// SearchVideo returns the top embeddable medium-length tutorial video for a
// topic and difficulty, or ErrNoResults when nothing matches.
func (c *Client) SearchVideo(ctx context.Context, topic, difficulty string) (*Video, error) {
	query := fmt.Sprintf("%s %s level tutorial explanation", topic, difficulty)

	params := url.Values{}
	params.Set("q", query)
	params.Set("part", "id,snippet")
	params.Set("maxResults", "1")
	params.Set("type", "video")
	params.Set("videoDuration", "medium")
	params.Set("relevanceLanguage", "en")
	params.Set("safeSearch", "strict")
	params.Set("videoEmbeddable", "true")
	params.Set("fields", "items(id/videoId,snippet/title,snippet/description)")
	params.Set("key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/search?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build search request: %w", err)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	metrics.RecordExternalCall("youtube", time.Since(start).Seconds(), err == nil)
	if err != nil {
		c.logger.Error("video search request failed", "error", err.Error())
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read search response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.Error("video search API error",
			"status", resp.StatusCode, "topic", topic)
		return nil, fmt.Errorf("video search API status %d", resp.StatusCode)
	}

	var out searchResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("parse search response: %w", err)
	}

	if len(out.Items) == 0 {
		return nil, ErrNoResults
	}

	item := out.Items[0]
	return &Video{
		VideoID:     item.ID.VideoID,
		Title:       item.Snippet.Title,
		Description: item.Snippet.Description,
	}, nil
}
