// Package rest is the HTTP collaborator used alongside the socket: it
// hydrates pending-stroke batches announced by id only, and fetches the
// gallery listing for the out-of-scope gallery screens.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/dmfenton/Sketchpad-sub000/internal/protocol"
)

const defaultHTTPTimeout = 15 * time.Second

// Client talks to the Sketchpad REST API with a bearer token.
type Client struct {
	mu         sync.Mutex
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewClient creates a REST client. The base URL must not carry a trailing
// slash; paths are joined as baseURL + "/v1/...".
func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
	}
}

// SetToken swaps the bearer token after a refresh.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

// FetchPendingStrokes hydrates the strokes of a batch the server announced
// by id. Invoked by the performer when a batch arrives without inline
// stroke data.
func (c *Client) FetchPendingStrokes(ctx context.Context, batchID string) ([]protocol.Stroke, error) {
	if batchID == "" {
		return nil, fmt.Errorf("empty batch id")
	}
	body, err := c.doRequest(ctx, http.MethodGet, "/v1/strokes/pending/"+batchID, nil)
	if err != nil {
		return nil, err
	}
	var resp struct {
		Strokes []protocol.Stroke `json:"strokes"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("parse pending strokes: %w", err)
	}
	return resp.Strokes, nil
}

// Gallery fetches the gallery listing.
func (c *Client) Gallery(ctx context.Context) ([]protocol.GalleryPiece, error) {
	body, err := c.doRequest(ctx, http.MethodGet, "/v1/gallery", nil)
	if err != nil {
		return nil, err
	}
	var resp struct {
		Pieces []protocol.GalleryPiece `json:"pieces"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("parse gallery: %w", err)
	}
	return resp.Pieces, nil
}

// Thumbnail fetches a gallery piece thumbnail.
func (c *Client) Thumbnail(ctx context.Context, pieceID string) ([]byte, error) {
	if pieceID == "" {
		return nil, fmt.Errorf("empty piece id")
	}
	return c.doRequest(ctx, http.MethodGet, "/v1/gallery/"+pieceID+"/thumbnail", nil)
}

func (c *Client) doRequest(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	c.mu.Lock()
	token := c.token
	baseURL := c.baseURL
	client := c.httpClient
	c.mu.Unlock()

	if baseURL == "" {
		return nil, fmt.Errorf("server URL not set")
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%s %s: status %d", method, path, resp.StatusCode)
	}
	return data, nil
}
