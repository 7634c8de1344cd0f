package registry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"go.uber.org/zap"

	"modelreport/internal/data"
)

var ErrNotFound = errors.New("not found")

// Client talks to the training service REST API. It does not retry.
type Client struct {
	base string
	http *http.Client
	log  *zap.Logger
}

// NewClient builds a client for baseURL. A zero timeout means none.
func NewClient(baseURL string, timeout time.Duration, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		base: strings.TrimRight(baseURL, "/"),
		http: &http.Client{Timeout: timeout},
		log:  log,
	}
}

type modelsResponse struct {
	Models []data.Model `json:"models"`
}

type framesResponse struct {
	Frames []data.Frame `json:"frames"`
}

func (c *Client) GetModel(ctx context.Context, id string) (*data.Model, error) {
	var resp modelsResponse
	if err := c.get(ctx, "/3/Models/"+url.PathEscape(id), &resp); err != nil {
		return nil, err
	}
	if len(resp.Models) == 0 {
		return nil, fmt.Errorf("model %s: %w", id, ErrNotFound)
	}
	return &resp.Models[0], nil
}

func (c *Client) GetFrame(ctx context.Context, key string) (*data.Frame, error) {
	var resp framesResponse
	if err := c.get(ctx, "/3/Frames/"+url.PathEscape(key), &resp); err != nil {
		return nil, err
	}
	if len(resp.Frames) == 0 {
		return nil, fmt.Errorf("frame %s: %w", key, ErrNotFound)
	}
	return &resp.Frames[0], nil
}

func (c *Client) get(ctx context.Context, path string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	start := time.Now()
	res, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	c.log.Debug("registry request", zap.String("path", path), zap.Int("status", res.StatusCode), zap.Duration("took", time.Since(start)))
	switch {
	case res.StatusCode == http.StatusNotFound:
		return fmt.Errorf("GET %s: %w", path, ErrNotFound)
	case res.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		return fmt.Errorf("GET %s: status %d: %s", path, res.StatusCode, strings.TrimSpace(string(body)))
	}
	return json.NewDecoder(res.Body).Decode(v)
}
