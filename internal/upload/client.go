package upload

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Image is the asset-host view of one uploaded image.
type Image struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// Host is the two-phase direct-upload contract: Start reserves an upload
// slot and hands the browser a one-time upload URL, Finalize confirms the
// upload and returns the served variant URL.
type Host interface {
	Start(ctx context.Context, id string) (*Image, error)
	Finalize(ctx context.Context, id string) (*Image, error)
}

// Client talks to the asset host's HTTP API.
type Client struct {
	BaseURL   string
	AccountID string
	Token     string

	httpClient *http.Client
}

func NewClient(baseURL, accountID, token string) *Client {
	return &Client{
		BaseURL:    baseURL,
		AccountID:  accountID,
		Token:      token,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *Client) Start(ctx context.Context, id string) (*Image, error) {
	url := fmt.Sprintf("%s/accounts/%s/images/v2/direct_upload?id=%s", c.BaseURL, c.AccountID, id)
	var out struct {
		Result struct {
			ID        string `json:"id"`
			UploadURL string `json:"uploadURL"`
		} `json:"result"`
	}
	if err := c.do(ctx, http.MethodPost, url, &out); err != nil {
		return nil, err
	}
	return &Image{ID: out.Result.ID, URL: out.Result.UploadURL}, nil
}

func (c *Client) Finalize(ctx context.Context, id string) (*Image, error) {
	url := fmt.Sprintf("%s/accounts/%s/images/v1/%s", c.BaseURL, c.AccountID, id)
	var out struct {
		Result struct {
			ID       string   `json:"id"`
			Variants []string `json:"variants"`
		} `json:"result"`
	}
	if err := c.do(ctx, http.MethodGet, url, &out); err != nil {
		return nil, err
	}
	img := &Image{ID: out.Result.ID}
	if len(out.Result.Variants) > 0 {
		img.URL = out.Result.Variants[0]
	}
	return img, nil
}

func (c *Client) do(ctx context.Context, method, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return fmt.Errorf("asset host: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.Token)

	res, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("asset host: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return fmt.Errorf("asset host: unexpected status %s", res.Status)
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("asset host: decode: %w", err)
	}
	return nil
}
