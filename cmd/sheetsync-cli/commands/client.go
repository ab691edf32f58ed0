package commands

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/rudderlabs/sheetsync/internal/jobs"
	"github.com/rudderlabs/sheetsync/internal/model"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Client talks to the sheetsync HTTP API.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Minute}
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: httpClient}
}

func (c *Client) Configurations(ctx context.Context) ([]model.Configuration, error) {
	var out []model.Configuration
	if err := c.do(ctx, http.MethodGet, "/v1/configurations", nil, "", http.StatusOK, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Schemas(ctx context.Context) ([]string, error) {
	var out []string
	if err := c.do(ctx, http.MethodGet, "/v1/schemas", nil, "", http.StatusOK, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UploadSchema sends the descriptor file at path and returns its target columns.
func (c *Client) UploadSchema(ctx context.Context, path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("schema_file", filepath.Base(path))
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, err
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	var out struct {
		Columns []string `json:"columns"`
	}
	if err := c.do(ctx, http.MethodPost, "/v1/schemas", &body, mw.FormDataContentType(), http.StatusCreated, &out); err != nil {
		return nil, err
	}
	return out.Columns, nil
}

func (c *Client) RunJob(ctx context.Context, job string, configurationID int64) (*jobs.Result, error) {
	var out jobs.Result
	path := fmt.Sprintf("/v1/jobs/%s/%d", job, configurationID)
	if err := c.do(ctx, http.MethodPost, path, nil, "", http.StatusOK, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string, expected int, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode != expected {
		return fmt.Errorf("%s %s: unexpected status %d: %s", method, path, resp.StatusCode, strings.TrimSpace(string(data)))
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
