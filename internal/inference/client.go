package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ayalabs/ayabridge/internal/logging"
)

// workloadExpirySeconds bounds how long an acquired GPU workload may live.
const workloadExpirySeconds = 300

// Client calls a Comput3-style GPU inference API: acquire a workload, run
// the model on it, then release the workload best-effort.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates an inference API client.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Infer acquires a workload, runs the requested model, and releases the
// workload. The release is best-effort: a stop failure is logged but never
// masks a successful inference.
func (c *Client) Infer(ctx context.Context, req Request) (Result, error) {
	workload, err := c.launch(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("launch workload: %w", err)
	}

	result, inferErr := c.run(ctx, workload, req)

	if stopErr := c.stop(ctx, workload); stopErr != nil {
		logging.L(ctx).Warn("failed to stop inference workload", "workload", workload, "error", stopErr)
	}

	if inferErr != nil {
		return Result{}, fmt.Errorf("run %s: %w", req.Model, inferErr)
	}
	return result, nil
}

func (c *Client) launch(ctx context.Context) (string, error) {
	var resp struct {
		Workload    string `json:"workload"`
		WorkloadKey string `json:"workload_key"`
	}
	err := c.post(ctx, "/launch", map[string]any{
		"expires": workloadExpirySeconds,
		"type":    "gpu.t4",
	}, &resp)
	if err != nil {
		return "", err
	}
	if resp.Workload == "" {
		return "", fmt.Errorf("launch returned no workload id")
	}
	return resp.Workload, nil
}

func (c *Client) run(ctx context.Context, workload string, req Request) (Result, error) {
	started := time.Now()
	var result Result
	err := c.post(ctx, "/inference", map[string]any{
		"workload": workload,
		"model":    req.Model,
		"input":    req.Input,
	}, &result)
	if err != nil {
		return Result{}, err
	}
	if result.ProcessingTime == "" {
		result.ProcessingTime = fmt.Sprintf("%dms", time.Since(started).Milliseconds())
	}
	return result, nil
}

func (c *Client) stop(ctx context.Context, workload string) error {
	return c.post(ctx, "/stop", map[string]any{"workload": workload}, nil)
}

func (c *Client) post(ctx context.Context, path string, body any, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("inference API error (%d): %s", resp.StatusCode, string(respBody))
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
