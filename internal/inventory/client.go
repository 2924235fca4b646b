package inventory

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/openspool/spoolbridge/internal/infrastructure/config"
)

const defaultTimeout = 10 * time.Second

// Client talks to the Spoolman REST API.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a Spoolman API client from configuration.
//
// Parameters:
//   - cfg: Spoolman connection settings.
//
// Returns:
//   - *Client: configured client with a bounded request timeout.
func NewClient(cfg config.SpoolmanConfig) *Client {
	timeout := defaultTimeout
	if cfg.Timeout > 0 {
		timeout = time.Duration(cfg.Timeout) * time.Second
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.URL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// ListSpools fetches every spool in the inventory, including archived
// records.
func (c *Client) ListSpools(ctx context.Context) ([]Spool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/v1/spool", nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRequestFailed, err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRequestFailed, err)
	}
	defer resp.Body.Close() //nolint:errcheck // Read-only response body

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrRequestFailed, resp.StatusCode)
	}

	var spools []Spool
	if err := json.NewDecoder(resp.Body).Decode(&spools); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecodeFailed, err)
	}

	return spools, nil
}

// GetSpool fetches a single spool by ID.
func (c *Client) GetSpool(ctx context.Context, id int) (Spool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/api/v1/spool/%d", c.baseURL, id), nil)
	if err != nil {
		return Spool{}, fmt.Errorf("%w: %w", ErrRequestFailed, err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return Spool{}, fmt.Errorf("%w: %w", ErrRequestFailed, err)
	}
	defer resp.Body.Close() //nolint:errcheck // Read-only response body

	if resp.StatusCode == http.StatusNotFound {
		return Spool{}, fmt.Errorf("%w: spool %d", ErrSpoolNotFound, id)
	}
	if resp.StatusCode != http.StatusOK {
		return Spool{}, fmt.Errorf("%w: status %d", ErrRequestFailed, resp.StatusCode)
	}

	var spool Spool
	if err := json.NewDecoder(resp.Body).Decode(&spool); err != nil {
		return Spool{}, fmt.Errorf("%w: %w", ErrDecodeFailed, err)
	}

	return spool, nil
}

// UseWeight deducts the given weight in grams from a spool's remaining
// filament. Spoolman performs the arithmetic and clamps at zero.
func (c *Client) UseWeight(ctx context.Context, id int, grams float64) error {
	body := map[string]float64{"use_weight": grams}

	return c.update(ctx, http.MethodPut, fmt.Sprintf("/api/v1/spool/%d/use", id), id, body)
}

// SetActiveTray records the tray a spool is loaded in via the
// active_tray extra field.
func (c *Client) SetActiveTray(ctx context.Context, id int, trayKey string) error {
	return c.patchExtra(ctx, id, ExtraActiveTray, trayKey)
}

// ClearActiveTray removes a spool's tray assignment.
func (c *Client) ClearActiveTray(ctx context.Context, id int) error {
	return c.patchExtra(ctx, id, ExtraActiveTray, "")
}

// patchExtra updates a single extra field, JSON-encoding the value the
// way Spoolman stores it.
func (c *Client) patchExtra(ctx context.Context, id int, field, value string) error {
	body := map[string]map[string]string{
		"extra": {field: encodeExtra(value)},
	}

	return c.update(ctx, http.MethodPatch, fmt.Sprintf("/api/v1/spool/%d", id), id, body)
}

func (c *Client) update(ctx context.Context, method, path string, id int, body any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrRequestFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrRequestFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrRequestFailed, err)
	}
	defer resp.Body.Close() //nolint:errcheck // Read-only response body

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: spool %d", ErrSpoolNotFound, id)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: status %d", ErrRequestFailed, resp.StatusCode)
	}

	return nil
}

// HealthCheck verifies the Spoolman API is reachable.
func (c *Client) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/v1/health", nil)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrRequestFailed, err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrRequestFailed, err)
	}
	defer resp.Body.Close() //nolint:errcheck // Read-only response body

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrRequestFailed, resp.StatusCode)
	}

	return nil
}

// encodeExtra wraps a raw value in the JSON string encoding Spoolman
// uses for extra fields.
func encodeExtra(value string) string {
	encoded, err := json.Marshal(value)
	if err != nil {
		// Marshalling a string cannot fail.
		return `""`
	}

	return string(encoded)
}

// decodeExtra unwraps a JSON-encoded extra value. Values that are not
// valid JSON strings are returned as-is.
func decodeExtra(value string) string {
	var decoded string
	if err := json.Unmarshal([]byte(value), &decoded); err != nil {
		return value
	}

	return decoded
}
