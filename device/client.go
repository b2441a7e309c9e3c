package device

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"bagcount-gateway/models"
)

// ErrDeviceUnreachable wraps every transport or non-2xx failure talking to the
// counting device. Callers treat commands as fire-and-forget with best-effort
// feedback; there is no retry queue.
var ErrDeviceUnreachable = errors.New("counting device unreachable")

// Client talks to the counting device's REST API.
type Client struct {
	baseURL string
	client  *http.Client
	logger  *slog.Logger
}

// NewClient creates a device client with a hard request timeout so a hung
// device cannot stall a polling cycle indefinitely.
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: timeout,
		},
		logger: logger.With("component", "device_client"),
	}
}

// SendCommand issues POST /api/cmd with {cmd, value?}.
func (c *Client) SendCommand(ctx context.Context, cmd string, value *int) error {
	msg := models.CommandMessage{Cmd: cmd, Value: value}
	return c.post(ctx, "/api/cmd", msg, nil)
}

// SendTypedCommand issues POST /api/cmd with an order-type qualifier,
// e.g. {cmd: "select", type: "cement-50kg"}.
func (c *Client) SendTypedCommand(ctx context.Context, cmd, orderType string) error {
	msg := models.CommandMessage{Cmd: cmd, Type: orderType}
	return c.post(ctx, "/api/cmd", msg, nil)
}

// SendRemoteButton issues the REMOTE command carrying a button name.
func (c *Client) SendRemoteButton(ctx context.Context, button string) error {
	msg := models.CommandMessage{Cmd: models.CmdRemote, Button: button}
	return c.post(ctx, "/api/cmd", msg, nil)
}

// GetStatus fetches the device-reported run status and count.
func (c *Client) GetStatus(ctx context.Context) (*models.DeviceStatus, error) {
	var status models.DeviceStatus
	if err := c.get(ctx, "/api/status", &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// GetIRStatus fetches the fine-grained remote-control snapshot used to detect
// out-of-band physical button presses.
func (c *Client) GetIRStatus(ctx context.Context) (*models.IRStatus, error) {
	var status models.IRStatus
	if err := c.get(ctx, "/api/ir_status", &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// GetOrders lists the order slots configured on the device.
func (c *Client) GetOrders(ctx context.Context) ([]models.DeviceOrder, error) {
	var orders []models.DeviceOrder
	if err := c.get(ctx, "/api/orders", &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// GetBagTypes lists the bag types known to the device.
func (c *Client) GetBagTypes(ctx context.Context) ([]models.BagType, error) {
	var types []models.BagType
	if err := c.get(ctx, "/api/bagtype", &types); err != nil {
		return nil, err
	}
	return types, nil
}

// CreateBagType registers a bag type on the device.
func (c *Client) CreateBagType(ctx context.Context, bagType string) error {
	return c.post(ctx, "/api/bagtype", models.BagType{Type: bagType}, nil)
}

// DeleteBagType removes a bag type from the device.
func (c *Client) DeleteBagType(ctx context.Context, bagType string) error {
	endpoint := "/api/bagtype?type=" + url.QueryEscape(bagType)
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	return c.do(req, nil)
}

// PushConfig sends the target/warn configuration for an order type.
func (c *Client) PushConfig(ctx context.Context, cfg *models.DeviceConfig) error {
	return c.post(ctx, "/api/config", cfg, nil)
}

// GetCurrentTime fetches the device clock and its NTP sync state.
func (c *Client) GetCurrentTime(ctx context.Context) (*models.DeviceTime, error) {
	var t models.DeviceTime
	if err := c.get(ctx, "/api/current_time", &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// GetHistory fetches the device-resident completion log.
func (c *Client) GetHistory(ctx context.Context) ([]models.DeviceHistoryEntry, error) {
	var entries []models.DeviceHistoryEntry
	if err := c.get(ctx, "/api/history", &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (c *Client) get(ctx context.Context, endpoint string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	return c.do(req, out)
}

func (c *Client) post(ctx context.Context, endpoint string, payload interface{}, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out interface{}) error {
	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Warn("Device request failed", "url", req.URL.String(), slog.Any("error", err))
		return fmt.Errorf("%w: %v", ErrDeviceUnreachable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		c.logger.Warn("Device returned non-success status",
			"url", req.URL.String(), "status", resp.StatusCode, "body", string(body))
		return fmt.Errorf("%w: status %d", ErrDeviceUnreachable, resp.StatusCode)
	}

	if out == nil {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode device response: %w", err)
	}
	return nil
}
