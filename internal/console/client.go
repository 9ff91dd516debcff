package console

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ovaphlow/pitchfork/service-edge-admin/internal/device"
	"github.com/ovaphlow/pitchfork/service-edge-admin/internal/result"
)

// Client calls the HTTP API and decodes its result envelopes. Failures the
// server reports come back as Failure results; the error is reserved for
// transport problems and bodies that are not an envelope.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (c *Client) ListDevices(ctx context.Context) (result.Result[[]device.DeviceSummary], error) {
	return call[[]device.DeviceSummary](ctx, c, http.MethodGet, "/api/devices", nil)
}

func (c *Client) GetDeviceByID(ctx context.Context, id int64) (result.Result[device.DeviceSummary], error) {
	return call[device.DeviceSummary](ctx, c, http.MethodGet, "/api/devices/"+strconv.FormatInt(id, 10), nil)
}

func (c *Client) CreateDevice(ctx context.Context, req device.CreateDeviceRequest) (result.Result[int64], error) {
	return call[int64](ctx, c, http.MethodPost, "/api/devices", req)
}

func (c *Client) UpdateDevice(ctx context.Context, req device.UpdateDeviceRequest) (result.Result[bool], error) {
	target := strings.TrimSpace(req.TargetPublicDeviceID)
	if target == "" {
		// an empty path segment cannot be routed
		return result.Failure[bool](result.CodeValidation, "TargetPublicDeviceId, PublicDeviceId, and Name are required."), nil
	}
	return call[bool](ctx, c, http.MethodPut, "/api/devices/by-public-id/"+url.PathEscape(target), req)
}

func (c *Client) DeleteDevice(ctx context.Context, id int64) (result.Result[bool], error) {
	return call[bool](ctx, c, http.MethodDelete, "/api/devices/"+strconv.FormatInt(id, 10), nil)
}

func (c *Client) TotalDevices(ctx context.Context) (result.Result[int], error) {
	return call[int](ctx, c, http.MethodGet, "/api/devices/total", nil)
}

func (c *Client) TotalUsers(ctx context.Context) (result.Result[int], error) {
	return call[int](ctx, c, http.MethodGet, "/api/users/total", nil)
}

func (c *Client) LastUsedDeviceForUser(ctx context.Context, userID int64) (result.Result[device.LastUsedDevice], error) {
	return call[device.LastUsedDevice](ctx, c, http.MethodGet, userPath(userID, "last-device"), nil)
}

func (c *Client) UserAccountDates(ctx context.Context, userID int64) (result.Result[device.UserAccountDates], error) {
	return call[device.UserAccountDates](ctx, c, http.MethodGet, userPath(userID, "dates"), nil)
}

func (c *Client) MarkUserInactiveIfStale(ctx context.Context, userID int64) (result.Result[device.UserAccountDates], error) {
	return call[device.UserAccountDates](ctx, c, http.MethodPost, userPath(userID, "mark-inactive-if-stale"), nil)
}

func userPath(userID int64, action string) string {
	return "/api/users/" + strconv.FormatInt(userID, 10) + "/" + action
}

func call[T any](ctx context.Context, c *Client, method, path string, payload any) (result.Result[T], error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return result.Result[T]{}, err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return result.Result[T]{}, err
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return result.Result[T]{}, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	var res result.Result[T]
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return result.Result[T]{}, fmt.Errorf("server returned %d: decode response: %w", resp.StatusCode, err)
	}
	return res, nil
}
