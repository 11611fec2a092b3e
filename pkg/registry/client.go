// Package registry is the client for the backend device registry: the
// service that maps push subscriptions to devices so the backend can deliver
// notifications to them.
package registry

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// Client calls the backend device registry.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a registry client for the given base URL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: newDefaultHTTPClient(),
	}
}

// VAPIDKeyResponse is the response from the VAPID public key endpoint.
type VAPIDKeyResponse struct {
	VAPIDPublicKey string `json:"vapid_public_key"`
}

// DeviceRegistration is the request body for registering a device. The same
// payload serves first registration and idempotent re-sync of an existing
// subscription; the registry keys devices by endpoint.
type DeviceRegistration struct {
	Endpoint  string `json:"endpoint"`
	P256dhKey string `json:"p256dh_key"`
	AuthKey   string `json:"auth_key"`
	UserAgent string `json:"user_agent,omitempty"`
}

// DeviceID derives the registry identifier for a subscription endpoint. The
// encoding is reversible; the registry treats it as an opaque path segment,
// not a cryptographic identifier.
func DeviceID(endpoint string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(endpoint))
}

// EndpointFromDeviceID reverses DeviceID.
func EndpointFromDeviceID(deviceID string) (string, error) {
	raw, err := base64.RawURLEncoding.DecodeString(deviceID)
	if err != nil {
		return "", fmt.Errorf("failed to decode device ID: %w", err)
	}
	return string(raw), nil
}

// VAPIDPublicKey fetches the application server key the platform needs to
// bind a subscription to this application.
func (c *Client) VAPIDPublicKey(ctx context.Context) (string, error) {
	url := c.baseURL + "/notifications/vapid-public-key"

	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch VAPID public key: %w", err)
	}
	defer safeClose(resp)

	if err := checkResponse(resp, url); err != nil {
		return "", err
	}

	var keyResp VAPIDKeyResponse
	if err := json.NewDecoder(resp.Body).Decode(&keyResp); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if keyResp.VAPIDPublicKey == "" {
		return "", fmt.Errorf("registry returned an empty VAPID public key")
	}

	return keyResp.VAPIDPublicKey, nil
}

// RegisterDevice registers (or re-registers) a device with the registry.
func (c *Client) RegisterDevice(ctx context.Context, reg DeviceRegistration) error {
	url := c.baseURL + "/notifications/devices"

	jsonData, err := json.Marshal(reg)
	if err != nil {
		return fmt.Errorf("failed to marshal registration: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to register device: %w", err)
	}
	defer safeClose(resp)

	return checkResponse(resp, url)
}

// RemoveDevice deletes the device record for the given device ID.
func (c *Client) RemoveDevice(ctx context.Context, deviceID string) error {
	url := c.baseURL + "/notifications/devices/" + deviceID

	req, err := http.NewRequestWithContext(ctx, "DELETE", url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to remove device: %w", err)
	}
	defer safeClose(resp)

	return checkResponse(resp, url)
}
