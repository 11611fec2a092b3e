// Package registrytest provides an in-process device registry implementing
// the endpoints the agent consumes. It backs the package tests and local
// development; it is not the production registry.
package registrytest

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"

	webpush "github.com/SherClockHolmes/webpush-go"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/t-hosaka/webpush-agent/pkg/registry"
)

// Device is a registered device record.
type Device struct {
	ID        string `json:"id"`
	Endpoint  string `json:"endpoint"`
	P256dhKey string `json:"p256dh_key"`
	AuthKey   string `json:"auth_key"`
	UserAgent string `json:"user_agent,omitempty"`
}

// Server is a fake device registry. Registration is an upsert keyed by
// endpoint, matching the idempotency the real registry guarantees. Failure
// flags let tests force each endpoint to reject.
type Server struct {
	VAPIDPublicKey  string
	vapidPrivateKey string

	mu      sync.Mutex
	devices map[string]Device

	FailVAPIDKey bool
	FailRegister bool
	FailRemove   bool

	VAPIDKeyCalls int
	RegisterCalls int
	RemoveCalls   int

	httpServer *httptest.Server
}

// NewServer starts a fake registry with freshly generated VAPID keys.
func NewServer() (*Server, error) {
	privateKey, publicKey, err := webpush.GenerateVAPIDKeys()
	if err != nil {
		return nil, fmt.Errorf("failed to generate VAPID keys: %w", err)
	}

	s := &Server{
		VAPIDPublicKey:  publicKey,
		vapidPrivateKey: privateKey,
		devices:         map[string]Device{},
	}

	e := echo.New()
	e.HideBanner = true
	e.GET("/notifications/vapid-public-key", s.handleVAPIDKey)
	e.POST("/notifications/devices", s.handleRegister)
	e.DELETE("/notifications/devices/:deviceId", s.handleRemove)

	s.httpServer = httptest.NewServer(e)
	return s, nil
}

// URL returns the registry base URL.
func (s *Server) URL() string {
	return s.httpServer.URL
}

// Close shuts the registry down.
func (s *Server) Close() {
	s.httpServer.Close()
}

// Devices returns a snapshot of the registered devices.
func (s *Server) Devices() []Device {
	s.mu.Lock()
	defer s.mu.Unlock()

	devices := make([]Device, 0, len(s.devices))
	for _, d := range s.devices {
		devices = append(devices, d)
	}
	return devices
}

// Device looks up a registered device by endpoint.
func (s *Server) Device(endpoint string) (Device, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.devices[endpoint]
	return d, ok
}

func (s *Server) handleVAPIDKey(c echo.Context) error {
	s.mu.Lock()
	s.VAPIDKeyCalls++
	fail := s.FailVAPIDKey
	s.mu.Unlock()

	if fail {
		return echo.NewHTTPError(http.StatusInternalServerError, "VAPID key unavailable")
	}

	return c.JSON(http.StatusOK, registry.VAPIDKeyResponse{
		VAPIDPublicKey: s.VAPIDPublicKey,
	})
}

func (s *Server) handleRegister(c echo.Context) error {
	s.mu.Lock()
	s.RegisterCalls++
	fail := s.FailRegister
	s.mu.Unlock()

	if fail {
		return echo.NewHTTPError(http.StatusInternalServerError, "Registration unavailable")
	}

	var req registry.DeviceRegistration
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if req.Endpoint == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Endpoint is required")
	}
	if req.P256dhKey == "" || req.AuthKey == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "p256dh_key and auth_key are required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	device, ok := s.devices[req.Endpoint]
	if !ok {
		device = Device{ID: fmt.Sprintf("dev_%s", uuid.New().String())}
	}
	device.Endpoint = req.Endpoint
	device.P256dhKey = req.P256dhKey
	device.AuthKey = req.AuthKey
	device.UserAgent = req.UserAgent
	s.devices[req.Endpoint] = device

	return c.JSON(http.StatusOK, map[string]interface{}{
		"success":   true,
		"device_id": device.ID,
	})
}

func (s *Server) handleRemove(c echo.Context) error {
	s.mu.Lock()
	s.RemoveCalls++
	fail := s.FailRemove
	s.mu.Unlock()

	if fail {
		return echo.NewHTTPError(http.StatusInternalServerError, "Removal unavailable")
	}

	endpoint, err := registry.EndpointFromDeviceID(c.Param("deviceId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid device ID")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.devices[endpoint]; !ok {
		return echo.NewHTTPError(http.StatusNotFound, "Device not found")
	}
	delete(s.devices, endpoint)

	return c.NoContent(http.StatusNoContent)
}
