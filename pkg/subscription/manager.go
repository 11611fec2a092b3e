package subscription

import (
	"context"
	"fmt"
	"log"

	webpush "github.com/SherClockHolmes/webpush-go"

	"github.com/t-hosaka/webpush-agent/pkg/platform"
	"github.com/t-hosaka/webpush-agent/pkg/registry"
)

// Registry is the backend device registry consumed by the Manager. It is
// implemented by registry.Client.
type Registry interface {
	VAPIDPublicKey(ctx context.Context) (string, error)
	RegisterDevice(ctx context.Context, reg registry.DeviceRegistration) error
	RemoveDevice(ctx context.Context, deviceID string) error
}

// Manager drives the subscription lifecycle against the platform and the
// backend device registry. It holds no subscription state of its own: the
// platform is always asked for the current subscription.
type Manager struct {
	platform platform.Platform
	registry Registry
}

// NewManager creates a Manager.
func NewManager(p platform.Platform, r Registry) *Manager {
	return &Manager{
		platform: p,
		registry: r,
	}
}

// Subscribe negotiates permission, ensures a platform subscription exists
// and registers it with the backend. It returns (nil, nil) when the
// environment is unsupported or permission was not granted; callers treat
// nil as "notifications unavailable here".
//
// An existing platform subscription is re-registered with the backend
// instead of creating a duplicate. This also covers the case where the
// platform kept a subscription the backend lost the record of.
func (m *Manager) Subscribe(ctx context.Context) (*webpush.Subscription, error) {
	if !Detect(m.platform).Supported() {
		return nil, nil
	}

	if RequestPermission(ctx, m.platform) != platform.PermissionGranted {
		return nil, nil
	}

	serverKey, err := m.registry.VAPIDPublicKey(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch VAPID public key: %w", err)
	}

	applicationServerKey, err := m.platform.DecodeKey(serverKey)
	if err != nil {
		return nil, fmt.Errorf("failed to decode VAPID public key: %w", err)
	}

	reg, err := m.platform.ServiceWorkerReady(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to obtain worker registration: %w", err)
	}

	existing, err := reg.Subscription(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read current subscription: %w", err)
	}
	if existing != nil {
		if err := m.RegisterWithBackend(ctx, existing); err != nil {
			return nil, err
		}
		return existing, nil
	}

	sub, err := reg.Subscribe(ctx, applicationServerKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create subscription: %w", err)
	}

	// If registration fails here the platform subscription stays behind,
	// unknown to the backend. The next Subscribe call finds it and
	// re-registers, so the gap heals without a rollback.
	if err := m.RegisterWithBackend(ctx, sub); err != nil {
		return nil, err
	}

	return sub, nil
}

// Unsubscribe destroys the current subscription and tells the registry to
// drop the device record. A missing subscription is a successful no-op.
// Registry failure is logged and swallowed: the local unsubscription is
// authoritative and the user's opt-out stands even when offline.
func (m *Manager) Unsubscribe(ctx context.Context) error {
	reg, err := m.platform.ServiceWorkerReady(ctx)
	if err != nil {
		// Nothing to tear down in an unsupported environment.
		return nil
	}

	sub, err := reg.Subscription(ctx)
	if err != nil || sub == nil {
		return nil
	}

	deviceID := registry.DeviceID(sub.Endpoint)

	if _, err := reg.Unsubscribe(ctx); err != nil {
		return fmt.Errorf("failed to unsubscribe: %w", err)
	}

	if err := m.registry.RemoveDevice(ctx, deviceID); err != nil {
		log.Printf("Failed to remove device from registry: %v", err)
	}

	return nil
}

// RegisterWithBackend sends a subscription to the device registry. A
// subscription without an endpoint or a complete key pair fails immediately,
// before any network call.
func (m *Manager) RegisterWithBackend(ctx context.Context, sub *webpush.Subscription) error {
	if sub == nil || sub.Endpoint == "" {
		return fmt.Errorf("subscription has no endpoint")
	}
	if sub.Keys.P256dh == "" || sub.Keys.Auth == "" {
		return fmt.Errorf("subscription %s has an incomplete key pair", sub.Endpoint)
	}

	reg := registry.DeviceRegistration{
		Endpoint:  sub.Endpoint,
		P256dhKey: sub.Keys.P256dh,
		AuthKey:   sub.Keys.Auth,
		UserAgent: m.platform.UserAgent(),
	}

	if err := m.registry.RegisterDevice(ctx, reg); err != nil {
		return fmt.Errorf("failed to register device: %w", err)
	}
	return nil
}

// IsSubscribed reports whether a platform subscription currently exists. No
// separate flag is persisted anywhere.
func (m *Manager) IsSubscribed(ctx context.Context) (bool, error) {
	if !Detect(m.platform).Supported() {
		return false, nil
	}

	reg, err := m.platform.ServiceWorkerReady(ctx)
	if err != nil {
		return false, nil
	}

	sub, err := reg.Subscription(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to read current subscription: %w", err)
	}
	return sub != nil, nil
}
