package platform

import (
	"context"
	"fmt"

	webpush "github.com/SherClockHolmes/webpush-go"
)

// MockPlatform implements Platform for tests. Defaults describe a fully
// capable environment with permission granted; any subset of behaviors can be
// overridden per test case through the exported fields.
type MockPlatform struct {
	ServiceWorker   bool
	PushManager     bool
	Notifications   bool
	BrowsingContext bool

	PermissionState       PermissionState
	RequestPermissionFunc func(ctx context.Context) (PermissionState, error)

	Registration           *MockRegistration
	ServiceWorkerReadyFunc func(ctx context.Context) (Registration, error)

	Storage        map[string]string
	StorageFailing bool

	DecodeKeyFunc func(key string) ([]byte, error)
	Agent         string

	RequestPermissionCalls int
}

// NewMockPlatform returns a mock describing a fully capable environment.
func NewMockPlatform() *MockPlatform {
	return &MockPlatform{
		ServiceWorker:   true,
		PushManager:     true,
		Notifications:   true,
		BrowsingContext: true,
		PermissionState: PermissionGranted,
		Registration:    NewMockRegistration(),
		Storage:         map[string]string{},
		Agent:           "mock-agent/1.0",
	}
}

func (m *MockPlatform) SupportsServiceWorker() bool { return m.ServiceWorker }
func (m *MockPlatform) SupportsPushManager() bool   { return m.PushManager }
func (m *MockPlatform) SupportsNotifications() bool { return m.Notifications }
func (m *MockPlatform) IsBrowsingContext() bool     { return m.BrowsingContext }

func (m *MockPlatform) Permission() PermissionState {
	return m.PermissionState
}

func (m *MockPlatform) RequestPermission(ctx context.Context) (PermissionState, error) {
	m.RequestPermissionCalls++
	if m.RequestPermissionFunc != nil {
		return m.RequestPermissionFunc(ctx)
	}
	return m.PermissionState, nil
}

func (m *MockPlatform) ServiceWorkerReady(ctx context.Context) (Registration, error) {
	if m.ServiceWorkerReadyFunc != nil {
		return m.ServiceWorkerReadyFunc(ctx)
	}
	if !m.ServiceWorker {
		return nil, fmt.Errorf("service workers are not supported")
	}
	return m.Registration, nil
}

func (m *MockPlatform) StorageGet(key string) string {
	if m.StorageFailing || m.Storage == nil {
		return ""
	}
	return m.Storage[key]
}

func (m *MockPlatform) StorageSet(key, value string) {
	if m.StorageFailing || m.Storage == nil {
		return
	}
	m.Storage[key] = value
}

func (m *MockPlatform) StorageRemove(key string) {
	if m.StorageFailing || m.Storage == nil {
		return
	}
	delete(m.Storage, key)
}

func (m *MockPlatform) DecodeKey(key string) ([]byte, error) {
	if m.DecodeKeyFunc != nil {
		return m.DecodeKeyFunc(key)
	}
	return DecodeServerKey(key)
}

func (m *MockPlatform) UserAgent() string {
	return m.Agent
}

// MockRegistration implements Registration with deterministic values and
// call counting.
type MockRegistration struct {
	Current *webpush.Subscription

	SubscriptionFunc func(ctx context.Context) (*webpush.Subscription, error)
	SubscribeFunc    func(ctx context.Context, applicationServerKey []byte) (*webpush.Subscription, error)
	UnsubscribeFunc  func(ctx context.Context) (bool, error)

	SubscribeCalls   int
	UnsubscribeCalls int
}

// NewMockRegistration returns a registration with no current subscription.
func NewMockRegistration() *MockRegistration {
	return &MockRegistration{}
}

func (r *MockRegistration) Subscription(ctx context.Context) (*webpush.Subscription, error) {
	if r.SubscriptionFunc != nil {
		return r.SubscriptionFunc(ctx)
	}
	return r.Current, nil
}

func (r *MockRegistration) Subscribe(ctx context.Context, applicationServerKey []byte) (*webpush.Subscription, error) {
	r.SubscribeCalls++
	if r.SubscribeFunc != nil {
		return r.SubscribeFunc(ctx, applicationServerKey)
	}
	if r.Current == nil {
		r.Current = &webpush.Subscription{
			Endpoint: "https://push.example.com/wpush/v1/mock-device",
			Keys: webpush.Keys{
				P256dh: "mock-p256dh-key",
				Auth:   "mock-auth-secret",
			},
		}
	}
	return r.Current, nil
}

func (r *MockRegistration) Unsubscribe(ctx context.Context) (bool, error) {
	r.UnsubscribeCalls++
	if r.UnsubscribeFunc != nil {
		return r.UnsubscribeFunc(ctx)
	}
	existed := r.Current != nil
	r.Current = nil
	return existed, nil
}
