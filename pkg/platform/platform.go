package platform

import (
	"context"

	webpush "github.com/SherClockHolmes/webpush-go"
)

// PermissionState represents the user's notification permission decision.
// It is owned by the platform; callers read or request it but never cache it.
type PermissionState string

const (
	PermissionDefault PermissionState = "default"
	PermissionGranted PermissionState = "granted"
	PermissionDenied  PermissionState = "denied"
)

// Platform is the boundary over the environment's push primitives. It exposes
// exactly what the subscription manager and prompt store need: per-primitive
// capability predicates, the permission flow, the active worker registration,
// persistent key-value storage, server key decoding, and the client identity
// string used in registration payloads.
//
// Two implementations exist: LocalPlatform backed by the real environment,
// and MockPlatform for tests.
type Platform interface {
	// Capability predicates, one per primitive so callers can reason about
	// (and tests can toggle) each independently.
	SupportsServiceWorker() bool
	SupportsPushManager() bool
	SupportsNotifications() bool
	IsBrowsingContext() bool

	// Permission returns the current decision without prompting.
	Permission() PermissionState

	// RequestPermission triggers the platform consent flow and blocks until
	// the user decides. Errors are mapped to a denied decision by the caller.
	RequestPermission(ctx context.Context) (PermissionState, error)

	// ServiceWorkerReady blocks until the active worker registration is
	// available. Fails when worker hosting is unsupported.
	ServiceWorkerReady(ctx context.Context) (Registration, error)

	// Persistent key-value storage. Unavailable storage must never crash
	// calling code: reads return the empty string, writes are dropped.
	StorageGet(key string) string
	StorageSet(key, value string)
	StorageRemove(key string)

	// DecodeKey translates a server-provided delivery key into the binary
	// form the subscribe call requires.
	DecodeKey(key string) ([]byte, error)

	// UserAgent returns the client identity string for diagnostic
	// registration payloads.
	UserAgent() string
}

// Registration exposes the subscription primitives of an active worker
// registration.
type Registration interface {
	// Subscription returns the current subscription, or nil when none exists.
	Subscription(ctx context.Context) (*webpush.Subscription, error)

	// Subscribe creates a subscription bound to the given application server
	// key. If a subscription already exists it is returned as-is.
	Subscribe(ctx context.Context, applicationServerKey []byte) (*webpush.Subscription, error)

	// Unsubscribe destroys the current subscription. The boolean reports
	// whether one existed.
	Unsubscribe(ctx context.Context) (bool, error)
}
