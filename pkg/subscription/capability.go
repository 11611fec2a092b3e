// Package subscription orchestrates the push subscription lifecycle:
// capability detection, permission negotiation, subscription creation and
// teardown, and synchronization with the backend device registry.
package subscription

import (
	"github.com/t-hosaka/webpush-agent/pkg/platform"
)

// Snapshot captures the environment's push capabilities at one point in
// time. It is computed fresh on every check and never cached.
type Snapshot struct {
	ServiceWorker   bool
	PushManager     bool
	Notifications   bool
	BrowsingContext bool
}

// Supported reports whether every primitive needed for push notifications is
// available. A false result short-circuits permission negotiation and
// subscription creation.
func (s Snapshot) Supported() bool {
	return s.ServiceWorker && s.PushManager && s.Notifications && s.BrowsingContext
}

// Detect probes the environment. It never fails; a primitive that cannot be
// inspected reports unsupported.
func Detect(p platform.Platform) Snapshot {
	return Snapshot{
		ServiceWorker:   p.SupportsServiceWorker(),
		PushManager:     p.SupportsPushManager(),
		Notifications:   p.SupportsNotifications(),
		BrowsingContext: p.IsBrowsingContext(),
	}
}
