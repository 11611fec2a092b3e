package subscription

import (
	"context"

	"github.com/t-hosaka/webpush-agent/pkg/platform"
)

// CurrentPermission reads the permission state without prompting. Returns
// default when the notification API is unsupported; never fails.
func CurrentPermission(p platform.Platform) platform.PermissionState {
	if !p.SupportsNotifications() {
		return platform.PermissionDefault
	}
	return p.Permission()
}

// RequestPermission runs the platform consent flow and blocks until the user
// decides. Negotiation failure is modeled as a denied decision, not an
// error, so callers always get an actionable state.
func RequestPermission(ctx context.Context, p platform.Platform) platform.PermissionState {
	if !p.SupportsNotifications() {
		return platform.PermissionDenied
	}

	state, err := p.RequestPermission(ctx)
	if err != nil {
		return platform.PermissionDenied
	}
	switch state {
	case platform.PermissionGranted, platform.PermissionDenied, platform.PermissionDefault:
		return state
	}
	return platform.PermissionDenied
}
