package subscription

import (
	"context"
	"fmt"
	"testing"

	"github.com/t-hosaka/webpush-agent/pkg/platform"
)

func TestCurrentPermission(t *testing.T) {
	mock := platform.NewMockPlatform()
	mock.PermissionState = platform.PermissionGranted

	if got := CurrentPermission(mock); got != platform.PermissionGranted {
		t.Errorf("Expected granted, got %s", got)
	}

	// Unsupported notification API reads as default, never an error.
	mock.Notifications = false
	if got := CurrentPermission(mock); got != platform.PermissionDefault {
		t.Errorf("Expected default for unsupported environment, got %s", got)
	}
}

func TestRequestPermission(t *testing.T) {
	ctx := context.Background()

	mock := platform.NewMockPlatform()
	mock.PermissionState = platform.PermissionGranted
	if got := RequestPermission(ctx, mock); got != platform.PermissionGranted {
		t.Errorf("Expected granted, got %s", got)
	}

	mock.PermissionState = platform.PermissionDenied
	if got := RequestPermission(ctx, mock); got != platform.PermissionDenied {
		t.Errorf("Expected denied, got %s", got)
	}
}

func TestRequestPermissionFailureIsDenied(t *testing.T) {
	mock := platform.NewMockPlatform()
	mock.RequestPermissionFunc = func(ctx context.Context) (platform.PermissionState, error) {
		return "", fmt.Errorf("permission dialog unavailable")
	}

	if got := RequestPermission(context.Background(), mock); got != platform.PermissionDenied {
		t.Errorf("Expected platform failure to read as denied, got %s", got)
	}
}

func TestRequestPermissionUnsupported(t *testing.T) {
	mock := platform.NewMockPlatform()
	mock.Notifications = false

	if got := RequestPermission(context.Background(), mock); got != platform.PermissionDenied {
		t.Errorf("Expected denied for unsupported environment, got %s", got)
	}
	if mock.RequestPermissionCalls != 0 {
		t.Errorf("Expected no platform prompt in unsupported environment, got %d calls", mock.RequestPermissionCalls)
	}
}
