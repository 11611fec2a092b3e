package subscription

import (
	"testing"

	"github.com/t-hosaka/webpush-agent/pkg/platform"
)

func TestDetect(t *testing.T) {
	mock := platform.NewMockPlatform()

	snapshot := Detect(mock)
	if !snapshot.Supported() {
		t.Error("Expected a fully capable mock to be supported")
	}

	tests := []struct {
		name    string
		disable func(m *platform.MockPlatform)
	}{
		{"no service worker", func(m *platform.MockPlatform) { m.ServiceWorker = false }},
		{"no push manager", func(m *platform.MockPlatform) { m.PushManager = false }},
		{"no notifications", func(m *platform.MockPlatform) { m.Notifications = false }},
		{"not a browsing context", func(m *platform.MockPlatform) { m.BrowsingContext = false }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := platform.NewMockPlatform()
			tt.disable(m)
			if Detect(m).Supported() {
				t.Errorf("Expected unsupported with %s", tt.name)
			}
		})
	}
}

func TestDetectIsFresh(t *testing.T) {
	mock := platform.NewMockPlatform()

	if !Detect(mock).Supported() {
		t.Fatal("Expected supported")
	}

	// The snapshot is computed per call, never cached.
	mock.PushManager = false
	if Detect(mock).Supported() {
		t.Error("Expected a fresh probe to observe the capability change")
	}
}
