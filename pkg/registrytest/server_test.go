package registrytest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/t-hosaka/webpush-agent/pkg/platform"
	"github.com/t-hosaka/webpush-agent/pkg/registry"
)

func TestServerVAPIDKey(t *testing.T) {
	server, err := NewServer()
	require.NoError(t, err)
	defer server.Close()

	client := registry.NewClient(server.URL())
	key, err := client.VAPIDPublicKey(context.Background())
	require.NoError(t, err)
	assert.Equal(t, server.VAPIDPublicKey, key)

	// The generated key decodes to a valid application server key.
	raw, err := platform.DecodeServerKey(key)
	require.NoError(t, err)
	assert.Len(t, raw, 65)

	assert.Equal(t, 1, server.VAPIDKeyCalls)
}

func TestServerRegisterUpsert(t *testing.T) {
	server, err := NewServer()
	require.NoError(t, err)
	defer server.Close()

	client := registry.NewClient(server.URL())
	ctx := context.Background()

	reg := registry.DeviceRegistration{
		Endpoint:  "https://push.example.com/wpush/v1/device-1",
		P256dhKey: "key-1",
		AuthKey:   "auth-1",
		UserAgent: "test-agent",
	}
	require.NoError(t, client.RegisterDevice(ctx, reg))

	// Re-registering the same endpoint updates in place.
	reg.P256dhKey = "key-2"
	require.NoError(t, client.RegisterDevice(ctx, reg))

	require.Len(t, server.Devices(), 1)
	device, ok := server.Device(reg.Endpoint)
	require.True(t, ok)
	assert.Equal(t, "key-2", device.P256dhKey)
	assert.NotEmpty(t, device.ID)
	assert.Equal(t, 2, server.RegisterCalls)
}

func TestServerRegisterValidation(t *testing.T) {
	server, err := NewServer()
	require.NoError(t, err)
	defer server.Close()

	client := registry.NewClient(server.URL())
	ctx := context.Background()

	tests := []struct {
		name string
		reg  registry.DeviceRegistration
	}{
		{"missing endpoint", registry.DeviceRegistration{P256dhKey: "k", AuthKey: "a"}},
		{"missing keys", registry.DeviceRegistration{Endpoint: "https://e"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := client.RegisterDevice(ctx, tt.reg)
			assert.Error(t, err)
		})
	}
	assert.Empty(t, server.Devices())
}

func TestServerRemove(t *testing.T) {
	server, err := NewServer()
	require.NoError(t, err)
	defer server.Close()

	client := registry.NewClient(server.URL())
	ctx := context.Background()

	endpoint := "https://push.example.com/wpush/v1/device-1"
	require.NoError(t, client.RegisterDevice(ctx, registry.DeviceRegistration{
		Endpoint:  endpoint,
		P256dhKey: "k",
		AuthKey:   "a",
	}))

	require.NoError(t, client.RemoveDevice(ctx, registry.DeviceID(endpoint)))
	assert.Empty(t, server.Devices())

	// Removing an unknown device reports not found.
	err = client.RemoveDevice(ctx, registry.DeviceID(endpoint))
	assert.Error(t, err)
}

func TestServerFailureInjection(t *testing.T) {
	server, err := NewServer()
	require.NoError(t, err)
	defer server.Close()

	client := registry.NewClient(server.URL())
	ctx := context.Background()

	server.FailVAPIDKey = true
	_, err = client.VAPIDPublicKey(ctx)
	assert.Error(t, err)

	server.FailRegister = true
	err = client.RegisterDevice(ctx, registry.DeviceRegistration{
		Endpoint:  "https://e",
		P256dhKey: "k",
		AuthKey:   "a",
	})
	assert.Error(t, err)

	server.FailRemove = true
	err = client.RemoveDevice(ctx, "any")
	assert.Error(t, err)
}
