package platform

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// DecodeServerKey translates a base64-encoded VAPID public key into the
// 65-byte uncompressed P-256 point the subscribe call requires. Both the
// URL-safe and standard alphabets are accepted, with or without padding.
func DecodeServerKey(key string) ([]byte, error) {
	if key == "" {
		return nil, fmt.Errorf("server key is empty")
	}

	normalized := strings.NewReplacer("+", "-", "/", "_").Replace(key)
	normalized = strings.TrimRight(normalized, "=")

	raw, err := base64.RawURLEncoding.DecodeString(normalized)
	if err != nil {
		return nil, fmt.Errorf("failed to decode server key: %w", err)
	}

	if len(raw) != 65 || raw[0] != 0x04 {
		return nil, fmt.Errorf("server key is not an uncompressed P-256 point (%d bytes)", len(raw))
	}

	return raw, nil
}
