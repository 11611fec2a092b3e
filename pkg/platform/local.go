package platform

import (
	"context"
	"crypto/ecdh"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	webpush "github.com/SherClockHolmes/webpush-go"
	"github.com/google/uuid"
)

const (
	subscriptionFile = "subscription.json"
	storageFile      = "storage.json"
	permissionFile   = "permission.json"

	defaultPushServiceURL = "https://push.example.com"
)

// LocalConfig configures a LocalPlatform.
type LocalConfig struct {
	// StateDir is the per-profile directory holding subscription state,
	// key-value storage and the permission decision. Defaults to
	// $HOME/.webpush-agent.
	StateDir string

	// PushServiceURL is the base URL under which delivery endpoints are
	// allocated.
	PushServiceURL string

	// UserAgent identifies this client in registration payloads.
	UserAgent string

	// Consent drives RequestPermission when no decision is on record.
	// A nil Consent grants.
	Consent func(ctx context.Context) (PermissionState, error)
}

// LocalPlatform is the real Platform implementation, backed by a per-profile
// state directory on disk.
type LocalPlatform struct {
	stateDir       string
	pushServiceURL string
	userAgent      string
	consent        func(ctx context.Context) (PermissionState, error)
	ready          bool

	mu sync.RWMutex
}

// NewLocalPlatform creates a LocalPlatform rooted at the configured state
// directory. An unusable state directory is not an error: the platform is
// constructed anyway and reports itself unsupported.
func NewLocalPlatform(cfg LocalConfig) *LocalPlatform {
	stateDir := cfg.StateDir
	if stateDir == "" {
		stateDir = DefaultStateDir()
	}

	pushServiceURL := strings.TrimRight(cfg.PushServiceURL, "/")
	if pushServiceURL == "" {
		pushServiceURL = defaultPushServiceURL
	}

	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = "webpush-agent/dev"
	}

	p := &LocalPlatform{
		stateDir:       stateDir,
		pushServiceURL: pushServiceURL,
		userAgent:      userAgent,
		consent:        cfg.Consent,
	}

	if err := os.MkdirAll(stateDir, 0755); err != nil {
		log.Printf("Failed to create state directory %s: %v", stateDir, err)
	} else {
		p.ready = true
	}

	return p
}

// DefaultStateDir returns the per-profile state directory.
func DefaultStateDir() string {
	if dir := os.Getenv("WEBPUSH_AGENT_STATE_DIR"); dir != "" {
		return dir
	}
	homeDir := os.Getenv("HOME")
	if homeDir == "" {
		homeDir = "/home/webpush-agent"
	}
	return filepath.Join(homeDir, ".webpush-agent")
}

func (p *LocalPlatform) SupportsServiceWorker() bool { return p.ready }
func (p *LocalPlatform) SupportsPushManager() bool   { return p.ready && p.pushServiceURL != "" }
func (p *LocalPlatform) SupportsNotifications() bool { return p.ready }
func (p *LocalPlatform) IsBrowsingContext() bool     { return p.ready }

type permissionRecord struct {
	Permission PermissionState `json:"permission"`
	DecidedAt  time.Time       `json:"decided_at"`
}

// Permission returns the recorded decision, or default when none exists.
func (p *LocalPlatform) Permission() PermissionState {
	p.mu.RLock()
	defer p.mu.RUnlock()

	var rec permissionRecord
	if !p.loadJSON(permissionFile, &rec) {
		return PermissionDefault
	}
	switch rec.Permission {
	case PermissionGranted, PermissionDenied:
		return rec.Permission
	}
	return PermissionDefault
}

// RequestPermission runs the consent flow and persists the decision. A prior
// non-default decision is returned without prompting again.
func (p *LocalPlatform) RequestPermission(ctx context.Context) (PermissionState, error) {
	if current := p.Permission(); current != PermissionDefault {
		return current, nil
	}

	state := PermissionGranted
	if p.consent != nil {
		var err error
		state, err = p.consent(ctx)
		if err != nil {
			return "", fmt.Errorf("consent flow failed: %w", err)
		}
	}

	if state == PermissionGranted || state == PermissionDenied {
		p.mu.Lock()
		defer p.mu.Unlock()
		if err := p.saveJSON(permissionFile, permissionRecord{Permission: state, DecidedAt: time.Now()}); err != nil {
			log.Printf("Failed to persist permission decision: %v", err)
		}
	}

	return state, nil
}

// ServiceWorkerReady returns the registration for this profile. The local
// worker is ready as soon as the state directory is usable.
func (p *LocalPlatform) ServiceWorkerReady(ctx context.Context) (Registration, error) {
	if !p.SupportsServiceWorker() {
		return nil, fmt.Errorf("service workers are not supported in this environment")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &localRegistration{platform: p}, nil
}

// StorageGet reads a value from persistent storage. Missing keys and
// unreadable storage both return the empty string.
func (p *LocalPlatform) StorageGet(key string) string {
	p.mu.RLock()
	defer p.mu.RUnlock()

	kv := map[string]string{}
	if !p.loadJSON(storageFile, &kv) {
		return ""
	}
	return kv[key]
}

// StorageSet writes a value to persistent storage. Failures are logged and
// dropped.
func (p *LocalPlatform) StorageSet(key, value string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	kv := map[string]string{}
	p.loadJSON(storageFile, &kv)
	kv[key] = value
	if err := p.saveJSON(storageFile, kv); err != nil {
		log.Printf("Failed to persist storage key %s: %v", key, err)
	}
}

// StorageRemove deletes a key from persistent storage. Failures are logged
// and dropped.
func (p *LocalPlatform) StorageRemove(key string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	kv := map[string]string{}
	if !p.loadJSON(storageFile, &kv) {
		return
	}
	delete(kv, key)
	if err := p.saveJSON(storageFile, kv); err != nil {
		log.Printf("Failed to persist storage removal of %s: %v", key, err)
	}
}

// DecodeKey decodes a server-provided delivery key.
func (p *LocalPlatform) DecodeKey(key string) ([]byte, error) {
	return DecodeServerKey(key)
}

// UserAgent returns the configured client identity string.
func (p *LocalPlatform) UserAgent() string {
	return p.userAgent
}

// storedSubscription is the on-disk subscription record. The private key
// never leaves this file; only the endpoint and public keys are shared.
type storedSubscription struct {
	Endpoint   string    `json:"endpoint"`
	P256dh     string    `json:"p256dh"`
	Auth       string    `json:"auth"`
	PrivateKey string    `json:"private_key"`
	CreatedAt  time.Time `json:"created_at"`
}

// localRegistration implements Registration on top of the platform's state
// directory.
type localRegistration struct {
	platform *LocalPlatform
}

func (r *localRegistration) Subscription(ctx context.Context) (*webpush.Subscription, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.platform.mu.RLock()
	defer r.platform.mu.RUnlock()

	var stored storedSubscription
	if !r.platform.loadJSON(subscriptionFile, &stored) {
		return nil, nil
	}
	if stored.Endpoint == "" {
		return nil, nil
	}

	return &webpush.Subscription{
		Endpoint: stored.Endpoint,
		Keys: webpush.Keys{
			P256dh: stored.P256dh,
			Auth:   stored.Auth,
		},
	}, nil
}

func (r *localRegistration) Subscribe(ctx context.Context, applicationServerKey []byte) (*webpush.Subscription, error) {
	if existing, err := r.Subscription(ctx); err != nil {
		return nil, err
	} else if existing != nil {
		return existing, nil
	}

	if len(applicationServerKey) != 65 {
		return nil, fmt.Errorf("invalid application server key length %d", len(applicationServerKey))
	}

	privateKey, err := ecdh.P256().GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("failed to generate subscription key pair: %w", err)
	}

	authSecret := make([]byte, 16)
	if _, err := rand.Read(authSecret); err != nil {
		return nil, fmt.Errorf("failed to generate auth secret: %w", err)
	}

	stored := storedSubscription{
		Endpoint:   fmt.Sprintf("%s/wpush/v1/%s", r.platform.pushServiceURL, uuid.New().String()),
		P256dh:     base64.RawURLEncoding.EncodeToString(privateKey.PublicKey().Bytes()),
		Auth:       base64.RawURLEncoding.EncodeToString(authSecret),
		PrivateKey: base64.RawURLEncoding.EncodeToString(privateKey.Bytes()),
		CreatedAt:  time.Now(),
	}

	r.platform.mu.Lock()
	defer r.platform.mu.Unlock()
	if err := r.platform.saveJSON(subscriptionFile, stored); err != nil {
		return nil, fmt.Errorf("failed to persist subscription: %w", err)
	}

	return &webpush.Subscription{
		Endpoint: stored.Endpoint,
		Keys: webpush.Keys{
			P256dh: stored.P256dh,
			Auth:   stored.Auth,
		},
	}, nil
}

func (r *localRegistration) Unsubscribe(ctx context.Context) (bool, error) {
	existing, err := r.Subscription(ctx)
	if err != nil {
		return false, err
	}
	if existing == nil {
		return false, nil
	}

	r.platform.mu.Lock()
	defer r.platform.mu.Unlock()
	if err := os.Remove(filepath.Join(r.platform.stateDir, subscriptionFile)); err != nil && !os.IsNotExist(err) {
		return false, fmt.Errorf("failed to remove subscription: %w", err)
	}
	return true, nil
}

// loadJSON reads a JSON file from the state directory. Missing or corrupt
// files report false; callers fall back to their zero value.
func (p *LocalPlatform) loadJSON(name string, v interface{}) bool {
	file, err := os.Open(filepath.Join(p.stateDir, name))
	if err != nil {
		return false
	}
	defer func() {
		if err := file.Close(); err != nil {
			log.Printf("Warning: failed to close %s: %v", name, err)
		}
	}()

	if err := json.NewDecoder(file).Decode(v); err != nil {
		return false
	}
	return true
}

// saveJSON atomically writes a JSON file into the state directory.
func (p *LocalPlatform) saveJSON(name string, v interface{}) error {
	filePath := filepath.Join(p.stateDir, name)
	tempFile := filePath + ".tmp"

	file, err := os.Create(tempFile)
	if err != nil {
		return err
	}

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		_ = file.Close()
		_ = os.Remove(tempFile)
		return err
	}
	if err := file.Close(); err != nil {
		_ = os.Remove(tempFile)
		return err
	}

	return os.Rename(tempFile, filePath)
}
