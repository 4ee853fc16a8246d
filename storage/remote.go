package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/zcong1993/taskbook/item"
)

const remoteTimeout = 15 * time.Second

// Remote object keys; one per collection.
const (
	keyStorage = "storage.json"
	keyArchive = "archive.json"
)

// RemoteConfig carries the settings the remote backend requires.
type RemoteConfig struct {
	BaseURL   string
	Token     string
	Namespace string
	// AllowEmptyOnError keeps the old behavior of treating a failed read as
	// an empty collection. Off by default: swallowing a transport error here
	// lets the next save wipe the remote copy.
	AllowEmptyOnError bool
}

// RemoteStore syncs collections against a key-value service over HTTP. Each
// collection lives at /api/{namespace}/{key}; reads unwrap a {"value": ...}
// envelope and writes PUT the raw collection JSON. All requests carry a
// bearer token.
type RemoteStore struct {
	cfg    RemoteConfig
	client *http.Client
	logger *slog.Logger
}

// NewRemoteStore validates cfg and returns a store talking to the configured
// service. Missing settings are reported before any network traffic happens.
func NewRemoteStore(cfg RemoteConfig, logger *slog.Logger) (*RemoteStore, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("%w: remote.url is empty", ErrMissingConfig)
	}
	if cfg.Token == "" {
		return nil, fmt.Errorf("%w: remote.token is empty", ErrMissingConfig)
	}
	if cfg.Namespace == "" {
		return nil, fmt.Errorf("%w: remote.namespace is empty", ErrMissingConfig)
	}
	if logger == nil {
		logger = slog.Default()
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &RemoteStore{
		cfg:    cfg,
		client: &http.Client{Timeout: remoteTimeout},
		logger: logger,
	}, nil
}

// Load fetches the active collection from the remote service.
func (r *RemoteStore) Load(ctx context.Context) (item.Collection, error) {
	return r.load(ctx, keyStorage)
}

// Save uploads the active collection, replacing the remote copy.
func (r *RemoteStore) Save(ctx context.Context, c item.Collection) error {
	return r.put(ctx, keyStorage, c)
}

// LoadArchive fetches the archived collection from the remote service.
func (r *RemoteStore) LoadArchive(ctx context.Context) (item.Collection, error) {
	return r.load(ctx, keyArchive)
}

// SaveArchive uploads the archived collection, replacing the remote copy.
func (r *RemoteStore) SaveArchive(ctx context.Context, c item.Collection) error {
	return r.put(ctx, keyArchive, c)
}

// Close drops idle connections; there is no remote session to tear down.
func (r *RemoteStore) Close() error {
	r.client.CloseIdleConnections()
	return nil
}

func (r *RemoteStore) load(ctx context.Context, key string) (item.Collection, error) {
	c, err := r.get(ctx, key)
	if err != nil {
		if r.cfg.AllowEmptyOnError {
			r.logger.Warn("remote read failed, continuing with empty collection",
				"key", key, "error", err)
			return item.Collection{}, nil
		}
		return nil, err
	}
	return c, nil
}

// valueEnvelope is the read wire format: the collection JSON nested under
// "value", or null when the key has never been written.
type valueEnvelope struct {
	Value json.RawMessage `json:"value"`
}

func (r *RemoteStore) get(ctx context.Context, key string) (item.Collection, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.url(key), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+r.cfg.Token)
	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer resp.Body.Close() //nolint:errcheck
	if resp.StatusCode == http.StatusNotFound {
		return item.Collection{}, nil
	}
	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%w: server returned %d: %s",
			ErrTransport, resp.StatusCode, strings.TrimSpace(string(body)))
	}
	var env valueEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrTransport, err)
	}
	if len(env.Value) == 0 || string(env.Value) == "null" {
		return item.Collection{}, nil
	}
	var c item.Collection
	if err := json.Unmarshal(env.Value, &c); err != nil {
		return nil, fmt.Errorf("parse remote collection: %w", err)
	}
	return c, nil
}

func (r *RemoteStore) put(ctx context.Context, key string, c item.Collection) error {
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal collection: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, r.url(key), bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+r.cfg.Token)
	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer resp.Body.Close() //nolint:errcheck
	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%w: server returned %d: %s",
			ErrTransport, resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func (r *RemoteStore) url(key string) string {
	return fmt.Sprintf("%s/api/%s/%s", r.cfg.BaseURL, r.cfg.Namespace, key)
}
