// Package blobstore is the path-addressed object storage the session
// artifacts live in.
package blobstore

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"
)

// ErrNotFound is returned by Get for a missing key.
var ErrNotFound = errors.New("blobstore: not found")

// Store is a key-value blob store. Writes replace the whole object.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, data []byte, contentType string) error
	Exists(ctx context.Context, key string) (bool, error)
	// List returns every key under prefix.
	List(ctx context.Context, prefix string) ([]string, error)
	// ListPrefixes returns the immediate "directories" under prefix.
	ListPrefixes(ctx context.Context, prefix string) ([]string, error)
	SignedURL(ctx context.Context, key string, ttl time.Duration) (string, error)
}

// Memory is an in-process Store for tests and local runs.
type Memory struct {
	mu      sync.RWMutex
	objects map[string][]byte
	now     func() time.Time
}

func NewMemory() *Memory {
	return &Memory{objects: map[string][]byte{}, now: time.Now}
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.objects[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	return append([]byte(nil), b...), nil
}

func (m *Memory) Put(_ context.Context, key string, data []byte, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = append([]byte(nil), data...)
	return nil
}

func (m *Memory) Exists(_ context.Context, key string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.objects[key]
	return ok, nil
}

func (m *Memory) List(_ context.Context, prefix string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var keys []string
	for k := range m.objects {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func (m *Memory) ListPrefixes(ctx context.Context, prefix string) ([]string, error) {
	keys, _ := m.List(ctx, prefix)
	seen := map[string]struct{}{}
	var out []string
	for _, k := range keys {
		rest := strings.TrimPrefix(k, prefix)
		i := strings.Index(rest, "/")
		if i < 0 {
			continue
		}
		p := prefix + rest[:i+1]
		if _, ok := seen[p]; !ok {
			seen[p] = struct{}{}
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *Memory) SignedURL(_ context.Context, key string, ttl time.Duration) (string, error) {
	m.mu.RLock()
	_, ok := m.objects[key]
	m.mu.RUnlock()
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	q := url.Values{"expires": {m.now().Add(ttl).UTC().Format(time.RFC3339)}}
	return "memory:///" + key + "?" + q.Encode(), nil
}
