package storefront

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Session keys shared by the containers.
const (
	KeyUserInfo        = "userInfo"
	KeyCartItems       = "cartItems"
	KeyShippingAddress = "shippingAddress"
	KeyPaymentMethod   = "paymentMethod"
	KeyCheckout        = "checkoutKey"
)

// SessionStore persists client state between runs. Values are JSON encoded.
type SessionStore interface {
	// Get decodes the value under key into v and reports whether it existed.
	Get(key string, v any) (bool, error)
	Set(key string, v any) error
	Delete(keys ...string) error
	// ClearExcept drops every key not listed in keep.
	ClearExcept(keep ...string) error
}

type MemoryStore struct {
	mu   sync.Mutex
	data map[string]json.RawMessage
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: map[string]json.RawMessage{}}
}

func (m *MemoryStore) Get(key string, v any) (bool, error) {
	m.mu.Lock()
	raw, ok := m.data[key]
	m.mu.Unlock()
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return false, fmt.Errorf("session %s: %w", key, err)
	}
	return true, nil
}

func (m *MemoryStore) Set(key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("session %s: %w", key, err)
	}
	m.mu.Lock()
	m.data[key] = raw
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Delete(keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.data, k)
	}
	return nil
}

func (m *MemoryStore) ClearExcept(keep ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = retain(m.data, keep)
	return nil
}

// FileStore keeps the session in one JSON object on disk. Every write
// rewrites the whole file through a temp file and rename.
type FileStore struct {
	mu   sync.Mutex
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (f *FileStore) Get(key string, v any) (bool, error) {
	f.mu.Lock()
	data, err := f.load()
	f.mu.Unlock()
	if err != nil {
		return false, err
	}
	raw, ok := data[key]
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return false, fmt.Errorf("session %s: %w", key, err)
	}
	return true, nil
}

func (f *FileStore) Set(key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("session %s: %w", key, err)
	}
	return f.update(func(data map[string]json.RawMessage) map[string]json.RawMessage {
		data[key] = raw
		return data
	})
}

func (f *FileStore) Delete(keys ...string) error {
	return f.update(func(data map[string]json.RawMessage) map[string]json.RawMessage {
		for _, k := range keys {
			delete(data, k)
		}
		return data
	})
}

func (f *FileStore) ClearExcept(keep ...string) error {
	return f.update(func(data map[string]json.RawMessage) map[string]json.RawMessage {
		return retain(data, keep)
	})
}

func (f *FileStore) update(fn func(map[string]json.RawMessage) map[string]json.RawMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, err := f.load()
	if err != nil {
		return err
	}
	return f.save(fn(data))
}

func (f *FileStore) load() (map[string]json.RawMessage, error) {
	data := map[string]json.RawMessage{}
	b, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return data, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read session: %w", err)
	}
	if len(b) == 0 {
		return data, nil
	}
	if err := json.Unmarshal(b, &data); err != nil {
		return nil, fmt.Errorf("parse session %s: %w", f.path, err)
	}
	return data, nil
}

func (f *FileStore) save(data map[string]json.RawMessage) error {
	b, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(f.path), ".session-*")
	if err != nil {
		return fmt.Errorf("create temp session: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		return fmt.Errorf("write session: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("replace session: %w", err)
	}
	return nil
}

func retain(data map[string]json.RawMessage, keep []string) map[string]json.RawMessage {
	out := make(map[string]json.RawMessage, len(keep))
	for _, k := range keep {
		if v, ok := data[k]; ok {
			out[k] = v
		}
	}
	return out
}
