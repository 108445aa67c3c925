package blob

import (
	"context"
	"encoding/base64"
	"sync"
)

type object struct {
	data        []byte
	contentType string
}

type Memory struct {
	mu      sync.RWMutex
	objects map[string]object
}

func NewMemory() *Memory {
	return &Memory{objects: make(map[string]object)}
}

func (m *Memory) Driver() string { return DriverMemory }

// Put keeps the object and returns it as a data URI, so the URL stays usable
// after a restart even though the map does not.
func (m *Memory) Put(_ context.Context, key string, data []byte, contentType string) (string, error) {
	m.mu.Lock()
	m.objects[key] = object{data: append([]byte(nil), data...), contentType: contentType}
	m.mu.Unlock()
	return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	obj, ok := m.objects[key]
	if !ok {
		return nil, "", ErrNotFound
	}
	return append([]byte(nil), obj.data...), obj.contentType, nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}
