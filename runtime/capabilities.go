package runtime

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"
	"sync"
)

// JSONSerializer is the default property serializer.
type JSONSerializer struct{}

func (JSONSerializer) Serialize(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// OSFileSystem reads scripts from the operating system filesystem.
type OSFileSystem struct{}

func (OSFileSystem) Read(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// MemoryCache is a process-local script cache.
type MemoryCache struct {
	m sync.Map
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{}
}

func (c *MemoryCache) Get(key string) ([]byte, bool) {
	v, ok := c.m.Load(key)
	if !ok {
		return nil, false
	}
	return v.([]byte), true
}

func (c *MemoryCache) Set(key string, value []byte) {
	c.m.Store(key, value)
}

// SHA256Hasher computes hex-encoded SHA-256 content hashes.
type SHA256Hasher struct{}

func (SHA256Hasher) Compute(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
