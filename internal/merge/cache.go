package merge

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"sync"

	"github.com/vmihailenco/msgpack/v5"
)

// Current schema version - increment when cachePayload format changes.
const cacheSchemaVersion uint16 = 1

// Cache stores recompression outputs keyed by input content hash on disk.
// Lossless conversion is deterministic for a given input and argument set,
// so results can be reused across packaging runs.
// Thread-safe for concurrent access.
type Cache struct {
	mu  sync.RWMutex
	dir string
}

type cachePayload struct {
	// Schema version for safe invalidation when the format changes.
	Schema uint16

	// Args is the converter argument set the output was produced with.
	Args []string

	// Data is the converted file content.
	Data []byte
}

// OpenCache initializes and returns a disk cache at the standard location.
func OpenCache(app string) (*Cache, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		base = filepath.Join(home, ".cache")
	}
	dir := filepath.Join(base, app, "webp")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Cache{dir: dir}, nil
}

func cacheKey(content []byte, args []string) [sha256.Size]byte {
	h := sha256.New()
	h.Write(content)
	for _, a := range args {
		h.Write([]byte{0})
		h.Write([]byte(a))
	}
	var key [sha256.Size]byte
	copy(key[:], h.Sum(nil))
	return key
}

func (c *Cache) pathFor(key [sha256.Size]byte) string {
	return filepath.Join(c.dir, hex.EncodeToString(key[:])+".bin")
}

// Load returns the cached output for key, if present and schema-compatible.
func (c *Cache) Load(key [sha256.Size]byte) ([]byte, bool) {
	if c == nil {
		return nil, false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	raw, err := os.ReadFile(c.pathFor(key))
	if err != nil {
		return nil, false
	}
	var payload cachePayload
	if err := msgpack.Unmarshal(raw, &payload); err != nil {
		return nil, false
	}
	if payload.Schema != cacheSchemaVersion {
		return nil, false
	}
	return payload.Data, true
}

// Store writes the output for key. The write goes through a temporary file
// so concurrent runs never observe a torn entry.
func (c *Cache) Store(key [sha256.Size]byte, args []string, data []byte) error {
	if c == nil {
		return errors.New("nil cache")
	}
	raw, err := msgpack.Marshal(cachePayload{
		Schema: cacheSchemaVersion,
		Args:   args,
		Data:   data,
	})
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	path := c.pathFor(key)
	tmp, err := os.CreateTemp(c.dir, "webp-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}
