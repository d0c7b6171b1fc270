package texture

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/quietfall/stageview/internal/logger"
)

// ReadFunc reads raw bytes for one texture source.
type ReadFunc func() ([]byte, error)

// Cache is the shared texture cache, keyed by resolved source
// identifier (a file path, or a synthetic key for embedded images).
// At most one decode runs per unique key; concurrent requests for the
// same key wait for the first loader and share its result.
type Cache struct {
	mu       sync.Mutex
	entries  map[string]*Texture
	inflight map[string]chan struct{}
	errs     map[string]error
}

// NewCache creates an empty texture cache.
func NewCache() *Cache {
	return &Cache{
		entries:  make(map[string]*Texture),
		inflight: make(map[string]chan struct{}),
		errs:     make(map[string]error),
	}
}

// GetOrLoad returns the cached texture for key, reading and decoding it
// on first request. Repeated requests for the same key return the same
// handle without invoking read again.
func (c *Cache) GetOrLoad(key string, space ColorSpace, read ReadFunc) (*Texture, error) {
	for {
		c.mu.Lock()
		if tex, ok := c.entries[key]; ok {
			c.mu.Unlock()
			return tex, nil
		}
		if err, ok := c.errs[key]; ok {
			c.mu.Unlock()
			return nil, err
		}
		if done, ok := c.inflight[key]; ok {
			// Another goroutine is decoding this key; wait and re-check.
			c.mu.Unlock()
			<-done
			continue
		}

		done := make(chan struct{})
		c.inflight[key] = done
		c.mu.Unlock()

		tex, err := c.load(key, space, read)

		c.mu.Lock()
		delete(c.inflight, key)
		if err != nil {
			c.errs[key] = err
		} else {
			c.entries[key] = tex
		}
		c.mu.Unlock()
		close(done)

		return tex, err
	}
}

func (c *Cache) load(key string, space ColorSpace, read ReadFunc) (*Texture, error) {
	data, err := read()
	if err != nil {
		return nil, fmt.Errorf("reading texture %s: %w", key, err)
	}
	img, err := Decode(data, key)
	if err != nil {
		return nil, fmt.Errorf("decoding texture %s: %w", key, err)
	}
	logger.Debug("texture decoded",
		zap.String("source", key),
		zap.Int("width", img.Bounds().Dx()),
		zap.Int("height", img.Bounds().Dy()),
	)
	return &Texture{Source: key, Space: space, img: img}, nil
}

// Len returns the number of cached textures.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Destroy releases all GPU handles and empties the cache.
// Must be called on the render thread.
func (c *Cache) Destroy() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, tex := range c.entries {
		tex.Destroy()
	}
	c.entries = make(map[string]*Texture)
	c.errs = make(map[string]error)
}
