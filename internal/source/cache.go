package source

import (
	"context"
	"fmt"

	"github.com/vk/dynmod/internal/ctxlog"
	"github.com/vk/dynmod/internal/memo"
)

// LoadError reports a failed retrieval for a physical location. It carries
// the originally requested identifier, the resolved location, and the
// underlying cause. A LoadError is permanent for its cache key.
type LoadError struct {
	Identifier string
	Location   string
	Err        error
}

// Error implements the error interface.
func (e *LoadError) Error() string {
	return fmt.Sprintf("failed to load module %q from %q: %v", e.Identifier, e.Location, e.Err)
}

// Unwrap exposes the underlying cause for errors.Is/As.
func (e *LoadError) Unwrap() error {
	return e.Err
}

// Cache memoizes raw source per physical location.
type Cache struct {
	reader  Reader
	entries *memo.Cache[[]byte]
}

// NewCache creates a Cache over the given Reader.
func NewCache(reader Reader) *Cache {
	return &Cache{
		reader:  reader,
		entries: memo.New[[]byte](),
	}
}

// LoadBytes returns the raw content at location, reading it at most once.
// id is the originally requested module identifier, used only for error
// context.
func (c *Cache) LoadBytes(ctx context.Context, id, location string) ([]byte, error) {
	return c.entries.Do(ctx, location, func(ctx context.Context) ([]byte, error) {
		logger := ctxlog.FromContext(ctx)
		logger.Debug("Reading module source.", "id", id, "location", location)

		data, err := c.reader.Read(ctx, location)
		if err != nil {
			return nil, &LoadError{Identifier: id, Location: location, Err: err}
		}
		return data, nil
	})
}

// Load returns the source text at location, reading it at most once.
func (c *Cache) Load(ctx context.Context, id, location string) (string, error) {
	data, err := c.LoadBytes(ctx, id, location)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
