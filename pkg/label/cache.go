package label

import (
	"context"
	"sync"

	"golang.org/x/image/font/opentype"
	"golang.org/x/sync/singleflight"
)

// FontCache parses each source at most once at a time and keeps successful
// results. Failures are not kept, so a later request retries the source.
type FontCache struct {
	group singleflight.Group

	mu    sync.RWMutex
	fonts map[string]*opentype.Font
}

// NewFontCache creates an empty cache.
func NewFontCache() *FontCache {
	return &FontCache{fonts: make(map[string]*opentype.Font)}
}

// Font returns the parsed font for src. Concurrent calls for the same source
// share one load. ctx only bounds this caller's wait; the shared load keeps
// running for the others.
func (c *FontCache) Font(ctx context.Context, src Source) (*opentype.Font, error) {
	key := src.String()

	c.mu.RLock()
	f, ok := c.fonts[key]
	c.mu.RUnlock()
	if ok {
		return f, nil
	}

	ch := c.group.DoChan(key, func() (any, error) {
		f, err := c.load(context.WithoutCancel(ctx), src)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.fonts[key] = f
		c.mu.Unlock()
		return f, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*opentype.Font), nil
	case <-ctx.Done():
		return nil, &LoadError{Source: key, Err: ctx.Err()}
	}
}

func (c *FontCache) load(ctx context.Context, src Source) (*opentype.Font, error) {
	data, err := src.Load(ctx)
	if err != nil {
		return nil, &LoadError{Source: src.String(), Err: err}
	}
	if err := checkFontType(data); err != nil {
		return nil, &LoadError{Source: src.String(), Err: err}
	}
	f, err := opentype.Parse(data)
	if err != nil {
		return nil, &LoadError{Source: src.String(), Err: err}
	}
	return f, nil
}

// Len returns the number of cached fonts.
func (c *FontCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.fonts)
}
