/*
Package cache memoises rendered Markdown using groupcache.

Keys carry the content ID and a hash of the Markdown source, so an edited file
is rendered again while unchanged files are served from memory across rebuilds.
groupcache does not support expiration; old entries age out of the LRU.
*/
package cache

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/gob"
	"encoding/hex"
	"fmt"
	"html/template"
	"net/url"

	"github.com/golang/groupcache"
	"github.com/google/uuid"
)

// Rendered is the cached result of rendering one Markdown source.
type Rendered struct {
	Content template.HTML
	Excerpt string
}

// RenderFunc converts Markdown source into HTML and an excerpt.
type RenderFunc func(src []byte) (Rendered, error)

// Markdown provides cached access to a RenderFunc.
type Markdown struct {
	cache *groupcache.Group
}

// ctxKey is the type used to hold the source passed to the getter.
type ctxKey string

// New creates a Markdown cache of sizeInBytes around render. groupcache group
// names are global to the process, so an empty groupName picks a random one.
func New(groupName string, sizeInBytes int64, render RenderFunc) *Markdown {
	if groupName == "" {
		groupName = uuid.NewString()
	}
	return &Markdown{
		cache: groupcache.NewGroup(groupName, sizeInBytes, groupcache.GetterFunc(
			func(ctx context.Context, key string, dest groupcache.Sink) error {
				src, ok := ctx.Value(ctxKey("src")).([]byte)
				if !ok {
					return fmt.Errorf("markdown group: no source for %q", key)
				}
				r, err := render(src)
				if err != nil {
					return fmt.Errorf("markdown group: %w", err)
				}
				var buf bytes.Buffer
				err = gob.NewEncoder(&buf).Encode(r)
				if err != nil {
					return fmt.Errorf("markdown group: %w", err)
				}
				return dest.SetBytes(buf.Bytes())
			})),
	}
}

// Get returns the rendering of src, which is identified by id.
func (m *Markdown) Get(ctx context.Context, id string, src []byte) (Rendered, error) {
	var (
		buf groupcache.ByteView
		q   = make(url.Values, 2)
		r   Rendered
	)
	sum := sha256.Sum256(src)
	q.Set("id", id)
	q.Set("sum", hex.EncodeToString(sum[:]))
	ctx = context.WithValue(ctx, ctxKey("src"), src)
	err := m.cache.Get(ctx, q.Encode(), groupcache.ByteViewSink(&buf))
	if err != nil {
		return r, fmt.Errorf("Get: %w", err)
	}
	err = gob.NewDecoder(buf.Reader()).Decode(&r)
	if err != nil {
		return r, fmt.Errorf("Get: %w", err)
	}
	return r, nil
}

// Renders returns how many sources have been rendered successfully.
func (m *Markdown) Renders() int64 {
	return m.cache.Stats.LocalLoads.Get()
}

// Hits returns how many lookups were served from the cache.
func (m *Markdown) Hits() int64 {
	return m.cache.Stats.CacheHits.Get()
}
