// Package cache provides a thread-safe generic map plus the rendered-content caches used by the
// HTML feed view.
package cache

import (
	"html/template"
	"sync"
)

type Cache[K comparable, V any] struct {
	mu    sync.RWMutex
	items map[K]V
}

func NewCache[K comparable, V any]() *Cache[K, V] {
	return &Cache[K, V]{
		items: make(map[K]V),
	}
}

func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	val, ok := c.items[key]
	return val, ok
}

func (c *Cache[K, V]) Set(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = value
}

func (c *Cache[K, V]) Delete(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
}

func (c *Cache[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[K]V)
}

// SetTo replaces the whole content. The map is owned by the cache afterwards.
func (c *Cache[K, V]) SetTo(items map[K]V) {
	if items == nil {
		items = make(map[K]V)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = items
}

func (c *Cache[K, V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// renderedContentCache holds post bodies rendered to HTML, keyed by content hash and syntax
// style.
var renderedContentCache = NewCache[string, []byte]()

func renderedKey(contentHash, syntaxTheme string) string {
	return contentHash + ":" + syntaxTheme
}

func GetRenderedContent(contentHash, syntaxTheme string) ([]byte, bool) {
	return renderedContentCache.Get(renderedKey(contentHash, syntaxTheme))
}

func SetRenderedContent(contentHash, syntaxTheme string, html []byte) {
	renderedContentCache.Set(renderedKey(contentHash, syntaxTheme), html)
}

func ClearRenderedContentCache() {
	renderedContentCache.Clear()
}

// syntaxCSSCache holds the chroma stylesheet generated for each syntax style.
var syntaxCSSCache = NewCache[string, template.CSS]()

func GetSyntaxCSS(style string) (template.CSS, bool) {
	return syntaxCSSCache.Get(style)
}

func SetSyntaxCSS(style string, css template.CSS) {
	syntaxCSSCache.Set(style, css)
}
