package balance

import (
	"sync"

	"github.com/virmuran/ProcessDesignPro/internal/model"
)

// Cache remembers the last result per (calculator, unit) together with a
// content hash of the inputs that produced it. A hit returns the stored
// result so the arithmetic is skipped; the record is still written.
type Cache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
	hits    int
	misses  int
}

type cacheEntry struct {
	hash   string
	status model.Status
	result any
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[string]cacheEntry)}
}

func cacheKey(calc CalcType, unitID string) string {
	return string(calc) + "\x00" + unitID
}

// lookup returns the stored result when the input hash matches.
func (c *Cache) lookup(calc CalcType, unitID, hash string) (model.Status, any, bool) {
	if c == nil {
		return "", nil, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[cacheKey(calc, unitID)]
	if !ok || e.hash != hash {
		c.misses++
		return "", nil, false
	}
	c.hits++
	return e.status, e.result, true
}

func (c *Cache) store(calc CalcType, unitID, hash string, status model.Status, result any) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[cacheKey(calc, unitID)] = cacheEntry{hash: hash, status: status, result: result}
}

// Invalidate drops every cached result of a unit.
func (c *Cache) Invalidate(unitID string) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, calc := range []CalcType{CalcMass, CalcHeat, CalcWater} {
		delete(c.entries, cacheKey(calc, unitID))
	}
}

// Stats returns the hit and miss counts.
func (c *Cache) Stats() (hits, misses int) {
	if c == nil {
		return 0, 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}

// inputHash hashes the inputs of one run. Failures yield "" which never
// matches a stored entry.
func inputHash(calc CalcType, inputs any) string {
	h, err := model.ContentHash(model.DomainCalc, map[string]any{
		"calc":   calc,
		"inputs": inputs,
	})
	if err != nil {
		return ""
	}
	return h
}
