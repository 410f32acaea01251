// Package secretcache holds the two bounded-TTL in-memory maps the spec
// calls SecretCache and TotpCache: full records and, optionally, computed
// TOTP codes. Both are simple mutex-guarded maps — grounded on the
// teacher's backends/bitwarden statusCache, which follows the same
// get/set-under-RWMutex-with-TTL shape for a single cached value, here
// generalized to a keyed map via Go generics.
package secretcache

import (
	"sync"
	"time"

	"github.com/blackwell-systems/vaultkeeper"
)

// DefaultTTL is the SecretCache default from this design.
const DefaultTTL = 300 * time.Second

// TotpTTL is shorter than the 30s TOTP step so a cached code is never
// returned right before it flips.
const TotpTTL = 25 * time.Second

type entry[V any] struct {
	value      V
	insertedAt time.Time
}

// ttlMap is a generic mutex-guarded map with per-cache TTL. Not exported:
// SecretCache and TotpCache below are the public, type-specific faces.
type ttlMap[V any] struct {
	mu   sync.Mutex
	ttl  time.Duration
	data map[string]entry[V]
}

func newTTLMap[V any](ttl time.Duration) *ttlMap[V] {
	return &ttlMap[V]{ttl: ttl, data: make(map[string]entry[V])}
}

func (m *ttlMap[V]) get(id string) (V, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.data[id]
	if !ok {
		var zero V
		return zero, false
	}
	if time.Since(e.insertedAt) >= m.ttl {
		delete(m.data, id)
		var zero V
		return zero, false
	}
	return e.value, true
}

func (m *ttlMap[V]) insert(id string, v V) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[id] = entry[V]{value: v, insertedAt: time.Now()}
}

func (m *ttlMap[V]) clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = make(map[string]entry[V])
}

func (m *ttlMap[V]) len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, e := range m.data {
		if time.Since(e.insertedAt) < m.ttl {
			n++
		}
	}
	return n
}

// SecretCache maps entry id -> full VaultEntry, TTL'd at DefaultTTL.
type SecretCache struct {
	inner *ttlMap[vaultkeeper.VaultEntry]
}

// NewSecretCache constructs a SecretCache with the given TTL (pass
// DefaultTTL unless a test needs to shrink it).
func NewSecretCache(ttl time.Duration) *SecretCache {
	return &SecretCache{inner: newTTLMap[vaultkeeper.VaultEntry](ttl)}
}

// Get returns the cached entry iff present and non-expired. An expired
// entry is proactively removed as part of the lookup.
func (c *SecretCache) Get(id string) (vaultkeeper.VaultEntry, bool) {
	return c.inner.get(id)
}

// Insert stamps the current instant and stores v under id.
func (c *SecretCache) Insert(id string, v vaultkeeper.VaultEntry) {
	c.inner.insert(id, v)
}

// Clear drops all entries. MUST be called on user-initiated lock, on
// process exit, and whenever the observed account identifier changes.
func (c *SecretCache) Clear() {
	c.inner.clear()
}

// Len reports the number of live (non-expired-at-call-time) entries.
func (c *SecretCache) Len() int {
	return c.inner.len()
}

// TotpEntry is a cached TOTP code; the insertion instant is kept by the
// cache itself.
type TotpEntry struct {
	Code string
}

// TotpCache maps entry id -> last computed TOTP code, TTL'd at TotpTTL.
// Per the open question in this design, this cache is only ever consulted
// by an explicit opt-in from a copy action, never by the always-recompute
// display path — see internal/dispatch.
type TotpCache struct {
	inner *ttlMap[TotpEntry]
}

// NewTotpCache constructs a TotpCache with the given TTL.
func NewTotpCache(ttl time.Duration) *TotpCache {
	return &TotpCache{inner: newTTLMap[TotpEntry](ttl)}
}

// Get returns the cached code iff present and non-expired.
func (c *TotpCache) Get(id string) (TotpEntry, bool) {
	return c.inner.get(id)
}

// Insert stores the code computed for id at the current instant.
func (c *TotpCache) Insert(id string, code string) {
	c.inner.insert(id, TotpEntry{Code: code})
}

// Clear drops all entries.
func (c *TotpCache) Clear() {
	c.inner.clear()
}
