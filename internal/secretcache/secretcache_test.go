package secretcache

import (
	"testing"
	"time"

	"github.com/blackwell-systems/vaultkeeper"
)

func TestSecretCache_TTL(t *testing.T) {
	cache := NewSecretCache(50 * time.Millisecond)
	entry := vaultkeeper.VaultEntry{ID: "a", Name: "GitHub"}
	cache.Insert("a", entry)

	if got, ok := cache.Get("a"); !ok || got.Name != "GitHub" {
		t.Fatalf("Get() immediately after insert = %v, %v", got, ok)
	}

	time.Sleep(60 * time.Millisecond)

	if _, ok := cache.Get("a"); ok {
		t.Fatal("Get() after TTL expiry returned a hit, want miss")
	}
	if cache.Len() != 0 {
		t.Fatalf("Len() after expiry = %d, want 0 (expired entry must be evicted on access)", cache.Len())
	}
}

func TestSecretCache_Clear(t *testing.T) {
	cache := NewSecretCache(DefaultTTL)
	cache.Insert("a", vaultkeeper.VaultEntry{ID: "a"})
	cache.Insert("b", vaultkeeper.VaultEntry{ID: "b"})

	cache.Clear()

	if _, ok := cache.Get("a"); ok {
		t.Fatal("Get(a) after Clear() returned a hit")
	}
	if cache.Len() != 0 {
		t.Fatalf("Len() after Clear() = %d, want 0", cache.Len())
	}
}

func TestTotpCache_TTLShorterThanStep(t *testing.T) {
	if TotpTTL >= 30*time.Second {
		t.Fatalf("TotpTTL = %v, want < 30s so a cached code is never returned mid-flip", TotpTTL)
	}

	cache := NewTotpCache(20 * time.Millisecond)
	cache.Insert("a", "123456")

	if got, ok := cache.Get("a"); !ok || got.Code != "123456" {
		t.Fatalf("Get() = %v, %v, want 123456, true", got, ok)
	}

	time.Sleep(30 * time.Millisecond)

	if _, ok := cache.Get("a"); ok {
		t.Fatal("Get() after TTL expiry returned a hit, want miss")
	}
}

func TestTotpCache_Clear(t *testing.T) {
	cache := NewTotpCache(TotpTTL)
	cache.Insert("a", "111111")
	cache.Clear()
	if _, ok := cache.Get("a"); ok {
		t.Fatal("Get() after Clear() returned a hit")
	}
}
