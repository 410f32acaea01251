package prefetch

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/blackwell-systems/vaultkeeper"
	"github.com/blackwell-systems/vaultkeeper/internal/secretcache"
)

type slowFetcher struct {
	calls int32
	delay time.Duration
}

func (f *slowFetcher) Get(ctx context.Context, id string) (vaultkeeper.VaultEntry, error) {
	atomic.AddInt32(&f.calls, 1)
	time.Sleep(f.delay)
	return vaultkeeper.VaultEntry{ID: id, Name: "slow"}, nil
}

// TestSingleFetchUnderConcurrentPrefetch covers P9: N prefetches for the
// same id against a slow adapter result in exactly one completed fetch.
func TestSingleFetchUnderConcurrentPrefetch(t *testing.T) {
	cache := secretcache.NewSecretCache(secretcache.DefaultTTL)
	fetcher := &slowFetcher{delay: 30 * time.Millisecond}
	w := New(cache, fetcher, zerolog.Nop())
	defer w.Close()

	for i := 0; i < 10; i++ {
		w.Enqueue("a")
	}

	deadline := time.After(2 * time.Second)
	for {
		if _, ok := cache.Get("a"); ok {
			break
		}
		select {
		case <-deadline:
			t.Fatal("timed out waiting for prefetch to populate cache")
		case <-time.After(5 * time.Millisecond):
		}
	}

	// Give the worker a chance to drain any further (erroneously enqueued)
	// duplicate work before asserting the call count.
	time.Sleep(50 * time.Millisecond)

	if got := atomic.LoadInt32(&fetcher.calls); got != 1 {
		t.Fatalf("fetcher.calls = %d, want 1 (cache check must short-circuit duplicates)", got)
	}
}

func TestCloseDrainsCleanly(t *testing.T) {
	cache := secretcache.NewSecretCache(secretcache.DefaultTTL)
	fetcher := &slowFetcher{delay: time.Millisecond}
	w := New(cache, fetcher, zerolog.Nop())

	w.Enqueue("a")
	w.Enqueue("b")

	done := make(chan struct{})
	go func() {
		w.Close()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Close() did not return — worker failed to drain")
	}
}
