// Package prefetch runs the background worker that eagerly resolves
// entry ids into the secret cache while the user navigates, so a copy
// action usually finds its record already warm.
//
// Grounded on a cooperative single-worker-over-a-channel shape,
// generalized to a queue: the adapter call itself is the only blocking
// step, and the worker's first move is always the cache check.
package prefetch

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/blackwell-systems/vaultkeeper"
	"github.com/blackwell-systems/vaultkeeper/internal/secretcache"
)

// Fetcher is the subset of the host-CLI adapter the prefetcher needs.
type Fetcher interface {
	Get(ctx context.Context, id string) (vaultkeeper.VaultEntry, error)
}

// Worker drains a buffered channel of requested ids (capacity 256),
// resolving each into cache unless it's already warm. The channel is
// bounded: Enqueue drops a request when it is full.
type Worker struct {
	requests chan string
	cache    *secretcache.SecretCache
	fetcher  Fetcher
	log      zerolog.Logger
	done     chan struct{}
}

// New starts the worker's goroutine and returns a handle. Calling Close
// on the returned Worker drains and stops the worker cleanly.
func New(cache *secretcache.SecretCache, fetcher Fetcher, log zerolog.Logger) *Worker {
	w := &Worker{
		requests: make(chan string, 256),
		cache:    cache,
		fetcher:  fetcher,
		log:      log,
		done:     make(chan struct{}),
	}
	go w.run()
	return w
}

// Enqueue requests a background fetch of id. It is O(1) and never blocks
// the caller on the network/subprocess; rapid, duplicate enqueues for the
// same id are cheap because the worker's first step is a cache check.
func (w *Worker) Enqueue(id string) {
	select {
	case w.requests <- id:
	default:
		// Queue is momentarily full under pathological navigation bursts;
		// dropping here is safe since the request is best-effort and the
		// next selection change will enqueue again.
		w.log.Warn().Str("id", id).Msg("prefetch queue full, dropping request")
	}
}

// Close stops accepting new requests and waits for the worker to drain.
func (w *Worker) Close() {
	close(w.requests)
	<-w.done
}

func (w *Worker) run() {
	defer close(w.done)

	for id := range w.requests {
		if _, hit := w.cache.Get(id); hit {
			continue
		}

		entry, err := w.fetcher.Get(context.Background(), id)
		if err != nil {
			// Best-effort per this design: never propagated to the UI.
			w.log.Debug().Str("id", id).Err(err).Msg("prefetch failed")
			continue
		}
		w.cache.Insert(id, entry)
	}
}
