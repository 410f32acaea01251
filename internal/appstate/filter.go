package appstate

import (
	"runtime"
	"sort"
	"strings"
	"sync"

	"github.com/blackwell-systems/vaultkeeper"
)

// FilterMode selects the algorithm this design leaves configuration-driven.
type FilterMode int

const (
	FilterFuzzy FilterMode = iota
	FilterExact
)

// parallelThreshold is the row count above which matching fans out across
// worker goroutines.
const parallelThreshold = 1000

// TextFilterer implements Filterer with the haystack/algorithm rules from
// this design: name + username + each URI, space-joined, lower-cased
// unless CaseSensitive.
type TextFilterer struct {
	Mode          FilterMode
	CaseSensitive bool
}

// Filter returns indexes into rows, in source order, whose haystack
// matches query under the selected tab and algorithm. An empty query
// matches every row in the tab.
func (f TextFilterer) Filter(rows []vaultkeeper.EntryMetadata, tab Tab, query string) []int {
	needle := query
	if !f.CaseSensitive {
		needle = strings.ToLower(needle)
	}

	match := func(i int) bool {
		r := rows[i]
		if !tab.Matches(r.Kind) {
			return false
		}
		if needle == "" {
			return true
		}
		hay := haystack(r, f.CaseSensitive)
		switch f.Mode {
		case FilterExact:
			return strings.Contains(hay, needle)
		default:
			return fuzzyMatch(hay, needle)
		}
	}

	if len(rows) < parallelThreshold {
		return filterSequential(len(rows), match)
	}
	return filterParallel(len(rows), match)
}

func haystack(m vaultkeeper.EntryMetadata, caseSensitive bool) string {
	parts := make([]string, 0, 2+len(m.URIs))
	parts = append(parts, m.Name, m.Username)
	parts = append(parts, m.URIs...)
	hay := strings.Join(parts, " ")
	if !caseSensitive {
		hay = strings.ToLower(hay)
	}
	return hay
}

func filterSequential(n int, match func(int) bool) []int {
	out := make([]int, 0, n)
	for i := 0; i < n; i++ {
		if match(i) {
			out = append(out, i)
		}
	}
	return out
}

// filterParallel fans the match predicate out across a worker pool sized
// to the host, then merges hits back into source order — correctness is
// unchanged versus filterSequential, only throughput differs.
func filterParallel(n int, match func(int) bool) []int {
	workers := runtime.GOMAXPROCS(0)
	if workers < 2 {
		return filterSequential(n, match)
	}
	chunk := (n + workers - 1) / workers

	results := make([][]int, workers)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		start := w * chunk
		end := start + chunk
		if start >= n {
			break
		}
		if end > n {
			end = n
		}
		wg.Add(1)
		go func(w, start, end int) {
			defer wg.Done()
			local := make([]int, 0, end-start)
			for i := start; i < end; i++ {
				if match(i) {
					local = append(local, i)
				}
			}
			results[w] = local
		}(w, start, end)
	}
	wg.Wait()

	out := make([]int, 0, n)
	for _, r := range results {
		out = append(out, r...)
	}
	sort.Ints(out)
	return out
}

// fuzzyMatch is a skim-style subsequence match: every rune of needle must
// appear in hay in order, with gaps allowed. Scoring isn't surfaced here
// since the design only requires order-preserving results within a tab, not
// a ranked reorder.
func fuzzyMatch(hay, needle string) bool {
	hi := 0
	hr := []rune(hay)
	for _, nr := range needle {
		found := false
		for ; hi < len(hr); hi++ {
			if hr[hi] == nr {
				found = true
				hi++
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
