package models

import "sort"

// Tally counts occurrences per key and remembers the order in which keys
// were first seen. Reading a missing key never inserts it.
type Tally[K comparable] struct {
	counts map[K]int
	order  []K
}

func NewTally[K comparable]() *Tally[K] {
	return &Tally[K]{counts: make(map[K]int)}
}

// Add inserts key with n or increments its count by n.
func (t *Tally[K]) Add(key K, n int) {
	if _, ok := t.counts[key]; !ok {
		t.order = append(t.order, key)
	}
	t.counts[key] += n
}

// Inc is Add(key, 1).
func (t *Tally[K]) Inc(key K) {
	t.Add(key, 1)
}

func (t *Tally[K]) Len() int {
	return len(t.order)
}

// Keys returns keys in first-seen order, never nil.
func (t *Tally[K]) Keys() []K {
	keys := make([]K, 0, len(t.order))
	return append(keys, t.order...)
}

// Top returns up to n keys by count descending; equal counts keep
// first-seen order. n <= 0 returns every key.
func (t *Tally[K]) Top(n int) []K {
	keys := t.Keys()
	sort.SliceStable(keys, func(i, j int) bool {
		return t.counts[keys[i]] > t.counts[keys[j]]
	})
	if n > 0 && len(keys) > n {
		keys = keys[:n]
	}
	return keys
}

// Map copies the counts into a plain map.
func (t *Tally[K]) Map() map[K]int {
	out := make(map[K]int, len(t.counts))
	for k, v := range t.counts {
		out[k] = v
	}
	return out
}

// RankedEntry is a key with its count, used where callers need both.
type RankedEntry struct {
	Key   string
	Count int
}

// RankMap sorts a string-keyed count map by count descending with ties
// broken by key, so output is reproducible.
func RankMap(m map[string]int) []RankedEntry {
	entries := make([]RankedEntry, 0, len(m))
	for k, v := range m {
		entries = append(entries, RankedEntry{Key: k, Count: v})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Count != entries[j].Count {
			return entries[i].Count > entries[j].Count
		}
		return entries[i].Key < entries[j].Key
	})
	return entries
}
