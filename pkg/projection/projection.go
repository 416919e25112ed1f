// Package projection derives display-ready groupings from flat entity slices.
// Every helper is pure: deterministic, side-effect free, and safe to call on
// every request. Ties in sort order are broken by original slice order.
package projection

import "sort"

// Group is one bucket of a grouped view, in first-seen key order.
type Group[K comparable, T any] struct {
	Key   K
	Items []T
}

// GroupBy buckets items by key, preserving the source order both across
// groups (first appearance of each key) and within a group.
func GroupBy[T any, K comparable](items []T, key func(T) K) []Group[K, T] {
	index := make(map[K]int, len(items))
	groups := make([]Group[K, T], 0)
	for _, item := range items {
		k := key(item)
		i, ok := index[k]
		if !ok {
			i = len(groups)
			index[k] = i
			groups = append(groups, Group[K, T]{Key: k})
		}
		groups[i].Items = append(groups[i].Items, item)
	}
	return groups
}

// Filter returns the items satisfying keep, in source order. The source is
// never mutated.
func Filter[T any](items []T, keep func(T) bool) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		if keep(item) {
			out = append(out, item)
		}
	}
	return out
}

// SortStable returns a sorted copy of items. Equal elements keep their
// original relative order; the source slice is untouched.
func SortStable[T any](items []T, less func(a, b T) bool) []T {
	out := make([]T, len(items))
	copy(out, items)
	sort.SliceStable(out, func(i, j int) bool {
		return less(out[i], out[j])
	})
	return out
}

// CountBy tallies items per key.
func CountBy[T any, K comparable](items []T, key func(T) K) map[K]int {
	out := make(map[K]int, len(items))
	for _, item := range items {
		out[key(item)]++
	}
	return out
}
