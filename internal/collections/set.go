package collections

import (
	"cmp"
	"fmt"
	"maps"
	"slices"
)

// Set is an unordered set. Use OrderedMap where first-seen order matters.
type Set[T comparable] map[T]struct{}

// NewSet returns a set holding vs
func NewSet[T comparable](vs ...T) Set[T] {
	s := make(Set[T], len(vs))
	s.Add(vs...)
	return s
}

// Add inserts vs
func (s Set[T]) Add(vs ...T) {
	for _, v := range vs {
		s[v] = struct{}{}
	}
}

// Has reports membership
func (s Set[T]) Has(v T) bool {
	_, ok := s[v]
	return ok
}

// Members returns the members in no particular order; never nil
func (s Set[T]) Members() []T {
	return append(make([]T, 0, len(s)), slices.Collect(maps.Keys(s))...)
}

func (s Set[T]) String() string {
	return fmt.Sprint(s.Members())
}

// SortedMembers returns the members of s in ascending order
func SortedMembers[T cmp.Ordered](s Set[T]) []T {
	return slices.Sorted(maps.Keys(s))
}
