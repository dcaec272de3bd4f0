// pkg/util/generic.go
// Copyright(c) 2026 swimfuse contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package util

import (
	"cmp"
	"slices"
)

func Select[T any](sel bool, a, b T) T {
	if sel {
		return a
	}
	return b
}

func SortedMapKeys[K cmp.Ordered, V any](m map[K]V) []K {
	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

func FilterSlice[V any](s []V, pred func(V) bool) []V {
	var out []V
	for _, v := range s {
		if pred(v) {
			out = append(out, v)
		}
	}
	return out
}

func MapSlice[F, T any](from []F, xform func(F) T) []T {
	out := make([]T, len(from))
	for i, f := range from {
		out[i] = xform(f)
	}
	return out
}
