// pkg/flight/field.go
// Copyright(c) 2026 swimfuse contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package flight

// FieldState distinguishes "not present on the wire" from "present but
// explicitly null" from "present with a value". The merge engine
// branches on this explicitly per field.
type FieldState int

const (
	FieldAbsent FieldState = iota
	FieldNull
	FieldPresent
)

type Field[T any] struct {
	State FieldState
	Value T
}

func Present[T any](v T) Field[T] { return Field[T]{State: FieldPresent, Value: v} }
func Null[T any]() Field[T]       { return Field[T]{State: FieldNull} }

func (f Field[T]) IsPresent() bool { return f.State == FieldPresent }
func (f Field[T]) IsNull() bool    { return f.State == FieldNull }
func (f Field[T]) IsAbsent() bool  { return f.State == FieldAbsent }

// Get returns the value and whether it was present (not null/absent).
func (f Field[T]) Get() (T, bool) { return f.Value, f.State == FieldPresent }
