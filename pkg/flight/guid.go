// pkg/flight/guid.go
// Copyright(c) 2026 swimfuse contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package flight

import "github.com/google/uuid"

func newGUID() string { return uuid.NewString() }
