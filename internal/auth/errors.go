// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SkillBridge Contributors

package auth

import "errors"

// ErrNotFound is returned when a requested entity does not exist.
var ErrNotFound = errors.New("not found")

// ErrEmailExists is returned when an account insert violates the email
// uniqueness constraint. The storage layer is the final authority; the
// pre-insert lookup in Register is only a fast path.
var ErrEmailExists = errors.New("email already registered")
