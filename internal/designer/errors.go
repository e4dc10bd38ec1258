// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package designer

import (
	"errors"
	"fmt"
)

// ErrBlocked is returned for edits attempted while the controller is
// waiting on a plan-limit decision (upgrade or cancel).
var ErrBlocked = errors.New("designer: blocked on plan-limit decision")

// ValidationError reports bad local input. It is raised before any
// network call; the field keeps its last valid value.
type ValidationError struct {
	Field  Field
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("designer: invalid %s: %s", e.Field, e.Reason)
}

// LimitReachedError is the business-rule capacity failure: the account
// has hit its allowed count of saved QR designs. It requires an explicit
// user decision and must never be treated as retryable.
type LimitReachedError struct {
	MaxAllowed int
}

func (e *LimitReachedError) Error() string {
	return fmt.Sprintf("designer: plan limit reached (max %d saved designs)", e.MaxAllowed)
}

// TransientError wraps a network or server failure. Retryable; local
// state is left untouched.
type TransientError struct {
	Op  string
	Err error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("designer: %s: %v", e.Op, e.Err)
}

func (e *TransientError) Unwrap() error { return e.Err }

// NotFoundError reports a missing edit/delete target.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("designer: qr code %s not found", e.ID)
}
