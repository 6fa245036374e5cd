package domain

import (
	"errors"
	"fmt"
)

var (
	ErrValidation   = errors.New("invalid request")
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrInvalidState = errors.New("invalid state for this operation")
	ErrInvalidProof = errors.New("invalid proof of possession")
)

// RoleError reports a role-guard rejection. It carries the actor's actual
// role and the allowed set so the response stays diagnosable.
type RoleError struct {
	Role    Role
	Allowed []Role
}

func (e *RoleError) Error() string {
	return fmt.Sprintf("role %q is not allowed (allowed: %v)", e.Role, e.Allowed)
}

func (e *RoleError) Unwrap() error { return ErrForbidden }

// StateError reports a status-precondition rejection.
type StateError struct {
	Status DonationStatus
	Want   []DonationStatus
}

func (e *StateError) Error() string {
	return fmt.Sprintf("donation status %q does not allow this operation (want one of %v)", e.Status, e.Want)
}

func (e *StateError) Unwrap() error { return ErrInvalidState }
