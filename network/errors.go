package network

import (
	"errors"
	"fmt"

	"github.com/roach88/retort/entity"
)

// IdentityCollisionError reports two structurally different values mapping
// to the same canonical key. This indicates a canonicalization collaborator
// bug; it is fatal and aborts the expansion that triggered it.
type IdentityCollisionError struct {
	Kind entity.Kind
	Key  string
	// Existing and Incoming are the conflicting blob encodings.
	Existing []byte
	Incoming []byte
}

// Error implements the error interface.
func (e *IdentityCollisionError) Error() string {
	return fmt.Sprintf("identity collision in %s store: key %q maps to two distinct values", e.Kind, e.Key)
}

// IsIdentityCollision returns true if err is an IdentityCollisionError.
// Uses errors.As to handle wrapped errors.
func IsIdentityCollision(err error) bool {
	var ic *IdentityCollisionError
	return errors.As(err, &ic)
}

// ResolverError reports a user-supplied resolver that panicked while
// combining two values. Resolvers must be total over any two same-type
// values, so this is a fatal configuration error: the expansion attempt
// aborts, prior rounds stay committed.
type ResolverError struct {
	Kind    entity.Kind
	Ref     int
	MetaKey string
	Cause   any // recovered panic value
}

// Error implements the error interface.
func (e *ResolverError) Error() string {
	return fmt.Sprintf("resolver for key %q panicked on %s/%d: %v", e.MetaKey, e.Kind, e.Ref, e.Cause)
}

// IsResolverError returns true if err is a ResolverError.
// Uses errors.As to handle wrapped errors.
func IsResolverError(err error) bool {
	var re *ResolverError
	return errors.As(err, &re)
}

// UnknownRefError reports a ref outside the store's assigned range.
type UnknownRefError struct {
	Kind  entity.Kind
	Index int
	Len   int
}

// Error implements the error interface.
func (e *UnknownRefError) Error() string {
	return fmt.Sprintf("unknown %s ref %d (store has %d entries)", e.Kind, e.Index, e.Len)
}
