package app

import "errors"

var (
	// ErrIdentityUnresolved: the request carries no session, or the session
	// does not map to a known user.
	ErrIdentityUnresolved = errors.New("identity unresolved")

	// ErrOwnershipDenied: the caller is known but does not own the resource.
	// Absent resources collapse into this error on purpose; the wire
	// response does not distinguish "not yours" from "not there".
	ErrOwnershipDenied = errors.New("ownership denied")
)
