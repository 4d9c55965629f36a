package shared

import "errors"

var (
	// ErrNotFound indicates the referenced record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate indicates a uniqueness violation.
	ErrDuplicate = errors.New("duplicate record")
	// ErrInvalidCredentials indicates login failure. It deliberately does not
	// distinguish unknown accounts from wrong passwords or inactive accounts.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrCSRFTokenMissing occurs when no CSRF token accompanies a mutation.
	ErrCSRFTokenMissing = errors.New("csrf token missing")
	// ErrCSRFTokenMismatch occurs when CSRF tokens do not match.
	ErrCSRFTokenMismatch = errors.New("csrf token mismatch")
	// ErrSelfDemotion occurs when an admin tries to drop their own admin role.
	ErrSelfDemotion = errors.New("cannot remove own admin role")
)
