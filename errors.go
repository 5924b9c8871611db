/*

Errors returned by the timed session Manager.

*/

package session

import "errors"

var (
	// ErrInvalidArgument is returned when a key or value passed to a Manager is empty.
	ErrInvalidArgument = errors.New("session: invalid argument")

	// ErrIllegalOperation is reported when the Manager singleton is duplicated,
	// either by cloning, by copying its value, or by decoding it from serialized form.
	ErrIllegalOperation = errors.New("session: illegal operation")
)
