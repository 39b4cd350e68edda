package session

import (
	"errors"
	"fmt"
)

var (
	// ErrNoSession is returned by Store.Load when either persisted key is absent.
	ErrNoSession = errors.New("no session")

	// ErrStorageCorrupt is returned when the persisted user record cannot be
	// parsed. It matches errors.Is(_, ErrNoSession): corrupt storage is treated
	// as absence, the store is cleared, and nothing is surfaced to the user.
	ErrStorageCorrupt = fmt.Errorf("%w: stored user record corrupt", ErrNoSession)

	// ErrValidationFailed is returned when the remote check rejects the stored
	// token. All non-success responses map here; the caller does not distinguish
	// 401 from 403 from 5xx.
	ErrValidationFailed = errors.New("session validation failed")
)
