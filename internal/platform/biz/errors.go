package biz

import "errors"

var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrForbidden     = errors.New("forbidden")

	// Remote client failure kinds. Auth failures mean the credential is dead
	// and retrying is pointless; rate limits mean back off until the next
	// pass; anything else is a generic API failure.
	ErrAuthFailed  = errors.New("platform authentication failed")
	ErrRateLimited = errors.New("platform rate limited")
	ErrRemoteAPI   = errors.New("platform api error")
)
