package portalAuth

import "errors"

var (
	// ErrUnauthorized is returned when the backend rejects the bearer or refresh credential.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInvalidCredentials is returned when login credentials are rejected.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrAccountExists is returned when registration hits an existing account.
	ErrAccountExists = errors.New("account already exists")
	// ErrNotFound is returned when the backend reports a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrNetwork wraps transport failures (DNS, refused connections, timeouts).
	ErrNetwork = errors.New("network failure")
	// ErrDecode is returned when a backend response cannot be decoded.
	ErrDecode = errors.New("decode failure")
	// ErrServer is returned for 5xx responses.
	ErrServer = errors.New("server error")
	// ErrNoToken is returned when a call needs a bearer token and the session has none.
	ErrNoToken = errors.New("token not provided")
	// ErrStaleResponse marks a response discarded because a newer session mutation started after it.
	ErrStaleResponse = errors.New("stale response discarded")
	// ErrStoreClosed is returned by operations invoked after Close.
	ErrStoreClosed = errors.New("session store closed")
	// ErrStoreNotReady is returned when a store is missing a required collaborator.
	ErrStoreNotReady = errors.New("session store not ready")
	// ErrEmptyProfile is returned when the profile call succeeds without a user.
	ErrEmptyProfile = errors.New("empty profile response")
)
