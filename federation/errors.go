package federation

import "errors"

var (
	// ErrValidation marks a malformed or semantically invalid federated
	// representation; the whole ingestion of that object is aborted.
	ErrValidation = errors.New("invalid object")

	// ErrNotFound marks a reference to an author, post or comment this node
	// does not host.
	ErrNotFound = errors.New("object not found")

	// ErrNoCredential is returned when a proxied call targets a host the
	// registry has no sending credential for. No call is attempted.
	ErrNoCredential = errors.New("no credential configured for host")

	// ErrBadUpstream is returned when a peer answered with a body that is
	// not valid JSON.
	ErrBadUpstream = errors.New("upstream returned non-JSON response")
)
