package storage

import (
	"context"
	"io"
	"time"
)

// ObjectStore is the private object storage backing cover images. Objects
// live under caller-chosen paths ("<userID>/<token>.<ext>"); reads go
// through time-limited signed URLs, never direct paths.
type ObjectStore interface {
	// Upload writes data from reader to the given path. It never
	// overwrites: callers allocate a fresh path per object.
	Upload(ctx context.Context, path string, reader io.Reader) error

	// Remove deletes the object at the given path. Removing a missing
	// object is not an error.
	Remove(ctx context.Context, path string) error

	// SignedURL returns a URL granting read access to one object until
	// the expiry horizon. Fails if the object does not exist.
	SignedURL(ctx context.Context, path string, ttl time.Duration) (string, error)

	// SignedURLBatch signs many paths in one call. Paths that cannot be
	// signed are omitted from the result; callers treat a missing key as
	// unresolvable.
	SignedURLBatch(ctx context.Context, paths []string, ttl time.Duration) (map[string]string, error)
}
