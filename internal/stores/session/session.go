// Package session holds the session-scoped key/value persistence used to
// mirror cart state across requests.
package session

import "context"

type Store interface {
	// Get returns the stored value and whether the key was present.
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}
