// package models defines the data model for the songcart web service
package models

import (
	"context"

	"github.com/desertthunder/songcart/internal/partition"
)

// SongStore defines durable storage of [Song] records grouped by partition.
//
// Implementations must give read-after-write consistency within a partition.
// Failures of the backing store are reported wrapping shared.ErrStorageUnavailable.
type SongStore interface {
	Insert(ctx context.Context, key partition.Key, song *Song) (string, error) // Insert assigns an ID, stamps CreatedAt if unset and persists the song
	Query(ctx context.Context, key partition.Key, limit int) ([]*Song, error)  // Query returns up to limit songs in key, newest first; limit <= 0 means all
	QueryAll(ctx context.Context, limit int) ([]*Song, error)                  // QueryAll scans every partition, newest first
	Delete(ctx context.Context, id string) error                               // Delete removes one record; unknown ids are a no-op
	FindCatalogByUID(ctx context.Context, uid string) (*Song, error)           // FindCatalogByUID resolves a uid to a catalog song via the fingerprint index
	UIDs(ctx context.Context, keys ...partition.Key) (map[string]bool, error)  // UIDs returns the set of uids present in the given partitions

	// Atomically runs fn inside a single transaction. Nested calls join the outer transaction.
	Atomically(ctx context.Context, fn func(SongStore) error) error
}
