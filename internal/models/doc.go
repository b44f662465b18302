// Package models defines the song entity and the persistence contract for the songcart service.
//
// The package contains:
//   - [Song] : a catalog submission or one of its copies in a cart or purchase history
//   - [Author] : the optional submitter identity attached to a song
//   - [SongStore] : the storage contract implemented by repositories.SongRepository
//
// A song belongs to exactly one partition (see package partition).
// Moving a song between partitions never mutates a record; it inserts a [Song.Copy] into the destination and deletes the source.
package models
