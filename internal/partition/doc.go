// Package partition derives the grouping keys that bind song records to a consistency domain.
//
// Every record lives in exactly one of three partition families:
//   - [Catalog] : songs submitted under a genre, keyed by the lower-cased genre name
//   - [Cart] : songs a user has selected but not purchased, keyed by user id
//   - [History] : songs a user has checked out, keyed by user id
//
// The [Keyer] normalizes genre names (falling back to a configured default) and computes song fingerprints.
// Fingerprints identify "the same song" across partitions independent of storage identity.
//
// Anonymous users (empty user id) have no addressable cart or history; [CartOf] and [HistoryOf] report this through their ok value.
package partition
