// Package tasks implements the catalog, cart and checkout operations of songcart.
//
// # Core Operations
//
// [SongEngine] moves songs through three partition families:
//
//  1. [SongEngine.Submit] : Catalog submission
//     - Keys the song by lower-cased genre (empty selects the default genre)
//     - Fingerprints artist, title and album into the song's uid
//
//  2. [SongEngine.AddToCart] / [SongEngine.RemoveFromCart] : Per-user cart
//     - Copies catalog songs into the cart by uid
//     - Skips uids the user already has in their cart or history
//
//  3. [SongEngine.Checkout] : Cart to history
//     - Copies every cart song into history and deletes the cart copy
//     - All-or-nothing; re-running after success is a no-op
//
// Catalog originals are never modified by cart or checkout operations; only copies move.
//
// # Concurrency
//
// Writers enter a [Gate] for each partition they touch before opening a store transaction.
// The gate admits one writer per partition at a time and paces writes with a token bucket,
// so two requests for the same user's cart cannot interleave their read-check-insert steps.
//
// # Progress Reporting
//
// [SongEngine.Checkout] accepts an optional channel of [ProgressUpdate] values.
// Updates use select with default to prevent blocking.
package tasks
