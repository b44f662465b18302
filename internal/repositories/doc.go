// Package repositories implements SQLite persistence for song partitions.
//
// [SongRepository] implements [models.SongStore]. Every record of every partition lives in the songs table,
// addressed by (partition_kind, partition_name). Records are hard-deleted when they leave a partition.
//
// A repository is either bound to the connection pool or, inside [SongRepository.Atomically], to a single transaction.
// Multi-statement writes (insert with sequence generation, delete with index maintenance) always run in one transaction.
//
// Catalog inserts maintain the catalog_index table, mapping a fingerprint to the oldest catalog record carrying it,
// so resolving a uid never scans the catalog.
//
// Sequence numbers provide a stable insert order that breaks created_at ties.
// The [NextSequence] function atomically increments per-table sequence counters in dedicated sequence tables.
package repositories
