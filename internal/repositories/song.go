package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/songcart/internal/models"
	"github.com/desertthunder/songcart/internal/partition"
	"github.com/desertthunder/songcart/internal/shared"
	"github.com/mattn/go-sqlite3"
)

var _ models.SongStore = (*SongRepository)(nil)

const songColumns = `id, sequence, partition_kind, partition_name, uid, author_identity, author_email,
	artist_name, title, album_name, price, created_at`

// SongRepository implements [models.SongStore] on SQLite.
//
// A zero tx means each call runs on the pool; repositories handed to [SongRepository.Atomically] callbacks are bound to one transaction.
type SongRepository struct {
	db  *sql.DB
	tx  *sql.Tx
	now func() time.Time
}

// NewSongRepository creates a new SongRepository with the given database connection
func NewSongRepository(db *sql.DB) *SongRepository {
	return &SongRepository{db: db, now: time.Now}
}

func (r *SongRepository) q() querier {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

// within runs fn in the current transaction, or in a new one committed when fn succeeds.
func (r *SongRepository) within(ctx context.Context, fn func(*SongRepository) error) error {
	if r.tx != nil {
		return fn(r)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return unavailable("begin transaction", err)
	}
	defer tx.Rollback()

	if err := fn(&SongRepository{db: r.db, tx: tx, now: r.now}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return unavailable("commit transaction", err)
	}
	return nil
}

// Atomically runs fn inside a single transaction. Nested calls join the outer transaction.
func (r *SongRepository) Atomically(ctx context.Context, fn func(models.SongStore) error) error {
	return r.within(ctx, func(tx *SongRepository) error { return fn(tx) })
}

// Ping checks that the database is reachable.
func (r *SongRepository) Ping(ctx context.Context) error {
	if err := r.db.PingContext(ctx); err != nil {
		return unavailable("ping", err)
	}
	return nil
}

// Insert persists song into the partition identified by key and returns its new ID.
//
// CreatedAt is stamped with the current time when unset. Catalog inserts register the song's uid in the
// fingerprint index unless an older catalog song already holds it. Inserting a uid already present in a
// cart or history partition fails with [shared.ErrDuplicateSong].
func (r *SongRepository) Insert(ctx context.Context, key partition.Key, song *models.Song) (string, error) {
	if !key.Kind.Valid() || (key.Owned() && key.Name == "") {
		return "", fmt.Errorf("%w: partition %q", shared.ErrInvalidArgument, key)
	}

	id := shared.GenerateID()
	createdAt := song.CreatedAt.UTC()
	if song.CreatedAt.IsZero() {
		createdAt = r.now().UTC()
	}

	var sequence int
	err := r.within(ctx, func(tx *SongRepository) error {
		var err error
		if sequence, err = NextSequence(ctx, tx.tx, "songs"); err != nil {
			return unavailable("generate sequence", err)
		}

		var identity, email sql.NullString
		if song.Author != nil {
			identity = sql.NullString{String: song.Author.Identity, Valid: true}
			email = sql.NullString{String: song.Author.Email, Valid: true}
		}

		query := `
			INSERT INTO songs (` + songColumns + `)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`
		_, err = tx.tx.ExecContext(ctx, query,
			id,
			sequence,
			string(key.Kind),
			key.Name,
			song.UID,
			identity,
			email,
			song.ArtistName,
			song.Title,
			song.AlbumName,
			song.Price,
			createdAt,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("%w: %s in %s", shared.ErrDuplicateSong, song.UID, key)
			}
			return unavailable("insert song", err)
		}

		if key.Kind != partition.Catalog {
			return nil
		}

		_, err = tx.tx.ExecContext(ctx, "INSERT OR IGNORE INTO catalog_index (uid, song_id) VALUES (?, ?)", song.UID, id)
		if err != nil {
			return unavailable("index song", err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	song.ID = id
	song.Sequence = sequence
	song.CreatedAt = createdAt
	song.Partition = key
	return id, nil
}

// Get retrieves a song by ID.
func (r *SongRepository) Get(ctx context.Context, id string) (*models.Song, error) {
	query := `SELECT ` + songColumns + ` FROM songs WHERE id = ?`

	song, err := scanSong(r.q().QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", shared.ErrSongNotFound, id)
	}
	if err != nil {
		return nil, unavailable("get song", err)
	}
	return song, nil
}

// Query returns up to limit songs in the partition identified by key, newest first.
//
// limit <= 0 returns every song in the partition. An empty partition yields an empty slice.
func (r *SongRepository) Query(ctx context.Context, key partition.Key, limit int) ([]*models.Song, error) {
	query := `
		SELECT ` + songColumns + `
		FROM songs
		WHERE partition_kind = ? AND partition_name = ?
		ORDER BY created_at DESC, sequence DESC
		LIMIT ?
	`
	return r.list(ctx, query, string(key.Kind), key.Name, sqlLimit(limit))
}

// QueryAll returns up to limit songs across every partition, newest first.
//
// Cost grows with the whole table; uid lookups go through [SongRepository.FindCatalogByUID] instead.
func (r *SongRepository) QueryAll(ctx context.Context, limit int) ([]*models.Song, error) {
	query := `
		SELECT ` + songColumns + `
		FROM songs
		ORDER BY created_at DESC, sequence DESC
		LIMIT ?
	`
	return r.list(ctx, query, sqlLimit(limit))
}

// Delete removes the song with the given ID. Unknown IDs are a no-op.
//
// Deleting the catalog song the fingerprint index points at re-points the entry at the oldest remaining
// catalog song with the same uid, or drops it.
func (r *SongRepository) Delete(ctx context.Context, id string) error {
	return r.within(ctx, func(tx *SongRepository) error {
		var kind, uid string
		err := tx.tx.QueryRowContext(ctx, "SELECT partition_kind, uid FROM songs WHERE id = ?", id).Scan(&kind, &uid)
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		if err != nil {
			return unavailable("load song", err)
		}

		if partition.Kind(kind) == partition.Catalog {
			if err := tx.unindex(ctx, id, uid); err != nil {
				return err
			}
		}

		if _, err := tx.tx.ExecContext(ctx, "DELETE FROM songs WHERE id = ?", id); err != nil {
			return unavailable("delete song", err)
		}
		return nil
	})
}

// unindex moves the fingerprint index entry for uid off the catalog song id.
func (r *SongRepository) unindex(ctx context.Context, id, uid string) error {
	var indexed string
	err := r.tx.QueryRowContext(ctx, "SELECT song_id FROM catalog_index WHERE uid = ?", uid).Scan(&indexed)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return unavailable("load index entry", err)
	}
	if indexed != id {
		return nil
	}

	var next string
	err = r.tx.QueryRowContext(ctx, `
		SELECT id FROM songs
		WHERE partition_kind = ? AND uid = ? AND id != ?
		ORDER BY sequence ASC
		LIMIT 1
	`, string(partition.Catalog), uid, id).Scan(&next)

	switch {
	case errors.Is(err, sql.ErrNoRows):
		_, err = r.tx.ExecContext(ctx, "DELETE FROM catalog_index WHERE uid = ?", uid)
	case err == nil:
		_, err = r.tx.ExecContext(ctx, "UPDATE catalog_index SET song_id = ? WHERE uid = ?", next, uid)
	}
	if err != nil {
		return unavailable("update index entry", err)
	}
	return nil
}

// FindCatalogByUID resolves uid to a catalog song through the fingerprint index.
//
// Returns [shared.ErrSongNotFound] when no catalog song carries the uid.
func (r *SongRepository) FindCatalogByUID(ctx context.Context, uid string) (*models.Song, error) {
	query := `
		SELECT s.id, s.sequence, s.partition_kind, s.partition_name, s.uid, s.author_identity, s.author_email,
			s.artist_name, s.title, s.album_name, s.price, s.created_at
		FROM catalog_index i
		JOIN songs s ON s.id = i.song_id
		WHERE i.uid = ?
	`

	song, err := scanSong(r.q().QueryRowContext(ctx, query, uid))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: uid %s", shared.ErrSongNotFound, uid)
	}
	if err != nil {
		return nil, unavailable("find catalog song", err)
	}
	return song, nil
}

// UIDs returns the set of uids present in any of the given partitions.
func (r *SongRepository) UIDs(ctx context.Context, keys ...partition.Key) (map[string]bool, error) {
	uids := make(map[string]bool)
	if len(keys) == 0 {
		return uids, nil
	}

	clauses := make([]string, 0, len(keys))
	args := make([]any, 0, len(keys)*2)
	for _, key := range keys {
		clauses = append(clauses, "(partition_kind = ? AND partition_name = ?)")
		args = append(args, string(key.Kind), key.Name)
	}

	query := "SELECT DISTINCT uid FROM songs WHERE " + strings.Join(clauses, " OR ")
	rows, err := r.q().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, unavailable("query uids", err)
	}
	defer rows.Close()

	for rows.Next() {
		var uid string
		if err := rows.Scan(&uid); err != nil {
			return nil, unavailable("scan uid", err)
		}
		uids[uid] = true
	}

	if err := rows.Err(); err != nil {
		return nil, unavailable("iterate uids", err)
	}
	return uids, nil
}

// Genres lists the names of non-empty catalog partitions in alphabetical order.
func (r *SongRepository) Genres(ctx context.Context) ([]string, error) {
	query := `
		SELECT DISTINCT partition_name FROM songs
		WHERE partition_kind = ?
		ORDER BY partition_name ASC
	`
	rows, err := r.q().QueryContext(ctx, query, string(partition.Catalog))
	if err != nil {
		return nil, unavailable("query genres", err)
	}
	defer rows.Close()

	genres := []string{}
	for rows.Next() {
		var genre string
		if err := rows.Scan(&genre); err != nil {
			return nil, unavailable("scan genre", err)
		}
		genres = append(genres, genre)
	}

	if err := rows.Err(); err != nil {
		return nil, unavailable("iterate genres", err)
	}
	return genres, nil
}

func (r *SongRepository) list(ctx context.Context, query string, args ...any) ([]*models.Song, error) {
	rows, err := r.q().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, unavailable("query songs", err)
	}
	defer rows.Close()

	songs := []*models.Song{}
	for rows.Next() {
		song, err := scanSong(rows)
		if err != nil {
			return nil, unavailable("scan song", err)
		}
		songs = append(songs, song)
	}

	if err := rows.Err(); err != nil {
		return nil, unavailable("iterate songs", err)
	}
	return songs, nil
}

type scanner interface {
	Scan(dest ...any) error
}

// scanSong scans a row selected with songColumns into a [models.Song]
func scanSong(row scanner) (*models.Song, error) {
	var (
		song     models.Song
		kind     string
		name     string
		identity sql.NullString
		email    sql.NullString
	)

	err := row.Scan(
		&song.ID,
		&song.Sequence,
		&kind,
		&name,
		&song.UID,
		&identity,
		&email,
		&song.ArtistName,
		&song.Title,
		&song.AlbumName,
		&song.Price,
		&song.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	song.Partition = partition.Key{Kind: partition.Kind(kind), Name: name}
	if identity.Valid || email.Valid {
		song.Author = &models.Author{Identity: identity.String, Email: email.String}
	}

	return &song, nil
}

// sqlLimit maps "no limit" onto SQLite's negative LIMIT.
func sqlLimit(limit int) int {
	if limit <= 0 {
		return -1
	}
	return limit
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	return false
}
