package tasks

import (
	"context"
	"strings"

	"github.com/desertthunder/songcart/internal/models"
)

// Submit fingerprints sub and stores it in its genre's catalog partition.
//
// An empty genre files the song under the default genre. Identical submissions create separate catalog records
// sharing one uid. When a [Validator] is configured, rejected submissions are returned as its error and nothing is stored.
func (e *SongEngine) Submit(ctx context.Context, sub models.Submission, author *models.Author) (*models.Song, error) {
	if e.validator != nil {
		if err := e.validator.Submission(sub); err != nil {
			return nil, err
		}
	}

	key := e.keyer.For(sub.Genre)
	uid := e.keyer.Fingerprint(sub.ArtistName, sub.Title, sub.AlbumName)
	song := models.NewSong(uid, sub.ArtistName, sub.Title, sub.AlbumName, sub.Price, author)

	release, err := e.gate.Enter(ctx, key)
	if err != nil {
		return nil, err
	}
	defer release()

	if _, err := e.store.Insert(ctx, key, song); err != nil {
		return nil, err
	}

	e.logger.Debug("song submitted", "partition", key, "uid", uid)
	return song, nil
}

// List returns up to limit songs of genre, newest first. limit <= 0 returns all.
func (e *SongEngine) List(ctx context.Context, genre string, limit int) ([]*models.Song, error) {
	return e.store.Query(ctx, e.keyer.For(genre), limit)
}

// Search lists genre and keeps the songs whose artist name contains artist, ignoring case.
//
// The filter runs over the first limit songs of the partition; an empty artist keeps them all.
func (e *SongEngine) Search(ctx context.Context, genre, artist string, limit int) ([]*models.Song, error) {
	songs, err := e.List(ctx, genre, limit)
	if err != nil {
		return nil, err
	}
	return FilterByArtist(songs, artist), nil
}

// Genres lists the genres that have at least one catalog song.
func (e *SongEngine) Genres(ctx context.Context) ([]string, error) {
	return e.store.Genres(ctx)
}

// All scans every partition, newest first.
func (e *SongEngine) All(ctx context.Context, limit int) ([]*models.Song, error) {
	return e.store.QueryAll(ctx, limit)
}

// FilterByArtist keeps the songs whose artist name contains artist, ignoring case.
func FilterByArtist(songs []*models.Song, artist string) []*models.Song {
	if artist == "" {
		return songs
	}

	needle := strings.ToLower(artist)
	matches := make([]*models.Song, 0, len(songs))
	for _, song := range songs {
		if strings.Contains(strings.ToLower(song.ArtistName), needle) {
			matches = append(matches, song)
		}
	}
	return matches
}
