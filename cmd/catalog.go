package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/songcart/internal/formatter"
	"github.com/desertthunder/songcart/internal/models"
	"github.com/desertthunder/songcart/internal/tasks"
	"github.com/urfave/cli/v3"
)

// CatalogAdd submits one song to a genre catalog.
func (r *Runner) CatalogAdd(ctx context.Context, cmd *cli.Command) error {
	engine, err := r.connect()
	if err != nil {
		return err
	}

	var author *models.Author
	if id := cmd.String("author"); id != "" {
		author = &models.Author{Identity: id, Email: cmd.String("email")}
	}

	song, err := engine.Submit(ctx, models.Submission{
		Genre:      cmd.String("genre"),
		ArtistName: cmd.String("artist"),
		Title:      cmd.String("title"),
		AlbumName:  cmd.String("album"),
		Price:      cmd.String("price"),
	}, author)
	if err != nil {
		return fmt.Errorf("failed to submit song: %w", err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(song, cmd.Bool("pretty"))
	}
	return r.writePlain("✓ Added %s - %s to %s\nuid: %s\n", song.ArtistName, song.Title, song.Partition.Name, song.UID)
}

// CatalogList lists a genre's newest songs, optionally filtered by artist, or every genre with --all.
func (r *Runner) CatalogList(ctx context.Context, cmd *cli.Command) error {
	engine, err := r.connect()
	if err != nil {
		return err
	}

	limit := int(cmd.Int("limit"))
	title := "All songs"

	var songs []*models.Song
	switch {
	case cmd.Bool("all"):
		songs, err = engine.All(ctx, limit)
		if artist := cmd.String("artist"); err == nil && artist != "" {
			songs = tasks.FilterByArtist(songs, artist)
		}
	case cmd.String("artist") != "":
		title = engine.Keyer().For(cmd.String("genre")).Name
		songs, err = engine.Search(ctx, cmd.String("genre"), cmd.String("artist"), limit)
	default:
		title = engine.Keyer().For(cmd.String("genre")).Name
		songs, err = engine.List(ctx, cmd.String("genre"), limit)
	}
	if err != nil {
		return fmt.Errorf("failed to list catalog: %w", err)
	}

	return r.writeSongs(cmd, title, songs)
}

// CatalogGenres lists the genres that hold songs.
func (r *Runner) CatalogGenres(ctx context.Context, cmd *cli.Command) error {
	engine, err := r.connect()
	if err != nil {
		return err
	}

	genres, err := engine.Genres(ctx)
	if err != nil {
		return fmt.Errorf("failed to list genres: %w", err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(genres, cmd.Bool("pretty"))
	}
	for _, g := range genres {
		if err := r.writePlain("%s\n", g); err != nil {
			return err
		}
	}
	return nil
}

// writeSongs prints songs as JSON with --json, else as a numbered list.
func (r *Runner) writeSongs(cmd *cli.Command, title string, songs []*models.Song) error {
	if cmd.Bool("json") {
		if songs == nil {
			songs = []*models.Song{}
		}
		return r.writeJSON(songs, cmd.Bool("pretty"))
	}
	return formatter.WriteExport(r.output, formatter.Text, title, songs)
}
