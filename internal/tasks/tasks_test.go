package tasks

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/desertthunder/songcart/internal/models"
	"github.com/desertthunder/songcart/internal/partition"
	"github.com/desertthunder/songcart/internal/repositories"
	"github.com/desertthunder/songcart/internal/shared"
	tu "github.com/desertthunder/songcart/internal/testing"
)

func newTestEngine(t *testing.T) (*SongEngine, *repositories.SongRepository) {
	t.Helper()
	repo := repositories.NewSongRepository(tu.OpenDB(t))
	engine := NewSongEngine(repo, EngineOptions{Keyer: partition.NewKeyer("Jazz", nil)})
	return engine, repo
}

func submit(t *testing.T, e *SongEngine, genre, artist, title, album string) *models.Song {
	t.Helper()
	song, err := e.Submit(context.Background(), models.Submission{
		Genre:      genre,
		ArtistName: artist,
		Title:      title,
		AlbumName:  album,
		Price:      "0.99",
	}, nil)
	if err != nil {
		t.Fatalf("failed to submit %q: %v", title, err)
	}
	return song
}

func mustCart(t *testing.T, e *SongEngine, userID string) []*models.Song {
	t.Helper()
	songs, err := e.Cart(context.Background(), userID, 0)
	if err != nil {
		t.Fatalf("failed to read cart: %v", err)
	}
	return songs
}

func mustHistory(t *testing.T, e *SongEngine, userID string) []*models.Song {
	t.Helper()
	songs, err := e.History(context.Background(), userID, 0)
	if err != nil {
		t.Fatalf("failed to read history: %v", err)
	}
	return songs
}

func TestSongEngine(t *testing.T) {
	ctx := context.Background()

	t.Run("SubmitToCheckout", func(t *testing.T) {
		e, _ := newTestEngine(t)
		author := &models.Author{Identity: "u1", Email: "u1@example.com"}

		submitted, err := e.Submit(ctx, models.Submission{
			Genre:      "Jazz",
			ArtistName: "Miles Davis",
			Title:      "So What",
			AlbumName:  "Kind of Blue",
			Price:      "0.99",
		}, author)
		if err != nil {
			t.Fatalf("failed to submit: %v", err)
		}

		catalog, err := e.List(ctx, "jazz", 10)
		if err != nil {
			t.Fatalf("failed to list catalog: %v", err)
		}
		if len(catalog) != 1 || catalog[0].UID != submitted.UID {
			t.Fatalf("expected catalog to hold the submitted song, got %v", catalog)
		}
		if catalog[0].UID != partition.Fingerprint("Miles Davis", "So What", "Kind of Blue") {
			t.Errorf("unexpected uid %s", catalog[0].UID)
		}

		added, err := e.AddToCart(ctx, "u1", []string{submitted.UID})
		if err != nil {
			t.Fatalf("failed to add to cart: %v", err)
		}
		if len(added.Added) != 1 {
			t.Fatalf("expected 1 song added, got %d", len(added.Added))
		}
		if cart := mustCart(t, e, "u1"); len(cart) != 1 {
			t.Fatalf("expected 1 cart song, got %d", len(cart))
		}

		result, err := e.Checkout(ctx, "u1", nil)
		if err != nil {
			t.Fatalf("failed to checkout: %v", err)
		}
		if len(result.Moved) != 1 {
			t.Errorf("expected 1 song moved, got %d", len(result.Moved))
		}

		if cart := mustCart(t, e, "u1"); len(cart) != 0 {
			t.Errorf("expected empty cart after checkout, got %d songs", len(cart))
		}

		history := mustHistory(t, e, "u1")
		if len(history) != 1 {
			t.Fatalf("expected 1 history song, got %d", len(history))
		}
		if !history[0].SameDescription(submitted) {
			t.Errorf("history record should match submission: %+v vs %+v", history[0], submitted)
		}
		if history[0].ID == submitted.ID {
			t.Error("history record should be a copy with its own ID")
		}

		catalog, err = e.List(ctx, "jazz", 10)
		if err != nil {
			t.Fatalf("failed to list catalog: %v", err)
		}
		if len(catalog) != 1 || catalog[0].ID != submitted.ID {
			t.Error("catalog original should be untouched by cart operations")
		}
	})

	t.Run("GenreNormalization", func(t *testing.T) {
		tests := []struct {
			name   string
			submit string
			query  string
		}{
			{"upper case submit", "JAZZ", "jazz"},
			{"mixed case query", "jazz", "JaZz"},
			{"empty submit uses default", "", "jazz"},
			{"empty query uses default", "Jazz", ""},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				e, _ := newTestEngine(t)
				submit(t, e, tt.submit, "Miles Davis", "So What", "Kind of Blue")

				songs, err := e.List(ctx, tt.query, 10)
				if err != nil {
					t.Fatalf("failed to list: %v", err)
				}
				if len(songs) != 1 {
					t.Errorf("expected 1 song, got %d", len(songs))
				}
			})
		}
	})

	t.Run("GenreIsolation", func(t *testing.T) {
		e, _ := newTestEngine(t)
		submit(t, e, "Jazz", "Miles Davis", "So What", "Kind of Blue")
		submit(t, e, "Rock", "Black Sabbath", "Paranoid", "Paranoid")

		rock, err := e.List(ctx, "rock", 10)
		if err != nil {
			t.Fatalf("failed to list: %v", err)
		}
		if len(rock) != 1 || rock[0].Title != "Paranoid" {
			t.Errorf("expected only the rock song, got %v", rock)
		}

		genres, err := e.Genres(ctx)
		if err != nil {
			t.Fatalf("failed to list genres: %v", err)
		}
		if len(genres) != 2 {
			t.Errorf("expected 2 genres, got %v", genres)
		}
	})

	t.Run("DuplicateSubmissionsShareUID", func(t *testing.T) {
		e, _ := newTestEngine(t)
		first := submit(t, e, "Jazz", "Miles Davis", "So What", "Kind of Blue")
		second := submit(t, e, "Jazz", "Miles Davis", "So What", "Kind of Blue")

		if first.UID != second.UID || first.ID == second.ID {
			t.Errorf("expected distinct records with one uid, got %+v and %+v", first, second)
		}

		songs, err := e.List(ctx, "jazz", 0)
		if err != nil {
			t.Fatalf("failed to list: %v", err)
		}
		if len(songs) != 2 {
			t.Errorf("expected 2 catalog records, got %d", len(songs))
		}
	})

	t.Run("Search", func(t *testing.T) {
		e, _ := newTestEngine(t)
		submit(t, e, "Jazz", "Miles Davis", "So What", "Kind of Blue")
		submit(t, e, "Jazz", "John Coltrane", "Naima", "Giant Steps")
		submit(t, e, "Jazz", "Miles Davis Quintet", "Oleo", "Relaxin'")

		tests := []struct {
			artist string
			want   int
		}{
			{"miles", 2},
			{"COLTRANE", 1},
			{"", 3},
			{"Monk", 0},
		}

		for _, tt := range tests {
			t.Run(fmt.Sprintf("artist=%q", tt.artist), func(t *testing.T) {
				songs, err := e.Search(ctx, "jazz", tt.artist, 10)
				if err != nil {
					t.Fatalf("failed to search: %v", err)
				}
				if len(songs) != tt.want {
					t.Errorf("expected %d songs, got %d", tt.want, len(songs))
				}
			})
		}
	})

	t.Run("AddToCartDeduplicates", func(t *testing.T) {
		e, _ := newTestEngine(t)
		song := submit(t, e, "Jazz", "Miles Davis", "So What", "Kind of Blue")

		result, err := e.AddToCart(ctx, "u1", []string{song.UID, song.UID})
		if err != nil {
			t.Fatalf("failed to add to cart: %v", err)
		}
		if result.Requested != 1 || len(result.Added) != 1 {
			t.Errorf("expected one distinct uid added, got %+v", result)
		}

		result, err = e.AddToCart(ctx, "u1", []string{song.UID})
		if err != nil {
			t.Fatalf("failed to add to cart again: %v", err)
		}
		if len(result.Added) != 0 || len(result.Skipped) != 1 {
			t.Errorf("expected second add to be skipped, got %+v", result)
		}

		if cart := mustCart(t, e, "u1"); len(cart) != 1 {
			t.Errorf("expected 1 cart song, got %d", len(cart))
		}
	})

	t.Run("AddToCartSkipsUnknown", func(t *testing.T) {
		e, _ := newTestEngine(t)
		song := submit(t, e, "Jazz", "Miles Davis", "So What", "Kind of Blue")

		result, err := e.AddToCart(ctx, "u1", []string{"nope", song.UID, ""})
		if err != nil {
			t.Fatalf("failed to add to cart: %v", err)
		}
		if result.Requested != 2 || len(result.Added) != 1 || len(result.Skipped) != 1 || result.Skipped[0] != "nope" {
			t.Errorf("unexpected result %+v", result)
		}
	})

	t.Run("AddToCartSkipsPurchased", func(t *testing.T) {
		e, _ := newTestEngine(t)
		song := submit(t, e, "Jazz", "Miles Davis", "So What", "Kind of Blue")

		if _, err := e.AddToCart(ctx, "u1", []string{song.UID}); err != nil {
			t.Fatalf("failed to add to cart: %v", err)
		}
		if _, err := e.Checkout(ctx, "u1", nil); err != nil {
			t.Fatalf("failed to checkout: %v", err)
		}

		result, err := e.AddToCart(ctx, "u1", []string{song.UID})
		if err != nil {
			t.Fatalf("failed to add to cart: %v", err)
		}
		if len(result.Added) != 0 {
			t.Errorf("a purchased song should not return to the cart, got %+v", result)
		}
		if cart := mustCart(t, e, "u1"); len(cart) != 0 {
			t.Errorf("expected empty cart, got %d songs", len(cart))
		}
	})

	t.Run("AnonymousUser", func(t *testing.T) {
		e, repo := newTestEngine(t)
		song := submit(t, e, "Jazz", "Miles Davis", "So What", "Kind of Blue")

		result, err := e.AddToCart(ctx, "", []string{song.UID})
		if err != nil {
			t.Fatalf("add to cart failed: %v", err)
		}
		if len(result.Added) != 0 {
			t.Errorf("anonymous add should be a no-op, got %+v", result)
		}

		if removed, err := e.RemoveFromCart(ctx, "", []string{song.UID}); err != nil || removed != 0 {
			t.Errorf("anonymous remove should be a no-op, got %d, %v", removed, err)
		}

		checkout, err := e.Checkout(ctx, "", nil)
		if err != nil || len(checkout.Moved) != 0 {
			t.Errorf("anonymous checkout should be a no-op, got %+v, %v", checkout, err)
		}

		all, err := repo.QueryAll(ctx, 0)
		if err != nil {
			t.Fatalf("failed to scan store: %v", err)
		}
		if len(all) != 1 {
			t.Errorf("expected only the catalog song to exist, got %d records", len(all))
		}
	})

	t.Run("UserIsolation", func(t *testing.T) {
		e, _ := newTestEngine(t)
		song := submit(t, e, "Jazz", "Miles Davis", "So What", "Kind of Blue")

		if _, err := e.AddToCart(ctx, "u1", []string{song.UID}); err != nil {
			t.Fatalf("failed to add to cart: %v", err)
		}
		if _, err := e.AddToCart(ctx, "u2", []string{song.UID}); err != nil {
			t.Fatalf("failed to add to cart: %v", err)
		}
		if _, err := e.Checkout(ctx, "u1", nil); err != nil {
			t.Fatalf("failed to checkout: %v", err)
		}

		if cart := mustCart(t, e, "u2"); len(cart) != 1 {
			t.Errorf("u2's cart should be unaffected by u1's checkout, got %d songs", len(cart))
		}
		if history := mustHistory(t, e, "u2"); len(history) != 0 {
			t.Errorf("u2 should have no history, got %d songs", len(history))
		}
	})

	t.Run("RemoveFromCart", func(t *testing.T) {
		e, _ := newTestEngine(t)
		a := submit(t, e, "Jazz", "Miles Davis", "So What", "Kind of Blue")
		b := submit(t, e, "Jazz", "John Coltrane", "Naima", "Giant Steps")

		if _, err := e.AddToCart(ctx, "u1", []string{a.UID, b.UID}); err != nil {
			t.Fatalf("failed to add to cart: %v", err)
		}

		removed, err := e.RemoveFromCart(ctx, "u1", []string{a.UID, "unknown"})
		if err != nil {
			t.Fatalf("failed to remove from cart: %v", err)
		}
		if removed != 1 {
			t.Errorf("expected 1 removed, got %d", removed)
		}

		cart := mustCart(t, e, "u1")
		if len(cart) != 1 || cart[0].UID != b.UID {
			t.Errorf("expected only %s in cart, got %v", b.UID, cart)
		}

		removed, err = e.RemoveFromCart(ctx, "u1", []string{a.UID})
		if err != nil || removed != 0 {
			t.Errorf("removing again should be a no-op, got %d, %v", removed, err)
		}
	})

	t.Run("CheckoutEmptyCart", func(t *testing.T) {
		e, _ := newTestEngine(t)

		result, err := e.Checkout(ctx, "u1", nil)
		if err != nil {
			t.Fatalf("failed to checkout: %v", err)
		}
		if len(result.Moved) != 0 || result.Duplicate != 0 {
			t.Errorf("expected no-op, got %+v", result)
		}
	})

	t.Run("CheckoutTwice", func(t *testing.T) {
		e, _ := newTestEngine(t)
		song := submit(t, e, "Jazz", "Miles Davis", "So What", "Kind of Blue")

		if _, err := e.AddToCart(ctx, "u1", []string{song.UID}); err != nil {
			t.Fatalf("failed to add to cart: %v", err)
		}

		for i := range 2 {
			if _, err := e.Checkout(ctx, "u1", nil); err != nil {
				t.Fatalf("checkout %d failed: %v", i, err)
			}
		}

		if history := mustHistory(t, e, "u1"); len(history) != 1 {
			t.Errorf("expected 1 history song, got %d", len(history))
		}
	})

	t.Run("CheckoutKeepsCartOrder", func(t *testing.T) {
		e, _ := newTestEngine(t)
		titles := []string{"So What", "Freddie Freeloader", "Blue in Green"}
		uids := make([]string, 0, len(titles))
		for _, title := range titles {
			uids = append(uids, submit(t, e, "Jazz", "Miles Davis", title, "Kind of Blue").UID)
		}

		if _, err := e.AddToCart(ctx, "u1", uids); err != nil {
			t.Fatalf("failed to add to cart: %v", err)
		}
		cart := mustCart(t, e, "u1")

		if _, err := e.Checkout(ctx, "u1", nil); err != nil {
			t.Fatalf("failed to checkout: %v", err)
		}

		history := mustHistory(t, e, "u1")
		if len(history) != len(cart) {
			t.Fatalf("expected %d history songs, got %d", len(cart), len(history))
		}
		for i := range cart {
			if history[i].UID != cart[i].UID {
				t.Errorf("position %d: expected %s, got %s", i, cart[i].Title, history[i].Title)
			}
		}
	})

	t.Run("CheckoutDropsAlreadyPurchased", func(t *testing.T) {
		e, repo := newTestEngine(t)
		song := submit(t, e, "Jazz", "Miles Davis", "So What", "Kind of Blue")

		cart, _ := partition.CartOf("u1")
		history, _ := partition.HistoryOf("u1")
		if _, err := repo.Insert(ctx, history, song.Copy()); err != nil {
			t.Fatalf("failed to seed history: %v", err)
		}
		if _, err := repo.Insert(ctx, cart, song.Copy()); err != nil {
			t.Fatalf("failed to seed cart: %v", err)
		}

		result, err := e.Checkout(ctx, "u1", nil)
		if err != nil {
			t.Fatalf("failed to checkout: %v", err)
		}
		if len(result.Moved) != 0 || result.Duplicate != 1 {
			t.Errorf("expected one duplicate, got %+v", result)
		}

		if got := mustCart(t, e, "u1"); len(got) != 0 {
			t.Errorf("expected empty cart, got %d songs", len(got))
		}
		if got := mustHistory(t, e, "u1"); len(got) != 1 {
			t.Errorf("expected 1 history song, got %d", len(got))
		}
	})

	t.Run("CheckoutProgress", func(t *testing.T) {
		e, _ := newTestEngine(t)
		a := submit(t, e, "Jazz", "Miles Davis", "So What", "Kind of Blue")
		b := submit(t, e, "Jazz", "John Coltrane", "Naima", "Giant Steps")

		if _, err := e.AddToCart(ctx, "u1", []string{a.UID, b.UID}); err != nil {
			t.Fatalf("failed to add to cart: %v", err)
		}

		progress := make(chan ProgressUpdate, 10)
		if _, err := e.Checkout(ctx, "u1", progress); err != nil {
			t.Fatalf("failed to checkout: %v", err)
		}
		close(progress)

		var phases []Phase
		for update := range progress {
			phases = append(phases, update.Phase)
		}

		want := []Phase{LoadCart, MoveSongs, MoveSongs, CheckoutDone}
		if fmt.Sprint(phases) != fmt.Sprint(want) {
			t.Errorf("expected phases %v, got %v", want, phases)
		}
	})

	t.Run("Validator", func(t *testing.T) {
		repo := repositories.NewSongRepository(tu.OpenDB(t))
		e := NewSongEngine(repo, EngineOptions{Validator: rejectAll{}})

		_, err := e.Submit(ctx, models.Submission{ArtistName: "x"}, nil)
		if !errors.Is(err, shared.ErrInvalidInput) {
			t.Fatalf("expected ErrInvalidInput, got %v", err)
		}

		all, err := repo.QueryAll(ctx, 0)
		if err != nil {
			t.Fatalf("failed to scan store: %v", err)
		}
		if len(all) != 0 {
			t.Errorf("rejected submission should not be stored, got %d records", len(all))
		}
	})
}

type rejectAll struct{}

func (rejectAll) Submission(models.Submission) error {
	return fmt.Errorf("%w: rejected", shared.ErrInvalidInput)
}

func TestOneOffUsersDoNotGrowGate(t *testing.T) {
	e, _ := newTestEngine(t)

	for i := range 500 {
		user := fmt.Sprintf("visitor-%d", i)
		if _, err := e.AddToCart(context.Background(), user, []string{"missing"}); err != nil {
			t.Fatalf("AddToCart failed: %v", err)
		}
	}

	e.gate.mu.Lock()
	n := len(e.gate.slots)
	e.gate.mu.Unlock()
	if n != 0 {
		t.Errorf("expected every gate slot to be forgotten, %d remain", n)
	}
}
