package tasks

import (
	"context"
	"errors"

	"github.com/desertthunder/songcart/internal/models"
	"github.com/desertthunder/songcart/internal/partition"
	"github.com/desertthunder/songcart/internal/shared"
)

// CartResult reports what an add-to-cart request did with each requested uid.
type CartResult struct {
	Requested int            // Distinct non-empty uids requested
	Added     []*models.Song // Cart records created, in request order
	Skipped   []string       // Uids already owned or missing from the catalog
}

// AddToCart copies the catalog songs identified by uids into userID's cart.
//
// Uids already in the user's cart or history, and uids no catalog song carries, are skipped.
// An anonymous user gets an empty result.
func (e *SongEngine) AddToCart(ctx context.Context, userID string, uids []string) (*CartResult, error) {
	wanted := distinct(uids)
	result := &CartResult{Requested: len(wanted)}

	cart, history, ok := owned(userID)
	if !ok {
		result.Skipped = wanted
		return result, nil
	}

	release, err := e.gate.Enter(ctx, cart, history)
	if err != nil {
		return nil, err
	}
	defer release()

	err = e.store.Atomically(ctx, func(store models.SongStore) error {
		result.Added, result.Skipped = nil, nil

		have, err := store.UIDs(ctx, cart, history)
		if err != nil {
			return err
		}

		for _, uid := range wanted {
			if have[uid] {
				result.Skipped = append(result.Skipped, uid)
				continue
			}

			original, err := store.FindCatalogByUID(ctx, uid)
			if errors.Is(err, shared.ErrSongNotFound) {
				result.Skipped = append(result.Skipped, uid)
				continue
			}
			if err != nil {
				return err
			}

			song := original.Copy()
			if _, err := store.Insert(ctx, cart, song); err != nil {
				return err
			}
			have[uid] = true
			result.Added = append(result.Added, song)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.logger.Info("songs added to cart", "user", userID, "added", len(result.Added), "skipped", len(result.Skipped))
	return result, nil
}

// RemoveFromCart deletes the records in userID's cart whose uid is listed and returns how many were removed.
//
// Unknown uids are ignored.
func (e *SongEngine) RemoveFromCart(ctx context.Context, userID string, uids []string) (int, error) {
	cart, ok := partition.CartOf(userID)
	if !ok || len(uids) == 0 {
		return 0, nil
	}

	drop := make(map[string]bool, len(uids))
	for _, uid := range uids {
		drop[uid] = true
	}

	release, err := e.gate.Enter(ctx, cart)
	if err != nil {
		return 0, err
	}
	defer release()

	removed := 0
	err = e.store.Atomically(ctx, func(store models.SongStore) error {
		removed = 0

		songs, err := store.Query(ctx, cart, 0)
		if err != nil {
			return err
		}

		for _, song := range songs {
			if !drop[song.UID] {
				continue
			}
			if err := store.Delete(ctx, song.ID); err != nil {
				return err
			}
			removed++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	e.logger.Info("songs removed from cart", "user", userID, "removed", removed)
	return removed, nil
}

// Cart returns up to limit songs in userID's cart, newest first. Anonymous users have an empty cart.
func (e *SongEngine) Cart(ctx context.Context, userID string, limit int) ([]*models.Song, error) {
	cart, ok := partition.CartOf(userID)
	if !ok {
		return []*models.Song{}, nil
	}
	return e.store.Query(ctx, cart, limit)
}

// History returns up to limit songs userID has checked out, newest first. Anonymous users have no history.
func (e *SongEngine) History(ctx context.Context, userID string, limit int) ([]*models.Song, error) {
	history, ok := partition.HistoryOf(userID)
	if !ok {
		return []*models.Song{}, nil
	}
	return e.store.Query(ctx, history, limit)
}

// distinct drops empty and repeated uids, keeping first-seen order.
func distinct(uids []string) []string {
	seen := make(map[string]bool, len(uids))
	out := make([]string, 0, len(uids))
	for _, uid := range uids {
		if uid == "" || seen[uid] {
			continue
		}
		seen[uid] = true
		out = append(out, uid)
	}
	return out
}
