package tasks

import (
	"context"
	"errors"
	"slices"

	"github.com/desertthunder/songcart/internal/models"
	"github.com/desertthunder/songcart/internal/shared"
)

// CheckoutResult contains the songs a checkout moved into history.
type CheckoutResult struct {
	Moved     []*models.Song // History records created
	Duplicate int            // Cart records dropped because history already held their uid
}

// Checkout moves every song in userID's cart into their history.
//
// All songs move or none do. A cart song whose uid is already in history is dropped from the cart without
// a second history record, so repeating a checkout is harmless. An empty cart or an anonymous user is a no-op.
// Progress is reported on progress when it is non-nil; moved songs are reported only after the move commits.
func (e *SongEngine) Checkout(ctx context.Context, userID string, progress chan<- ProgressUpdate) (*CheckoutResult, error) {
	result := &CheckoutResult{Moved: []*models.Song{}}

	cart, history, ok := owned(userID)
	if !ok {
		return result, nil
	}

	release, err := e.gate.Enter(ctx, cart, history)
	if err != nil {
		return nil, err
	}
	defer release()

	sendProgress(progress, loadCartUpdate(userID))

	var moves []ProgressUpdate
	err = e.store.Atomically(ctx, func(store models.SongStore) error {
		result.Moved, result.Duplicate = []*models.Song{}, 0
		moves = moves[:0]

		songs, err := store.Query(ctx, cart, 0)
		if err != nil {
			return err
		}
		// oldest first, so history keeps the cart's order
		slices.Reverse(songs)

		for i, song := range songs {
			copied := song.Copy()
			_, err := store.Insert(ctx, history, copied)
			duplicate := errors.Is(err, shared.ErrDuplicateSong)
			if err != nil && !duplicate {
				return err
			}

			if duplicate {
				result.Duplicate++
			} else {
				result.Moved = append(result.Moved, copied)
			}

			if err := store.Delete(ctx, song.ID); err != nil {
				return err
			}
			moves = append(moves, moveSongUpdate(i+1, len(songs), song, duplicate))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, update := range moves {
		sendProgress(progress, update)
	}
	if len(result.Moved) > 0 || result.Duplicate > 0 {
		e.logger.Info("checkout complete", "user", userID, "moved", len(result.Moved), "duplicate", result.Duplicate)
	}
	sendProgress(progress, checkoutDoneUpdate(result))
	return result, nil
}

// PreviewCheckout returns up to limit songs that a checkout would move, newest first.
func (e *SongEngine) PreviewCheckout(ctx context.Context, userID string, limit int) ([]*models.Song, error) {
	return e.Cart(ctx, userID, limit)
}
