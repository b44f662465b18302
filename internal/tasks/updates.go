package tasks

import (
	"fmt"

	"github.com/desertthunder/songcart/internal/models"
)

// ProgressUpdate represents a progress event during a cart operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	LoadCart Phase = iota
	MoveSongs
	CheckoutDone
)

func (p Phase) String() string {
	switch p {
	case LoadCart:
		return "load_cart"
	case MoveSongs:
		return "move_songs"
	case CheckoutDone:
		return "checkout_done"
	default:
		return ""
	}
}

// sendProgress sends a progress update through the channel without blocking.
func sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
		// Channel full, skip this update
	}
}

func loadCartUpdate(userID string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   LoadCart,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Loading cart for %s...", userID),
	}
}

func moveSongUpdate(step, total int, song *models.Song, duplicate bool) ProgressUpdate {
	message := fmt.Sprintf("[%d/%d] %s - %s", step, total, song.ArtistName, song.Title)
	if duplicate {
		message += " (already purchased)"
	}
	return ProgressUpdate{
		Phase:   MoveSongs,
		Step:    step,
		Total:   total,
		Message: message,
		Data:    song,
	}
}

func checkoutDoneUpdate(result *CheckoutResult) ProgressUpdate {
	return ProgressUpdate{
		Phase:   CheckoutDone,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Checked out %d songs", len(result.Moved)),
		Data:    result,
	}
}
