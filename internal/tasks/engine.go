package tasks

import (
	"context"
	"io"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/songcart/internal/models"
	"github.com/desertthunder/songcart/internal/partition"
	"github.com/desertthunder/songcart/internal/shared"
)

// Store is the storage the engine runs on: a [models.SongStore] that can also list genres and report health.
type Store interface {
	models.SongStore
	Genres(ctx context.Context) ([]string, error)
	Ping(ctx context.Context) error
}

// Validator checks catalog submissions before they are stored.
type Validator interface {
	Submission(sub models.Submission) error
}

// EngineOptions configures a [SongEngine].
type EngineOptions struct {
	Keyer      *partition.Keyer // Genre keying and fingerprinting; nil uses an empty default genre with [partition.Fingerprint]
	WriteRate  float64          // Writes per second per partition; <= 0 disables pacing
	WriteBurst int              // Writes a partition may absorb at once
	Validator  Validator        // Optional; nil accepts every submission
	Logger     *log.Logger
}

// SongEngine implements catalog submission, cart management and checkout.
//
// Every write enters the [Gate] for the partitions it touches and then runs in a single store transaction.
type SongEngine struct {
	store     Store
	keyer     *partition.Keyer
	gate      *Gate
	validator Validator
	logger    *log.Logger
}

// NewSongEngine creates a new SongEngine backed by store.
func NewSongEngine(store Store, opts EngineOptions) *SongEngine {
	keyer := opts.Keyer
	if keyer == nil {
		keyer = partition.NewKeyer("", nil)
	}

	logger := opts.Logger
	if logger == nil {
		logger = shared.NewLogger(io.Discard)
	}

	return &SongEngine{
		store:     store,
		keyer:     keyer,
		gate:      NewGate(opts.WriteRate, opts.WriteBurst),
		validator: opts.Validator,
		logger:    logger,
	}
}

// Keyer returns the engine's genre keyer.
func (e *SongEngine) Keyer() *partition.Keyer {
	return e.keyer
}

// Ping reports whether the backing store is reachable.
func (e *SongEngine) Ping(ctx context.Context) error {
	return e.store.Ping(ctx)
}

// owned returns the cart and history partitions of userID. ok is false for anonymous users.
func owned(userID string) (cart, history partition.Key, ok bool) {
	cart, ok = partition.CartOf(userID)
	if !ok {
		return partition.Key{}, partition.Key{}, false
	}
	history, _ = partition.HistoryOf(userID)
	return cart, history, true
}
