package tasks

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"github.com/desertthunder/songcart/internal/partition"
	"golang.org/x/time/rate"
)

// Gate serializes writers per partition and paces how fast a single partition accepts writes.
//
// Writers to different partitions never wait on each other. A partition's slot is forgotten once nobody
// holds or waits for it and its limiter has refilled, so one-off keys do not accumulate.
type Gate struct {
	mu      sync.Mutex
	slots   map[partition.Key]*slot
	sweepAt int
	limit   rate.Limit
	burst   int
}

// slot is a one-writer lock whose acquisition can be abandoned through a context.
type slot struct {
	sem     chan struct{}
	limiter *rate.Limiter
	users   int // callers holding or waiting on sem, guarded by Gate.mu
}

const minSweep = 64

// NewGate creates a [Gate] allowing perSecond writes per partition with the given burst.
//
// perSecond <= 0 disables pacing; partitions are still serialized.
func NewGate(perSecond float64, burst int) *Gate {
	limit := rate.Limit(perSecond)
	if perSecond <= 0 {
		limit = rate.Inf
	}
	if burst < 1 {
		burst = 1
	}
	return &Gate{slots: make(map[partition.Key]*slot), sweepAt: minSweep, limit: limit, burst: burst}
}

// join returns key's slot, creating it if needed, and counts the caller as one of its users.
func (g *Gate) join(key partition.Key) *slot {
	g.mu.Lock()
	defer g.mu.Unlock()

	s, ok := g.slots[key]
	if !ok {
		if len(g.slots) >= g.sweepAt {
			g.sweep(time.Now())
		}
		s = &slot{sem: make(chan struct{}, 1), limiter: rate.NewLimiter(g.limit, g.burst)}
		g.slots[key] = s
	}
	s.users++
	return s
}

// leave drops the caller from each slot and forgets the ones that became idle.
func (g *Gate) leave(keys []partition.Key, slots []*slot) {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := time.Now()
	for i, s := range slots {
		s.users--
		if g.idle(s, now) {
			delete(g.slots, keys[i])
		}
	}
}

// idle reports whether forgetting s loses nothing: no users and a full limiter. g.mu must be held.
func (g *Gate) idle(s *slot, now time.Time) bool {
	if s.users > 0 {
		return false
	}
	return g.limit == rate.Inf || s.limiter.TokensAt(now) >= float64(g.burst)
}

// sweep forgets every idle slot. Slots released while their limiter was still draining are collected here.
// g.mu must be held.
func (g *Gate) sweep(now time.Time) {
	for key, s := range g.slots {
		if g.idle(s, now) {
			delete(g.slots, key)
		}
	}
	g.sweepAt = max(minSweep, 2*len(g.slots))
}

// Enter waits for exclusive write access to every key and returns a function that releases it.
//
// Keys are acquired in sorted order so overlapping callers cannot deadlock. If ctx ends first,
// any slots already held are released and ctx's error is returned.
func (g *Gate) Enter(ctx context.Context, keys ...partition.Key) (func(), error) {
	keys = slices.Clone(keys)
	slices.SortFunc(keys, func(a, b partition.Key) int {
		return cmp.Or(cmp.Compare(a.Kind, b.Kind), cmp.Compare(a.Name, b.Name))
	})
	keys = slices.Compact(keys)

	joined := make([]*slot, 0, len(keys))
	held := 0
	release := func() {
		for i := held - 1; i >= 0; i-- {
			<-joined[i].sem
		}
		g.leave(keys[:len(joined)], joined)
	}

	for _, key := range keys {
		s := g.join(key)
		joined = append(joined, s)
		select {
		case s.sem <- struct{}{}:
			held++
		case <-ctx.Done():
			release()
			return nil, ctx.Err()
		}
	}

	for _, s := range joined {
		if err := s.limiter.Wait(ctx); err != nil {
			release()
			return nil, err
		}
	}

	return release, nil
}
