package session

import (
	"context"
	"log/slog"
	"time"

	"github.com/puzpuzpuz/xsync/v3"
	"github.com/twipi/utttt/game"
)

// Options configures a Store.
type Options struct {
	Depths  Depths
	Weights game.Weights
	// Expiry is how long a game lives after it started.
	Expiry time.Duration
	// SweepInterval is how often Run removes expired games.
	SweepInterval time.Duration
}

// DefaultOptions returns the default store options.
func DefaultOptions() Options {
	return Options{
		Depths:        DefaultDepths(),
		Weights:       game.DefaultWeights(),
		Expiry:        24 * time.Hour,
		SweepInterval: 4 * time.Hour,
	}
}

// Store holds the running sessions by key.
type Store struct {
	sessions *xsync.MapOf[string, *Session]
	opts     Options
	logger   *slog.Logger
	now      func() time.Time
}

// NewStore creates an empty store.
func NewStore(opts Options, logger *slog.Logger) *Store {
	return &Store{
		sessions: xsync.NewMapOf[string, *Session](),
		opts:     opts,
		logger:   logger,
		now:      time.Now,
	}
}

// Start starts a new game for key. If key already had a session, its game is
// reset in place and overridden is true.
func (st *Store) Start(key string, diff Difficulty) (s *Session, overridden bool) {
	now := st.now()
	// The reset happens under the map's lock for key, so a concurrent Sweep
	// sees either the expired game or the new one.
	s, _ = st.sessions.Compute(key, func(old *Session, loaded bool) (*Session, bool) {
		if loaded {
			old.Reset(diff, now)
			overridden = true
			return old, false
		}
		return New(diff, st.opts.Depths, st.opts.Weights, now), false
	})

	st.logger.Debug(
		"started game",
		"key", key,
		"difficulty", diff,
		"overridden", overridden)

	return s, overridden
}

// Load returns the session for key.
func (st *Store) Load(key string) (*Session, bool) {
	return st.sessions.Load(key)
}

// Delete removes the session for key. Returns false if there was none.
func (st *Store) Delete(key string) bool {
	_, ok := st.sessions.LoadAndDelete(key)
	return ok
}

// Len returns the number of sessions.
func (st *Store) Len() int {
	return st.sessions.Size()
}

// Sweep removes the sessions whose game started longer than the expiry
// before now. Returns the number removed.
func (st *Store) Sweep(now time.Time) int {
	var n int
	st.sessions.Range(func(key string, _ *Session) bool {
		st.sessions.Compute(key, func(s *Session, loaded bool) (*Session, bool) {
			if !loaded {
				return nil, true
			}
			started := s.StartedAt()
			if !started.Add(st.opts.Expiry).Before(now) {
				return s, false
			}
			st.logger.Debug(
				"game expired, deleting",
				"key", key,
				"started_at", started)
			n++
			return nil, true
		})
		return true
	})
	return n
}

// Run sweeps expired sessions periodically until ctx is done.
func (st *Store) Run(ctx context.Context) error {
	ticker := time.NewTicker(st.opts.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case now := <-ticker.C:
			if n := st.Sweep(now); n > 0 {
				st.logger.Info(
					"swept expired games",
					"deleted", n,
					"remaining", st.Len())
			}
		}
	}
}
