// Package session holds the client-local belief about who is signed in.
//
// The Store is written only by the identity service's change notifications.
// Readers get whole SessionState values; an identity and its readiness flag
// are always replaced together.
package session

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"github.com/perfilapp/perfil/internal/core/domain"
	"github.com/perfilapp/perfil/internal/core/ports"
)

var (
	ErrAlreadyAttached = errors.New("session store already attached")
	ErrDetached        = errors.New("session store detached")
)

// Store is the single shared session value.
type Store struct {
	mu       sync.RWMutex
	state    domain.SessionState
	watchers map[int]chan domain.SessionState
	nextID   int
	closed   bool

	attachMu    sync.Mutex
	attached    bool
	unsubscribe func()
	detachOnce  sync.Once

	log zerolog.Logger
}

// NewStore returns a Store in the initial not-ready, signed-out state.
func NewStore(log zerolog.Logger) *Store {
	return &Store{
		watchers: make(map[int]chan domain.SessionState),
		log:      log,
	}
}

// Attach registers the store's listener with source. It may be called once.
func (s *Store) Attach(source ports.SessionSource) error {
	s.attachMu.Lock()
	defer s.attachMu.Unlock()

	if s.attached {
		return ErrAlreadyAttached
	}
	s.attached = true
	s.unsubscribe = source.OnSessionChange(s.handle)
	s.log.Debug().Msg("session listener attached")
	return nil
}

// Detach releases the registration. Calls after the first are no-ops.
func (s *Store) Detach() {
	s.detachOnce.Do(func() {
		s.attachMu.Lock()
		unsubscribe := s.unsubscribe
		s.attachMu.Unlock()

		if unsubscribe != nil {
			unsubscribe()
		}

		s.mu.Lock()
		s.closed = true
		for id, ch := range s.watchers {
			close(ch)
			delete(s.watchers, id)
		}
		s.mu.Unlock()

		s.log.Debug().Msg("session listener detached")
	})
}

// Snapshot returns the current state.
func (s *Store) Snapshot() domain.SessionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// View is shorthand for Snapshot().View().
func (s *Store) View() domain.ViewState {
	return s.Snapshot().View()
}

// Watch returns a channel that always holds the latest state. A slow reader
// skips intermediate states but never sees them out of order. The channel
// is primed with the current state and closed on Detach or cancel.
func (s *Store) Watch() (<-chan domain.SessionState, func()) {
	ch := make(chan domain.SessionState, 1)

	s.mu.Lock()
	ch <- s.state
	if s.closed {
		s.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	id := s.nextID
	s.nextID++
	s.watchers[id] = ch
	s.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.mu.Lock()
			if _, ok := s.watchers[id]; ok {
				close(ch)
				delete(s.watchers, id)
			}
			s.mu.Unlock()
		})
	}
	return ch, cancel
}

// Await blocks until the store shows view. It returns the matching state,
// or the latest state with ctx's error or ErrDetached.
func (s *Store) Await(ctx context.Context, view domain.ViewState) (domain.SessionState, error) {
	ch, cancel := s.Watch()
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			return s.Snapshot(), ctx.Err()
		case state, ok := <-ch:
			if !ok {
				return s.Snapshot(), ErrDetached
			}
			if state.View() == view {
				return state, nil
			}
		}
	}
}

func (s *Store) handle(identity *domain.Identity) {
	next := domain.SessionState{Ready: true}
	if identity != nil {
		snapshot := *identity
		next.Identity = &snapshot
	}

	s.mu.Lock()
	s.state = next
	for _, ch := range s.watchers {
		// Drop the stale value so the newest one always fits.
		select {
		case <-ch:
		default:
		}
		ch <- next
	}
	s.mu.Unlock()

	ev := s.log.Info().Str("view", string(next.View()))
	if next.Identity != nil {
		ev = ev.Str("identity_id", next.Identity.ID)
	}
	ev.Msg("session changed")
}
