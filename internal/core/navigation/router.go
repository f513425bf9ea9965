// Package navigation picks the screen group to present from the session.
package navigation

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/perfilapp/perfil/internal/core/domain"
)

// TransitionFunc observes a change of screen group.
type TransitionFunc func(from, to domain.ViewState)

// Router tracks the current ViewState. Screens inside a group are left alone
// by notifications that do not change the group, so an in-flight profile
// update keeps its screen; a sign-out always moves to the unauthenticated group.
type Router struct {
	mu      sync.Mutex
	current domain.ViewState
	hooks   []TransitionFunc
	log     zerolog.Logger
}

func NewRouter(log zerolog.Logger) *Router {
	return &Router{current: domain.ViewLoading, log: log}
}

// OnTransition registers fn to run after every group change.
func (r *Router) OnTransition(fn TransitionFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hooks = append(r.hooks, fn)
}

func (r *Router) Current() domain.ViewState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// Screens lists the screens of the current group, entry screen first.
func (r *Router) Screens() []domain.Screen {
	return r.Current().Screens()
}

// Apply routes state and reports whether the screen group changed.
func (r *Router) Apply(state domain.SessionState) bool {
	next := state.View()

	r.mu.Lock()
	prev := r.current
	if prev == next {
		r.mu.Unlock()
		return false
	}
	r.current = next
	hooks := append([]TransitionFunc(nil), r.hooks...)
	r.mu.Unlock()

	r.log.Info().Str("from", string(prev)).Str("to", string(next)).Msg("view transition")
	for _, fn := range hooks {
		fn(prev, next)
	}
	return true
}

// Run applies every state received on updates until the channel closes or
// ctx is cancelled.
func (r *Router) Run(ctx context.Context, updates <-chan domain.SessionState) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case state, ok := <-updates:
			if !ok {
				return nil
			}
			r.Apply(state)
		}
	}
}
