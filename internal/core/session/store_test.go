package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/perfilapp/perfil/internal/core/domain"
	"github.com/perfilapp/perfil/internal/core/ports"
)

// stubSource delivers notifications synchronously when Emit is called.
type stubSource struct {
	mu           sync.Mutex
	listeners    []ports.SessionListener
	initial      *domain.Identity
	subscribes   int
	unsubscribes int
}

func (s *stubSource) OnSessionChange(l ports.SessionListener) func() {
	s.mu.Lock()
	s.subscribes++
	s.listeners = append(s.listeners, l)
	initial := s.initial
	s.mu.Unlock()

	l(initial)
	return func() {
		s.mu.Lock()
		s.unsubscribes++
		s.listeners = nil
		s.mu.Unlock()
	}
}

func (s *stubSource) Emit(identity *domain.Identity) {
	s.mu.Lock()
	ls := append([]ports.SessionListener(nil), s.listeners...)
	s.mu.Unlock()
	for _, l := range ls {
		l(identity)
	}
}

func TestStore_InitialState(t *testing.T) {
	store := NewStore(zerolog.Nop())

	state := store.Snapshot()
	if state.Ready || state.Identity != nil {
		t.Fatalf("expected not-ready empty state, got %+v", state)
	}
	if store.View() != domain.ViewLoading {
		t.Fatalf("expected loading view, got %s", store.View())
	}
}

func TestStore_AttachMarksReady(t *testing.T) {
	src := &stubSource{}
	store := NewStore(zerolog.Nop())

	if err := store.Attach(src); err != nil {
		t.Fatalf("attach: %v", err)
	}
	if store.View() != domain.ViewUnauthenticated {
		t.Fatalf("expected unauthenticated after initial notification, got %s", store.View())
	}

	src.Emit(&domain.Identity{ID: "u1", Email: "ana@example.com"})
	state := store.Snapshot()
	if !state.Ready || state.Identity == nil || state.Identity.ID != "u1" {
		t.Fatalf("unexpected state: %+v", state)
	}

	src.Emit(nil)
	if store.View() != domain.ViewUnauthenticated {
		t.Fatalf("expected unauthenticated after sign-out, got %s", store.View())
	}
}

func TestStore_AttachOnlyOnce(t *testing.T) {
	src := &stubSource{}
	store := NewStore(zerolog.Nop())

	if err := store.Attach(src); err != nil {
		t.Fatalf("attach: %v", err)
	}
	if err := store.Attach(src); !errors.Is(err, ErrAlreadyAttached) {
		t.Fatalf("expected ErrAlreadyAttached, got %v", err)
	}
	if src.subscribes != 1 {
		t.Fatalf("expected exactly one subscription, got %d", src.subscribes)
	}
}

func TestStore_DetachIsIdempotent(t *testing.T) {
	src := &stubSource{}
	store := NewStore(zerolog.Nop())
	_ = store.Attach(src)

	store.Detach()
	store.Detach()

	if src.unsubscribes != 1 {
		t.Fatalf("expected exactly one unsubscribe, got %d", src.unsubscribes)
	}
}

func TestStore_SnapshotIsIsolated(t *testing.T) {
	src := &stubSource{}
	store := NewStore(zerolog.Nop())
	_ = store.Attach(src)

	id := &domain.Identity{ID: "u1", Email: "ana@example.com"}
	src.Emit(id)
	id.Email = "mutated@example.com"

	if got := store.Snapshot().Identity.Email; got != "ana@example.com" {
		t.Fatalf("store state leaked caller mutation: %s", got)
	}
}

func TestStore_WatchDeliversLatest(t *testing.T) {
	src := &stubSource{}
	store := NewStore(zerolog.Nop())

	ch, cancel := store.Watch()
	defer cancel()

	if first := <-ch; first.Ready {
		t.Fatalf("expected primed not-ready state, got %+v", first)
	}

	_ = store.Attach(src)
	src.Emit(&domain.Identity{ID: "u1"})
	src.Emit(&domain.Identity{ID: "u2"})

	select {
	case got := <-ch:
		if got.Identity == nil || got.Identity.ID != "u2" {
			t.Fatalf("expected latest state u2, got %+v", got)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for state")
	}

	select {
	case got := <-ch:
		t.Fatalf("expected no further state, got %+v", got)
	default:
	}
}

func TestStore_DetachClosesWatchers(t *testing.T) {
	store := NewStore(zerolog.Nop())
	_ = store.Attach(&stubSource{})

	ch, _ := store.Watch()
	<-ch
	store.Detach()

	if _, ok := <-ch; ok {
		t.Fatal("expected watcher channel to be closed")
	}

	late, cancel := store.Watch()
	defer cancel()
	<-late
	if _, ok := <-late; ok {
		t.Fatal("expected watch after detach to be closed")
	}
}

func TestStore_Await(t *testing.T) {
	src := &stubSource{}
	store := NewStore(zerolog.Nop())
	_ = store.Attach(src)

	done := make(chan domain.SessionState, 1)
	go func() {
		state, err := store.Await(context.Background(), domain.ViewAuthenticated)
		if err != nil {
			t.Errorf("await: %v", err)
		}
		done <- state
	}()

	src.Emit(&domain.Identity{ID: "u1"})

	select {
	case state := <-done:
		if state.Identity == nil || state.Identity.ID != "u1" {
			t.Fatalf("unexpected state: %+v", state)
		}
	case <-time.After(time.Second):
		t.Fatal("await did not return")
	}
}

func TestStore_AwaitTimesOut(t *testing.T) {
	store := NewStore(zerolog.Nop())
	_ = store.Attach(&stubSource{})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	state, err := store.Await(ctx, domain.ViewAuthenticated)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
	if state.View() != domain.ViewUnauthenticated {
		t.Fatalf("expected latest state, got %s", state.View())
	}
}

func TestStore_AwaitAfterDetach(t *testing.T) {
	store := NewStore(zerolog.Nop())
	_ = store.Attach(&stubSource{})
	store.Detach()

	if _, err := store.Await(context.Background(), domain.ViewAuthenticated); !errors.Is(err, ErrDetached) {
		t.Fatalf("expected ErrDetached, got %v", err)
	}
}
