package queue

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/perfilapp/perfil/internal/core/domain"
	"github.com/perfilapp/perfil/internal/core/ports"
)

// Notifier fans session changes out to subscribers. Every subscriber owns a
// queue and a goroutine, so each one sees changes in publish order and a slow
// listener never blocks the publisher or other listeners.
type Notifier struct {
	mu     sync.Mutex
	subs   map[uint64]*subscriber
	nextID uint64
	closed bool
	log    zerolog.Logger
}

func NewNotifier(log zerolog.Logger) *Notifier {
	return &Notifier{
		subs: make(map[uint64]*subscriber),
		log:  log,
	}
}

// Subscribe queues current as the first delivery to listener and returns
// the unsubscribe handle. Callers publishing under their own lock must also
// subscribe under it, or a change could slip between the two.
func (n *Notifier) Subscribe(current *domain.Identity, listener ports.SessionListener) func() {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.closed {
		return func() {}
	}

	id := n.nextID
	n.nextID++

	s := newSubscriber(id, listener, n.log)
	s.push(clone(current))
	n.subs[id] = s
	go s.run()

	return func() { n.remove(id) }
}

// Publish enqueues identity for every subscriber. It never blocks on
// listeners.
func (n *Notifier) Publish(identity *domain.Identity) {
	n.mu.Lock()
	defer n.mu.Unlock()

	for _, s := range n.subs {
		s.push(clone(identity))
	}
}

// Subscribers returns the number of attached listeners.
func (n *Notifier) Subscribers() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.subs)
}

// Close stops every subscriber. Queued deliveries that have not started are
// dropped.
func (n *Notifier) Close() {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.closed {
		return
	}
	n.closed = true
	for id, s := range n.subs {
		s.stop()
		delete(n.subs, id)
	}
}

func (n *Notifier) remove(id uint64) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if s, ok := n.subs[id]; ok {
		s.stop()
		delete(n.subs, id)
	}
}

func clone(identity *domain.Identity) *domain.Identity {
	if identity == nil {
		return nil
	}
	c := *identity
	return &c
}

type subscriber struct {
	id       uint64
	listener ports.SessionListener
	log      zerolog.Logger

	mu      sync.Mutex
	pending []*domain.Identity
	wake    chan struct{}
	done    chan struct{}
	once    sync.Once
}

func newSubscriber(id uint64, listener ports.SessionListener, log zerolog.Logger) *subscriber {
	return &subscriber{
		id:       id,
		listener: listener,
		log:      log,
		wake:     make(chan struct{}, 1),
		done:     make(chan struct{}),
	}
}

func (s *subscriber) push(identity *domain.Identity) {
	s.mu.Lock()
	s.pending = append(s.pending, identity)
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *subscriber) stop() {
	s.once.Do(func() { close(s.done) })
}

func (s *subscriber) next() (*domain.Identity, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.pending) == 0 {
		return nil, false
	}
	identity := s.pending[0]
	s.pending[0] = nil
	s.pending = s.pending[1:]
	return identity, true
}

func (s *subscriber) run() {
	for {
		select {
		case <-s.done:
			return
		case <-s.wake:
		}

		for {
			select {
			case <-s.done:
				return
			default:
			}

			identity, ok := s.next()
			if !ok {
				break
			}
			s.deliver(identity)
		}
	}
}

func (s *subscriber) deliver(identity *domain.Identity) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error().
				Interface("panic", r).
				Uint64("subscriber_id", s.id).
				Msg("session listener panicked")
		}
	}()
	s.listener(identity)
}
