package service

import (
	"sync"
	"time"

	"github.com/perfilapp/perfil/internal/core/domain"
)

// operation is the Idle → InFlight → Succeeded|Failed tracker for one
// user-triggered action. A second begin while in flight is rejected.
type operation struct {
	mu     sync.Mutex
	status domain.OperationStatus
}

func newOperation() *operation {
	return &operation{status: domain.OperationStatus{State: domain.OpIdle}}
}

func (o *operation) begin() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.status.State == domain.OpInFlight {
		return domain.ErrOperationInFlight
	}
	o.status = domain.OperationStatus{State: domain.OpInFlight}
	return nil
}

func (o *operation) finish(err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if err != nil {
		o.status = domain.OperationStatus{State: domain.OpFailed, Reason: err}
		return
	}
	o.status = domain.OperationStatus{State: domain.OpSucceeded}
}

func (o *operation) snapshot() domain.OperationStatus {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.status
}

// Option configures the services in this package.
type Option func(*options)

type options struct {
	now func() time.Time
}

// WithClock overrides the time source used for record timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

func buildOptions(opts []Option) options {
	o := options{now: time.Now}
	for _, fn := range opts {
		fn(&o)
	}
	return o
}
