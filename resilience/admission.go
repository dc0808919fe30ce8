package resilience

import (
	"context"
	"sync"
	"time"
)

// AdmissionConfig configures an Admission.
type AdmissionConfig struct {
	// MaxInFlight is the number of operations admitted at once.
	// Default: 64
	MaxInFlight int

	// MaxWait is how long Acquire waits for a slot.
	// Default: 0 (refuse immediately when full)
	MaxWait time.Duration
}

// Admission limits concurrent operations.
type Admission struct {
	config AdmissionConfig
	slots  chan struct{}

	mu       sync.Mutex
	inFlight int
	peak     int
	refused  int64
}

// NewAdmission creates an Admission.
func NewAdmission(config AdmissionConfig) *Admission {
	if config.MaxInFlight <= 0 {
		config.MaxInFlight = 64
	}
	return &Admission{
		config: config,
		slots:  make(chan struct{}, config.MaxInFlight),
	}
}

// Acquire takes a slot and returns the function that gives it back. The
// release function is safe to call more than once.
func (a *Admission) Acquire(ctx context.Context) (release func(), err error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	select {
	case a.slots <- struct{}{}:
		return a.admitted(), nil
	default:
	}

	if a.config.MaxWait <= 0 {
		a.refuse()
		return nil, ErrSaturated
	}

	timer := time.NewTimer(a.config.MaxWait)
	defer timer.Stop()

	select {
	case a.slots <- struct{}{}:
		return a.admitted(), nil
	case <-timer.C:
		a.refuse()
		return nil, ErrSaturated
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (a *Admission) admitted() func() {
	a.mu.Lock()
	a.inFlight++
	a.peak = max(a.peak, a.inFlight)
	a.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			a.mu.Lock()
			a.inFlight--
			a.mu.Unlock()
			<-a.slots
		})
	}
}

func (a *Admission) refuse() {
	a.mu.Lock()
	a.refused++
	a.mu.Unlock()
}

// Stats returns a snapshot of admission counters.
func (a *Admission) Stats() AdmissionStats {
	a.mu.Lock()
	defer a.mu.Unlock()
	return AdmissionStats{
		InFlight:    a.inFlight,
		Peak:        a.peak,
		MaxInFlight: a.config.MaxInFlight,
		Refused:     a.refused,
	}
}

// AdmissionStats contains admission counters.
type AdmissionStats struct {
	InFlight    int
	Peak        int
	MaxInFlight int
	Refused     int64
}
