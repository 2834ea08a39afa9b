package control

import (
	"context"
	"sync"
	"time"

	"github.com/edaniels/golog"
	"github.com/pkg/errors"
	"go.viam.com/utils"
)

// TickFunc is one control step. It is invoked once per loop period and must
// not block past the period.
type TickFunc func(ctx context.Context) error

// Loop periodically invokes a control step at a fixed frequency. It owns a
// single background goroutine between Start and Stop.
type Loop struct {
	logger                  golog.Logger
	dt                      time.Duration
	freq                    float64
	tick                    TickFunc
	ticker                  *time.Ticker
	cancelCtx               context.Context
	cancel                  context.CancelFunc
	activeBackgroundWorkers sync.WaitGroup
	mu                      sync.Mutex
	running                 bool
}

// NewLoop constructs a loop invoking tick at the given frequency in Hz.
func NewLoop(logger golog.Logger, freqHz float64, tick TickFunc) (*Loop, error) {
	if freqHz <= 0.0 || freqHz > 200 {
		return nil, errors.Errorf("loop frequency shouldn't be 0 or above 200Hz, got %v", freqHz)
	}
	if tick == nil {
		return nil, errors.New("loop needs a tick function")
	}
	cancelCtx, cancel := context.WithCancel(context.Background())
	return &Loop{
		logger:    logger,
		freq:      freqHz,
		dt:        time.Duration(float64(time.Second) / freqHz),
		tick:      tick,
		cancelCtx: cancelCtx,
		cancel:    cancel,
	}, nil
}

// Frequency returns the loop frequency in Hz.
func (l *Loop) Frequency() float64 {
	return l.freq
}

// Running reports whether the loop has been started and not yet stopped.
func (l *Loop) Running() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.running
}

// Start begins ticking. A step error is logged and the loop keeps running;
// commanding a safe state on persistent failure is the caller's policy.
func (l *Loop) Start() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.running {
		return errors.New("loop is already running")
	}
	l.logger.Debugf("running control loop at %.1fHz (dt %v)", l.freq, l.dt)
	l.ticker = time.NewTicker(l.dt)
	l.activeBackgroundWorkers.Add(1)
	utils.ManagedGo(func() {
		for {
			select {
			case <-l.cancelCtx.Done():
				return
			case <-l.ticker.C:
				if err := l.tick(l.cancelCtx); err != nil {
					if l.cancelCtx.Err() != nil {
						return
					}
					l.logger.Errorw("control step failed", "error", err)
				}
			}
		}
	}, l.activeBackgroundWorkers.Done)
	l.running = true
	return nil
}

// Stop halts ticking and waits for the in-flight step to finish.
func (l *Loop) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.running {
		return
	}
	l.ticker.Stop()
	l.cancel()
	l.activeBackgroundWorkers.Wait()
	l.running = false
}
