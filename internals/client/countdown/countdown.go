// Package countdown: timer quiz sebagai state machine.
//
//	Idle → Running → Expired → Submitted
//	            └──────────────→ Submitted
//
// Penyimpanan sisa waktu diserahkan ke caller lewat WithPersist.
package countdown

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

type State int

const (
	Idle State = iota
	Running
	Expired
	Submitted
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Expired:
		return "expired"
	case Submitted:
		return "submitted"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

var (
	ErrNotIdle          = errors.New("countdown: already started")
	ErrNotStarted       = errors.New("countdown: not started")
	ErrAlreadySubmitted = errors.New("countdown: already submitted")
)

type Countdown struct {
	mu        sync.Mutex
	state     State
	limit     time.Duration
	remaining time.Duration
	done      chan struct{} // ditutup saat keluar dari Running

	persist  func(remaining time.Duration)
	onExpire func()
}

type Option func(*Countdown)

// WithPersist dipanggil setiap tick (dan saat Start) dengan sisa waktu.
func WithPersist(fn func(remaining time.Duration)) Option {
	return func(c *Countdown) { c.persist = fn }
}

// OnExpire dipanggil tepat sekali saat waktu habis.
func OnExpire(fn func()) Option {
	return func(c *Countdown) { c.onExpire = fn }
}

func New(limit time.Duration, opts ...Option) *Countdown {
	if limit < 0 {
		limit = 0
	}
	c := &Countdown{
		state:     Idle,
		limit:     limit,
		remaining: limit,
		done:      make(chan struct{}),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Start: Idle → Running. remaining hasil restore dijepit ke [0, limit];
// nilai <= 0 langsung Expired.
func (c *Countdown) Start(remaining time.Duration) error {
	c.mu.Lock()
	if c.state != Idle {
		c.mu.Unlock()
		return ErrNotIdle
	}
	if remaining > c.limit {
		remaining = c.limit
	}
	if remaining < 0 {
		remaining = 0
	}
	c.remaining = remaining
	c.state = Running
	c.done = make(chan struct{})
	expired := c.expireLocked()
	c.mu.Unlock()

	c.notify(remaining, expired)
	return nil
}

// Tick mengurangi sisa waktu; hanya berlaku saat Running.
func (c *Countdown) Tick(d time.Duration) State {
	c.mu.Lock()
	if c.state != Running {
		s := c.state
		c.mu.Unlock()
		return s
	}
	c.remaining -= d
	if c.remaining < 0 {
		c.remaining = 0
	}
	remaining := c.remaining
	expired := c.expireLocked()
	s := c.state
	c.mu.Unlock()

	c.notify(remaining, expired)
	return s
}

// expireLocked: Running dengan sisa 0 → Expired. true = transisi terjadi.
func (c *Countdown) expireLocked() bool {
	if c.state != Running || c.remaining > 0 {
		return false
	}
	c.state = Expired
	close(c.done)
	return true
}

func (c *Countdown) notify(remaining time.Duration, expired bool) {
	if c.persist != nil {
		c.persist(remaining)
	}
	if expired && c.onExpire != nil {
		c.onExpire()
	}
}

// Submit: Running/Expired → Submitted.
func (c *Countdown) Submit() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch c.state {
	case Running:
		close(c.done)
	case Expired:
	case Submitted:
		return ErrAlreadySubmitted
	default:
		return ErrNotStarted
	}
	c.state = Submitted
	return nil
}

// Stop: Running → Idle (quiz ditutup sebelum selesai). Sisa waktu dipertahankan.
func (c *Countdown) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != Running {
		return
	}
	c.state = Idle
	close(c.done)
}

func (c *Countdown) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Countdown) Remaining() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.remaining
}

// Elapsed = limit - remaining (dasar time_taken).
func (c *Countdown) Elapsed() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.limit - c.remaining
}

// Run men-drive Tick dari ticks (biasanya time.Ticker 1 detik) sampai ctx
// selesai atau countdown keluar dari Running. Mengembalikan state terakhir.
func (c *Countdown) Run(ctx context.Context, ticks <-chan time.Time, step time.Duration) State {
	c.mu.Lock()
	done := c.done
	running := c.state == Running
	c.mu.Unlock()
	if !running {
		return c.State()
	}

	for {
		select {
		case <-ctx.Done():
			return c.State()
		case <-done:
			return c.State()
		case <-ticks:
			if c.Tick(step) != Running {
				// callback expiry bisa sudah submit
				return c.State()
			}
		}
	}
}

// Format → "m:ss".
func Format(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	secs := int(d / time.Second)
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}
