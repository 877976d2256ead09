package response

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/Veraticus/chat-notify/pkg/logging"
	"github.com/Veraticus/chat-notify/pkg/types"
)

// DefaultTick is the host's tick length, 20 ticks per second.
const DefaultTick = 50 * time.Millisecond

// Sender delivers one reply.
type Sender interface {
	Send(resp types.ScheduledResponse) error
}

// Dispatcher realizes scheduled replies with timers. Replies sharing a delay
// are sent by one timer in input order.
type Dispatcher struct {
	sender Sender
	tick   time.Duration
	logger zerolog.Logger

	mu     sync.Mutex
	timers map[uint64]*time.Timer
	nextID uint64
	closed bool

	inflight sync.WaitGroup
}

// NewDispatcher creates a dispatcher. A non-positive tick uses DefaultTick.
func NewDispatcher(sender Sender, tick time.Duration) *Dispatcher {
	if tick <= 0 {
		tick = DefaultTick
	}
	return &Dispatcher{
		sender: sender,
		tick:   tick,
		logger: logging.GetLogger("dispatcher"),
		timers: make(map[uint64]*time.Timer),
	}
}

// Delay converts ticks to wall time.
func (d *Dispatcher) Delay(ticks int) time.Duration {
	return time.Duration(ticks) * d.tick
}

// Dispatch schedules every reply. It returns immediately.
func (d *Dispatcher) Dispatch(responses []types.ScheduledResponse) {
	if len(responses) == 0 {
		return
	}

	var order []int
	groups := make(map[int][]types.ScheduledResponse)
	for _, r := range responses {
		if _, ok := groups[r.DelayTicks]; !ok {
			order = append(order, r.DelayTicks)
		}
		groups[r.DelayTicks] = append(groups[r.DelayTicks], r)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	for _, ticks := range order {
		batch := groups[ticks]
		id := d.nextID
		d.nextID++
		d.inflight.Add(1)
		d.timers[id] = time.AfterFunc(d.Delay(ticks), func() {
			d.fire(id, batch)
		})
	}
}

func (d *Dispatcher) fire(id uint64, batch []types.ScheduledResponse) {
	defer d.inflight.Done()

	d.mu.Lock()
	if _, ok := d.timers[id]; !ok {
		d.mu.Unlock()
		return
	}
	delete(d.timers, id)
	d.mu.Unlock()

	for _, r := range batch {
		if err := d.sender.Send(r); err != nil {
			d.logger.Warn().Err(err).Str("kind", r.Kind.String()).Str("payload", r.Payload).Msg("Response not sent")
			continue
		}
		d.logger.Debug().Str("kind", r.Kind.String()).Str("payload", r.Payload).Msg("Response sent")
	}
}

// HandleOutcome implements interfaces.OutcomeHandler.
func (d *Dispatcher) HandleOutcome(_ types.TextEvent, outcome *types.MatchOutcome) {
	d.Dispatch(outcome.Responses)
}

// Pending returns the number of timers that have not fired.
func (d *Dispatcher) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.timers)
}

// Drain waits until every scheduled reply has been sent or cancelled. It
// must not run concurrently with Dispatch.
func (d *Dispatcher) Drain(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		d.inflight.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close cancels every pending reply. Later calls to Dispatch are ignored.
func (d *Dispatcher) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	for id, t := range d.timers {
		if t.Stop() {
			d.inflight.Done()
		}
		delete(d.timers, id)
	}
	d.closed = true
	return nil
}
