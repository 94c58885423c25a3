package runtime

import (
	"chat-relay/contract"
	"chat-relay/domain"
	"context"
	"sync"
	"sync/atomic"
)

type entry struct {
	seq      uint64
	envelope domain.Envelope
}

// Fanout is the broadcast endpoint of one room.
//
// Envelopes are appended to a bounded ring buffer and stamped with a
// sequence number starting at 0. Each subscriber owns a cursor on that
// sequence: a subscriber whose cursor falls behind the oldest retained
// sequence jumps forward and is told how many envelopes it missed.
//
// Publishers never wait on subscribers. Waiters are woken by closing the
// current notify channel, which is replaced on every publish.
type Fanout struct {
	mu          sync.Mutex
	buffer      []entry
	next        uint64 // sequence of the next envelope to be published
	notify      chan struct{}
	subscribers atomic.Int64
}

func NewFanout(capacity int) *Fanout {
	if capacity <= 0 {
		capacity = domain.RoomCapacity
	}
	return &Fanout{
		buffer: make([]entry, capacity),
		notify: make(chan struct{}),
	}
}

// Publish appends the envelope and returns its sequence number.
func (f *Fanout) Publish(envelope domain.Envelope) uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()

	seq := f.next
	f.buffer[seq%uint64(len(f.buffer))] = entry{seq: seq, envelope: envelope}
	f.next++

	close(f.notify)
	f.notify = make(chan struct{})
	return seq
}

// Subscribe attaches a new subscriber positioned after the last published envelope.
// Envelopes published before the call are never observed.
func (f *Fanout) Subscribe() contract.Subscription {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.subscribers.Add(1)
	return &Subscription{fanout: f, cursor: f.next}
}

// Subscribers is the number of attached subscriptions.
func (f *Fanout) Subscribers() int {
	return int(f.subscribers.Load())
}

// Published is the number of envelopes ever published.
func (f *Fanout) Published() uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.next
}

// oldest returns the lowest sequence still held in the buffer.
// Must be called with mu held.
func (f *Fanout) oldest() uint64 {
	capacity := uint64(len(f.buffer))
	if f.next <= capacity {
		return 0
	}
	return f.next - capacity
}

// Subscription is a cursor into a Fanout. It must be used by a single goroutine.
type Subscription struct {
	fanout *Fanout
	cursor uint64
	closed atomic.Bool
}

// Next blocks until an envelope is available or ctx is done.
// The second value is the number of envelopes skipped because the
// subscriber lagged more than the buffer capacity behind.
func (s *Subscription) Next(ctx context.Context) (domain.Envelope, uint64, error) {
	f := s.fanout
	for {
		f.mu.Lock()
		if s.cursor < f.next {
			var missed uint64
			if oldest := f.oldest(); s.cursor < oldest {
				missed = oldest - s.cursor
				s.cursor = oldest
			}
			e := f.buffer[s.cursor%uint64(len(f.buffer))]
			s.cursor++
			f.mu.Unlock()
			return e.envelope, missed, nil
		}
		wait := f.notify
		f.mu.Unlock()

		select {
		case <-ctx.Done():
			return domain.Envelope{}, 0, ctx.Err()
		case <-wait:
		}
	}
}

// Close detaches the subscription. It is safe to call more than once.
func (s *Subscription) Close() {
	if s.closed.CompareAndSwap(false, true) {
		s.fanout.subscribers.Add(-1)
	}
}
