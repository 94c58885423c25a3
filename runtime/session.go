package runtime

import (
	"chat-relay/contract"
	"chat-relay/domain"
	"chat-relay/errors"
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
)

type State int32

const (
	StateIdle State = iota
	StateJoining
	StateActive
	StateLeaving
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateJoining:
		return "joining"
	case StateActive:
		return "active"
	case StateLeaving:
		return "leaving"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Session owns one admitted connection from join to teardown.
//
// Lifecycle: Joining -> Active -> Leaving -> Closed.
// While Active, an outbound loop (room -> connection) and an inbound loop
// (connection -> room) run in one errgroup. Both loops only ever return an
// error, so the first one to stop cancels its sibling. The connection is
// closed as soon as the shared context is done, which unblocks a pending read.
// Nothing is retried: any I/O failure ends the session.
type Session struct {
	log          *slog.Logger
	registry     contract.IRegistry
	conn         contract.Conn
	admission    domain.Admission
	censor       contract.Censor
	writeTimeout time.Duration
	now          func() time.Time
	state        atomic.Int32
}

// NewSession prepares a session for an admitted peer. censor may be nil.
func NewSession(
	log *slog.Logger,
	registry contract.IRegistry,
	conn contract.Conn,
	admission domain.Admission,
	censor contract.Censor,
	writeTimeout time.Duration,
) *Session {
	return &Session{
		log: log.With(
			"subject", admission.SubjectID,
			"user", admission.DisplayName,
			"room", admission.Room.String(),
		),
		registry:     registry,
		conn:         conn,
		admission:    admission,
		censor:       censor,
		writeTimeout: writeTimeout,
		now:          time.Now,
	}
}

func (s *Session) State() State {
	return State(s.state.Load())
}

// Run blocks until the session is closed. A session runs at most once.
// It returns nil when the peer closed the connection or ctx was canceled.
func (s *Session) Run(ctx context.Context) error {
	if !s.state.CompareAndSwap(int32(StateIdle), int32(StateJoining)) {
		return errors.ErrSessionStarted
	}

	room, subscription := s.join()
	defer s.close(room, subscription)

	s.state.Store(int32(StateActive))
	s.log.Info("Session active")

	group, loopCtx := errgroup.WithContext(ctx)
	stop := context.AfterFunc(loopCtx, func() {
		_ = s.conn.Close()
	})
	defer stop()

	group.Go(func() error {
		defer s.leaving()
		return s.outbound(loopCtx, subscription)
	})
	group.Go(func() error {
		defer s.leaving()
		return s.inbound(loopCtx, room)
	})

	err := group.Wait()
	switch {
	case stderrors.Is(err, errors.ErrPeerClosed):
		return nil
	case ctx.Err() != nil:
		return nil
	default:
		return err
	}
}

// join registers presence, attaches to the room and announces the peer.
// The subscription is taken before the notice so the peer sees its own join.
func (s *Session) join() (contract.Broadcaster, contract.Subscription) {
	s.registry.AddMember(s.admission.SubjectID, s.admission.DisplayName)
	room := s.registry.GetOrCreate(s.admission.Room)
	subscription := room.Subscribe()
	room.Publish(domain.JoinedNotice(s.admission.DisplayName, s.now()))
	return room, subscription
}

func (s *Session) leaving() {
	s.state.CompareAndSwap(int32(StateActive), int32(StateLeaving))
}

// close runs exactly once per session, after both loops returned.
func (s *Session) close(room contract.Broadcaster, subscription contract.Subscription) {
	subscription.Close()
	_ = s.conn.Close()

	// The entry may already belong to a newer connection of the same subject
	if user, ok := s.registry.RemoveMember(s.admission.SubjectID); ok {
		room.Publish(domain.LeftNotice(user.DisplayName, s.now()))
	}
	s.state.Store(int32(StateClosed))
	s.log.Info("Session closed")
}

func (s *Session) outbound(ctx context.Context, subscription contract.Subscription) error {
	for {
		envelope, missed, err := subscription.Next(ctx)
		if err != nil {
			return err
		}
		if missed > 0 {
			s.log.Warn("Subscriber lagged behind, envelopes dropped", "missed", missed)
		}

		frame, err := envelope.Encode()
		if err != nil {
			s.log.Error("Unable to encode envelope", "kind", envelope.Kind, "error", err)
			continue
		}

		if err := s.write(ctx, frame); err != nil {
			return fmt.Errorf("%w: %v", errors.ErrOutboundFailed, err)
		}
	}
}

func (s *Session) write(ctx context.Context, frame string) error {
	if s.writeTimeout <= 0 {
		return s.conn.WriteText(ctx, frame)
	}
	writeCtx, cancel := context.WithTimeout(ctx, s.writeTimeout)
	defer cancel()
	return s.conn.WriteText(writeCtx, frame)
}

func (s *Session) inbound(ctx context.Context, room contract.Broadcaster) error {
	for {
		frame, err := s.conn.ReadFrame(ctx)
		if err != nil {
			return fmt.Errorf("%w: %v", errors.ErrInboundFailed, err)
		}

		switch frame.Kind {
		case domain.FrameClose:
			return errors.ErrPeerClosed
		case domain.FrameText:
			body := frame.Payload
			if s.censor != nil {
				body = s.censor.Censor(body)
			}
			room.Publish(domain.NewUserMessage(s.admission.SubjectID, s.admission.DisplayName, body, s.now()))
		default:
			s.log.Debug("Ignoring non-text frame", "kind", frame.Kind)
		}
	}
}
