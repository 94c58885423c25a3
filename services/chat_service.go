package services

import (
	"chat-relay/contract"
	"chat-relay/domain"
	"chat-relay/runtime"
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Upgrade turns an admitted request into a live connection.
// It is only called once admission succeeded.
type Upgrade func() (contract.Conn, error)

type IChatService interface {
	Connect(ctx context.Context, req runtime.ConnectionRequest, upgrade Upgrade) error
	Stats() domain.RegistryStats
}

type ChatService struct {
	log          *slog.Logger
	gatekeeper   *runtime.Gatekeeper
	registry     contract.IRegistry
	censor       contract.Censor
	writeTimeout time.Duration
}

func NewChatService(
	log *slog.Logger,
	gatekeeper *runtime.Gatekeeper,
	registry contract.IRegistry,
	censor contract.Censor,
	writeTimeout time.Duration,
) *ChatService {
	return &ChatService{
		log:          log,
		gatekeeper:   gatekeeper,
		registry:     registry,
		censor:       censor,
		writeTimeout: writeTimeout,
	}
}

// Connect admits the request, upgrades the transport and runs the session until it closes.
// An *runtime.AdmissionError is returned before upgrade is called; the caller still
// owns the unupgraded request and answers it.
func (s *ChatService) Connect(ctx context.Context, req runtime.ConnectionRequest, upgrade Upgrade) error {
	admission, err := s.gatekeeper.Admit(req)
	if err != nil {
		return err
	}

	conn, err := upgrade()
	if err != nil {
		return fmt.Errorf("upgrade failed: %w", err)
	}

	s.log.Info("Connection admitted", "subject", admission.SubjectID, "room", admission.Room.String())
	session := runtime.NewSession(s.log, s.registry, conn, admission, s.censor, s.writeTimeout)
	return session.Run(ctx)
}

func (s *ChatService) Stats() domain.RegistryStats {
	return s.registry.Stats()
}
