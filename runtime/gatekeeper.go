package runtime

import (
	"chat-relay/auth"
	"chat-relay/contract"
	"chat-relay/domain"
	stderrors "errors"
	"fmt"
	"log/slog"
)

// ConnectionRequest is what the transport knows about a peer before upgrading.
type ConnectionRequest struct {
	QueryToken    string
	Authorization string
	Room          string
}

// AdmissionError is returned for every refused connection request.
type AdmissionError struct {
	Reason auth.RejectReason
	Err    error
}

func (e *AdmissionError) Error() string {
	return fmt.Sprintf("admission refused (%s): %v", e.Reason, e.Err)
}

func (e *AdmissionError) Unwrap() error {
	return e.Err
}

// Gatekeeper classifies connection requests. It allocates nothing:
// a refused peer never reaches the registry.
type Gatekeeper struct {
	log       *slog.Logger
	authority contract.TokenAuthority
}

func NewGatekeeper(log *slog.Logger, authority contract.TokenAuthority) *Gatekeeper {
	return &Gatekeeper{log: log, authority: authority}
}

// Admit resolves the credential, validates it and derives the session identity.
// The query token wins over the Authorization header.
func (g *Gatekeeper) Admit(req ConnectionRequest) (domain.Admission, error) {
	token, ok := credential(req)
	if !ok {
		g.log.Debug("Connection refused", "reason", auth.Missing)
		return domain.Admission{}, &AdmissionError{Reason: auth.Missing, Err: auth.Missing.Err()}
	}

	subjectID, err := g.authority.Validate(token)
	if err != nil {
		reason := auth.Malformed
		var reject *auth.RejectError
		if stderrors.As(err, &reject) {
			reason = reject.Reason
		}
		g.log.Debug("Connection refused", "reason", reason, "error", err)
		return domain.Admission{}, &AdmissionError{Reason: reason, Err: err}
	}

	return domain.Admission{
		SubjectID:   subjectID,
		DisplayName: domain.DisplayName(subjectID),
		Room:        domain.ResolveRoom(req.Room),
	}, nil
}

func credential(req ConnectionRequest) (string, bool) {
	if req.QueryToken != "" {
		return req.QueryToken, true
	}
	return auth.BearerToken(req.Authorization)
}
