package errors

import "fmt"

var (
	ErrWorkerPanic = fmt.Errorf("worker panic")

	// Admission
	ErrMissingCredential   = fmt.Errorf("missing credential")
	ErrMalformedCredential = fmt.Errorf("malformed credential")
	ErrExpiredCredential   = fmt.Errorf("expired credential")
	ErrInvalidSignature    = fmt.Errorf("invalid credential signature")

	// Session
	ErrSessionStarted = fmt.Errorf("session already started")
	ErrPeerClosed     = fmt.Errorf("peer closed the connection")
	ErrInboundFailed  = fmt.Errorf("inbound loop failed")
	ErrOutboundFailed = fmt.Errorf("outbound loop failed")

	// Accounts
	ErrInvalidPassword    = fmt.Errorf("invalid password")
	ErrInvalidCredentials = fmt.Errorf("invalid credentials")
	ErrUserAlreadyExists  = fmt.Errorf("user already exists")
	ErrUserNotFound       = fmt.Errorf("user not found")
	ErrTokenGeneration    = fmt.Errorf("token generation failed")
	ErrInvalidPayload     = fmt.Errorf("invalid payload")
)
