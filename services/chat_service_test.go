package services

import (
	"chat-relay/auth"
	"chat-relay/contract"
	"chat-relay/domain"
	"chat-relay/mocks"
	"chat-relay/runtime"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestChatService_RejectedRequestAllocatesNothing(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)

	// Given a registry that must never be touched
	registry := mocks.NewMockIRegistry(ctrl)
	svc := NewChatService(log, runtime.NewGatekeeper(log, newAuthority()), registry, nil, time.Second)

	for _, request := range []runtime.ConnectionRequest{
		{},
		{QueryToken: "garbage"},
		{Authorization: "Token abc"},
		{Authorization: "Bearer garbage", Room: "rust"},
	} {
		upgraded := false

		// When admission fails
		err := svc.Connect(context.Background(), request, func() (contract.Conn, error) {
			upgraded = true
			return nil, nil
		})

		// Then the connection is never upgraded and no session exists
		var admissionErr *runtime.AdmissionError
		req.ErrorAs(err, &admissionErr)
		req.False(upgraded)
	}
}

func TestChatService_ExpiredTokenIsRejected(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	registry := mocks.NewMockIRegistry(ctrl)

	expired := auth.NewTokenAuthority(auth.TokenConfig{
		AccessSecret: []byte("access-secret-for-tests"),
		AccessTTL:    -time.Minute,
	})
	token, err := expired.GenerateAccessToken(uuid.NewString(), nil)
	req.NoError(err)

	svc := NewChatService(log, runtime.NewGatekeeper(log, newAuthority()), registry, nil, time.Second)
	err = svc.Connect(context.Background(), runtime.ConnectionRequest{QueryToken: token}, func() (contract.Conn, error) {
		req.Fail("upgrade must not happen")
		return nil, nil
	})

	var admissionErr *runtime.AdmissionError
	req.ErrorAs(err, &admissionErr)
	req.Equal(auth.Expired, admissionErr.Reason)
}

func TestChatService_AdmittedRequestRunsSession(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	authority := newAuthority()
	registry := runtime.NewRegistry(domain.RoomCapacity)
	svc := NewChatService(log, runtime.NewGatekeeper(log, authority), registry, nil, time.Second)

	subjectID := uuid.NewString()
	token, err := authority.GenerateAccessToken(subjectID, nil)
	req.NoError(err)

	observer := registry.GetOrCreate("rust").Subscribe()

	// Given a peer that closes right away
	conn := mocks.NewMockConn(ctrl)
	conn.EXPECT().ReadFrame(gomock.Any()).Return(domain.CloseFrame(), nil).Times(1)
	conn.EXPECT().WriteText(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	conn.EXPECT().Close().Return(nil).MinTimes(1)

	err = svc.Connect(context.Background(),
		runtime.ConnectionRequest{Authorization: "Bearer " + token, Room: "rust"},
		func() (contract.Conn, error) { return conn, nil },
	)
	req.NoError(err)

	// Then the room saw the peer join and leave
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	joined, _, err := observer.Next(ctx)
	req.NoError(err)
	req.Equal(domain.DisplayName(subjectID)+" has joined the chat.", joined.Body)
	left, _, err := observer.Next(ctx)
	req.NoError(err)
	req.Equal(domain.DisplayName(subjectID)+" has left the chat.", left.Body)

	req.Zero(svc.Stats().Members)
}
