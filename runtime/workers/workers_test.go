package workers

import (
	"chat-relay/domain"
	"chat-relay/mocks"
	"context"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestStatsWorker_ReportsUntilCanceled(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	ctrl := gomock.NewController(t)
	registry := mocks.NewMockIRegistry(ctrl)

	reported := make(chan struct{}, 16)
	registry.EXPECT().
		Stats().
		DoAndReturn(func() domain.RegistryStats {
			select {
			case reported <- struct{}{}:
			default:
			}
			return domain.RegistryStats{
				Rooms:   []domain.RoomStats{{Name: domain.DefaultRoom, Subscribers: 2}},
				Members: 2,
			}
		}).
		MinTimes(1)

	ctx, cancel := context.WithCancel(context.Background())
	errs := make(chan error, 1)
	go func() { errs <- NewStatsWorker(log, registry, 10*time.Millisecond).Run(ctx) }()

	select {
	case <-reported:
	case <-time.After(time.Second):
		req.Fail("stats never reported")
	}

	// Then a canceled worker finishes cleanly
	cancel()
	select {
	case err := <-errs:
		req.NoError(err)
	case <-time.After(time.Second):
		req.Fail("stats worker still running")
	}
}

func TestHTTPServerWorker_ServesThenShutsDown(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, "pong")
	})
	worker := NewHTTPServerWorker(log, "127.0.0.1:0", handler, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	errs := make(chan error, 1)
	go func() { errs <- worker.Run(ctx) }()

	req.Eventually(func() bool { return worker.Addr() != "" }, time.Second, 5*time.Millisecond)

	response, err := http.Get("http://" + worker.Addr())
	req.NoError(err)
	body, err := io.ReadAll(response.Body)
	req.NoError(err)
	_ = response.Body.Close()
	req.Equal("pong", string(body))

	cancel()
	select {
	case err := <-errs:
		req.NoError(err)
	case <-time.After(2 * time.Second):
		req.Fail("server still running")
	}
}

func TestHTTPServerWorker_ListenFailure(t *testing.T) {
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	worker := NewHTTPServerWorker(log, "not-an-address", http.NotFoundHandler(), time.Second)

	require.Error(t, worker.Run(context.Background()))
}
