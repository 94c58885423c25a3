package server

import (
	"chat-relay/contract"
	"chat-relay/infrastructure/websocket"
	"chat-relay/runtime"
	"chat-relay/services"
	"errors"
	"log/slog"
	"net/http"

	gows "github.com/gorilla/websocket"
)

type ChatServer struct {
	log         *slog.Logger
	chatService services.IChatService
	upgrader    *gows.Upgrader
	options     websocket.Options
}

func NewChatServer(log *slog.Logger, chatService services.IChatService,
	upgrader *gows.Upgrader, options websocket.Options) *ChatServer {
	return &ChatServer{
		log:         log,
		chatService: chatService,
		upgrader:    upgrader,
		options:     options,
	}
}

// Connect admits the request then serves the session on the upgraded connection.
// It blocks for the whole session. A rejected request is answered 401 and never upgraded.
func (s *ChatServer) Connect(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	request := runtime.ConnectionRequest{
		QueryToken:    query.Get("token"),
		Authorization: r.Header.Get("Authorization"),
		Room:          query.Get("room"),
	}

	err := s.chatService.Connect(r.Context(), request, func() (contract.Conn, error) {
		conn, err := s.upgrader.Upgrade(w, r, nil)
		if err != nil {
			// gorilla already answered the request
			return nil, err
		}
		return websocket.NewConn(conn, s.log, s.options), nil
	})

	var admissionErr *runtime.AdmissionError
	switch {
	case errors.As(err, &admissionErr):
		writeJSON(w, http.StatusUnauthorized, errorResponse{
			Error:  admissionErr.Reason.Err().Error(),
			Reason: admissionErr.Reason.String(),
		})
	case err != nil:
		s.log.Warn("Session ended with error", "error", err)
	}
}

type healthResponse struct {
	Status  string `json:"status"`
	Rooms   int    `json:"rooms"`
	Members int    `json:"members"`
}

func (s *ChatServer) Health(w http.ResponseWriter, _ *http.Request) {
	stats := s.chatService.Stats()
	writeJSON(w, http.StatusOK, healthResponse{
		Status:  "ok",
		Rooms:   len(stats.Rooms),
		Members: stats.Members,
	})
}

// Rooms lists every room with its live subscriber count.
func (s *ChatServer) Rooms(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.chatService.Stats().Rooms)
}
