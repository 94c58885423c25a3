package main

import (
	"chat-relay/domain"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRender(t *testing.T) {
	req := require.New(t)
	at := time.Date(2024, 5, 1, 10, 30, 0, 0, time.Local)

	line := render(domain.NewUserMessage("id", "User_12345678", "hello", at), false)
	req.Equal("[10:30:00] User_12345678: hello", line)

	line = render(domain.JoinedNotice("User_12345678", at), false)
	req.Equal("[10:30:00] * User_12345678 has joined the chat.", line)

	// Colours only decorate, the text stays
	req.Contains(render(domain.NewUserMessage("id", "User_12345678", "hello", at), true), "hello")
}

func TestRelayURL(t *testing.T) {
	req := require.New(t)

	raw, err := relayURL(Config{ServerURL: "ws://localhost:3005/ws", Token: "a.b.c", Room: "rust"})
	req.NoError(err)

	parsed, err := url.Parse(raw)
	req.NoError(err)
	req.Equal("/ws", parsed.Path)
	req.Equal("a.b.c", parsed.Query().Get("token"))
	req.Equal("rust", parsed.Query().Get("room"))

	raw, err = relayURL(Config{ServerURL: "ws://localhost:3005/ws", Token: "a.b.c"})
	req.NoError(err)
	req.NotContains(raw, "room=")
}
