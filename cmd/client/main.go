package main

import (
	"bufio"
	"chat-relay/domain"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	gows "github.com/gorilla/websocket"
	"github.com/kelseyhightower/envconfig"
	"github.com/mama165/sdk-go/logs"
)

// Exit codes for the client application.
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

// Config defines the client-side environment variables.
type Config struct {
	ServerURL string `envconfig:"CHAT_SERVER_URL" default:"ws://localhost:3005/ws"`
	Token     string `envconfig:"CHAT_TOKEN" required:"true"`
	Room      string `envconfig:"CHAT_ROOM"`
	LogLevel  string `envconfig:"LOG_LEVEL" default:"INFO"`
	// CHAT_COLOURS toggles colorized output
	Colours bool `envconfig:"CHAT_COLOURS" default:"true"`
}

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Client error: %v\n", err)
	}
	os.Exit(code)
}

// run connects to the relay, prints every frame and sends each stdin line.
// It stops on Ctrl+C, stdin EOF or when the relay closes the connection.
func run() (int, error) {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}

	log := logs.GetLoggerFromString(config.LogLevel)

	endpoint, err := relayURL(config)
	if err != nil {
		return exitConfig, err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conn, response, err := gows.DefaultDialer.DialContext(ctx, endpoint, nil)
	if err != nil {
		if response != nil {
			body, _ := io.ReadAll(response.Body)
			return exitRuntime, fmt.Errorf("relay refused the connection (%s): %s", response.Status, body)
		}
		return exitRuntime, fmt.Errorf("could not connect to %s: %w", config.ServerURL, err)
	}
	defer func() {
		log.Info("Closing connection...")
		_ = conn.Close()
	}()

	log.Info("Connected (Ctrl+C to quit)", "server", config.ServerURL, "room", domain.ResolveRoom(config.Room).String())

	readErr := make(chan error, 1)
	go func() { readErr <- receive(conn, config.Colours) }()

	sendErr := make(chan error, 1)
	go func() { sendErr <- send(conn, os.Stdin) }()

	select {
	case <-ctx.Done():
		log.Info("Stopping client...")
	case err := <-sendErr:
		if err != nil {
			return exitRuntime, err
		}
		// stdin is exhausted, let the relay see a clean close
		deadline := time.Now().Add(time.Second)
		_ = conn.WriteControl(gows.CloseMessage, gows.FormatCloseMessage(gows.CloseNormalClosure, ""), deadline)
	case err := <-readErr:
		if gows.IsCloseError(err, gows.CloseNormalClosure, gows.CloseGoingAway) {
			return exitOK, nil
		}
		return exitRuntime, fmt.Errorf("connection lost: %w", err)
	}
	return exitOK, nil
}

func relayURL(config Config) (string, error) {
	endpoint, err := url.Parse(config.ServerURL)
	if err != nil {
		return "", fmt.Errorf("CHAT_SERVER_URL: %w", err)
	}
	query := endpoint.Query()
	query.Set("token", config.Token)
	if config.Room != "" {
		query.Set("room", config.Room)
	}
	endpoint.RawQuery = query.Encode()
	return endpoint.String(), nil
}

func receive(conn *gows.Conn, colours bool) error {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		envelope, err := domain.DecodeFrame(string(data))
		if err != nil {
			fmt.Println(string(data))
			continue
		}
		fmt.Println(render(envelope, colours))
	}
}

func send(conn *gows.Conn, input io.Reader) error {
	scanner := bufio.NewScanner(input)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		if err := conn.WriteMessage(gows.TextMessage, []byte(line)); err != nil {
			if errors.Is(err, gows.ErrCloseSent) {
				return nil
			}
			return err
		}
	}
	return scanner.Err()
}
