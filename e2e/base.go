package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/gookit/color"
	gows "github.com/gorilla/websocket"
	"github.com/stretchr/testify/suite"
)

type BaseRelaySuite struct {
	suite.Suite
	Config Config
	client *http.Client
}

// SetupSuite loads the environment configuration before running tests
func (s *BaseRelaySuite) SetupSuite() {
	var err error
	s.Config, err = LoadConfig()
	s.Require().NoError(err)
	if s.Config.RelayAddr == "" {
		s.T().Skip("RELAY_ADDR is not set")
	}
	s.client = &http.Client{Timeout: 10 * time.Second}
}

// Step prints a colorized header for a scenario step
func (s *BaseRelaySuite) Step(t *testing.T, name string) {
	header := fmt.Sprintf("  ====== %s ======", name)
	if s.Config.Colours {
		header = color.New(color.BgBlack, color.FgGreen).Render(header)
	}
	t.Log(header)
}

// PostJSON sends body to path and decodes the answer into out when out is not nil
func (s *BaseRelaySuite) PostJSON(path string, body any, out any) int {
	data, err := json.Marshal(body)
	s.Require().NoError(err)

	start := time.Now()
	response, err := s.client.Post("http://"+s.Config.RelayAddr+path, "application/json", bytes.NewReader(data))
	s.Require().NoError(err)
	defer response.Body.Close()

	raw, err := io.ReadAll(response.Body)
	s.Require().NoError(err)
	s.T().Logf("POST %s [%d] in %v", path, response.StatusCode, time.Since(start))
	if s.Config.DebugJSON {
		s.T().Log("RESPONSE:\n" + string(raw))
	}

	if out != nil && len(raw) > 0 {
		s.Require().NoError(json.Unmarshal(raw, out))
	}
	return response.StatusCode
}

// Dial opens a relay connection for token in room
func (s *BaseRelaySuite) Dial(token, room string) (*gows.Conn, *http.Response, error) {
	query := url.Values{}
	query.Set("token", token)
	if room != "" {
		query.Set("room", room)
	}
	endpoint := url.URL{Scheme: "ws", Host: s.Config.RelayAddr, Path: "/ws", RawQuery: query.Encode()}
	return gows.DefaultDialer.Dial(endpoint.String(), nil)
}
