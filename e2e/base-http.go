package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gookit/color"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
)

type BaseHTTPSuite struct {
	suite.Suite
	Config Config
	client *http.Client
}

// SetupSuite loads the environment configuration and skips when no server is configured
func (s *BaseHTTPSuite) SetupSuite() {
	var err error
	s.Config, err = LoadConfig()
	s.Require().NoError(err)
	if s.Config.ServerAddr == "" {
		s.T().Skip("E2E_SERVER_ADDR is not set")
	}
	s.client = &http.Client{Timeout: 10 * time.Second}
}

// Step prints a colorized header for a scenario step
func (s *BaseHTTPSuite) Step(name string) {
	header := fmt.Sprintf("  ====== %s ======", name)
	if s.Config.Colours {
		header = color.New(color.BgBlack, color.FgGreen).Render(header)
	}
	s.T().Log(header)
}

// Call sends body as JSON and decodes the response into out when it is not nil.
// It returns the status code.
func (s *BaseHTTPSuite) Call(ctx context.Context, method, path, token string, body, out any) int {
	status, raw, err := s.do(ctx, method, path, token, body)
	s.Require().NoError(err, "Failed to reach server at "+s.Config.ServerAddr)
	if out != nil && status < http.StatusBadRequest {
		s.Require().NoError(json.Unmarshal(raw, out))
	}
	return status
}

// do never fails the test, it is safe to call from other goroutines.
func (s *BaseHTTPSuite) do(ctx context.Context, method, path, token string, body any) (int, []byte, error) {
	var reader io.Reader
	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return 0, nil, err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, strings.TrimRight(s.Config.ServerAddr, "/")+path, reader)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := s.client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, err
	}

	logBuilder := strings.Builder{}
	fmt.Fprintf(&logBuilder, "HTTP %s %s [%d] in %v", method, path, resp.StatusCode, time.Since(start))
	if s.Config.DebugJSON {
		fmt.Fprintf(&logBuilder, "\nREQUEST: %s\nRESPONSE: %s", payload, raw)
	}
	s.T().Log(logBuilder.String())
	return resp.StatusCode, raw, nil
}

type account struct {
	ID    string
	Token string
}

// Register creates a fresh student account with a unique email and resolves its id.
func (s *BaseHTTPSuite) Register(ctx context.Context, name string) account {
	var token struct {
		Token string `json:"token"`
	}
	status := s.Call(ctx, http.MethodPost, "/api/auth/register", "", map[string]any{
		"name":     name,
		"email":    fmt.Sprintf("%s-%s@e2e.test", strings.ToLower(name), uuid.NewString()[:8]),
		"password": "Correct-Horse-42",
		"role":     "student",
		"student":  map[string]any{"program": "Computer Science", "graduationYear": 2027},
	}, &token)
	s.Require().Equal(http.StatusCreated, status)

	var me struct {
		ID string `json:"id"`
	}
	s.Require().Equal(http.StatusOK, s.Call(ctx, http.MethodGet, "/api/auth", token.Token, nil, &me))
	return account{ID: me.ID, Token: token.Token}
}
