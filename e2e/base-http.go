package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gookit/color"
	"github.com/stretchr/testify/suite"
)

type BaseHTTPSuite struct {
	suite.Suite
	Config Config
	client *http.Client
}

// SetupSuite loads the environment configuration before running tests
func (s *BaseHTTPSuite) SetupSuite() {
	var err error
	s.Config, err = LoadConfig()
	s.Require().NoError(err)
	if s.Config.PortalAddr == "" {
		s.T().Skip("PORTAL_ADDR not set, skipping end-to-end suite")
	}
	s.client = &http.Client{Timeout: 30 * time.Second}
}

// Step prints a colorized header so multi-step scenarios stay readable in logs
func (s *BaseHTTPSuite) Step(name string) {
	header := fmt.Sprintf("  ====== %s ======", name)
	if s.Config.Colours {
		header = color.New(color.BgBlack, color.FgGreen).Render(header)
	}
	s.T().Log(header)
}

// DoJSON sends a JSON request to the portal and decodes the JSON response
// into out (when out is non-nil). It returns the HTTP status code and logs
// full bodies when E2E_DEBUG_JSON is enabled.
func (s *BaseHTTPSuite) DoJSON(method, path, token string, body, out any) int {
	var reader io.Reader
	var rawReq []byte
	if body != nil {
		var err error
		rawReq, err = json.Marshal(body)
		s.Require().NoError(err)
		reader = bytes.NewReader(rawReq)
	}

	req, err := http.NewRequest(method, strings.TrimRight(s.Config.PortalAddr, "/")+path, reader)
	s.Require().NoError(err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := s.client.Do(req)
	s.Require().NoError(err, "Failed to reach portal at "+s.Config.PortalAddr)
	defer resp.Body.Close()

	rawResp, err := io.ReadAll(resp.Body)
	s.Require().NoError(err)

	logBuilder := strings.Builder{}
	fmt.Fprintf(&logBuilder, "HTTP %s %s [%d] in %v", method, path, resp.StatusCode, time.Since(start))
	if s.Config.DebugJSON {
		fmt.Fprintln(&logBuilder, "\nREQUEST:")
		fmt.Fprintln(&logBuilder, string(rawReq))
		fmt.Fprintln(&logBuilder, "RESPONSE:")
		fmt.Fprintln(&logBuilder, string(rawResp))
	}
	s.T().Log(logBuilder.String())

	if out != nil && len(rawResp) > 0 {
		s.Require().NoError(json.Unmarshal(rawResp, out))
	}
	return resp.StatusCode
}
