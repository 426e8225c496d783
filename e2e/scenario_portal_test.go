package e2e

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
)

type testPortalSuite struct {
	BaseHTTPSuite
}

func TestPortalSuite(t *testing.T) {
	suite.Run(t, &testPortalSuite{})
}

func (s *testPortalSuite) TestFullFarmerFlow() {
	email := fmt.Sprintf("farmer-%s@example.com", uuid.New())
	password := "ComplexPass123!"
	var token string

	// --- STEP 0: REGISTER ---
	s.Run("Step 0: Register a fresh account", func() {
		s.Step("Registering " + email)
		var payload struct {
			Token string `json:"token"`
		}
		status := s.DoJSON(http.MethodPost, "/api/auth/register", "", map[string]string{
			"username": "ramesh",
			"email":    email,
			"password": password,
		}, &payload)
		s.Require().Equal(http.StatusCreated, status)
		s.Require().NotEmpty(payload.Token)
		token = payload.Token
	})

	// --- STEP 1: GREETING INTENT ---
	s.Run("Step 1: Greeting returns the main menu", func() {
		s.Step("Saying hello")
		var resp struct {
			Response struct {
				Text    string `json:"text"`
				Options []struct {
					Label string `json:"label"`
				} `json:"options"`
			} `json:"response"`
			Persisted *bool `json:"persisted"`
		}
		status := s.DoJSON(http.MethodPost, "/api/chat", token, map[string]string{
			"prompt": "hello",
		}, &resp)
		s.Require().Equal(http.StatusOK, status)
		s.Require().Len(resp.Response.Options, 4)
		s.Require().NotNil(resp.Persisted)
		s.Require().True(*resp.Persisted, "Turn should be stored for a logged-in farmer")
	})

	// --- STEP 2: MSP INTENT ---
	s.Run("Step 2: MSP question routes to rates", func() {
		s.Step("Asking for msp rates")
		var resp struct {
			Response struct {
				Text string `json:"text"`
			} `json:"response"`
		}
		status := s.DoJSON(http.MethodPost, "/api/chat", token, map[string]string{
			"prompt": "What are the minimum support price rates?",
		}, &resp)
		s.Require().Equal(http.StatusOK, status)
		s.Require().NotEmpty(resp.Response.Text)
	})

	// --- STEP 3: HISTORY ---
	s.Run("Step 3: History replays both turns in order", func() {
		s.Step("Fetching conversation history")
		var history []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		}
		status := s.DoJSON(http.MethodGet, "/api/chat/history", token, nil, &history)
		s.Require().Equal(http.StatusOK, status)
		s.Require().Len(history, 4, "Two turns stored as four records")
		s.Require().Equal("user", history[0].Role)
		s.Require().Equal("bot", history[1].Role)
		s.Require().Equal("hello", history[0].Content)
	})

	// --- STEP 4: MARKETPLACE ---
	s.Run("Step 4: Publish and find a listing", func() {
		s.Step("Creating a wheat listing")
		var listing struct {
			ID string `json:"id"`
		}
		status := s.DoJSON(http.MethodPost, "/api/marketplace", token, map[string]any{
			"title":    "Organic Wheat",
			"crop":     "Wheat",
			"price":    2500,
			"quantity": "50 quintals",
			"location": "Punjab",
		}, &listing)
		s.Require().Equal(http.StatusCreated, status)
		s.Require().NotEmpty(listing.ID)

		s.Step("Searching the marketplace index")
		var result struct {
			Total uint64 `json:"total"`
		}
		status = s.DoJSON(http.MethodGet, "/api/search?q=wheat", "", nil, &result)
		s.Require().Equal(http.StatusOK, status)
		s.Require().NotZero(result.Total)
	})

	// --- STEP 5: GUEST IS STATELESS ---
	s.Run("Step 5: Guest chat leaves no persisted flag", func() {
		s.Step("Chatting without a token")
		var resp struct {
			Persisted *bool `json:"persisted"`
		}
		status := s.DoJSON(http.MethodPost, "/api/chat", "", map[string]string{
			"prompt": "menu",
		}, &resp)
		s.Require().Equal(http.StatusOK, status)
		s.Require().Nil(resp.Persisted)
	})
}
