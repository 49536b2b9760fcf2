package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/rxtech-lab/starpass-mcp/internal/api"
	"github.com/rxtech-lab/starpass-mcp/internal/config"
	"github.com/rxtech-lab/starpass-mcp/internal/constants"
	"github.com/rxtech-lab/starpass-mcp/internal/services"
	"github.com/stretchr/testify/suite"
)

const testAddress = "SPTQAXBNENTQAXBNENTQAXBNENTQAXBNF8JV03X"

type StreamableHTTPTestSuite struct {
	suite.Suite
	db        services.DBService
	apiServer *api.APIServer
	port      int
	client    *http.Client
}

func (suite *StreamableHTTPTestSuite) SetupSuite() {
	// Create in-memory database
	db, err := services.NewSqliteDBService(":memory:")
	suite.Require().NoError(err)
	sqlDB, err := db.GetDB().DB()
	suite.Require().NoError(err)
	sqlDB.SetMaxOpenConns(1)
	suite.db = db

	cfg := config.Default()
	cfg.APIURL = constants.DefaultMainnetAPIURL
	cfg.JWTSecret = "test-secret"

	apiServer, port, err := configureAndStartServer(db, cfg)
	suite.Require().NoError(err)
	suite.Require().NotZero(port, "Port should not be 0")

	suite.apiServer = apiServer
	suite.port = port
	suite.client = &http.Client{Timeout: 10 * time.Second}

	// Wait for server to be ready
	time.Sleep(100 * time.Millisecond)
}

func (suite *StreamableHTTPTestSuite) TearDownSuite() {
	if suite.apiServer != nil {
		suite.apiServer.Shutdown()
	}
	if suite.db != nil {
		suite.db.Close()
	}
}

func (suite *StreamableHTTPTestSuite) initializeRequest(token *string) *http.Response {
	mcpRequest := map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  "initialize",
		"params": map[string]interface{}{
			"protocolVersion": "2024-11-05",
			"capabilities":    map[string]interface{}{},
			"clientInfo": map[string]interface{}{
				"name":    "test-client",
				"version": "1.0.0",
			},
		},
	}

	requestBody, err := json.Marshal(mcpRequest)
	suite.Require().NoError(err)

	req, err := http.NewRequest("POST", suite.getBaseURL()+"/mcp", bytes.NewBuffer(requestBody))
	suite.Require().NoError(err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json, text/event-stream")
	if token != nil {
		req.Header.Set("Authorization", "Bearer "+*token)
	}

	resp, err := suite.client.Do(req)
	suite.Require().NoError(err)
	return resp
}

// signIn runs the wallet sign-in flow and returns the session token.
func (suite *StreamableHTTPTestSuite) signIn() (string, string) {
	resp, err := suite.client.Post(suite.getBaseURL()+"/api/wallet/sign-in", "application/json", nil)
	suite.Require().NoError(err)
	defer resp.Body.Close()
	suite.Require().Equal(http.StatusCreated, resp.StatusCode)

	var started struct {
		SessionID string `json:"session_id"`
		URL       string `json:"url"`
	}
	suite.Require().NoError(json.NewDecoder(resp.Body).Decode(&started))
	suite.Contains(started.URL, "/wallet/"+started.SessionID)

	body, err := json.Marshal(map[string]string{"address": testAddress})
	suite.Require().NoError(err)
	resp, err = suite.client.Post(suite.getBaseURL()+"/api/wallet/sign-in/"+started.SessionID, "application/json", bytes.NewBuffer(body))
	suite.Require().NoError(err)
	defer resp.Body.Close()
	suite.Require().Equal(http.StatusOK, resp.StatusCode)

	var signedIn struct {
		Token string `json:"token"`
	}
	suite.Require().NoError(json.NewDecoder(resp.Body).Decode(&signedIn))
	suite.Require().NotEmpty(signedIn.Token)
	return started.SessionID, signedIn.Token
}

func (suite *StreamableHTTPTestSuite) TestMCPEndpointRequiresAuthentication() {
	resp := suite.initializeRequest(nil)
	defer resp.Body.Close()

	suite.Equal(http.StatusUnauthorized, resp.StatusCode)
	suite.NotEmpty(resp.Header.Get("WWW-Authenticate"))
}

func (suite *StreamableHTTPTestSuite) TestMCPEndpointWithInvalidToken() {
	token := "invalid-token"
	resp := suite.initializeRequest(&token)
	defer resp.Body.Close()

	suite.Equal(http.StatusUnauthorized, resp.StatusCode)
}

func (suite *StreamableHTTPTestSuite) TestMCPEndpointWithEmptyBearerToken() {
	token := ""
	resp := suite.initializeRequest(&token)
	defer resp.Body.Close()

	suite.Equal(http.StatusUnauthorized, resp.StatusCode)
}

func (suite *StreamableHTTPTestSuite) TestMCPSubpathAuthentication() {
	for _, path := range []string{"/mcp/sse", "/mcp/status"} {
		req, err := http.NewRequest("GET", suite.getBaseURL()+path, nil)
		suite.Require().NoError(err)

		resp, err := suite.client.Do(req)
		suite.Require().NoError(err)
		resp.Body.Close()

		suite.Equal(http.StatusUnauthorized, resp.StatusCode, "Path %s should require authentication", path)
	}
}

func (suite *StreamableHTTPTestSuite) TestMCPEndpointWithWalletToken() {
	_, token := suite.signIn()

	resp := suite.initializeRequest(&token)
	defer resp.Body.Close()

	suite.Equal(http.StatusOK, resp.StatusCode)
}

func (suite *StreamableHTTPTestSuite) TestSignedOutTokenIsRejected() {
	sessionID, token := suite.signIn()

	req, err := http.NewRequest("DELETE", suite.getBaseURL()+"/api/wallet/"+sessionID, nil)
	suite.Require().NoError(err)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := suite.client.Do(req)
	suite.Require().NoError(err)
	resp.Body.Close()
	suite.Equal(http.StatusNoContent, resp.StatusCode)

	resp = suite.initializeRequest(&token)
	defer resp.Body.Close()
	suite.Equal(http.StatusUnauthorized, resp.StatusCode)
}

func (suite *StreamableHTTPTestSuite) getBaseURL() string {
	return fmt.Sprintf("http://localhost:%d", suite.port)
}

func TestStreamableHTTPTestSuite(t *testing.T) {
	suite.Run(t, new(StreamableHTTPTestSuite))
}
