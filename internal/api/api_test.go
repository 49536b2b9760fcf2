package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rxtech-lab/starpass-mcp/internal/clarity"
	"github.com/rxtech-lab/starpass-mcp/internal/config"
	"github.com/rxtech-lab/starpass-mcp/internal/constants"
	"github.com/rxtech-lab/starpass-mcp/internal/models"
	"github.com/rxtech-lab/starpass-mcp/internal/server"
	"github.com/rxtech-lab/starpass-mcp/internal/services"
	"github.com/stretchr/testify/suite"
)

const (
	TEST_SERVER_PORT = 9200
	aliceAddress     = "SPTQAXBNENTQAXBNENTQAXBNENTQAXBNF8JV03X"
	bobAddress       = "SPG400000000000000000000000000000KNH68K"

	// matches the address pattern but fails the c32check decode
	patternOnlyAddress = "SPAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"
)

type APIServerTestSuite struct {
	suite.Suite
	db        services.DBService
	node      *httptest.Server
	apiServer *APIServer
}

// fakeNode answers read-only calls the way a Stacks node would for NFT 2.
// Every other NFT has no holder.
func fakeNode() *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Arguments []string `json:"arguments"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		nftTwo, _ := clarity.UInt(2).Hex()
		known := len(body.Arguments) > 0 && body.Arguments[len(body.Arguments)-1] == nftTwo

		var result clarity.Value
		switch r.URL.Path[strings.LastIndex(r.URL.Path, "/")+1:] {
		case constants.FunctionGetTotalNFTs:
			result = clarity.Ok(clarity.UInt(5))
		case constants.FunctionGetCurrentHolder:
			result = clarity.Ok(clarity.None())
			if known {
				result = clarity.Ok(clarity.Some(clarity.StandardPrincipal(aliceAddress)))
			}
		case constants.FunctionGetTier:
			result = clarity.Ok(clarity.UInt(4))
		case constants.FunctionGetMetadata:
			result = clarity.Ok(clarity.Some(clarity.StringASCII("ipfs://two")))
		case constants.FunctionOwnsNFT:
			result = clarity.Bool(known)
		default:
			_ = json.NewEncoder(w).Encode(map[string]interface{}{"okay": false, "cause": "unknown function"})
			return
		}
		encoded, _ := result.Hex()
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"okay": true, "result": encoded})
	}))
}

func (suite *APIServerTestSuite) SetupSuite() {
	suite.node = fakeNode()

	// Initialize in-memory database
	db, err := services.NewSqliteDBService(":memory:")
	suite.Require().NoError(err)
	sqlDB, err := db.GetDB().DB()
	suite.Require().NoError(err)
	sqlDB.SetMaxOpenConns(1)
	suite.db = db

	cfg := config.Default()
	cfg.APIURL = suite.node.URL
	cfg.JWTSecret = "test-secret"

	svcs, err := server.InitializeServices(db.GetDB(), cfg, TEST_SERVER_PORT)
	suite.Require().NoError(err)
	suite.Require().NoError(server.RegisterHooks(svcs.HookService, server.InitializeHooks(db.GetDB())...))

	suite.apiServer = NewAPIServer(db, svcs.TxService, svcs.DispatchService, svcs.NFTService, svcs.WalletService, svcs.TokenIssuer, svcs.Registry, svcs.AppDetails)
	suite.apiServer.SetupRoutes()
}

func (suite *APIServerTestSuite) TearDownSuite() {
	if suite.db != nil {
		suite.db.Close()
	}
	if suite.node != nil {
		suite.node.Close()
	}
}

func (suite *APIServerTestSuite) do(method, path string, body any, token string) (*http.Response, []byte) {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		suite.Require().NoError(err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := suite.apiServer.GetFiberApp().Test(req, -1)
	suite.Require().NoError(err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	suite.Require().NoError(err)
	return resp, data
}

func (suite *APIServerTestSuite) decode(data []byte, v any) {
	suite.Require().NoError(json.Unmarshal(data, v), string(data))
}

func (suite *APIServerTestSuite) signIn(address string) (string, string) {
	resp, data := suite.do("POST", "/api/wallet/sign-in", nil, "")
	suite.Require().Equal(http.StatusCreated, resp.StatusCode, string(data))
	var started map[string]interface{}
	suite.decode(data, &started)
	sessionID := started["session_id"].(string)

	resp, data = suite.do("POST", "/api/wallet/sign-in/"+sessionID, map[string]string{"address": address}, "")
	suite.Require().Equal(http.StatusOK, resp.StatusCode, string(data))
	var signedIn map[string]string
	suite.decode(data, &signedIn)
	return sessionID, signedIn["token"]
}

func (suite *APIServerTestSuite) mint(token string) string {
	resp, data := suite.do("POST", "/api/nft/mint", map[string]interface{}{
		"recipient":         aliceAddress,
		"tier":              3,
		"metadata":          "ipfs://three",
		"royaltyPercentage": "7",
	}, token)
	suite.Require().Equal(http.StatusAccepted, resp.StatusCode, string(data))
	var submitted SubmissionResponse
	suite.decode(data, &submitted)
	return submitted.SessionID
}

func (suite *APIServerTestSuite) TestHealth() {
	resp, data := suite.do("GET", "/health", nil, "")
	suite.Equal(http.StatusOK, resp.StatusCode)
	suite.JSONEq(`{"status":"ok"}`, string(data))
}

func (suite *APIServerTestSuite) TestAppIcon() {
	resp, data := suite.do("GET", "/app-icon.png", nil, "")
	suite.Equal(http.StatusOK, resp.StatusCode)
	suite.Equal("image/png", resp.Header.Get("Content-Type"))
	suite.True(bytes.HasPrefix(data, []byte("\x89PNG")))
}

func (suite *APIServerTestSuite) TestWriteRequiresToken() {
	resp, _ := suite.do("POST", "/api/nft/mint", map[string]string{}, "")
	suite.Equal(http.StatusUnauthorized, resp.StatusCode)

	resp, _ = suite.do("POST", "/api/nft/transfer", map[string]string{}, "not-a-token")
	suite.Equal(http.StatusUnauthorized, resp.StatusCode)
}

func (suite *APIServerTestSuite) TestMintValidationErrors() {
	_, token := suite.signIn(aliceAddress)

	resp, data := suite.do("POST", "/api/nft/mint", map[string]interface{}{
		"recipient":         "SP123",
		"tier":              "11",
		"metadata":          "ipfs://x",
		"royaltyPercentage": "-1",
	}, token)
	suite.Equal(http.StatusBadRequest, resp.StatusCode)

	var body struct {
		Error  string                `json:"error"`
		Errors []services.FieldError `json:"errors"`
	}
	suite.decode(data, &body)
	fields := make([]string, 0, len(body.Errors))
	for _, f := range body.Errors {
		fields = append(fields, f.Field)
	}
	suite.Equal([]string{services.FieldRecipient, services.FieldTier, services.FieldRoyaltyPercentage}, fields)
}

func (suite *APIServerTestSuite) TestPatternOnlyAddressNeverCreatesSession() {
	_, token := suite.signIn(aliceAddress)

	var before int64
	suite.Require().NoError(suite.db.GetDB().Model(&models.TransactionSession{}).Count(&before).Error)

	resp, data := suite.do("POST", "/api/nft/lease", map[string]interface{}{
		"nftId":         2,
		"lessee":        patternOnlyAddress,
		"leaseDuration": 10,
	}, token)
	suite.Equal(http.StatusBadRequest, resp.StatusCode, string(data))
	suite.Contains(string(data), services.FieldLessee)

	var after int64
	suite.Require().NoError(suite.db.GetDB().Model(&models.TransactionSession{}).Count(&after).Error)
	suite.Equal(before, after)

	resp, _ = suite.do("GET", "/api/nft/2/owner/"+patternOnlyAddress, nil, "")
	suite.Equal(http.StatusBadRequest, resp.StatusCode)
}

func (suite *APIServerTestSuite) TestMintLifecycle() {
	_, token := suite.signIn(aliceAddress)
	sessionID := suite.mint(token)

	suite.Run("wallet reads the contract call", func() {
		resp, data := suite.do("GET", "/api/tx/"+sessionID, nil, "")
		suite.Require().Equal(http.StatusOK, resp.StatusCode)
		var session TransactionSessionResponse
		suite.decode(data, &session)
		suite.Equal("pending", session.Status)
		suite.Equal(constants.FunctionMintNFT, session.FunctionName)
		suite.Equal(constants.DefaultContractName, session.ContractName)
		suite.Equal(constants.NetworkMainnet, session.Network)
		suite.Equal([]string{aliceAddress, "u3", `"ipfs://three"`, "u7"}, session.FunctionArgs)
		suite.Len(session.FunctionArgsHex, 4)
		suite.Equal(constants.DefaultAppName, session.AppDetails.Name)
		suite.Equal("http://localhost:9200/app-icon.png", session.AppDetails.Icon)
	})

	suite.Run("consent page renders", func() {
		resp, data := suite.do("GET", "/tx/"+sessionID, nil, "")
		suite.Equal(http.StatusOK, resp.StatusCode)
		suite.Contains(string(data), constants.FunctionMintNFT)
		suite.Contains(string(data), constants.DefaultAppName)
	})

	suite.Run("success without transaction id is rejected", func() {
		resp, _ := suite.do("POST", "/api/tx/"+sessionID, map[string]string{"status": OutcomeSuccess}, "")
		suite.Equal(http.StatusBadRequest, resp.StatusCode)
	})

	suite.Run("success resolves the session once", func() {
		resp, data := suite.do("POST", "/api/tx/"+sessionID, map[string]string{"status": OutcomeSuccess, "txId": "0xfeed"}, "")
		suite.Require().Equal(http.StatusOK, resp.StatusCode, string(data))
		suite.Contains(string(data), `"status":"succeeded"`)

		resp, _ = suite.do("POST", "/api/tx/"+sessionID, map[string]string{"status": OutcomeCancelled}, "")
		suite.Equal(http.StatusConflict, resp.StatusCode)

		resp, _ = suite.do("GET", "/tx/"+sessionID, nil, "")
		suite.Equal(http.StatusConflict, resp.StatusCode)
	})

	suite.Run("activity is recorded for the user", func() {
		resp, data := suite.do("GET", "/api/nft/activity?mine=true", nil, token)
		suite.Require().Equal(http.StatusOK, resp.StatusCode)
		var body struct {
			Activities []struct {
				SessionID     string `json:"session_id"`
				TransactionID string `json:"transaction_id"`
			} `json:"activities"`
		}
		suite.decode(data, &body)
		suite.Require().Len(body.Activities, 1)
		suite.Equal(sessionID, body.Activities[0].SessionID)
		suite.Equal("0xfeed", body.Activities[0].TransactionID)
	})
}

func (suite *APIServerTestSuite) TestCancelledTransfer() {
	_, token := suite.signIn(bobAddress)

	resp, data := suite.do("POST", "/api/nft/transfer", map[string]interface{}{
		"nftId":     2,
		"recipient": aliceAddress,
	}, token)
	suite.Require().Equal(http.StatusAccepted, resp.StatusCode, string(data))
	var submitted SubmissionResponse
	suite.decode(data, &submitted)

	resp, data = suite.do("POST", "/api/tx/"+submitted.SessionID, map[string]string{"status": OutcomeCancelled}, "")
	suite.Require().Equal(http.StatusOK, resp.StatusCode)
	suite.Contains(string(data), `"status":"failed"`)

	resp, data = suite.do("GET", "/api/tx/"+submitted.SessionID, nil, "")
	suite.Require().Equal(http.StatusOK, resp.StatusCode)
	suite.Contains(string(data), "cancelled by user")
}

func (suite *APIServerTestSuite) TestUnknownSession() {
	resp, _ := suite.do("GET", "/api/tx/unknown", nil, "")
	suite.Equal(http.StatusNotFound, resp.StatusCode)

	resp, data := suite.do("GET", "/tx/unknown", nil, "")
	suite.Equal(http.StatusNotFound, resp.StatusCode)
	suite.Contains(string(data), "Session Not Found")
}

func (suite *APIServerTestSuite) TestReadOnlyRoutes() {
	resp, data := suite.do("GET", "/api/nft/total", nil, "")
	suite.Equal(http.StatusOK, resp.StatusCode)
	suite.JSONEq(`{"total":5}`, string(data))

	resp, data = suite.do("GET", "/api/nft/2", nil, "")
	suite.Equal(http.StatusOK, resp.StatusCode)
	suite.JSONEq(`{"nft_id":2,"current_holder":"`+aliceAddress+`","tier":4,"metadata":"ipfs://two"}`, string(data))

	resp, _ = suite.do("GET", "/api/nft/abc", nil, "")
	suite.Equal(http.StatusBadRequest, resp.StatusCode)

	resp, _ = suite.do("GET", "/api/nft/0", nil, "")
	suite.Equal(http.StatusBadRequest, resp.StatusCode)

	resp, _ = suite.do("GET", "/api/nft/99", nil, "")
	suite.Equal(http.StatusBadGateway, resp.StatusCode)

	resp, data = suite.do("GET", "/api/nft/2/owner/"+aliceAddress, nil, "")
	suite.Equal(http.StatusOK, resp.StatusCode)
	suite.Contains(string(data), `"owns":true`)

	resp, _ = suite.do("GET", "/api/nft/2/owner/not-an-address", nil, "")
	suite.Equal(http.StatusBadRequest, resp.StatusCode)
}

func (suite *APIServerTestSuite) TestActivityMineRequiresToken() {
	resp, _ := suite.do("GET", "/api/nft/activity?mine=true", nil, "")
	suite.Equal(http.StatusUnauthorized, resp.StatusCode)

	resp, _ = suite.do("GET", "/api/nft/activity?limit=5", nil, "")
	suite.Equal(http.StatusOK, resp.StatusCode)
}

func (suite *APIServerTestSuite) TestWalletSession() {
	resp, data := suite.do("POST", "/api/wallet/sign-in", nil, "")
	suite.Require().Equal(http.StatusCreated, resp.StatusCode)
	var started map[string]interface{}
	suite.decode(data, &started)
	sessionID := started["session_id"].(string)
	suite.Equal("http://localhost:9200/wallet/"+sessionID, started["url"])

	resp, data = suite.do("GET", "/api/wallet/"+sessionID, nil, "")
	suite.Equal(http.StatusOK, resp.StatusCode)
	suite.Contains(string(data), `"status":"pending"`)

	resp, _ = suite.do("GET", "/wallet/"+sessionID, nil, "")
	suite.Equal(http.StatusOK, resp.StatusCode)

	resp, _ = suite.do("POST", "/api/wallet/sign-in/"+sessionID, map[string]string{"address": "bad"}, "")
	suite.Equal(http.StatusBadRequest, resp.StatusCode)

	resp, data = suite.do("POST", "/api/wallet/sign-in/"+sessionID, map[string]string{"address": aliceAddress}, "")
	suite.Require().Equal(http.StatusOK, resp.StatusCode)
	var signedIn map[string]string
	suite.decode(data, &signedIn)
	token := signedIn["token"]

	resp, _ = suite.do("POST", "/api/wallet/sign-in/"+sessionID, map[string]string{"address": aliceAddress}, "")
	suite.Equal(http.StatusConflict, resp.StatusCode)

	resp, data = suite.do("GET", "/api/wallet/"+sessionID, nil, "")
	suite.Equal(http.StatusOK, resp.StatusCode)
	suite.Contains(string(data), aliceAddress)

	resp, _ = suite.do("GET", "/wallet/"+sessionID, nil, "")
	suite.Equal(http.StatusConflict, resp.StatusCode)

	suite.Run("sign out needs the session's own token", func() {
		_, otherToken := suite.signIn(bobAddress)
		resp, _ := suite.do("DELETE", "/api/wallet/"+sessionID, nil, otherToken)
		suite.Equal(http.StatusForbidden, resp.StatusCode)

		resp, _ = suite.do("DELETE", "/api/wallet/"+sessionID, nil, token)
		suite.Equal(http.StatusNoContent, resp.StatusCode)

		resp, _ = suite.do("POST", "/api/nft/mint", map[string]string{}, token)
		suite.Equal(http.StatusUnauthorized, resp.StatusCode)

		resp, _ = suite.do("GET", "/api/wallet/"+sessionID, nil, "")
		suite.Equal(http.StatusUnauthorized, resp.StatusCode)
	})

	resp, _ = suite.do("GET", "/api/wallet/unknown", nil, "")
	suite.Equal(http.StatusNotFound, resp.StatusCode)
}

func (suite *APIServerTestSuite) TestMetrics() {
	_, token := suite.signIn(aliceAddress)
	suite.mint(token)

	resp, data := suite.do("GET", "/metrics", nil, "")
	suite.Equal(http.StatusOK, resp.StatusCode)
	suite.Contains(string(data), `starpass_submissions_total{operation="mint",outcome="dispatched"}`)
}

func TestAPIServerTestSuite(t *testing.T) {
	suite.Run(t, new(APIServerTestSuite))
}
