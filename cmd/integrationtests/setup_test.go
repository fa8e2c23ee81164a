package integrationtests

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	bidding "bidding-engine/internal/biddingService"
	fraud "bidding-engine/internal/fraudService"
	"bidding-engine/internal/repository"
	"bidding-engine/internal/server"
	"bidding-engine/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

// SetupTestRouter initializes the router with in-memory repositories for integration testing.
func SetupTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	service := bidding.NewBiddingService(repository.NewMemoryRepo())
	fraudService := fraud.NewFraudService(repository.NewMemoryRuleRepo())
	return server.SetupRouter(service, fraudService, nil)
}

// SetupSQLiteRouter wires both services to one private in-memory sqlite database.
func SetupSQLiteRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repo, err := repository.OpenSQLite("file:" + utils.GenerateID() + "?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })

	return server.SetupRouter(bidding.NewBiddingService(repo), fraud.NewFraudService(repo), nil)
}

// ExecuteRequestAndParse executes an HTTP request on the given router and parses the response envelope
func ExecuteRequestAndParse(t *testing.T, router *gin.Engine, method, url string, body any) (map[string]any, *httptest.ResponseRecorder) {
	t.Helper()

	var reqBody []byte
	var err error

	switch v := body.(type) {
	case nil:
	case []byte:
		reqBody = v
	case string:
		reqBody = []byte(v)
	default:
		reqBody, err = json.Marshal(v)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, url, bytes.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	var resp map[string]any
	if len(w.Body.Bytes()) > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to unmarshal response: %v", err)
		}
	}
	return resp, w
}

// CreateAuction opens an auction through the API and returns its ID
func CreateAuction(t *testing.T, router *gin.Engine, sellerID, startingPrice, minIncrement string) string {
	t.Helper()

	resp, w := ExecuteRequestAndParse(t, router, http.MethodPost, "/auctions", map[string]any{
		"seller_id":      sellerID,
		"title":          "integration lot",
		"starting_price": startingPrice,
		"min_increment":  minIncrement,
		"end_time":       time.Now().UTC().Add(time.Hour).Format(time.RFC3339),
	})
	require.Equal(t, http.StatusCreated, w.Code, resp)
	return resp["data"].(map[string]any)["auction_id"].(string)
}

// PlaceBid submits a bid and returns the response envelope
func PlaceBid(t *testing.T, router *gin.Engine, auctionID, bidderID, amount string) (map[string]any, int) {
	t.Helper()

	resp, w := ExecuteRequestAndParse(t, router, http.MethodPost, "/auctions/"+auctionID+"/bids", map[string]any{
		"bidder_id": bidderID,
		"amount":    amount,
	})
	return resp, w.Code
}
