package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"bidding-engine/internal/biddingerrors"
	fraud "bidding-engine/internal/fraudService"
	model "bidding-engine/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T) (*MockFraudServiceInterface, *gin.Engine) {
	t.Helper()
	ctrl := gomock.NewController(t)
	mockService := NewMockFraudServiceInterface(ctrl)
	handler := NewFraudHandler(mockService)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/rules", handler.SaveRuleHandler)
	router.PUT("/rules/:rule_id", handler.SaveRuleHandler)
	router.GET("/rules", handler.ListRulesHandler)
	router.DELETE("/rules/:rule_id", handler.DeleteRuleHandler)
	router.POST("/scores", handler.EvaluateHandler)
	router.POST("/scores/batch", handler.EvaluateBatchHandler)
	router.GET("/scores/:score_id", handler.GetScoreHandler)
	router.PATCH("/scores/:score_id/disposition", handler.SetDispositionHandler)
	return mockService, router
}

func doRequest(t *testing.T, router *gin.Engine, method, path string, body any) (int, map[string]any) {
	t.Helper()

	var raw []byte
	switch v := body.(type) {
	case nil:
	case string:
		raw = []byte(v)
	default:
		var err error
		raw, err = json.Marshal(v)
		require.NoError(t, err)
	}

	req := httptest.NewRequest(method, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return w.Code, resp
}

func TestSaveRuleHandler(t *testing.T) {
	t.Parallel()

	highValue := map[string]any{
		"name":      "High value order",
		"predicate": map[string]any{"op": "gt", "fact": "order_amount", "value": 1000},
		"weight":    30,
		"action":    "flag",
	}

	tests := []struct {
		name           string
		method         string
		path           string
		requestBody    any
		mockSetup      func(m *MockFraudServiceInterface)
		expectedStatus int
		expectedMsg    string
	}{
		{
			name:        "create",
			method:      http.MethodPost,
			path:        "/rules",
			requestBody: highValue,
			mockSetup: func(m *MockFraudServiceInterface) {
				m.EXPECT().SaveRule(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ any, def model.RuleDefinition) (model.RuleDefinition, error) {
						require.True(t, def.Active, "rules default to active")
						require.Equal(t, model.OpGT, def.Predicate.Op)
						require.Equal(t, model.ActionFlag, def.Action)
						def.RuleID = "R1"
						return def, nil
					})
			},
			expectedStatus: http.StatusCreated,
			expectedMsg:    "rule saved successfully",
		},
		{
			name:        "update_uses_path_id",
			method:      http.MethodPut,
			path:        "/rules/R9",
			requestBody: highValue,
			mockSetup: func(m *MockFraudServiceInterface) {
				m.EXPECT().SaveRule(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ any, def model.RuleDefinition) (model.RuleDefinition, error) {
						require.Equal(t, "R9", def.RuleID)
						return def, nil
					})
			},
			expectedStatus: http.StatusOK,
			expectedMsg:    "rule saved successfully",
		},
		{
			name:   "unknown_action",
			method: http.MethodPost,
			path:   "/rules",
			requestBody: map[string]any{
				"name":      "x",
				"predicate": map[string]any{"op": "gt", "fact": "order_amount", "value": 1},
				"weight":    10,
				"action":    "quarantine",
			},
			mockSetup:      func(m *MockFraudServiceInterface) {},
			expectedStatus: http.StatusBadRequest,
			expectedMsg:    "invalid request payload",
		},
		{
			name:   "weight_out_of_range",
			method: http.MethodPost,
			path:   "/rules",
			requestBody: map[string]any{
				"name":   "x",
				"weight": 101,
				"action": "flag",
			},
			mockSetup:      func(m *MockFraudServiceInterface) {},
			expectedStatus: http.StatusBadRequest,
			expectedMsg:    "invalid request payload",
		},
		{
			name:        "invalid_predicate",
			method:      http.MethodPost,
			path:        "/rules",
			requestBody: highValue,
			mockSetup: func(m *MockFraudServiceInterface) {
				m.EXPECT().SaveRule(gomock.Any(), gomock.Any()).
					Return(model.RuleDefinition{}, fmt.Errorf("rules: %w - unknown fact", biddingerrors.ErrInvalidRulePredicate))
			},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedMsg:    "invalid rule predicate",
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			mockService, router := newTestRouter(t)
			tc.mockSetup(mockService)

			code, resp := doRequest(t, router, tc.method, tc.path, tc.requestBody)
			require.Equal(t, tc.expectedStatus, code)
			require.Contains(t, resp["message"], tc.expectedMsg)
		})
	}
}

func TestListAndDeleteRules(t *testing.T) {
	t.Parallel()

	t.Run("list_empty", func(t *testing.T) {
		t.Parallel()

		mockService, router := newTestRouter(t)
		mockService.EXPECT().ListRules(gomock.Any()).Return(nil, nil)

		code, resp := doRequest(t, router, http.MethodGet, "/rules", nil)
		require.Equal(t, http.StatusOK, code)
		require.Empty(t, resp["data"].([]any))
	})

	t.Run("list", func(t *testing.T) {
		t.Parallel()

		mockService, router := newTestRouter(t)
		mockService.EXPECT().ListRules(gomock.Any()).Return([]model.RuleDefinition{
			{RuleID: "R1", Name: "one", Weight: 30, Action: model.ActionFlag, Active: true},
			{RuleID: "R2", Name: "two", Weight: 40, Action: model.ActionReview, Active: true},
		}, nil)

		code, resp := doRequest(t, router, http.MethodGet, "/rules", nil)
		require.Equal(t, http.StatusOK, code)
		require.Len(t, resp["data"].([]any), 2)
	})

	t.Run("delete", func(t *testing.T) {
		t.Parallel()

		mockService, router := newTestRouter(t)
		mockService.EXPECT().DeleteRule(gomock.Any(), "R1").Return(nil)

		code, resp := doRequest(t, router, http.MethodDelete, "/rules/R1", nil)
		require.Equal(t, http.StatusOK, code)
		require.Equal(t, "R1", resp["data"].(map[string]any)["rule_id"])
	})

	t.Run("delete_missing", func(t *testing.T) {
		t.Parallel()

		mockService, router := newTestRouter(t)
		mockService.EXPECT().DeleteRule(gomock.Any(), "ghost").Return(biddingerrors.ErrRuleNotFound)

		code, resp := doRequest(t, router, http.MethodDelete, "/rules/ghost", nil)
		require.Equal(t, http.StatusNotFound, code)
		require.Contains(t, resp["message"], "rule not found")
	})
}

func TestEvaluateHandler(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()

	tests := []struct {
		name           string
		requestBody    any
		mockSetup      func(m *MockFraudServiceInterface)
		expectedStatus int
		expectedMsg    string
	}{
		{
			name: "success",
			requestBody: map[string]any{
				"target_id": "order-7",
				"facts":     map[string]any{"order_amount": 2500, "ip_country": "NG", "account_age_days": 2},
			},
			mockSetup: func(m *MockFraudServiceInterface) {
				m.EXPECT().Evaluate(gomock.Any(), "order-7", gomock.Any()).
					DoAndReturn(func(_ any, target string, facts map[string]any) (model.ScoreResult, error) {
						require.Equal(t, float64(2500), facts["order_amount"])
						return model.ScoreResult{
							ScoreID:     "S1",
							TargetID:    target,
							Score:       70,
							Matches:     []model.RuleMatch{{RuleID: "R1", Weight: 30}, {RuleID: "R2", Weight: 40}},
							Action:      model.ActionReview,
							EvaluatedAt: now,
						}, nil
					})
			},
			expectedStatus: http.StatusOK,
			expectedMsg:    "evaluation completed",
		},
		{
			name:           "missing_target",
			requestBody:    map[string]any{"facts": map[string]any{}},
			mockSetup:      func(m *MockFraudServiceInterface) {},
			expectedStatus: http.StatusBadRequest,
			expectedMsg:    "invalid request payload",
		},
		{
			name:        "store_failure",
			requestBody: map[string]any{"target_id": "order-8"},
			mockSetup: func(m *MockFraudServiceInterface) {
				m.EXPECT().Evaluate(gomock.Any(), "order-8", gomock.Any()).Return(model.ScoreResult{}, errors.New("database failure"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedMsg:    "internal server error",
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			mockService, router := newTestRouter(t)
			tc.mockSetup(mockService)

			code, resp := doRequest(t, router, http.MethodPost, "/scores", tc.requestBody)
			require.Equal(t, tc.expectedStatus, code)
			require.Contains(t, resp["message"], tc.expectedMsg)

			if code == http.StatusOK {
				data := resp["data"].(map[string]any)
				require.Equal(t, float64(70), data["score"])
				require.Equal(t, "review", data["action"])
				require.Len(t, data["matches"].([]any), 2)
			}
		})
	}
}

func TestEvaluateBatchHandler(t *testing.T) {
	t.Parallel()

	t.Run("keeps_order", func(t *testing.T) {
		t.Parallel()

		mockService, router := newTestRouter(t)
		mockService.EXPECT().EvaluateBatch(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ any, reqs []fraud.EvaluateRequest) ([]model.ScoreResult, error) {
				out := make([]model.ScoreResult, len(reqs))
				for i, r := range reqs {
					out[i] = model.ScoreResult{ScoreID: fmt.Sprintf("S%d", i), TargetID: r.TargetID, Action: model.ActionNone}
				}
				return out, nil
			})

		body := map[string]any{"items": []map[string]any{
			{"target_id": "a", "facts": map[string]any{}},
			{"target_id": "b", "facts": map[string]any{}},
			{"target_id": "c", "facts": map[string]any{}},
		}}
		code, resp := doRequest(t, router, http.MethodPost, "/scores/batch", body)
		require.Equal(t, http.StatusOK, code)

		data := resp["data"].([]any)
		require.Len(t, data, 3)
		for i, want := range []string{"a", "b", "c"} {
			require.Equal(t, want, data[i].(map[string]any)["target_id"])
		}
	})

	t.Run("empty_batch", func(t *testing.T) {
		t.Parallel()

		_, router := newTestRouter(t)
		code, _ := doRequest(t, router, http.MethodPost, "/scores/batch", map[string]any{"items": []any{}})
		require.Equal(t, http.StatusBadRequest, code)
	})

	t.Run("item_without_target", func(t *testing.T) {
		t.Parallel()

		_, router := newTestRouter(t)
		body := map[string]any{"items": []map[string]any{{"facts": map[string]any{}}}}
		code, _ := doRequest(t, router, http.MethodPost, "/scores/batch", body)
		require.Equal(t, http.StatusBadRequest, code)
	})

	t.Run("invalid_target_from_service", func(t *testing.T) {
		t.Parallel()

		mockService, router := newTestRouter(t)
		mockService.EXPECT().EvaluateBatch(gomock.Any(), gomock.Any()).
			Return(nil, fmt.Errorf("service: %w - empty target ID at index 0", biddingerrors.ErrInvalidTarget))

		body := map[string]any{"items": []map[string]any{{"target_id": "a", "facts": map[string]any{}}}}
		code, resp := doRequest(t, router, http.MethodPost, "/scores/batch", body)
		require.Equal(t, http.StatusBadRequest, code)
		require.Contains(t, resp["message"], "invalid scoring target")
		require.NotContains(t, resp["message"], "bid")
	})
}

func TestScoreHandlers(t *testing.T) {
	t.Parallel()

	disposedAt := time.Now().UTC()

	t.Run("get", func(t *testing.T) {
		t.Parallel()

		mockService, router := newTestRouter(t)
		mockService.EXPECT().GetScore(gomock.Any(), "S1").Return(model.ScoreResult{ScoreID: "S1", Score: 60, Action: model.ActionBlock}, nil)

		code, resp := doRequest(t, router, http.MethodGet, "/scores/S1", nil)
		require.Equal(t, http.StatusOK, code)
		require.Equal(t, "block", resp["data"].(map[string]any)["action"])
	})

	t.Run("get_missing", func(t *testing.T) {
		t.Parallel()

		mockService, router := newTestRouter(t)
		mockService.EXPECT().GetScore(gomock.Any(), "ghost").Return(model.ScoreResult{}, biddingerrors.ErrScoreNotFound)

		code, _ := doRequest(t, router, http.MethodGet, "/scores/ghost", nil)
		require.Equal(t, http.StatusNotFound, code)
	})

	t.Run("disposition", func(t *testing.T) {
		t.Parallel()

		mockService, router := newTestRouter(t)
		mockService.EXPECT().SetDisposition(gomock.Any(), "S1", model.DispositionFalsePositive).
			Return(model.ScoreResult{ScoreID: "S1", Disposition: model.DispositionFalsePositive, DisposedAt: &disposedAt}, nil)

		code, resp := doRequest(t, router, http.MethodPatch, "/scores/S1/disposition", map[string]any{"disposition": "false_positive"})
		require.Equal(t, http.StatusOK, code)
		require.Equal(t, "false_positive", resp["data"].(map[string]any)["disposition"])
	})

	t.Run("bad_disposition", func(t *testing.T) {
		t.Parallel()

		mockService, router := newTestRouter(t)
		mockService.EXPECT().SetDisposition(gomock.Any(), "S1", model.Disposition("maybe")).
			Return(model.ScoreResult{}, biddingerrors.ErrInvalidDisposition)

		code, resp := doRequest(t, router, http.MethodPatch, "/scores/S1/disposition", map[string]any{"disposition": "maybe"})
		require.Equal(t, http.StatusBadRequest, code)
		require.Contains(t, resp["message"], "invalid disposition")
	})
}
