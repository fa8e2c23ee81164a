package handler

import (
	"context"
	"net/http"

	fraud "bidding-engine/internal/fraudService"
	model "bidding-engine/internal/models"
	"bidding-engine/services/helpers"
	"bidding-engine/utils"

	"github.com/gin-gonic/gin"
)

type FraudServiceInterface interface {
	SaveRule(ctx context.Context, def model.RuleDefinition) (model.RuleDefinition, error)
	DeleteRule(ctx context.Context, ruleID string) error
	ListRules(ctx context.Context) ([]model.RuleDefinition, error)
	Evaluate(ctx context.Context, targetID string, facts map[string]any) (model.ScoreResult, error)
	EvaluateBatch(ctx context.Context, reqs []fraud.EvaluateRequest) ([]model.ScoreResult, error)
	GetScore(ctx context.Context, scoreID string) (model.ScoreResult, error)
	SetDisposition(ctx context.Context, scoreID string, d model.Disposition) (model.ScoreResult, error)
}

type FraudHandler struct {
	service FraudServiceInterface
}

func NewFraudHandler(service FraudServiceInterface) *FraudHandler {
	return &FraudHandler{service: service}
}

// SaveRuleHandler handles POST /rules and PUT /rules/:rule_id
func (h *FraudHandler) SaveRuleHandler(c *gin.Context) {
	var req helpers.RuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "SaveRuleHandler", err)
		return
	}
	updating := c.Param("rule_id") != ""
	if updating {
		req.RuleID = c.Param("rule_id")
	}

	saved, err := h.service.SaveRule(c.Request.Context(), req.ToModel())
	if err != nil {
		helpers.HandleServiceError(c, "SaveRuleHandler", "failed to save rule", err, map[string]any{
			"rule_id": req.RuleID,
			"name":    req.Name,
		})
		return
	}

	status := http.StatusCreated
	if updating {
		status = http.StatusOK
	}
	utils.JSONResponse(c, status, saved, "rule saved successfully")
	helpers.LogSuccess("SaveRuleHandler", "rule saved successfully", map[string]any{
		"rule_id": saved.RuleID,
		"action":  string(saved.Action),
		"weight":  saved.Weight,
	})
}

// DeleteRuleHandler handles DELETE /rules/:rule_id
func (h *FraudHandler) DeleteRuleHandler(c *gin.Context) {
	ruleID := c.Param("rule_id")
	if err := h.service.DeleteRule(c.Request.Context(), ruleID); err != nil {
		helpers.HandleServiceError(c, "DeleteRuleHandler", "failed to delete rule", err, map[string]any{"rule_id": ruleID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, gin.H{"rule_id": ruleID}, "rule deleted successfully")
	helpers.LogSuccess("DeleteRuleHandler", "rule deleted successfully", map[string]any{"rule_id": ruleID})
}

// ListRulesHandler handles GET /rules
func (h *FraudHandler) ListRulesHandler(c *gin.Context) {
	defs, err := h.service.ListRules(c.Request.Context())
	if err != nil {
		helpers.HandleServiceError(c, "ListRulesHandler", "error retrieving rules", err, nil)
		return
	}
	if defs == nil {
		defs = []model.RuleDefinition{}
	}

	utils.JSONResponse(c, http.StatusOK, defs, "rules retrieved successfully")
}

// EvaluateHandler handles POST /scores
func (h *FraudHandler) EvaluateHandler(c *gin.Context) {
	var req helpers.EvaluateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "EvaluateHandler", err)
		return
	}

	res, err := h.service.Evaluate(c.Request.Context(), req.TargetID, req.Facts)
	if err != nil {
		helpers.HandleServiceError(c, "EvaluateHandler", "evaluation failed", err, map[string]any{"target_id": req.TargetID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, res, "evaluation completed")
	helpers.LogSuccess("EvaluateHandler", "evaluation completed", map[string]any{
		"score_id":  res.ScoreID,
		"target_id": res.TargetID,
		"score":     res.Score,
		"action":    string(res.Action),
	})
}

// EvaluateBatchHandler handles POST /scores/batch
func (h *FraudHandler) EvaluateBatchHandler(c *gin.Context) {
	var req helpers.BatchEvaluateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "EvaluateBatchHandler", err)
		return
	}

	items := make([]fraud.EvaluateRequest, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, fraud.EvaluateRequest{TargetID: it.TargetID, Facts: it.Facts})
	}

	results, err := h.service.EvaluateBatch(c.Request.Context(), items)
	if err != nil {
		helpers.HandleServiceError(c, "EvaluateBatchHandler", "batch evaluation failed", err, map[string]any{"items": len(items)})
		return
	}

	utils.JSONResponse(c, http.StatusOK, results, "batch evaluation completed")
	helpers.LogSuccess("EvaluateBatchHandler", "batch evaluation completed", map[string]any{"items": len(results)})
}

// GetScoreHandler handles GET /scores/:score_id
func (h *FraudHandler) GetScoreHandler(c *gin.Context) {
	scoreID := c.Param("score_id")
	res, err := h.service.GetScore(c.Request.Context(), scoreID)
	if err != nil {
		helpers.HandleServiceError(c, "GetScoreHandler", "error retrieving score", err, map[string]any{"score_id": scoreID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, res, "score retrieved successfully")
}

// SetDispositionHandler handles PATCH /scores/:score_id/disposition
func (h *FraudHandler) SetDispositionHandler(c *gin.Context) {
	scoreID := c.Param("score_id")

	var req helpers.DispositionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "SetDispositionHandler", err)
		return
	}

	res, err := h.service.SetDisposition(c.Request.Context(), scoreID, model.Disposition(req.Disposition))
	if err != nil {
		helpers.HandleServiceError(c, "SetDispositionHandler", "failed to set disposition", err, map[string]any{
			"score_id":    scoreID,
			"disposition": req.Disposition,
		})
		return
	}

	utils.JSONResponse(c, http.StatusOK, res, "disposition recorded")
	helpers.LogSuccess("SetDispositionHandler", "disposition recorded", map[string]any{
		"score_id":    scoreID,
		"disposition": req.Disposition,
	})
}
