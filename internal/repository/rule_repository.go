package repository

import (
	"bidding-engine/internal/biddingerrors"
	model "bidding-engine/internal/models"
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// RuleDB stores fraud rules and the scores produced from them
type RuleDB interface {
	SaveRule(ctx context.Context, rule model.RuleDefinition) error
	DeleteRule(ctx context.Context, ruleID string) error
	ListRules(ctx context.Context) ([]model.RuleDefinition, error)
	SaveScore(ctx context.Context, score model.ScoreResult) error
	GetScore(ctx context.Context, scoreID string) (model.ScoreResult, error)
	SetDisposition(ctx context.Context, scoreID string, disposition model.Disposition, at time.Time) (model.ScoreResult, error)
}

// MemoryRuleRepo is a concurrency-safe in-memory implementation of RuleDB
type MemoryRuleRepo struct {
	mu     sync.RWMutex
	rules  map[string]model.RuleDefinition
	scores map[string]model.ScoreResult
}

// NewMemoryRuleRepo creates an empty rule repository
func NewMemoryRuleRepo() *MemoryRuleRepo {
	return &MemoryRuleRepo{
		rules:  make(map[string]model.RuleDefinition),
		scores: make(map[string]model.ScoreResult),
	}
}

// SaveRule inserts or replaces a rule
func (r *MemoryRuleRepo) SaveRule(_ context.Context, rule model.RuleDefinition) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rules[rule.RuleID] = rule
	return nil
}

// DeleteRule removes a rule
func (r *MemoryRuleRepo) DeleteRule(_ context.Context, ruleID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.rules[ruleID]; !ok {
		return fmt.Errorf("delete rule %s: %w", ruleID, biddingerrors.ErrRuleNotFound)
	}
	delete(r.rules, ruleID)
	return nil
}

// ListRules returns a copy of every rule, ordered by ID
func (r *MemoryRuleRepo) ListRules(_ context.Context) ([]model.RuleDefinition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]model.RuleDefinition, 0, len(r.rules))
	for _, rule := range r.rules {
		out = append(out, rule)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RuleID < out[j].RuleID })
	return out, nil
}

// SaveScore stores a new score result
func (r *MemoryRuleRepo) SaveScore(_ context.Context, score model.ScoreResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.scores[score.ScoreID] = score
	return nil
}

// GetScore returns a stored score result
func (r *MemoryRuleRepo) GetScore(_ context.Context, scoreID string) (model.ScoreResult, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	score, ok := r.scores[scoreID]
	if !ok {
		return model.ScoreResult{}, fmt.Errorf("get score %s: %w", scoreID, biddingerrors.ErrScoreNotFound)
	}
	return score, nil
}

// SetDisposition records the operator's verdict on a score
func (r *MemoryRuleRepo) SetDisposition(_ context.Context, scoreID string, disposition model.Disposition, at time.Time) (model.ScoreResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	score, ok := r.scores[scoreID]
	if !ok {
		return model.ScoreResult{}, fmt.Errorf("set disposition on score %s: %w", scoreID, biddingerrors.ErrScoreNotFound)
	}
	score.Disposition = disposition
	score.DisposedAt = &at
	r.scores[scoreID] = score
	return score, nil
}
