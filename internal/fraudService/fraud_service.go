package fraud

import (
	"bidding-engine/internal/biddingerrors"
	"bidding-engine/internal/models"
	"bidding-engine/internal/notify"
	"bidding-engine/internal/repository"
	"bidding-engine/internal/rules"
	"bidding-engine/utils"
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// DefaultBatchLimit bounds how many evaluations of one batch run at once
const DefaultBatchLimit = 8

// FraudService manages the rule set and scores targets against it
type FraudService struct {
	repo       repository.RuleDB
	mu         sync.RWMutex
	schema     rules.FactSchema
	notifier   notify.Notifier
	now        func() time.Time
	batchLimit int
}

// Option configures a FraudService
type Option func(*FraudService)

// WithNotifier sets the gateway told about scores that need review
func WithNotifier(n notify.Notifier) Option {
	return func(s *FraudService) { s.notifier = n }
}

// WithSchema extends the default fact schema
func WithSchema(schema rules.FactSchema) Option {
	return func(s *FraudService) { s.schema = s.schema.Merge(schema) }
}

// WithClock replaces time.Now, mostly for tests
func WithClock(now func() time.Time) Option {
	return func(s *FraudService) { s.now = now }
}

// WithBatchLimit bounds concurrent evaluations in EvaluateBatch
func WithBatchLimit(n int) Option {
	return func(s *FraudService) {
		if n > 0 {
			s.batchLimit = n
		}
	}
}

// NewFraudService creates a new FraudService instance
func NewFraudService(repo repository.RuleDB, opts ...Option) *FraudService {
	s := &FraudService{
		repo:       repo,
		schema:     rules.DefaultSchema(),
		notifier:   notify.Nop{},
		now:        func() time.Time { return time.Now().UTC() },
		batchLimit: DefaultBatchLimit,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Schema returns the facts rules may reference
func (s *FraudService) Schema() rules.FactSchema {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.schema.Merge(nil)
}

// SaveRule validates and stores a rule, assigning an ID to new ones
func (s *FraudService) SaveRule(ctx context.Context, def models.RuleDefinition) (models.RuleDefinition, error) {
	if err := rules.ValidateRule(def, s.Schema()); err != nil {
		return models.RuleDefinition{}, fmt.Errorf("service: %w", err)
	}
	if def.RuleID == "" {
		def.RuleID = utils.GenerateID()
	}
	def.UpdatedAt = s.now()

	if err := s.repo.SaveRule(ctx, def); err != nil {
		return models.RuleDefinition{}, fmt.Errorf("service: failed to save rule %s: %w", def.RuleID, err)
	}
	return def, nil
}

// DeleteRule removes a rule. Scores already computed keep their matches.
func (s *FraudService) DeleteRule(ctx context.Context, ruleID string) error {
	if ruleID == "" {
		return fmt.Errorf("service: %w - empty rule ID", biddingerrors.ErrInvalidRule)
	}
	if err := s.repo.DeleteRule(ctx, ruleID); err != nil {
		return fmt.Errorf("service: failed to delete rule %s: %w", ruleID, err)
	}
	return nil
}

// ListRules returns every stored rule, active or not
func (s *FraudService) ListRules(ctx context.Context) ([]models.RuleDefinition, error) {
	defs, err := s.repo.ListRules(ctx)
	if err != nil {
		return nil, fmt.Errorf("service: failed to list rules: %w", err)
	}
	return defs, nil
}

// LoadRuleSet extends the schema with the set's facts and saves its rules.
// It stops at the first invalid rule; rules before it stay saved.
func (s *FraudService) LoadRuleSet(ctx context.Context, rs rules.RuleSet) (int, error) {
	s.mu.Lock()
	s.schema = s.schema.Merge(rs.Facts)
	s.mu.Unlock()

	for i, def := range rs.Rules {
		if _, err := s.SaveRule(ctx, def); err != nil {
			return i, fmt.Errorf("rule %d (%s): %w", i, def.RuleID, err)
		}
	}
	return len(rs.Rules), nil
}

// Evaluate scores one target against the current active rules and persists
// the result. Scores that call for review or block are queued for operators.
func (s *FraudService) Evaluate(ctx context.Context, targetID string, facts map[string]any) (models.ScoreResult, error) {
	if targetID == "" {
		return models.ScoreResult{}, fmt.Errorf("service: %w - empty target ID", biddingerrors.ErrInvalidTarget)
	}

	defs, err := s.snapshot(ctx)
	if err != nil {
		return models.ScoreResult{}, err
	}
	return s.evaluate(ctx, targetID, facts, defs)
}

// EvaluateRequest is one target in a batch
type EvaluateRequest struct {
	TargetID string         `json:"target_id"`
	Facts    map[string]any `json:"facts"`
}

// EvaluateBatch scores every request against one shared rule snapshot.
// Results keep the order of reqs; the first failure cancels the rest.
func (s *FraudService) EvaluateBatch(ctx context.Context, reqs []EvaluateRequest) ([]models.ScoreResult, error) {
	for i, r := range reqs {
		if r.TargetID == "" {
			return nil, fmt.Errorf("service: %w - empty target ID at index %d", biddingerrors.ErrInvalidTarget, i)
		}
	}

	defs, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}

	results := make([]models.ScoreResult, len(reqs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.batchLimit)
	for i, r := range reqs {
		i, r := i, r
		g.Go(func() error {
			res, err := s.evaluate(gctx, r.TargetID, r.Facts, defs)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// GetScore returns a stored score
func (s *FraudService) GetScore(ctx context.Context, scoreID string) (models.ScoreResult, error) {
	if scoreID == "" {
		return models.ScoreResult{}, fmt.Errorf("service: %w - empty score ID", biddingerrors.ErrInvalidTarget)
	}
	res, err := s.repo.GetScore(ctx, scoreID)
	if err != nil {
		return models.ScoreResult{}, fmt.Errorf("service: failed to get score %s: %w", scoreID, err)
	}
	return res, nil
}

// SetDisposition records the operator's verdict on a score
func (s *FraudService) SetDisposition(ctx context.Context, scoreID string, d models.Disposition) (models.ScoreResult, error) {
	if scoreID == "" {
		return models.ScoreResult{}, fmt.Errorf("service: %w - empty score ID", biddingerrors.ErrInvalidTarget)
	}
	if !d.Valid() {
		return models.ScoreResult{}, fmt.Errorf("service: %w - %q", biddingerrors.ErrInvalidDisposition, d)
	}
	res, err := s.repo.SetDisposition(ctx, scoreID, d, s.now())
	if err != nil {
		return models.ScoreResult{}, fmt.Errorf("service: failed to set disposition on score %s: %w", scoreID, err)
	}
	return res, nil
}

func (s *FraudService) snapshot(ctx context.Context) ([]models.RuleDefinition, error) {
	defs, err := s.repo.ListRules(ctx)
	if err != nil {
		return nil, fmt.Errorf("service: failed to load rules: %w", err)
	}
	return rules.Snapshot(defs), nil
}

func (s *FraudService) evaluate(ctx context.Context, targetID string, facts map[string]any, defs []models.RuleDefinition) (models.ScoreResult, error) {
	res := rules.Evaluate(targetID, facts, defs, s.now())
	res.ScoreID = utils.GenerateID()

	if err := s.repo.SaveScore(ctx, res); err != nil {
		return models.ScoreResult{}, fmt.Errorf("service: failed to save score for %s: %w", targetID, err)
	}

	if res.Action.Severity() >= models.ActionReview.Severity() {
		if err := s.notifier.ReviewQueued(ctx, res); err != nil {
			utils.Warn("service: review notification failed", map[string]any{
				"score_id":  res.ScoreID,
				"target_id": targetID,
				"error":     err.Error(),
			})
		}
	}
	return res, nil
}
