package models

import "time"

// RuleAction is what a matched fraud rule asks for.
type RuleAction string

const (
	ActionNone   RuleAction = "none"
	ActionFlag   RuleAction = "flag"
	ActionReview RuleAction = "review"
	ActionBlock  RuleAction = "block"
)

// Severity orders actions: block > review > flag > none. Unknown actions rank as none.
func (a RuleAction) Severity() int {
	switch a {
	case ActionFlag:
		return 1
	case ActionReview:
		return 2
	case ActionBlock:
		return 3
	default:
		return 0
	}
}

// Valid reports whether a rule may carry this action.
func (a RuleAction) Valid() bool {
	return a == ActionFlag || a == ActionReview || a == ActionBlock
}

// PredicateOp names a node kind in a rule predicate tree.
type PredicateOp string

const (
	OpGT  PredicateOp = "gt"
	OpGTE PredicateOp = "gte"
	OpLT  PredicateOp = "lt"
	OpLTE PredicateOp = "lte"
	OpEQ  PredicateOp = "eq"
	OpNEQ PredicateOp = "neq"
	OpIn  PredicateOp = "in"
	OpAnd PredicateOp = "and"
	OpOr  PredicateOp = "or"
	OpNot PredicateOp = "not"
)

// Predicate is a node of a rule condition. Comparison nodes use Fact and
// Value, "in" uses Fact and Values, boolean nodes use Args.
type Predicate struct {
	Op     PredicateOp `json:"op" yaml:"op"`
	Fact   string      `json:"fact,omitempty" yaml:"fact,omitempty"`
	Value  any         `json:"value,omitempty" yaml:"value,omitempty"`
	Values []any       `json:"values,omitempty" yaml:"values,omitempty"`
	Args   []Predicate `json:"args,omitempty" yaml:"args,omitempty"`
}

// RuleDefinition is an operator-managed fraud rule.
type RuleDefinition struct {
	RuleID    string     `json:"rule_id" yaml:"id" gorm:"primaryKey"`
	Name      string     `json:"name" yaml:"name"`
	Predicate Predicate  `json:"predicate" yaml:"when" gorm:"serializer:json"`
	Weight    int        `json:"weight" yaml:"weight"`
	Action    RuleAction `json:"action" yaml:"action"`
	Priority  int        `json:"priority" yaml:"priority"`
	Active    bool       `json:"active" yaml:"active"`
	UpdatedAt time.Time  `json:"updated_at" yaml:"-" gorm:"autoUpdateTime:false"`
}

// RuleMatch records one matched rule and what it contributed.
type RuleMatch struct {
	RuleID string `json:"rule_id"`
	Weight int    `json:"weight"`
}

// Disposition is the operator's verdict on a score after review.
type Disposition string

const (
	DispositionPending       Disposition = ""
	DispositionApproved      Disposition = "approved"
	DispositionRejected      Disposition = "rejected"
	DispositionFalsePositive Disposition = "false_positive"
)

// Valid reports whether d may be set by an operator.
func (d Disposition) Valid() bool {
	return d == DispositionApproved || d == DispositionRejected || d == DispositionFalsePositive
}

// ScoreResult is the outcome of one evaluation pass. Only Disposition and
// DisposedAt change after creation.
type ScoreResult struct {
	ScoreID     string      `json:"score_id" gorm:"primaryKey"`
	TargetID    string      `json:"target_id" gorm:"index"`
	Score       int         `json:"score"`
	Matches     []RuleMatch `json:"matches" gorm:"serializer:json"`
	Action      RuleAction  `json:"action"`
	EvaluatedAt time.Time   `json:"evaluated_at"`
	Disposition Disposition `json:"disposition,omitempty"`
	DisposedAt  *time.Time  `json:"disposed_at,omitempty"`
}
