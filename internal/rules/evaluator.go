// Package rules scores a flat fact map against a set of fraud rules.
//
// Rules are evaluated in priority order (highest first, rule ID breaking ties).
// Each matched rule adds its weight to the score, capped at MaxScore, and the
// resulting action is the most severe action among matched rules.
//
// Missing data fails open: a comparison on a fact absent from the map is
// unknown, unknown propagates through and/or/not, and a rule whose predicate
// is not definitely true does not match.
package rules

import (
	"fmt"
	"sort"
	"time"

	"bidding-engine/internal/models"
	"bidding-engine/internal/money"
)

// MaxScore caps the cumulative risk score.
const MaxScore = 100

type truth int8

const (
	falsy truth = iota
	truthy
	unknown
)

// Snapshot returns the active rules in evaluation order. The slice is a copy,
// so later changes to defs do not affect it.
func Snapshot(defs []models.RuleDefinition) []models.RuleDefinition {
	out := make([]models.RuleDefinition, 0, len(defs))
	for _, d := range defs {
		if d.Active {
			out = append(out, d)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Priority != out[j].Priority {
			return out[i].Priority > out[j].Priority
		}
		return out[i].RuleID < out[j].RuleID
	})
	return out
}

// Evaluate scores facts against defs. It performs no I/O and, apart from the
// supplied timestamp, returns the same result for the same inputs.
func Evaluate(targetID string, facts map[string]any, defs []models.RuleDefinition, now time.Time) models.ScoreResult {
	result := models.ScoreResult{
		TargetID:    targetID,
		Matches:     []models.RuleMatch{},
		Action:      models.ActionNone,
		EvaluatedAt: now,
	}

	total := 0
	for _, rule := range Snapshot(defs) {
		if match(rule.Predicate, facts) != truthy {
			continue
		}
		result.Matches = append(result.Matches, models.RuleMatch{RuleID: rule.RuleID, Weight: rule.Weight})
		total += rule.Weight
		if rule.Action.Severity() > result.Action.Severity() {
			result.Action = rule.Action
		}
	}
	result.Score = min(total, MaxScore)
	return result
}

// Matches reports whether p is definitely true for facts.
func Matches(p models.Predicate, facts map[string]any) bool {
	return match(p, facts) == truthy
}

// match evaluates p with three-valued logic.
func match(p models.Predicate, facts map[string]any) truth {
	switch p.Op {
	case models.OpAnd:
		res := truthy
		for _, arg := range p.Args {
			switch match(arg, facts) {
			case falsy:
				return falsy
			case unknown:
				res = unknown
			}
		}
		return res
	case models.OpOr:
		res := falsy
		for _, arg := range p.Args {
			switch match(arg, facts) {
			case truthy:
				return truthy
			case unknown:
				res = unknown
			}
		}
		return res
	case models.OpNot:
		if len(p.Args) != 1 {
			return unknown
		}
		switch match(p.Args[0], facts) {
		case truthy:
			return falsy
		case falsy:
			return truthy
		default:
			return unknown
		}
	case models.OpIn:
		v, ok := facts[p.Fact]
		if !ok || v == nil {
			return unknown
		}
		res := falsy
		for _, candidate := range p.Values {
			switch equal(v, candidate) {
			case truthy:
				return truthy
			case unknown:
				res = unknown
			}
		}
		return res
	case models.OpEQ, models.OpNEQ, models.OpGT, models.OpGTE, models.OpLT, models.OpLTE:
		v, ok := facts[p.Fact]
		if !ok || v == nil {
			return unknown
		}
		return compare(p.Op, v, p.Value)
	default:
		return unknown
	}
}

func compare(op models.PredicateOp, fact, literal any) truth {
	switch op {
	case models.OpEQ:
		return equal(fact, literal)
	case models.OpNEQ:
		switch equal(fact, literal) {
		case truthy:
			return falsy
		case falsy:
			return truthy
		default:
			return unknown
		}
	}

	a, okA := money.FromAny(fact)
	b, okB := money.FromAny(literal)
	if !okA || !okB {
		return unknown
	}
	c := a.Cmp(b)
	var res bool
	switch op {
	case models.OpGT:
		res = c > 0
	case models.OpGTE:
		res = c >= 0
	case models.OpLT:
		res = c < 0
	case models.OpLTE:
		res = c <= 0
	}
	return toTruth(res)
}

// equal compares numbers as decimals, booleans as booleans and anything else
// by its string form. Mixed kinds are unknown rather than false.
func equal(fact, literal any) truth {
	if fb, ok := fact.(bool); ok {
		lb, ok := literal.(bool)
		if !ok {
			return unknown
		}
		return toTruth(fb == lb)
	}
	if _, ok := literal.(bool); ok {
		return unknown
	}

	if isNumber(fact) || isNumber(literal) {
		a, okA := money.FromAny(fact)
		b, okB := money.FromAny(literal)
		if !okA || !okB {
			return unknown
		}
		return toTruth(a.Equal(b))
	}
	return toTruth(fmt.Sprint(fact) == fmt.Sprint(literal))
}

func isNumber(v any) bool {
	switch v.(type) {
	case int, int32, int64, uint, uint32, uint64, float32, float64:
		return true
	}
	_, isString := v.(string)
	if isString {
		return false
	}
	_, ok := money.FromAny(v)
	return ok
}

func toTruth(b bool) truth {
	if b {
		return truthy
	}
	return falsy
}
