package rules

import (
	"fmt"

	"bidding-engine/internal/biddingerrors"
	"bidding-engine/internal/models"
	"bidding-engine/internal/money"
)

// FactType is the declared type of a fact key.
type FactType string

const (
	FactNumber FactType = "number"
	FactString FactType = "string"
	FactBool   FactType = "bool"
)

// FactSchema declares which facts rules may reference.
type FactSchema map[string]FactType

// DefaultSchema lists the facts the order pipeline supplies.
func DefaultSchema() FactSchema {
	return FactSchema{
		"order_amount":          FactNumber,
		"account_age_days":      FactNumber,
		"orders_last_hour":      FactNumber,
		"orders_last_day":       FactNumber,
		"failed_payments_24h":   FactNumber,
		"distinct_cards_24h":    FactNumber,
		"ip_risk_score":         FactNumber,
		"ip_country":            FactString,
		"billing_country":       FactString,
		"payment_method":        FactString,
		"email_verified":        FactBool,
		"is_new_device":         FactBool,
		"shipping_matches_bill": FactBool,
		"is_proxy_ip":           FactBool,
		"bid_count_last_hour":   FactNumber,
		"auctions_won_unpaid":   FactNumber,
	}
}

// Merge returns a schema with the keys of other added to s; other wins on conflict.
func (s FactSchema) Merge(other FactSchema) FactSchema {
	out := make(FactSchema, len(s)+len(other))
	for k, v := range s {
		out[k] = v
	}
	for k, v := range other {
		out[k] = v
	}
	return out
}

// ValidateRule checks everything an operator can get wrong when saving a rule.
func ValidateRule(def models.RuleDefinition, schema FactSchema) error {
	if def.Name == "" && def.RuleID == "" {
		return fmt.Errorf("%w: rule needs a name or id", biddingerrors.ErrInvalidRule)
	}
	if def.Weight < 0 || def.Weight > MaxScore {
		return fmt.Errorf("%w: weight %d outside 0..%d", biddingerrors.ErrInvalidRule, def.Weight, MaxScore)
	}
	if !def.Action.Valid() {
		return fmt.Errorf("%w: unknown action %q", biddingerrors.ErrInvalidRule, def.Action)
	}
	return Validate(def.Predicate, schema)
}

// Validate checks p against schema. Errors wrap ErrInvalidRulePredicate and
// name the offending node path, e.g. "args[1].args[0]".
func Validate(p models.Predicate, schema FactSchema) error {
	return validate(p, schema, "predicate")
}

func validate(p models.Predicate, schema FactSchema, path string) error {
	switch p.Op {
	case models.OpAnd, models.OpOr:
		if len(p.Args) == 0 {
			return invalid(path, "%s needs at least one argument", p.Op)
		}
		for i, arg := range p.Args {
			if err := validate(arg, schema, fmt.Sprintf("%s.args[%d]", path, i)); err != nil {
				return err
			}
		}
		return nil
	case models.OpNot:
		if len(p.Args) != 1 {
			return invalid(path, "not takes exactly one argument, got %d", len(p.Args))
		}
		return validate(p.Args[0], schema, path+".args[0]")
	case models.OpIn:
		typ, err := factType(p, schema, path)
		if err != nil {
			return err
		}
		if len(p.Values) == 0 {
			return invalid(path, "in needs at least one value")
		}
		for i, v := range p.Values {
			if !literalFits(typ, v) {
				return invalid(fmt.Sprintf("%s.values[%d]", path, i), "value %v does not fit %s fact %q", v, typ, p.Fact)
			}
		}
		return nil
	case models.OpEQ, models.OpNEQ:
		typ, err := factType(p, schema, path)
		if err != nil {
			return err
		}
		if !literalFits(typ, p.Value) {
			return invalid(path, "value %v does not fit %s fact %q", p.Value, typ, p.Fact)
		}
		return nil
	case models.OpGT, models.OpGTE, models.OpLT, models.OpLTE:
		typ, err := factType(p, schema, path)
		if err != nil {
			return err
		}
		if typ != FactNumber {
			return invalid(path, "%s needs a number fact, %q is %s", p.Op, p.Fact, typ)
		}
		if !literalFits(FactNumber, p.Value) {
			return invalid(path, "value %v is not a number", p.Value)
		}
		return nil
	default:
		return invalid(path, "unknown operator %q", p.Op)
	}
}

func factType(p models.Predicate, schema FactSchema, path string) (FactType, error) {
	if p.Fact == "" {
		return "", invalid(path, "%s needs a fact", p.Op)
	}
	if len(p.Args) > 0 {
		return "", invalid(path, "%s does not take arguments", p.Op)
	}
	typ, ok := schema[p.Fact]
	if !ok {
		return "", invalid(path, "fact %q is not declared", p.Fact)
	}
	return typ, nil
}

func literalFits(typ FactType, v any) bool {
	if v == nil {
		return false
	}
	switch typ {
	case FactNumber:
		_, ok := money.FromAny(v)
		return ok
	case FactBool:
		_, ok := v.(bool)
		return ok
	case FactString:
		_, ok := v.(string)
		return ok
	default:
		return false
	}
}

func invalid(path, format string, args ...any) error {
	return fmt.Errorf("%w: %s: %s", biddingerrors.ErrInvalidRulePredicate, path, fmt.Sprintf(format, args...))
}
