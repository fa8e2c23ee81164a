package rules

import (
	"fmt"
	"io"
	"os"

	"bidding-engine/internal/models"

	"gopkg.in/yaml.v3"
)

// RuleSet is the on-disk seed format:
//
//	facts:
//	  order_amount: number
//	rules:
//	  - id: high-value
//	    name: High value order
//	    weight: 30
//	    action: flag
//	    priority: 10
//	    active: true
//	    when: {op: gt, fact: order_amount, value: 1000}
type RuleSet struct {
	Facts FactSchema              `yaml:"facts"`
	Rules []models.RuleDefinition `yaml:"rules"`
}

// LoadFile reads a rule set from a YAML file.
func LoadFile(path string) (RuleSet, error) {
	f, err := os.Open(path)
	if err != nil {
		return RuleSet{}, fmt.Errorf("open rule file: %w", err)
	}
	defer f.Close()

	rs, err := Load(f)
	if err != nil {
		return RuleSet{}, fmt.Errorf("load rule file %s: %w", path, err)
	}
	return rs, nil
}

// Load decodes a rule set. Rules are not validated here; the fraud service
// validates each one against its schema when saving.
func Load(r io.Reader) (RuleSet, error) {
	var rs RuleSet
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&rs); err != nil {
		if err == io.EOF {
			return RuleSet{}, nil
		}
		return RuleSet{}, fmt.Errorf("decode rule set: %w", err)
	}
	for name, typ := range rs.Facts {
		switch typ {
		case FactNumber, FactString, FactBool:
		default:
			return RuleSet{}, fmt.Errorf("fact %q has unknown type %q", name, typ)
		}
	}
	return rs, nil
}
