package core

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadRuleSet decodes a YAML rule set and checks it. Unknown fields are
// rejected so that a misspelled key does not silently disable a check.
//
//	name: lab-acceptance
//	rules:
//	  - name: drive-torque
//	    column: DriveTorque
//	    numeric: true
//	    min: -1
//	    max: 1
//	    on_range_fail: OutOfRange
//	    on_parse_fail: NonNumeric
func LoadRuleSet(r io.Reader) (RuleSet, error) {
	var rs RuleSet

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&rs); err != nil {
		if errors.Is(err, io.EOF) {
			return RuleSet{}, fmt.Errorf("%w: empty rule file", ErrInvalidRuleSet)
		}
		return RuleSet{}, fmt.Errorf("%w: %v", ErrInvalidRuleSet, err)
	}
	if len(rs.Rules) == 0 {
		return RuleSet{}, fmt.Errorf("%w: no rules defined", ErrInvalidRuleSet)
	}
	if err := rs.Check(); err != nil {
		return RuleSet{}, err
	}
	return rs, nil
}

// LoadRuleSetFile reads a rule set from a YAML file.
func LoadRuleSetFile(path string) (RuleSet, error) {
	f, err := os.Open(path)
	if err != nil {
		return RuleSet{}, err
	}
	defer f.Close()

	rs, err := LoadRuleSet(f)
	if err != nil {
		return RuleSet{}, fmt.Errorf("%s: %w", path, err)
	}
	return rs, nil
}

// MarshalRuleSet encodes a rule set as YAML that LoadRuleSet accepts.
func MarshalRuleSet(rs RuleSet) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(rs); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
