package core

// rules.go defines validation rules as plain data.
//
// A Rule names the columns it applies to (exact name, substring, or regular
// expression), whether the value must parse as a number, an inclusive
// numeric range, and the issue kinds reported when parsing or the range
// check fails. A RuleSet is an ordered list of rules; order decides the
// order of issues within a row.

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// IssueKind classifies a validation failure.
type IssueKind string

const (
	OutOfRange     IssueKind = "OutOfRange"
	NonNumeric     IssueKind = "NonNumeric"
	Negative       IssueKind = "Negative"
	NegativeFlow   IssueKind = "NegativeFlow"
	NonNumericFlow IssueKind = "NonNumericFlow"
)

// Selector picks the columns a rule applies to. Exactly one field is set.
type Selector struct {
	// Column matches one column by exact name.
	Column string `yaml:"column,omitempty" json:"column,omitempty"`

	// Contains matches every column whose name contains the substring
	// (case-sensitive).
	Contains string `yaml:"contains,omitempty" json:"contains,omitempty"`

	// Pattern matches every column whose name matches the regular
	// expression.
	Pattern string `yaml:"pattern,omitempty" json:"pattern,omitempty"`
}

func (s Selector) String() string {
	switch {
	case s.Column != "":
		return fmt.Sprintf("column %q", s.Column)
	case s.Contains != "":
		return fmt.Sprintf("columns containing %q", s.Contains)
	case s.Pattern != "":
		return fmt.Sprintf("columns matching /%s/", s.Pattern)
	default:
		return "no columns"
	}
}

// Range is an inclusive numeric interval. A nil bound is open.
type Range struct {
	Min *float64 `yaml:"min,omitempty" json:"min,omitempty"`
	Max *float64 `yaml:"max,omitempty" json:"max,omitempty"`
}

// Contains reports whether v lies within the range. NaN is never inside a
// bounded range.
func (r Range) Contains(v float64) bool {
	if r.Min != nil && !(v >= *r.Min) {
		return false
	}
	if r.Max != nil && !(v <= *r.Max) {
		return false
	}
	return true
}

func (r Range) bounded() bool {
	return r.Min != nil || r.Max != nil
}

func (r Range) String() string {
	switch {
	case r.Min != nil && r.Max != nil:
		return fmt.Sprintf("%s to %s", formatBound(*r.Min), formatBound(*r.Max))
	case r.Min != nil:
		return ">= " + formatBound(*r.Min)
	case r.Max != nil:
		return "<= " + formatBound(*r.Max)
	default:
		return "any"
	}
}

func formatBound(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Rule is one validation check.
type Rule struct {
	Name     string   `yaml:"name,omitempty" json:"name,omitempty"`
	Selector Selector `yaml:",inline" json:"selector"`

	// NumericRequired makes a value that does not parse as a number an
	// issue of kind OnParseFail.
	NumericRequired bool `yaml:"numeric" json:"numeric"`

	Range Range `yaml:",inline" json:"range"`

	OnRangeFail IssueKind `yaml:"on_range_fail" json:"on_range_fail"`
	OnParseFail IssueKind `yaml:"on_parse_fail" json:"on_parse_fail"`

	// RangeMessage and ParseMessage are the human-readable descriptions
	// attached to issues. "{column}" is replaced by the column name.
	RangeMessage string `yaml:"range_message,omitempty" json:"range_message,omitempty"`
	ParseMessage string `yaml:"parse_message,omitempty" json:"parse_message,omitempty"`
}

// label names the rule in configuration errors.
func (r Rule) label(i int) string {
	if r.Name != "" {
		return fmt.Sprintf("rule %d (%s)", i+1, r.Name)
	}
	return fmt.Sprintf("rule %d", i+1)
}

// RuleSet is an ordered list of rules applied in one validation pass.
type RuleSet struct {
	Name  string `yaml:"name,omitempty" json:"name,omitempty"`
	Rules []Rule `yaml:"rules" json:"rules"`
}

func bound(f float64) *float64 {
	return &f
}

// DefaultRuleSet returns the baseline lab acceptance rules:
//
//	DriveTorque      numeric, -1.0 <= v <= 1.0   OutOfRange / NonNumeric
//	DriveSpeed       numeric, v >= 0             Negative / NonNumeric
//	*Flow* columns   numeric, v >= 0             NegativeFlow / NonNumericFlow
func DefaultRuleSet() RuleSet {
	return RuleSet{
		Name: "default",
		Rules: []Rule{
			{
				Name:            "drive-torque",
				Selector:        Selector{Column: "DriveTorque"},
				NumericRequired: true,
				Range:           Range{Min: bound(-1.0), Max: bound(1.0)},
				OnRangeFail:     OutOfRange,
				OnParseFail:     NonNumeric,
				RangeMessage:    "Torque out of expected range (-1 to 1)",
				ParseMessage:    "Non-numeric DriveTorque",
			},
			{
				Name:            "drive-speed",
				Selector:        Selector{Column: "DriveSpeed"},
				NumericRequired: true,
				Range:           Range{Min: bound(0)},
				OnRangeFail:     Negative,
				OnParseFail:     NonNumeric,
				RangeMessage:    "Negative DriveSpeed",
				ParseMessage:    "Non-numeric DriveSpeed",
			},
			{
				Name:            "flow",
				Selector:        Selector{Contains: "Flow"},
				NumericRequired: true,
				Range:           Range{Min: bound(0)},
				OnRangeFail:     NegativeFlow,
				OnParseFail:     NonNumericFlow,
				RangeMessage:    "Negative flow value",
				ParseMessage:    "Non-numeric flow value",
			},
		},
	}
}

// compiledRule is a checked rule with its pattern compiled.
type compiledRule struct {
	Rule
	re *regexp.Regexp
}

func (c compiledRule) matches(col string) bool {
	switch {
	case c.Selector.Column != "":
		return col == c.Selector.Column
	case c.Selector.Contains != "":
		return strings.Contains(col, c.Selector.Contains)
	default:
		return c.re.MatchString(col)
	}
}

// Check reports every configuration problem in the rule set as a single
// *ConfigurationError, or nil if the set is usable.
func (rs RuleSet) Check() error {
	_, err := rs.compile()
	return err
}

func (rs RuleSet) compile() ([]compiledRule, error) {
	var problems []string
	out := make([]compiledRule, 0, len(rs.Rules))

	for i, r := range rs.Rules {
		name := r.label(i)
		c := compiledRule{Rule: r}

		set := 0
		for _, v := range []string{r.Selector.Column, r.Selector.Contains, r.Selector.Pattern} {
			if v != "" {
				set++
			}
		}
		switch set {
		case 0:
			problems = append(problems, name+": no column selector (set column, contains or pattern)")
		case 1:
			if r.Selector.Pattern != "" {
				re, err := regexp.Compile(r.Selector.Pattern)
				if err != nil {
					problems = append(problems, fmt.Sprintf("%s: invalid pattern: %v", name, err))
				}
				c.re = re
			}
		default:
			problems = append(problems, name+": more than one column selector")
		}

		if !r.NumericRequired && !r.Range.bounded() {
			problems = append(problems, name+": checks nothing (set numeric or a range)")
		}
		if r.NumericRequired && r.OnParseFail == "" {
			problems = append(problems, name+": on_parse_fail is required for numeric rules")
		}
		if r.Range.bounded() && r.OnRangeFail == "" {
			problems = append(problems, name+": on_range_fail is required when a range is set")
		}
		for _, b := range []*float64{r.Range.Min, r.Range.Max} {
			if b != nil && math.IsNaN(*b) {
				problems = append(problems, name+": range bound is NaN")
			}
		}
		if r.Range.Min != nil && r.Range.Max != nil && *r.Range.Min > *r.Range.Max {
			problems = append(problems, fmt.Sprintf("%s: min %s is greater than max %s",
				name, formatBound(*r.Range.Min), formatBound(*r.Range.Max)))
		}

		out = append(out, c)
	}

	if len(problems) > 0 {
		return nil, &ConfigurationError{Problems: problems}
	}
	return out, nil
}
