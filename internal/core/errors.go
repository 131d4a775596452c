package core

import (
	"errors"
	"strings"
)

var (
	// ErrInvalidRuleSet is wrapped by every rule set configuration problem.
	ErrInvalidRuleSet = errors.New("invalid rule set")

	// ErrNoMaster is returned when a comparison has no master table.
	ErrNoMaster = errors.New("no master table provided")

	// ErrNoTable is returned when a validation is given no table.
	ErrNoTable = errors.New("no table to validate")

	// ErrNoDatabase is returned when a database master is requested but no
	// database is configured.
	ErrNoDatabase = errors.New("no database configured")
)

// ConfigurationError lists every problem found in a rule set.
type ConfigurationError struct {
	Problems []string
}

func (e *ConfigurationError) Error() string {
	return ErrInvalidRuleSet.Error() + ": " + strings.Join(e.Problems, "; ")
}

// Unwrap lets errors.Is match ErrInvalidRuleSet.
func (e *ConfigurationError) Unwrap() error {
	return ErrInvalidRuleSet
}
