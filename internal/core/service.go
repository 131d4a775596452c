package core

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/drygas/internal/logging"
	"github.com/JonMunkholm/drygas/internal/table"
	"github.com/JonMunkholm/drygas/internal/tableio"
)

// ServiceOptions configures a Service.
type ServiceOptions struct {
	// MaxRows caps the rows read from each table per run. 0 means no cap.
	MaxRows int

	// Workers is the goroutine count per run.
	Workers int

	// MaxConcurrent and MaxWait bound simultaneous runs.
	MaxConcurrent int
	MaxWait       time.Duration

	// RulesFile is a YAML rule set replacing DefaultRuleSet. Empty keeps
	// the default.
	RulesFile string

	// DefaultMaster is a file loaded at startup and used when a comparison
	// supplies no master. A missing file is logged and ignored.
	DefaultMaster string

	// NullValues are the cell texts loaders read as null.
	NullValues []string
}

// Service runs comparisons and validations for the server and CLI. It owns
// the active rule set, the optional default master table, an optional
// database master source and a limiter on concurrent runs.
type Service struct {
	db      tableio.Querier
	opts    ServiceOptions
	rules   RuleSet
	master  *table.Table
	limiter *RunLimiter
}

// NewService builds a Service. db may be nil, in which case database
// masters are unavailable.
func NewService(db tableio.Querier, opts ServiceOptions) (*Service, error) {
	s := &Service{
		db:      db,
		opts:    opts,
		rules:   DefaultRuleSet(),
		limiter: NewRunLimiter(opts.MaxConcurrent, opts.MaxWait),
	}

	if opts.RulesFile != "" {
		rs, err := LoadRuleSetFile(opts.RulesFile)
		if err != nil {
			return nil, fmt.Errorf("load rules: %w", err)
		}
		s.rules = rs
	}

	if opts.DefaultMaster != "" {
		t, err := tableio.LoadFile(opts.DefaultMaster, s.ReadOptions())
		switch {
		case err == nil:
			s.master = t
			logging.WithFields(context.Background(),
				"path", opts.DefaultMaster,
				"rows", t.Len(),
				"columns", len(t.Columns()),
			).Info("default master loaded")
		case errors.Is(err, os.ErrNotExist):
			logging.WithFields(context.Background(), "path", opts.DefaultMaster).
				Warn("default master not found, comparisons need an explicit master")
		default:
			return nil, fmt.Errorf("load default master: %w", err)
		}
	}

	return s, nil
}

// Rules returns the active rule set.
func (s *Service) Rules() RuleSet {
	return s.rules
}

// DefaultMaster returns the table loaded at startup, or nil.
func (s *Service) DefaultMaster() *table.Table {
	return s.master
}

// ReadOptions returns the loader options matching the service's null policy.
func (s *Service) ReadOptions() tableio.ReadOptions {
	return tableio.ReadOptions{NullValues: s.opts.NullValues}
}

// LoadMasterTable reads a master table from the database, sorted by
// orderBy or, when empty, by its first column.
func (s *Service) LoadMasterTable(ctx context.Context, name string, orderBy ...string) (*table.Table, error) {
	if s.db == nil {
		return nil, ErrNoDatabase
	}
	return tableio.LoadPGTable(ctx, s.db, name, orderBy...)
}

// DiffReport is a diff result with run metadata.
type DiffReport struct {
	RunID    string        `json:"run_id"`
	Duration time.Duration `json:"-"`
	*DiffResult
}

// Compare diffs test against master. A nil master uses the default master.
func (s *Service) Compare(ctx context.Context, master, test *table.Table, sel KeySelector) (*DiffReport, error) {
	if master == nil {
		master = s.master
	}
	if master == nil {
		return nil, ErrNoMaster
	}

	if err := s.limiter.Acquire(ctx); err != nil {
		return nil, err
	}
	defer s.limiter.Release()

	ctx, runID := runContext(ctx)
	log := logging.WithFields(ctx, "key", sel.String())
	start := time.Now()

	res, err := Diff(master, test, sel, DiffOptions{
		MaxRows: s.opts.MaxRows,
		Workers: s.opts.Workers,
	})
	if err != nil {
		log.Error("comparison failed", "error", err)
		return nil, err
	}
	elapsed := time.Since(start)

	if fb := res.Summary.Fallback; fb != nil {
		log.Warn("key column missing, aligned by position",
			"requested_key", fb.RequestedKey,
			"missing_in", fb.MissingIn,
		)
	}
	log.Info("comparison completed",
		"mode", res.Summary.Mode.String(),
		"master_rows", res.Summary.MasterRows,
		"test_rows", res.Summary.TestRows,
		"diffs", res.Summary.TotalDiffs,
		"keys_with_diff", res.Summary.DistinctKeys,
		"truncated", res.Summary.Truncated,
		"duration_ms", elapsed.Milliseconds(),
	)

	return &DiffReport{RunID: runID, Duration: elapsed, DiffResult: res}, nil
}

// ValidationReport is a validation result with run metadata.
type ValidationReport struct {
	RunID    string        `json:"run_id"`
	RuleSet  string        `json:"rule_set"`
	Duration time.Duration `json:"-"`
	*ValidationResult
}

// Check validates t. A nil rs uses the service's rule set.
func (s *Service) Check(ctx context.Context, t *table.Table, rs *RuleSet, keyColumn string) (*ValidationReport, error) {
	rules := s.rules
	if rs != nil {
		rules = *rs
	}

	if err := s.limiter.Acquire(ctx); err != nil {
		return nil, err
	}
	defer s.limiter.Release()

	ctx, runID := runContext(ctx)
	log := logging.WithFields(ctx, "rule_set", rules.Name)
	start := time.Now()

	res, err := Validate(t, rules, ValidateOptions{
		KeyColumn: keyColumn,
		MaxRows:   s.opts.MaxRows,
		Workers:   s.opts.Workers,
	})
	if err != nil {
		log.Error("validation failed", "error", err)
		return nil, err
	}
	elapsed := time.Since(start)

	log.Info("validation completed",
		"rows", res.RowsChecked,
		"issues", len(res.Issues),
		"truncated", res.Truncated,
		"duration_ms", elapsed.Milliseconds(),
	)

	return &ValidationReport{RunID: runID, RuleSet: rules.Name, Duration: elapsed, ValidationResult: res}, nil
}

// runContext returns the run ID already carried by ctx, or tags ctx with
// a new one.
func runContext(ctx context.Context) (context.Context, string) {
	if id := logging.RunID(ctx); id != "" {
		return ctx, id
	}
	id := uuid.New().String()
	return logging.WithRunID(ctx, id), id
}

// LimiterStatus reports slot usage.
func (s *Service) LimiterStatus() LimiterStatus {
	return s.limiter.Status()
}

// WaitForRuns blocks until in-flight runs finish or ctx is done.
func (s *Service) WaitForRuns(ctx context.Context) error {
	return s.limiter.WaitForDrain(ctx)
}
