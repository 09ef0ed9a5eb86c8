package engine

import (
	"github.com/go-playground/validator/v10"
	"github.com/rxtech-lab/argo-scanner/internal/engine"
	"github.com/rxtech-lab/argo-scanner/internal/pattern"
	"github.com/rxtech-lab/argo-scanner/internal/types"
	"github.com/rxtech-lab/argo-scanner/pkg/errors"
)

// ScanEngineV1Config configures the scan engine.
type ScanEngineV1Config struct {
	// Concurrency is the pool ceiling
	Concurrency int `yaml:"concurrency" json:"concurrency" validate:"gte=1" jsonschema:"title=Concurrency,description=Maximum number of evaluation tasks in flight,minimum=1,default=8"`
	// Schedule selects per-symbol or per-rule tasks
	Schedule engine.Schedule `yaml:"schedule" json:"schedule" validate:"oneof=per_symbol per_rule" jsonschema:"title=Schedule,description=How evaluations are split into pool tasks,default=per_symbol"`
	// MinBars is the shortest series kept by Prepare
	MinBars int `yaml:"min_bars" json:"min_bars" validate:"gte=1" jsonschema:"title=Minimum Bars,description=Series shorter than this are recorded as missing data,minimum=1,default=2"`
	// Patterns selects and orders the detectors. Empty means every pattern.
	Patterns []types.PatternName `yaml:"patterns" json:"patterns" jsonschema:"title=Patterns,description=Patterns to evaluate in report order. Empty selects every pattern"`
	// Pattern holds the detector periods
	Pattern pattern.Options `yaml:"pattern" json:"pattern"`
}

// DefaultConfig returns a per-symbol engine with eight concurrent tasks and every pattern.
func DefaultConfig() ScanEngineV1Config {
	return ScanEngineV1Config{
		Concurrency: 8,
		Schedule:    engine.SchedulePerSymbol,
		MinBars:     2,
		Patterns:    nil,
		Pattern:     pattern.DefaultOptions(),
	}
}

// Validate checks the struct tags and the pattern names.
func (c ScanEngineV1Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid engine configuration", err)
	}

	if _, err := c.detectors(); err != nil {
		return err
	}

	return nil
}

func (c ScanEngineV1Config) patternNames() []types.PatternName {
	if len(c.Patterns) == 0 {
		return pattern.Names()
	}

	return c.Patterns
}

func (c ScanEngineV1Config) detectors() ([]pattern.Detector, error) {
	return pattern.Resolve(c.patternNames(), c.Pattern)
}
