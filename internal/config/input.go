package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/rgehrsitz/psupdate/internal/domain"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig marks every configuration problem that must stop a run
// before any participant is processed.
var ErrInvalidConfig = errors.New("invalid configuration")

const (
	minEffectiveYear = 1900
	maxEffectiveYear = 9999
	rateDecimals     = 6
)

// InputParser handles parsing of run configuration files
type InputParser struct{}

// NewInputParser creates a new input parser
func NewInputParser() *InputParser {
	return &InputParser{}
}

// LoadFromFile loads a run configuration from a YAML file
func (ip *InputParser) LoadFromFile(filename string) (*domain.RunConfig, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filename, err)
	}
	return ip.Parse(data)
}

// Parse decodes and validates a YAML run configuration
func (ip *InputParser) Parse(data []byte) (*domain.RunConfig, error) {
	var cfg domain.RunConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: failed to parse YAML: %v", ErrInvalidConfig, err)
	}

	if err := ip.ValidateConfiguration(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// ValidateConfiguration validates a loaded run configuration
func (ip *InputParser) ValidateConfiguration(cfg *domain.RunConfig) error {
	if cfg.EffectiveYear < minEffectiveYear || cfg.EffectiveYear > maxEffectiveYear {
		return fmt.Errorf("%w: effective_year %d must be between %d and %d",
			ErrInvalidConfig, cfg.EffectiveYear, minEffectiveYear, maxEffectiveYear)
	}
	if cfg.PageSize < 0 {
		return fmt.Errorf("%w: page_size cannot be negative", ErrInvalidConfig)
	}
	if err := ip.validatePointValues(&cfg.PointValues); err != nil {
		return fmt.Errorf("%w: point_values: %v", ErrInvalidConfig, err)
	}
	return nil
}

func (ip *InputParser) validatePointValues(pv *domain.PointValues) error {
	rates := []struct {
		name  string
		value decimal.Decimal
	}{
		{"contribution_rate", pv.ContributionRate},
		{"forfeiture_rate", pv.ForfeitureRate},
		{"earnings_rate", pv.EarningsRate},
		{"secondary_earnings_rate", pv.SecondaryEarningsRate},
	}
	for _, r := range rates {
		if err := validateRate(r.name, r.value); err != nil {
			return err
		}
	}

	if !pv.MaximumContribution.GreaterThan(decimal.Zero) {
		return fmt.Errorf("maximum_contribution must be positive")
	}

	if pv.Adjustment.Badge < 0 {
		return fmt.Errorf("adjustment badge cannot be negative")
	}
	if pv.SecondaryAdjustment.Badge < 0 {
		return fmt.Errorf("secondary_adjustment badge cannot be negative")
	}
	if pv.SecondaryAdjustment.Badge > 0 && !pv.SecondaryEnabled() {
		return fmt.Errorf("secondary_adjustment requires a non-zero secondary_earnings_rate")
	}
	return nil
}

func validateRate(name string, rate decimal.Decimal) error {
	if rate.LessThan(decimal.Zero) || rate.GreaterThan(decimal.NewFromInt(1)) {
		return fmt.Errorf("%s must be between 0 and 1, got %s", name, rate.String())
	}
	if !rate.Equal(rate.Truncate(rateDecimals)) {
		return fmt.Errorf("%s carries more than %d decimal places: %s", name, rateDecimals, rate.String())
	}
	return nil
}
