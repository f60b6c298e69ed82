// Package detector implements the setup-detection and trade-simulation
// engine: prior-move detection, consolidation analysis, breakout
// confirmation, and exit simulation over one symbol's daily bars.
package detector

import (
	"fmt"

	"BreakoutSentinel/internal/calculator"
)

// Params is the immutable threshold set driving a scan. A Params value is
// never mutated mid-scan; the orchestrator takes its own copy.
type Params struct {
	// Prior move.
	PriorMoveStrategy        string  `yaml:"prior_move_strategy"` // "adr" or "percent"
	PriorMovePolicy          string  `yaml:"prior_move_policy"`   // "global" or "recent"
	PriorMoveMaxLookbackDays int     `yaml:"prior_move_max_lookback_days"`
	PriorMoveMaxWindowDays   int     `yaml:"prior_move_max_window_days"`
	MinPriorMoveAdrMultiple  float64 `yaml:"min_prior_move_adr_multiple"`
	MinPriorMovePct          float64 `yaml:"min_prior_move_pct"` // "percent" strategy only
	MinPriorMoveEfficiency   float64 `yaml:"min_prior_move_efficiency"`

	// Consolidation.
	ConsolidationMinDays       int     `yaml:"consolidation_min_days"`
	ConsolidationMaxDays       int     `yaml:"consolidation_max_days"`
	ConsolidationMaxStartDelay int     `yaml:"consolidation_max_start_delay"`
	MaxBaseRetracementFraction float64 `yaml:"max_base_retracement_fraction"`
	MaxNetMovementFraction     float64 `yaml:"max_net_movement_fraction"`
	MaxHalfTrendFraction       float64 `yaml:"max_half_trend_fraction"`
	MinVolatilityContraction   float64 `yaml:"min_volatility_contraction"`

	// Range estimation.
	RangeUpperPercentile float64 `yaml:"range_upper_percentile"`
	RangeLowerPercentile float64 `yaml:"range_lower_percentile"`
	RangeIQRMultiplier   float64 `yaml:"range_iqr_multiplier"`
	MaxRangeAtrRatio     float64 `yaml:"max_range_atr_ratio"`
	MinFlatnessScore     float64 `yaml:"min_flatness_score"`
	MaxRangeSlopeUp      float64 `yaml:"max_range_slope_up"`
	MaxRangeSlopeDown    float64 `yaml:"max_range_slope_down"`

	// Breakout.
	MinBreakoutAdrMultiple          float64 `yaml:"min_breakout_adr_multiple"`
	MaxBreakoutExtensionAdrMultiple float64 `yaml:"max_breakout_extension_adr_multiple"`
	MaxEntryExtensionAdrMultiple    float64 `yaml:"max_entry_extension_adr_multiple"`

	// Exit simulation.
	ExitSMAPeriod           int     `yaml:"exit_sma_period"`
	MomentumExits           bool    `yaml:"momentum_exits"`
	LargeDeclineAdrMultiple float64 `yaml:"large_decline_adr_multiple"`

	// Trailing windows.
	AdrWindow          int `yaml:"adr_window"`
	AtrPeriod          int `yaml:"atr_period"`
	DollarVolumeWindow int `yaml:"dollar_volume_window"`

	// Orchestrator gates.
	MinDollarVolume float64 `yaml:"min_dollar_volume"`
	MaxAdrFraction  float64 `yaml:"max_adr_fraction"`
	MaxSetups       int     `yaml:"max_setups"` // 0 means unlimited
	GenerateCharts  bool    `yaml:"generate_charts"`
}

// DefaultParams returns the production defaults.
func DefaultParams() Params {
	return Params{
		PriorMoveStrategy:        "adr",
		PriorMovePolicy:          "global",
		PriorMoveMaxLookbackDays: 60,
		PriorMoveMaxWindowDays:   25,
		MinPriorMoveAdrMultiple:  8.0,
		MinPriorMovePct:          0.30,
		MinPriorMoveEfficiency:   0.35,

		ConsolidationMinDays:       10,
		ConsolidationMaxDays:       40,
		ConsolidationMaxStartDelay: 10,
		MaxBaseRetracementFraction: 0.50,
		MaxNetMovementFraction:     0.08,
		MaxHalfTrendFraction:       0.05,
		MinVolatilityContraction:   0.15,

		RangeUpperPercentile: 0.90,
		RangeLowerPercentile: 0.10,
		RangeIQRMultiplier:   1.5,
		MaxRangeAtrRatio:     4.0,
		MinFlatnessScore:     0.45,
		MaxRangeSlopeUp:      0.005,
		MaxRangeSlopeDown:    0.0035,

		MinBreakoutAdrMultiple:          0.75,
		MaxBreakoutExtensionAdrMultiple: 3.0,
		MaxEntryExtensionAdrMultiple:    3.0,

		ExitSMAPeriod:           10,
		MomentumExits:           false,
		LargeDeclineAdrMultiple: 2.5,

		AdrWindow:          20,
		AtrPeriod:          14,
		DollarVolumeWindow: 20,

		MinDollarVolume: 1_000_000,
		MaxAdrFraction:  0.08,
		MaxSetups:       0,
		GenerateCharts:  false,
	}
}

// Validate checks internal consistency of the threshold set.
func (p Params) Validate() error {
	switch p.PriorMoveStrategy {
	case "adr", "percent":
	default:
		return fmt.Errorf("prior_move_strategy must be \"adr\" or \"percent\", got %q", p.PriorMoveStrategy)
	}
	switch p.PriorMovePolicy {
	case "global", "recent":
	default:
		return fmt.Errorf("prior_move_policy must be \"global\" or \"recent\", got %q", p.PriorMovePolicy)
	}
	if p.ConsolidationMinDays < 3 {
		return fmt.Errorf("consolidation_min_days must be >= 3, got %d", p.ConsolidationMinDays)
	}
	if p.ConsolidationMaxDays < p.ConsolidationMinDays {
		return fmt.Errorf("consolidation_max_days (%d) below consolidation_min_days (%d)",
			p.ConsolidationMaxDays, p.ConsolidationMinDays)
	}
	if p.PriorMoveMaxWindowDays <= 0 || p.PriorMoveMaxLookbackDays < p.PriorMoveMaxWindowDays {
		return fmt.Errorf("prior move lookback (%d) must cover the explosive window (%d)",
			p.PriorMoveMaxLookbackDays, p.PriorMoveMaxWindowDays)
	}
	if p.RangeLowerPercentile >= p.RangeUpperPercentile {
		return fmt.Errorf("range_lower_percentile must be below range_upper_percentile")
	}
	if p.AdrWindow <= 0 || p.AtrPeriod <= 0 || p.DollarVolumeWindow <= 0 {
		return fmt.Errorf("trailing windows must be positive")
	}
	if p.ExitSMAPeriod <= 0 {
		return fmt.Errorf("exit_sma_period must be positive")
	}
	return nil
}

// rangeOptions maps the params onto the estimator's option set.
func (p Params) rangeOptions() calculator.RangeOptions {
	return calculator.RangeOptions{
		UpperPercentile:  p.RangeUpperPercentile,
		LowerPercentile:  p.RangeLowerPercentile,
		IQRMultiplier:    p.RangeIQRMultiplier,
		MaxRangeATRRatio: p.MaxRangeAtrRatio,
		MinDensity:       p.MinFlatnessScore,
		MaxSlopeUp:       p.MaxRangeSlopeUp,
		MaxSlopeDown:     p.MaxRangeSlopeDown,
	}
}
