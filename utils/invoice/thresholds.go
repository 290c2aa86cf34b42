package invoice

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Thresholds are the tunable plausibility limits of the extraction engine.
// They are fixed for the lifetime of an Engine.
type Thresholds struct {
	// MinEnergyCost is the smallest energy cost magnitude accepted, in EUR.
	MinEnergyCost float64 `yaml:"min_energy_cost_eur"`
	// MinPricePerKwh and MaxPricePerKwh bound the implied EUR/kWh price.
	MinPricePerKwh float64 `yaml:"min_price_per_kwh"`
	MaxPricePerKwh float64 `yaml:"max_price_per_kwh"`
	// PreferredMinPricePerKwh and PreferredMaxPricePerKwh are the tighter band
	// used first when choosing a consumption figure, and the valid range of
	// unit prices printed next to kWh quantities.
	PreferredMinPricePerKwh float64 `yaml:"preferred_min_price_per_kwh"`
	PreferredMaxPricePerKwh float64 `yaml:"preferred_max_price_per_kwh"`
	// ReferencePricePerKwh is the price consumption candidates are ranked against.
	ReferencePricePerKwh float64 `yaml:"reference_price_per_kwh"`
	// MaxKwhPerPeriod is the largest believable consumption of one invoice.
	MaxKwhPerPeriod float64 `yaml:"max_kwh_per_period"`
}

// DefaultThresholds returns the tuned defaults.
func DefaultThresholds() Thresholds {
	return Thresholds{
		MinEnergyCost:           10,
		MinPricePerKwh:          0.02,
		MaxPricePerKwh:          0.60,
		PreferredMinPricePerKwh: 0.035,
		PreferredMaxPricePerKwh: 0.45,
		ReferencePricePerKwh:    0.12,
		MaxKwhPerPeriod:         700000,
	}
}

// Validate rejects inconsistent limits.
func (t Thresholds) Validate() error {
	if t.MinEnergyCost < 0 {
		return errors.New("min energy cost must not be negative")
	}
	if t.MinPricePerKwh <= 0 || t.MaxPricePerKwh <= t.MinPricePerKwh {
		return fmt.Errorf("invalid price band [%g, %g]", t.MinPricePerKwh, t.MaxPricePerKwh)
	}
	if t.PreferredMinPricePerKwh <= 0 || t.PreferredMaxPricePerKwh <= t.PreferredMinPricePerKwh {
		return fmt.Errorf("invalid preferred price band [%g, %g]", t.PreferredMinPricePerKwh, t.PreferredMaxPricePerKwh)
	}
	if t.ReferencePricePerKwh <= 0 {
		return errors.New("reference price must be positive")
	}
	if t.MaxKwhPerPeriod <= 1 {
		return errors.New("max kWh per period must be greater than 1")
	}
	return nil
}

func (t *Thresholds) minEnergyCost() decimal.Decimal { return decimal.NewFromFloat(t.MinEnergyCost) }
func (t *Thresholds) maxKwh() decimal.Decimal        { return decimal.NewFromFloat(t.MaxKwhPerPeriod) }

func (t *Thresholds) inPriceBand(p decimal.Decimal) bool {
	return inRange(p, t.MinPricePerKwh, t.MaxPricePerKwh)
}

func (t *Thresholds) inPreferredBand(p decimal.Decimal) bool {
	return inRange(p, t.PreferredMinPricePerKwh, t.PreferredMaxPricePerKwh)
}

func inRange(v decimal.Decimal, lo, hi float64) bool {
	return v.GreaterThanOrEqual(decimal.NewFromFloat(lo)) && v.LessThanOrEqual(decimal.NewFromFloat(hi))
}
