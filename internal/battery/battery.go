// Package battery models EV range and charging time.
package battery

import (
	"math"
	"time"
)

// Config holds the tunables of the battery model.
type Config struct {
	// BaseDischargeEfficiency is the baseline fraction of nominal range
	// actually achievable on the road. Default: 0.95.
	BaseDischargeEfficiency float64

	// HighSoCThresholdPercent is the state of charge above which discharge
	// efficiency drops. Default: 80.
	HighSoCThresholdPercent float64

	// HighSoCEfficiency applies above the high threshold. Default: 0.95.
	HighSoCEfficiency float64

	// LowSoCThresholdPercent is the state of charge below which discharge
	// efficiency drops. Default: 20.
	LowSoCThresholdPercent float64

	// LowSoCEfficiency applies below the low threshold. Default: 0.90.
	LowSoCEfficiency float64

	// ChargingEfficiency is the fraction of charger output reaching the
	// battery. Default: 0.9.
	ChargingEfficiency float64

	// LogisticK is the shape constant of the charging-curve model.
	// Default: 1.6.
	LogisticK float64

	// LogisticReferenceUnits normalizes the logistic unit time against a
	// linear full charge. Default: 7.43 (the unit time of a 0.1%→99.9%
	// charge at K=1.6).
	LogisticReferenceUnits float64
}

// DefaultConfig returns the default battery model configuration.
func DefaultConfig() Config {
	return Config{
		BaseDischargeEfficiency: 0.95,
		HighSoCThresholdPercent: 80,
		HighSoCEfficiency:       0.95,
		LowSoCThresholdPercent:  20,
		LowSoCEfficiency:        0.90,
		ChargingEfficiency:      0.9,
		LogisticK:               1.6,
		LogisticReferenceUnits:  7.43,
	}
}

// Model computes safe range and charging durations.
type Model struct {
	cfg Config
}

// NewModel creates a battery model, filling zero-valued config fields with
// defaults.
func NewModel(cfg Config) *Model {
	def := DefaultConfig()
	if cfg.BaseDischargeEfficiency <= 0 {
		cfg.BaseDischargeEfficiency = def.BaseDischargeEfficiency
	}
	if cfg.HighSoCThresholdPercent <= 0 {
		cfg.HighSoCThresholdPercent = def.HighSoCThresholdPercent
	}
	if cfg.HighSoCEfficiency <= 0 {
		cfg.HighSoCEfficiency = def.HighSoCEfficiency
	}
	if cfg.LowSoCThresholdPercent <= 0 {
		cfg.LowSoCThresholdPercent = def.LowSoCThresholdPercent
	}
	if cfg.LowSoCEfficiency <= 0 {
		cfg.LowSoCEfficiency = def.LowSoCEfficiency
	}
	if cfg.ChargingEfficiency <= 0 {
		cfg.ChargingEfficiency = def.ChargingEfficiency
	}
	if cfg.LogisticK <= 0 {
		cfg.LogisticK = def.LogisticK
	}
	if cfg.LogisticReferenceUnits <= 0 {
		cfg.LogisticReferenceUnits = def.LogisticReferenceUnits
	}
	return &Model{cfg: cfg}
}

// MaxSafeDistanceKm returns the furthest distance drivable from the current
// state of charge without dipping below the reserve floor. Returns 0 when the
// battery is at or below the reserve.
func (m *Model) MaxSafeDistanceKm(currentPercent, reservePercent, capacityKWh, fullRangeKm float64) float64 {
	if currentPercent <= reservePercent {
		return 0
	}

	eff := m.cfg.BaseDischargeEfficiency * m.socEfficiency(currentPercent)
	usableEnergy := ((currentPercent - reservePercent) / 100) * capacityKWh * eff
	energyPerKm := capacityKWh / fullRangeKm

	return usableEnergy / energyPerKm
}

// socEfficiency returns the state-of-charge dependent discharge factor.
func (m *Model) socEfficiency(percent float64) float64 {
	switch {
	case percent > m.cfg.HighSoCThresholdPercent:
		return m.cfg.HighSoCEfficiency
	case percent < m.cfg.LowSoCThresholdPercent:
		return m.cfg.LowSoCEfficiency
	default:
		return 1
	}
}

// PercentForDistance converts a leg distance into a battery-percentage cost
// for a vehicle with the given nominal range.
func PercentForDistance(distanceKm, fullRangeKm float64) float64 {
	return (distanceKm / fullRangeKm) * 100
}

// ChargingTime returns the duration needed to charge from currentPercent to
// targetPercent on a charger of the given power. The model follows a bounded
// logistic curve so that charging slows near full, matching real fast-charger
// tapering. Degenerate inputs near 0% and 100% are nudged inward to keep the
// logarithm finite; if the result is still not finite the model degrades to a
// linear approximation.
func (m *Model) ChargingTime(currentPercent, targetPercent, chargerPowerKW, capacityKWh float64) time.Duration {
	if currentPercent >= targetPercent {
		return 0
	}
	if currentPercent <= 0 {
		currentPercent = 0.1
	}
	if targetPercent >= 100 {
		targetPercent = 99.9
	}

	linearFullChargeHours := capacityKWh / (chargerPowerKW * m.cfg.ChargingEfficiency)

	unitTime := (1 / m.cfg.LogisticK) * math.Log(
		(targetPercent*(100-currentPercent))/(currentPercent*(100-targetPercent)))

	hours := unitTime * (linearFullChargeHours / m.cfg.LogisticReferenceUnits)

	if math.IsNaN(hours) || math.IsInf(hours, 0) || hours < 0 {
		hours = linearFullChargeHours * (targetPercent - currentPercent) / 100
	}

	return time.Duration(hours * float64(time.Hour))
}
