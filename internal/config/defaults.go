// Package config provides shared configuration defaults and validation,
// decoupled from CLI concerns so other tools can load project settings.
package config

import (
	"fmt"
)

// Default configuration values.
const (
	DefaultDataDir         = "data"
	DefaultStateFile       = ".fyodor/state.db"
	DefaultOutput          = "auto" // auto-detect: TTY=text, non-TTY=markdown
	DefaultMode            = "zenith"
	DefaultMinElevationDeg = 30.0
	DefaultPressureMinHpa  = 300.0
	DefaultPressureMaxHpa  = 750.0
	DefaultWorkers         = 4
)

// Modes of the PWV pipeline.
const (
	ModeZenith = "zenith"
	ModeTarget = "target"
)

// ValidateMode checks the line-of-sight mode.
func ValidateMode(mode string) error {
	switch mode {
	case ModeZenith, ModeTarget:
		return nil
	default:
		return fmt.Errorf("invalid mode %q: want %q or %q", mode, ModeZenith, ModeTarget)
	}
}

// ValidatePressureWindow checks the integration bounds.
func ValidatePressureWindow(minHpa, maxHpa float64) error {
	if minHpa < 0 || maxHpa < 0 {
		return fmt.Errorf("pressure bounds must be non-negative, got %g and %g", minHpa, maxHpa)
	}
	if minHpa >= maxHpa {
		return fmt.Errorf("pressure window is empty: min %g hPa >= max %g hPa", minHpa, maxHpa)
	}
	return nil
}

// ValidateWorkers checks the decode pool size.
func ValidateWorkers(n int) error {
	if n < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", n)
	}
	return nil
}
