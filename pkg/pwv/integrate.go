package pwv

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/integrate"
)

// ErrShortProfile is returned when fewer than two valid levels remain after
// dropping fill values, leaving nothing to integrate.
var ErrShortProfile = errors.New("profile has fewer than two valid levels")

// Profile is a vertical sounding on fixed pressure levels. TemperatureK and
// RelHumidity are aligned with PressureHpa; fill values are NaN.
type Profile struct {
	PressureHpa  []float64
	TemperatureK []float64
	RelHumidity  []float64
}

// Window returns the sub-profile between minHpa and maxHpa, snapping each
// bound to the nearest available level (inclusive).
func (p Profile) Window(minHpa, maxHpa float64) Profile {
	lo := NearestIndex(p.PressureHpa, minHpa)
	hi := NearestIndex(p.PressureHpa, maxHpa)
	if lo < 0 || hi < 0 {
		return Profile{}
	}
	if lo > hi {
		lo, hi = hi, lo
	}
	return Profile{
		PressureHpa:  p.PressureHpa[lo : hi+1],
		TemperatureK: p.TemperatureK[lo : hi+1],
		RelHumidity:  p.RelHumidity[lo : hi+1],
	}
}

// Integrate computes precipitable water vapor (mm) for the profile.
//
// At each level the partial water vapor pressure follows the Magnus form
// e = 100 * 6.11 * RH * 10^(7.5 Tc / (Tc + 237.15)) Pa with Tc in Celsius,
// the specific humidity is q = 0.622 e / (p - 0.378 e), and the column is
// the trapezoidal integral of q over ascending pressure scaled by
// 1000/(rho_w * g) to millimeters. Levels with any NaN component are
// dropped before integrating.
func Integrate(p Profile) (float64, error) {
	n := len(p.PressureHpa)
	if len(p.TemperatureK) != n || len(p.RelHumidity) != n {
		return 0, fmt.Errorf("mismatched profile lengths: %d pressure, %d temperature, %d humidity",
			n, len(p.TemperatureK), len(p.RelHumidity))
	}

	type level struct {
		pPa float64
		q   float64
	}
	levels := make([]level, 0, n)
	for i := 0; i < n; i++ {
		pPa := p.PressureHpa[i] * 100
		tc := p.TemperatureK[i] - 273.15
		rh := p.RelHumidity[i]
		if math.IsNaN(pPa) || math.IsNaN(tc) || math.IsNaN(rh) {
			continue
		}
		e := 100 * 6.11 * rh * math.Pow(10, (7.5*tc)/(tc+237.15))
		q := (0.622 * e) / (pPa - 0.378*e)
		if math.IsNaN(q) || math.IsInf(q, 0) {
			continue
		}
		levels = append(levels, level{pPa: pPa, q: q})
	}
	if len(levels) < 2 {
		return 0, ErrShortProfile
	}

	sort.Slice(levels, func(i, j int) bool { return levels[i].pPa < levels[j].pPa })

	// Collapse duplicate levels; Trapezoidal requires strictly increasing
	// abscissas.
	pPa := make([]float64, 0, len(levels))
	q := make([]float64, 0, len(levels))
	for _, l := range levels {
		if len(pPa) > 0 && l.pPa == pPa[len(pPa)-1] {
			continue
		}
		pPa = append(pPa, l.pPa)
		q = append(q, l.q)
	}
	if len(pPa) < 2 {
		return 0, ErrShortProfile
	}

	mm := 1000 / (waterDensity * gravity) * integrate.Trapezoidal(pPa, q)
	if math.IsNaN(mm) {
		mm = 0
	}
	return mm, nil
}
