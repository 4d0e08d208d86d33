package pwv

import (
	"math"
)

// Physical constants used throughout the pipeline.
const (
	dryAirGasConstant = 287.0     // J kg^-1 K^-1
	standardTempK     = 288.0     // K, barometric reference temperature
	gravity           = 9.81      // m s^-2
	waterDensity      = 1000.0    // kg m^-3
	earthRadiusM      = 6378136.6 // m, IAU nominal equatorial radius
)

// Projection describes the geostationary fixed-grid projection of a GOES
// imager, taken from the goes_imager_projection variable of a granule.
type Projection struct {
	// LonOriginDeg is the longitude of the projection origin (sub-satellite
	// point), positive east.
	LonOriginDeg float64
	// SatelliteHeightM is the distance from the Earth's center to the
	// satellite: perspective_point_height + semi_major_axis.
	SatelliteHeightM float64
	SemiMajorM       float64
	SemiMinorM       float64
}

// Eccentricity returns the first eccentricity of the projection ellipsoid.
func (p Projection) Eccentricity() float64 {
	return math.Sqrt((p.SemiMajorM*p.SemiMajorM - p.SemiMinorM*p.SemiMinorM) / (p.SemiMajorM * p.SemiMajorM))
}

// ScanAngles converts geodetic coordinates to fixed-grid scan angles
// (radians). x is the E-W scan angle, y the N-S elevation angle, matching
// the x and y coordinate variables of ABI granules.
func (p Projection) ScanAngles(latDeg, lonDeg float64) (x, y float64) {
	lonRad := radians(lonDeg)
	lambda0 := radians(p.LonOriginDeg)
	latC, rc := p.geocentric(latDeg)

	// Satellite-to-point vector in the fixed-grid frame.
	sx := p.SatelliteHeightM - rc*math.Cos(latC)*math.Cos(lonRad-lambda0)
	sy := -rc * math.Cos(latC) * math.Sin(lonRad-lambda0)
	sz := rc * math.Sin(latC)
	s := math.Sqrt(sx*sx + sy*sy + sz*sz)

	return math.Asin(-sy / s), math.Atan2(sz, sx)
}

// Visible reports whether the point is on the Earth disk seen by the
// satellite, i.e. the satellite is above the point's geocentric horizon.
func (p Projection) Visible(latDeg, lonDeg float64) bool {
	latC, rc := p.geocentric(latDeg)
	dLon := radians(lonDeg) - radians(p.LonOriginDeg)
	return math.Cos(latC)*math.Cos(dLon) > rc/p.SatelliteHeightM
}

// geocentric returns the geocentric latitude (radians) and local ellipsoid
// radius (m) for a geodetic latitude.
func (p Projection) geocentric(latDeg float64) (latC, rc float64) {
	latC = math.Atan(p.SemiMinorM * p.SemiMinorM / (p.SemiMajorM * p.SemiMajorM) * math.Tan(radians(latDeg)))
	e := p.Eccentricity()
	rc = p.SemiMinorM / math.Sqrt(1-e*e*math.Cos(latC)*math.Cos(latC))
	return latC, rc
}

// LevelHeights returns the barometric height (m) of each pressure level,
// referenced to the largest pressure in the profile so heights are
// non-negative regardless of the file-level ordering. The scale height uses
// the dry-air gas constant at the standard reference temperature.
func LevelHeights(pressureHpa []float64) []float64 {
	scaleHeight := dryAirGasConstant * standardTempK / gravity

	p0 := 0.0
	for _, p := range pressureHpa {
		if p > p0 {
			p0 = p
		}
	}

	heights := make([]float64, len(pressureHpa))
	for i, p := range pressureHpa {
		heights[i] = scaleHeight * math.Log(p0/p)
	}
	return heights
}

// LineOfSightOffsets projects the line of sight from loc toward a target at
// altitude alt and azimuth az (radians, azimuth from north through east)
// onto the ground at each level height, returning the geodetic latitude and
// longitude (degrees) of the per-level piercing points.
func LineOfSightOffsets(loc Location, alt, az float64, heightsM []float64) (latDeg, lonDeg []float64) {
	latDeg = make([]float64, len(heightsM))
	lonDeg = make([]float64, len(heightsM))
	for i, h := range heightsM {
		ground := h / math.Tan(alt)
		dLat := ground * math.Cos(az)
		dLon := ground * math.Sin(az)
		latDeg[i] = loc.LatitudeDeg + degrees(math.Atan(dLat/earthRadiusM))
		lonDeg[i] = loc.LongitudeDeg + degrees(math.Atan(dLon/earthRadiusM))
	}
	return latDeg, lonDeg
}

// NearestIndex returns the index of the element of xs closest to v.
// Returns -1 for an empty slice. NaN elements never match.
func NearestIndex(xs []float64, v float64) int {
	best := -1
	bestDist := math.Inf(1)
	for i, x := range xs {
		d := math.Abs(x - v)
		if d < bestDist {
			best = i
			bestDist = d
		}
	}
	return best
}

func radians(deg float64) float64 { return deg * math.Pi / 180 }

func degrees(rad float64) float64 { return rad * 180 / math.Pi }
