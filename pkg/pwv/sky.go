package pwv

import (
	"math"
	"time"

	"github.com/soniakeys/meeus/v3/julian"
	"github.com/soniakeys/meeus/v3/sidereal"
	"github.com/soniakeys/unit"
)

// Horizontal returns the altitude and azimuth (radians) of an equatorial
// target as seen from loc at time t. RA and Dec are in degrees (ICRS,
// precession is negligible at the profile grid resolution). Azimuth is
// measured from north through east.
func Horizontal(raDeg, decDeg float64, t time.Time, loc Location) (alt, az float64) {
	jd := julian.TimeToJD(t.UTC())
	var st unit.Time = sidereal.Apparent(jd)
	gast := st.Angle().Rad()

	phi := radians(loc.LatitudeDeg)
	delta := radians(decDeg)

	// Local hour angle; site longitude is positive east.
	ha := gast + radians(loc.LongitudeDeg) - radians(raDeg)

	alt = math.Asin(math.Sin(phi)*math.Sin(delta) + math.Cos(phi)*math.Cos(delta)*math.Cos(ha))

	// Meeus eq. 13.5 measures azimuth from south, westward. Rotate to the
	// north-through-east convention used by the line-of-sight projection.
	azSouth := math.Atan2(math.Sin(ha), math.Cos(ha)*math.Sin(phi)-math.Tan(delta)*math.Cos(phi))
	az = math.Mod(azSouth+math.Pi, 2*math.Pi)
	if az < 0 {
		az += 2 * math.Pi
	}
	return alt, az
}
