// Package pwv computes precipitable water vapor above an observing site
// from vertical temperature and moisture profiles on fixed pressure levels,
// such as the GOES-R ABI L2+ LVT/LVM products.
package pwv

import "fmt"

// Location is an observing site. Longitude is positive east.
type Location struct {
	Name         string
	LatitudeDeg  float64
	LongitudeDeg float64
	ElevationM   float64
}

// Validate checks that the coordinates are on the globe.
func (l Location) Validate() error {
	if l.LatitudeDeg < -90 || l.LatitudeDeg > 90 {
		return fmt.Errorf("latitude %g out of range [-90, 90]", l.LatitudeDeg)
	}
	if l.LongitudeDeg < -180 || l.LongitudeDeg > 180 {
		return fmt.Errorf("longitude %g out of range [-180, 180]", l.LongitudeDeg)
	}
	return nil
}
